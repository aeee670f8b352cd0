package models

// CharacterConfig 角色展示配置
type CharacterConfig struct {
	Character      int     `json:"character"`
	CharacterName  string  `json:"character_name"`
	YourName       string  `json:"yourName"`
	VrmModel       string  `json:"vrmModel"`
	VrmModelType   string  `json:"vrmModelType"`
	CameraDistance float64 `json:"cameraDistance"`
}

// ConversationConfig 对话配置
type ConversationConfig struct {
	ConversationType string `json:"conversationType"`
	LanguageModel    string `json:"languageModel"`
}

// MemoryStorageConfig 记忆存储配置
type MemoryStorageConfig struct {
	FaissMemory struct {
		DataDir string `json:"dataDir"`
	} `json:"faissMemory"`
	EnableLongMemory           bool   `json:"enableLongMemory"`
	EnableSummary              bool   `json:"enableSummary"`
	LanguageModelForSummary    string `json:"languageModelForSummary"`
	EnableReflection           bool   `json:"enableReflection"`
	LanguageModelForReflection string `json:"languageModelForReflection"`
	LocalMemoryNum             int    `json:"local_memory_num"`
}

// LiveStreamingConfig 直播间接入配置
type LiveStreamingConfig struct {
	RoomID string `json:"B_ROOM_ID"`
	Cookie string `json:"B_COOKIE"`
}

// MinimaxConfig Minimax TTS凭证配置
type MinimaxConfig struct {
	APIKey  string `json:"apiKey"`
	GroupID string `json:"groupId"`
	Model   string `json:"model,omitempty"`
}

// TTSConfig 语音合成配置
type TTSConfig struct {
	TTSVoiceID string         `json:"ttsVoiceId"`
	Emotion    string         `json:"emotion"`
	TTSType    string         `json:"ttsType"`
	Minimax    *MinimaxConfig `json:"minimax,omitempty"`
}

// EmotionConfig 情绪子系统配置
type EmotionConfig struct {
	Enabled             bool    `json:"enabled"`
	Sensitivity         float64 `json:"sensitivity"`
	ChangeSpeed         float64 `json:"changeSpeed"`
	DefaultEmotion      string  `json:"defaultEmotion"`
	ExpressionIntensity float64 `json:"expressionIntensity"`
}

// KoeiroParam 声音风格参数
type KoeiroParam struct {
	SpeakerX float64 `json:"speakerX"`
	SpeakerY float64 `json:"speakerY"`
}

// GlobalConfig 进程级全局配置，整体以JSON形式持久化
type GlobalConfig struct {
	CharacterConfig     CharacterConfig              `json:"characterConfig"`
	LanguageModelConfig map[string]map[string]string `json:"languageModelConfig"`
	EnableProxy         bool                         `json:"enableProxy"`
	HTTPProxy           string                       `json:"httpProxy"`
	HTTPSProxy          string                       `json:"httpsProxy"`
	Socks5Proxy         string                       `json:"socks5Proxy"`
	ConversationConfig  ConversationConfig           `json:"conversationConfig"`
	MemoryStorageConfig MemoryStorageConfig          `json:"memoryStorageConfig"`
	BackgroundURL       string                       `json:"background_url"`
	EnableLive          bool                         `json:"enableLive"`
	LiveStreamingConfig LiveStreamingConfig          `json:"liveStreamingConfig"`
	TTSConfig           TTSConfig                    `json:"ttsConfig"`
	EmotionConfig       EmotionConfig                `json:"emotionConfig"`
	KoeiroParam         *KoeiroParam                 `json:"koeiroParam,omitempty"`
}

// DefaultGlobalConfig 生成默认全局配置
// characterName为空时使用内置默认名称
func DefaultGlobalConfig(characterName string) *GlobalConfig {
	if characterName == "" {
		characterName = "虚拟角色"
	}

	cfg := &GlobalConfig{
		CharacterConfig: CharacterConfig{
			Character:      1,
			CharacterName:  characterName,
			YourName:       "用户",
			VrmModel:       "/assets/vrm/default.vrm",
			VrmModelType:   "system",
			CameraDistance: 1.0,
		},
		LanguageModelConfig: map[string]map[string]string{
			"openai": {
				"OPENAI_API_KEY":  "",
				"OPENAI_BASE_URL": "",
			},
			"ollama": {
				"OLLAMA_API_BASE":       "http://localhost:11434",
				"OLLAMA_API_MODEL_NAME": "qwen:7b",
			},
			"zhipuai": {
				"ZHIPUAI_API_KEY": "SK-",
			},
		},
		EnableProxy: false,
		HTTPProxy:   "http://host.docker.internal:23457",
		HTTPSProxy:  "https://host.docker.internal:23457",
		Socks5Proxy: "socks5://host.docker.internal:23457",
		ConversationConfig: ConversationConfig{
			ConversationType: "default",
			LanguageModel:    "openai",
		},
		BackgroundURL: "/assets/backgrounds/default.png",
		EnableLive:    false,
		TTSConfig: TTSConfig{
			TTSVoiceID: "female-shaonv",
			Emotion:    "neutral",
			TTSType:    "minimax",
			Minimax: &MinimaxConfig{
				APIKey:  "",
				GroupID: "",
				Model:   "speech-02-turbo",
			},
		},
		EmotionConfig: EmotionConfig{
			Enabled:             false,
			Sensitivity:         0.5,
			ChangeSpeed:         0.5,
			DefaultEmotion:      "neutral",
			ExpressionIntensity: 0.7,
		},
	}

	cfg.MemoryStorageConfig.FaissMemory.DataDir = "storage/memory"
	cfg.MemoryStorageConfig.EnableLongMemory = false
	cfg.MemoryStorageConfig.EnableSummary = false
	cfg.MemoryStorageConfig.LanguageModelForSummary = "openai"
	cfg.MemoryStorageConfig.EnableReflection = false
	cfg.MemoryStorageConfig.LanguageModelForReflection = "openai"
	cfg.MemoryStorageConfig.LocalMemoryNum = 5

	return cfg
}
