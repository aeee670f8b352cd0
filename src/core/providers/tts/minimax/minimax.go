package minimax

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"companion-ai-server/src/core/providers/tts"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/go-resty/resty/v2"
)

var _ tts.Provider = (*Provider)(nil)

func init() {
	tts.Register("minimax", NewProvider)
}

const (
	endpoint     = "https://api.minimax.chat/v1/t2a_v2"
	defaultModel = "speech-02-turbo"
	defaultVoice = "female-shaonv"
)

// Provider Minimax语音合成提供者
// 仅在apiKey与groupId齐全时注册
type Provider struct {
	apiKey  string
	groupID string
	model   string
	client  *resty.Client
	logger  *utils.Logger
}

// NewProvider 创建Minimax提供者
func NewProvider(cfg *models.TTSConfig, logger *utils.Logger) (tts.Provider, error) {
	mm := cfg.Minimax
	if mm == nil || mm.APIKey == "" || mm.GroupID == "" {
		return nil, fmt.Errorf("minimax凭证不完整")
	}
	model := mm.Model
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		apiKey:  mm.APIKey,
		groupID: mm.GroupID,
		model:   model,
		client:  resty.New().SetTimeout(30 * time.Second),
		logger:  logger,
	}, nil
}

func (p *Provider) Name() string {
	return "minimax"
}

// voiceSetting 声音参数
type voiceSetting struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Vol     float64 `json:"vol"`
	Pitch   int     `json:"pitch"`
	Emotion string  `json:"emotion,omitempty"`
}

// audioSetting 音频编码参数，output_format为hex时返回十六进制字符串
type audioSetting struct {
	SampleRate int    `json:"sample_rate"`
	Bitrate    int    `json:"bitrate"`
	Format     string `json:"format"`
	Channel    int    `json:"channel"`
}

type synthesizeRequest struct {
	Model        string       `json:"model"`
	Text         string       `json:"text"`
	Stream       bool         `json:"stream"`
	VoiceSetting voiceSetting `json:"voice_setting"`
	AudioSetting audioSetting `json:"audio_setting"`
	OutputFormat string       `json:"output_format"`
}

// Synthesize 调用t2a_v2接口合成语音
func (p *Provider) Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("合成文本为空")
	}

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = defaultVoice
	}
	speed := req.Speed
	if speed == 0 {
		speed = 1.0
	}

	vs := voiceSetting{
		VoiceID: voiceID,
		Speed:   speed,
		Vol:     1.0,
		Pitch:   0,
	}
	// 仅对支持情绪的模型携带emotion参数
	if emotionCapable(p.model) && models.IsValidEmotion(req.Emotion) {
		vs.Emotion = req.Emotion
	}

	body := synthesizeRequest{
		Model:        p.model,
		Text:         req.Text,
		Stream:       false,
		VoiceSetting: vs,
		AudioSetting: audioSetting{
			SampleRate: 32000,
			Bitrate:    128000,
			Format:     "mp3",
			Channel:    1,
		},
		OutputFormat: "hex",
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+p.apiKey).
		SetQueryParam("GroupId", p.groupID).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("minimax请求失败: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("minimax返回状态码%d: %s", resp.StatusCode(), resp.String())
	}

	hexAudio, err := extractHexAudio(resp.Body())
	if err != nil {
		return nil, err
	}

	audio, err := hex.DecodeString(hexAudio)
	if err != nil {
		return nil, fmt.Errorf("minimax音频解码失败: %v", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("minimax返回空音频")
	}

	return &tts.Result{Audio: audio, Format: "mp3"}, nil
}

// extractHexAudio 从响应中提取十六进制音频字符串
// 兼容 data.audio、data为字符串、response.data 三种嵌套形态
func extractHexAudio(raw []byte) (string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return "", fmt.Errorf("minimax响应解析失败: %v", err)
	}

	if data, ok := top["data"]; ok {
		if audio := audioFromData(data); audio != "" {
			return audio, nil
		}
	}
	if nested, ok := top["response"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil {
			if data, ok := inner["data"]; ok {
				if audio := audioFromData(data); audio != "" {
					return audio, nil
				}
			}
		}
	}

	return "", fmt.Errorf("minimax响应中没有音频数据: %s", truncate(string(raw), 200))
}

func audioFromData(data json.RawMessage) string {
	var obj struct {
		Audio string `json:"audio"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Audio != "" {
		return obj.Audio
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// emotionCapable 判断模型是否支持emotion参数
func emotionCapable(model string) bool {
	switch model {
	case "speech-01-turbo", "speech-01-hd", "speech-02-turbo", "speech-02-hd":
		return true
	}
	return false
}

// Voices 常用Minimax声音列表
func (p *Provider) Voices() []models.VoiceInfo {
	return []models.VoiceInfo{
		{ID: "female-shaonv", Name: "少女音"},
		{ID: "female-yujie", Name: "御姐音"},
		{ID: "female-chengshu", Name: "成熟女声"},
		{ID: "female-tianmei", Name: "甜美女声"},
		{ID: "male-qn-qingse", Name: "青涩青年"},
		{ID: "male-qn-jingying", Name: "精英青年"},
		{ID: "male-qn-badao", Name: "霸道青年"},
		{ID: "male-qn-daxuesheng", Name: "青年大学生"},
		{ID: "presenter_male", Name: "男性主持人"},
		{ID: "presenter_female", Name: "女性主持人"},
		{ID: "audiobook_male_1", Name: "男性有声书1"},
		{ID: "audiobook_female_1", Name: "女性有声书1"},
	}
}
