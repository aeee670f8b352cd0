package speech

import (
	"net/http"
	"path"
	"strings"
	"time"

	"companion-ai-server/src/core/media"
	"companion-ai-server/src/core/providers/tts"
	"companion-ai-server/src/core/storage"
	"companion-ai-server/src/core/utils"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// 临时音频的保留时长，超时由定时任务清理
const tempAudioMaxAge = time.Hour

// SynthesizeRequest 语音合成请求参数
type SynthesizeRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voice_id"`
	Emotion string  `json:"emotion"`
	TTSType string  `json:"tts_type"`
	Speed   float64 `json:"speed"`
}

// VoicesRequest 查询声音列表请求参数
type VoicesRequest struct {
	TTSType string `json:"tts_type"`
}

// Handler 语音合成处理器
type Handler struct {
	configStore *storage.ConfigStore
	driver      *tts.Driver
	temp        *media.TempStore
	cron        *cron.Cron
	logger      *utils.Logger
}

// NewHandler 创建语音合成处理器
func NewHandler(configStore *storage.ConfigStore, driver *tts.Driver, temp *media.TempStore, logger *utils.Logger) *Handler {
	return &Handler{
		configStore: configStore,
		driver:      driver,
		temp:        temp,
		logger:      logger,
	}
}

// RegisterRoutes 注册语音合成路由
func (h *Handler) RegisterRoutes(apiGroup *gin.RouterGroup) {
	group := apiGroup.Group("/speech/tts")
	{
		group.POST("/generate", h.Generate)
		group.POST("/stream", h.Stream)
		group.POST("/voices", h.Voices)
		group.GET("/emotions", h.Emotions)
	}
}

// StartCleanup 启动临时音频的定时清理，每小时跑一次
func (h *Handler) StartCleanup() error {
	h.cron = cron.New()
	if _, err := h.cron.AddFunc("@hourly", func() {
		h.temp.Sweep(tempAudioMaxAge)
	}); err != nil {
		return err
	}
	h.cron.Start()
	return nil
}

// StopCleanup 停止定时清理
func (h *Handler) StopCleanup() {
	if h.cron != nil {
		h.cron.Stop()
	}
}

// synthesize 按请求合成并修复音频，落盘后返回访问URL
func (h *Handler) synthesize(c *gin.Context, req *SynthesizeRequest) (string, bool) {
	backend := req.TTSType
	if backend == "" {
		backend = h.configStore.Get().TTSConfig.TTSType
	}

	result, err := h.driver.Synthesize(c.Request.Context(), backend, &tts.Request{
		Text:    req.Text,
		VoiceID: req.VoiceID,
		Emotion: req.Emotion,
		Speed:   req.Speed,
	})
	if err != nil {
		h.logger.Error("语音合成失败: %v", err)
		utils.SpeechError(c, http.StatusInternalServerError, "语音合成失败: "+err.Error())
		return "", false
	}

	audio := media.NormalizeMP3(result.Audio)
	url, _, err := h.temp.WriteMP3(audio)
	if err != nil {
		h.logger.Error("语音落盘失败: %v", err)
		utils.SpeechError(c, http.StatusInternalServerError, "语音保存失败")
		return "", false
	}
	return url, true
}

// bindSynthesize 解析并校验合成请求
func (h *Handler) bindSynthesize(c *gin.Context) (*SynthesizeRequest, bool) {
	var req SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SpeechError(c, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return nil, false
	}
	if strings.TrimSpace(req.Text) == "" || req.VoiceID == "" {
		utils.SpeechError(c, http.StatusBadRequest, "text与voice_id不能为空")
		return nil, false
	}
	return &req, true
}

// Generate 合成语音并返回音频URL
func (h *Handler) Generate(c *gin.Context) {
	req, ok := h.bindSynthesize(c)
	if !ok {
		return
	}
	url, ok := h.synthesize(c, req)
	if !ok {
		return
	}

	utils.SpeechSuccess(c, gin.H{
		"audio_url": url,
		"text":      req.Text,
		"emotion":   req.Emotion,
	})
}

// Stream 合成语音并302跳转到音频文件
func (h *Handler) Stream(c *gin.Context) {
	req, ok := h.bindSynthesize(c)
	if !ok {
		return
	}
	url, ok := h.synthesize(c, req)
	if !ok {
		return
	}

	if _, exists := h.temp.Resolve(path.Base(url)); !exists {
		utils.SpeechError(c, http.StatusNotFound, "音频文件不存在")
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Voices 查询指定后端的声音列表
func (h *Handler) Voices(c *gin.Context) {
	var req VoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SpeechError(c, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return
	}

	backend := req.TTSType
	if backend == "" {
		backend = h.configStore.Get().TTSConfig.TTSType
	}
	utils.SpeechSuccess(c, h.driver.Voices(backend))
}

// Emotions 查询支持的情绪列表
func (h *Handler) Emotions(c *gin.Context) {
	utils.SpeechSuccess(c, h.driver.Emotions())
}
