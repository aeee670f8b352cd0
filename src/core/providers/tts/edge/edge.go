package edge

import (
	"context"
	"fmt"
	"strings"

	"companion-ai-server/src/core/providers/tts"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/wujunwei928/edge-tts-go/edge_tts"
)

var _ tts.Provider = (*Provider)(nil)

func init() {
	tts.Register("edge", NewProvider)
}

// 凭证不可用或声音标识非法时的兜底声音
const defaultVoice = "zh-CN-XiaoxiaoNeural"

// Provider 微软Edge语音合成提供者
// 不需要任何凭证，作为始终可用的默认后端
type Provider struct {
	logger *utils.Logger
}

// NewProvider 创建Edge提供者
func NewProvider(_ *models.TTSConfig, logger *utils.Logger) (tts.Provider, error) {
	return &Provider{logger: logger}, nil
}

func (p *Provider) Name() string {
	return "edge"
}

// Synthesize 合成语音，返回完整MP3字节
func (p *Provider) Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("合成文本为空")
	}

	voice := req.VoiceID
	if voice == "" || !strings.Contains(voice, "Neural") {
		voice = defaultVoice
	}

	opts := []edge_tts.CommunicateOption{edge_tts.SetVoice(voice)}
	if req.Speed != 0 && req.Speed != 1 {
		opts = append(opts, edge_tts.SetRate(rateString(req.Speed)))
	}

	comm, err := edge_tts.NewCommunicate(req.Text, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建edge合成会话失败: %v", err)
	}

	done := make(chan struct{})
	var audio []byte
	var streamErr error
	go func() {
		defer close(done)
		audio, streamErr = comm.Stream()
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}
	if streamErr != nil {
		return nil, fmt.Errorf("edge合成失败: %v", streamErr)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("edge合成返回空音频")
	}

	return &tts.Result{Audio: audio, Format: "mp3"}, nil
}

// rateString 把倍速转换为edge要求的百分比形式，如+20%、-10%
func rateString(speed float64) string {
	pct := int((speed - 1) * 100)
	if pct >= 0 {
		return fmt.Sprintf("+%d%%", pct)
	}
	return fmt.Sprintf("%d%%", pct)
}

// Voices 常用中英文声音列表
func (p *Provider) Voices() []models.VoiceInfo {
	return []models.VoiceInfo{
		{ID: "zh-CN-XiaoxiaoNeural", Name: "晓晓（女声）"},
		{ID: "zh-CN-XiaoyiNeural", Name: "晓伊（女声）"},
		{ID: "zh-CN-YunjianNeural", Name: "云健（男声）"},
		{ID: "zh-CN-YunxiNeural", Name: "云希（男声）"},
		{ID: "zh-CN-YunxiaNeural", Name: "云夏（男声）"},
		{ID: "zh-CN-YunyangNeural", Name: "云扬（男声）"},
		{ID: "zh-CN-liaoning-XiaobeiNeural", Name: "晓北（东北话）"},
		{ID: "zh-CN-shaanxi-XiaoniNeural", Name: "晓妮（陕西话）"},
		{ID: "zh-HK-HiuGaaiNeural", Name: "曉佳（粤语女声）"},
		{ID: "zh-TW-HsiaoChenNeural", Name: "曉臻（台湾女声）"},
		{ID: "en-US-AriaNeural", Name: "Aria (Female)"},
		{ID: "en-US-GuyNeural", Name: "Guy (Male)"},
		{ID: "ja-JP-NanamiNeural", Name: "七海（日语女声）"},
	}
}
