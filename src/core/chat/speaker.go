package chat

import (
	"context"
	"sync"
	"time"

	"companion-ai-server/src/core/media"
	"companion-ai-server/src/core/providers/tts"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"
)

// AudioPusher 把合成好的语音推给展示端
type AudioPusher interface {
	PushSpeech(audioURL string, scr models.Screenplay)
}

// 解码失败时按128kbps估算时长
const fallbackBytesPerSecond = 16000

// CharacterSpeaker 角色发声器
// 合成、修复、落盘，把音频URL推给展示端，按音频时长调度播放回调。
// 同一时刻只播一条台词，排队串行执行。
type CharacterSpeaker struct {
	driver *tts.Driver
	temp   *media.TempStore
	pusher AudioPusher
	logger *utils.Logger

	// 串行化播放
	playMu sync.Mutex
}

func NewCharacterSpeaker(driver *tts.Driver, temp *media.TempStore, pusher AudioPusher, logger *utils.Logger) *CharacterSpeaker {
	return &CharacterSpeaker{
		driver: driver,
		temp:   temp,
		pusher: pusher,
		logger: logger,
	}
}

var _ Speaker = (*CharacterSpeaker)(nil)

// Speak 合成并播放一条台词，播放首尾触发回调
// 合成失败时退化为静音片段，回调仍然按时触发
func (s *CharacterSpeaker) Speak(ctx context.Context, cfg *models.GlobalConfig, scr models.Screenplay, onStart, onEnd func()) {
	backend := ""
	voiceID := ""
	if cfg != nil {
		backend = cfg.TTSConfig.TTSType
		voiceID = cfg.TTSConfig.TTSVoiceID
	}

	go func() {
		s.playMu.Lock()
		defer s.playMu.Unlock()

		audio := s.synthesize(ctx, backend, voiceID, scr)
		audio = media.NormalizeMP3(audio)

		url, _, err := s.temp.WriteMP3(audio)
		if err != nil {
			s.logger.Error("语音落盘失败: %v", err)
			return
		}

		if onStart != nil {
			onStart()
		}
		s.pusher.PushSpeech(url, scr)

		wait := s.playbackDuration(audio)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if onEnd != nil {
			onEnd()
		}
	}()
}

func (s *CharacterSpeaker) synthesize(ctx context.Context, backend, voiceID string, scr models.Screenplay) []byte {
	result, err := s.driver.Synthesize(ctx, backend, &tts.Request{
		Text:    scr.Talk.Message,
		VoiceID: voiceID,
		Emotion: scr.Talk.Emotion,
	})
	if err != nil {
		s.logger.Warn("语音合成失败，退化为静音: %v", err)
		return media.SilentMP3()
	}
	return result.Audio
}

// playbackDuration 以解码时长为准，解码不了就按码率估算
func (s *CharacterSpeaker) playbackDuration(audio []byte) time.Duration {
	d, err := media.Duration(audio)
	if err == nil && d > 0 {
		return d
	}
	return time.Duration(float64(len(audio)) / fallbackBytesPerSecond * float64(time.Second))
}
