package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"
)

// Viewer 已连接的展示端（3D形象页面）
type Viewer interface {
	Attached() bool
	Emote(emote string)
	PlayAnimation(name string)
}

// SubtitleSink 字幕输出
type SubtitleSink interface {
	ShowSubtitle(text string)
	ClearSubtitle()
}

// Speaker 台词发声：合成、下发音频并在播放首尾回调
type Speaker interface {
	Speak(ctx context.Context, cfg *models.GlobalConfig, scr models.Screenplay, onStart, onEnd func())
}

// 排队动作播放完毕后的复位动画与表情
const (
	idleAnimation  = "idle_01"
	neutralEmotion = "neutral"
)

// 打字机效果出字间隔
const typewriterInterval = 50 * time.Millisecond

// Orchestrator 把入站事件编排成字幕、表情、动作与语音
// 每次发声递增序号，过期的回调与打字机定时器一律忽略，后写者胜
type Orchestrator struct {
	viewer     Viewer
	subtitles  SubtitleSink
	speaker    Speaker
	transcript *Transcript
	logger     *utils.Logger

	seq atomic.Uint64

	mu       sync.Mutex
	typeStop chan struct{}
}

func NewOrchestrator(viewer Viewer, subtitles SubtitleSink, speaker Speaker, transcript *Transcript, logger *utils.Logger) *Orchestrator {
	return &Orchestrator{
		viewer:     viewer,
		subtitles:  subtitles,
		speaker:    speaker,
		transcript: transcript,
		logger:     logger,
	}
}

// nextSeq 开启一次新的发声，之前的回调全部作废
func (o *Orchestrator) nextSeq() uint64 {
	return o.seq.Add(1)
}

func (o *Orchestrator) isCurrent(seq uint64) bool {
	return o.seq.Load() == seq
}

// HandleUserMessage 处理桥接推来的角色回复
func (o *Orchestrator) HandleUserMessage(ctx context.Context, cfg *models.GlobalConfig, userName, content, emote string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	if emote == "" {
		emote = neutralEmotion
	}

	seq := o.nextSeq()
	o.subtitles.ClearSubtitle()

	koeiro := models.KoeiroParam{}
	if cfg != nil && cfg.KoeiroParam != nil {
		koeiro = *cfg.KoeiroParam
	}
	// 长回复按句切分，逐句合成
	screenplays := models.TextsToScreenplay(models.SplitSentence(content), koeiro, emote)
	if len(screenplays) == 0 {
		return
	}

	o.transcript.Append(models.ChatMessage{Role: "assistant", Content: content, UserName: userName})

	for i, scr := range screenplays {
		scr := scr
		first := i == 0
		o.speaker.Speak(ctx, cfg, scr, func() {
			if !o.isCurrent(seq) {
				return
			}
			o.viewer.Emote(scr.Expression)
			if first {
				o.startTypewriter(seq, content)
			}
		}, nil)
	}
}

// HandleDanmakuMessage 处理弹幕/进场消息：入记录、可选动作、发声，播完复位
func (o *Orchestrator) HandleDanmakuMessage(ctx context.Context, cfg *models.GlobalConfig, userName, content, emote, action string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	if emote == "" {
		emote = neutralEmotion
	}

	seq := o.nextSeq()
	// 先清字幕并落表情，合成失败也不会残留上一条字幕
	o.subtitles.ClearSubtitle()
	o.viewer.Emote(emote)

	o.transcript.Append(models.ChatMessage{Role: "user", Content: content, UserName: userName})

	if action != "" && o.viewer.Attached() {
		o.viewer.PlayAnimation(action)
	}

	koeiro := models.KoeiroParam{}
	if cfg != nil && cfg.KoeiroParam != nil {
		koeiro = *cfg.KoeiroParam
	}
	screenplays := models.TextsToScreenplay([]string{content}, koeiro, emote)
	for i, scr := range screenplays {
		scr := scr
		last := i == len(screenplays)-1
		o.speaker.Speak(ctx, cfg, scr, func() {
			if !o.isCurrent(seq) {
				return
			}
			o.viewer.Emote(scr.Expression)
			o.startTypewriter(seq, scr.Talk.Message)
		}, func() {
			// 只有播放过动作才需要复位
			if action == "" || !last || !o.isCurrent(seq) {
				return
			}
			o.viewer.PlayAnimation(idleAnimation)
			o.viewer.Emote(neutralEmotion)
		})
	}
}

// HandleBehaviorAction 处理行为动作指令
func (o *Orchestrator) HandleBehaviorAction(content, emote string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	if !o.viewer.Attached() {
		o.logger.Info("没有已连接的展示端，忽略行为动作: %s", content)
		return
	}
	if emote == "" {
		emote = neutralEmotion
	}
	o.viewer.Emote(emote)
	o.viewer.PlayAnimation(content)
}

// StartTypewriterEffect 以打字机效果输出字幕
// 空串与字面量"undefined"会被拒绝（桥接端序列化缺陷的遗留产物）
func (o *Orchestrator) StartTypewriterEffect(text string) {
	if text == "" || text == "undefined" {
		return
	}
	o.startTypewriter(o.nextSeq(), text)
}

func (o *Orchestrator) startTypewriter(seq uint64, text string) {
	if text == "" || text == "undefined" {
		return
	}

	o.mu.Lock()
	if o.typeStop != nil {
		close(o.typeStop)
	}
	stop := make(chan struct{})
	o.typeStop = stop
	o.mu.Unlock()

	o.subtitles.ClearSubtitle()

	go func() {
		runes := []rune(text)
		ticker := time.NewTicker(typewriterInterval)
		defer ticker.Stop()
		for i := 1; i <= len(runes); i++ {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			if !o.isCurrent(seq) {
				return
			}
			o.subtitles.ShowSubtitle(string(runes[:i]))
		}
	}()
}
