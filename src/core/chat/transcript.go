package chat

import (
	"sync"

	"companion-ai-server/src/models"
)

// Transcript 当前会话的消息记录
type Transcript struct {
	mu       sync.RWMutex
	messages []models.ChatMessage

	// OnAppend 新消息入记录时的通知回调，装配时设置
	OnAppend func(models.ChatMessage)
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append 追加一条消息
func (t *Transcript) Append(msg models.ChatMessage) {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	notify := t.OnAppend
	t.mu.Unlock()
	if notify != nil {
		notify(msg)
	}
}

// EditLast 改写最后一条消息的内容，记录为空时不做任何事
func (t *Transcript) EditLast(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) == 0 {
		return
	}
	t.messages[len(t.messages)-1].Content = content
}

// EditAt 改写指定下标的消息内容，越界时不做任何事
func (t *Transcript) EditAt(index int, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.messages) {
		return
	}
	t.messages[index].Content = content
}

// Messages 返回消息记录的副本
func (t *Transcript) Messages() []models.ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len 当前消息条数
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Clear 清空消息记录
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
}
