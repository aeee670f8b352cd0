package channel

import (
	"encoding/json"
	"fmt"

	"companion-ai-server/src/models"
)

// EventKind 入站事件类型
type EventKind string

const (
	KindUserMessage    EventKind = "user"
	KindBehaviorAction EventKind = "behavior_action"
	KindGuestMessage   EventKind = "guest"
)

// Event 分类后的领域事件
type Event struct {
	Kind     EventKind
	Config   *models.GlobalConfig
	UserName string
	Content  string
	Emote    string
	Action   string
}

// frame 桥接服务的入站帧结构
type frame struct {
	Message struct {
		Type     string `json:"type"`
		UserName string `json:"user_name"`
		Content  string `json:"content"`
		Emote    string `json:"emote"`
		Action   string `json:"action"`
	} `json:"message"`
	GlobalConfig *models.GlobalConfig `json:"globalConfig"`
}

// Classify 解析入站帧并分类为领域事件
// 无法解析或类型未知时返回错误，由调用方记日志后丢弃，不向上传播
func Classify(raw []byte) (*Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("解析入站帧失败: %v", err)
	}

	switch f.Message.Type {
	case "user":
		return &Event{
			Kind:     KindUserMessage,
			Config:   f.GlobalConfig,
			UserName: f.Message.UserName,
			Content:  f.Message.Content,
			Emote:    f.Message.Emote,
		}, nil
	case "behavior_action":
		return &Event{
			Kind:    KindBehaviorAction,
			Content: f.Message.Content,
			Emote:   f.Message.Emote,
		}, nil
	case "danmaku", "welcome":
		return &Event{
			Kind:     KindGuestMessage,
			Config:   f.GlobalConfig,
			UserName: f.Message.UserName,
			Content:  f.Message.Content,
			Emote:    f.Message.Emote,
			Action:   f.Message.Action,
		}, nil
	default:
		return nil, fmt.Errorf("未知的消息类型: %q", f.Message.Type)
	}
}
