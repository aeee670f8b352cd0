package websocket

import (
	"net/http"
	"sync"

	"companion-ai-server/src/core/channel"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// EffectFrame 推送给展示端的效果帧
type EffectFrame struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	Emote    string      `json:"emote,omitempty"`
	Action   string      `json:"action,omitempty"`
	AudioURL string      `json:"audio_url,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
}

// Hub 展示端推送集线器
// 展示端（3D形象页面）通过WebSocket连上来，编排器产生的字幕、
// 表情、动作与语音效果统一经Broadcast推给所有在线展示端。
// 展示端发来的帧同样过分类器，页面也能注入用户消息。
type Hub struct {
	logger   *utils.Logger
	upgrader *websocket.Upgrader
	clients  sync.Map // 连接ID -> *client
	handlers channel.Handlers
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// NewHub 创建展示端集线器
func NewHub(logger *utils.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源，生产环境应该更严格
			},
		},
	}
}

// SetHandlers 设置展示端入站帧的事件回调
func (h *Hub) SetHandlers(handlers channel.Handlers) {
	h.handlers = handlers
}

// HandleConnection 把gin请求升级为展示端连接
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("展示端连接升级失败: %v", err)
		return
	}

	id := uuid.NewString()
	cl := &client{conn: conn}
	h.clients.Store(id, cl)
	h.logger.Info("展示端已连接: id=%s，在线%d个", id, h.ClientCount())

	go h.readLoop(id, cl)
}

// readLoop 读取展示端入站帧直到连接断开
func (h *Hub) readLoop(id string, cl *client) {
	defer func() {
		h.clients.Delete(id)
		cl.conn.Close()
		h.logger.Info("展示端已断开: id=%s，在线%d个", id, h.ClientCount())
	}()

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}
		event, err := channel.Classify(raw)
		if err != nil {
			h.logger.Warn("丢弃展示端入站帧: %v", err)
			continue
		}
		h.dispatch(event)
	}
}

func (h *Hub) dispatch(event *channel.Event) {
	switch event.Kind {
	case channel.KindUserMessage:
		if h.handlers.OnUserMessage != nil {
			h.handlers.OnUserMessage(event.Config, event.UserName, event.Content, event.Emote)
		}
	case channel.KindBehaviorAction:
		if h.handlers.OnBehaviorAction != nil {
			h.handlers.OnBehaviorAction(event.Content, event.Emote)
		}
	case channel.KindGuestMessage:
		if h.handlers.OnGuestMessage != nil {
			h.handlers.OnGuestMessage(event.Config, event.UserName, event.Content, event.Emote, event.Action)
		}
	}
}

// Broadcast 向所有展示端推送效果帧，写失败的连接当场剔除
func (h *Hub) Broadcast(frame EffectFrame) {
	h.clients.Range(func(key, value interface{}) bool {
		cl := value.(*client)
		if err := cl.writeJSON(frame); err != nil {
			h.logger.Warn("展示端写入失败，剔除: id=%v, err=%v", key, err)
			cl.conn.Close()
			h.clients.Delete(key)
		}
		return true
	})
}

// ClientCount 当前在线展示端数量
func (h *Hub) ClientCount() int {
	count := 0
	h.clients.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// Close 关闭所有展示端连接
func (h *Hub) Close() {
	h.clients.Range(func(key, value interface{}) bool {
		value.(*client).conn.Close()
		h.clients.Delete(key)
		return true
	})
}

// Attached 是否有展示端在线
func (h *Hub) Attached() bool {
	return h.ClientCount() > 0
}

// Emote 推送表情
func (h *Hub) Emote(emote string) {
	h.Broadcast(EffectFrame{Type: "emote", Emote: emote})
}

// PlayAnimation 推送动作
func (h *Hub) PlayAnimation(name string) {
	h.Broadcast(EffectFrame{Type: "behavior_action", Action: name})
}

// ShowSubtitle 推送字幕
func (h *Hub) ShowSubtitle(text string) {
	h.Broadcast(EffectFrame{Type: "subtitle", Text: text})
}

// ClearSubtitle 清空字幕
func (h *Hub) ClearSubtitle() {
	h.Broadcast(EffectFrame{Type: "subtitle", Text: ""})
}

// PushSpeech 推送语音播放帧
func (h *Hub) PushSpeech(audioURL string, scr models.Screenplay) {
	h.Broadcast(EffectFrame{Type: "speak", AudioURL: audioURL, Payload: scr})
}

// PushChatLog 推送一条新的对话记录
func (h *Hub) PushChatLog(msg models.ChatMessage) {
	h.Broadcast(EffectFrame{Type: "chat_log", Payload: msg})
}
