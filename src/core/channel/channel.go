package channel

import (
	"context"
	"sync"
	"time"

	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/gorilla/websocket"
)

// Handlers 事件回调集合
type Handlers struct {
	OnUserMessage    func(cfg *models.GlobalConfig, userName, content, emote string)
	OnBehaviorAction func(content, emote string)
	OnGuestMessage   func(cfg *models.GlobalConfig, userName, content, emote, action string)
}

// handshakeFrame 连接建立后发送给桥接服务的握手帧
type handshakeFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Session 与桥接服务之间的长连接会话
// 断线后无限重连：读循环断开等1秒，拨号失败等5秒
// 显式Close会取消监督上下文，抑制由此触发的自动重连
type Session struct {
	url      string
	logger   *utils.Logger
	handlers Handlers
	dialer   *websocket.Dialer

	// 重连等待时间，测试中可调小
	closeRetryWait time.Duration
	dialRetryWait  time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	opened bool

	// OnConnect 每次连接建立后调用（可选）
	OnConnect func()
}

// NewSession 创建桥接会话
func NewSession(url string, handlers Handlers, logger *utils.Logger) *Session {
	return &Session{
		url:            url,
		logger:         logger,
		handlers:       handlers,
		dialer:         websocket.DefaultDialer,
		closeRetryWait: 1 * time.Second,
		dialRetryWait:  5 * time.Second,
	}
}

// Open 启动会话，连接维护在后台进行
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.opened = true
	s.mu.Unlock()

	go s.connectLoop(ctx)
}

// Close 关闭会话并抑制后续重连
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.opened = false
	s.mu.Unlock()
}

// connectLoop 维护连接并无限重连
func (s *Session) connectLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.logger.Warn("桥接服务连接失败: %v，%s后重试", err, s.dialRetryWait)
			if !sleepCtx(ctx, s.dialRetryWait) {
				return
			}
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		s.logger.Info("桥接服务连接已建立: %s", s.url)

		// 握手帧
		if err := conn.WriteJSON(handshakeFrame{Type: "connection", Message: "connection success"}); err != nil {
			s.logger.Warn("发送握手帧失败: %v", err)
		}

		if s.OnConnect != nil {
			s.OnConnect()
		}

		s.readLoop(ctx, conn)

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		default:
		}

		s.logger.Info("桥接服务连接已断开，%s后重连", s.closeRetryWait)
		if !sleepCtx(ctx, s.closeRetryWait) {
			return
		}
	}
}

// readLoop 读取并分发入站帧，直到连接断开
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		event, err := Classify(raw)
		if err != nil {
			// 桥接消息仅用于驱动展示，坏帧直接丢弃
			s.logger.Warn("丢弃入站帧: %v", err)
			continue
		}
		s.dispatch(event)
	}
}

func (s *Session) dispatch(event *Event) {
	switch event.Kind {
	case KindUserMessage:
		if s.handlers.OnUserMessage != nil {
			s.handlers.OnUserMessage(event.Config, event.UserName, event.Content, event.Emote)
		}
	case KindBehaviorAction:
		if s.handlers.OnBehaviorAction != nil {
			s.handlers.OnBehaviorAction(event.Content, event.Emote)
		}
	case KindGuestMessage:
		if s.handlers.OnGuestMessage != nil {
			s.handlers.OnGuestMessage(event.Config, event.UserName, event.Content, event.Emote, event.Action)
		}
	}
}

// sleepCtx 等待指定时间，上下文取消时返回false
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
