package websocket

import (
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"companion-ai-server/src/core/channel"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(utils.NewConsoleLogger())

	engine := gin.New()
	engine.GET("/ws", hub.HandleConnection)
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return hub, server
}

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitCond(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond(), "条件在超时前未满足")
}

func TestHubBroadcastReachesClients(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server)

	waitCond(t, time.Second, func() bool { return hub.Attached() })

	hub.ShowSubtitle("你好呀")

	var frame EffectFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "subtitle", frame.Type)
	assert.Equal(t, "你好呀", frame.Text)
}

func TestHubSpeakFrameCarriesAudioURL(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server)
	waitCond(t, time.Second, func() bool { return hub.Attached() })

	hub.PushSpeech("/tmp/tts_abc.mp3", models.Screenplay{Expression: "happy"})

	var frame EffectFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "speak", frame.Type)
	assert.Equal(t, "/tmp/tts_abc.mp3", frame.AudioURL)
}

func TestHubDispatchesInboundFrames(t *testing.T) {
	hub, server := newTestHub(t)

	var got atomic.Value
	hub.SetHandlers(channel.Handlers{
		OnUserMessage: func(cfg *models.GlobalConfig, userName, content, emote string) {
			got.Store(content)
		},
	})

	conn := dialHub(t, server)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(
		`{"message": {"type": "user", "user_name": "页面", "content": "来自页面的消息"}}`)))

	waitCond(t, time.Second, func() bool { return got.Load() != nil })
	assert.Equal(t, "来自页面的消息", got.Load())
}

func TestHubPrunesDeadClients(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server)

	waitCond(t, time.Second, func() bool { return hub.ClientCount() == 1 })
	conn.Close()

	// 断开后读循环退出并摘除连接
	waitCond(t, time.Second, func() bool { return hub.ClientCount() == 0 })
	assert.False(t, hub.Attached())
}
