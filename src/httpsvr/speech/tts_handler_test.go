package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"companion-ai-server/src/core/media"
	"companion-ai-server/src/core/providers/tts"
	"companion-ai-server/src/core/storage"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct{}

func (p *fakeProvider) Name() string { return "edge" }

func (p *fakeProvider) Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error) {
	// 带同步头的伪MP3，足以通过修复流程
	audio := append([]byte{0xFF, 0xFB, 0x90, 0x44}, []byte(req.Text)...)
	return &tts.Result{Audio: audio, Format: "mp3"}, nil
}

func (p *fakeProvider) Voices() []models.VoiceInfo {
	return []models.VoiceInfo{{ID: "zh-CN-XiaoxiaoNeural", Name: "晓晓"}}
}

func newSpeechTestRouter(t *testing.T) (*gin.Engine, *media.TempStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := utils.NewConsoleLogger()

	tts.Register("edge", func(cfg *models.TTSConfig, logger *utils.Logger) (tts.Provider, error) {
		return &fakeProvider{}, nil
	})
	driver, err := tts.NewDriver(nil, logger)
	require.NoError(t, err)

	temp, err := media.NewTempStore(t.TempDir(), "/tmp", logger)
	require.NoError(t, err)

	configStore := storage.NewConfigStore(t.TempDir(), time.Minute, logger)

	engine := gin.New()
	NewHandler(configStore, driver, temp, logger).RegisterRoutes(engine.Group("/api/v1"))
	return engine, temp
}

func postJSON(engine *gin.Engine, url string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGenerateRequiresTextAndVoice(t *testing.T) {
	engine, _ := newSpeechTestRouter(t)

	for _, body := range []gin.H{
		{"voice_id": "zh-CN-XiaoxiaoNeural"},
		{"text": "你好"},
		{"text": "   ", "voice_id": "zh-CN-XiaoxiaoNeural"},
	} {
		w := postJSON(engine, "/api/v1/speech/tts/generate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp utils.SpeechResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "400", resp.Code)
	}
}

func TestGenerateReturnsAudioURL(t *testing.T) {
	engine, _ := newSpeechTestRouter(t)

	w := postJSON(engine, "/api/v1/speech/tts/generate",
		gin.H{"text": "你好呀", "voice_id": "zh-CN-XiaoxiaoNeural", "emotion": "happy"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code     string `json:"code"`
		Response struct {
			AudioURL string `json:"audio_url"`
			Text     string `json:"text"`
			Emotion  string `json:"emotion"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "200", resp.Code)
	assert.True(t, strings.HasPrefix(resp.Response.AudioURL, "/tmp/tts_"))
	assert.True(t, strings.HasSuffix(resp.Response.AudioURL, ".mp3"))
	assert.Equal(t, "你好呀", resp.Response.Text)
	assert.Equal(t, "happy", resp.Response.Emotion)
}

func TestStreamRedirectsToAudio(t *testing.T) {
	engine, _ := newSpeechTestRouter(t)

	w := postJSON(engine, "/api/v1/speech/tts/stream",
		gin.H{"text": "你好", "voice_id": "zh-CN-XiaoxiaoNeural"})

	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/tmp/tts_"))
}

func TestVoicesFallsBackOnUnknownBackend(t *testing.T) {
	engine, _ := newSpeechTestRouter(t)

	w := postJSON(engine, "/api/v1/speech/tts/voices", gin.H{"tts_type": "koeiromap"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Response []models.VoiceInfo `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Response, 1)
	assert.Equal(t, "zh-CN-XiaoxiaoNeural", resp.Response[0].ID)
}

func TestEmotionsList(t *testing.T) {
	engine, _ := newSpeechTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/speech/tts/emotions", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Response []map[string]string `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Response, len(models.Emotions))
	assert.Equal(t, "高兴", resp.Response[0]["name"])
}

func TestSweepRemovesOldTempFiles(t *testing.T) {
	_, temp := newSpeechTestRouter(t)

	url, path, err := temp.WriteMP3([]byte{0xFF, 0xFB, 0x90, 0x44, 0x01})
	require.NoError(t, err)
	require.NotEmpty(t, url)

	// 新文件不会被清理
	assert.Zero(t, temp.Sweep(tempAudioMaxAge))

	// 把文件改老后就会被清掉
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
	assert.Equal(t, 1, temp.Sweep(tempAudioMaxAge))
}
