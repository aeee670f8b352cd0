package tts

import (
	"context"
	"testing"

	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Synthesize(ctx context.Context, req *Request) (*Result, error) {
	return &Result{Audio: []byte(p.name + ":" + req.Text), Format: "mp3"}, nil
}

func (p *stubProvider) Voices() []models.VoiceInfo {
	return []models.VoiceInfo{{ID: p.name + "-voice", Name: p.name}}
}

func registerStubs(t *testing.T) {
	t.Helper()
	Register("edge", func(cfg *models.TTSConfig, logger *utils.Logger) (Provider, error) {
		return &stubProvider{name: "edge"}, nil
	})
	Register("minimax", func(cfg *models.TTSConfig, logger *utils.Logger) (Provider, error) {
		return &stubProvider{name: "minimax"}, nil
	})
}

func TestNewDriverAlwaysRegistersDefault(t *testing.T) {
	registerStubs(t)

	driver, err := NewDriver(models.DefaultGlobalConfig(""), utils.NewConsoleLogger())
	require.NoError(t, err)

	assert.True(t, driver.Has("edge"))
	// 默认配置没有minimax凭证，不注册
	assert.False(t, driver.Has("minimax"))
}

func TestNewDriverRegistersMinimaxWithCredentials(t *testing.T) {
	registerStubs(t)

	cfg := models.DefaultGlobalConfig("")
	cfg.TTSConfig.Minimax = &models.MinimaxConfig{APIKey: "key", GroupID: "group"}

	driver, err := NewDriver(cfg, utils.NewConsoleLogger())
	require.NoError(t, err)
	assert.True(t, driver.Has("minimax"))
}

func TestDriverUnknownBackendFallsBackToDefault(t *testing.T) {
	registerStubs(t)

	driver, err := NewDriver(models.DefaultGlobalConfig(""), utils.NewConsoleLogger())
	require.NoError(t, err)

	// minimax未注册、完全未知的后端都回落到edge，不报错
	for _, backend := range []string{"minimax", "koeiromap", ""} {
		result, err := driver.Synthesize(context.Background(), backend, &Request{Text: "你好"})
		require.NoError(t, err, backend)
		assert.Equal(t, []byte("edge:你好"), result.Audio, backend)
	}
}

func TestDriverNilConfig(t *testing.T) {
	registerStubs(t)

	driver, err := NewDriver(nil, utils.NewConsoleLogger())
	require.NoError(t, err)
	assert.True(t, driver.Has("edge"))
}

func TestDriverVoicesPerBackend(t *testing.T) {
	registerStubs(t)

	cfg := models.DefaultGlobalConfig("")
	cfg.TTSConfig.Minimax = &models.MinimaxConfig{APIKey: "key", GroupID: "group"}
	driver, err := NewDriver(cfg, utils.NewConsoleLogger())
	require.NoError(t, err)

	voices := driver.Voices("minimax")
	require.Len(t, voices, 1)
	assert.Equal(t, "minimax-voice", voices[0].ID)

	assert.Equal(t, "edge-voice", driver.Voices("不存在的后端")[0].ID)
}

func TestDriverEmotions(t *testing.T) {
	registerStubs(t)

	driver, err := NewDriver(nil, utils.NewConsoleLogger())
	require.NoError(t, err)

	emotions := driver.Emotions()
	require.Len(t, emotions, len(models.Emotions))
	assert.Equal(t, "happy", emotions[0]["id"])
	assert.Equal(t, "高兴", emotions[0]["name"])
}
