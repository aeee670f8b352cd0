package tts

import (
	"context"
	"fmt"
	"sync"

	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"
)

// DefaultBackend 凭证缺失时兜底使用的合成后端
const DefaultBackend = "edge"

// Request 一次语音合成请求
type Request struct {
	Text    string
	VoiceID string
	Emotion string
	Speed   float64
}

// Result 合成产物，Audio为原始MP3字节
type Result struct {
	Audio    []byte
	Format   string
	Duration float64
}

// Provider 语音合成提供者接口
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, req *Request) (*Result, error)
	Voices() []models.VoiceInfo
}

// Factory 提供者工厂函数类型
type Factory func(cfg *models.TTSConfig, logger *utils.Logger) (Provider, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register 注册语音合成提供者工厂
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// Driver 按配置组装的提供者集合
// edge始终可用并作为默认后端，minimax仅在凭证齐全时注册
type Driver struct {
	providers map[string]Provider
	logger    *utils.Logger
}

// NewDriver 根据全局配置构建合成驱动
func NewDriver(cfg *models.GlobalConfig, logger *utils.Logger) (*Driver, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	d := &Driver{
		providers: make(map[string]Provider),
		logger:    logger,
	}

	ttsCfg := &models.TTSConfig{}
	if cfg != nil {
		ttsCfg = &cfg.TTSConfig
	}

	edgeFactory, ok := factories[DefaultBackend]
	if !ok {
		return nil, fmt.Errorf("默认合成后端未注册: %s", DefaultBackend)
	}
	edge, err := edgeFactory(ttsCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("创建默认合成后端失败: %v", err)
	}
	d.providers[DefaultBackend] = edge

	if mm := ttsCfg.Minimax; mm != nil && mm.APIKey != "" && mm.GroupID != "" {
		if factory, ok := factories["minimax"]; ok {
			p, err := factory(ttsCfg, logger)
			if err != nil {
				logger.Warn("创建minimax合成后端失败: %v", err)
			} else {
				d.providers["minimax"] = p
			}
		}
	}

	return d, nil
}

// Provider 按后端标识取提供者，未知标识回落到默认后端
func (d *Driver) Provider(backend string) Provider {
	if p, ok := d.providers[backend]; ok {
		return p
	}
	if backend != "" {
		d.logger.Warn("未知的合成后端: %s，回落到%s", backend, DefaultBackend)
	}
	return d.providers[DefaultBackend]
}

// Has 判断后端是否已注册
func (d *Driver) Has(backend string) bool {
	_, ok := d.providers[backend]
	return ok
}

// Synthesize 用指定后端合成语音，后端标识本身不会导致失败
func (d *Driver) Synthesize(ctx context.Context, backend string, req *Request) (*Result, error) {
	return d.Provider(backend).Synthesize(ctx, req)
}

// Voices 指定后端可用的声音列表
func (d *Driver) Voices(backend string) []models.VoiceInfo {
	return d.Provider(backend).Voices()
}

// Emotions 支持的情绪标识与中文标签
func (d *Driver) Emotions() []map[string]string {
	out := make([]map[string]string, 0, len(models.Emotions))
	for _, e := range models.Emotions {
		out = append(out, map[string]string{
			"id":    e,
			"name":  models.EmotionLabel[e],
			"value": e,
		})
	}
	return out
}
