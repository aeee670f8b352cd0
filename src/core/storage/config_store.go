package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"
)

// ConfigStore 全局配置文件存储
// 配置整体保存在 data/config.json，读取走TTL缓存，写入走临时文件+备份+重命名
type ConfigStore struct {
	logger *utils.Logger

	dataDir string
	ttl     time.Duration

	mu       sync.Mutex
	cache    *models.GlobalConfig
	cachedAt time.Time
}

// NewConfigStore 创建配置存储
func NewConfigStore(dataDir string, ttl time.Duration, logger *utils.Logger) *ConfigStore {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &ConfigStore{
		logger:  logger,
		dataDir: dataDir,
		ttl:     ttl,
	}
}

func (s *ConfigStore) configPath() string {
	return filepath.Join(s.dataDir, "config.json")
}

// defaultConfig 生成默认配置，角色名优先取roles.json中的第一个角色
func (s *ConfigStore) defaultConfig() *models.GlobalConfig {
	characterName := ""
	data, err := os.ReadFile(filepath.Join(s.dataDir, "roles.json"))
	if err == nil {
		var roles []models.CustomRole
		if err := json.Unmarshal(data, &roles); err == nil && len(roles) > 0 {
			characterName = roles[0].RoleName
		}
	}
	return models.DefaultGlobalConfig(characterName)
}

// Get 获取全局配置
// 磁盘文件缺失时写入默认配置；JSON损坏时回退为默认配置，不让进程崩溃
func (s *ConfigStore) Get() *models.GlobalConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil && time.Since(s.cachedAt) < s.ttl {
		return s.cache
	}

	data, err := os.ReadFile(s.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			cfg := s.defaultConfig()
			if err := s.saveLocked(cfg); err != nil {
				s.logger.Warn("写入默认配置失败: %v", err)
			}
			return cfg
		}
		s.logger.Error("读取配置文件失败: %v", err)
		return s.defaultConfig()
	}

	cfg := &models.GlobalConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		s.logger.Error("配置文件JSON格式无效: %v", err)
		return s.defaultConfig()
	}

	s.cache = cfg
	s.cachedAt = time.Now()
	return cfg
}

// Save 保存全局配置并更新缓存
func (s *ConfigStore) Save(cfg *models.GlobalConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(cfg)
}

func (s *ConfigStore) saveLocked(cfg *models.GlobalConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(s.configPath(), data); err != nil {
		return err
	}

	s.cache = cfg
	s.cachedAt = time.Now()
	return nil
}

// Invalidate 清除缓存，强制下次从文件重新加载
func (s *ConfigStore) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}
