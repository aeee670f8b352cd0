package configs

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WebConfig HTTP服务配置
type WebConfig struct {
	IP   string `yaml:"ip" json:"ip"`
	Port int    `yaml:"port" json:"port"`
}

// LogConfig 日志配置
type LogConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogDir   string `yaml:"log_dir" json:"log_dir"`
	LogFile  string `yaml:"log_file" json:"log_file"`
}

// BridgeConfig 聊天/直播桥接服务配置（入站事件源）
type BridgeConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url" json:"url"` // 为空时根据APP_ENV选择默认地址
}

// StorageConfig 本地文件存储配置
type StorageConfig struct {
	DataDir   string `yaml:"data_dir" json:"data_dir"`     // config.json / roles.json 所在目录
	PublicDir string `yaml:"public_dir" json:"public_dir"` // 静态资源根目录（assets、tmp）
	CacheTTL  int    `yaml:"cache_ttl" json:"cache_ttl"`   // 文件缓存有效期(秒)
}

// Config 主配置结构
type Config struct {
	Web     WebConfig     `yaml:"web" json:"web"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Bridge  BridgeConfig  `yaml:"bridge" json:"bridge"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
}

var (
	Cfg *Config
)

func (cfg *Config) ToString() string {
	data, _ := yaml.Marshal(cfg)
	return string(data)
}

func (cfg *Config) FromString(data string) error {
	return yaml.Unmarshal([]byte(data), cfg)
}

func (cfg *Config) setDefaults() {
	cfg.Web.IP = "0.0.0.0"
	cfg.Web.Port = 8080

	cfg.Log.LogDir = "logs"
	cfg.Log.LogLevel = "INFO"
	cfg.Log.LogFile = "server.log"

	cfg.Bridge.Enabled = true
	cfg.Bridge.URL = ""

	cfg.Storage.DataDir = "data"
	cfg.Storage.PublicDir = "public"
	cfg.Storage.CacheTTL = 60
}

// BridgeURL 返回桥接服务地址
// 未显式配置时按 APP_ENV 选择：开发环境走本地8000端口，生产环境走站点反代路径
func (cfg *Config) BridgeURL() string {
	if cfg.Bridge.URL != "" {
		return cfg.Bridge.URL
	}
	if os.Getenv("APP_ENV") == "production" {
		return "ws://localhost/api/chatbot/ws/"
	}
	return "ws://localhost:8000/ws/"
}

// 从config.yaml加载
func LoadConfig() (*Config, string, error) {
	config := &Config{}
	path := "config.yaml"

	config.setDefaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, path, err
		}
	}

	Cfg = config
	return config, path, nil
}
