package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	DB          DBConfig          `yaml:"db"`
	Log         LogConfig         `yaml:"log"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
	Lexicon     LexiconConfig     `yaml:"lexicon"`
	Cache       CacheConfig       `yaml:"cache"`
	Companies   []string          `yaml:"companies"`
	Persona     string            `yaml:"persona"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LLMConfig LLM 相关配置（未配置 api_key 时跳过简报生成）
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// DashboardConfig 批次看板富化数据源配置
type DashboardConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LexiconConfig 词表配置；path 为空时使用内置词表
type LexiconConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig 数据包缓存配置；ttl 为 0 时关闭缓存
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
