package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/startup_pulse/app/display/internal/conf"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/config"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/engine"
	spLogger "github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/logger"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/storage"
)

// NewPulseEngine 初始化 startup_pulse 引擎
func NewPulseEngine(c *conf.Pulse, logger log.Logger) (*engine.Engine, func(), error) {
	if c == nil {
		return nil, func() {}, nil
	}

	// 将 internal/conf.Pulse 转换为 pkg/config.Config
	spCfg := &config.Config{
		LLM: config.LLMConfig{
			BaseURL: c.Llm.BaseUrl,
			APIKey:  c.Llm.ApiKey,
			Model:   c.Llm.Model,
		},
		Persona:   c.Persona,
		Companies: c.Companies,
		Log: config.LogConfig{
			Level: c.Log.Level,
			File:  c.Log.File,
		},
		Concurrency: config.ConcurrencyConfig{
			QPS: int(c.Concurrency.Qps),
			RPM: int(c.Concurrency.Rpm),
		},
		DB: config.DBConfig{
			Host:     c.Db.Host,
			Port:     int(c.Db.Port),
			User:     c.Db.User,
			Password: c.Db.Password,
			Name:     c.Db.Name,
		},
	}
	if c.Dashboard != nil {
		spCfg.Dashboard = config.DashboardConfig{
			BaseURL:        c.Dashboard.BaseUrl,
			APIKey:         c.Dashboard.ApiKey,
			TimeoutSeconds: int(c.Dashboard.TimeoutSeconds),
		}
	}
	if c.Lexicon != nil {
		spCfg.Lexicon = config.LexiconConfig{Path: c.Lexicon.Path}
	}
	if c.Cache != nil {
		spCfg.Cache = config.CacheConfig{TTLSeconds: int(c.Cache.TtlSeconds)}
	}

	// 初始化日志
	if err := spLogger.InitLogger(spCfg.Log.Level, spCfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init startup_pulse logger: %v", err)
		_ = spLogger.InitLogger("info", "") // 降级处理
	}

	// 初始化存储层
	store, err := storage.NewStorage(spCfg.DB)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init storage for engine: %v", err)
		return nil, nil, err
	}

	// 初始化核心引擎
	eng, err := engine.NewEngine(spCfg, store)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("Cleaning up startup_pulse engine")
		store.Close()
	}

	return eng, cleanup, nil
}
