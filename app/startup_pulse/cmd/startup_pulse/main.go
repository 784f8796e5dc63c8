package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/config"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/engine"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/logger"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/storage"
)

var flagconf string

func init() {
	flag.StringVar(&flagconf, "conf", "app/startup_pulse/configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if cfg.DB.Host == "" {
		log.Fatal("配置错误: 未设置数据库连接信息 (db)")
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动公司脉搏分析...")

	ctx := context.Background()

	// 3. 初始化存储层（记录来源，必需依赖）
	store, err := storage.NewStorage(cfg.DB)
	if err != nil {
		logger.Log.Fatalf("无法连接数据库: %v", err)
	}
	defer store.Close()
	logger.Log.Info("已成功连接到数据库")

	// 4. 初始化核心引擎
	eng, err := engine.NewEngine(cfg, store)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	// 5. 执行分析
	start := time.Now()
	results, err := eng.Run(ctx, engine.RunOptions{
		Persona: cfg.Persona,
		ProgressCallback: func(status string, progress int) {
			logger.Log.Infof("进度 %d%%: %s", progress, status)
		},
	})
	if err != nil {
		logger.Log.Fatalf("分析任务失败: %v", err)
	}

	logger.Log.Infof("✅ 共完成 %d 家公司的信号分析，耗时 %s", len(results), time.Since(start).Round(time.Second))
}
