package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/aggregator"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/analyst"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/briefing"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/cache"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/config"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/dashboard"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/lexicon"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/logger"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/pulse"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/storage"
)

// Engine 核心处理引擎：聚合 → 分析 → 脉搏 → 简报 → 持久化
type Engine struct {
	cfg     *config.Config
	store   *storage.Storage
	agg     *aggregator.Aggregator
	analyst *analyst.Analyst
	tracker *pulse.Tracker
	briefer *briefing.Generator // 未配置 LLM 时为 nil
	limiter *rate.Limiter
}

// NewEngine 创建引擎实例
func NewEngine(cfg *config.Config, store *storage.Storage) (*Engine, error) {
	ctx := context.Background()

	lex, err := lexicon.Load(cfg.Lexicon.Path)
	if err != nil {
		return nil, fmt.Errorf("词表加载失败: %w", err)
	}
	logger.Log.Infof("词表已加载: version=%s", lex.Version)

	// 初始化限流器
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	burst := cfg.Concurrency.QPS
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)

	// 富化数据源为可选依赖
	var dash aggregator.DashboardSource
	if cfg.Dashboard.BaseURL != "" {
		dash = dashboard.NewClient(cfg.Dashboard)
	}

	packetCache := cache.New(time.Duration(cfg.Cache.TTLSeconds) * time.Second)

	var briefer *briefing.Generator
	if cfg.LLM.APIKey != "" {
		briefer, err = briefing.NewGenerator(ctx, cfg.LLM, limiter)
		if err != nil {
			return nil, err
		}
	}

	return &Engine{
		cfg:     cfg,
		store:   store,
		agg:     aggregator.New(store, dash, packetCache),
		analyst: analyst.New(lex),
		tracker: pulse.New(lex),
		briefer: briefer,
		limiter: limiter,
	}, nil
}

// RunOptions 运行选项
type RunOptions struct {
	CompanyIDs       []string
	Persona          string
	ProgressCallback func(status string, progress int)
}

// Result 单个公司的分析结果
type Result struct {
	CompanyID string
	Analyst   *model.AnalystReport
	Pulse     *model.PulseReport
	Briefing  *briefing.Briefing
}

// Run 执行一批公司的信号分析任务
func (e *Engine) Run(ctx context.Context, opts RunOptions) ([]*Result, error) {
	ids := opts.CompanyIDs
	if len(ids) == 0 {
		ids = e.cfg.Companies
	}
	if len(ids) == 0 && e.store != nil {
		stored, err := e.store.ListCompanyIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("获取公司列表失败: %w", err)
		}
		ids = stored
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no companies to analyze")
	}

	logger.Log.Infof("开始分析 %d 家公司的参与度信号", len(ids))
	if opts.ProgressCallback != nil {
		opts.ProgressCallback("starting", 0)
	}

	var results []*Result
	var mu sync.Mutex
	var wg sync.WaitGroup

	total := len(ids)
	completed := 0

	for _, id := range ids {
		wg.Add(1)
		go func(companyID string) {
			defer wg.Done()

			result, err := e.analyzeCompany(ctx, companyID, opts.Persona)
			if err != nil {
				logger.Log.Errorf("公司分析失败 [%s]: %v", companyID, err)
				return
			}
			if result == nil {
				return
			}

			mu.Lock()
			results = append(results, result)
			completed++
			progress := 10 + int(float64(completed)/float64(total)*80) // 10% -> 90%
			if opts.ProgressCallback != nil {
				opts.ProgressCallback(fmt.Sprintf("processed company: %s", companyID), progress)
			}
			mu.Unlock()
		}(id)
	}

	wg.Wait()

	if len(results) == 0 {
		return nil, fmt.Errorf("no company reports generated")
	}

	if opts.ProgressCallback != nil {
		opts.ProgressCallback("completed", 100)
	}
	return results, nil
}

// analyzeCompany 单个公司的完整分析流程；档案不存在时返回 (nil, nil)
func (e *Engine) analyzeCompany(ctx context.Context, companyID, persona string) (*Result, error) {
	packet, err := e.agg.Collect(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if packet == nil {
		logger.Log.Warnf("跳过无档案的公司 [%s]", companyID)
		return nil, nil
	}

	// 两个分析器互不依赖，基于同一份快照并行执行
	result := &Result{CompanyID: companyID}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Analyst = e.analyst.Analyze(packet)
	}()
	go func() {
		defer wg.Done()
		result.Pulse = e.tracker.Track(packet)
	}()
	wg.Wait()

	if e.briefer != nil {
		brief, err := e.briefer.Generate(ctx, packet.Company, result.Analyst, result.Pulse, persona)
		if err != nil {
			logger.Log.Errorf("简报生成失败 [%s]: %v", companyID, err)
		} else {
			result.Briefing = brief
		}
	}

	if e.store != nil {
		var briefAny any
		if result.Briefing != nil {
			briefAny = result.Briefing
		}
		if err := e.store.SaveReportRun(ctx, companyID, result.Analyst, result.Pulse, briefAny); err != nil {
			logger.Log.Errorf("保存分析报告失败 [%s]: %v", companyID, err)
		}
	}

	logger.Log.Infof("公司 [%s] 分析完成 (密度: %d, 信号: %d)",
		companyID, result.Pulse.Cadence.DensityScore, len(result.Pulse.HealthSignals))
	return result, nil
}
