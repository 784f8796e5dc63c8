package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/gg/gson"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/cache"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/logger"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

// RecordStore 记录存储的读接口。实现只需保证最终一致，本模块不做任何写入。
type RecordStore interface {
	// GetCompany 公司档案；不存在时返回 (nil, nil)
	GetCompany(ctx context.Context, id string) (*model.CompanyProfile, error)
	ListSessions(ctx context.Context, companyID string) ([]model.Session, error)
	ListExpertRequests(ctx context.Context, companyID string) ([]model.ExpertRequest, error)
	ListRetrospectives(ctx context.Context, companyID string) ([]model.Retrospective, error)
	ListKPIItems(ctx context.Context, companyID string) ([]model.KPIItem, error)
	ListKPIValues(ctx context.Context, companyID string) ([]model.KPIValue, error)
	ListPriorReports(ctx context.Context, companyID string) ([]model.PriorReport, error)
}

// DashboardSource 批次看板富化数据源（非必需依赖）
type DashboardSource interface {
	FetchBatchDashboard(ctx context.Context, batch string) (*model.BatchDashboard, error)
}

// 富化获取的最长等待时间
const defaultDashboardTimeout = 8 * time.Second

// Aggregator 数据聚合器：为单个公司组装一份不可变快照
type Aggregator struct {
	store            RecordStore
	dashboard        DashboardSource // 可为 nil
	cache            *cache.Cache
	dashboardTimeout time.Duration
}

// New 创建聚合器；dashboard 与 c 均可为 nil
func New(store RecordStore, dashboard DashboardSource, c *cache.Cache) *Aggregator {
	return &Aggregator{
		store:            store,
		dashboard:        dashboard,
		cache:            c,
		dashboardTimeout: defaultDashboardTimeout,
	}
}

// Collect 组装公司数据包。公司档案不存在时返回 (nil, nil)，
// 会话与专家请求子获取失败时降级为空集合，不中断整体聚合。
func (a *Aggregator) Collect(ctx context.Context, companyID string) (*model.CompanyDataPacket, error) {
	if v, ok := a.cache.Get(companyID); ok {
		if packet, ok := v.(*model.CompanyDataPacket); ok {
			logger.Log.Debugf("数据包缓存命中 [%s]", companyID)
			return packet, nil
		}
	}

	company, err := a.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		logger.Log.Warnf("公司档案不存在 [%s]", companyID)
		return nil, nil
	}

	packet := &model.CompanyDataPacket{Company: company}

	// 富化获取与主体获取并行，最后统一收敛
	dashCh := a.fetchDashboard(ctx, company.Batch)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions, err := a.store.ListSessions(ctx, companyID)
		if err != nil {
			logger.Log.Warnf("获取会话记录失败，降级为空 [%s]: %v", companyID, err)
			return
		}
		packet.Sessions = sessions
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		requests, err := a.store.ListExpertRequests(ctx, companyID)
		if err != nil {
			logger.Log.Warnf("获取专家请求失败，降级为空 [%s]: %v", companyID, err)
			return
		}
		packet.ExpertRequests = requests
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		priors, err := a.store.ListPriorReports(ctx, companyID)
		if err != nil {
			logger.Log.Warnf("获取历史分析记录失败，降级为空 [%s]: %v", companyID, err)
			return
		}
		packet.PriorReports = priors
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		retros, err := a.store.ListRetrospectives(ctx, companyID)
		if err != nil {
			logger.Log.Warnf("获取复盘记录失败，降级为空 [%s]: %v", companyID, err)
			return
		}
		packet.Retrospectives = retros
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		items, err := a.store.ListKPIItems(ctx, companyID)
		if err != nil {
			logger.Log.Warnf("获取 KPI 项失败，降级为空 [%s]: %v", companyID, err)
			return
		}
		packet.KPIItems = items
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		values, err := a.store.ListKPIValues(ctx, companyID)
		if err != nil {
			logger.Log.Warnf("获取 KPI 测量值失败，降级为空 [%s]: %v", companyID, err)
			return
		}
		packet.KPIValues = values
	}()

	wg.Wait()

	if dashCh != nil {
		select {
		case packet.Dashboard = <-dashCh:
		case <-time.After(a.dashboardTimeout):
			// 富化数据不是必需依赖：超时即视为缺失，底层请求结果直接丢弃
			logger.Log.Infof("批次看板获取超时，跳过富化 [%s]", companyID)
		}
	}

	packet.Normalize()
	packet.CollectedAt = time.Now()

	logger.Log.Debugf("数据包组装完成 [%s]: %s", companyID, gson.ToString(packet))
	a.cache.Set(companyID, packet)

	return packet, nil
}

// fetchDashboard 异步发起富化获取；未配置数据源或无批次标签时返回 nil
func (a *Aggregator) fetchDashboard(ctx context.Context, batch string) <-chan *model.BatchDashboard {
	if a.dashboard == nil || batch == "" {
		return nil
	}

	ch := make(chan *model.BatchDashboard, 1)
	go func() {
		d, err := a.dashboard.FetchBatchDashboard(ctx, batch)
		if err != nil {
			logger.Log.Warnf("批次看板获取失败 [%s]: %v", batch, err)
			ch <- nil
			return
		}
		ch <- d
	}()
	return ch
}
