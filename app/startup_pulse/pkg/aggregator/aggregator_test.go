package aggregator

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/cache"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/logger"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger("error", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// mockStore 模拟记录存储，可按需注入错误
type mockStore struct {
	company     *model.CompanyProfile
	sessions    []model.Session
	requestsErr error
	getCalls    atomic.Int32
}

func (m *mockStore) GetCompany(ctx context.Context, id string) (*model.CompanyProfile, error) {
	m.getCalls.Add(1)
	return m.company, nil
}

func (m *mockStore) ListSessions(ctx context.Context, companyID string) ([]model.Session, error) {
	return m.sessions, nil
}

func (m *mockStore) ListExpertRequests(ctx context.Context, companyID string) ([]model.ExpertRequest, error) {
	if m.requestsErr != nil {
		return nil, m.requestsErr
	}
	return nil, nil
}

func (m *mockStore) ListRetrospectives(ctx context.Context, companyID string) ([]model.Retrospective, error) {
	return nil, nil
}

func (m *mockStore) ListKPIItems(ctx context.Context, companyID string) ([]model.KPIItem, error) {
	return nil, nil
}

func (m *mockStore) ListKPIValues(ctx context.Context, companyID string) ([]model.KPIValue, error) {
	return nil, nil
}

func (m *mockStore) ListPriorReports(ctx context.Context, companyID string) ([]model.PriorReport, error) {
	return nil, nil
}

// slowDashboard 模拟响应缓慢的批次看板
type slowDashboard struct {
	delay time.Duration
}

func (d *slowDashboard) FetchBatchDashboard(ctx context.Context, batch string) (*model.BatchDashboard, error) {
	time.Sleep(d.delay)
	return &model.BatchDashboard{Batch: batch, CompanyCount: 8}, nil
}

func TestCollectCompanyNotFound(t *testing.T) {
	agg := New(&mockStore{}, nil, nil)

	packet, err := agg.Collect(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if packet != nil {
		t.Errorf("Collect() = %v, want nil for missing company", packet)
	}
}

func TestCollectPartialFailure(t *testing.T) {
	store := &mockStore{
		company:     &model.CompanyProfile{ID: "c1", Name: "Acme"},
		sessions:    []model.Session{{ID: "s1", Date: "2025-05-01"}},
		requestsErr: errors.New("connection refused"),
	}
	agg := New(store, nil, nil)

	packet, err := agg.Collect(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if packet == nil {
		t.Fatal("Collect() = nil, want packet despite sub-fetch failure")
	}
	if len(packet.Sessions) != 1 {
		t.Errorf("Sessions = %v, want 1", packet.Sessions)
	}
	// 子获取失败降级为空集合而不是 nil
	if packet.ExpertRequests == nil || len(packet.ExpertRequests) != 0 {
		t.Errorf("ExpertRequests = %v, want empty slice", packet.ExpertRequests)
	}
	if packet.CollectedAt.IsZero() {
		t.Error("CollectedAt is zero")
	}
}

func TestCollectDashboardTimeout(t *testing.T) {
	store := &mockStore{
		company: &model.CompanyProfile{ID: "c1", Name: "Acme", Batch: "2025-Spring"},
	}
	agg := New(store, &slowDashboard{delay: 200 * time.Millisecond}, nil)
	agg.dashboardTimeout = 10 * time.Millisecond

	packet, err := agg.Collect(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if packet.Dashboard != nil {
		t.Errorf("Dashboard = %v, want nil on timeout", packet.Dashboard)
	}
}

func TestCollectDashboardSuccess(t *testing.T) {
	store := &mockStore{
		company: &model.CompanyProfile{ID: "c1", Name: "Acme", Batch: "2025-Spring"},
	}
	agg := New(store, &slowDashboard{}, nil)

	packet, err := agg.Collect(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if packet.Dashboard == nil || packet.Dashboard.CompanyCount != 8 {
		t.Errorf("Dashboard = %v, want batch dashboard", packet.Dashboard)
	}
}

func TestCollectCacheHit(t *testing.T) {
	store := &mockStore{
		company: &model.CompanyProfile{ID: "c1", Name: "Acme"},
	}
	agg := New(store, nil, cache.New(time.Minute))

	first, err := agg.Collect(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	second, err := agg.Collect(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if first != second {
		t.Error("second Collect() returned a different packet, want cache hit")
	}
	if n := store.getCalls.Load(); n != 1 {
		t.Errorf("GetCompany called %d times, want 1", n)
	}
}
