package usecase

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/startup_pulse/app/display/internal/domain"
)

// mockSignalRepo 模拟信号仓库
type mockSignalRepo struct{}

func (m *mockSignalRepo) ListSignals(ctx context.Context, page, pageSize int) ([]*domain.SignalSummary, int, error) {
	return []*domain.SignalSummary{{CompanyID: "c1", CompanyName: "Acme", DensityScore: 93}}, 1, nil
}

func (m *mockSignalRepo) GetLatestByCompany(ctx context.Context, companyID string) (*domain.SignalDetail, error) {
	return &domain.SignalDetail{CompanyID: companyID}, nil
}

func TestSignalUseCase_List(t *testing.T) {
	repo := &mockSignalRepo{}
	logger := log.DefaultLogger
	uc := NewSignalUseCase(repo, nil, logger)

	signals, total, err := uc.List(context.Background(), 1, 10)
	if err != nil {
		t.Errorf("List() error = %v", err)
		return
	}
	if total != 1 {
		t.Errorf("List() total = %v, want 1", total)
	}
	if len(signals) != 1 || signals[0].CompanyName != "Acme" {
		t.Errorf("List() signals = %v", signals)
	}
}

func TestSignalUseCase_GetLatest(t *testing.T) {
	uc := NewSignalUseCase(&mockSignalRepo{}, nil, log.DefaultLogger)

	detail, err := uc.GetLatest(context.Background(), "c1")
	if err != nil {
		t.Errorf("GetLatest() error = %v", err)
		return
	}
	if detail.CompanyID != "c1" {
		t.Errorf("GetLatest() company = %v, want c1", detail.CompanyID)
	}
}

func TestSignalUseCase_RefreshWithoutEngine(t *testing.T) {
	uc := NewSignalUseCase(&mockSignalRepo{}, nil, log.DefaultLogger)

	if _, err := uc.Refresh(context.Background(), nil, ""); err != ErrEngineUnavailable {
		t.Errorf("Refresh() error = %v, want ErrEngineUnavailable", err)
	}
}
