package usecase

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/startup_pulse/app/display/internal/domain"
	"github.com/iWorld-y/startup_pulse/app/display/internal/repo"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/engine"
)

// ErrEngineUnavailable 未配置分析引擎时的刷新错误
var ErrEngineUnavailable = errors.ServiceUnavailable("ENGINE_UNAVAILABLE", "analysis engine is not configured")

// SignalUseCase 公司信号业务逻辑
type SignalUseCase struct {
	repo repo.SignalRepo
	eng  *engine.Engine // 为空时 Refresh 不可用
	log  *log.Helper
}

// NewSignalUseCase 创建信号业务逻辑实例
func NewSignalUseCase(repo repo.SignalRepo, eng *engine.Engine, logger log.Logger) *SignalUseCase {
	return &SignalUseCase{repo: repo, eng: eng, log: log.NewHelper(logger)}
}

// List 分页列出公司信号摘要
func (uc *SignalUseCase) List(ctx context.Context, page, pageSize int) ([]*domain.SignalSummary, int, error) {
	return uc.repo.ListSignals(ctx, page, pageSize)
}

// GetLatest 获取指定公司最近一次的完整分析
func (uc *SignalUseCase) GetLatest(ctx context.Context, companyID string) (*domain.SignalDetail, error) {
	return uc.repo.GetLatestByCompany(ctx, companyID)
}

// Refresh 触发一轮新的分析任务，返回本轮完成的公司数
func (uc *SignalUseCase) Refresh(ctx context.Context, companyIDs []string, persona string) (int, error) {
	if uc.eng == nil {
		return 0, ErrEngineUnavailable
	}
	results, err := uc.eng.Run(ctx, engine.RunOptions{
		CompanyIDs: companyIDs,
		Persona:    persona,
		ProgressCallback: func(status string, progress int) {
			uc.log.Infof("refresh %d%%: %s", progress, status)
		},
	})
	if err != nil {
		return 0, err
	}
	return len(results), nil
}
