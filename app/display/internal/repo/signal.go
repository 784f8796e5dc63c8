package repo

import (
	"context"

	"github.com/iWorld-y/startup_pulse/app/display/internal/domain"
)

// SignalRepo 信号仓库接口
type SignalRepo interface {
	// ListSignals 分页获取各公司最近一次分析的摘要列表
	ListSignals(ctx context.Context, page, pageSize int) ([]*domain.SignalSummary, int, error)
	// GetLatestByCompany 获取指定公司最近一次分析的完整报告
	GetLatestByCompany(ctx context.Context, companyID string) (*domain.SignalDetail, error)
}
