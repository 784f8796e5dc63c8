package domain

import (
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/briefing"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

// SignalSummary 公司信号摘要
type SignalSummary struct {
	CompanyID    string
	CompanyName  string
	Batch        string
	DensityScore int
	DensityLabel string
	Trend        string
	SignalCount  int
	CreatedAt    string
}

// SignalDetail 公司信号详情：最近一次分析的两份完整报告与可选简报
type SignalDetail struct {
	CompanyID   string
	CompanyName string
	Batch       string
	Analyst     *model.AnalystReport
	Pulse       *model.PulseReport
	Briefing    *briefing.Briefing
	CreatedAt   string
}
