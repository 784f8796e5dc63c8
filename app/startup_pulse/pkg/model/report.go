package model

// 会话节奏趋势分类
const (
	TrendAccelerating = "accelerating"
	TrendSlowing      = "slowing"
	TrendStable       = "stable"
	TrendIrregular    = "irregular"
)

// 健康信号状态
const (
	StatusGood    = "good"
	StatusWarning = "warning"
	StatusConcern = "concern"
)

// 数据缺口严重程度
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// 里程碑类别
const (
	MilestoneAchievement = "Achievement"
	MilestoneInflection  = "Inflection"
	MilestoneDecision    = "Decision"
	MilestoneRisk        = "Risk"
	MilestoneExternal    = "External"
)

// AnalystReport 确定性分析报告。每次调用基于当前快照重新计算，无内部状态。
type AnalystReport struct {
	KPI             KPIDiagnostics        `json:"kpi"`
	Topics          TopicAnalysis         `json:"topics"`
	Mentors         MentorAnalysis        `json:"mentors"`
	ExpertRequests  ExpertRequestAnalysis `json:"expert_requests"`
	Retrospective   RetroAnalysis         `json:"retrospective"`
	DataGaps        []DataGap             `json:"data_gaps"`
	MonthlyActivity []MonthlyActivity     `json:"monthly_activity"`
	Narrative       string                `json:"narrative"`
}

// KPIItemDiagnosis 单个 KPI 项的诊断结果
type KPIItemDiagnosis struct {
	Name         string   `json:"name"`
	Level        string   `json:"level"`
	Rate         *float64 `json:"rate,omitempty"`
	Achieved     *bool    `json:"achieved,omitempty"`
	LatestPeriod string   `json:"latest_period,omitempty"`
	LatestValue  *float64 `json:"latest_value,omitempty"`
}

// KPIDiagnostics 目标达成诊断
type KPIDiagnostics struct {
	Items []KPIItemDiagnosis `json:"items"`
	// OverallRate 公司整体达成率；无任何可用数据时为 nil
	OverallRate *float64 `json:"overall_rate,omitempty"`
	// RateWithoutData 存在达成率但没有任何测量数据支撑
	RateWithoutData bool `json:"rate_without_data"`
}

// KeywordStat 关键词频次统计
type KeywordStat struct {
	Keyword  string `json:"keyword"`
	Count    int    `json:"count"`
	LastSeen string `json:"last_seen,omitempty"`
}

// RecurringTopic 反复出现的话题及示例会话日期
type RecurringTopic struct {
	Keyword string   `json:"keyword"`
	Count   int      `json:"count"`
	Dates   []string `json:"dates"`
}

// TopicAnalysis 话题/关键词分析
type TopicAnalysis struct {
	TopKeywords     []KeywordStat    `json:"top_keywords"`
	RecurringTopics []RecurringTopic `json:"recurring_topics"`
	RecentFocus     []string         `json:"recent_focus"`
}

// MentorStat 单个导师的参与统计
type MentorStat struct {
	Name         string `json:"name"`
	SessionCount int    `json:"session_count"`
	LastDate     string `json:"last_date,omitempty"`
}

// AdviceTheme 建议主题及跟进文本示例
type AdviceTheme struct {
	Theme    string   `json:"theme"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// MentorAnalysis 导师参与模式分析
type MentorAnalysis struct {
	Mentors      []MentorStat  `json:"mentors"`
	AdviceThemes []AdviceTheme `json:"advice_themes"`
	// FollowUpRate 有效跟进记录占比（保留两位小数）
	FollowUpRate float64 `json:"follow_up_rate"`
}

// StatusCount 按状态统计的请求数
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ExpertRequestAnalysis 专家资源请求分析
type ExpertRequestAnalysis struct {
	StatusCounts []StatusCount `json:"status_counts"`
	// AvgResolutionDays 已完结请求的平均"处理时长"（天）。
	// 注意这是以快照时间近似的值，见计算处注释。
	AvgResolutionDays *float64 `json:"avg_resolution_days,omitempty"`
	DemandAreas       []string `json:"demand_areas"`
	PendingUrgent     int      `json:"pending_urgent"`
}

// RetroAnalysis 复盘模式挖掘
type RetroAnalysis struct {
	RecentKeep        []string      `json:"recent_keep"`
	RecentProblem     []string      `json:"recent_problem"`
	RecentTry         []string      `json:"recent_try"`
	RecurringProblems []KeywordStat `json:"recurring_problems"`
}

// DataGap 数据缺口
type DataGap struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// MonthlyActivity 按月统计的活动密度
type MonthlyActivity struct {
	Month        string `json:"month"` // YYYY-MM
	SessionCount int    `json:"session_count"`
	RetroCount   int    `json:"retro_count"`
	RequestCount int    `json:"request_count"`
}

// PulseReport 脉搏报告
type PulseReport struct {
	Cadence       MeetingCadence `json:"cadence"`
	Milestones    []Milestone    `json:"milestones"`
	HealthSignals []HealthSignal `json:"health_signals"`
}

// SessionTypeCount 按会话类型的统计
type SessionTypeCount struct {
	Type     string `json:"type"`
	Count    int    `json:"count"`
	LastDate string `json:"last_date,omitempty"`
}

// MeetingCadence 会话节奏统计
type MeetingCadence struct {
	TotalSessions      int     `json:"total_sessions"`
	AvgIntervalDays    float64 `json:"avg_interval_days"`
	RecentIntervalDays float64 `json:"recent_interval_days"`
	PeriodMonths       int     `json:"period_months"`
	// Trend 为空串表示历史不足、未能分类，原因见 TrendNote
	Trend        string             `json:"trend"`
	TrendNote    string             `json:"trend_note,omitempty"`
	DensityScore int                `json:"density_score"`
	DensityLabel string             `json:"density_label"`
	TypeCounts   []SessionTypeCount `json:"type_counts"`
}

// Milestone 从自由文本中提取的里程碑事件
type Milestone struct {
	Date     string `json:"date"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Detail   string `json:"detail,omitempty"`
}

// HealthSignal 独立规则产生的定性健康信号
type HealthSignal struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}
