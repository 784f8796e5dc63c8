package model

import "time"

// CompanyProfile 公司基础档案
type CompanyProfile struct {
	ID          string
	Name        string
	Batch       string // 所属批次标签，例如 "2025-Spring"
	Description string
	// AchievementOverride 公司级目标达成率覆盖值（0-100），优先于各 KPI 项的均值
	AchievementOverride *float64
}

// Session 辅导/导师会话记录
type Session struct {
	ID       string
	Date     string // YYYY-MM-DD，来源数据可能缺失或格式错误
	Title    string
	Summary  string
	FollowUp string
	Types    []string // 会话类型标签
	Mentors  []string // 参与导师姓名
}

// ExpertRequest 专家资源请求记录
type ExpertRequest struct {
	ID               string
	Status           string // 自由格式状态串，词表见 lexicon
	Urgency          string
	RequestedAt      time.Time
	Summary          string
	Problem          string
	DesiredExpertise string
	SupportTypes     []string
}

// Retrospective KPT 复盘记录
type Retrospective struct {
	ID         string
	ReviewDate string // YYYY-MM-DD
	Keep       string
	Problem    string
	Try        string
}

// KPI 项层级
const (
	KPILevelObjective = "objective"
	KPILevelMilestone = "milestone"
	KPILevelAction    = "action"
)

// KPIItem 层级化绩效目标项
type KPIItem struct {
	ID       string
	Level    string // objective / milestone / action
	Name     string
	Target   string
	Achieved *bool
	Rate     *float64 // 显式达成率（0-100）
	RateText string   // 未结构化的达成率字符串，如 "75%" 或 "80"
}

// KPIValue 关联到 KPI 项的周期性测量值
type KPIValue struct {
	ItemID string
	Period string // 周期标签，如 "2025-07"
	Value  float64
}

// PriorReport 历史分析记录摘要
type PriorReport struct {
	GeneratedAt time.Time
	Summary     string
}

// BatchDashboard 跨公司批次看板数据（可选的富化信息）
type BatchDashboard struct {
	Batch           string  `json:"batch"`
	CompanyCount    int     `json:"company_count"`
	AvgSessionCount float64 `json:"avg_session_count"`
	GeneratedAt     string  `json:"generated_at"`
}

// CompanyDataPacket 单个公司的不可变数据快照。
// 一次分析周期构建一次，构建后所有下游分析均以只读方式消费。
type CompanyDataPacket struct {
	Company        *CompanyProfile
	Sessions       []Session
	ExpertRequests []ExpertRequest
	Retrospectives []Retrospective
	KPIItems       []KPIItem
	KPIValues      []KPIValue
	PriorReports   []PriorReport
	Dashboard      *BatchDashboard // 富化获取超时或失败时为 nil
	CollectedAt    time.Time
}

// Normalize 在边界处把 nil 切片统一为空切片，
// 使内部分析逻辑无需做防御性判空。
func (p *CompanyDataPacket) Normalize() {
	if p.Sessions == nil {
		p.Sessions = []Session{}
	}
	if p.ExpertRequests == nil {
		p.ExpertRequests = []ExpertRequest{}
	}
	if p.Retrospectives == nil {
		p.Retrospectives = []Retrospective{}
	}
	if p.KPIItems == nil {
		p.KPIItems = []KPIItem{}
	}
	if p.KPIValues == nil {
		p.KPIValues = []KPIValue{}
	}
	if p.PriorReports == nil {
		p.PriorReports = []PriorReport{}
	}
}
