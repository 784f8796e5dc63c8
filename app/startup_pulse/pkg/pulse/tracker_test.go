package pulse

import (
	"fmt"
	"testing"
	"time"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

var collectedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func packetWithDates(dates ...string) *model.CompanyDataPacket {
	p := &model.CompanyDataPacket{
		Company:     &model.CompanyProfile{ID: "c1", Name: "Acme"},
		CollectedAt: collectedAt,
	}
	for i, d := range dates {
		p.Sessions = append(p.Sessions, model.Session{ID: fmt.Sprintf("s%d", i), Date: d})
	}
	p.Normalize()
	return p
}

func TestCadenceNoSessions(t *testing.T) {
	report := New(nil).Track(packetWithDates())
	c := report.Cadence

	if c.TotalSessions != 0 {
		t.Errorf("TotalSessions = %d, want 0", c.TotalSessions)
	}
	if c.Trend != model.TrendIrregular {
		t.Errorf("Trend = %s, want irregular", c.Trend)
	}
	if c.DensityLabel != "warning" {
		t.Errorf("DensityLabel = %s, want warning", c.DensityLabel)
	}
}

func TestCadenceInsufficientHistory(t *testing.T) {
	report := New(nil).Track(packetWithDates("2025-05-01", "2025-05-08", "2025-05-15"))
	c := report.Cadence

	if c.Trend != "" {
		t.Errorf("Trend = %s, want empty with only 2 intervals", c.Trend)
	}
	if c.TrendNote == "" {
		t.Error("TrendNote is empty, want explanation")
	}
}

func TestCadenceTrends(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  string
	}{
		// 间隔 [7,7,7,7]
		{"stable", []string{"2025-01-01", "2025-01-08", "2025-01-15", "2025-01-22", "2025-01-29"}, model.TrendStable},
		// 间隔 [10,10,30,30]，后半段均值是前半段的 3 倍
		{"slowing", []string{"2025-01-01", "2025-01-11", "2025-01-21", "2025-02-20", "2025-03-22"}, model.TrendSlowing},
		// 间隔 [30,30,10,10]
		{"accelerating", []string{"2025-01-01", "2025-01-31", "2025-03-02", "2025-03-12", "2025-03-22"}, model.TrendAccelerating},
		// 间隔 [5,5,45,45]，离散度覆盖规则压过比值判断
		{"irregular", []string{"2025-01-01", "2025-01-06", "2025-01-11", "2025-02-25", "2025-04-11"}, model.TrendIrregular},
	}

	tracker := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := tracker.Track(packetWithDates(tt.dates...))
			if report.Cadence.Trend != tt.want {
				t.Errorf("Trend = %s, want %s", report.Cadence.Trend, tt.want)
			}
		})
	}
}

func TestCadenceDensity(t *testing.T) {
	// 每周一次，共 12 次，跨度 77 天 → 3 个月周期
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		dates = append(dates, start.AddDate(0, 0, i*7).Format("2006-01-02"))
	}

	report := New(nil).Track(packetWithDates(dates...))
	c := report.Cadence

	if c.PeriodMonths != 3 {
		t.Errorf("PeriodMonths = %d, want 3", c.PeriodMonths)
	}
	if c.DensityScore != 93 {
		t.Errorf("DensityScore = %d, want 93", c.DensityScore)
	}
	if c.DensityLabel != "very active" {
		t.Errorf("DensityLabel = %s, want very active", c.DensityLabel)
	}
	if c.AvgIntervalDays != 7 {
		t.Errorf("AvgIntervalDays = %v, want 7", c.AvgIntervalDays)
	}
}

func TestCadenceTypeCounts(t *testing.T) {
	p := packetWithDates("2025-05-01", "2025-05-08", "2025-05-15")
	p.Sessions[0].Types = []string{"office-hour"}
	p.Sessions[1].Types = []string{"office-hour", "workshop"}
	p.Sessions[2].Types = []string{"workshop", "office-hour"}

	report := New(nil).Track(p)
	counts := report.Cadence.TypeCounts

	if len(counts) != 2 {
		t.Fatalf("TypeCounts = %v, want 2 types", counts)
	}
	if counts[0].Type != "office-hour" || counts[0].Count != 3 {
		t.Errorf("TypeCounts[0] = %+v, want office-hour x3", counts[0])
	}
	if counts[0].LastDate != "2025-05-15" {
		t.Errorf("office-hour last date = %s, want 2025-05-15", counts[0].LastDate)
	}
}

func TestExtractMilestones(t *testing.T) {
	p := packetWithDates()
	p.Sessions = []model.Session{
		{ID: "s1", Date: "2025-03-01", Title: "月度复核", Summary: "本月营收突破 100 万"},
		// 同日同类别的第二条应被去重
		{ID: "s2", Date: "2025-03-01", Summary: "签约客户落地"},
	}
	p.Retrospectives = []model.Retrospective{
		{ID: "t1", ReviewDate: "2025-03-10", Keep: "完成战略调整，确认转型方向"},
	}
	p.ExpertRequests = []model.ExpertRequest{
		{ID: "r1", Status: "completed", RequestedAt: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), Summary: "融资协议咨询"},
		// 未完结请求不产生里程碑
		{ID: "r2", Status: "submitted", RequestedAt: time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), Summary: "融资介绍"},
	}

	milestones := New(nil).Track(p).Milestones

	if len(milestones) != 3 {
		t.Fatalf("milestones = %v, want 3", milestones)
	}

	// 按日期倒序
	if milestones[0].Date != "2025-03-10" || milestones[0].Category != model.MilestoneInflection {
		t.Errorf("milestones[0] = %+v, want inflection on 2025-03-10", milestones[0])
	}
	if milestones[1].Date != "2025-03-05" || milestones[1].Category != model.MilestoneDecision {
		t.Errorf("milestones[1] = %+v, want decision on 2025-03-05", milestones[1])
	}
	if milestones[2].Date != "2025-03-01" || milestones[2].Category != model.MilestoneAchievement {
		t.Errorf("milestones[2] = %+v, want achievement on 2025-03-01", milestones[2])
	}

	// 去重后保留最早扫描到的那条
	if milestones[2].Source != "session" || milestones[2].Detail != "月度复核" {
		t.Errorf("milestones[2] source/detail = %s/%s", milestones[2].Source, milestones[2].Detail)
	}
}

func TestMilestonesCap(t *testing.T) {
	p := packetWithDates()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		p.Sessions = append(p.Sessions, model.Session{
			ID:      fmt.Sprintf("s%d", i),
			Date:    start.AddDate(0, 0, i).Format("2006-01-02"),
			Summary: "营收突破新高",
		})
	}

	milestones := New(nil).Track(p).Milestones
	if len(milestones) != 15 {
		t.Errorf("milestones = %d, want capped at 15", len(milestones))
	}
}

func TestAssessHealth(t *testing.T) {
	p := packetWithDates("2025-01-01")
	achieved := true
	notAchieved := false
	p.KPIItems = []model.KPIItem{
		{ID: "k1", Achieved: &achieved},
		{ID: "k2", Achieved: &achieved},
		{ID: "k3", Achieved: &notAchieved},
	}
	p.Retrospectives = []model.Retrospective{{ID: "t1", ReviewDate: "2025-05-20"}}
	p.ExpertRequests = []model.ExpertRequest{{ID: "r1", Status: "submitted"}}

	signals := New(nil).Track(p).HealthSignals
	byName := make(map[string]string)
	for _, s := range signals {
		byName[s.Name] = s.Status
	}

	// 仅 1 次会话，密度必然低
	if byName["meeting_density"] != model.StatusConcern {
		t.Errorf("meeting_density = %s, want concern", byName["meeting_density"])
	}
	// 距最近会话已远超 30 天
	if byName["recency"] != model.StatusConcern {
		t.Errorf("recency = %s, want concern", byName["recency"])
	}
	if byName["retrospective_cadence"] != model.StatusGood {
		t.Errorf("retrospective_cadence = %s, want good", byName["retrospective_cadence"])
	}
	if byName["expert_utilization"] != model.StatusGood {
		t.Errorf("expert_utilization = %s, want good", byName["expert_utilization"])
	}
	// 达成 2/3 ≥ 0.6
	if byName["kpi_achievement"] != model.StatusGood {
		t.Errorf("kpi_achievement = %s, want good", byName["kpi_achievement"])
	}
	// 趋势不可判断时不发信号
	if _, ok := byName["meeting_trend"]; ok {
		t.Error("meeting_trend signal emitted without enough history")
	}
}
