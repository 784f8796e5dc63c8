package analyst

import (
	"reflect"
	"testing"
	"time"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

var collectedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newPacket() *model.CompanyDataPacket {
	p := &model.CompanyDataPacket{
		Company:     &model.CompanyProfile{ID: "c1", Name: "Acme", Batch: "2025-Spring", Description: "SaaS 数据产品"},
		CollectedAt: collectedAt,
	}
	p.Normalize()
	return p
}

func TestAnalyzeFollowUpRate(t *testing.T) {
	p := newPacket()
	p.Sessions = []model.Session{
		{ID: "s1", Date: "2025-05-01", FollowUp: "跟进事项：下周完成定价方案的初稿并同步给导师"},
		{ID: "s2", Date: "2025-05-08", FollowUp: "无"},
	}

	report := New(nil).Analyze(p)
	if report.Mentors.FollowUpRate != 0.5 {
		t.Errorf("FollowUpRate = %v, want 0.5", report.Mentors.FollowUpRate)
	}
}

func TestAnalyzeTopics(t *testing.T) {
	p := newPacket()
	p.Sessions = []model.Session{
		{ID: "s1", Date: "2025-05-01", Summary: "讨论了本月营收情况"},
		{ID: "s2", Date: "2025-05-08", Summary: "营收增长策略与获客渠道"},
		{ID: "s3", Date: "2025-05-15", Summary: "复核营收目标，另外聊了 churn 风险"},
	}

	report := New(nil).Analyze(p)

	var revenue *model.KeywordStat
	for i := range report.Topics.TopKeywords {
		if report.Topics.TopKeywords[i].Keyword == "revenue" {
			revenue = &report.Topics.TopKeywords[i]
		}
	}
	if revenue == nil {
		t.Fatal("TopKeywords missing revenue")
	}
	if revenue.Count != 3 {
		t.Errorf("revenue count = %d, want 3", revenue.Count)
	}
	if revenue.LastSeen != "2025-05-15" {
		t.Errorf("revenue last seen = %s, want 2025-05-15", revenue.LastSeen)
	}

	// churn 只出现一次，不应进入反复出现的话题
	for _, rt := range report.Topics.RecurringTopics {
		if rt.Keyword == "retention" {
			t.Error("retention appeared once, should not recur")
		}
	}

	// revenue 出现三次，应当进入反复出现的话题
	foundRecurring := false
	for _, rt := range report.Topics.RecurringTopics {
		if rt.Keyword == "revenue" {
			foundRecurring = true
			if rt.Count != 3 {
				t.Errorf("recurring revenue count = %d, want 3", rt.Count)
			}
		}
	}
	if !foundRecurring {
		t.Error("RecurringTopics missing revenue")
	}

	// 最近三次会话都提到营收
	if len(report.Topics.RecentFocus) == 0 || report.Topics.RecentFocus[0] != "revenue" {
		t.Errorf("RecentFocus = %v, want revenue first", report.Topics.RecentFocus)
	}
}

func TestAnalyzeKPI(t *testing.T) {
	p := newPacket()
	rate := 90.0
	p.KPIItems = []model.KPIItem{
		{ID: "k1", Name: "月营收", Level: model.KPILevelObjective, Rate: &rate},
		{ID: "k2", Name: "周活用户", Level: model.KPILevelMilestone, RateText: "70%"},
	}
	p.KPIValues = []model.KPIValue{
		{ItemID: "k1", Period: "2025-04", Value: 80},
		{ItemID: "k1", Period: "2025-05", Value: 100},
	}

	report := New(nil).Analyze(p)

	if report.KPI.OverallRate == nil {
		t.Fatal("OverallRate is nil")
	}
	if *report.KPI.OverallRate != 80.0 {
		t.Errorf("OverallRate = %v, want 80 (mean of 90 and 70)", *report.KPI.OverallRate)
	}
	if report.KPI.RateWithoutData {
		t.Error("RateWithoutData = true, but measurements exist")
	}

	// 最新测量取周期标签最大的值
	for _, d := range report.KPI.Items {
		if d.Name == "月营收" {
			if d.LatestPeriod != "2025-05" || d.LatestValue == nil || *d.LatestValue != 100 {
				t.Errorf("latest measurement = %s/%v, want 2025-05/100", d.LatestPeriod, d.LatestValue)
			}
		}
	}
}

func TestAnalyzeKPIOverride(t *testing.T) {
	p := newPacket()
	override := 55.0
	p.Company.AchievementOverride = &override
	rate := 90.0
	p.KPIItems = []model.KPIItem{{ID: "k1", Name: "月营收", Rate: &rate}}

	report := New(nil).Analyze(p)
	if report.KPI.OverallRate == nil || *report.KPI.OverallRate != 55.0 {
		t.Errorf("OverallRate = %v, want override 55", report.KPI.OverallRate)
	}
	// 有达成率但没有任何测量数据
	if !report.KPI.RateWithoutData {
		t.Error("RateWithoutData = false, want true")
	}
}

func TestAnalyzeRequests(t *testing.T) {
	p := newPacket()
	p.ExpertRequests = []model.ExpertRequest{
		{ID: "r1", Status: "completed", RequestedAt: collectedAt.AddDate(0, 0, -10),
			Summary: "需要定价专家", DesiredExpertise: "SaaS 定价策略"},
		{ID: "r2", Status: "submitted", Urgency: "urgent", RequestedAt: collectedAt.AddDate(0, 0, -2),
			SupportTypes: []string{"introduction"}},
		{ID: "r3", Status: "submitted", RequestedAt: collectedAt.AddDate(0, 0, -1)},
	}

	report := New(nil).Analyze(p)
	r := report.ExpertRequests

	if len(r.StatusCounts) != 2 {
		t.Fatalf("StatusCounts = %v, want 2 statuses", r.StatusCounts)
	}
	if r.StatusCounts[0].Status != "submitted" || r.StatusCounts[0].Count != 2 {
		t.Errorf("StatusCounts[0] = %+v, want submitted x2", r.StatusCounts[0])
	}

	if r.AvgResolutionDays == nil || *r.AvgResolutionDays != 10.0 {
		t.Errorf("AvgResolutionDays = %v, want 10", r.AvgResolutionDays)
	}
	if r.PendingUrgent != 1 {
		t.Errorf("PendingUrgent = %d, want 1", r.PendingUrgent)
	}

	wantAreas := []string{"SaaS 定价策略", "introduction"}
	if !reflect.DeepEqual(r.DemandAreas, wantAreas) {
		t.Errorf("DemandAreas = %v, want %v", r.DemandAreas, wantAreas)
	}
}

func TestAssessGaps(t *testing.T) {
	p := newPacket()
	p.Company.Description = ""
	p.KPIItems = []model.KPIItem{{ID: "k1", Name: "月营收"}}

	report := New(nil).Analyze(p)

	kinds := make(map[string]string)
	for _, g := range report.DataGaps {
		kinds[g.Kind] = g.Severity
	}
	if kinds["sessions"] != model.SeverityHigh {
		t.Errorf("sessions gap severity = %s, want high", kinds["sessions"])
	}
	if kinds["kpi_values"] != model.SeverityMedium {
		t.Errorf("kpi_values gap severity = %s, want medium", kinds["kpi_values"])
	}
	if _, ok := kinds["kpi_items"]; ok {
		t.Error("kpi_items gap reported although items exist")
	}
	if kinds["company_profile"] != model.SeverityLow {
		t.Errorf("company_profile gap severity = %s, want low", kinds["company_profile"])
	}
}

func TestMonthlyTimeline(t *testing.T) {
	p := newPacket()
	p.Sessions = []model.Session{
		{ID: "s1", Date: "2025-04-10"},
		{ID: "s2", Date: "2025-04-20"},
		{ID: "s3", Date: "2025-05-05"},
		{ID: "s4", Date: "not-a-date"},
	}
	p.Retrospectives = []model.Retrospective{{ID: "t1", ReviewDate: "2025-05-06"}}
	p.ExpertRequests = []model.ExpertRequest{{ID: "r1", RequestedAt: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)}}

	report := New(nil).Analyze(p)
	timeline := report.MonthlyActivity

	if len(timeline) != 2 {
		t.Fatalf("timeline = %v, want 2 months", timeline)
	}
	if timeline[0].Month != "2025-04" || timeline[0].SessionCount != 2 || timeline[0].RequestCount != 1 {
		t.Errorf("timeline[0] = %+v", timeline[0])
	}
	if timeline[1].Month != "2025-05" || timeline[1].SessionCount != 1 || timeline[1].RetroCount != 1 {
		t.Errorf("timeline[1] = %+v", timeline[1])
	}

	// 月度计数总和与有效记录数一致
	totalSessions := 0
	for _, m := range timeline {
		totalSessions += m.SessionCount
	}
	if totalSessions != 3 {
		t.Errorf("session total = %d, want 3 (malformed date skipped)", totalSessions)
	}
}

// 相同快照必须产生完全一致的报告，且与输入切片顺序无关
func TestAnalyzeDeterministic(t *testing.T) {
	build := func(reversed bool) *model.CompanyDataPacket {
		p := newPacket()
		sessions := []model.Session{
			{ID: "s1", Date: "2025-05-01", Summary: "营收讨论", FollowUp: "准备融资材料并联系三位投资人", Mentors: []string{"王老师"}},
			{ID: "s2", Date: "2025-05-08", Summary: "融资计划", FollowUp: "更新融资 BP，约投资人会议", Mentors: []string{"王老师", "李老师"}},
			{ID: "s3", Date: "2025-05-15", Summary: "增长与获客", Mentors: []string{"李老师"}},
		}
		if reversed {
			for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
				sessions[i], sessions[j] = sessions[j], sessions[i]
			}
		}
		p.Sessions = sessions
		return p
	}

	a := New(nil)
	r1 := a.Analyze(build(false))
	r2 := a.Analyze(build(true))
	if !reflect.DeepEqual(r1, r2) {
		t.Error("Analyze() output differs for shuffled input order")
	}

	r3 := a.Analyze(build(false))
	if !reflect.DeepEqual(r1, r3) {
		t.Error("Analyze() output differs across runs on same snapshot")
	}
}

func TestAnalyzeEmptyPacket(t *testing.T) {
	report := New(nil).Analyze(newPacket())

	if report.KPI.OverallRate != nil {
		t.Errorf("OverallRate = %v, want nil", report.KPI.OverallRate)
	}
	if len(report.Topics.TopKeywords) != 0 {
		t.Errorf("TopKeywords = %v, want empty", report.Topics.TopKeywords)
	}
	if report.Narrative == "" {
		t.Error("Narrative is empty")
	}
	if len(report.DataGaps) == 0 {
		t.Error("DataGaps is empty for empty packet")
	}
}
