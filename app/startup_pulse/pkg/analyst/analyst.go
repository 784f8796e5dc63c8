package analyst

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/lexicon"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

// Analyst 确定性分析器。对数据包做纯函数分析：
// 无 I/O、无内部状态，相同快照必然产生结构一致的报告。
type Analyst struct {
	lex *lexicon.Lexicon
}

// New 创建分析器；lex 为 nil 时使用内置词表
func New(lex *lexicon.Lexicon) *Analyst {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Analyst{lex: lex}
}

// Analyze 对数据包执行全部六项分析并合成叙述文本
func (a *Analyst) Analyze(p *model.CompanyDataPacket) *model.AnalystReport {
	sessions := sortedSessions(p.Sessions)

	report := &model.AnalystReport{
		KPI:             a.analyzeKPI(p),
		Topics:          a.analyzeTopics(sessions),
		Mentors:         a.analyzeMentors(sessions),
		ExpertRequests:  a.analyzeRequests(p),
		Retrospective:   a.analyzeRetros(p.Retrospectives),
		DataGaps:        a.assessGaps(p),
		MonthlyActivity: a.monthlyTimeline(p),
	}
	report.Narrative = a.buildNarrative(p, report)
	return report
}

// analyzeKPI 目标达成诊断
func (a *Analyst) analyzeKPI(p *model.CompanyDataPacket) model.KPIDiagnostics {
	// 每个 KPI 项取周期标签最大的测量值作为最新值
	type latest struct {
		period string
		value  float64
	}
	latestByItem := make(map[string]latest)
	for _, v := range p.KPIValues {
		cur, ok := latestByItem[v.ItemID]
		if !ok || v.Period > cur.period {
			latestByItem[v.ItemID] = latest{period: v.Period, value: v.Value}
		}
	}

	diag := model.KPIDiagnostics{Items: []model.KPIItemDiagnosis{}}
	var rates []float64
	anyRate := false
	anyMeasurement := false

	items := append([]model.KPIItem(nil), p.KPIItems...)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})

	for _, item := range items {
		d := model.KPIItemDiagnosis{
			Name:     item.Name,
			Level:    item.Level,
			Achieved: item.Achieved,
		}
		if rate, ok := itemRate(item); ok {
			d.Rate = &rate
			rates = append(rates, rate)
			anyRate = true
		}
		if lv, ok := latestByItem[item.ID]; ok {
			value := lv.value
			d.LatestPeriod = lv.period
			d.LatestValue = &value
			anyMeasurement = true
		}
		diag.Items = append(diag.Items, d)
	}

	if p.Company != nil && p.Company.AchievementOverride != nil {
		override := *p.Company.AchievementOverride
		diag.OverallRate = &override
	} else if len(rates) > 0 {
		sum := 0.0
		for _, r := range rates {
			sum += r
		}
		mean := round1(sum / float64(len(rates)))
		diag.OverallRate = &mean
	}

	// 有达成率却没有任何测量数据支撑，说明数值是凭空录入的
	diag.RateWithoutData = anyRate && !anyMeasurement

	return diag
}

// itemRate 解析单项达成率：优先显式字段，其次解析数值字符串
func itemRate(item model.KPIItem) (float64, bool) {
	if item.Rate != nil {
		return *item.Rate, true
	}
	text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(item.RateText), "%"))
	if text == "" {
		return 0, false
	}
	rate, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return rate, true
}

// analyzeTopics 话题/关键词分析
func (a *Analyst) analyzeTopics(sessions []model.Session) model.TopicAnalysis {
	type topicAcc struct {
		count int
		last  string
		dates []string
	}
	accs := make(map[string]*topicAcc)

	for _, s := range sessions {
		lower := sessionText(s)
		for _, entry := range a.lex.Topics {
			if !entry.Matches(lower) {
				continue
			}
			acc, ok := accs[entry.Keyword]
			if !ok {
				acc = &topicAcc{}
				accs[entry.Keyword] = acc
			}
			acc.count++
			if _, ok := parseDate(s.Date); ok {
				acc.dates = append(acc.dates, s.Date)
				if s.Date > acc.last {
					acc.last = s.Date
				}
			}
		}
	}

	keywords := make([]string, 0, len(accs))
	for kw := range accs {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if accs[keywords[i]].count != accs[keywords[j]].count {
			return accs[keywords[i]].count > accs[keywords[j]].count
		}
		return keywords[i] < keywords[j]
	})

	result := model.TopicAnalysis{
		TopKeywords:     []model.KeywordStat{},
		RecurringTopics: []model.RecurringTopic{},
		RecentFocus:     []string{},
	}

	for _, kw := range keywords {
		if len(result.TopKeywords) >= 10 {
			break
		}
		result.TopKeywords = append(result.TopKeywords, model.KeywordStat{
			Keyword:  kw,
			Count:    accs[kw].count,
			LastSeen: accs[kw].last,
		})
	}

	// 出现在 2 个以上会话中的话题视为反复出现
	for _, kw := range keywords {
		if len(result.RecurringTopics) >= 5 {
			break
		}
		acc := accs[kw]
		if acc.count < 2 {
			continue
		}
		dates := acc.dates
		sort.Strings(dates)
		if len(dates) > 5 {
			dates = dates[:5]
		}
		result.RecurringTopics = append(result.RecurringTopics, model.RecurringTopic{
			Keyword: kw,
			Count:   acc.count,
			Dates:   dates,
		})
	}

	// 近期焦点：最近 3 次会话中首次出现的关键词，最多 5 个
	recent := append([]model.Session(nil), sessions...)
	sort.Slice(recent, func(i, j int) bool {
		if recent[i].Date != recent[j].Date {
			return recent[i].Date > recent[j].Date
		}
		return recent[i].ID > recent[j].ID
	})
	if len(recent) > 3 {
		recent = recent[:3]
	}
	seen := make(map[string]bool)
	for _, s := range recent {
		lower := sessionText(s)
		for _, entry := range a.lex.Topics {
			if len(result.RecentFocus) >= 5 {
				break
			}
			if seen[entry.Keyword] || !entry.Matches(lower) {
				continue
			}
			seen[entry.Keyword] = true
			result.RecentFocus = append(result.RecentFocus, entry.Keyword)
		}
	}

	return result
}

// analyzeMentors 导师参与模式分析
func (a *Analyst) analyzeMentors(sessions []model.Session) model.MentorAnalysis {
	type mentorAcc struct {
		count int
		last  string
	}
	mentors := make(map[string]*mentorAcc)
	for _, s := range sessions {
		for _, name := range s.Mentors {
			if name == "" {
				continue
			}
			acc, ok := mentors[name]
			if !ok {
				acc = &mentorAcc{}
				mentors[name] = acc
			}
			acc.count++
			if _, ok := parseDate(s.Date); ok && s.Date > acc.last {
				acc.last = s.Date
			}
		}
	}

	names := make([]string, 0, len(mentors))
	for name := range mentors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if mentors[names[i]].count != mentors[names[j]].count {
			return mentors[names[i]].count > mentors[names[j]].count
		}
		return names[i] < names[j]
	})

	result := model.MentorAnalysis{
		Mentors:      []model.MentorStat{},
		AdviceThemes: []model.AdviceTheme{},
	}
	for _, name := range names {
		result.Mentors = append(result.Mentors, model.MentorStat{
			Name:         name,
			SessionCount: mentors[name].count,
			LastDate:     mentors[name].last,
		})
	}

	// 建议主题：扫描跟进文本，2 次以上才成立，每个主题最多 2 条示例
	type themeAcc struct {
		count    int
		examples []string
	}
	themes := make(map[string]*themeAcc)
	for _, s := range sessions {
		if s.FollowUp == "" {
			continue
		}
		lower := strings.ToLower(s.FollowUp)
		for _, entry := range a.lex.AdviceThemes {
			if !entry.Matches(lower) {
				continue
			}
			acc, ok := themes[entry.Keyword]
			if !ok {
				acc = &themeAcc{}
				themes[entry.Keyword] = acc
			}
			acc.count++
			if len(acc.examples) < 2 {
				acc.examples = append(acc.examples, truncateRunes(s.FollowUp, 80))
			}
		}
	}
	themeNames := make([]string, 0, len(themes))
	for name, acc := range themes {
		if acc.count >= 2 {
			themeNames = append(themeNames, name)
		}
	}
	sort.Slice(themeNames, func(i, j int) bool {
		if themes[themeNames[i]].count != themes[themeNames[j]].count {
			return themes[themeNames[i]].count > themes[themeNames[j]].count
		}
		return themeNames[i] < themeNames[j]
	})
	if len(themeNames) > 5 {
		themeNames = themeNames[:5]
	}
	for _, name := range themeNames {
		result.AdviceThemes = append(result.AdviceThemes, model.AdviceTheme{
			Theme:    name,
			Count:    themes[name].count,
			Examples: themes[name].examples,
		})
	}

	// 跟进完成率：跟进文本超过 10 个字符的会话占比
	if len(sessions) > 0 {
		completed := 0
		for _, s := range sessions {
			if len([]rune(s.FollowUp)) > 10 {
				completed++
			}
		}
		result.FollowUpRate = round2(float64(completed) / float64(len(sessions)))
	}

	return result
}

// analyzeRequests 专家资源请求分析
func (a *Analyst) analyzeRequests(p *model.CompanyDataPacket) model.ExpertRequestAnalysis {
	result := model.ExpertRequestAnalysis{
		StatusCounts: []model.StatusCount{},
		DemandAreas:  []string{},
	}

	requests := append([]model.ExpertRequest(nil), p.ExpertRequests...)
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].RequestedAt.Equal(requests[j].RequestedAt) {
			return requests[i].RequestedAt.Before(requests[j].RequestedAt)
		}
		return requests[i].ID < requests[j].ID
	})

	statusCounts := make(map[string]int)
	var resolutionDays []float64
	for _, req := range requests {
		statusCounts[req.Status]++

		if a.lex.IsTerminal(req.Status) && !req.RequestedAt.IsZero() {
			// 近似值：没有完结时间戳，只能用快照时间减去发起时间。
			// 对已完结请求这会混淆"已开启时长"与"处理时长"，消费方需知晓。
			days := p.CollectedAt.Sub(req.RequestedAt).Hours() / 24
			resolutionDays = append(resolutionDays, days)
		}

		if strings.EqualFold(req.Urgency, "urgent") && a.lex.IsOpen(req.Status) {
			result.PendingUrgent++
		}
	}

	statuses := make([]string, 0, len(statusCounts))
	for status := range statusCounts {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statusCounts[statuses[i]] != statusCounts[statuses[j]] {
			return statusCounts[statuses[i]] > statusCounts[statuses[j]]
		}
		return statuses[i] < statuses[j]
	})
	for _, status := range statuses {
		result.StatusCounts = append(result.StatusCounts, model.StatusCount{
			Status: status,
			Count:  statusCounts[status],
		})
	}

	if len(resolutionDays) > 0 {
		sum := 0.0
		for _, d := range resolutionDays {
			sum += d
		}
		avg := round1(sum / float64(len(resolutionDays)))
		result.AvgResolutionDays = &avg
	}

	// 需求领域：期望专长文本与支持类型标签的并集，最多 5 个
	seen := make(map[string]bool)
	addArea := func(area string) {
		if area == "" || seen[area] || len(result.DemandAreas) >= 5 {
			return
		}
		seen[area] = true
		result.DemandAreas = append(result.DemandAreas, area)
	}
	for _, req := range requests {
		addArea(truncateRunes(req.DesiredExpertise, 30))
		for _, tag := range req.SupportTypes {
			addArea(tag)
		}
	}

	return result
}

// analyzeRetros 复盘模式挖掘
func (a *Analyst) analyzeRetros(retros []model.Retrospective) model.RetroAnalysis {
	result := model.RetroAnalysis{
		RecentKeep:        []string{},
		RecentProblem:     []string{},
		RecentTry:         []string{},
		RecurringProblems: []model.KeywordStat{},
	}

	sorted := append([]model.Retrospective(nil), retros...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ReviewDate != sorted[j].ReviewDate {
			return sorted[i].ReviewDate > sorted[j].ReviewDate
		}
		return sorted[i].ID > sorted[j].ID
	})

	recent := sorted
	if len(recent) > 3 {
		recent = recent[:3]
	}
	for _, r := range recent {
		if r.Keep != "" {
			result.RecentKeep = append(result.RecentKeep, r.Keep)
		}
		if r.Problem != "" {
			result.RecentProblem = append(result.RecentProblem, r.Problem)
		}
		if r.Try != "" {
			result.RecentTry = append(result.RecentTry, r.Try)
		}
	}

	counts := make(map[string]int)
	for _, r := range retros {
		if r.Problem == "" {
			continue
		}
		lower := strings.ToLower(r.Problem)
		for _, entry := range a.lex.ProblemKeywords {
			if entry.Matches(lower) {
				counts[entry.Keyword]++
			}
		}
	}
	keywords := make([]string, 0, len(counts))
	for kw, n := range counts {
		if n >= 2 {
			keywords = append(keywords, kw)
		}
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	for _, kw := range keywords {
		result.RecurringProblems = append(result.RecurringProblems, model.KeywordStat{
			Keyword: kw,
			Count:   counts[kw],
		})
	}

	return result
}

// assessGaps 数据完备性评估。规则互相独立，命中即报告。
func (a *Analyst) assessGaps(p *model.CompanyDataPacket) []model.DataGap {
	gaps := []model.DataGap{}

	if len(p.Sessions) == 0 {
		gaps = append(gaps, model.DataGap{
			Kind:     "sessions",
			Severity: model.SeverityHigh,
			Detail:   "没有任何辅导会话记录",
		})
	} else {
		short := 0
		for _, s := range p.Sessions {
			if len([]rune(s.Summary)) < 10 {
				short++
			}
		}
		if float64(short)/float64(len(p.Sessions)) > 0.5 {
			gaps = append(gaps, model.DataGap{
				Kind:     "session_summaries",
				Severity: model.SeverityMedium,
				Detail:   fmt.Sprintf("超过半数会话缺少有效摘要（%d/%d）", short, len(p.Sessions)),
			})
		}
	}

	if len(p.Retrospectives) == 0 {
		gaps = append(gaps, model.DataGap{
			Kind:     "retrospectives",
			Severity: model.SeverityMedium,
			Detail:   "没有任何复盘记录",
		})
	}

	if len(p.KPIItems) == 0 {
		gaps = append(gaps, model.DataGap{
			Kind:     "kpi_items",
			Severity: model.SeverityMedium,
			Detail:   "未设置任何 KPI 目标项",
		})
	} else if len(p.KPIValues) == 0 {
		gaps = append(gaps, model.DataGap{
			Kind:     "kpi_values",
			Severity: model.SeverityMedium,
			Detail:   "已设置 KPI 目标但没有任何测量数据",
		})
	}

	if len(p.ExpertRequests) == 0 {
		gaps = append(gaps, model.DataGap{
			Kind:     "expert_requests",
			Severity: model.SeverityLow,
			Detail:   "没有提交过专家资源请求",
		})
	}

	if p.Company == nil || strings.TrimSpace(p.Company.Description) == "" {
		gaps = append(gaps, model.DataGap{
			Kind:     "company_profile",
			Severity: model.SeverityLow,
			Detail:   "公司档案缺少产品/业务描述",
		})
	}

	return gaps
}

// monthlyTimeline 按月统计活动密度；日期缺失或格式错误的记录直接跳过
func (a *Analyst) monthlyTimeline(p *model.CompanyDataPacket) []model.MonthlyActivity {
	buckets := make(map[string]*model.MonthlyActivity)
	bucket := func(month string) *model.MonthlyActivity {
		b, ok := buckets[month]
		if !ok {
			b = &model.MonthlyActivity{Month: month}
			buckets[month] = b
		}
		return b
	}

	for _, s := range p.Sessions {
		if d, ok := parseDate(s.Date); ok {
			bucket(d.Format("2006-01")).SessionCount++
		}
	}
	for _, r := range p.Retrospectives {
		if d, ok := parseDate(r.ReviewDate); ok {
			bucket(d.Format("2006-01")).RetroCount++
		}
	}
	for _, req := range p.ExpertRequests {
		if !req.RequestedAt.IsZero() {
			bucket(req.RequestedAt.Format("2006-01")).RequestCount++
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	timeline := make([]model.MonthlyActivity, 0, len(months))
	for _, m := range months {
		timeline = append(timeline, *buckets[m])
	}
	return timeline
}

// buildNarrative 合成确定性的叙述文本块，供下游 Prompt 组装使用
func (a *Analyst) buildNarrative(p *model.CompanyDataPacket, r *model.AnalystReport) string {
	var sb strings.Builder

	name := "未知公司"
	if p.Company != nil && p.Company.Name != "" {
		name = p.Company.Name
	}
	if p.Company != nil && p.Company.Batch != "" {
		fmt.Fprintf(&sb, "公司：%s（批次：%s）\n", name, p.Company.Batch)
	} else {
		fmt.Fprintf(&sb, "公司：%s\n", name)
	}

	fmt.Fprintf(&sb, "记录概况：辅导会话 %d 次 / 复盘 %d 次 / 专家请求 %d 件\n",
		len(p.Sessions), len(p.Retrospectives), len(p.ExpertRequests))

	if r.KPI.OverallRate != nil {
		fmt.Fprintf(&sb, "目标达成率：%.0f%%", *r.KPI.OverallRate)
		if r.KPI.RateWithoutData {
			sb.WriteString("（注意：仅有达成率数值，无测量数据支撑）")
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("目标达成率：暂无数据\n")
	}

	if len(r.Topics.TopKeywords) > 0 {
		kws := make([]string, 0, len(r.Topics.TopKeywords))
		for _, kw := range r.Topics.TopKeywords {
			kws = append(kws, fmt.Sprintf("%s(%d)", kw.Keyword, kw.Count))
		}
		fmt.Fprintf(&sb, "高频话题：%s\n", strings.Join(kws, "、"))
	}
	if len(r.Topics.RecentFocus) > 0 {
		fmt.Fprintf(&sb, "近期焦点：%s\n", strings.Join(r.Topics.RecentFocus, "、"))
	}

	if len(r.Mentors.Mentors) > 0 {
		tops := r.Mentors.Mentors
		if len(tops) > 3 {
			tops = tops[:3]
		}
		parts := make([]string, 0, len(tops))
		for _, m := range tops {
			parts = append(parts, fmt.Sprintf("%s（%d 次）", m.Name, m.SessionCount))
		}
		fmt.Fprintf(&sb, "主要导师：%s\n", strings.Join(parts, "、"))
	}
	fmt.Fprintf(&sb, "跟进记录完成率：%.0f%%\n", r.Mentors.FollowUpRate*100)

	if len(r.Mentors.AdviceThemes) > 0 {
		names := make([]string, 0, len(r.Mentors.AdviceThemes))
		for _, t := range r.Mentors.AdviceThemes {
			names = append(names, t.Theme)
		}
		fmt.Fprintf(&sb, "建议主题：%s\n", strings.Join(names, "、"))
	}

	if p.Dashboard != nil && p.Dashboard.CompanyCount > 0 {
		fmt.Fprintf(&sb, "批次对比：同批次 %d 家公司平均会话 %.1f 次\n",
			p.Dashboard.CompanyCount, p.Dashboard.AvgSessionCount)
	}

	return sb.String()
}

// sortedSessions 返回按 (日期, ID) 升序排序的副本，保证输出与输入顺序无关
func sortedSessions(sessions []model.Session) []model.Session {
	sorted := append([]model.Session(nil), sessions...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func sessionText(s model.Session) string {
	return strings.ToLower(s.Title + " " + s.Summary + " " + s.FollowUp)
}

func parseDate(s string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func truncateRunes(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
