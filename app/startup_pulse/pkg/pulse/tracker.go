package pulse

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/lexicon"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

// Tracker 脉搏追踪器：从数据包推导会话节奏、里程碑与健康信号。
// 与 Analyst 一样是无状态纯函数，两者可以并行运行。
type Tracker struct {
	lex *lexicon.Lexicon
}

// New 创建追踪器；lex 为 nil 时使用内置词表
func New(lex *lexicon.Lexicon) *Tracker {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Tracker{lex: lex}
}

// Track 生成脉搏报告
func (t *Tracker) Track(p *model.CompanyDataPacket) *model.PulseReport {
	cadence := t.analyzeCadence(p)
	return &model.PulseReport{
		Cadence:       cadence,
		Milestones:    t.extractMilestones(p),
		HealthSignals: t.assessHealth(p, cadence),
	}
}

// analyzeCadence 会话节奏分析
func (t *Tracker) analyzeCadence(p *model.CompanyDataPacket) model.MeetingCadence {
	cadence := model.MeetingCadence{
		TotalSessions: len(p.Sessions),
		TypeCounts:    []model.SessionTypeCount{},
	}

	if len(p.Sessions) == 0 {
		// 没有任何会话时节奏直接判为无规律
		cadence.Trend = model.TrendIrregular
		cadence.DensityLabel = densityLabel(0)
		return cadence
	}

	dated := sortedDates(p.Sessions)
	intervals := make([]float64, 0, len(dated))
	for i := 1; i < len(dated); i++ {
		intervals = append(intervals, dated[i].Sub(dated[i-1]).Hours()/24)
	}

	if len(intervals) > 0 {
		cadence.AvgIntervalDays = round1(mean(intervals))
		recent := intervals
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		cadence.RecentIntervalDays = round1(mean(recent))
	}

	periodMonths := 1
	if len(dated) >= 2 {
		spanDays := dated[len(dated)-1].Sub(dated[0]).Hours() / 24
		periodMonths = int(math.Round(spanDays / 30))
		if periodMonths < 1 {
			periodMonths = 1
		}
	}
	cadence.PeriodMonths = periodMonths

	cadence.Trend, cadence.TrendNote = classifyTrend(intervals)

	// 密度得分：以"每周一次会话"为基准的 0-100 评分
	expectedWeeks := float64(periodMonths) * 4.3
	densityRatio := float64(cadence.TotalSessions) / math.Max(expectedWeeks, 1)
	cadence.DensityScore = int(math.Min(100, math.Round(densityRatio*100)))
	cadence.DensityLabel = densityLabel(cadence.DensityScore)

	// 按会话类型统计
	type typeAcc struct {
		count int
		last  string
	}
	types := make(map[string]*typeAcc)
	for _, s := range p.Sessions {
		for _, tp := range s.Types {
			if tp == "" {
				continue
			}
			acc, ok := types[tp]
			if !ok {
				acc = &typeAcc{}
				types[tp] = acc
			}
			acc.count++
			if _, ok := parseDate(s.Date); ok && s.Date > acc.last {
				acc.last = s.Date
			}
		}
	}
	typeNames := make([]string, 0, len(types))
	for name := range types {
		typeNames = append(typeNames, name)
	}
	sort.Slice(typeNames, func(i, j int) bool {
		if types[typeNames[i]].count != types[typeNames[j]].count {
			return types[typeNames[i]].count > types[typeNames[j]].count
		}
		return typeNames[i] < typeNames[j]
	})
	for _, name := range typeNames {
		cadence.TypeCounts = append(cadence.TypeCounts, model.SessionTypeCount{
			Type:     name,
			Count:    types[name].count,
			LastDate: types[name].last,
		})
	}

	return cadence
}

// classifyTrend 基于间隔序列的趋势分类。
// 离散度覆盖规则优先：间隔波动过大时无条件判为无规律，
// 不论前后半段比值指向什么趋势。
func classifyTrend(intervals []float64) (trend, note string) {
	if len(intervals) < 3 {
		return "", "会话历史不足，无法判断节奏趋势"
	}

	m := mean(intervals)
	if m > 0 && stddev(intervals, m) > 0.8*m {
		return model.TrendIrregular, ""
	}

	half := len(intervals) / 2
	firstMean := mean(intervals[:half])
	secondMean := mean(intervals[half:])
	if firstMean == 0 {
		return model.TrendStable, ""
	}

	ratio := secondMean / firstMean
	switch {
	case ratio < 0.7:
		return model.TrendAccelerating, ""
	case ratio > 1.5:
		return model.TrendSlowing, ""
	default:
		return model.TrendStable, ""
	}
}

func densityLabel(score int) string {
	switch {
	case score >= 80:
		return "very active"
	case score >= 50:
		return "adequate"
	case score >= 30:
		return "loose"
	default:
		return "warning"
	}
}

// 里程碑扫描的来源标签
const (
	sourceSession       = "session"
	sourceRetrospective = "retrospective"
	sourceExpertRequest = "expert_request"
)

// extractMilestones 从自由文本中提取里程碑：
// 会话摘要+跟进、复盘的 Keep 文本、已完结的专家请求。
// 按 (日期, 类别) 去重，按日期倒序，最多 15 条。
func (t *Tracker) extractMilestones(p *model.CompanyDataPacket) []model.Milestone {
	found := []model.Milestone{}
	seen := make(map[string]bool)

	scan := func(date, text, source, detail string) {
		if text == "" {
			return
		}
		if _, ok := parseDate(date); !ok {
			return
		}
		lower := strings.ToLower(text)
		for _, cat := range t.lex.MilestoneCategories {
			if !lexicon.ContainsAny(lower, cat.Terms) {
				continue
			}
			key := date + "|" + cat.Category
			if seen[key] {
				continue
			}
			seen[key] = true
			title := firstMatchingSentence(text, cat.Terms)
			if title == "" {
				title = truncateRunes(text, 60)
			}
			found = append(found, model.Milestone{
				Date:     date,
				Title:    title,
				Category: cat.Category,
				Source:   source,
				Detail:   detail,
			})
		}
	}

	sessions := append([]model.Session(nil), p.Sessions...)
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date < sessions[j].Date
		}
		return sessions[i].ID < sessions[j].ID
	})
	for _, s := range sessions {
		scan(s.Date, strings.TrimSpace(s.Summary+" "+s.FollowUp), sourceSession, s.Title)
	}

	retros := append([]model.Retrospective(nil), p.Retrospectives...)
	sort.Slice(retros, func(i, j int) bool {
		if retros[i].ReviewDate != retros[j].ReviewDate {
			return retros[i].ReviewDate < retros[j].ReviewDate
		}
		return retros[i].ID < retros[j].ID
	})
	for _, r := range retros {
		scan(r.ReviewDate, r.Keep, sourceRetrospective, "")
	}

	requests := append([]model.ExpertRequest(nil), p.ExpertRequests...)
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].RequestedAt.Equal(requests[j].RequestedAt) {
			return requests[i].RequestedAt.Before(requests[j].RequestedAt)
		}
		return requests[i].ID < requests[j].ID
	})
	for _, req := range requests {
		if !t.lex.IsTerminal(req.Status) || req.RequestedAt.IsZero() {
			continue
		}
		scan(req.RequestedAt.Format("2006-01-02"),
			strings.TrimSpace(req.Summary+" "+req.Problem), sourceExpertRequest, "")
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Date != found[j].Date {
			return found[i].Date > found[j].Date
		}
		if found[i].Category != found[j].Category {
			return found[i].Category < found[j].Category
		}
		return found[i].Title < found[j].Title
	})
	if len(found) > 15 {
		found = found[:15]
	}
	return found
}

// firstMatchingSentence 返回第一个命中词条的句子，截断到 60 字符
func firstMatchingSentence(text string, terms []string) string {
	for _, sentence := range splitSentences(text) {
		if lexicon.ContainsAny(strings.ToLower(sentence), terms) {
			return truncateRunes(sentence, 60)
		}
	}
	return ""
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', '。', '！', '？', '\n':
			return true
		}
		return false
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// assessHealth 健康信号评估。规则互相独立，各自可能命中也可能沉默。
func (t *Tracker) assessHealth(p *model.CompanyDataPacket, cadence model.MeetingCadence) []model.HealthSignal {
	signals := []model.HealthSignal{}
	add := func(name, status, detail string) {
		signals = append(signals, model.HealthSignal{Name: name, Status: status, Detail: detail})
	}

	// 1. 密度：健康评估用与密度标签不同的分档
	switch {
	case cadence.DensityScore >= 70:
		add("meeting_density", model.StatusGood,
			fmt.Sprintf("会话密度得分 %d，保持良好", cadence.DensityScore))
	case cadence.DensityScore >= 40:
		add("meeting_density", model.StatusWarning,
			fmt.Sprintf("会话密度得分 %d，偏低", cadence.DensityScore))
	default:
		add("meeting_density", model.StatusConcern,
			fmt.Sprintf("会话密度得分 %d，明显不足", cadence.DensityScore))
	}

	// 2. 趋势：stable/irregular 不发信号
	switch cadence.Trend {
	case model.TrendSlowing:
		add("meeting_trend", model.StatusWarning, "会话间隔正在拉长")
	case model.TrendAccelerating:
		add("meeting_trend", model.StatusGood, "会话频率正在提升")
	}

	// 3. 最近一次会话距今时长
	if last, ok := latestDate(p.Sessions); ok {
		days := int(p.CollectedAt.Sub(last).Hours() / 24)
		if days > 30 {
			add("recency", model.StatusConcern, fmt.Sprintf("距最近一次会话已 %d 天", days))
		} else if days > 14 {
			add("recency", model.StatusWarning, fmt.Sprintf("距最近一次会话已 %d 天", days))
		}
	}

	// 4. 复盘节奏
	if len(p.Retrospectives) > 0 {
		recent := false
		for _, r := range p.Retrospectives {
			if d, ok := parseDate(r.ReviewDate); ok && p.CollectedAt.Sub(d).Hours() <= 90*24 {
				recent = true
				break
			}
		}
		if recent {
			add("retrospective_cadence", model.StatusGood, "近 90 天内有复盘记录")
		} else {
			add("retrospective_cadence", model.StatusWarning, "曾有复盘记录但近 90 天内没有")
		}
	}

	// 5. 专家资源利用：有在途请求是积极信号，没有则保持沉默
	for _, req := range p.ExpertRequests {
		if !t.lex.IsTerminal(req.Status) {
			add("expert_utilization", model.StatusGood, "存在在途的专家资源请求")
			break
		}
	}

	// 6. 目标达成
	if len(p.KPIItems) > 0 {
		achieved := 0
		for _, item := range p.KPIItems {
			if item.Achieved != nil && *item.Achieved {
				achieved++
			}
		}
		rate := float64(achieved) / float64(len(p.KPIItems))
		detail := fmt.Sprintf("KPI 达成 %d/%d", achieved, len(p.KPIItems))
		switch {
		case rate >= 0.6:
			add("kpi_achievement", model.StatusGood, detail)
		case rate >= 0.3:
			add("kpi_achievement", model.StatusWarning, detail)
		default:
			add("kpi_achievement", model.StatusConcern, detail)
		}
	}

	return signals
}

// sortedDates 返回有效日期的升序序列
func sortedDates(sessions []model.Session) []time.Time {
	dates := make([]time.Time, 0, len(sessions))
	for _, s := range sessions {
		if d, ok := parseDate(s.Date); ok {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func latestDate(sessions []model.Session) (time.Time, bool) {
	dates := sortedDates(sessions)
	if len(dates) == 0 {
		return time.Time{}, false
	}
	return dates[len(dates)-1], true
}

func parseDate(s string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev 样本标准差（n-1 分母）
func stddev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
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
