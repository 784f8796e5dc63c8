package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

// Entry 单个关键词及其匹配词条（中英混合，小写）
type Entry struct {
	Keyword string   `yaml:"keyword"`
	Terms   []string `yaml:"terms"`
}

// CategoryEntry 里程碑类别及其匹配词条
type CategoryEntry struct {
	Category string   `yaml:"category"`
	Terms    []string `yaml:"terms"`
}

// Lexicon 分析词表。内置默认版本，可通过 yaml 文件整体替换，
// 词表演进不需要改动任何分析逻辑。
type Lexicon struct {
	Version             string          `yaml:"version"`
	Topics              []Entry         `yaml:"topics"`
	AdviceThemes        []Entry         `yaml:"advice_themes"`
	ProblemKeywords     []Entry         `yaml:"problem_keywords"`
	MilestoneCategories []CategoryEntry `yaml:"milestone_categories"`
	TerminalStatuses    []string        `yaml:"terminal_statuses"`
	OpenStatuses        []string        `yaml:"open_statuses"`
}

// Default 返回内置词表
func Default() *Lexicon {
	return &Lexicon{
		Version: "2025-08-01",
		Topics: []Entry{
			{Keyword: "revenue", Terms: []string{"revenue", "sales", "营收", "收入", "销售额"}},
			{Keyword: "retention", Terms: []string{"retention", "churn", "留存", "流失"}},
			{Keyword: "hiring", Terms: []string{"hiring", "recruit", "招聘", "用人"}},
			{Keyword: "fundraising", Terms: []string{"fundraising", "funding", "investor", "融资", "投资人"}},
			{Keyword: "product-launch", Terms: []string{"launch", "release", "发布", "上线"}},
			{Keyword: "growth", Terms: []string{"growth", "增长", "获客"}},
			{Keyword: "partnership", Terms: []string{"partnership", "合作", "渠道"}},
			{Keyword: "marketing", Terms: []string{"marketing", "营销", "推广"}},
			{Keyword: "pricing", Terms: []string{"pricing", "定价", "价格"}},
			{Keyword: "user-feedback", Terms: []string{"feedback", "用户反馈", "调研"}},
		},
		AdviceThemes: []Entry{
			{Keyword: "pivot", Terms: []string{"pivot", "转型", "方向调整"}},
			{Keyword: "hiring", Terms: []string{"hire", "hiring", "招聘"}},
			{Keyword: "fundraising", Terms: []string{"fundrais", "investor", "融资", "投资人"}},
			{Keyword: "metrics", Terms: []string{"metric", "kpi", "指标", "数据看板"}},
			{Keyword: "process", Terms: []string{"process", "workflow", "流程", "机制"}},
			{Keyword: "product", Terms: []string{"product", "产品", "功能"}},
			{Keyword: "sales", Terms: []string{"sales", "销售", "客户"}},
		},
		ProblemKeywords: []Entry{
			{Keyword: "schedule", Terms: []string{"schedule", "delay", "延期", "进度"}},
			{Keyword: "communication", Terms: []string{"communication", "沟通", "信息不对称"}},
			{Keyword: "staffing", Terms: []string{"staffing", "shorthanded", "人手", "人力"}},
			{Keyword: "quality", Terms: []string{"quality", "bug", "质量", "返工"}},
			{Keyword: "prioritization", Terms: []string{"priority", "prioritization", "优先级"}},
			{Keyword: "alignment", Terms: []string{"alignment", "对齐", "目标不一致"}},
		},
		// 五个类别的词条集合互不重叠，顺序即扫描顺序
		MilestoneCategories: []CategoryEntry{
			{Category: model.MilestoneAchievement, Terms: []string{"revenue", "launched", "first customer", "上线", "营收", "突破", "达成", "首单", "签约客户"}},
			{Category: model.MilestoneInflection, Terms: []string{"pivot", "strategy change", "转型", "战略调整", "方向转变"}},
			{Category: model.MilestoneDecision, Terms: []string{"funding", "term sheet", "partnership agreement", "融资", "投资协议", "合作协议"}},
			{Category: model.MilestoneRisk, Terms: []string{"attrition", "runway", "churn spike", "离职", "资金链", "现金流告急", "大量流失"}},
			{Category: model.MilestoneExternal, Terms: []string{"grant", "award", "certification", "获奖", "认证", "政府补贴"}},
		},
		TerminalStatuses: []string{"completed", "resolved", "closed", "已完成", "已解决"},
		OpenStatuses:     []string{"submitted", "unassigned", "in_review", "pending", "待分配", "评估中"},
	}
}

// Load 从 yaml 文件加载词表；path 为空时返回内置默认词表
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}
	if lex.Version == "" {
		return nil, fmt.Errorf("lexicon file %s missing version", path)
	}
	return &lex, nil
}

// ContainsAny 判断已小写化的文本是否命中任一词条
func ContainsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Matches 判断已小写化的文本是否命中该关键词
func (e Entry) Matches(lower string) bool {
	return ContainsAny(lower, e.Terms)
}

// IsTerminal 状态是否属于已完结集合
func (l *Lexicon) IsTerminal(status string) bool {
	return containsFold(l.TerminalStatuses, status)
}

// IsOpen 状态是否属于待分配/评估中集合
func (l *Lexicon) IsOpen(status string) bool {
	return containsFold(l.OpenStatuses, status)
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
