package briefing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/config"
	pm "github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

// Briefing 面向运营团队的公司简报（LLM 生成）
type Briefing struct {
	Title       string   `json:"title"`       // 简报标题
	Strengths   string   `json:"strengths"`   // 亮点（Markdown）
	Risks       string   `json:"risks"`       // 风险（Markdown）
	ActionItems []string `json:"action_items"`
}

// Generator 简报生成器。消费两份报告的只读数据，
// 不参与任何分析计算，失败不影响报告本身。
type Generator struct {
	chatModel model.ChatModel
	limiter   *rate.Limiter
}

// NewGenerator 创建简报生成器
func NewGenerator(ctx context.Context, cfg config.LLMConfig, limiter *rate.Limiter) (*Generator, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &Generator{chatModel: chatModel, limiter: limiter}, nil
}

// Generate 基于两份报告生成简报
func (g *Generator) Generate(ctx context.Context, company *pm.CompanyProfile,
	analyst *pm.AnalystReport, pulse *pm.PulseReport, persona string) (*Briefing, error) {

	input := renderReports(company, analyst, pulse)

	promptTpl := `Role: 创业加速器的资深运营顾问
Context
运营者画像：%s
输入数据：某被投公司的参与度分析报告与脉搏报告。

Instructions
请严格按照以下 JSON 格式输出，不要包含任何 markdown 标记：
{
	"title": "一句话概括该公司当前状态（20字以内）",
	"strengths": "Markdown格式的亮点总结...",
	"risks": "Markdown格式的风险提示...",
	"action_items": ["下一步建议1", "下一步建议2", "下一步建议3"]
}

输入的报告数据：
%s`

	maxRetries := 3
	baseDelay := 2 * time.Second
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: "你是一个 JSON 生成器。请只输出 JSON 字符串。"},
			{Role: schema.User, Content: fmt.Sprintf(promptTpl, persona, input)},
		}

		resp, err := g.chatModel.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					time.Sleep(baseDelay * time.Duration(1<<i))
					continue
				}
			}
			return nil, err
		}

		cleanContent := strings.TrimSpace(resp.Content)
		cleanContent = strings.TrimPrefix(cleanContent, "```json")
		cleanContent = strings.TrimPrefix(cleanContent, "```")
		cleanContent = strings.TrimSuffix(cleanContent, "```")

		var result Briefing
		if err := json.Unmarshal([]byte(cleanContent), &result); err != nil {
			lastErr = err
			if i < maxRetries {
				continue
			}
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		return &result, nil
	}
	return nil, lastErr
}

// renderReports 把两份报告渲染为 LLM 输入文本
func renderReports(company *pm.CompanyProfile, analyst *pm.AnalystReport, pulse *pm.PulseReport) string {
	var sb strings.Builder

	if company != nil {
		fmt.Fprintf(&sb, "## 公司：%s（批次：%s）\n", company.Name, company.Batch)
	}

	sb.WriteString("### 分析摘要\n")
	sb.WriteString(analyst.Narrative)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "### 会话节奏\n总会话 %d 次，密度得分 %d（%s）",
		pulse.Cadence.TotalSessions, pulse.Cadence.DensityScore, pulse.Cadence.DensityLabel)
	if pulse.Cadence.Trend != "" {
		fmt.Fprintf(&sb, "，趋势：%s", pulse.Cadence.Trend)
	}
	sb.WriteString("\n")

	if len(pulse.Milestones) > 0 {
		sb.WriteString("### 里程碑\n")
		for _, m := range pulse.Milestones {
			fmt.Fprintf(&sb, "- [%s] %s：%s\n", m.Date, m.Category, m.Title)
		}
	}

	if len(pulse.HealthSignals) > 0 {
		sb.WriteString("### 健康信号\n")
		for _, sig := range pulse.HealthSignals {
			fmt.Fprintf(&sb, "- %s（%s）：%s\n", sig.Name, sig.Status, sig.Detail)
		}
	}

	if len(analyst.DataGaps) > 0 {
		sb.WriteString("### 数据缺口\n")
		for _, gap := range analyst.DataGaps {
			fmt.Fprintf(&sb, "- [%s] %s\n", gap.Severity, gap.Detail)
		}
	}

	return sb.String()
}
