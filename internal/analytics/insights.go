package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsightKind - тон подсказки
type InsightKind string

const (
	InsightInfo    InsightKind = "info"
	InsightSuccess InsightKind = "success"
	InsightWarning InsightKind = "warning"
)

// InsightRule - правило, породившее подсказку
type InsightRule string

const (
	RuleTopCategory InsightRule = "top_category"
	RulePace        InsightRule = "pace"
	RuleProjection  InsightRule = "projection"
)

// Insight - подсказка для пользователя. Amount - сумма, на которую ссылается текст.
type Insight struct {
	Rule        InsightRule
	Kind        InsightKind
	Icon        string
	Title       string
	Description string
	Amount      decimal.Decimal
}

type insightInput struct {
	metrics       BudgetMetrics
	top           *CategorySummary
	daysRemaining int
}

type insightRule struct {
	rule InsightRule
	pick func(e *Engine, in insightInput) (Insight, bool)
}

// Правила применяются строго в этом порядке, каждое дает не больше одной подсказки.
// Правило темпа срабатывает всегда.
var insightRules = []insightRule{
	{rule: RuleTopCategory, pick: topCategoryInsight},
	{rule: RulePace, pick: paceInsight},
	{rule: RuleProjection, pick: projectionInsight},
}

// SelectInsights формирует упорядоченный список подсказок. Самой затратной
// считается первая категория в categories (они отсортированы по убыванию).
func (e *Engine) SelectInsights(metrics BudgetMetrics, categories []CategorySummary, daysRemaining int) []Insight {
	in := insightInput{metrics: metrics, daysRemaining: daysRemaining}
	if len(categories) > 0 {
		top := categories[0]
		in.top = &top
	}

	insights := make([]Insight, 0, len(insightRules))
	for _, r := range insightRules {
		insight, ok := r.pick(e, in)
		if !ok {
			continue
		}
		insight.Rule = r.rule
		insights = append(insights, insight)
	}
	return insights
}

func SelectInsights(metrics BudgetMetrics, categories []CategorySummary, daysRemaining int) []Insight {
	return DefaultEngine().SelectInsights(metrics, categories, daysRemaining)
}

func topCategoryInsight(e *Engine, in insightInput) (Insight, bool) {
	if in.top == nil || !in.top.Total.IsPositive() {
		return Insight{}, false
	}
	return Insight{
		Kind:  InsightInfo,
		Icon:  in.top.Icon,
		Title: "Top Spending: " + in.top.Name,
		Description: fmt.Sprintf("You spent %s (%s%% of total) on %s",
			e.money.Format(in.top.Total), in.top.Percentage.Round(0).String(), in.top.Name),
		Amount: in.top.Total,
	}, true
}

func paceInsight(e *Engine, in insightInput) (Insight, bool) {
	m := in.metrics
	t := e.thresholds

	switch {
	case m.PercentUsed.LessThan(t.WarningPercent):
		return Insight{
			Kind:        InsightSuccess,
			Icon:        "🎯",
			Title:       "Great Job!",
			Description: fmt.Sprintf("You're on track with only %s%% of budget used. Keep it up!", m.PercentUsed.Round(0).String()),
			Amount:      m.Remaining,
		}, true
	case m.PercentUsed.LessThan(t.CriticalPercent):
		dailyCap := m.Remaining
		if in.daysRemaining > 0 {
			dailyCap = m.Remaining.Div(decimal.NewFromInt(int64(in.daysRemaining)))
		}
		return Insight{
			Kind:        InsightWarning,
			Icon:        "⚡",
			Title:       "Watch Your Spending",
			Description: fmt.Sprintf("You can spend %s/day for the rest of the month", e.money.Format(dailyCap)),
			Amount:      dailyCap,
		}, true
	case m.PercentUsed.LessThan(t.ExceededPercent):
		return Insight{
			Kind:        InsightWarning,
			Icon:        "⚠️",
			Title:       "Almost at Budget Limit",
			Description: fmt.Sprintf("Only %s left. Try to minimize expenses!", e.money.Format(m.Remaining)),
			Amount:      m.Remaining,
		}, true
	default:
		over := m.Remaining.Abs()
		return Insight{
			Kind:        InsightWarning,
			Icon:        "🚨",
			Title:       "Budget Exceeded",
			Description: fmt.Sprintf("You've exceeded your budget by %s", e.money.Format(over)),
			Amount:      over,
		}, true
	}
}

func projectionInsight(e *Engine, in insightInput) (Insight, bool) {
	m := in.metrics
	if !m.DailyBurnRate.IsPositive() {
		return Insight{}, false
	}
	if m.ProjectedOverage.IsPositive() {
		return Insight{
			Kind:  InsightWarning,
			Icon:  "📊",
			Title: "Spending Projection",
			Description: fmt.Sprintf("At current rate (%s/day), you'll exceed budget by %s",
				e.money.Format(m.DailyBurnRate), e.money.Format(m.ProjectedOverage)),
			Amount: m.ProjectedOverage,
		}, true
	}
	return Insight{
		Kind:        InsightSuccess,
		Icon:        "✨",
		Title:       "Projected Savings",
		Description: fmt.Sprintf("At current rate, you'll save %s this month!", e.money.Format(m.ProjectedSavings)),
		Amount:      m.ProjectedSavings,
	}, true
}
