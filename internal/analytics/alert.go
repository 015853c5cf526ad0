package analytics

import (
	"fmt"
)

// AlertLevel - уровень баннера-предупреждения над дашбордом
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
	AlertExceeded AlertLevel = "exceeded"
)

type Alert struct {
	Level   AlertLevel
	Icon    string
	Title   string
	Message string
}

// Alert возвращает баннер, если использовано не меньше порога предупреждения
func (e *Engine) Alert(m BudgetMetrics) (Alert, bool) {
	t := e.thresholds
	switch {
	case m.PercentUsed.LessThan(t.WarningPercent):
		return Alert{}, false
	case m.PercentUsed.GreaterThanOrEqual(t.ExceededPercent):
		return Alert{
			Level:   AlertExceeded,
			Icon:    "🚨",
			Title:   "Budget Exceeded!",
			Message: fmt.Sprintf("You've exceeded your budget by %s. Consider reducing expenses.", e.money.Format(m.Remaining.Abs())),
		}, true
	case m.PercentUsed.GreaterThanOrEqual(t.CriticalPercent):
		return Alert{
			Level:   AlertCritical,
			Icon:    "⚠️",
			Title:   fmt.Sprintf("Budget Alert - %s%% Used", t.CriticalPercent.String()),
			Message: fmt.Sprintf("Only %s left for this month. Be careful with spending!", e.money.Format(m.Remaining)),
		}, true
	default:
		return Alert{
			Level:   AlertWarning,
			Icon:    "⚡",
			Title:   fmt.Sprintf("Budget Warning - %s%% Used", t.WarningPercent.String()),
			Message: fmt.Sprintf("You've used %s%% of your budget. Track your expenses carefully.", m.PercentUsed.Round(0).String()),
		}, true
	}
}
