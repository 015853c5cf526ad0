package analytics

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidBudget - бюджет не задан или не положителен.
// Проценты от такого бюджета не считаются.
var ErrInvalidBudget = errors.New("budget must be greater than zero")

var hundred = decimal.NewFromInt(100)

// HealthTier - состояние бюджета по доле потраченного
type HealthTier string

const (
	TierOK       HealthTier = "ok"
	TierWarning  HealthTier = "warning"
	TierCritical HealthTier = "critical"
)

// Color возвращает цвет индикатора, как на дашборде
func (t HealthTier) Color() string {
	switch t {
	case TierCritical:
		return "red"
	case TierWarning:
		return "amber"
	default:
		return "green"
	}
}

// Thresholds хранит пороговые значения в процентах от бюджета
type Thresholds struct {
	WarningPercent  decimal.Decimal
	CriticalPercent decimal.Decimal
	ExceededPercent decimal.Decimal
	// ProjectionDays - длина "месяца" для линейного прогноза, не зависит от реального месяца
	ProjectionDays int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		WarningPercent:  decimal.NewFromInt(70),
		CriticalPercent: decimal.NewFromInt(90),
		ExceededPercent: decimal.NewFromInt(100),
		ProjectionDays:  30,
	}
}

func (t Thresholds) Validate() error {
	if !t.WarningPercent.IsPositive() {
		return fmt.Errorf("warning threshold must be positive, got %s", t.WarningPercent)
	}
	if !t.WarningPercent.LessThan(t.CriticalPercent) {
		return fmt.Errorf("warning threshold %s must be below critical threshold %s", t.WarningPercent, t.CriticalPercent)
	}
	if t.ExceededPercent.LessThan(t.CriticalPercent) {
		return fmt.Errorf("exceeded threshold %s must not be below critical threshold %s", t.ExceededPercent, t.CriticalPercent)
	}
	if t.ProjectionDays <= 0 {
		return fmt.Errorf("projection window must be positive, got %d", t.ProjectionDays)
	}
	return nil
}

// Tier классифицирует процент использования бюджета
func (t Thresholds) Tier(percentUsed decimal.Decimal) HealthTier {
	switch {
	case percentUsed.GreaterThanOrEqual(t.CriticalPercent):
		return TierCritical
	case percentUsed.GreaterThanOrEqual(t.WarningPercent):
		return TierWarning
	default:
		return TierOK
	}
}

// PercentUsed = spent/budget*100
func PercentUsed(spent, budget decimal.Decimal) (decimal.Decimal, error) {
	if !budget.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidBudget, budget)
	}
	return spent.Mul(hundred).Div(budget), nil
}

// Health определяет состояние бюджета по порогам по умолчанию
func Health(spent, budget decimal.Decimal) (HealthTier, error) {
	pct, err := PercentUsed(spent, budget)
	if err != nil {
		return "", err
	}
	return DefaultThresholds().Tier(pct), nil
}

// BurnRate - средние траты в день. При daysElapsed <= 0 возвращает 0.
func BurnRate(spent decimal.Decimal, daysElapsed int) decimal.Decimal {
	if daysElapsed <= 0 {
		return decimal.Zero
	}
	return spent.Div(decimal.NewFromInt(int64(daysElapsed)))
}
