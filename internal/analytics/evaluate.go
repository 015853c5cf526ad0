package analytics

import (
	"github.com/shopspring/decimal"
)

// BudgetMetrics - производные показатели бюджета за период
type BudgetMetrics struct {
	Budget        decimal.Decimal
	Spent         decimal.Decimal
	Remaining     decimal.Decimal // может быть отрицательным при превышении
	PercentUsed   decimal.Decimal
	DailyBurnRate decimal.Decimal
	DaysElapsed   int
	Tier          HealthTier

	ProjectedMonthEndTotal decimal.Decimal
	ProjectedOverage       decimal.Decimal
	ProjectedSavings       decimal.Decimal
}

// Exceeded сообщает, что траты превысили бюджет
func (m BudgetMetrics) Exceeded() bool {
	return m.Remaining.IsNegative()
}

// Engine считает показатели с заданными порогами и форматом валюты.
// Не хранит изменяемого состояния, безопасен для параллельного использования.
type Engine struct {
	thresholds Thresholds
	money      CurrencyFormatter
}

func NewEngine(thresholds Thresholds, money CurrencyFormatter) (*Engine, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Engine{thresholds: thresholds, money: money}, nil
}

// DefaultEngine использует пороги 70/90/100, прогноз на 30 дней и рупии
func DefaultEngine() *Engine {
	return &Engine{thresholds: DefaultThresholds(), money: DefaultFormatter}
}

func (e *Engine) Thresholds() Thresholds { return e.thresholds }

func (e *Engine) Formatter() CurrencyFormatter { return e.money }

// Evaluate сопоставляет траты с бюджетом. Бюджет <= 0 - ошибка ErrInvalidBudget.
func (e *Engine) Evaluate(spent, budget decimal.Decimal, daysElapsed int) (BudgetMetrics, error) {
	pct, err := PercentUsed(spent, budget)
	if err != nil {
		return BudgetMetrics{}, err
	}

	burn := BurnRate(spent, daysElapsed)
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	projected := burn.Mul(decimal.NewFromInt(int64(e.thresholds.ProjectionDays)))

	return BudgetMetrics{
		Budget:                 budget,
		Spent:                  spent,
		Remaining:              budget.Sub(spent),
		PercentUsed:            pct,
		DailyBurnRate:          burn,
		DaysElapsed:            daysElapsed,
		Tier:                   e.thresholds.Tier(pct),
		ProjectedMonthEndTotal: projected,
		ProjectedOverage:       decimal.Max(decimal.Zero, projected.Sub(budget)),
		ProjectedSavings:       decimal.Max(decimal.Zero, budget.Sub(projected)),
	}, nil
}

func Evaluate(spent, budget decimal.Decimal, daysElapsed int) (BudgetMetrics, error) {
	return DefaultEngine().Evaluate(spent, budget, daysElapsed)
}
