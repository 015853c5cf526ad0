package service

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/ivanoskov/expense_tracker/internal/analytics"
	"github.com/ivanoskov/expense_tracker/internal/model"
)

// Dashboard - снимок всех показателей за месяц на дату AsOf
type Dashboard struct {
	Period        analytics.Period
	AsOf          civil.Date
	Budget        model.Budget
	Aggregation   analytics.Aggregation
	Metrics       analytics.BudgetMetrics
	DaysRemaining int
	Daily         analytics.DailyStats
	Insights      []analytics.Insight
	Alert         *analytics.Alert
}

// GetDashboard строит дашборд за месяц, в который попадает asOf
func (s *ExpenseTracker) GetDashboard(ctx context.Context, userID int64, asOf civil.Date) (*Dashboard, error) {
	return s.GetDashboardForPeriod(ctx, userID, analytics.PeriodOf(asOf), asOf)
}

func (s *ExpenseTracker) GetDashboardForPeriod(ctx context.Context, userID int64, period analytics.Period, asOf civil.Date) (*Dashboard, error) {
	log := s.log.WithFields(logrus.Fields{"user_id": userID, "period": period.String()})

	budget, err := s.GetBudget(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	expenses, err := s.ListExpenses(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	categories, err := s.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	agg := analytics.Aggregate(expenses, analytics.CategoryLookup(categories), period)
	if agg.Skipped > 0 {
		log.WithField("skipped", agg.Skipped).Warn("expenses outside of period ignored")
	}

	metrics, err := s.engine.Evaluate(agg.Spent, budget.Amount, period.DaysElapsed(asOf))
	if err != nil {
		// бюджет в базе не положителен - показываем состояние "бюджет не задан"
		if errors.Is(err, analytics.ErrInvalidBudget) {
			log.WithError(err).Warn("stored budget is not usable")
			return nil, fmt.Errorf("%w: %w", ErrNoBudget, err)
		}
		return nil, err
	}

	daysRemaining := period.DaysRemaining(asOf)
	dashboard := &Dashboard{
		Period:        period,
		AsOf:          asOf,
		Budget:        *budget,
		Aggregation:   agg,
		Metrics:       metrics,
		DaysRemaining: daysRemaining,
		Daily:         analytics.SummarizeDaily(agg.Daily),
		Insights:      s.engine.SelectInsights(metrics, agg.Categories, daysRemaining),
	}
	if alert, ok := s.engine.Alert(metrics); ok {
		dashboard.Alert = &alert
	}

	log.WithFields(logrus.Fields{
		"count":        agg.Count,
		"spent":        metrics.Spent.String(),
		"percent_used": metrics.PercentUsed.StringFixed(2),
		"tier":         metrics.Tier,
	}).Info("dashboard built")

	return dashboard, nil
}
