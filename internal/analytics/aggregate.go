package analytics

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/expense_tracker/internal/model"
)

// CategorySummary - итог по одной категории
type CategorySummary struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
	Total      decimal.Decimal
	// Percentage - доля от всех трат периода (0-100), включая траты без категории
	Percentage decimal.Decimal
	Count      int
}

// DailySummary - итог за один день месяца
type DailySummary struct {
	Day   int
	Date  civil.Date
	Total decimal.Decimal
}

// Aggregation - результат свертки трат за период
type Aggregation struct {
	Period     Period
	Spent      decimal.Decimal
	Categories []CategorySummary
	Daily      []DailySummary
	// Count - учтенные траты, Skipped - траты с датой вне периода
	Count   int
	Skipped int
}

// TopCategory возвращает категорию с наибольшей суммой
func (a Aggregation) TopCategory() (CategorySummary, bool) {
	if len(a.Categories) == 0 {
		return CategorySummary{}, false
	}
	return a.Categories[0], true
}

// CategoryLookup строит мапу ID -> категория
func CategoryLookup(categories []model.Category) map[string]model.Category {
	lookup := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		lookup[c.ID] = c
	}
	return lookup
}

// Aggregate сворачивает траты за период в общую сумму, итоги по категориям
// и ряд по дням. Траты вне периода пропускаются целиком. Траты без категории
// или с неизвестной категорией учитываются только в общей сумме.
func Aggregate(expenses []model.Expense, categories map[string]model.Category, period Period) Aggregation {
	agg := Aggregation{
		Period: period,
		Spent:  decimal.Zero,
	}
	if !period.Valid() {
		agg.Skipped = len(expenses)
		return agg
	}

	days := period.DaysInMonth()
	agg.Daily = make([]DailySummary, days)
	for i := range agg.Daily {
		agg.Daily[i] = DailySummary{
			Day:   i + 1,
			Date:  civil.Date{Year: period.Year, Month: period.Month, Day: i + 1},
			Total: decimal.Zero,
		}
	}

	byCategory := make(map[string]*CategorySummary)
	var order []string // порядок первого появления для стабильной сортировки

	for _, e := range expenses {
		if !period.Contains(e.Date) {
			agg.Skipped++
			continue
		}
		agg.Count++
		agg.Spent = agg.Spent.Add(e.Amount)

		day := &agg.Daily[e.Date.Day-1]
		day.Total = day.Total.Add(e.Amount)

		if e.CategoryID == nil {
			continue
		}
		cat, ok := categories[*e.CategoryID]
		if !ok {
			continue
		}
		stats, ok := byCategory[cat.ID]
		if !ok {
			stats = &CategorySummary{
				CategoryID: cat.ID,
				Name:       cat.Name,
				Icon:       cat.Icon,
				Color:      cat.Color,
				Total:      decimal.Zero,
			}
			byCategory[cat.ID] = stats
			order = append(order, cat.ID)
		}
		stats.Total = stats.Total.Add(e.Amount)
		stats.Count++
	}

	agg.Categories = make([]CategorySummary, 0, len(order))
	for _, id := range order {
		stats := byCategory[id]
		stats.Percentage = decimal.Zero
		if agg.Spent.IsPositive() {
			stats.Percentage = stats.Total.Mul(hundred).Div(agg.Spent)
		}
		agg.Categories = append(agg.Categories, *stats)
	}

	// Сортируем по убыванию суммы, при равенстве сохраняем порядок появления
	sort.SliceStable(agg.Categories, func(i, j int) bool {
		return agg.Categories[i].Total.GreaterThan(agg.Categories[j].Total)
	})

	return agg
}

// DailyStats - сводка по дневному ряду для подписи графика
type DailyStats struct {
	Highest       decimal.Decimal
	ActiveDays    int
	AveragePerDay decimal.Decimal
}

func SummarizeDaily(daily []DailySummary) DailyStats {
	stats := DailyStats{Highest: decimal.Zero, AveragePerDay: decimal.Zero}
	if len(daily) == 0 {
		return stats
	}
	total := decimal.Zero
	for _, d := range daily {
		total = total.Add(d.Total)
		if d.Total.GreaterThan(stats.Highest) {
			stats.Highest = d.Total
		}
		if d.Total.IsPositive() {
			stats.ActiveDays++
		}
	}
	stats.AveragePerDay = total.Div(decimal.NewFromInt(int64(len(daily))))
	return stats
}
