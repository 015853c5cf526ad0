package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ivanoskov/expense_tracker/internal/analytics"
	"github.com/ivanoskov/expense_tracker/internal/model"
	"github.com/ivanoskov/expense_tracker/internal/service"
)

var csvHeader = []string{"date", "amount", "category", "note"}

// WriteCSV выгружает траты, сначала новые. Сумма пишется без символа валюты.
func WriteCSV(w io.Writer, expenses []model.Expense, categories map[string]model.Category) error {
	rows := append([]model.Expense(nil), expenses...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range rows {
		category := ""
		if e.CategoryID != nil {
			if c, ok := categories[*e.CategoryID]; ok {
				category = c.Name
			}
		}
		note := ""
		if e.Note != nil {
			note = *e.Note
		}
		if err := cw.Write([]string{e.Date.String(), e.Amount.StringFixed(2), category, note}); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ShareText - короткая текстовая сводка дашборда для пересылки
func ShareText(d *service.Dashboard, money analytics.CurrencyFormatter) string {
	m := d.Metrics
	var b strings.Builder
	fmt.Fprintf(&b, "💰 Expense summary - %s\n", d.Period)
	fmt.Fprintf(&b, "Budget: %s\n", money.Format(m.Budget))
	fmt.Fprintf(&b, "Spent: %s (%s%%)\n", money.Format(m.Spent), m.PercentUsed.Round(0))
	fmt.Fprintf(&b, "Remaining: %s\n", money.Format(m.Remaining))
	fmt.Fprintf(&b, "Daily burn rate: %s/day\n", money.Format(m.DailyBurnRate))
	if top, ok := d.Aggregation.TopCategory(); ok {
		fmt.Fprintf(&b, "Top category: %s %s %s\n", top.Icon, top.Name, money.Format(top.Total))
	}
	return b.String()
}
