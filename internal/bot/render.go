package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/expense_tracker/internal/analytics"
	"github.com/ivanoskov/expense_tracker/internal/model"
	"github.com/ivanoskov/expense_tracker/internal/service"
)

var errEmptyInput = errors.New("empty input")

// parseAmount принимает и точку, и запятую как десятичный разделитель
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, errEmptyInput
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", service.ErrInvalidAmount, amount)
	}
	return amount, nil
}

// expenseEntry - разобранный ввод "<сумма> [дата] [заметка]"
type expenseEntry struct {
	Amount decimal.Decimal
	Date   *civil.Date // nil, если дата не указана
	Note   string
}

// parseDate понимает ГГГГ-ММ-ДД, ДД/ММ/ГГГГ и ДД/ММ (год берется из today)
func parseDate(s string, today civil.Date) (civil.Date, bool) {
	if d, err := civil.ParseDate(s); err == nil {
		return d, true
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 && len(parts) != 3 {
		return civil.Date{}, false
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return civil.Date{}, false
		}
		nums[i] = n
	}
	year := today.Year
	if len(nums) == 3 {
		year = nums[2]
	}
	if nums[1] < 1 || nums[1] > 12 {
		return civil.Date{}, false
	}
	d := civil.Date{Year: year, Month: time.Month(nums[1]), Day: nums[0]}
	return d, d.IsValid()
}

// parseExpenseEntry разбирает ввод вида "<сумма> [дата] [заметка]".
// Дата распознается только сразу после суммы.
func parseExpenseEntry(text string, today civil.Date) (expenseEntry, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return expenseEntry{}, errEmptyInput
	}
	amount, err := parseAmount(fields[0])
	if err != nil {
		return expenseEntry{}, err
	}
	entry := expenseEntry{Amount: amount}
	rest := fields[1:]
	if len(rest) > 0 {
		if d, ok := parseDate(rest[0], today); ok {
			entry.Date = &d
			rest = rest[1:]
		}
	}
	entry.Note = strings.Join(rest, " ")
	return entry, nil
}

func editLabel(n int) string {
	return "✏️ Edit #" + strconv.Itoa(n)
}

func deleteLabel(n int) string {
	return "🗑 Delete #" + strconv.Itoa(n)
}

func tierIcon(t analytics.HealthTier) string {
	switch t {
	case analytics.TierCritical:
		return "🔴"
	case analytics.TierWarning:
		return "🟡"
	default:
		return "🟢"
	}
}

func renderDashboard(d *service.Dashboard, money analytics.CurrencyFormatter) string {
	m := d.Metrics
	var b strings.Builder

	fmt.Fprintf(&b, "📊 %s (as of %s)\n\n", d.Period, analytics.FormatDate(d.AsOf))

	if d.Alert != nil {
		fmt.Fprintf(&b, "%s %s\n%s\n\n", d.Alert.Icon, d.Alert.Title, d.Alert.Message)
	}

	fmt.Fprintf(&b, "%s Budget: %s\n", tierIcon(m.Tier), money.Format(m.Budget))
	fmt.Fprintf(&b, "💸 Spent: %s (%s%%)\n", money.Format(m.Spent), m.PercentUsed.StringFixed(1))
	fmt.Fprintf(&b, "💵 Remaining: %s\n", money.Format(m.Remaining))
	fmt.Fprintf(&b, "🔥 Burn rate: %s/day over %d days\n", money.Format(m.DailyBurnRate), m.DaysElapsed)
	fmt.Fprintf(&b, "📈 Projected: %s\n", money.Format(m.ProjectedMonthEndTotal))
	fmt.Fprintf(&b, "📅 Days remaining: %d\n", d.DaysRemaining)

	if len(d.Aggregation.Categories) > 0 {
		b.WriteString("\nBy category:\n")
		for _, c := range d.Aggregation.Categories {
			fmt.Fprintf(&b, "%s %s: %s (%s%%, %d)\n", c.Icon, c.Name, money.Format(c.Total), c.Percentage.Round(0), c.Count)
		}
	}

	if d.Daily.ActiveDays > 0 {
		fmt.Fprintf(&b, "\nHighest day: %s, active days: %d, average: %s/day\n",
			money.Format(d.Daily.Highest), d.Daily.ActiveDays, money.Format(d.Daily.AveragePerDay))
	}

	if len(d.Insights) > 0 {
		b.WriteString("\nInsights:\n")
		for _, in := range d.Insights {
			fmt.Fprintf(&b, "%s %s\n%s\n", in.Icon, in.Title, in.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderExpenses(expenses []model.Expense, categories map[string]model.Category, money analytics.CurrencyFormatter) string {
	if len(expenses) == 0 {
		return "No expenses yet. Use /add to record one."
	}
	var b strings.Builder
	b.WriteString("📋 Recent expenses:\n\n")
	for i, e := range expenses {
		label := "Uncategorized"
		if e.CategoryID != nil {
			if c, ok := categories[*e.CategoryID]; ok {
				label = c.Icon + " " + c.Name
			}
		}
		fmt.Fprintf(&b, "%d. %s %s %s", i+1, analytics.FormatDate(e.Date), money.Format(e.Amount), label)
		if e.Note != nil {
			fmt.Fprintf(&b, " - %s", *e.Note)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return "No categories configured."
	}
	var b strings.Builder
	b.WriteString("📋 Categories:\n\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "%s %s\n", c.Icon, c.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}
