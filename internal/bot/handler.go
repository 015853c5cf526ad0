package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/ivanoskov/expense_tracker/internal/analytics"
	"github.com/ivanoskov/expense_tracker/internal/export"
	"github.com/ivanoskov/expense_tracker/internal/model"
	"github.com/ivanoskov/expense_tracker/internal/service"
)

const recentExpensesLimit = 10

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	userID, chatID := message.From.ID, message.Chat.ID
	b.clearState(ctx, userID)

	switch message.Command() {
	case "start":
		b.handleStart(chatID)
	case "dashboard":
		return b.handleDashboard(ctx, userID, chatID, b.currentPeriod())
	case "add":
		return b.handleAdd(ctx, chatID)
	case "budget":
		return b.handleBudget(ctx, userID, chatID, message.CommandArguments())
	case "expenses":
		return b.handleExpenses(ctx, userID, chatID)
	case "export":
		return b.handleExport(ctx, userID, chatID)
	case "share":
		return b.handleShare(ctx, userID, chatID)
	case "categories":
		return b.handleCategories(ctx, chatID)
	default:
		b.sendText(chatID, "Unknown command. Use /start to see what I can do.")
	}
	return nil
}

func (b *Bot) handleStart(chatID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"Welcome to the expense tracker! 💰\n\n"+
			"/dashboard - budget status, charts and insights\n"+
			"/add - record an expense\n"+
			"/budget <amount> - set this month's budget\n"+
			"/expenses - recent expenses\n"+
			"/export - this month as CSV\n"+
			"/share - short summary to forward\n"+
			"/categories - list categories")
	msg.ReplyMarkup = mainKeyboard()
	b.send(msg)
}

func (b *Bot) currentPeriod() analytics.Period {
	return analytics.PeriodOf(b.service.Today())
}

func (b *Bot) handleDashboard(ctx context.Context, userID, chatID int64, period analytics.Period) error {
	dashboard, err := b.service.GetDashboardForPeriod(ctx, userID, period, b.service.Today())
	if errors.Is(err, service.ErrNoBudget) {
		b.sendText(chatID, fmt.Sprintf("No budget set for %s. Use /budget <amount> to set one.", period))
		return nil
	}
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to build the dashboard")
		return err
	}

	msg := tgbotapi.NewMessage(chatID, renderDashboard(dashboard, b.service.Engine().Formatter()))
	msg.ReplyMarkup = dashboardKeyboard()
	b.send(msg)

	trend, err := b.charts.DailyTrend(period, dashboard.Aggregation.Daily)
	if err != nil {
		b.log.WithError(err).Warn("daily trend chart skipped")
	}
	b.sendPhoto(chatID, "trend.png", trend)

	pie, err := b.charts.CategoryPie(dashboard.Aggregation.Categories)
	if err != nil {
		b.log.WithError(err).Warn("category chart skipped")
	}
	b.sendPhoto(chatID, "categories.png", pie)
	return nil
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64) error {
	categories, err := b.service.GetCategories(ctx)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load categories")
		return err
	}
	msg := tgbotapi.NewMessage(chatID, "Choose a category:")
	msg.ReplyMarkup = categoriesKeyboard(categories)
	b.send(msg)
	return nil
}

func (b *Bot) handleBudget(ctx context.Context, userID, chatID int64, args string) error {
	period := b.currentPeriod()
	if strings.TrimSpace(args) == "" {
		budget, err := b.service.GetBudget(ctx, userID, period)
		switch {
		case err == nil:
			b.sendText(chatID, fmt.Sprintf("Budget for %s: %s", period, b.service.Engine().Formatter().Format(budget.Amount)))
		case !errors.Is(err, service.ErrNoBudget):
			b.log.WithError(err).WithField("user_id", userID).Warn("failed to load current budget")
		}
		if err := b.setState(ctx, model.UserState{UserID: userID, AwaitingAction: awaitBudget}); err != nil {
			b.sendErrorMessage(chatID, "Failed to start budget setup")
			return err
		}
		b.sendText(chatID, "Enter the monthly budget amount, for example: 25000")
		return nil
	}
	return b.saveBudget(ctx, userID, chatID, args)
}

func (b *Bot) saveBudget(ctx context.Context, userID, chatID int64, text string) error {
	amount, err := parseAmount(text)
	if err != nil {
		b.sendErrorMessage(chatID, "Invalid amount. Use a positive number, for example: 25000")
		return nil
	}
	period := b.currentPeriod()
	budget, err := b.service.SetBudget(ctx, userID, period, amount)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to save the budget")
		return err
	}
	b.clearState(ctx, userID)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Budget for %s set to %s ✅", period, b.service.Engine().Formatter().Format(budget.Amount)))
	msg.ReplyMarkup = mainKeyboard()
	b.send(msg)
	return nil
}

func (b *Bot) handleExpenses(ctx context.Context, userID, chatID int64) error {
	expenses, err := b.service.GetRecentExpenses(ctx, userID, recentExpensesLimit)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load expenses")
		return err
	}
	categories, err := b.service.GetCategories(ctx)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load categories")
		return err
	}

	msg := tgbotapi.NewMessage(chatID, renderExpenses(expenses, analytics.CategoryLookup(categories), b.service.Engine().Formatter()))
	if len(expenses) > 0 {
		msg.ReplyMarkup = expensesKeyboard(expenses)
	}
	b.send(msg)
	return nil
}

func (b *Bot) handleExport(ctx context.Context, userID, chatID int64) error {
	period := b.currentPeriod()
	expenses, err := b.service.ListExpenses(ctx, userID, period)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load expenses")
		return err
	}
	categories, err := b.service.GetCategories(ctx)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load categories")
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses, analytics.CategoryLookup(categories)); err != nil {
		b.sendErrorMessage(chatID, "Failed to export expenses")
		return err
	}
	name := fmt.Sprintf("expenses-%d-%02d.csv", period.Year, int(period.Month))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: buf.Bytes()})
	doc.Caption = fmt.Sprintf("%d expenses for %s", len(expenses), period)
	b.send(doc)
	return nil
}

func (b *Bot) handleShare(ctx context.Context, userID, chatID int64) error {
	dashboard, err := b.service.GetDashboard(ctx, userID, b.service.Today())
	if errors.Is(err, service.ErrNoBudget) {
		b.sendText(chatID, "Set a budget with /budget <amount> first.")
		return nil
	}
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to build the summary")
		return err
	}
	b.sendText(chatID, export.ShareText(dashboard, b.service.Engine().Formatter()))
	return nil
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	categories, err := b.service.GetCategories(ctx)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load categories")
		return err
	}
	b.sendText(chatID, renderCategories(categories))
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Отвечаем на callback, чтобы убрать loading indicator
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			b.log.WithError(err).Warn("failed to answer callback")
		}
	}()
	if callback.Message == nil || callback.Message.Chat == nil || callback.From == nil {
		return nil
	}
	userID, chatID := callback.From.ID, callback.Message.Chat.ID

	switch data := callback.Data; {
	case data == callbackLastMonth:
		return b.handleDashboard(ctx, userID, chatID, b.currentPeriod().Previous())
	case strings.HasPrefix(data, callbackCategory):
		return b.handleCategoryChosen(ctx, userID, chatID, strings.TrimPrefix(data, callbackCategory))
	case strings.HasPrefix(data, callbackEdit):
		return b.handleEdit(ctx, userID, chatID, strings.TrimPrefix(data, callbackEdit))
	case strings.HasPrefix(data, callbackDelete):
		id := strings.TrimPrefix(data, callbackDelete)
		if err := b.service.DeleteExpense(ctx, userID, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				b.sendErrorMessage(chatID, "Expense not found")
				return nil
			}
			b.sendErrorMessage(chatID, "Failed to delete the expense")
			return err
		}
		b.sendText(chatID, "Expense deleted 🗑")
	default:
		b.log.WithFields(logrus.Fields{"user_id": userID, "data": data}).Warn("unknown callback")
	}
	return nil
}

// handleCategoryChosen продолжает добавление траты или ее редактирование
func (b *Bot) handleCategoryChosen(ctx context.Context, userID, chatID int64, id string) error {
	var categoryID *string
	if id != noCategory {
		categoryID = &id
	}

	current, err := b.state(ctx, userID)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load your session")
		return err
	}

	next := model.UserState{UserID: userID, SelectedCategory: categoryID, AwaitingAction: awaitExpense}
	prompt := "Enter the amount, an optional date and note, for example:\n250 Lunch\n250 14/02 Lunch"
	if current != nil && current.AwaitingAction == awaitEditCategory && current.ExpenseID != nil {
		next.AwaitingAction = awaitEdit
		next.ExpenseID = current.ExpenseID
		prompt = "Enter the new amount, an optional date and note.\nOmitted date and note stay unchanged."
	}

	if err := b.setState(ctx, next); err != nil {
		b.sendErrorMessage(chatID, "Failed to save your choice")
		return err
	}
	b.sendText(chatID, prompt)
	return nil
}

func (b *Bot) handleEdit(ctx context.Context, userID, chatID int64, expenseID string) error {
	expense, err := b.service.GetExpense(ctx, userID, expenseID)
	if errors.Is(err, model.ErrNotFound) {
		b.sendErrorMessage(chatID, "Expense not found")
		return nil
	}
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load the expense")
		return err
	}
	categories, err := b.service.GetCategories(ctx)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load categories")
		return err
	}

	if err := b.setState(ctx, model.UserState{UserID: userID, ExpenseID: &expense.ID, AwaitingAction: awaitEditCategory}); err != nil {
		b.sendErrorMessage(chatID, "Failed to start editing")
		return err
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Editing %s from %s. Choose a category:",
		b.service.Engine().Formatter().Format(expense.Amount), analytics.FormatDate(expense.Date)))
	msg.ReplyMarkup = categoriesKeyboard(categories)
	b.send(msg)
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	userID, chatID := message.From.ID, message.Chat.ID

	switch message.Text {
	case buttonDashboard:
		b.clearState(ctx, userID)
		return b.handleDashboard(ctx, userID, chatID, b.currentPeriod())
	case buttonAdd:
		b.clearState(ctx, userID)
		return b.handleAdd(ctx, chatID)
	case buttonExpenses:
		b.clearState(ctx, userID)
		return b.handleExpenses(ctx, userID, chatID)
	case buttonBudget:
		return b.handleBudget(ctx, userID, chatID, "")
	}

	state, err := b.state(ctx, userID)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load your session")
		return err
	}
	if state == nil {
		// Если нет активного состояния, показываем главное меню
		msg := tgbotapi.NewMessage(chatID, "Choose an action:")
		msg.ReplyMarkup = mainKeyboard()
		b.send(msg)
		return nil
	}

	switch state.AwaitingAction {
	case awaitBudget:
		return b.saveBudget(ctx, userID, chatID, message.Text)
	case awaitExpense:
		return b.saveExpense(ctx, userID, chatID, state.SelectedCategory, message.Text)
	case awaitEdit:
		if state.ExpenseID != nil {
			return b.saveEdit(ctx, userID, chatID, *state.ExpenseID, state.SelectedCategory, message.Text)
		}
	case awaitEditCategory:
		b.sendText(chatID, "Choose a category above first.")
		return nil
	}
	b.clearState(ctx, userID)
	return nil
}

const entryFormatHint = "Invalid format. Use: <amount> [date] [note], for example: 250 14/02 Lunch"

func (b *Bot) saveExpense(ctx context.Context, userID, chatID int64, categoryID *string, text string) error {
	today := b.service.Today()
	entry, err := parseExpenseEntry(text, today)
	if err != nil {
		b.sendErrorMessage(chatID, entryFormatHint)
		return nil
	}
	date := today
	if entry.Date != nil {
		date = *entry.Date
	}

	expense, err := b.service.AddExpense(ctx, userID, service.ExpenseInput{
		Amount:     entry.Amount,
		Date:       date,
		CategoryID: categoryID,
		Note:       entry.Note,
	})
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to save the expense")
		return err
	}
	b.clearState(ctx, userID)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Expense of %s on %s saved ✅",
		b.service.Engine().Formatter().Format(expense.Amount), analytics.FormatDate(expense.Date)))
	msg.ReplyMarkup = mainKeyboard()
	b.send(msg)

	b.sendAlert(ctx, userID, chatID, expense.Date)
	return nil
}

// saveEdit заменяет сумму и категорию. Дата и заметка меняются, только если указаны.
func (b *Bot) saveEdit(ctx context.Context, userID, chatID int64, expenseID string, categoryID *string, text string) error {
	entry, err := parseExpenseEntry(text, b.service.Today())
	if err != nil {
		b.sendErrorMessage(chatID, entryFormatHint)
		return nil
	}

	current, err := b.service.GetExpense(ctx, userID, expenseID)
	if errors.Is(err, model.ErrNotFound) {
		b.clearState(ctx, userID)
		b.sendErrorMessage(chatID, "Expense not found")
		return nil
	}
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to load the expense")
		return err
	}

	in := service.ExpenseInput{
		Amount:     entry.Amount,
		Date:       current.Date,
		CategoryID: categoryID,
		Note:       entry.Note,
	}
	if entry.Date != nil {
		in.Date = *entry.Date
	}
	if in.Note == "" && current.Note != nil {
		in.Note = *current.Note
	}

	updated, err := b.service.UpdateExpense(ctx, userID, expenseID, in)
	if err != nil {
		b.sendErrorMessage(chatID, "Failed to update the expense")
		return err
	}
	b.clearState(ctx, userID)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Expense updated: %s on %s ✅",
		b.service.Engine().Formatter().Format(updated.Amount), analytics.FormatDate(updated.Date)))
	msg.ReplyMarkup = mainKeyboard()
	b.send(msg)

	b.sendAlert(ctx, userID, chatID, updated.Date)
	return nil
}

// sendAlert показывает предупреждение, если бюджет месяца траты на исходе
func (b *Bot) sendAlert(ctx context.Context, userID, chatID int64, date civil.Date) {
	dashboard, err := b.service.GetDashboardForPeriod(ctx, userID, analytics.PeriodOf(date), b.service.Today())
	if err != nil {
		if !errors.Is(err, service.ErrNoBudget) {
			b.log.WithError(err).Warn("failed to check budget after expense")
		}
		return
	}
	if a := dashboard.Alert; a != nil {
		b.sendText(chatID, fmt.Sprintf("%s %s\n%s", a.Icon, a.Title, a.Message))
	}
}
