package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/expense_tracker/internal/model"
)

// Кнопки главного меню
const (
	buttonDashboard = "📊 Dashboard"
	buttonAdd       = "➕ Add expense"
	buttonExpenses  = "📋 Expenses"
	buttonBudget    = "💰 Budget"
)

// Префиксы данных inline-кнопок
const (
	callbackCategory  = "category_"
	callbackDelete    = "delete_"
	callbackEdit      = "edit_"
	callbackLastMonth = "dashboard_prev"
	noCategory        = "none"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonDashboard),
			tgbotapi.NewKeyboardButton(buttonAdd),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonExpenses),
			tgbotapi.NewKeyboardButton(buttonBudget),
		),
	)
}

// categoriesKeyboard - по кнопке на категорию и отдельная "без категории"
func categoriesKeyboard(categories []model.Category) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories)+1)
	for _, category := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(category.Icon+" "+category.Name, callbackCategory+category.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("No category", callbackCategory+noCategory),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func expensesKeyboard(expenses []model.Expense) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(expenses))
	for i, e := range expenses {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(editLabel(i+1), callbackEdit+e.ID),
			tgbotapi.NewInlineKeyboardButtonData(deleteLabel(i+1), callbackDelete+e.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func dashboardKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏮ Last month", callbackLastMonth),
		),
	)
}
