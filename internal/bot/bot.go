package bot

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/ivanoskov/expense_tracker/internal/charts"
	"github.com/ivanoskov/expense_tracker/internal/model"
	"github.com/ivanoskov/expense_tracker/internal/service"
)

// Ожидаемые от пользователя действия
const (
	awaitExpense      = "expense_amount"
	awaitBudget       = "budget_amount"
	awaitEditCategory = "edit_category"
	awaitEdit         = "edit_amount"
)

// Bot не хранит состояние диалогов в памяти: в режиме webhook
// каждое обновление обрабатывает новый экземпляр.
type Bot struct {
	api     *tgbotapi.BotAPI
	service *service.ExpenseTracker
	charts  *charts.ChartGenerator
	log     logrus.FieldLogger
}

func NewBot(token string, service *service.ExpenseTracker, charts *charts.ChartGenerator, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	log.WithField("username", api.Self.UserName).Info("authorized in telegram")

	return newBot(api, service, charts, log), nil
}

func newBot(api *tgbotapi.BotAPI, service *service.ExpenseTracker, charts *charts.ChartGenerator, log logrus.FieldLogger) *Bot {
	return &Bot{
		api:     api,
		service: service,
		charts:  charts,
		log:     log,
	}
}

// Start запускает бота в режиме long polling до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				// Логируем ошибку, но продолжаем работу
				b.log.WithError(err).WithField("update_id", update.UpdateID).Error("failed to handle update")
			}
		}
	}
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("failed to decode update: %w", err)
	}
	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil || update.Message.From == nil:
		return nil
	case update.Message.IsCommand():
		return b.handleCommand(ctx, update.Message)
	default:
		return b.handleMessage(ctx, update.Message)
	}
}

// state возвращает nil, если пользователь ничего не ждет
func (b *Bot) state(ctx context.Context, userID int64) (*model.UserState, error) {
	return b.service.GetUserState(ctx, userID)
}

func (b *Bot) setState(ctx context.Context, state model.UserState) error {
	return b.service.SetUserState(ctx, state)
}

func (b *Bot) clearState(ctx context.Context, userID int64) {
	if err := b.service.ClearUserState(ctx, userID); err != nil {
		b.log.WithError(err).WithField("user_id", userID).Warn("failed to clear user state")
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.WithError(err).Error("failed to send message")
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}

func (b *Bot) sendPhoto(chatID int64, name string, png []byte) {
	if png == nil {
		return
	}
	b.send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: png}))
}
