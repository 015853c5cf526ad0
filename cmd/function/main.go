package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ivanoskov/expense_tracker/internal/bot"
	"github.com/ivanoskov/expense_tracker/internal/charts"
	"github.com/ivanoskov/expense_tracker/internal/config"
	"github.com/ivanoskov/expense_tracker/internal/logging"
	"github.com/ivanoskov/expense_tracker/internal/repository"
	"github.com/ivanoskov/expense_tracker/internal/service"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body string `json:"body"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(logrus.StandardLogger(), err)
	}

	logger := logging.New(cfg.LogLevel, cfg.AppEnv)

	engine, err := cfg.Engine()
	if err != nil {
		return errorResponse(logger, err)
	}

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, logger)
	if err != nil {
		return errorResponse(logger, err)
	}

	tracker := service.NewExpenseTracker(repo, engine, logger)

	b, err := bot.NewBot(cfg.TelegramToken, tracker, charts.NewChartGenerator(engine.Formatter()), logger)
	if err != nil {
		return errorResponse(logger, err)
	}

	// Обработка webhook-обновления
	if err := b.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		return errorResponse(logger, err)
	}

	return &Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(log logrus.FieldLogger, err error) (*Response, error) {
	log.WithError(err).Error("webhook failed")
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования
}
