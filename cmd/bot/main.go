package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivanoskov/expense_tracker/internal/bot"
	"github.com/ivanoskov/expense_tracker/internal/charts"
	"github.com/ivanoskov/expense_tracker/internal/config"
	"github.com/ivanoskov/expense_tracker/internal/logging"
	"github.com/ivanoskov/expense_tracker/internal/repository"
	"github.com/ivanoskov/expense_tracker/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.AppEnv)

	engine, err := cfg.Engine()
	if err != nil {
		logger.WithError(err).Fatal("invalid budget settings")
	}

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to init repository")
	}

	tracker := service.NewExpenseTracker(repo, engine, logger)

	b, err := bot.NewBot(cfg.TelegramToken, tracker, charts.NewChartGenerator(engine.Formatter()), logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to init bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started")
	if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("bot stopped")
	}
	logger.Info("bot stopped")
}
