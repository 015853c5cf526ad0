package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/expense_tracker/internal/analytics"
)

type Config struct {
	SupabaseURL   string
	SupabaseKey   string
	TelegramToken string

	AppEnv   string
	LogLevel string

	CurrencySymbol string
	CurrencyLocale string
	Thresholds     analytics.Thresholds
}

// LoadConfig читает .env (если он есть) и переменные окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		AppEnv:         envOr("APP_ENV", "development"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		CurrencySymbol: envOr("CURRENCY_SYMBOL", "₹"),
		CurrencyLocale: envOr("CURRENCY_LOCALE", "en-IN"),
		Thresholds:     analytics.DefaultThresholds(),
	}

	var missing []string
	for name, value := range map[string]string{
		"SUPABASE_URL":   cfg.SupabaseURL,
		"SUPABASE_KEY":   cfg.SupabaseKey,
		"TELEGRAM_TOKEN": cfg.TelegramToken,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.Thresholds.WarningPercent, err = envDecimal("BUDGET_WARNING_PERCENT", cfg.Thresholds.WarningPercent); err != nil {
		return nil, err
	}
	if cfg.Thresholds.CriticalPercent, err = envDecimal("BUDGET_CRITICAL_PERCENT", cfg.Thresholds.CriticalPercent); err != nil {
		return nil, err
	}
	if cfg.Thresholds.ExceededPercent, err = envDecimal("BUDGET_EXCEEDED_PERCENT", cfg.Thresholds.ExceededPercent); err != nil {
		return nil, err
	}
	if raw := os.Getenv("PROJECTION_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PROJECTION_DAYS %q: %w", raw, err)
		}
		cfg.Thresholds.ProjectionDays = days
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid budget thresholds: %w", err)
	}

	return cfg, nil
}

// Engine собирает движок расчетов из настроек валюты и порогов
func (c *Config) Engine() (*analytics.Engine, error) {
	money, err := analytics.NewCurrencyFormatter(c.CurrencySymbol, c.CurrencyLocale)
	if err != nil {
		return nil, err
	}
	return analytics.NewEngine(c.Thresholds, money)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
