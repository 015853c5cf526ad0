package model

import (
	"github.com/shopspring/decimal"
)

// Budget - месячный бюджет пользователя, один на (user_id, month, year)
type Budget struct {
	ID     string          `json:"id,omitempty"`
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Month  int             `json:"month"`
	Year   int             `json:"year"`
}
