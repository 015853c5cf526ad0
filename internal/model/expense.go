package model

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID         string          `json:"id"`
	UserID     int64           `json:"user_id"`
	CategoryID *string         `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       civil.Date      `json:"expense_date"`
	Note       *string         `json:"note"`
	CreatedAt  *time.Time      `json:"created_at,omitempty"`
}

// GenerateID генерирует новый UUID для траты, если он еще не установлен
func (e *Expense) GenerateID() {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
}

// ExpenseFilter ограничивает выборку трат по дате (включительно)
type ExpenseFilter struct {
	StartDate *civil.Date
	EndDate   *civil.Date
	Limit     int
}
