package model

import "time"

// UserState представляет текущее состояние диалога пользователя с ботом.
// Хранится в базе: webhook-обработчик не живет дольше одного обновления.
type UserState struct {
	UserID           int64     `json:"user_id"`
	SelectedCategory *string   `json:"selected_category_id"`
	ExpenseID        *string   `json:"expense_id"` // редактируемая трата
	AwaitingAction   string    `json:"awaiting_action"`
	UpdatedAt        time.Time `json:"updated_at"`
}
