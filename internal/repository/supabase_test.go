package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/expense_tracker/internal/model"
)

func TestDecodeExpenseRows(t *testing.T) {
	data := []byte(`[
		{"id":"e1","user_id":42,"category_id":"food","amount":1500.25,"expense_date":"2024-02-15","note":"groceries","created_at":"2024-02-15T10:11:12.345+00:00"},
		{"id":"e2","user_id":42,"category_id":null,"amount":"1000","expense_date":"2024-02-20","note":null}
	]`)

	rows, err := decodeRows[model.Expense](data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("1500.25")))
	assert.Equal(t, time.February, rows[0].Date.Month)
	assert.Equal(t, 15, rows[0].Date.Day)
	require.NotNil(t, rows[0].CategoryID)
	assert.Equal(t, "food", *rows[0].CategoryID)
	require.NotNil(t, rows[0].CreatedAt)

	assert.Nil(t, rows[1].CategoryID)
	assert.Nil(t, rows[1].Note)
	assert.True(t, rows[1].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestDecodeBudgetRows(t *testing.T) {
	rows, err := decodeRows[model.Budget]([]byte(`[{"id":"b1","user_id":42,"amount":5000,"month":2,"year":2024}]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Month)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(5000)))

	empty, err := decodeRows[model.Budget]([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeRowsRejectsObjects(t *testing.T) {
	_, err := decodeRows[model.Category]([]byte(`{"message":"permission denied"}`))
	assert.Error(t, err)
}

func TestExpenseInsertPayload(t *testing.T) {
	e := model.Expense{ID: "e1", UserID: 42, Amount: decimal.RequireFromString("12.50")}
	e.Date.Year, e.Date.Month, e.Date.Day = 2024, time.February, 1

	payload, err := json.Marshal(e)
	require.NoError(t, err)

	assert.Contains(t, string(payload), `"expense_date":"2024-02-01"`)
	assert.Contains(t, string(payload), `"amount":"12.5"`)
	assert.NotContains(t, string(payload), "created_at")
}

func TestDecodeUserStateRows(t *testing.T) {
	rows, err := decodeRows[model.UserState]([]byte(`[
		{"user_id":42,"selected_category_id":"food","expense_id":null,"awaiting_action":"expense_amount","updated_at":"2024-02-15T10:11:12.345+00:00"}
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, int64(42), rows[0].UserID)
	require.NotNil(t, rows[0].SelectedCategory)
	assert.Equal(t, "food", *rows[0].SelectedCategory)
	assert.Nil(t, rows[0].ExpenseID)
	assert.Equal(t, "expense_amount", rows[0].AwaitingAction)
}
