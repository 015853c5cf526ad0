package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/expense_tracker/internal/model"
	"github.com/ivanoskov/expense_tracker/internal/service"
)

const (
	tableCategories = "categories"
	tableExpenses   = "expenses"
	tableBudgets    = "budgets"
	tableUserStates = "user_states"
)

var _ service.Repository = (*SupabaseRepository)(nil)

type SupabaseRepository struct {
	client *supabase.Client
	log    logrus.FieldLogger
}

func NewSupabaseRepository(url, key string, log logrus.FieldLogger) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseRepository{
		client: client,
		log:    log,
	}, nil
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// decodeRows разбирает ответ PostgREST (всегда массив строк)
func decodeRows[T any](data []byte) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SupabaseRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := r.client.From(tableCategories).
		Select("*", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	categories, err := decodeRows[model.Category](data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	return categories, nil
}

func (r *SupabaseRepository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, _, err := r.client.From(tableExpenses).
		Insert(expense, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	// Берем из ответа значения, проставленные базой
	created, err := decodeRows[model.Expense](data)
	if err != nil {
		return fmt.Errorf("failed to parse created expense: %w", err)
	}
	if len(created) > 0 {
		expense.ID = created[0].ID
		expense.CreatedAt = created[0].CreatedAt
	}
	r.log.WithFields(logrus.Fields{"user_id": expense.UserID, "expense_id": expense.ID}).Debug("expense created")
	return nil
}

func (r *SupabaseRepository) GetExpense(ctx context.Context, id string, userID int64) (*model.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := r.client.From(tableExpenses).
		Select("*", "", false).
		Eq("id", id).
		Eq("user_id", userKey(userID)).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expenses, err := decodeRows[model.Expense](data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expense: %w", err)
	}
	if len(expenses) == 0 {
		return nil, model.ErrNotFound
	}
	return &expenses[0], nil
}

func (r *SupabaseRepository) GetExpenses(ctx context.Context, userID int64, filter model.ExpenseFilter) ([]model.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := r.client.From(tableExpenses).
		Select("*", "", false).
		Eq("user_id", userKey(userID))

	if filter.StartDate != nil {
		query = query.Gte("expense_date", filter.StartDate.String())
	}
	if filter.EndDate != nil {
		query = query.Lte("expense_date", filter.EndDate.String())
	}

	// Сначала новые
	query = query.Order("expense_date", &postgrest.OrderOpts{Ascending: false})

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, count, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}

	expenses, err := decodeRows[model.Expense](data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expenses: %w", err)
	}
	r.log.WithFields(logrus.Fields{"user_id": userID, "count": len(expenses), "total": count}).Debug("expenses loaded")
	return expenses, nil
}

func (r *SupabaseRepository) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, _, err := r.client.From(tableExpenses).
		Update(expense, "representation", "").
		Eq("id", expense.ID).
		Eq("user_id", userKey(expense.UserID)).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	updated, err := decodeRows[model.Expense](data)
	if err != nil {
		return fmt.Errorf("failed to parse updated expense: %w", err)
	}
	if len(updated) == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *SupabaseRepository) DeleteExpense(ctx context.Context, id string, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, _, err := r.client.From(tableExpenses).
		Delete("representation", "").
		Eq("id", id).
		Eq("user_id", userKey(userID)).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	deleted, err := decodeRows[model.Expense](data)
	if err != nil {
		return fmt.Errorf("failed to parse deleted expense: %w", err)
	}
	if len(deleted) == 0 {
		return model.ErrNotFound
	}
	return nil
}

// GetBudget возвращает nil без ошибки, если бюджет на месяц не задан
func (r *SupabaseRepository) GetBudget(ctx context.Context, userID int64, month, year int) (*model.Budget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := r.client.From(tableBudgets).
		Select("*", "", false).
		Eq("user_id", userKey(userID)).
		Eq("month", strconv.Itoa(month)).
		Eq("year", strconv.Itoa(year)).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	budgets, err := decodeRows[model.Budget](data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	return &budgets[0], nil
}

// SaveBudget обновляет существующий бюджет по ID или создает новый
func (r *SupabaseRepository) SaveBudget(ctx context.Context, budget *model.Budget) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if budget.ID != "" {
		data, _, err = r.client.From(tableBudgets).
			Update(map[string]interface{}{"amount": budget.Amount}, "representation", "").
			Eq("id", budget.ID).
			Eq("user_id", userKey(budget.UserID)).
			Execute()
	} else {
		data, _, err = r.client.From(tableBudgets).
			Insert(budget, false, "", "representation", "").
			Execute()
	}
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}

	saved, err := decodeRows[model.Budget](data)
	if err != nil {
		return fmt.Errorf("failed to parse saved budget: %w", err)
	}
	if len(saved) > 0 {
		budget.ID = saved[0].ID
	}
	r.log.WithFields(logrus.Fields{"user_id": budget.UserID, "month": budget.Month, "year": budget.Year}).Info("budget saved")
	return nil
}

// GetUserState возвращает nil без ошибки, если диалог не начат
func (r *SupabaseRepository) GetUserState(ctx context.Context, userID int64) (*model.UserState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := r.client.From(tableUserStates).
		Select("*", "", false).
		Eq("user_id", userKey(userID)).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get user state: %w", err)
	}

	states, err := decodeRows[model.UserState](data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user state: %w", err)
	}
	if len(states) == 0 {
		return nil, nil
	}
	return &states[0], nil
}

// SaveUserState перезаписывает состояние пользователя (upsert по user_id)
func (r *SupabaseRepository) SaveUserState(ctx context.Context, state *model.UserState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := r.client.From(tableUserStates).
		Insert(state, true, "user_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to save user state: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) DeleteUserState(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := r.client.From(tableUserStates).
		Delete("minimal", "").
		Eq("user_id", userKey(userID)).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete user state: %w", err)
	}
	return nil
}
