package bot

import (
	"context"
	"strconv"
	"sync"

	"github.com/ivanoskov/expense_tracker/internal/model"
)

// memoryRepository переживает экземпляры Bot, как таблицы Supabase
type memoryRepository struct {
	mu         sync.Mutex
	categories []model.Category
	expenses   []model.Expense
	budgets    []model.Budget
	states     map[int64]model.UserState
	budgetErr  error
}

func newMemoryRepository(categories ...model.Category) *memoryRepository {
	return &memoryRepository{categories: categories, states: make(map[int64]model.UserState)}
}

func (r *memoryRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Category(nil), r.categories...), nil
}

func (r *memoryRepository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *memoryRepository) GetExpense(ctx context.Context, id string, userID int64) (*model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.expenses {
		if e.ID == id && e.UserID == userID {
			found := e
			return &found, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *memoryRepository) GetExpenses(ctx context.Context, userID int64, filter model.ExpenseFilter) ([]model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Expense
	for _, e := range r.expenses {
		if e.UserID != userID {
			continue
		}
		if filter.StartDate != nil && e.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.Date.After(*filter.EndDate) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepository) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.expenses {
		if e.ID == expense.ID && e.UserID == expense.UserID {
			r.expenses[i] = *expense
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memoryRepository) DeleteExpense(ctx context.Context, id string, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.expenses {
		if e.ID == id && e.UserID == userID {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memoryRepository) GetBudget(ctx context.Context, userID int64, month, year int) (*model.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.budgetErr != nil {
		return nil, r.budgetErr
	}
	for _, b := range r.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) SaveBudget(ctx context.Context, budget *model.Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.budgets {
		if budget.ID != "" && b.ID == budget.ID {
			r.budgets[i] = *budget
			return nil
		}
	}
	budget.ID = "budget-" + strconv.Itoa(len(r.budgets)+1)
	r.budgets = append(r.budgets, *budget)
	return nil
}

func (r *memoryRepository) GetUserState(ctx context.Context, userID int64) (*model.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (r *memoryRepository) SaveUserState(ctx context.Context, state *model.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.UserID] = *state
	return nil
}

func (r *memoryRepository) DeleteUserState(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, userID)
	return nil
}
