package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/ivanoskov/expense_tracker/internal/model"
)

// fakeRepository хранит данные в памяти и повторяет фильтры Supabase
type fakeRepository struct {
	mu         sync.Mutex
	categories []model.Category
	expenses   []model.Expense
	budgets    []model.Budget
	states     map[int64]model.UserState
	failWith   error
	nextID     int
}

func newFakeRepository(categories ...model.Category) *fakeRepository {
	return &fakeRepository{categories: categories}
}

func (r *fakeRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	return append([]model.Category(nil), r.categories...), nil
}

func (r *fakeRepository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *fakeRepository) GetExpense(ctx context.Context, id string, userID int64) (*model.Expense, error) {
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

func (r *fakeRepository) GetExpenses(ctx context.Context, userID int64, filter model.ExpenseFilter) ([]model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
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
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeRepository) UpdateExpense(ctx context.Context, expense *model.Expense) error {
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

func (r *fakeRepository) DeleteExpense(ctx context.Context, id string, userID int64) error {
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

func (r *fakeRepository) GetBudget(ctx context.Context, userID int64, month, year int) (*model.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, b := range r.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeRepository) SaveBudget(ctx context.Context, budget *model.Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if budget.ID != "" {
		for i, b := range r.budgets {
			if b.ID == budget.ID {
				r.budgets[i] = *budget
				return nil
			}
		}
		return errors.New("budget id not found")
	}
	r.nextID++
	budget.ID = "budget-" + strconv.Itoa(r.nextID)
	r.budgets = append(r.budgets, *budget)
	return nil
}

func (r *fakeRepository) GetUserState(ctx context.Context, userID int64) (*model.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	state, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (r *fakeRepository) SaveUserState(ctx context.Context, state *model.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if r.states == nil {
		r.states = make(map[int64]model.UserState)
	}
	r.states[state.UserID] = *state
	return nil
}

func (r *fakeRepository) DeleteUserState(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, userID)
	return nil
}
