package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ivanoskov/expense_tracker/internal/analytics"
	"github.com/ivanoskov/expense_tracker/internal/model"
)

var (
	// ErrNoBudget - бюджет на период не задан, нужно предложить его установить
	ErrNoBudget = errors.New("no budget set for this period")
	// ErrInvalidAmount - сумма траты или бюджета должна быть больше нуля
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidPeriod = errors.New("invalid period")
)

// Repository определяет интерфейс для работы с хранилищем данных
type Repository interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, id string, userID int64) (*model.Expense, error)
	GetExpenses(ctx context.Context, userID int64, filter model.ExpenseFilter) ([]model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, id string, userID int64) error
	GetBudget(ctx context.Context, userID int64, month, year int) (*model.Budget, error)
	SaveBudget(ctx context.Context, budget *model.Budget) error
	GetUserState(ctx context.Context, userID int64) (*model.UserState, error)
	SaveUserState(ctx context.Context, state *model.UserState) error
	DeleteUserState(ctx context.Context, userID int64) error
}

// ExpenseTracker предоставляет методы для работы с тратами, бюджетом и дашбордом
type ExpenseTracker struct {
	repo   Repository
	engine *analytics.Engine
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewExpenseTracker создает новый экземпляр ExpenseTracker
func NewExpenseTracker(repo Repository, engine *analytics.Engine, log logrus.FieldLogger) *ExpenseTracker {
	return &ExpenseTracker{
		repo:   repo,
		engine: engine,
		log:    log,
		now:    time.Now,
	}
}

func (s *ExpenseTracker) Engine() *analytics.Engine {
	return s.engine
}

// Today - текущая дата в локальной зоне сервера
func (s *ExpenseTracker) Today() civil.Date {
	return civil.DateOf(s.now())
}

// ExpenseInput - данные новой или изменяемой траты
type ExpenseInput struct {
	Amount     decimal.Decimal
	Date       civil.Date
	CategoryID *string
	Note       string
}

func (in ExpenseInput) validate() error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, in.Amount)
	}
	if !in.Date.IsValid() {
		return fmt.Errorf("invalid expense date %q", in.Date)
	}
	return nil
}

// note возвращает nil для пустой заметки
func (in ExpenseInput) note() *string {
	note := strings.TrimSpace(in.Note)
	if note == "" {
		return nil
	}
	return &note
}

func (in ExpenseInput) categoryID() *string {
	if in.CategoryID == nil || *in.CategoryID == "" {
		return nil
	}
	id := *in.CategoryID
	return &id
}

func (s *ExpenseTracker) AddExpense(ctx context.Context, userID int64, in ExpenseInput) (*model.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	expense := &model.Expense{
		UserID:     userID,
		CategoryID: in.categoryID(),
		Amount:     in.Amount,
		Date:       in.Date,
		Note:       in.note(),
	}
	expense.GenerateID()

	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to add expense: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "expense_id": expense.ID, "date": expense.Date.String()}).Info("expense added")
	return expense, nil
}

func (s *ExpenseTracker) GetExpense(ctx context.Context, userID int64, id string) (*model.Expense, error) {
	expense, err := s.repo.GetExpense(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense %s: %w", id, err)
	}
	return expense, nil
}

func (s *ExpenseTracker) UpdateExpense(ctx context.Context, userID int64, id string, in ExpenseInput) (*model.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	expense, err := s.repo.GetExpense(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense %s: %w", id, err)
	}
	expense.Amount = in.Amount
	expense.Date = in.Date
	expense.CategoryID = in.categoryID()
	expense.Note = in.note()

	if err := s.repo.UpdateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense %s: %w", id, err)
	}
	return expense, nil
}

func (s *ExpenseTracker) DeleteExpense(ctx context.Context, userID int64, id string) error {
	if err := s.repo.DeleteExpense(ctx, id, userID); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "expense_id": id}).Info("expense deleted")
	return nil
}

// ListExpenses возвращает траты за месяц, сначала новые
func (s *ExpenseTracker) ListExpenses(ctx context.Context, userID int64, period analytics.Period) ([]model.Expense, error) {
	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}
	start, end := period.Start(), period.End()
	expenses, err := s.repo.GetExpenses(ctx, userID, model.ExpenseFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses for %s: %w", period, err)
	}
	sortNewestFirst(expenses)
	return expenses, nil
}

func (s *ExpenseTracker) GetRecentExpenses(ctx context.Context, userID int64, limit int) ([]model.Expense, error) {
	expenses, err := s.repo.GetExpenses(ctx, userID, model.ExpenseFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent expenses: %w", err)
	}
	sortNewestFirst(expenses)
	return expenses, nil
}

func sortNewestFirst(expenses []model.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
}

func (s *ExpenseTracker) GetCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// SetBudget обновляет бюджет на месяц или создает его, если еще не было
func (s *ExpenseTracker) SetBudget(ctx context.Context, userID int64, period analytics.Period, amount decimal.Decimal) (*model.Budget, error) {
	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}

	budget, err := s.repo.GetBudget(ctx, userID, int(period.Month), period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing budget: %w", err)
	}
	if budget == nil {
		budget = &model.Budget{
			UserID: userID,
			Month:  int(period.Month),
			Year:   period.Year,
		}
	}
	budget.Amount = amount

	if err := s.repo.SaveBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget for %s: %w", period, err)
	}
	return budget, nil
}

func (s *ExpenseTracker) GetBudget(ctx context.Context, userID int64, period analytics.Period) (*model.Budget, error) {
	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}
	budget, err := s.repo.GetBudget(ctx, userID, int(period.Month), period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget for %s: %w", period, err)
	}
	if budget == nil {
		return nil, ErrNoBudget
	}
	return budget, nil
}

// GetUserState возвращает nil, если пользователь ничего не ждет
func (s *ExpenseTracker) GetUserState(ctx context.Context, userID int64) (*model.UserState, error) {
	state, err := s.repo.GetUserState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user state: %w", err)
	}
	return state, nil
}

func (s *ExpenseTracker) SetUserState(ctx context.Context, state model.UserState) error {
	state.UpdatedAt = s.now()
	if err := s.repo.SaveUserState(ctx, &state); err != nil {
		return fmt.Errorf("failed to save user state: %w", err)
	}
	return nil
}

func (s *ExpenseTracker) ClearUserState(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteUserState(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear user state: %w", err)
	}
	return nil
}
