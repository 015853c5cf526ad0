package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/expense_tracker/internal/analytics"
	"github.com/ivanoskov/expense_tracker/internal/charts"
	"github.com/ivanoskov/expense_tracker/internal/model"
	"github.com/ivanoskov/expense_tracker/internal/service"
)

const (
	testUserID int64 = 7
	testChatID int64 = 42
)

// telegramStub отвечает успехом на любой метод Bot API и запоминает отправленные тексты
type telegramStub struct {
	mu    sync.Mutex
	texts []string
}

func (s *telegramStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil && path.Base(r.URL.Path) == "sendMessage" {
		s.mu.Lock()
		s.texts = append(s.texts, r.FormValue("text"))
		s.mu.Unlock()
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Test","username":"test_bot","message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
}

func (s *telegramStub) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

// webhookEnv собирает новый Bot на каждое обновление, как cmd/function
type webhookEnv struct {
	t        *testing.T
	repo     *memoryRepository
	telegram *telegramStub
	server   *httptest.Server
	log      *logrus.Logger
	logs     *logtest.Hook
}

func newWebhookEnv(t *testing.T) *webhookEnv {
	env := &webhookEnv{
		t:        t,
		repo:     newMemoryRepository(model.Category{ID: "food", Name: "Food", Icon: "🍔"}),
		telegram: &telegramStub{},
	}
	env.log, env.logs = logtest.NewNullLogger()
	env.server = httptest.NewServer(env.telegram)
	t.Cleanup(env.server.Close)
	return env
}

func (env *webhookEnv) handle(body string) {
	env.t.Helper()
	api, err := tgbotapi.NewBotAPIWithClient("token", env.server.URL+"/bot%s/%s", env.server.Client())
	require.NoError(env.t, err)

	tracker := service.NewExpenseTracker(env.repo, analytics.DefaultEngine(), env.log)
	b := newBot(api, tracker, charts.NewChartGenerator(analytics.DefaultFormatter), env.log)
	require.NoError(env.t, b.HandleWebhook(context.Background(), []byte(body)))
}

func callbackUpdate(data string) string {
	return fmt.Sprintf(`{"update_id":1,"callback_query":{"id":"cb","from":{"id":%d,"first_name":"A"},"message":{"message_id":5,"date":0,"chat":{"id":%d,"type":"private"}},"data":%q}}`,
		testUserID, testChatID, data)
}

func messageUpdate(text string) string {
	return fmt.Sprintf(`{"update_id":2,"message":{"message_id":6,"date":0,"from":{"id":%d,"first_name":"A"},"chat":{"id":%d,"type":"private"},"text":%q}}`,
		testUserID, testChatID, text)
}

func commandUpdate(command string) string {
	return fmt.Sprintf(`{"update_id":3,"message":{"message_id":7,"date":0,"from":{"id":%d,"first_name":"A"},"chat":{"id":%d,"type":"private"},"text":%q,"entities":[{"type":"bot_command","offset":0,"length":%d}]}}`,
		testUserID, testChatID, command, len(command))
}

func TestAddExpenseAcrossWebhookCalls(t *testing.T) {
	env := newWebhookEnv(t)

	env.handle(callbackUpdate("category_food"))
	env.handle(messageUpdate("250 2024-02-10 Lunch"))

	require.Len(t, env.repo.expenses, 1)
	e := env.repo.expenses[0]
	assert.Equal(t, testUserID, e.UserID)
	assert.True(t, e.Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 10}, e.Date)
	require.NotNil(t, e.CategoryID)
	assert.Equal(t, "food", *e.CategoryID)
	require.NotNil(t, e.Note)
	assert.Equal(t, "Lunch", *e.Note)

	assert.Empty(t, env.repo.states, "state is cleared once the expense is saved")
	assert.Contains(t, env.telegram.last(), "Expense of ₹250.00 on 10/02/2024 saved")
}

func TestSetBudgetAcrossWebhookCalls(t *testing.T) {
	env := newWebhookEnv(t)

	env.handle(commandUpdate("/budget"))
	env.handle(messageUpdate("25000"))

	require.Len(t, env.repo.budgets, 1)
	assert.True(t, env.repo.budgets[0].Amount.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, testUserID, env.repo.budgets[0].UserID)
	assert.Empty(t, env.repo.states)
}

func TestBudgetPromptLogsRepositoryFailure(t *testing.T) {
	env := newWebhookEnv(t)
	env.repo.budgetErr = errors.New("connection refused")

	env.handle(commandUpdate("/budget"))

	var warned bool
	for _, entry := range env.logs.AllEntries() {
		if entry.Message == "failed to load current budget" {
			warned = true
			assert.Equal(t, logrus.WarnLevel, entry.Level)
			assert.Contains(t, entry.Data[logrus.ErrorKey].(error).Error(), "connection refused")
		}
	}
	assert.True(t, warned, "repository failure must not pass for a missing budget silently")

	require.Contains(t, env.repo.states, testUserID)
	assert.Equal(t, awaitBudget, env.repo.states[testUserID].AwaitingAction)
}

func TestEditExpenseAcrossWebhookCalls(t *testing.T) {
	env := newWebhookEnv(t)
	note := "Lunch"
	category := "food"
	env.repo.expenses = []model.Expense{{
		ID:         "e1",
		UserID:     testUserID,
		CategoryID: &category,
		Amount:     decimal.NewFromInt(250),
		Date:       civil.Date{Year: 2024, Month: time.February, Day: 10},
		Note:       &note,
	}}

	env.handle(callbackUpdate("edit_e1"))
	env.handle(callbackUpdate("category_none"))
	env.handle(messageUpdate("300"))

	require.Len(t, env.repo.expenses, 1)
	e := env.repo.expenses[0]
	assert.True(t, e.Amount.Equal(decimal.NewFromInt(300)))
	assert.Nil(t, e.CategoryID)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 10}, e.Date, "omitted date is kept")
	require.NotNil(t, e.Note)
	assert.Equal(t, "Lunch", *e.Note, "omitted note is kept")
	assert.Empty(t, env.repo.states)
}

func TestEditExpenseWithNewDateAndNote(t *testing.T) {
	env := newWebhookEnv(t)
	env.repo.expenses = []model.Expense{{
		ID:     "e1",
		UserID: testUserID,
		Amount: decimal.NewFromInt(40),
		Date:   civil.Date{Year: 2024, Month: time.February, Day: 4},
	}}

	env.handle(callbackUpdate("edit_e1"))
	env.handle(callbackUpdate("category_food"))
	env.handle(messageUpdate("45 05/02/2024 metro card"))

	e := env.repo.expenses[0]
	assert.True(t, e.Amount.Equal(decimal.NewFromInt(45)))
	require.NotNil(t, e.CategoryID)
	assert.Equal(t, "food", *e.CategoryID)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 5}, e.Date)
	require.NotNil(t, e.Note)
	assert.Equal(t, "metro card", *e.Note)
}

func TestEditUnknownExpense(t *testing.T) {
	env := newWebhookEnv(t)

	env.handle(callbackUpdate("edit_missing"))

	assert.Empty(t, env.repo.states)
	assert.Contains(t, env.telegram.last(), "Expense not found")
}

func TestMessageWithoutStateShowsMenu(t *testing.T) {
	env := newWebhookEnv(t)

	env.handle(messageUpdate("250"))

	assert.Empty(t, env.repo.expenses)
	assert.Equal(t, "Choose an action:", env.telegram.last())
}
