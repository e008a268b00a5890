//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/adapter"
	"telegram-subscription-tracker/internal/domain/ports/repository"
)

// =============================
// Adapters
// =============================

// ---- Mock Messenger ----

type sentMessage struct {
	ChatID int64
	Text   string
}

type MockMessenger struct {
	mu   sync.Mutex
	Sent []sentMessage

	// FailChats makes SendMessage to a chat return the mapped error.
	FailChats map[int64]error
}

var _ adapter.Messenger = (*MockMessenger)(nil)

func (m *MockMessenger) SendMessage(ctx context.Context, chatID int64, text string, kb adapter.Keyboard) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailChats[chatID]; err != nil {
		return 0, err
	}
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text})
	return len(m.Sent), nil
}

func (m *MockMessenger) EditMessage(context.Context, int64, int, string, adapter.Keyboard) error {
	return nil
}

func (m *MockMessenger) EditKeyboard(context.Context, int64, int, adapter.Keyboard) error {
	return nil
}

func (m *MockMessenger) DeleteMessage(context.Context, int64, int) error { return nil }

func (m *MockMessenger) AnswerCallback(context.Context, string, string, bool) error { return nil }

func (m *MockMessenger) sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.Sent...)
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User
	byTG map[int64]*model.User

	SaveFunc             func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByTelegramIDFunc func(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error)

	findCalls int
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}, byTG: map[int64]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.byID[cp.ID] = &cp
	r.byTG[cp.TelegramID] = &cp
	return nil
}

func (r *MockUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	r.mu.Lock()
	r.findCalls++
	r.mu.Unlock()
	if r.FindByTelegramIDFunc != nil {
		return r.FindByTelegramIDFunc(ctx, tx, tgID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byTG[tgID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

// ---- Mock SettingsRepository ----

type MockSettingsRepo struct {
	mu     sync.Mutex
	byUser map[string]*model.UserSettings

	SaveFunc func(ctx context.Context, tx repository.Tx, s *model.UserSettings) error
}

var _ repository.SettingsRepository = (*MockSettingsRepo)(nil)

func NewMockSettingsRepo() *MockSettingsRepo {
	return &MockSettingsRepo{byUser: map[string]*model.UserSettings{}}
}

func (r *MockSettingsRepo) Save(ctx context.Context, tx repository.Tx, s *model.UserSettings) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.byUser[s.UserID] = &cp
	return nil
}

func (r *MockSettingsRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byUser[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.Subscription

	FindDueOnFunc  func(ctx context.Context, tx repository.Tx, day time.Time) ([]*repository.DueSubscription, error)
	DeleteByIDFunc func(ctx context.Context, tx repository.Tx, id int64) error

	listCalls []listCall
}

type listCall struct {
	UserID     string
	Page, Size int
	View       model.ListView
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{byID: map[int64]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) seed(subs ...*model.Subscription) {
	for _, s := range subs {
		_ = r.Save(context.Background(), repository.NoTX, s)
	}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == 0 {
		r.nextID++
		s.ID = r.nextID
	} else if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) DeleteByID(ctx context.Context, tx repository.Tx, id int64) error {
	if r.DeleteByIDFunc != nil {
		return r.DeleteByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MockSubscriptionRepo) owned(userID string) []*model.Subscription {
	var out []*model.Subscription
	for _, s := range r.byID {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MockSubscriptionRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owned(userID)), nil
}

func (r *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, page, size int, view model.ListView) ([]*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls = append(r.listCalls, listCall{UserID: userID, Page: page, Size: size, View: view})
	all := r.owned(userID)
	from := page * size
	if from >= len(all) {
		return nil, nil
	}
	to := from + size
	if to > len(all) {
		to = len(all)
	}
	return all[from:to], nil
}

func (r *MockSubscriptionRepo) FindDueOn(ctx context.Context, tx repository.Tx, day time.Time) ([]*repository.DueSubscription, error) {
	if r.FindDueOnFunc != nil {
		return r.FindDueOnFunc(ctx, tx, day)
	}
	return nil, nil
}

func (r *MockSubscriptionRepo) FindPaymentDateBefore(ctx context.Context, tx repository.Tx, day time.Time) ([]*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Subscription
	for _, s := range r.byID {
		if s.PaymentDate.Before(day) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// =============================
// Infra helpers for tests
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	calls      int
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn with NoTX unless WithTxFunc overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.calls++
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// keyTranslator renders "key:arg1|arg2".
type keyTranslator struct{}

func (keyTranslator) T(key string, args ...interface{}) string {
	out := key
	for i, a := range args {
		sep := "|"
		if i == 0 {
			sep = ":"
		}
		out += sep + fmt.Sprint(a)
	}
	return out
}
