//go:build !integration

package dialogue

import (
	"context"
	"fmt"
	"time"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/session"

	"github.com/rs/zerolog"
)

type keyTranslator struct{}

func (keyTranslator) T(key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	return key + fmt.Sprint(args...)
}

// memStore is an in-memory SessionStore that counts writes.
type memStore struct {
	states      map[int64]model.DialogueState
	ctxs        map[int64]model.DialogueContext
	views       map[int64]model.ListView
	writes      int
	stateWrites int
	ends        int
}

func newMemStore() *memStore {
	return &memStore{
		states: map[int64]model.DialogueState{},
		ctxs:   map[int64]model.DialogueContext{},
		views:  map[int64]model.ListView{},
	}
}

func (m *memStore) SetState(_ context.Context, id int64, st model.DialogueState) error {
	m.writes++
	m.stateWrites++
	if st == model.StateIdle {
		delete(m.states, id)
		return nil
	}
	m.states[id] = st
	return nil
}

func (m *memStore) GetState(_ context.Context, id int64) (model.DialogueState, bool, error) {
	st, ok := m.states[id]
	return st, ok, nil
}

func (m *memStore) ClearState(_ context.Context, id int64) error {
	delete(m.states, id)
	return nil
}

func (m *memStore) SetContext(_ context.Context, id int64, c model.DialogueContext) error {
	m.writes++
	// store a copy so later mutation of the caller's draft is not visible
	if d, ok := c.AsDraft(); ok {
		c = model.DraftContext(*d)
	}
	m.ctxs[id] = c
	return nil
}

func (m *memStore) GetContext(_ context.Context, id int64) (model.DialogueContext, bool, error) {
	c, ok := m.ctxs[id]
	if !ok {
		return model.DialogueContext{}, false, nil
	}
	if d, ok := c.AsDraft(); ok {
		return model.DraftContext(*d), true, nil
	}
	return c, true, nil
}

func (m *memStore) ClearContext(_ context.Context, id int64) error {
	delete(m.ctxs, id)
	return nil
}

func (m *memStore) SetListContext(_ context.Context, id int64, v model.ListView) error {
	m.writes++
	m.views[id] = v
	return nil
}

func (m *memStore) GetListContext(_ context.Context, id int64) (model.ListView, bool, error) {
	v, ok := m.views[id]
	return v, ok, nil
}

func (m *memStore) ClearListContext(_ context.Context, id int64) error {
	delete(m.views, id)
	return nil
}

func (m *memStore) EndDialogue(ctx context.Context, id int64) error {
	m.ends++
	delete(m.states, id)
	delete(m.ctxs, id)
	delete(m.views, id)
	return nil
}

func (m *memStore) draft(id int64) *model.RecordDraft {
	c, ok := m.ctxs[id]
	if !ok {
		return nil
	}
	d, _ := c.AsDraft()
	return d
}

type mockSubs struct {
	PageFunc   func(ctx context.Context, ownerID string, page int, view model.ListView) (*model.Page, error)
	GetFunc    func(ctx context.Context, ownerID string, id int64) (*model.Subscription, error)
	SaveFunc   func(ctx context.Context, ownerID string, s *model.Subscription) error
	DeleteFunc func(ctx context.Context, ownerID string, id int64) error

	saved     []*model.Subscription
	pageCalls []int
	views     []model.ListView
}

func (m *mockSubs) Page(ctx context.Context, ownerID string, page int, view model.ListView) (*model.Page, error) {
	m.pageCalls = append(m.pageCalls, page)
	m.views = append(m.views, view)
	if m.PageFunc != nil {
		return m.PageFunc(ctx, ownerID, page, view)
	}
	return &model.Page{Number: 0, Size: 5, TotalPages: 1}, nil
}

func (m *mockSubs) Get(ctx context.Context, ownerID string, id int64) (*model.Subscription, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSubs) Save(ctx context.Context, ownerID string, s *model.Subscription) error {
	m.saved = append(m.saved, s)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, ownerID, s)
	}
	return nil
}

func (m *mockSubs) Delete(ctx context.Context, ownerID string, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, id)
	}
	return nil
}

type mockUsers struct{}

func (mockUsers) FindOrCreate(_ context.Context, tgID int64, firstName string) (*model.User, error) {
	return &model.User{ID: "user-1", TelegramID: tgID, FirstName: firstName}, nil
}

type mockSettings struct {
	current *model.UserSettings
}

func (m *mockSettings) Get(_ context.Context, userID string) (*model.UserSettings, error) {
	if m.current == nil {
		m.current = model.DefaultSettings(userID)
	}
	return m.current, nil
}

func (m *mockSettings) ToggleReminders(ctx context.Context, userID string) (*model.UserSettings, error) {
	s, _ := m.Get(ctx, userID)
	s.RemindersEnabled = !s.RemindersEnabled
	return s, nil
}

func (m *mockSettings) SetReminderDays(ctx context.Context, userID string, days int) (*model.UserSettings, error) {
	s, _ := m.Get(ctx, userID)
	s.ReminderDaysBefore = days
	return s, nil
}

const testUser int64 = 7

// fixedNow is 15 March 2024, noon UTC.
var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	h     *Handlers
	store *memStore
	subs  *mockSubs
}

func newHarness() *harness {
	l := zerolog.Nop()
	store := newMemStore()
	subs := &mockSubs{}
	h := New(store, subs, mockUsers{}, &mockSettings{}, session.NewMachine(), keyTranslator{},
		Options{Currency: "RUB", Now: func() time.Time { return fixedNow }}, &l)
	return &harness{h: h, store: store, subs: subs}
}

// withDraft puts the user mid-dialogue in st with draft d.
func (x *harness) withDraft(st model.DialogueState, d model.RecordDraft) {
	x.store.states[testUser] = st
	x.store.ctxs[testUser] = model.DraftContext(d)
}

func text(s string) session.Event {
	return session.Event{Kind: session.EventText, UserID: testUser, ChatID: testUser, MessageID: 50, Text: s}
}

func tap(data string) session.Event {
	return session.Event{Kind: session.EventCallback, UserID: testUser, ChatID: testUser, MessageID: 40, CallbackID: "cb", Data: data}
}

func completeDraft() model.RecordDraft {
	return model.RecordDraft{
		Subscription: model.Subscription{
			Name:          "Netflix",
			PriceMinor:    79900,
			PaymentDate:   time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			RenewalMonths: 1,
		},
		MessageID: 40,
	}
}
