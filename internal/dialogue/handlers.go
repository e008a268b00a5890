// Package dialogue holds the handlers behind every button, command and
// dialogue step of the subscription tracker.
package dialogue

import (
	"context"
	"errors"
	"time"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	"telegram-subscription-tracker/internal/session"

	"github.com/rs/zerolog"
)

// Subscriptions is the record use case as seen by the handlers.
// Every call is scoped to ownerID; foreign records read as domain.ErrNotFound.
type Subscriptions interface {
	Page(ctx context.Context, ownerID string, page int, view model.ListView) (*model.Page, error)
	Get(ctx context.Context, ownerID string, id int64) (*model.Subscription, error)
	Save(ctx context.Context, ownerID string, s *model.Subscription) error
	Delete(ctx context.Context, ownerID string, id int64) error
}

type Users interface {
	FindOrCreate(ctx context.Context, tgID int64, firstName string) (*model.User, error)
}

type Settings interface {
	Get(ctx context.Context, userID string) (*model.UserSettings, error)
	ToggleReminders(ctx context.Context, userID string) (*model.UserSettings, error)
	SetReminderDays(ctx context.Context, userID string, days int) (*model.UserSettings, error)
}

type Options struct {
	Currency string
	Location *time.Location
	Now      func() time.Time
}

// Handlers carries the dependencies shared by every handler.
type Handlers struct {
	store    repository.SessionStore
	subs     Subscriptions
	users    Users
	settings Settings
	machine  *session.Machine
	codec    session.Codec
	t        session.Translator
	calendar session.Calendar
	currency string
	loc      *time.Location
	now      func() time.Time
	log      *zerolog.Logger
}

func New(
	store repository.SessionStore,
	subs Subscriptions,
	users Users,
	settings Settings,
	machine *session.Machine,
	t session.Translator,
	opts Options,
	logger *zerolog.Logger,
) *Handlers {
	l := logger.With().Str("component", "Dialogue").Logger()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handlers{
		store:    store,
		subs:     subs,
		users:    users,
		settings: settings,
		machine:  machine,
		t:        t,
		calendar: session.Calendar{Labels: calendarLabels(t)},
		currency: opts.Currency,
		loc:      opts.Location,
		now:      opts.Now,
		log:      &l,
	}
}

// today is the current calendar day in the configured zone, as midnight UTC.
func (h *Handlers) today() time.Time {
	return model.DateOf(h.now().In(h.loc))
}

func (h *Handlers) owner(ctx context.Context, ev session.Event) (*model.User, error) {
	return h.users.FindOrCreate(ctx, ev.UserID, ev.FirstName)
}

func (h *Handlers) loadDraft(ctx context.Context, tgID int64) (*model.RecordDraft, bool, error) {
	c, found, err := h.store.GetContext(ctx, tgID)
	if err != nil || !found {
		return nil, false, err
	}
	d, ok := c.AsDraft()
	return d, ok, nil
}

func (h *Handlers) saveDraft(ctx context.Context, tgID int64, d *model.RecordDraft) error {
	return h.store.SetContext(ctx, tgID, model.DraftContext(*d))
}

// transition fires event from the stored state and stores the result. The
// state is written even when unchanged so its TTL follows the context's.
func (h *Handlers) transition(ctx context.Context, tgID int64, event string) (model.DialogueState, error) {
	from, _, err := h.store.GetState(ctx, tgID)
	if err != nil {
		return from, err
	}
	next, err := h.machine.Next(ctx, from, event)
	if err != nil {
		return from, err
	}
	return next, h.store.SetState(ctx, tgID, next)
}

// commit stores the draft and moves the dialogue on.
func (h *Handlers) commit(ctx context.Context, tgID int64, d *model.RecordDraft, event string) error {
	if err := h.saveDraft(ctx, tgID, d); err != nil {
		return err
	}
	_, err := h.transition(ctx, tgID, event)
	return err
}

// expired ends whatever is left of the dialogue and says so.
func (h *Handlers) expired(ctx context.Context, ev session.Event) (session.Response, error) {
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	text := h.t.T("dialogue.expired")
	if ev.IsCallback() {
		return session.Edit(ev.MessageID, text, h.mainMenu()), nil
	}
	return session.Send(text, h.mainMenu()), nil
}

// notFound answers a tap on a record that is gone or belongs to someone else.
func (h *Handlers) notFound(ctx context.Context, ev session.Event) (session.Response, error) {
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	return session.Alert(h.t.T("record.not_found")), nil
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }

func (h *Handlers) listView(ctx context.Context, tgID int64) (model.ListView, error) {
	v, found, err := h.store.GetListContext(ctx, tgID)
	if err != nil {
		return model.ListView{}, err
	}
	if !found {
		return model.DefaultListView(), nil
	}
	return v, nil
}
