package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/infra/logging"
	"telegram-subscription-tracker/internal/infra/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Registry names, used in logs and metrics.
const (
	RegistryCallback = "callback"
	RegistryCommand  = "command"
	RegistryStep     = "step"
	registryNone     = "none"
)

// Locker serializes events of one user.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// StateReader is the part of the SessionStore the dispatcher needs.
type StateReader interface {
	GetState(ctx context.Context, tgID int64) (model.DialogueState, bool, error)
}

// Translator renders user-facing texts by key.
type Translator interface {
	T(key string, args ...interface{}) string
}

// UserError is an error whose message is meant for the user.
type UserError interface {
	error
	MessageKey() string
}

// Message keys the dispatcher renders itself.
const (
	MsgBusy         = "session.busy"
	MsgUnsupported  = "session.unsupported_action"
	MsgUnexpected   = "session.unexpected_error"
	MsgUnrecognized = "session.unrecognized"
)

type Dispatcher struct {
	callbacks *Registry[string]
	commands  *Registry[string]
	steps     *Registry[model.DialogueState]

	states  StateReader
	locker  Locker
	lockTTL time.Duration
	t       Translator
	log     *zerolog.Logger

	// Unrecognized answers text that no command or step claims.
	Unrecognized HandlerFunc
}

func NewDispatcher(
	callbacks, commands *Registry[string],
	steps *Registry[model.DialogueState],
	states StateReader,
	locker Locker,
	lockTTL time.Duration,
	t Translator,
	logger *zerolog.Logger,
) *Dispatcher {
	l := logger.With().Str("component", "Dispatcher").Logger()
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &Dispatcher{
		callbacks: callbacks,
		commands:  commands,
		steps:     steps,
		states:    states,
		locker:    locker,
		lockTTL:   lockTTL,
		t:         t,
		log:       &l,
	}
}

func lockKey(tgID int64) string {
	return "lock:session:" + strconv.FormatInt(tgID, 10)
}

// Dispatch routes ev to exactly one handler and always returns something to show.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Response {
	start := time.Now()
	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	ctx = logging.WithTgID(logging.WithEventID(ctx, ev.ID), ev.UserID)
	log := logging.With(ctx, d.log)

	key := lockKey(ev.UserID)
	token, err := d.locker.TryLock(ctx, key, d.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotAcquired) {
			metrics.IncLockContention()
			metrics.ObserveDispatch(registryNone, "", "busy", time.Since(start))
			log.Debug().Msg("session busy")
			return Notice(d.t.T(MsgBusy))
		}
		log.Error().Err(err).Msg("session lock failed")
		metrics.ObserveDispatch(registryNone, "", "error", time.Since(start))
		return Notice(d.t.T(MsgUnexpected))
	}
	defer func() {
		// the request context may already be cancelled
		if err := d.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			log.Warn().Err(err).Msg("session unlock failed")
		}
	}()

	registry, name, handle := d.route(ctx, ev, log)
	if handle == nil {
		metrics.ObserveDispatch(registry, "", "unmatched", time.Since(start))
		log.Debug().Str("registry", registry).Str("kind", ev.Kind.String()).Msg("no handler")
		if ev.IsCallback() {
			return Notice(d.t.T(MsgUnsupported))
		}
		if d.Unrecognized != nil {
			if resp, err := d.Unrecognized(ctx, ev); err == nil {
				return resp
			}
		}
		return Notice(d.t.T(MsgUnrecognized))
	}

	resp, err := handle(ctx, ev)
	outcome := "ok"
	if err != nil {
		resp, outcome = d.convert(err, registry, name, log)
	}
	metrics.ObserveDispatch(registry, name, outcome, time.Since(start))
	log.Debug().Str("registry", registry).Str("handler", name).Str("outcome", outcome).
		Dur("elapsed", time.Since(start)).Msg("dispatched")
	return resp
}

// route applies callback, then command, then step precedence.
func (d *Dispatcher) route(ctx context.Context, ev Event, log *zerolog.Logger) (string, string, HandlerFunc) {
	if ev.IsCallback() {
		if e, ok := d.callbacks.Lookup(ev.Data); ok {
			return RegistryCallback, e.Name, e.Handle
		}
		return RegistryCallback, "", nil
	}
	if e, ok := d.commands.Lookup(ev.Text); ok {
		return RegistryCommand, e.Name, e.Handle
	}
	st, found, err := d.states.GetState(ctx, ev.UserID)
	if err != nil {
		log.Error().Err(err).Msg("read dialogue state")
		return RegistryStep, "state_error", func(context.Context, Event) (Response, error) {
			return Response{}, err
		}
	}
	if found {
		if e, ok := d.steps.Lookup(st); ok {
			return RegistryStep, e.Name, e.Handle
		}
	}
	return RegistryStep, "", nil
}

func (d *Dispatcher) convert(err error, registry, name string, log *zerolog.Logger) (Response, string) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		log.Debug().Err(err).Str("registry", registry).Str("handler", name).Msg("malformed token")
		return Notice(d.t.T(MsgUnsupported)), "token_error"
	}
	var userErr UserError
	if errors.As(err, &userErr) {
		return Notice(d.t.T(userErr.MessageKey())), "user_error"
	}
	log.Error().Err(err).Str("registry", registry).Str("handler", name).Msg("handler failed")
	return Notice(d.t.T(MsgUnexpected)), "error"
}
