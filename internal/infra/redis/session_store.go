package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	"telegram-subscription-tracker/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps dialogue state, draft context and list context per user.
type SessionStore struct {
	client RedisClient
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewSessionStore(client RedisClient, ttl time.Duration, logger *zerolog.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	l := logger.With().Str("component", "SessionStore").Logger()
	return &SessionStore{client: client, ttl: ttl, log: &l}
}

func stateKey(tgID int64) string       { return fmt.Sprintf("state:%d", tgID) }
func contextKey(tgID int64) string     { return fmt.Sprintf("context:%d", tgID) }
func listContextKey(tgID int64) string { return fmt.Sprintf("list_context:%d", tgID) }

func (s *SessionStore) SetState(ctx context.Context, tgID int64, state model.DialogueState) error {
	if state == model.StateIdle {
		return s.ClearState(ctx, tgID)
	}
	return s.put(ctx, "set_state", stateKey(tgID), string(state))
}

func (s *SessionStore) GetState(ctx context.Context, tgID int64) (model.DialogueState, bool, error) {
	raw, ok, err := s.fetch(ctx, "get_state", stateKey(tgID))
	if err != nil || !ok {
		return model.StateIdle, false, err
	}
	st, known := model.ParseDialogueState(raw)
	if !known {
		s.corrupt("get_state", tgID, fmt.Errorf("unknown state %q", raw))
		return model.StateIdle, false, nil
	}
	return st, true, nil
}

func (s *SessionStore) ClearState(ctx context.Context, tgID int64) error {
	return s.remove(ctx, "clear_state", stateKey(tgID))
}

func (s *SessionStore) SetContext(ctx context.Context, tgID int64, c model.DialogueContext) error {
	data, err := model.MarshalContext(c)
	if err != nil {
		return fmt.Errorf("encode dialogue context: %w", err)
	}
	return s.put(ctx, "set_context", contextKey(tgID), data)
}

func (s *SessionStore) GetContext(ctx context.Context, tgID int64) (model.DialogueContext, bool, error) {
	raw, ok, err := s.fetch(ctx, "get_context", contextKey(tgID))
	if err != nil || !ok {
		return model.DialogueContext{}, false, err
	}
	c, err := model.UnmarshalContext([]byte(raw))
	if err != nil {
		s.corrupt("get_context", tgID, err)
		return model.DialogueContext{}, false, nil
	}
	return c, true, nil
}

func (s *SessionStore) ClearContext(ctx context.Context, tgID int64) error {
	return s.remove(ctx, "clear_context", contextKey(tgID))
}

func (s *SessionStore) SetListContext(ctx context.Context, tgID int64, v model.ListView) error {
	data, err := model.MarshalContext(model.ListViewContext(v))
	if err != nil {
		return fmt.Errorf("encode list context: %w", err)
	}
	return s.put(ctx, "set_list_context", listContextKey(tgID), data)
}

func (s *SessionStore) GetListContext(ctx context.Context, tgID int64) (model.ListView, bool, error) {
	raw, ok, err := s.fetch(ctx, "get_list_context", listContextKey(tgID))
	if err != nil || !ok {
		return model.ListView{}, false, err
	}
	c, err := model.UnmarshalContext([]byte(raw))
	if err == nil {
		if v, isList := c.AsListView(); isList {
			return v, true, nil
		}
		err = model.ErrContextMismatch
	}
	s.corrupt("get_list_context", tgID, err)
	return model.ListView{}, false, nil
}

func (s *SessionStore) ClearListContext(ctx context.Context, tgID int64) error {
	return s.remove(ctx, "clear_list_context", listContextKey(tgID))
}

// EndDialogue clears state, then context, then list context. Missing keys are fine.
func (s *SessionStore) EndDialogue(ctx context.Context, tgID int64) error {
	if err := s.ClearState(ctx, tgID); err != nil {
		return err
	}
	if err := s.ClearContext(ctx, tgID); err != nil {
		return err
	}
	return s.ClearListContext(ctx, tgID)
}

func (s *SessionStore) put(ctx context.Context, op, key string, value interface{}) error {
	if err := s.client.Set(ctx, key, value, s.ttl); err != nil {
		metrics.IncSessionStoreOp(op, "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.IncSessionStoreOp(op, "ok")
	return nil
}

func (s *SessionStore) fetch(ctx context.Context, op, key string) (string, bool, error) {
	raw, err := s.client.Get(ctx, key)
	if errors.Is(err, ErrNil) {
		metrics.IncSessionStoreOp(op, "miss")
		return "", false, nil
	}
	if err != nil {
		metrics.IncSessionStoreOp(op, "error")
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	metrics.IncSessionStoreOp(op, "ok")
	return raw, true, nil
}

func (s *SessionStore) remove(ctx context.Context, op, key string) error {
	if err := s.client.Del(ctx, key); err != nil {
		metrics.IncSessionStoreOp(op, "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.IncSessionStoreOp(op, "ok")
	return nil
}

func (s *SessionStore) corrupt(op string, tgID int64, err error) {
	metrics.IncSessionStoreOp(op, "corrupt")
	s.log.Warn().Err(err).Int64("tg_id", tgID).Str("op", op).Msg("discarding undecodable session value")
}
