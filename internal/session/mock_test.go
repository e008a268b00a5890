//go:build !integration

package session

import (
	"context"
	"fmt"
	"time"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/adapter"
)

// keyTranslator echoes message keys so tests can assert on them.
type keyTranslator struct{}

func (keyTranslator) T(key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	return key + fmt.Sprint(args...)
}

type mockLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
	UnlockFunc  func(ctx context.Context, key, token string) error
	locked      []string
	unlocked    []string
}

func (m *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.locked = append(m.locked, key)
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	return "token", nil
}

func (m *mockLocker) Unlock(ctx context.Context, key, token string) error {
	m.unlocked = append(m.unlocked, key)
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, key, token)
	}
	return nil
}

type mockStates struct {
	GetStateFunc func(ctx context.Context, tgID int64) (model.DialogueState, bool, error)
}

func (m *mockStates) GetState(ctx context.Context, tgID int64) (model.DialogueState, bool, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc(ctx, tgID)
	}
	return model.StateIdle, false, nil
}

// recordingMessenger logs every call as a short string.
type recordingMessenger struct {
	calls []string
	err   error
}

func (m *recordingMessenger) SendMessage(ctx context.Context, chatID int64, text string, kb adapter.Keyboard) (int, error) {
	m.calls = append(m.calls, "send:"+text)
	return 100, m.err
}

func (m *recordingMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb adapter.Keyboard) error {
	m.calls = append(m.calls, fmt.Sprintf("edit:%d:%s", messageID, text))
	return m.err
}

func (m *recordingMessenger) EditKeyboard(ctx context.Context, chatID int64, messageID int, kb adapter.Keyboard) error {
	m.calls = append(m.calls, fmt.Sprintf("markup:%d", messageID))
	return m.err
}

func (m *recordingMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	m.calls = append(m.calls, fmt.Sprintf("delete:%d", messageID))
	return m.err
}

func (m *recordingMessenger) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	m.calls = append(m.calls, fmt.Sprintf("answer:%s:%v", text, alert))
	return m.err
}
