//go:build !integration

package sched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type mockReminderManager struct {
	mu       sync.Mutex
	sentDays []time.Time
	rollDays []time.Time

	SendDueRemindersFunc     func(ctx context.Context, day time.Time) (int, error)
	RollOverPastPaymentsFunc func(ctx context.Context, day time.Time) (int, error)
}

func (m *mockReminderManager) SendDueReminders(ctx context.Context, day time.Time) (int, error) {
	m.mu.Lock()
	m.sentDays = append(m.sentDays, day)
	m.mu.Unlock()
	if m.SendDueRemindersFunc != nil {
		return m.SendDueRemindersFunc(ctx, day)
	}
	return 0, nil
}

func (m *mockReminderManager) RollOverPastPayments(ctx context.Context, day time.Time) (int, error) {
	m.mu.Lock()
	m.rollDays = append(m.rollDays, day)
	m.mu.Unlock()
	if m.RollOverPastPaymentsFunc != nil {
		return m.RollOverPastPaymentsFunc(ctx, day)
	}
	return 0, nil
}

func (m *mockReminderManager) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sentDays), len(m.rollDays)
}

func newLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func fixedClock(loc *time.Location, at time.Time) Clock {
	return Clock{loc: loc, now: func() time.Time { return at }}
}

func TestClock_TodayUsesTheConfiguredZone(t *testing.T) {
	// 2024-03-14 22:30 UTC is already March 15 in UTC+3.
	at := time.Date(2024, 3, 14, 22, 30, 0, 0, time.UTC)

	utc := fixedClock(time.UTC, at).Today()
	east := fixedClock(time.FixedZone("UTC+3", 3*3600), at).Today()

	if !utc.Equal(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected UTC day %v", utc)
	}
	if !east.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected UTC+3 day %v", east)
	}
	if (Clock{}).Today().IsZero() {
		t.Error("zero Clock should fall back to time.Now in UTC")
	}
}

func TestReminderWorker_RunOnce(t *testing.T) {
	// --- Arrange ---
	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	m := &mockReminderManager{
		SendDueRemindersFunc: func(ctx context.Context, day time.Time) (int, error) { return 3, nil },
	}
	w := NewReminderWorker(time.Hour, m, fixedClock(time.UTC, at), newLogger())

	// --- Act ---
	sent := w.RunOnce(context.Background())

	// --- Assert ---
	if sent != 3 {
		t.Errorf("expected 3 sent, got %d", sent)
	}
	if len(m.sentDays) != 1 || !m.sentDays[0].Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected days %v", m.sentDays)
	}
}

func TestReminderWorker_ErrorDoesNotStopTheLoop(t *testing.T) {
	// --- Arrange ---
	m := &mockReminderManager{
		SendDueRemindersFunc: func(ctx context.Context, day time.Time) (int, error) {
			return 0, errors.New("db down")
		},
	}
	w := NewReminderWorker(5*time.Millisecond, m, NewClock(time.UTC), newLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	// --- Act ---
	err := w.Run(ctx)

	// --- Assert ---
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if sent, _ := m.calls(); sent < 2 {
		t.Errorf("expected the check to repeat after a failure, got %d calls", sent)
	}
}

func TestRolloverWorker_RunsOnStartup(t *testing.T) {
	// --- Arrange ---
	at := time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)
	m := &mockReminderManager{
		RollOverPastPaymentsFunc: func(ctx context.Context, day time.Time) (int, error) { return 2, nil },
	}
	w := NewRolloverWorker(time.Hour, m, fixedClock(time.FixedZone("UTC+2", 2*3600), at), newLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// --- Act ---
	err := w.Run(ctx)

	// --- Assert ---
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, rolled := m.calls(); rolled != 1 {
		t.Fatalf("expected one startup run, got %d", rolled)
	}
	if !m.rollDays[0].Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected day %v", m.rollDays[0])
	}
}

func TestNewWorkers_DefaultInterval(t *testing.T) {
	m := &mockReminderManager{}
	if w := NewReminderWorker(0, m, Clock{}, newLogger()); w.interval != 24*time.Hour {
		t.Errorf("unexpected reminder interval %v", w.interval)
	}
	if w := NewRolloverWorker(-time.Second, m, Clock{}, newLogger()); w.interval != 24*time.Hour {
		t.Errorf("unexpected rollover interval %v", w.interval)
	}
}
