package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-subscription-tracker/internal/domain/ports/usecase"
)

// ReminderWorker announces upcoming payments once per interval.
type ReminderWorker struct {
	interval time.Duration
	reminder usecase.ReminderManager
	clock    Clock
	log      *zerolog.Logger
}

func NewReminderWorker(interval time.Duration, reminder usecase.ReminderManager, clock Clock, logger *zerolog.Logger) *ReminderWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		interval: interval,
		reminder: reminder,
		clock:    clock,
		log:      &compLog,
	}
}

// Run checks once on startup, then on every tick until ctx is done.
func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting reminder worker")
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *ReminderWorker) RunOnce(ctx context.Context) int {
	day := w.clock.Today()
	sent, err := w.reminder.SendDueReminders(ctx, day)
	if err != nil {
		w.log.Error().Err(err).Time("day", day).Msg("reminder check failed")
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Time("day", day).Msg("payment reminders sent")
	}
	return sent
}
