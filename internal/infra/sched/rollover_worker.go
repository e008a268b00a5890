package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-subscription-tracker/internal/domain/ports/usecase"
)

// RolloverWorker periodically moves past payment dates to their next renewal.
type RolloverWorker struct {
	interval time.Duration
	reminder usecase.ReminderManager
	clock    Clock
	log      *zerolog.Logger
}

func NewRolloverWorker(interval time.Duration, reminder usecase.ReminderManager, clock Clock, logger *zerolog.Logger) *RolloverWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	rollLog := logger.With().Str("component", "RolloverWorker").Logger()
	return &RolloverWorker{
		interval: interval,
		reminder: reminder,
		clock:    clock,
		log:      &rollLog,
	}
}

// Run rolls over once on startup so a restart after midnight catches up.
func (w *RolloverWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting rollover worker")
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping rollover worker")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *RolloverWorker) RunOnce(ctx context.Context) int {
	n, err := w.reminder.RollOverPastPayments(ctx, w.clock.Today())
	if err != nil {
		w.log.Error().Err(err).Msg("rollover worker error")
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("past payment dates rolled over")
	}
	return n
}
