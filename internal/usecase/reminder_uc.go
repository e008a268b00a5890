package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/adapter"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	ports "telegram-subscription-tracker/internal/domain/ports/usecase"
	"telegram-subscription-tracker/internal/infra/logging"
	"telegram-subscription-tracker/internal/infra/metrics"
	"telegram-subscription-tracker/internal/infra/worker"
	"telegram-subscription-tracker/internal/session"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ports.ReminderManager = (*reminderUC)(nil)

type reminderUC struct {
	subs     repository.SubscriptionRepository
	tm       repository.TransactionManager
	bot      adapter.Messenger
	pool     *worker.Pool
	t        session.Translator
	codec    session.Codec
	currency string
	log      *zerolog.Logger
}

func NewReminderUseCase(
	subs repository.SubscriptionRepository,
	tm repository.TransactionManager,
	bot adapter.Messenger,
	pool *worker.Pool,
	t session.Translator,
	currency string,
	logger *zerolog.Logger,
) *reminderUC {
	return &reminderUC{subs: subs, tm: tm, bot: bot, pool: pool, t: t, currency: currency, log: logger}
}

func (uc *reminderUC) text(s *model.Subscription) string {
	price := model.FormatPrice(s.PriceMinor)
	if uc.currency != "" {
		price += " " + uc.currency
	}
	return uc.t.T("reminder.due", s.Name, s.PaymentDate.Format(model.DisplayDateLayout), price, uc.codec.ViewLink(s.ID))
}

// SendDueReminders fans the reminders for day out over the worker pool and
// waits for every send to finish, or for ctx to end.
func (uc *reminderUC) SendDueReminders(ctx context.Context, day time.Time) (int, error) {
	defer logging.TraceDuration(uc.log, "ReminderUC.SendDueReminders")()

	due, err := uc.subs.FindDueOn(ctx, repository.NoTX, model.DateOf(day))
	if err != nil {
		return 0, fmt.Errorf("find due records: %w", err)
	}

	var (
		wg   sync.WaitGroup
		sent atomic.Int64
	)
	for _, d := range due {
		d := d
		wg.Add(1)
		task := func(ctx context.Context) error {
			defer wg.Done()
			if ctx.Err() != nil {
				metrics.IncReminder("dropped")
				return nil
			}
			if _, err := uc.bot.SendMessage(ctx, d.TelegramID, uc.text(d.Subscription), nil); err != nil {
				metrics.IncReminder("failed")
				uc.log.Warn().Err(err).Int64("tg_id", d.TelegramID).Int64("record_id", d.Subscription.ID).
					Msg("failed to send reminder")
				return nil
			}
			metrics.IncReminder("sent")
			sent.Add(1)
			return nil
		}
		if err := uc.pool.SubmitWait(ctx, task); err != nil {
			wg.Done()
			metrics.IncReminder("dropped")
			uc.log.Warn().Err(err).Int64("tg_id", d.TelegramID).Msg("failed to queue reminder")
		}
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return int(sent.Load()), ctx.Err()
}

// RollOverPastPayments moves every overdue payment date forward by whole
// renewal periods so it is no longer before day.
func (uc *reminderUC) RollOverPastPayments(ctx context.Context, day time.Time) (int, error) {
	defer logging.TraceDuration(uc.log, "ReminderUC.RollOverPastPayments")()

	today := model.DateOf(day)
	moved := 0
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		past, err := uc.subs.FindPaymentDateBefore(ctx, tx, today)
		if err != nil {
			return err
		}
		for _, s := range past {
			if !s.RollForward(today) {
				continue
			}
			if err := uc.subs.Save(ctx, tx, s); err != nil {
				return fmt.Errorf("roll over record %d: %w", s.ID, err)
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	metrics.IncSubscriptionsRolledOver(moved)
	return moved, nil
}
