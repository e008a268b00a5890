package usecase

import (
	"context"
	"time"
)

// ReminderManager is what the background workers need from the reminder use case.
type ReminderManager interface {
	// SendDueReminders announces every record due for a reminder on day and
	// returns how many messages were delivered.
	SendDueReminders(ctx context.Context, day time.Time) (int, error)
	// RollOverPastPayments advances records whose payment date is before day
	// and returns how many were moved.
	RollOverPastPayments(ctx context.Context, day time.Time) (int, error)
}
