package repository

import (
	"context"
	"time"

	"telegram-subscription-tracker/internal/domain/model"
)

// SubscriptionRepository is the port for tracked recurring payments.
type SubscriptionRepository interface {
	// Save inserts a record when its ID is zero and updates it otherwise.
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Subscription, error)
	DeleteByID(ctx context.Context, tx Tx, id int64) error

	CountByUser(ctx context.Context, tx Tx, userID string) (int, error)
	// ListByUser returns one page of a user's records in the given order,
	// ties broken by id.
	ListByUser(ctx context.Context, tx Tx, userID string, page, size int, view model.ListView) ([]*model.Subscription, error)

	// FindDueOn returns records of users with reminders on whose payment date
	// equals day plus their reminder lead time.
	FindDueOn(ctx context.Context, tx Tx, day time.Time) ([]*DueSubscription, error)
	// FindPaymentDateBefore returns records whose payment date is before day.
	FindPaymentDateBefore(ctx context.Context, tx Tx, day time.Time) ([]*model.Subscription, error)
}

// DueSubscription pairs a record with the chat it should be announced to.
type DueSubscription struct {
	Subscription *model.Subscription
	TelegramID   int64
	DaysBefore   int
}
