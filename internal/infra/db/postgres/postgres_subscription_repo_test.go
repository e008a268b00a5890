//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestSubscriptionRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	// 1. Setup repos and context
	ctx := context.Background()
	repo := NewSubscriptionRepo(testPool)
	userRepo := NewUserRepo(testPool)
	settingsRepo := NewSettingsRepo(testPool)

	user1, _ := model.NewUser("", 111, "user1")
	user2, _ := model.NewUser("", 222, "user2")

	setupPrerequisites := func(t *testing.T) {
		cleanup(t)
		if err := userRepo.Save(ctx, nil, user1); err != nil {
			t.Fatalf("failed to save user1: %v", err)
		}
		if err := userRepo.Save(ctx, nil, user2); err != nil {
			t.Fatalf("failed to save user2: %v", err)
		}
	}
	add := func(t *testing.T, owner *model.User, name string, price int64, pay time.Time, months int) *model.Subscription {
		t.Helper()
		s := &model.Subscription{UserID: owner.ID, Name: name, PriceMinor: price, PaymentDate: pay, RenewalMonths: months}
		if err := repo.Save(ctx, nil, s); err != nil {
			t.Fatalf("failed to save %s: %v", name, err)
		}
		return s
	}

	t.Run("should insert, update and delete a record", func(t *testing.T) {
		setupPrerequisites(t)

		s := add(t, user1, "Netflix", 79900, day(2024, 4, 1), 1)
		if s.ID == 0 || s.CreatedAt.IsZero() {
			t.Fatalf("expected id and created_at to be filled, got %+v", s)
		}

		s.Category = "video"
		s.PriceMinor = 99900
		if err := repo.Save(ctx, nil, s); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		got, err := repo.FindByID(ctx, nil, s.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.PriceMinor != 99900 || got.Category != "video" || !got.PaymentDate.Equal(day(2024, 4, 1)) {
			t.Errorf("unexpected record %+v", got)
		}

		if err := repo.DeleteByID(ctx, nil, s.ID); err != nil {
			t.Fatalf("DeleteByID failed: %v", err)
		}
		if err := repo.DeleteByID(ctx, nil, s.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
		ghost := &model.Subscription{ID: s.ID, UserID: user1.ID, Name: "x", PaymentDate: day(2024, 1, 1), RenewalMonths: 1}
		if err := repo.Save(ctx, nil, ghost); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound updating a deleted record, got %v", err)
		}
	})

	t.Run("should page in the requested order with id as tie breaker", func(t *testing.T) {
		setupPrerequisites(t)
		a := add(t, user1, "A", 500, day(2024, 5, 1), 1)
		b := add(t, user1, "B", 100, day(2024, 4, 1), 1)
		c := add(t, user1, "C", 500, day(2024, 4, 1), 1)
		add(t, user2, "other", 1, day(2024, 1, 1), 1)

		n, err := repo.CountByUser(ctx, nil, user1.ID)
		if err != nil || n != 3 {
			t.Fatalf("expected 3 records, got %d (err %v)", n, err)
		}

		byDate, err := repo.ListByUser(ctx, nil, user1.ID, 0, 2, model.DefaultListView())
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(byDate) != 2 || byDate[0].ID != b.ID || byDate[1].ID != c.ID {
			t.Errorf("unexpected date order %v", ids(byDate))
		}

		byPrice, err := repo.ListByUser(ctx, nil, user1.ID, 0, 5, model.ListView{SortField: model.SortByPrice, Direction: model.SortDesc})
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(byPrice) != 3 || byPrice[0].ID != a.ID || byPrice[1].ID != c.ID || byPrice[2].ID != b.ID {
			t.Errorf("unexpected price order %v", ids(byPrice))
		}

		last, _ := repo.ListByUser(ctx, nil, user1.ID, 1, 2, model.DefaultListView())
		if len(last) != 1 || last[0].ID != a.ID {
			t.Errorf("unexpected second page %v", ids(last))
		}
	})

	t.Run("should find records due for a reminder", func(t *testing.T) {
		setupPrerequisites(t)
		// user1 keeps defaults (3 days), user2 wants 7 days.
		s := model.DefaultSettings(user2.ID)
		s.ReminderDaysBefore = 7
		if err := settingsRepo.Save(ctx, nil, s); err != nil {
			t.Fatalf("save settings: %v", err)
		}
		due1 := add(t, user1, "in three days", 100, day(2024, 3, 18), 1)
		add(t, user1, "in seven days", 100, day(2024, 3, 22), 1)
		due2 := add(t, user2, "user2 in seven days", 100, day(2024, 3, 22), 1)

		got, err := repo.FindDueOn(ctx, nil, day(2024, 3, 15))
		if err != nil {
			t.Fatalf("FindDueOn failed: %v", err)
		}
		if len(got) != 2 || got[0].Subscription.ID != due1.ID || got[1].Subscription.ID != due2.ID {
			t.Fatalf("unexpected due records %+v", got)
		}
		if got[0].TelegramID != 111 || got[0].DaysBefore != 3 || got[1].TelegramID != 222 || got[1].DaysBefore != 7 {
			t.Errorf("unexpected recipients %+v %+v", got[0], got[1])
		}

		s.RemindersEnabled = false
		_ = settingsRepo.Save(ctx, nil, s)
		got, _ = repo.FindDueOn(ctx, nil, day(2024, 3, 15))
		if len(got) != 1 {
			t.Errorf("expected disabled reminders to be skipped, got %d", len(got))
		}
	})

	t.Run("should lock and return overdue records inside a transaction", func(t *testing.T) {
		setupPrerequisites(t)
		old := add(t, user1, "old", 100, day(2024, 3, 1), 1)
		add(t, user1, "today", 100, day(2024, 3, 15), 1)

		tm := NewTxManager(testPool)
		var got []*model.Subscription
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			var err error
			got, err = repo.FindPaymentDateBefore(ctx, tx, day(2024, 3, 15))
			return err
		})
		if err != nil {
			t.Fatalf("FindPaymentDateBefore failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != old.ID {
			t.Errorf("unexpected overdue records %v", ids(got))
		}
	})

	t.Run("should roll back when the callback fails", func(t *testing.T) {
		setupPrerequisites(t)
		tm := NewTxManager(testPool)
		boom := errors.New("boom")

		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			s := &model.Subscription{UserID: user1.ID, Name: "ghost", PriceMinor: 1, PaymentDate: day(2024, 1, 1), RenewalMonths: 1}
			if err := repo.Save(ctx, tx, s); err != nil {
				return err
			}
			return boom
		})

		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if n, _ := repo.CountByUser(ctx, nil, user1.ID); n != 0 {
			t.Errorf("expected the insert to be rolled back, found %d records", n)
		}
	})
}

func ids(subs []*model.Subscription) []int64 {
	out := make([]int64, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}
