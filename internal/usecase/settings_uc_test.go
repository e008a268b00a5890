//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	"telegram-subscription-tracker/internal/usecase"
)

func TestSettingsUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("Get returns defaults for a user without a row", func(t *testing.T) {
		uc := usecase.NewSettingsUseCase(NewMockSettingsRepo(), NewMockTxManager(), newTestLogger())

		s, err := uc.Get(ctx, "user-1")

		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if *s != *model.DefaultSettings("user-1") {
			t.Errorf("expected defaults, got %+v", s)
		}
	})

	t.Run("ToggleReminders flips and persists", func(t *testing.T) {
		// --- Arrange ---
		repo := NewMockSettingsRepo()
		uc := usecase.NewSettingsUseCase(repo, NewMockTxManager(), newTestLogger())

		// --- Act ---
		s, err := uc.ToggleReminders(ctx, "user-1")

		// --- Assert ---
		if err != nil {
			t.Fatalf("ToggleReminders failed: %v", err)
		}
		if s.RemindersEnabled {
			t.Error("expected reminders to be switched off")
		}
		stored, _ := repo.FindByUserID(ctx, repository.NoTX, "user-1")
		if stored == nil || stored.RemindersEnabled {
			t.Errorf("expected the toggle to be stored, got %+v", stored)
		}
	})

	t.Run("SetReminderDays stores an offered value", func(t *testing.T) {
		repo := NewMockSettingsRepo()
		uc := usecase.NewSettingsUseCase(repo, NewMockTxManager(), newTestLogger())

		s, err := uc.SetReminderDays(ctx, "user-1", 7)

		if err != nil {
			t.Fatalf("SetReminderDays failed: %v", err)
		}
		if s.ReminderDaysBefore != 7 || !s.RemindersEnabled {
			t.Errorf("unexpected settings %+v", s)
		}
	})

	t.Run("SetReminderDays rejects values outside the menu", func(t *testing.T) {
		repo := NewMockSettingsRepo()
		repo.SaveFunc = func(ctx context.Context, tx repository.Tx, s *model.UserSettings) error {
			t.Error("expected no save for an invalid value")
			return nil
		}
		uc := usecase.NewSettingsUseCase(repo, NewMockTxManager(), newTestLogger())

		_, err := uc.SetReminderDays(ctx, "user-1", 5)

		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
