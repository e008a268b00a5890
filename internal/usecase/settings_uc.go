package usecase

import (
	"context"
	"errors"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	"telegram-subscription-tracker/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SettingsUseCase = (*settingsUC)(nil)

// SettingsUseCase reads and changes reminder preferences. Users without a
// stored row get model.DefaultSettings.
type SettingsUseCase interface {
	Get(ctx context.Context, userID string) (*model.UserSettings, error)
	ToggleReminders(ctx context.Context, userID string) (*model.UserSettings, error)
	SetReminderDays(ctx context.Context, userID string, days int) (*model.UserSettings, error)
}

type settingsUC struct {
	settings repository.SettingsRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewSettingsUseCase(settings repository.SettingsRepository, tm repository.TransactionManager, logger *zerolog.Logger) *settingsUC {
	return &settingsUC{settings: settings, tm: tm, log: logger}
}

func (uc *settingsUC) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	defer logging.TraceDuration(uc.log, "SettingsUC.Get")()
	return uc.load(ctx, repository.NoTX, userID)
}

func (uc *settingsUC) load(ctx context.Context, tx repository.Tx, userID string) (*model.UserSettings, error) {
	s, err := uc.settings.FindByUserID(ctx, tx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return model.DefaultSettings(userID), nil
	}
	return s, err
}

func (uc *settingsUC) ToggleReminders(ctx context.Context, userID string) (*model.UserSettings, error) {
	defer logging.TraceDuration(uc.log, "SettingsUC.ToggleReminders")()
	return uc.update(ctx, userID, func(s *model.UserSettings) {
		s.RemindersEnabled = !s.RemindersEnabled
	})
}

func (uc *settingsUC) SetReminderDays(ctx context.Context, userID string, days int) (*model.UserSettings, error) {
	defer logging.TraceDuration(uc.log, "SettingsUC.SetReminderDays")()
	if !model.IsValidReminderDays(days) {
		return nil, domain.ErrInvalidArgument
	}
	return uc.update(ctx, userID, func(s *model.UserSettings) {
		s.ReminderDaysBefore = days
	})
}

func (uc *settingsUC) update(ctx context.Context, userID string, mutate func(*model.UserSettings)) (*model.UserSettings, error) {
	var out *model.UserSettings
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		s, err := uc.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		mutate(s)
		if err := uc.settings.Save(ctx, tx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
