package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
)

var _ repository.SettingsRepository = (*settingsRepo)(nil)

type settingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *settingsRepo {
	return &settingsRepo{pool: pool}
}

func (r *settingsRepo) Save(ctx context.Context, tx repository.Tx, s *model.UserSettings) error {
	const q = `
INSERT INTO user_settings (user_id, reminders_enabled, reminder_days_before)
VALUES ($1,$2,$3)
ON CONFLICT (user_id) DO UPDATE SET
  reminders_enabled=$2, reminder_days_before=$3;`
	_, err := execSQL(ctx, r.pool, tx, q, s.UserID, s.RemindersEnabled, s.ReminderDaysBefore)
	return mapErr("settings_save", err)
}

func (r *settingsRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserSettings, error) {
	const q = `
SELECT user_id, reminders_enabled, reminder_days_before
  FROM user_settings WHERE user_id=$1;`
	var s model.UserSettings
	if err := pickRow(ctx, r.pool, tx, q, userID).Scan(&s.UserID, &s.RemindersEnabled, &s.ReminderDaysBefore); err != nil {
		return nil, mapErr("settings_find", err)
	}
	return &s, nil
}
