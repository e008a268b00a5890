package repository

import (
	"context"

	"telegram-subscription-tracker/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}

// -----------------------------
// Settings
// -----------------------------

type SettingsRepository interface {
	// Save upserts the settings row of a user.
	Save(ctx context.Context, tx Tx, s *model.UserSettings) error
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.UserSettings, error)
}
