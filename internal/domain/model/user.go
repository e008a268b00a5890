package model

import (
	"time"

	"telegram-subscription-tracker/internal/domain"

	"github.com/google/uuid"
)

// User is a Telegram user known to the tracker.
type User struct {
	ID           string
	TelegramID   int64
	FirstName    string
	RegisteredAt time.Time
}

func NewUser(id string, tgID int64, firstName string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		TelegramID:   tgID,
		FirstName:    firstName,
		RegisteredAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// Reminder lead times offered in the settings menu.
var ReminderDayOptions = []int{1, 3, 7}

// UserSettings controls payment reminders for one user.
type UserSettings struct {
	UserID             string
	RemindersEnabled   bool
	ReminderDaysBefore int
}

func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		RemindersEnabled:   true,
		ReminderDaysBefore: 3,
	}
}

// IsValidReminderDays reports whether n is one of the offered lead times.
func IsValidReminderDays(n int) bool {
	for _, d := range ReminderDayOptions {
		if d == n {
			return true
		}
	}
	return false
}
