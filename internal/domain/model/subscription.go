package model

import (
	"fmt"
	"strings"
	"time"

	"telegram-subscription-tracker/internal/domain"
)

// DefaultRenewalMonths is the period assigned to a record until the user picks another one.
const DefaultRenewalMonths = 1

// Subscription is a recurring payment tracked for one user.
// PriceMinor holds the amount in minor currency units (kopecks, cents).
type Subscription struct {
	ID            int64     `json:"id,omitempty"` // 0 until persisted
	UserID        string    `json:"user_id,omitempty"`
	Name          string    `json:"name"`
	PriceMinor    int64     `json:"price_minor"`
	PaymentDate   time.Time `json:"payment_date"`
	RenewalMonths int       `json:"renewal_months"`
	Category      string    `json:"category,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// NewSubscriptionDraft returns an empty record ready to be filled by the add dialogue.
func NewSubscriptionDraft() Subscription {
	return Subscription{RenewalMonths: DefaultRenewalMonths}
}

// IsNew reports whether the record has never been stored.
func (s *Subscription) IsNew() bool { return s == nil || s.ID == 0 }

// Validate checks the fields required before the record can be persisted.
func (s *Subscription) Validate() error {
	if s == nil || strings.TrimSpace(s.Name) == "" || s.UserID == "" {
		return domain.ErrInvalidArgument
	}
	if s.PriceMinor < 0 || s.RenewalMonths <= 0 || s.PaymentDate.IsZero() {
		return domain.ErrInvalidArgument
	}
	return nil
}

// RollForward moves PaymentDate forward by whole renewal periods until it is
// no longer before today. It reports whether the date changed.
func (s *Subscription) RollForward(today time.Time) bool {
	if s.RenewalMonths <= 0 || s.PaymentDate.IsZero() {
		return false
	}
	today = DateOf(today)
	changed := false
	for s.PaymentDate.Before(today) {
		s.PaymentDate = AddMonths(s.PaymentDate, s.RenewalMonths)
		changed = true
	}
	return changed
}

// FormatPrice renders minor units as "199" or "199.90".
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	if minor%100 == 0 {
		return fmt.Sprintf("%s%d", sign, minor/100)
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
