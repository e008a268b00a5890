package dialogue

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"telegram-subscription-tracker/internal/domain/model"
)

// Message keys of input validation failures.
const (
	ErrKeyName          = "error.format.name"
	ErrKeyPrice         = "error.format.price"
	ErrKeyPriceNegative = "error.price.negative"
	ErrKeyDate          = "error.format.date"
	ErrKeyDateInPast    = "error.date.in_past"
	ErrKeyMonths        = "error.format.months"
	ErrKeyCategory      = "error.format.category"
)

const (
	maxNameLen     = 100
	maxCategoryLen = 64
	maxMonths      = 120
)

// ValidationError rejects user input. The dispatcher shows the message for Key.
type ValidationError struct {
	Key   string
	Input string
}

func (e *ValidationError) Error() string      { return "invalid input: " + e.Key }
func (e *ValidationError) MessageKey() string { return e.Key }

func invalid(key, input string) error { return &ValidationError{Key: key, Input: input} }

func ParseName(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" || utf8.RuneCountInString(s) > maxNameLen {
		return "", invalid(ErrKeyName, raw)
	}
	return s, nil
}

func ParseCategory(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" || utf8.RuneCountInString(s) > maxCategoryLen {
		return "", invalid(ErrKeyCategory, raw)
	}
	return s, nil
}

var priceRe = regexp.MustCompile(`^(-?)(\d{1,12})(?:[.,](\d{1,2}))?$`)

// ParsePrice reads "199", "199.9" or "199,90" into minor units.
func ParsePrice(raw string) (int64, error) {
	m := priceRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, invalid(ErrKeyPrice, raw)
	}
	whole, _ := strconv.ParseInt(m[2], 10, 64)
	var frac int64
	if m[3] != "" {
		f := m[3]
		if len(f) == 1 {
			f += "0"
		}
		frac, _ = strconv.ParseInt(f, 10, 64)
	}
	minor := whole*100 + frac
	if m[1] == "-" && minor != 0 {
		return 0, invalid(ErrKeyPriceNegative, raw)
	}
	return minor, nil
}

// ParseDate reads dd.mm.yyyy and rejects days before today.
func ParseDate(raw string, today time.Time) (time.Time, error) {
	d, err := time.Parse(model.DisplayDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalid(ErrKeyDate, raw)
	}
	if d.Before(model.DateOf(today)) {
		return time.Time{}, invalid(ErrKeyDateInPast, raw)
	}
	return d, nil
}

// ParsePeriod reads a renewal period in whole months.
func ParsePeriod(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > maxMonths {
		return 0, invalid(ErrKeyMonths, raw)
	}
	return n, nil
}
