package sched

import (
	"time"

	"telegram-subscription-tracker/internal/domain/model"
)

// Clock yields the current calendar day in the bot's timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc, now: time.Now}
}

// Today is midnight UTC of the local calendar date, the form stored dates use.
func (c Clock) Today() time.Time {
	now := c.now
	if now == nil {
		now = time.Now
	}
	loc := c.loc
	if loc == nil {
		loc = time.UTC
	}
	return model.DateOf(now().In(loc))
}
