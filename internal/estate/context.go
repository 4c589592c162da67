package estate

import (
	"context"
	"time"
)

// Clock supplies the current time for defaults and deadlines
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Actor resolves the user performing the current operation.
// A nil id means no user is known.
type Actor interface {
	CurrentUserID(ctx context.Context) *uint
}

// StaticActor always resolves to the same user
type StaticActor struct {
	UserID *uint
}

func (a StaticActor) CurrentUserID(context.Context) *uint { return a.UserID }

// Defaults holds the values applied to new records
type Defaults struct {
	AvailabilityDays  int
	OfferValidityDays int
	Bedrooms          int
}

// DefaultSettings returns the stock listing defaults
func DefaultSettings() Defaults {
	return Defaults{
		AvailabilityDays:  90,
		OfferValidityDays: 7,
		Bedrooms:          2,
	}
}

// DateOf truncates t to its calendar day in UTC
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
