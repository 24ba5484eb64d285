// Package calendar implements date arithmetic for recurring installment
// schedules. All dates are exchanged as canonical "YYYY-MM-DD" strings in a
// single operating timezone; arithmetic works on the year/month/day triple
// and never round-trips through a UTC instant, which near midnight would
// shift the calendar day by one.
package calendar

import (
	"fmt"
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
)

// DateFormat is the canonical representation of a calendar day.
const DateFormat = "2006-01-02"

// Frequency is the recurrence step of an installment schedule.
type Frequency string

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
)

// ParseFrequency validates a frequency token.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidFrequency, s)
	}
}

// ToCalendarString converts an absolute instant to the calendar day it falls
// on in the given timezone. The instant is viewed in loc and formatted
// directly; there is no intermediate ISO/UTC conversion.
func ToCalendarString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateFormat)
}

// Today returns the current calendar day in the given timezone.
func Today(loc *time.Location) string {
	return ToCalendarString(time.Now(), loc)
}

// Parse validates a canonical "YYYY-MM-DD" string and returns its
// year/month/day triple anchored at midnight UTC. The returned time is only
// a vehicle for arithmetic; callers must not treat it as an instant.
func Parse(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, dateStr)
	}
	return t, nil
}

// AddStep returns the next calendar date for the given frequency.
//
// Month-based steps use naive calendar-increment semantics: if the
// day-of-month exceeds the target month's length the date normalizes
// forward into the following month (Jan 31 + 1 month = Mar 3 in a non-leap
// year). Month-end "sticky" semantics are a deliberate non-change.
func AddStep(dateStr string, freq Frequency) (string, error) {
	t, err := Parse(dateStr)
	if err != nil {
		return "", err
	}

	switch freq {
	case Daily:
		t = t.AddDate(0, 0, 1)
	case Weekly:
		t = t.AddDate(0, 0, 7)
	case Monthly:
		t = t.AddDate(0, 1, 0)
	case Quarterly:
		t = t.AddDate(0, 3, 0)
	case Yearly:
		t = t.AddDate(0, 12, 0)
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidFrequency, freq)
	}

	return t.Format(DateFormat), nil
}

// Compare orders two canonical calendar dates. Lexical comparison of
// "YYYY-MM-DD" strings is a correct total order.
func Compare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
