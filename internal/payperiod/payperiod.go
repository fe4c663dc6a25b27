package payperiod

import (
	"time"
)

// PeriodLengthDays is the fixed length of a pay period: two calendar weeks.
const PeriodLengthDays = 14

// PayPeriod is a fixed 14-day window within which two weeks of timesheet
// entries are grouped. Periods never overlap for an organization and are
// immutable once created.
type PayPeriod struct {
	ID        int64     `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether the period covers the given date, inclusive on
// both ends. Comparison is by calendar date, not instant.
func (p PayPeriod) Contains(date time.Time) bool {
	d := Normalize(date)
	return !d.Before(Normalize(p.StartDate)) && !d.After(Normalize(p.EndDate))
}

// Week2Start is the first day of the period's second week.
func (p PayPeriod) Week2Start() time.Time {
	return Normalize(p.StartDate).AddDate(0, 0, 7)
}

// Normalize strips the clock and zone from a timestamp, leaving a date-only
// value at UTC midnight. All period arithmetic goes through this to avoid
// timezone drift.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStartFor returns the most recent Monday on or before the reference
// date. Company weeks start Monday.
func WeekStartFor(ref time.Time) time.Time {
	d := Normalize(ref)
	offset := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// Derive builds the deterministic 14-day window enclosing the reference
// date: the window begins at the most recent Monday on or before it.
func Derive(ref time.Time) PayPeriod {
	start := WeekStartFor(ref)
	return PayPeriod{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, PeriodLengthDays-1),
	}
}
