package payperiod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	in := time.Date(2025, 6, 18, 23, 45, 12, 0, jakarta)

	got := Normalize(in)

	assert.Equal(t, date(2025, 6, 18), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestWeekStartFor(t *testing.T) {
	// 2025-06-16 is a Monday.
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{"monday maps to itself", date(2025, 6, 16), date(2025, 6, 16)},
		{"wednesday maps back to monday", date(2025, 6, 18), date(2025, 6, 16)},
		{"sunday maps back six days", date(2025, 6, 22), date(2025, 6, 16)},
		{"next monday starts a new week", date(2025, 6, 23), date(2025, 6, 23)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStartFor(tt.ref))
		})
	}
}

func TestDerive(t *testing.T) {
	period := Derive(date(2025, 6, 18))

	assert.Equal(t, date(2025, 6, 16), period.StartDate)
	assert.Equal(t, date(2025, 6, 29), period.EndDate)

	// Any reference inside the window derives the same period.
	assert.Equal(t, period.StartDate, Derive(date(2025, 6, 16)).StartDate)
	assert.Equal(t, period.StartDate, Derive(date(2025, 6, 22)).StartDate)
}

func TestContains(t *testing.T) {
	period := PayPeriod{StartDate: date(2025, 6, 16), EndDate: date(2025, 6, 29)}

	assert.True(t, period.Contains(date(2025, 6, 16)))
	assert.True(t, period.Contains(date(2025, 6, 29)))
	assert.True(t, period.Contains(time.Date(2025, 6, 29, 23, 59, 0, 0, time.UTC)))
	assert.False(t, period.Contains(date(2025, 6, 15)))
	assert.False(t, period.Contains(date(2025, 6, 30)))
}

func TestWeek2Start(t *testing.T) {
	period := PayPeriod{StartDate: date(2025, 6, 16), EndDate: date(2025, 6, 29)}

	assert.Equal(t, date(2025, 6, 23), period.Week2Start())
}
