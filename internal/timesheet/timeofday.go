package timesheet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock-of-day value in minutes since midnight. It has
// no date component; crossing the API boundary it is rendered as a
// zero-padded 24-hour "HH:MM" string, absence as an explicit null.
type TimeOfDay int

// ParseTimeOfDay parses a zero-padded "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return TimeOfDay(hours*60 + minutes), nil
}

// MustTimeOfDay is a convenience for fixtures and defaults; it panics on a
// malformed string.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeOfDayPtr returns a pointer to t, for optional entry fields.
func TimeOfDayPtr(t TimeOfDay) *TimeOfDay {
	return &t
}

// DayOfWeek enumerates the five working days of a timesheet week in fixed
// order. Weekends are not tracked.
type DayOfWeek int

const (
	Monday DayOfWeek = iota
	Tuesday
	Wednesday
	Thursday
	Friday

	DaysPerWeek = 5
)

var dayNames = [DaysPerWeek]string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func (d DayOfWeek) Valid() bool {
	return d >= Monday && d <= Friday
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("day(%d)", int(d))
	}
	return dayNames[d]
}

// ParseDayOfWeek accepts the lowercase day name used on the wire.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	for i, name := range dayNames {
		if name == s {
			return DayOfWeek(i), nil
		}
	}
	return 0, fmt.Errorf("invalid day of week %q", s)
}

func (d DayOfWeek) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DayOfWeek) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDayOfWeek(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DayType classifies a day. Regular days derive hours from the entered
// times; the other types carry the policy's fixed default hours.
type DayType string

const (
	DayTypeRegular  DayType = "regular"
	DayTypeVacation DayType = "vacation"
	DayTypeSick     DayType = "sick"
	DayTypeHoliday  DayType = "holiday"
)

func (t DayType) Valid() bool {
	switch t {
	case DayTypeRegular, DayTypeVacation, DayTypeSick, DayTypeHoliday:
		return true
	}
	return false
}

func (t DayType) IsRegular() bool {
	return t == DayTypeRegular
}
