package timesheet

import (
	"github.com/frahmantamala/timesheet-management/internal"
)

// UpdateDayEntryDTO is the request payload for replacing one day's entry.
// Time fields are zero-padded "HH:MM" strings; an absent field is an
// explicit null, never an empty string.
type UpdateDayEntryDTO struct {
	DayType        string  `json:"day_type"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	LunchStartTime *string `json:"lunch_start_time"`
	LunchEndTime   *string `json:"lunch_end_time"`
}

// ToDayEntry parses the payload into a domain entry for the given slot.
// Malformed times are payload errors, distinct from the policy violations
// the validation engine reports.
func (dto UpdateDayEntryDTO) ToDayEntry(day DayOfWeek) (DayEntry, error) {
	dayType := DayType(dto.DayType)
	if !dayType.Valid() {
		return DayEntry{}, internal.NewValidationError("invalid day type", internal.ErrCodeInvalidDayType)
	}

	entry := DayEntry{Day: day, DayType: dayType}

	parse := func(field string, value *string) (*TimeOfDay, error) {
		if value == nil {
			return nil, nil
		}
		t, err := ParseTimeOfDay(*value)
		if err != nil {
			return nil, internal.NewValidationError(field+": "+err.Error(), internal.ErrCodeInvalidTime)
		}
		return &t, nil
	}

	var err error
	if entry.StartTime, err = parse("start_time", dto.StartTime); err != nil {
		return DayEntry{}, err
	}
	if entry.EndTime, err = parse("end_time", dto.EndTime); err != nil {
		return DayEntry{}, err
	}
	if entry.LunchStartTime, err = parse("lunch_start_time", dto.LunchStartTime); err != nil {
		return DayEntry{}, err
	}
	if entry.LunchEndTime, err = parse("lunch_end_time", dto.LunchEndTime); err != nil {
		return DayEntry{}, err
	}

	return entry, nil
}

// UpdateExtraHoursDTO adjusts one week's manual extra-hours value.
type UpdateExtraHoursDTO struct {
	Week       int     `json:"week"`
	ExtraHours float64 `json:"extra_hours"`
}

func (dto UpdateExtraHoursDTO) Validate() error {
	if !WeekNumber(dto.Week).Valid() {
		return internal.NewValidationError("week must be 1 or 2", internal.ErrCodeInvalidWeek)
	}
	if dto.ExtraHours < 0 {
		return internal.NewValidationError("extra hours cannot be negative", internal.ErrCodeNegativeHours)
	}
	return nil
}

// UpdateVacationHoursDTO sets the period-level vacation hours balance shown
// on the timesheet.
type UpdateVacationHoursDTO struct {
	VacationHours float64 `json:"vacation_hours"`
}

func (dto UpdateVacationHoursDTO) Validate() error {
	if dto.VacationHours < 0 {
		return internal.NewValidationError("vacation hours cannot be negative", internal.ErrCodeNegativeHours)
	}
	return nil
}

// DaySummary is the per-day classification exposed to reporting.
type DaySummary struct {
	Week    int     `json:"week"`
	Day     string  `json:"day_of_week"`
	DayType DayType `json:"day_type"`
	Hours   float64 `json:"hours"`
}

// UserPeriodSummary is one user's reportable slice of a pay period: total
// hours, per-day classification and lifecycle status.
type UserPeriodSummary struct {
	UserID         int64              `json:"user_id"`
	TimesheetID    int64              `json:"timesheet_id"`
	PayPeriodID    int64              `json:"pay_period_id"`
	Status         Status             `json:"status"`
	TotalHours     float64            `json:"total_hours"`
	Week1          HourClassification `json:"week1_classification"`
	Week2          HourClassification `json:"week2_classification"`
	Days           []DaySummary       `json:"days"`
	VacationHours  float64            `json:"vacation_hours"`
}
