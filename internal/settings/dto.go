package settings

import (
	"fmt"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// UpdatePolicyDTO is the admin request payload for replacing the policy.
// Every field is required; partial updates are not supported so the stored
// row is always internally consistent.
type UpdatePolicyDTO struct {
	MaxDailyHours        float64 `json:"max_daily_hours"`
	MaxWeeklyHours       float64 `json:"max_weekly_hours"`
	MinLunchDuration     int     `json:"min_lunch_duration"`
	MaxLunchDuration     int     `json:"max_lunch_duration"`
	OvertimeThreshold    float64 `json:"overtime_threshold"`
	DoubleTimeThreshold  float64 `json:"double_time_threshold"`
	MinStartTime         string  `json:"min_start_time"`
	MaxEndTime           string  `json:"max_end_time"`
	HolidayHoursDefault  float64 `json:"holiday_hours_default"`
	HolidayPayMultiplier float64 `json:"holiday_pay_multiplier"`
	AllowFutureTimeEntry bool    `json:"allow_future_time_entry"`
	AllowPastTimeEntry   bool    `json:"allow_past_time_entry"`
	PastTimeEntryLimit   int     `json:"past_time_entry_limit"`
	PayPeriodLength      int     `json:"pay_period_length"`
}

// ToPolicy validates the payload and converts it to a policy value.
func (dto UpdatePolicyDTO) ToPolicy() (timesheet.Policy, error) {
	var fieldErrors []internal.ValidationError

	addErr := func(field, message string) {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field:   field,
			Message: message,
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}

	if dto.MaxDailyHours <= 0 || dto.MaxDailyHours > 24 {
		addErr("max_daily_hours", "must be between 0 and 24")
	}
	if dto.MaxWeeklyHours <= 0 || dto.MaxWeeklyHours > 168 {
		addErr("max_weekly_hours", "must be between 0 and 168")
	}
	if dto.MinLunchDuration < 0 {
		addErr("min_lunch_duration", "cannot be negative")
	}
	if dto.MaxLunchDuration < dto.MinLunchDuration {
		addErr("max_lunch_duration", "cannot be less than min_lunch_duration")
	}
	if dto.OvertimeThreshold > dto.DoubleTimeThreshold {
		addErr("overtime_threshold", "cannot exceed double_time_threshold")
	}
	if dto.HolidayHoursDefault < 0 || dto.HolidayHoursDefault > 24 {
		addErr("holiday_hours_default", "must be between 0 and 24")
	}
	if dto.HolidayPayMultiplier < 1 {
		addErr("holiday_pay_multiplier", "must be at least 1")
	}
	if dto.PastTimeEntryLimit < 0 {
		addErr("past_time_entry_limit", "cannot be negative")
	}
	if dto.PayPeriodLength != 14 {
		addErr("pay_period_length", "must be 14 days")
	}

	minStart, err := timesheet.ParseTimeOfDay(dto.MinStartTime)
	if err != nil {
		addErr("min_start_time", fmt.Sprintf("invalid time: %v", err))
	}
	maxEnd, err := timesheet.ParseTimeOfDay(dto.MaxEndTime)
	if err != nil {
		addErr("max_end_time", fmt.Sprintf("invalid time: %v", err))
	}
	if len(fieldErrors) == 0 && maxEnd <= minStart {
		addErr("max_end_time", "must be after min_start_time")
	}

	if len(fieldErrors) > 0 {
		return timesheet.Policy{}, internal.NewValidationFieldErrors("invalid policy", fieldErrors)
	}

	return timesheet.Policy{
		MaxDailyHours:        dto.MaxDailyHours,
		MaxWeeklyHours:       dto.MaxWeeklyHours,
		MinLunchDuration:     dto.MinLunchDuration,
		MaxLunchDuration:     dto.MaxLunchDuration,
		OvertimeThreshold:    dto.OvertimeThreshold,
		DoubleTimeThreshold:  dto.DoubleTimeThreshold,
		MinStartTime:         minStart,
		MaxEndTime:           maxEnd,
		HolidayHoursDefault:  dto.HolidayHoursDefault,
		HolidayPayMultiplier: dto.HolidayPayMultiplier,
		AllowFutureTimeEntry: dto.AllowFutureTimeEntry,
		AllowPastTimeEntry:   dto.AllowPastTimeEntry,
		PastTimeEntryLimit:   dto.PastTimeEntryLimit,
		PayPeriodLength:      dto.PayPeriodLength,
	}, nil
}
