package timesheet

import "fmt"

// DayValidation is the outcome of checking one day's entry against policy.
// All applicable violations are collected, not just the first.
type DayValidation struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// WeekValidation is the outcome of checking one week's aggregate hours.
type WeekValidation struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// ValidateDay applies the time-entry rules to a single day, in fixed order:
// pairing, start/end window and ordering, lunch bounds, daily maximum.
// Non-Regular days have policy-fixed hours and only the pairing rule applies
// to any stray time values.
func ValidateDay(entry DayEntry, policy Policy) DayValidation {
	var violations []string

	if (entry.StartTime == nil) != (entry.EndTime == nil) {
		violations = append(violations, "start and end time must both be entered")
	}
	if (entry.LunchStartTime == nil) != (entry.LunchEndTime == nil) {
		violations = append(violations, "lunch start and lunch end must both be entered")
	}

	if entry.DayType.IsRegular() {
		if entry.StartTime != nil && entry.EndTime != nil {
			if *entry.StartTime < policy.MinStartTime {
				violations = append(violations, fmt.Sprintf("start time must not be before %s", policy.MinStartTime))
			}
			if *entry.EndTime > policy.MaxEndTime {
				violations = append(violations, fmt.Sprintf("end time must not be after %s", policy.MaxEndTime))
			}
			if *entry.EndTime <= *entry.StartTime {
				violations = append(violations, "end time must be after start time")
			}
		}

		if entry.LunchStartTime != nil && entry.LunchEndTime != nil {
			if entry.StartTime != nil && *entry.LunchStartTime < *entry.StartTime {
				violations = append(violations, "lunch start must not be before start time")
			}
			if entry.EndTime != nil && *entry.LunchEndTime > *entry.EndTime {
				violations = append(violations, "lunch end must not be after end time")
			}
			if *entry.LunchEndTime <= *entry.LunchStartTime {
				violations = append(violations, "lunch end must be after lunch start")
			}
		}

		if entry.TotalHours > policy.MaxDailyHours {
			violations = append(violations, fmt.Sprintf("daily hours exceed the maximum of %g", policy.MaxDailyHours))
		}
	}

	return DayValidation{Valid: len(violations) == 0, Violations: violations}
}

// ValidateWeekTotal checks one week's aggregate hours. The overtime and
// double-time thresholds classify hours for payroll and never appear here.
func ValidateWeekTotal(weekTotalHours float64, policy Policy) WeekValidation {
	var violations []string
	if weekTotalHours > policy.MaxWeeklyHours {
		violations = append(violations, fmt.Sprintf("weekly hours exceed the maximum of %g", policy.MaxWeeklyHours))
	}
	return WeekValidation{Valid: len(violations) == 0, Violations: violations}
}

// TimesheetValidation aggregates every day and week result for a two-week
// timesheet. The timesheet is submittable only when everything passes.
type TimesheetValidation struct {
	Valid bool                `json:"valid"`
	Days  map[string][]string `json:"days,omitempty"`
	Weeks map[string][]string `json:"weeks,omitempty"`
}

// ValidateTimesheet checks all ten days and both week totals. Submission is
// refused locally while any violation exists; nothing is persisted.
func ValidateTimesheet(t *Timesheet, policy Policy) TimesheetValidation {
	result := TimesheetValidation{
		Valid: true,
		Days:  make(map[string][]string),
		Weeks: make(map[string][]string),
	}

	for _, wk := range []struct {
		name string
		week *WeekEntry
	}{
		{"week1", &t.Week1},
		{"week2", &t.Week2},
	} {
		for _, day := range wk.week.Days {
			if dv := ValidateDay(day, policy); !dv.Valid {
				result.Valid = false
				result.Days[wk.name+"."+day.Day.String()] = dv.Violations
			}
		}
		if wv := ValidateWeekTotal(wk.week.TotalHours, policy); !wv.Valid {
			result.Valid = false
			result.Weeks[wk.name] = wv.Violations
		}
	}

	return result
}

// FieldViolations flattens a timesheet validation into ordered field/message
// pairs for the error payload.
func (v TimesheetValidation) FieldViolations() []FieldViolation {
	var out []FieldViolation
	for _, wk := range []string{"week1", "week2"} {
		for d := Monday; d <= Friday; d++ {
			key := wk + "." + d.String()
			for _, msg := range v.Days[key] {
				out = append(out, FieldViolation{Field: key, Message: msg})
			}
		}
		for _, msg := range v.Weeks[wk] {
			out = append(out, FieldViolation{Field: wk, Message: msg})
		}
	}
	return out
}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
