package timesheet

// Policy is the company time-entry policy applied by the calculator and the
// validation rules. It is always passed by value into the pure functions so
// tests can inject arbitrary policies; the settings service owns the stored
// copy and changes take effect on the next call.
type Policy struct {
	MaxDailyHours        float64   `json:"max_daily_hours"`
	MaxWeeklyHours       float64   `json:"max_weekly_hours"`
	MinLunchDuration     int       `json:"min_lunch_duration"`
	MaxLunchDuration     int       `json:"max_lunch_duration"`
	OvertimeThreshold    float64   `json:"overtime_threshold"`
	DoubleTimeThreshold  float64   `json:"double_time_threshold"`
	MinStartTime         TimeOfDay `json:"min_start_time"`
	MaxEndTime           TimeOfDay `json:"max_end_time"`
	HolidayHoursDefault  float64   `json:"holiday_hours_default"`
	HolidayPayMultiplier float64   `json:"holiday_pay_multiplier"`
	AllowFutureTimeEntry bool      `json:"allow_future_time_entry"`
	AllowPastTimeEntry   bool      `json:"allow_past_time_entry"`
	PastTimeEntryLimit   int       `json:"past_time_entry_limit"`
	PayPeriodLength      int       `json:"pay_period_length"`
}

// DefaultHoursFor returns the fixed hours a non-Regular day contributes.
// Vacation, sick and holiday days all share the policy default.
func (p Policy) DefaultHoursFor(dayType DayType) float64 {
	if dayType.IsRegular() {
		return 0
	}
	return p.HolidayHoursDefault
}

// HourClassification splits a weekly total into regular, overtime and
// double-time buckets using the policy thresholds. The thresholds classify
// hours for payroll reporting; they never block submission.
type HourClassification struct {
	Regular    float64 `json:"regular"`
	Overtime   float64 `json:"overtime"`
	DoubleTime float64 `json:"double_time"`
}

func (p Policy) ClassifyWeekHours(weekTotal float64) HourClassification {
	c := HourClassification{Regular: weekTotal}
	if weekTotal > p.OvertimeThreshold {
		c.Regular = p.OvertimeThreshold
		c.Overtime = weekTotal - p.OvertimeThreshold
	}
	if weekTotal > p.DoubleTimeThreshold {
		c.Overtime = p.DoubleTimeThreshold - p.OvertimeThreshold
		c.DoubleTime = weekTotal - p.DoubleTimeThreshold
	}
	return c
}
