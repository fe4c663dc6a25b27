package settings

import "time"

// Settings is the single policy row read by every validation and
// calculation call. Time bounds are stored as "HH:MM" strings, lunch
// durations and the past-entry limit in minutes and days respectively.
type Settings struct {
	ID                   int64     `gorm:"primaryKey"`
	MaxDailyHours        float64   `gorm:"column:max_daily_hours;not null"`
	MaxWeeklyHours       float64   `gorm:"column:max_weekly_hours;not null"`
	MinLunchDuration     int       `gorm:"column:min_lunch_duration;not null"`
	MaxLunchDuration     int       `gorm:"column:max_lunch_duration;not null"`
	OvertimeThreshold    float64   `gorm:"column:overtime_threshold;not null"`
	DoubleTimeThreshold  float64   `gorm:"column:double_time_threshold;not null"`
	MinStartTime         string    `gorm:"column:min_start_time;type:varchar(5);not null"`
	MaxEndTime           string    `gorm:"column:max_end_time;type:varchar(5);not null"`
	HolidayHoursDefault  float64   `gorm:"column:holiday_hours_default;not null"`
	HolidayPayMultiplier float64   `gorm:"column:holiday_pay_multiplier;not null"`
	AllowFutureTimeEntry bool      `gorm:"column:allow_future_time_entry;default:false"`
	AllowPastTimeEntry   bool      `gorm:"column:allow_past_time_entry;default:true"`
	PastTimeEntryLimit   int       `gorm:"column:past_time_entry_limit;default:30"`
	PayPeriodLength      int       `gorm:"column:pay_period_length;default:14"`
	UpdatedAt            time.Time `gorm:"column:updated_at;default:now()"`
}

func (Settings) TableName() string {
	return "timesheet_settings"
}
