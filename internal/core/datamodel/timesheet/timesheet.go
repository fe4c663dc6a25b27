package timesheet

import "time"

// Timesheet is the persisted two-week record. Day rows live in
// timesheet_days; the unique index on (user_id, pay_period_id) enforces
// one timesheet per user per period.
type Timesheet struct {
	ID              int64      `gorm:"primaryKey"`
	UserID          int64      `gorm:"column:user_id;not null;uniqueIndex:idx_timesheets_user_period"`
	PayPeriodID     int64      `gorm:"column:pay_period_id;not null;uniqueIndex:idx_timesheets_user_period"`
	Status          string     `gorm:"column:status;default:draft;not null"`
	VacationHours   float64    `gorm:"column:vacation_hours;default:0"`
	Week1ExtraHours float64    `gorm:"column:week1_extra_hours;default:0"`
	Week2ExtraHours float64    `gorm:"column:week2_extra_hours;default:0"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}

// TimesheetDay is one day's raw entry. Time columns hold zero-padded
// "HH:MM" strings; NULL means the field is absent. Week is 1 or 2 and
// weekday 0 (Monday) through 4 (Friday).
type TimesheetDay struct {
	ID          int64     `gorm:"primaryKey"`
	TimesheetID int64     `gorm:"column:timesheet_id;not null;uniqueIndex:idx_timesheet_days_slot"`
	Week        int       `gorm:"column:week;not null;uniqueIndex:idx_timesheet_days_slot"`
	Weekday     int       `gorm:"column:weekday;not null;uniqueIndex:idx_timesheet_days_slot"`
	DayType     string    `gorm:"column:day_type;default:regular;not null"`
	StartTime   *string   `gorm:"column:start_time;type:varchar(5)"`
	EndTime     *string   `gorm:"column:end_time;type:varchar(5)"`
	LunchStart  *string   `gorm:"column:lunch_start_time;type:varchar(5)"`
	LunchEnd    *string   `gorm:"column:lunch_end_time;type:varchar(5)"`
	TotalHours  float64   `gorm:"column:total_hours;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (TimesheetDay) TableName() string {
	return "timesheet_days"
}
