package payperiod

import "time"

// PayPeriod rows are immutable once created; the unique index on start_date
// is what makes concurrent find-or-create resolution collapse to one row.
type PayPeriod struct {
	ID        int64     `gorm:"primaryKey"`
	StartDate time.Time `gorm:"column:start_date;type:date;uniqueIndex;not null"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (PayPeriod) TableName() string {
	return "pay_periods"
}
