package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TimesheetSubmittedEvent = "timesheet.submitted"
	TimesheetRecalledEvent  = "timesheet.recalled"
	TimesheetApprovedEvent  = "timesheet.approved"
	TimesheetRejectedEvent  = "timesheet.rejected"
)

func newTimesheetEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewTimesheetSubmitted(timesheetID, userID, payPeriodID int64, totalHours float64) Event {
	return newTimesheetEvent(TimesheetSubmittedEvent, map[string]interface{}{
		"timesheet_id":  timesheetID,
		"user_id":       userID,
		"pay_period_id": payPeriodID,
		"total_hours":   totalHours,
	})
}

func NewTimesheetRecalled(timesheetID, userID, payPeriodID int64) Event {
	return newTimesheetEvent(TimesheetRecalledEvent, map[string]interface{}{
		"timesheet_id":  timesheetID,
		"user_id":       userID,
		"pay_period_id": payPeriodID,
	})
}

func NewTimesheetApproved(timesheetID, userID, payPeriodID, adminID int64) Event {
	return newTimesheetEvent(TimesheetApprovedEvent, map[string]interface{}{
		"timesheet_id":  timesheetID,
		"user_id":       userID,
		"pay_period_id": payPeriodID,
		"admin_id":      adminID,
	})
}

func NewTimesheetRejected(timesheetID, userID, payPeriodID, adminID int64) Event {
	return newTimesheetEvent(TimesheetRejectedEvent, map[string]interface{}{
		"timesheet_id":  timesheetID,
		"user_id":       userID,
		"pay_period_id": payPeriodID,
		"admin_id":      adminID,
	})
}
