package sync

import (
	"context"

	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// serviceAPI is the slice of the timesheet service the adapter needs.
type serviceAPI interface {
	UpdateDayEntry(ctx context.Context, timesheetID int64, week timesheet.WeekNumber, day timesheet.DayOfWeek, dto timesheet.UpdateDayEntryDTO, userID int64) (*timesheet.Timesheet, error)
	UpdateExtraHours(ctx context.Context, timesheetID int64, dto timesheet.UpdateExtraHoursDTO, userID int64) (*timesheet.Timesheet, error)
	UpdateVacationHours(ctx context.Context, timesheetID int64, dto timesheet.UpdateVacationHoursDTO, userID int64) (*timesheet.Timesheet, error)
	SubmitTimesheet(ctx context.Context, timesheetID, userID int64) (*timesheet.Timesheet, error)
}

// ServiceRemote adapts the timesheet service to RemoteAPI, binding the
// acting user once so the editor never carries identity.
type ServiceRemote struct {
	service serviceAPI
	userID  int64
}

func NewServiceRemote(service serviceAPI, userID int64) *ServiceRemote {
	return &ServiceRemote{service: service, userID: userID}
}

func (r *ServiceRemote) UpdateDayEntry(ctx context.Context, timesheetID int64, week timesheet.WeekNumber, day timesheet.DayOfWeek, dto timesheet.UpdateDayEntryDTO) (*timesheet.Timesheet, error) {
	return r.service.UpdateDayEntry(ctx, timesheetID, week, day, dto, r.userID)
}

func (r *ServiceRemote) UpdateExtraHours(ctx context.Context, timesheetID int64, dto timesheet.UpdateExtraHoursDTO) (*timesheet.Timesheet, error) {
	return r.service.UpdateExtraHours(ctx, timesheetID, dto, r.userID)
}

func (r *ServiceRemote) UpdateVacationHours(ctx context.Context, timesheetID int64, dto timesheet.UpdateVacationHoursDTO) (*timesheet.Timesheet, error) {
	return r.service.UpdateVacationHours(ctx, timesheetID, dto, r.userID)
}

func (r *ServiceRemote) SubmitTimesheet(ctx context.Context, timesheetID int64) (*timesheet.Timesheet, error) {
	return r.service.SubmitTimesheet(ctx, timesheetID, r.userID)
}
