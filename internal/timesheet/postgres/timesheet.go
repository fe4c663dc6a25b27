package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
)

// TimesheetRepository implements the timesheet.RepositoryAPI interface using GORM
type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) timesheet.RepositoryAPI {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id int64) (*timesheet.Timesheet, error) {
	var row timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTimesheetNotFound
		}
		return nil, err
	}
	return r.assemble(ctx, row)
}

func (r *TimesheetRepository) GetByUserAndPeriod(ctx context.Context, userID, payPeriodID int64) (*timesheet.Timesheet, error) {
	var row timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND pay_period_id = ?", userID, payPeriodID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTimesheetNotFound
		}
		return nil, err
	}
	return r.assemble(ctx, row)
}

// Create inserts the header and all ten day rows in one transaction. The
// unique index on (user_id, pay_period_id) turns a concurrent first access
// into a conflict the service resolves by re-reading.
func (r *TimesheetRepository) Create(ctx context.Context, ts *timesheet.Timesheet) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := timesheetDatamodel.Timesheet{
			UserID:          ts.UserID,
			PayPeriodID:     ts.PayPeriodID,
			Status:          string(ts.Status),
			VacationHours:   ts.VacationHours,
			Week1ExtraHours: ts.Week1.ExtraHours,
			Week2ExtraHours: ts.Week2.ExtraHours,
			SubmittedAt:     ts.SubmittedAt,
			CreatedAt:       ts.CreatedAt,
			UpdatedAt:       ts.UpdatedAt,
		}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		ts.ID = header.ID

		for _, wk := range []struct {
			n    int
			week *timesheet.WeekEntry
		}{{1, &ts.Week1}, {2, &ts.Week2}} {
			for _, day := range wk.week.Days {
				row := dayToRow(header.ID, wk.n, day)
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return internal.ErrDuplicateTimesheet
		}
		return err
	}
	return nil
}

// SaveDay replaces one day row in place.
func (r *TimesheetRepository) SaveDay(ctx context.Context, timesheetID int64, week timesheet.WeekNumber, entry timesheet.DayEntry) error {
	updates := map[string]interface{}{
		"day_type":         string(entry.DayType),
		"start_time":       timeToColumn(entry.StartTime),
		"end_time":         timeToColumn(entry.EndTime),
		"lunch_start_time": timeToColumn(entry.LunchStartTime),
		"lunch_end_time":   timeToColumn(entry.LunchEndTime),
		"total_hours":      entry.TotalHours,
		"updated_at":       time.Now(),
	}

	result := r.db.WithContext(ctx).Model(&timesheetDatamodel.TimesheetDay{}).
		Where("timesheet_id = ? AND week = ? AND weekday = ?", timesheetID, int(week), int(entry.Day)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTimesheetNotFound
	}
	return r.touch(ctx, timesheetID)
}

func (r *TimesheetRepository) UpdateExtraHours(ctx context.Context, timesheetID int64, week timesheet.WeekNumber, hours float64) error {
	column := "week1_extra_hours"
	if week == timesheet.Week2 {
		column = "week2_extra_hours"
	}
	result := r.db.WithContext(ctx).Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ?", timesheetID).
		Updates(map[string]interface{}{
			column:       hours,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTimesheetNotFound
	}
	return nil
}

func (r *TimesheetRepository) UpdateVacationHours(ctx context.Context, timesheetID int64, hours float64) error {
	result := r.db.WithContext(ctx).Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ?", timesheetID).
		Updates(map[string]interface{}{
			"vacation_hours": hours,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTimesheetNotFound
	}
	return nil
}

// UpdateStatus writes status and submitted_at together, guarded by the
// expected current status. Zero rows affected means the stored status
// changed underneath us; the transition is refused and nothing is written.
func (r *TimesheetRepository) UpdateStatus(ctx context.Context, timesheetID int64, from, to timesheet.Status, submittedAt *time.Time) error {
	result := r.db.WithContext(ctx).Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ? AND status = ?", timesheetID, string(from)).
		Updates(map[string]interface{}{
			"status":       string(to),
			"submitted_at": submittedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.NewStateError("timesheet status changed concurrently", internal.ErrCodeIllegalTransition)
	}
	return nil
}

func (r *TimesheetRepository) ListByPeriod(ctx context.Context, payPeriodID int64) ([]*timesheet.Timesheet, error) {
	var rows []timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).
		Where("pay_period_id = ?", payPeriodID).
		Order("user_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	sheets := make([]*timesheet.Timesheet, 0, len(rows))
	for _, row := range rows {
		ts, err := r.assemble(ctx, row)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ts)
	}
	return sheets, nil
}

// assemble loads the day rows and rebuilds the aggregate. Missing day rows
// fall back to zero-hour Regular entries so a sparse record still yields a
// structurally complete timesheet.
func (r *TimesheetRepository) assemble(ctx context.Context, row timesheetDatamodel.Timesheet) (*timesheet.Timesheet, error) {
	var dayRows []timesheetDatamodel.TimesheetDay
	err := r.db.WithContext(ctx).
		Where("timesheet_id = ?", row.ID).
		Order("week ASC, weekday ASC").
		Find(&dayRows).Error
	if err != nil {
		return nil, err
	}

	ts := &timesheet.Timesheet{
		ID:            row.ID,
		UserID:        row.UserID,
		PayPeriodID:   row.PayPeriodID,
		Status:        timesheet.Status(row.Status),
		VacationHours: row.VacationHours,
		SubmittedAt:   row.SubmittedAt,
		Week1:         timesheet.NewWeekEntry(),
		Week2:         timesheet.NewWeekEntry(),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	ts.Week1.ExtraHours = row.Week1ExtraHours
	ts.Week2.ExtraHours = row.Week2ExtraHours

	for _, d := range dayRows {
		entry, err := rowToDay(d)
		if err != nil {
			return nil, err
		}
		week := timesheet.WeekNumber(d.Week)
		day := timesheet.DayOfWeek(d.Weekday)
		if !week.Valid() || !day.Valid() {
			continue
		}
		*ts.Week(week).Day(day) = entry
	}

	return ts, nil
}

func (r *TimesheetRepository) touch(ctx context.Context, timesheetID int64) error {
	return r.db.WithContext(ctx).Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ?", timesheetID).
		Update("updated_at", time.Now()).Error
}

func dayToRow(timesheetID int64, week int, entry timesheet.DayEntry) timesheetDatamodel.TimesheetDay {
	now := time.Now()
	return timesheetDatamodel.TimesheetDay{
		TimesheetID: timesheetID,
		Week:        week,
		Weekday:     int(entry.Day),
		DayType:     string(entry.DayType),
		StartTime:   timeToColumn(entry.StartTime),
		EndTime:     timeToColumn(entry.EndTime),
		LunchStart:  timeToColumn(entry.LunchStartTime),
		LunchEnd:    timeToColumn(entry.LunchEndTime),
		TotalHours:  entry.TotalHours,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func rowToDay(row timesheetDatamodel.TimesheetDay) (timesheet.DayEntry, error) {
	entry := timesheet.DayEntry{
		Day:        timesheet.DayOfWeek(row.Weekday),
		DayType:    timesheet.DayType(row.DayType),
		TotalHours: row.TotalHours,
	}

	var err error
	if entry.StartTime, err = columnToTime(row.StartTime); err != nil {
		return timesheet.DayEntry{}, err
	}
	if entry.EndTime, err = columnToTime(row.EndTime); err != nil {
		return timesheet.DayEntry{}, err
	}
	if entry.LunchStartTime, err = columnToTime(row.LunchStart); err != nil {
		return timesheet.DayEntry{}, err
	}
	if entry.LunchEndTime, err = columnToTime(row.LunchEnd); err != nil {
		return timesheet.DayEntry{}, err
	}
	return entry, nil
}

func timeToColumn(t *timesheet.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func columnToTime(s *string) (*timesheet.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}
	t, err := timesheet.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
