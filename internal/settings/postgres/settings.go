package postgres

import (
	"context"

	"github.com/frahmantamala/timesheet-management/internal"
	settingsDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/settings"
	"github.com/frahmantamala/timesheet-management/internal/settings"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
)

// SettingsRepository stores the policy as a single row.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.RepositoryAPI {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (timesheet.Policy, error) {
	var row settingsDatamodel.Settings
	err := r.db.WithContext(ctx).Order("id ASC").First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return timesheet.Policy{}, internal.ErrSettingsNotFound
		}
		return timesheet.Policy{}, err
	}
	return toPolicy(row)
}

func (r *SettingsRepository) Save(ctx context.Context, policy timesheet.Policy) error {
	row := fromPolicy(policy)

	var existing settingsDatamodel.Settings
	err := r.db.WithContext(ctx).Order("id ASC").First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(&row).Error
	}
	if err != nil {
		return err
	}

	row.ID = existing.ID
	return r.db.WithContext(ctx).Save(&row).Error
}

func toPolicy(row settingsDatamodel.Settings) (timesheet.Policy, error) {
	minStart, err := timesheet.ParseTimeOfDay(row.MinStartTime)
	if err != nil {
		return timesheet.Policy{}, err
	}
	maxEnd, err := timesheet.ParseTimeOfDay(row.MaxEndTime)
	if err != nil {
		return timesheet.Policy{}, err
	}
	return timesheet.Policy{
		MaxDailyHours:        row.MaxDailyHours,
		MaxWeeklyHours:       row.MaxWeeklyHours,
		MinLunchDuration:     row.MinLunchDuration,
		MaxLunchDuration:     row.MaxLunchDuration,
		OvertimeThreshold:    row.OvertimeThreshold,
		DoubleTimeThreshold:  row.DoubleTimeThreshold,
		MinStartTime:         minStart,
		MaxEndTime:           maxEnd,
		HolidayHoursDefault:  row.HolidayHoursDefault,
		HolidayPayMultiplier: row.HolidayPayMultiplier,
		AllowFutureTimeEntry: row.AllowFutureTimeEntry,
		AllowPastTimeEntry:   row.AllowPastTimeEntry,
		PastTimeEntryLimit:   row.PastTimeEntryLimit,
		PayPeriodLength:      row.PayPeriodLength,
	}, nil
}

func fromPolicy(policy timesheet.Policy) settingsDatamodel.Settings {
	return settingsDatamodel.Settings{
		MaxDailyHours:        policy.MaxDailyHours,
		MaxWeeklyHours:       policy.MaxWeeklyHours,
		MinLunchDuration:     policy.MinLunchDuration,
		MaxLunchDuration:     policy.MaxLunchDuration,
		OvertimeThreshold:    policy.OvertimeThreshold,
		DoubleTimeThreshold:  policy.DoubleTimeThreshold,
		MinStartTime:         policy.MinStartTime.String(),
		MaxEndTime:           policy.MaxEndTime.String(),
		HolidayHoursDefault:  policy.HolidayHoursDefault,
		HolidayPayMultiplier: policy.HolidayPayMultiplier,
		AllowFutureTimeEntry: policy.AllowFutureTimeEntry,
		AllowPastTimeEntry:   policy.AllowPastTimeEntry,
		PastTimeEntryLimit:   policy.PastTimeEntryLimit,
		PayPeriodLength:      policy.PayPeriodLength,
	}
}
