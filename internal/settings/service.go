package settings

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// RepositoryAPI defines the data access methods for the policy row.
type RepositoryAPI interface {
	Get(ctx context.Context) (timesheet.Policy, error)
	Save(ctx context.Context, policy timesheet.Policy) error
}

// Service is the settings provider. Everything that validates or computes
// hours reads the policy through it; only administrators write it. A change
// takes effect on the next call; stored totals are never recomputed.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetPolicy(ctx context.Context) (timesheet.Policy, error) {
	policy, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Error("failed to load timesheet policy", "error", err)
		return timesheet.Policy{}, err
	}
	return policy, nil
}

func (s *Service) UpdatePolicy(ctx context.Context, dto UpdatePolicyDTO, userPermissions []string) (timesheet.Policy, error) {
	if !hasSettingsPermission(userPermissions) {
		s.logger.Warn("policy update denied: insufficient permissions", "permissions", userPermissions)
		return timesheet.Policy{}, internal.ErrUnauthorizedAccess
	}

	policy, err := dto.ToPolicy()
	if err != nil {
		s.logger.Error("policy update rejected", "error", err)
		return timesheet.Policy{}, err
	}

	if err := s.repo.Save(ctx, policy); err != nil {
		s.logger.Error("failed to save timesheet policy", "error", err)
		return timesheet.Policy{}, err
	}

	s.logger.Info("timesheet policy updated",
		"max_daily_hours", policy.MaxDailyHours,
		"max_weekly_hours", policy.MaxWeeklyHours)

	return policy, nil
}

func hasSettingsPermission(userPermissions []string) bool {
	for _, p := range userPermissions {
		if p == "manage_settings" || p == "admin" {
			return true
		}
	}
	return false
}

// PolicyFromConfig builds the seed policy from the static configuration.
func PolicyFromConfig(cfg internal.TimesheetConfig) (timesheet.Policy, error) {
	minStart, err := timesheet.ParseTimeOfDay(cfg.MinStartTime)
	if err != nil {
		return timesheet.Policy{}, err
	}
	maxEnd, err := timesheet.ParseTimeOfDay(cfg.MaxEndTime)
	if err != nil {
		return timesheet.Policy{}, err
	}
	return timesheet.Policy{
		MaxDailyHours:        cfg.MaxDailyHours,
		MaxWeeklyHours:       cfg.MaxWeeklyHours,
		MinLunchDuration:     cfg.MinLunchDuration,
		MaxLunchDuration:     cfg.MaxLunchDuration,
		OvertimeThreshold:    cfg.OvertimeThreshold,
		DoubleTimeThreshold:  cfg.DoubleTimeThreshold,
		MinStartTime:         minStart,
		MaxEndTime:           maxEnd,
		HolidayHoursDefault:  cfg.HolidayHoursDefault,
		HolidayPayMultiplier: cfg.HolidayPayMultiplier,
		AllowFutureTimeEntry: cfg.AllowFutureTimeEntry,
		AllowPastTimeEntry:   cfg.AllowPastTimeEntry,
		PastTimeEntryLimit:   cfg.PastTimeEntryLimit,
		PayPeriodLength:      cfg.PayPeriodLength,
	}, nil
}
