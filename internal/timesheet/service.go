package timesheet

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/payperiod"
)

// RepositoryAPI defines the data access methods for timesheets. UpdateStatus
// performs the whole status+timestamp change as one guarded write: it fails
// with a state error when the stored status is no longer `from`, so a
// partial transition can never be observed.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*Timesheet, error)
	GetByUserAndPeriod(ctx context.Context, userID, payPeriodID int64) (*Timesheet, error)
	Create(ctx context.Context, ts *Timesheet) error
	SaveDay(ctx context.Context, timesheetID int64, week WeekNumber, entry DayEntry) error
	UpdateExtraHours(ctx context.Context, timesheetID int64, week WeekNumber, hours float64) error
	UpdateVacationHours(ctx context.Context, timesheetID int64, hours float64) error
	UpdateStatus(ctx context.Context, timesheetID int64, from, to Status, submittedAt *time.Time) error
	ListByPeriod(ctx context.Context, payPeriodID int64) ([]*Timesheet, error)
}

// PeriodResolver is the pay period service surface the timesheet service
// depends on.
type PeriodResolver interface {
	ResolveCurrentPeriod(ctx context.Context, ref time.Time) (*payperiod.PayPeriod, error)
	GetPeriod(ctx context.Context, id int64) (*payperiod.PayPeriod, error)
}

// PolicyProvider supplies the active policy. The value is read fresh on
// every call so an admin change applies to the next validation.
type PolicyProvider interface {
	GetPolicy(ctx context.Context) (Policy, error)
}

// EventPublisher receives lifecycle events for asynchronous consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns timesheet mutation and the lifecycle. Each timesheet has a
// single writer in practice; the one real race, period find-or-create, is
// handled inside the resolver.
type Service struct {
	repo     RepositoryAPI
	periods  PeriodResolver
	policies PolicyProvider
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, periods PeriodResolver, policies PolicyProvider, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		periods:  periods,
		policies: policies,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
	}
}

// GetCurrentTimesheet resolves the pay period enclosing the reference date
// and returns the user's timesheet for it, creating both lazily on first
// access.
func (s *Service) GetCurrentTimesheet(ctx context.Context, userID int64, ref time.Time) (*Timesheet, *payperiod.PayPeriod, error) {
	period, err := s.periods.ResolveCurrentPeriod(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	ts, err := s.GetOrCreateTimesheet(ctx, userID, period.ID)
	if err != nil {
		return nil, nil, err
	}
	return ts, period, nil
}

// GetOrCreateTimesheet returns the one timesheet for the (user, period)
// pair, creating it with zero-hour Regular days on first access. A creation
// conflict means a concurrent first access won; the existing row is
// re-read once.
func (s *Service) GetOrCreateTimesheet(ctx context.Context, userID, payPeriodID int64) (*Timesheet, error) {
	ts, err := s.repo.GetByUserAndPeriod(ctx, userID, payPeriodID)
	if err == nil {
		return s.recalculated(ctx, ts)
	}
	if appErr, ok := internal.IsAppError(err); !ok || appErr.Type != internal.ErrorTypeNotFound {
		s.logger.Error("timesheet lookup failed", "error", err, "user_id", userID, "pay_period_id", payPeriodID)
		return nil, err
	}

	fresh := NewTimesheet(userID, payPeriodID)
	if err := s.repo.Create(ctx, fresh); err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeConflict {
			s.logger.Info("timesheet creation raced, re-reading",
				"user_id", userID, "pay_period_id", payPeriodID)
			return s.repo.GetByUserAndPeriod(ctx, userID, payPeriodID)
		}
		s.logger.Error("timesheet creation failed", "error", err, "user_id", userID, "pay_period_id", payPeriodID)
		return nil, err
	}

	s.logger.Info("timesheet created",
		"timesheet_id", fresh.ID,
		"user_id", userID,
		"pay_period_id", payPeriodID)

	return fresh, nil
}

// GetTimesheet retrieves a timesheet with access control: owners and
// managers only.
func (s *Service) GetTimesheet(ctx context.Context, id, userID int64, isManager bool) (*Timesheet, error) {
	ts, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get timesheet", "error", err, "timesheet_id", id)
		return nil, internal.ErrTimesheetNotFound
	}

	if !isManager && ts.UserID != userID {
		s.logger.Warn("unauthorized access to timesheet", "timesheet_id", id, "user_id", userID, "owner_id", ts.UserID)
		return nil, internal.ErrTimesheetNotOwned
	}

	return s.recalculated(ctx, ts)
}

// UpdateDayEntry replaces one day's raw fields and recomputes totals. The
// non-Regular invariant is applied here: classifying a day as vacation,
// sick or holiday clears all four time fields and pins the policy default
// hours.
func (s *Service) UpdateDayEntry(ctx context.Context, timesheetID int64, week WeekNumber, day DayOfWeek, dto UpdateDayEntryDTO, userID int64) (*Timesheet, error) {
	if !week.Valid() {
		return nil, internal.NewValidationError("week must be 1 or 2", internal.ErrCodeInvalidWeek)
	}
	if !day.Valid() {
		return nil, internal.NewValidationError("day must be monday through friday", internal.ErrCodeValidationFailed)
	}

	entry, err := dto.ToDayEntry(day)
	if err != nil {
		s.logger.Warn("day entry payload rejected", "error", err, "timesheet_id", timesheetID)
		return nil, err
	}

	ts, policy, err := s.editableTimesheet(ctx, timesheetID, userID)
	if err != nil {
		return nil, err
	}

	if !entry.DayType.IsRegular() {
		entry.ClearTimes()
	}
	entry.TotalHours = ComputeDayHours(entry, policy)

	*ts.Week(week).Day(day) = entry
	ts.Recalculate(policy)

	if err := s.repo.SaveDay(ctx, timesheetID, week, entry); err != nil {
		s.logger.Error("failed to save day entry", "error", err, "timesheet_id", timesheetID,
			"week", int(week), "day", day.String())
		return nil, err
	}

	s.logger.Info("day entry updated",
		"timesheet_id", timesheetID,
		"week", int(week),
		"day", day.String(),
		"day_type", string(entry.DayType),
		"hours", entry.TotalHours)

	return ts, nil
}

// UpdateExtraHours sets one week's manual adjustment.
func (s *Service) UpdateExtraHours(ctx context.Context, timesheetID int64, dto UpdateExtraHoursDTO, userID int64) (*Timesheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ts, policy, err := s.editableTimesheet(ctx, timesheetID, userID)
	if err != nil {
		return nil, err
	}

	week := WeekNumber(dto.Week)
	ts.Week(week).ExtraHours = dto.ExtraHours
	ts.Recalculate(policy)

	if err := s.repo.UpdateExtraHours(ctx, timesheetID, week, dto.ExtraHours); err != nil {
		s.logger.Error("failed to update extra hours", "error", err, "timesheet_id", timesheetID)
		return nil, err
	}

	return ts, nil
}

// UpdateVacationHours sets the period-level vacation balance field.
func (s *Service) UpdateVacationHours(ctx context.Context, timesheetID int64, dto UpdateVacationHoursDTO, userID int64) (*Timesheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ts, _, err := s.editableTimesheet(ctx, timesheetID, userID)
	if err != nil {
		return nil, err
	}

	ts.VacationHours = dto.VacationHours
	if err := s.repo.UpdateVacationHours(ctx, timesheetID, dto.VacationHours); err != nil {
		s.logger.Error("failed to update vacation hours", "error", err, "timesheet_id", timesheetID)
		return nil, err
	}

	return ts, nil
}

// Validate runs the full rule set against the current record without
// mutating anything.
func (s *Service) Validate(ctx context.Context, timesheetID, userID int64, isManager bool) (TimesheetValidation, error) {
	ts, err := s.GetTimesheet(ctx, timesheetID, userID, isManager)
	if err != nil {
		return TimesheetValidation{}, err
	}

	policy, err := s.policies.GetPolicy(ctx)
	if err != nil {
		return TimesheetValidation{}, err
	}

	return ValidateTimesheet(ts, policy), nil
}

// SubmitTimesheet transitions Draft to Submitted. Submission is refused
// locally, before any persistence attempt, while any day or week total is
// invalid.
func (s *Service) SubmitTimesheet(ctx context.Context, timesheetID, userID int64) (*Timesheet, error) {
	ts, err := s.ownedTimesheet(ctx, timesheetID, userID)
	if err != nil {
		return nil, err
	}

	if !ts.CanSubmit() {
		s.logger.Warn("cannot submit timesheet in current status",
			"timesheet_id", timesheetID, "status", string(ts.Status))
		return nil, internal.NewStateError("only a draft timesheet can be submitted", internal.ErrCodeIllegalTransition)
	}

	policy, err := s.policies.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}
	ts.Recalculate(policy)

	if result := ValidateTimesheet(ts, policy); !result.Valid {
		s.logger.Warn("timesheet failed validation on submit",
			"timesheet_id", timesheetID,
			"violations", len(result.FieldViolations()))
		return nil, validationError(result)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, timesheetID, StatusDraft, StatusSubmitted, &now); err != nil {
		s.logger.Error("failed to submit timesheet", "error", err, "timesheet_id", timesheetID)
		return nil, err
	}
	ts.Submit(now)

	s.logger.Info("timesheet submitted",
		"timesheet_id", timesheetID,
		"user_id", userID,
		"total_hours", ts.TotalHours())

	s.publish(ctx, events.NewTimesheetSubmitted(ts.ID, ts.UserID, ts.PayPeriodID, ts.TotalHours()))

	return ts, nil
}

// RecallTimesheet reverses a submission back to Draft for further editing.
// Only the owning user may recall, and only while the sheet is Submitted.
func (s *Service) RecallTimesheet(ctx context.Context, timesheetID, userID int64) (*Timesheet, error) {
	ts, err := s.ownedTimesheet(ctx, timesheetID, userID)
	if err != nil {
		return nil, err
	}

	if !ts.CanRecall() {
		s.logger.Warn("cannot recall timesheet in current status",
			"timesheet_id", timesheetID, "status", string(ts.Status))
		return nil, internal.NewStateError("only a submitted timesheet can be recalled", internal.ErrCodeIllegalTransition)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, timesheetID, StatusSubmitted, StatusDraft, nil); err != nil {
		s.logger.Error("failed to recall timesheet", "error", err, "timesheet_id", timesheetID)
		return nil, err
	}
	ts.Recall(now)

	s.logger.Info("timesheet recalled", "timesheet_id", timesheetID, "user_id", userID)

	s.publish(ctx, events.NewTimesheetRecalled(ts.ID, ts.UserID, ts.PayPeriodID))

	return ts, nil
}

// ApproveTimesheet is administrator-only; beyond the role there is no
// further guard.
func (s *Service) ApproveTimesheet(ctx context.Context, timesheetID, adminID int64, userPermissions []string) (*Timesheet, error) {
	return s.adminTransition(ctx, timesheetID, adminID, userPermissions, StatusApproved)
}

// RejectTimesheet is administrator-only and returns the sheet to the
// employee as rejected.
func (s *Service) RejectTimesheet(ctx context.Context, timesheetID, adminID int64, userPermissions []string) (*Timesheet, error) {
	return s.adminTransition(ctx, timesheetID, adminID, userPermissions, StatusRejected)
}

func (s *Service) adminTransition(ctx context.Context, timesheetID, adminID int64, userPermissions []string, to Status) (*Timesheet, error) {
	if !hasApprovalPermissions(userPermissions) {
		s.logger.Warn("status change denied: insufficient permissions",
			"timesheet_id", timesheetID, "admin_id", adminID, "permissions", userPermissions)
		return nil, internal.ErrUnauthorizedAccess
	}

	ts, err := s.repo.GetByID(ctx, timesheetID)
	if err != nil {
		s.logger.Error("timesheet not found for status change", "error", err, "timesheet_id", timesheetID)
		return nil, internal.ErrTimesheetNotFound
	}

	if ts.Status != StatusSubmitted {
		s.logger.Warn("cannot change status of unsubmitted timesheet",
			"timesheet_id", timesheetID, "status", string(ts.Status))
		return nil, internal.NewStateError("only a submitted timesheet can be approved or rejected", internal.ErrCodeIllegalTransition)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, timesheetID, StatusSubmitted, to, ts.SubmittedAt); err != nil {
		s.logger.Error("failed to change timesheet status", "error", err, "timesheet_id", timesheetID, "to", string(to))
		return nil, err
	}

	if to == StatusApproved {
		ts.Approve(now)
		s.publish(ctx, events.NewTimesheetApproved(ts.ID, ts.UserID, ts.PayPeriodID, adminID))
	} else {
		ts.Reject(now)
		s.publish(ctx, events.NewTimesheetRejected(ts.ID, ts.UserID, ts.PayPeriodID, adminID))
	}

	s.logger.Info("timesheet status changed",
		"timesheet_id", timesheetID,
		"admin_id", adminID,
		"status", string(to))

	return ts, nil
}

// PeriodSummary exposes per-timesheet totals, per-day classification and
// status for one pay period, keyed by user. Managers only.
func (s *Service) PeriodSummary(ctx context.Context, payPeriodID int64, userPermissions []string) ([]UserPeriodSummary, error) {
	if !hasReportingPermissions(userPermissions) {
		s.logger.Warn("period summary denied: insufficient permissions", "pay_period_id", payPeriodID)
		return nil, internal.ErrUnauthorizedAccess
	}

	if _, err := s.periods.GetPeriod(ctx, payPeriodID); err != nil {
		return nil, err
	}

	policy, err := s.policies.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}

	sheets, err := s.repo.ListByPeriod(ctx, payPeriodID)
	if err != nil {
		s.logger.Error("failed to list timesheets for period", "error", err, "pay_period_id", payPeriodID)
		return nil, err
	}

	summaries := make([]UserPeriodSummary, 0, len(sheets))
	for _, ts := range sheets {
		ts.Recalculate(policy)

		summary := UserPeriodSummary{
			UserID:        ts.UserID,
			TimesheetID:   ts.ID,
			PayPeriodID:   ts.PayPeriodID,
			Status:        ts.Status,
			TotalHours:    ts.TotalHours(),
			Week1:         policy.ClassifyWeekHours(ts.Week1.TotalHours),
			Week2:         policy.ClassifyWeekHours(ts.Week2.TotalHours),
			VacationHours: ts.VacationHours,
		}
		for _, wk := range []struct {
			n    int
			week *WeekEntry
		}{{1, &ts.Week1}, {2, &ts.Week2}} {
			for _, d := range wk.week.Days {
				summary.Days = append(summary.Days, DaySummary{
					Week:    wk.n,
					Day:     d.Day.String(),
					DayType: d.DayType,
					Hours:   d.TotalHours,
				})
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// ownedTimesheet loads a timesheet and verifies ownership.
func (s *Service) ownedTimesheet(ctx context.Context, timesheetID, userID int64) (*Timesheet, error) {
	ts, err := s.repo.GetByID(ctx, timesheetID)
	if err != nil {
		s.logger.Error("failed to get timesheet", "error", err, "timesheet_id", timesheetID)
		return nil, internal.ErrTimesheetNotFound
	}
	if ts.UserID != userID {
		s.logger.Warn("unauthorized access to timesheet", "timesheet_id", timesheetID, "user_id", userID)
		return nil, internal.ErrTimesheetNotOwned
	}
	return ts, nil
}

// editableTimesheet loads a timesheet, verifies ownership, and enforces the
// editing window: drafts only, and a draft whose period fully elapsed is
// frozen. Future periods are locked unless the policy allows future entry.
func (s *Service) editableTimesheet(ctx context.Context, timesheetID, userID int64) (*Timesheet, Policy, error) {
	ts, err := s.ownedTimesheet(ctx, timesheetID, userID)
	if err != nil {
		return nil, Policy{}, err
	}

	period, err := s.periods.GetPeriod(ctx, ts.PayPeriodID)
	if err != nil {
		return nil, Policy{}, err
	}

	policy, err := s.policies.GetPolicy(ctx)
	if err != nil {
		return nil, Policy{}, err
	}

	now := s.now()
	if !ts.IsEditable(period.EndDate, now) {
		return nil, Policy{}, internal.ErrTimesheetNotEditable
	}
	if !policy.AllowFutureTimeEntry && payperiodStartsAfter(period.StartDate, now) {
		return nil, Policy{}, internal.NewStateError("time entry for a future pay period is locked", internal.ErrCodeTimesheetNotEditable)
	}

	ts.Recalculate(policy)
	return ts, policy, nil
}

func (s *Service) recalculated(ctx context.Context, ts *Timesheet) (*Timesheet, error) {
	policy, err := s.policies.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}
	ts.Recalculate(policy)
	return ts, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish timesheet event", "error", err, "event_type", event.EventType())
	}
}

func validationError(result TimesheetValidation) error {
	violations := result.FieldViolations()
	fieldErrors := make([]internal.ValidationError, len(violations))
	for i, v := range violations {
		fieldErrors[i] = internal.ValidationError{
			Field:   v.Field,
			Message: v.Message,
			Code:    string(internal.ErrCodeValidationFailed),
		}
	}
	return internal.NewValidationFieldErrors("timesheet is not submittable", fieldErrors)
}

func hasApprovalPermissions(userPermissions []string) bool {
	return hasAnyPermission(userPermissions, []string{"approve_timesheets", "reject_timesheets", "admin", "manager"})
}

func hasReportingPermissions(userPermissions []string) bool {
	return hasAnyPermission(userPermissions, []string{"view_reports", "approve_timesheets", "reject_timesheets", "admin", "manager"})
}

func hasAnyPermission(userPermissions, required []string) bool {
	for _, requiredPerm := range required {
		for _, userPerm := range userPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func payperiodStartsAfter(start time.Time, now time.Time) bool {
	sy, sm, sd := start.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := now.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return s.After(today)
}
