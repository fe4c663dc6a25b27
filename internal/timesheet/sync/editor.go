// Package sync reconciles client-held optimistic timesheet edits with the
// server-held record. Edits land on a local snapshot and recompute totals
// immediately; propagation to the server happens asynchronously, with a
// debounced submission pass after time-field edits go quiet.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// DefaultQuietPeriod is how long edits must pause before an auto-submit
// attempt fires.
const DefaultQuietPeriod = 2 * time.Second

// TimeField names one of the four editable time slots on a day entry.
type TimeField string

const (
	FieldStartTime      TimeField = "start_time"
	FieldEndTime        TimeField = "end_time"
	FieldLunchStartTime TimeField = "lunch_start_time"
	FieldLunchEndTime   TimeField = "lunch_end_time"
)

func (f TimeField) Valid() bool {
	switch f {
	case FieldStartTime, FieldEndTime, FieldLunchStartTime, FieldLunchEndTime:
		return true
	}
	return false
}

// RemoteAPI is the server surface the editor propagates edits to. The
// server copy stays the source of truth for the pay period, authorization
// and lifecycle status.
type RemoteAPI interface {
	UpdateDayEntry(ctx context.Context, timesheetID int64, week timesheet.WeekNumber, day timesheet.DayOfWeek, dto timesheet.UpdateDayEntryDTO) (*timesheet.Timesheet, error)
	UpdateExtraHours(ctx context.Context, timesheetID int64, dto timesheet.UpdateExtraHoursDTO) (*timesheet.Timesheet, error)
	UpdateVacationHours(ctx context.Context, timesheetID int64, dto timesheet.UpdateVacationHoursDTO) (*timesheet.Timesheet, error)
	SubmitTimesheet(ctx context.Context, timesheetID int64) (*timesheet.Timesheet, error)
}

// Editor holds two value snapshots of one timesheet: the local copy that
// absorbs optimistic edits, and the remote copy reflecting the last state
// the server acknowledged. A rejected propagation keeps the local change
// and flags the field instead of reverting typed input.
type Editor struct {
	mu     stdsync.Mutex
	remote RemoteAPI
	policy timesheet.Policy
	clock  Clock
	quiet  time.Duration
	logger *slog.Logger

	local      *timesheet.Timesheet
	serverCopy *timesheet.Timesheet

	// Per-field sequence numbers. A propagation result is applied only if
	// its sequence still matches: a newer edit to the same field
	// supersedes any in-flight propagation.
	seq         map[string]uint64
	fieldErrors map[string]string

	timer  Timer
	closed bool
}

type Option func(*Editor)

func WithClock(c Clock) Option {
	return func(e *Editor) { e.clock = c }
}

func WithQuietPeriod(d time.Duration) Option {
	return func(e *Editor) { e.quiet = d }
}

func WithLogger(lg *slog.Logger) Option {
	return func(e *Editor) { e.logger = lg }
}

// NewEditor starts an editing session over the given server snapshot.
func NewEditor(remote RemoteAPI, snapshot *timesheet.Timesheet, policy timesheet.Policy, opts ...Option) *Editor {
	local := *snapshot
	serverCopy := *snapshot

	e := &Editor{
		remote:      remote,
		policy:      policy,
		clock:       NewClock(),
		quiet:       DefaultQuietPeriod,
		logger:      slog.Default(),
		local:       &local,
		serverCopy:  &serverCopy,
		seq:         make(map[string]uint64),
		fieldErrors: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Local returns a copy of the optimistic snapshot.
func (e *Editor) Local() timesheet.Timesheet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.local
}

// Remote returns a copy of the last server-acknowledged snapshot.
func (e *Editor) Remote() timesheet.Timesheet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.serverCopy
}

// FieldError reports the error flag attached to a field path, if any.
func (e *Editor) FieldError(path string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg, ok := e.fieldErrors[path]
	return msg, ok
}

// FieldErrors returns a copy of all outstanding field error flags.
func (e *Editor) FieldErrors() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.fieldErrors))
	for k, v := range e.fieldErrors {
		out[k] = v
	}
	return out
}

// DismissFieldError clears one field's error flag.
func (e *Editor) DismissFieldError(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.fieldErrors, path)
}

// SetDayTime applies one time-field edit, recomputes totals, propagates the
// changed day, and arms (or resets) the auto-submit timer.
func (e *Editor) SetDayTime(ctx context.Context, week timesheet.WeekNumber, day timesheet.DayOfWeek, field TimeField, value *timesheet.TimeOfDay) error {
	if !week.Valid() {
		return internal.NewValidationError("week must be 1 or 2", internal.ErrCodeInvalidWeek)
	}
	if !day.Valid() {
		return internal.NewValidationError("day must be monday through friday", internal.ErrCodeValidationFailed)
	}
	if !field.Valid() {
		return internal.NewValidationError("unknown time field", internal.ErrCodeValidationFailed)
	}

	e.mu.Lock()
	entry := e.local.Week(week).Day(day)
	switch field {
	case FieldStartTime:
		entry.StartTime = value
	case FieldEndTime:
		entry.EndTime = value
	case FieldLunchStartTime:
		entry.LunchStartTime = value
	case FieldLunchEndTime:
		entry.LunchEndTime = value
	}
	e.local.Recalculate(e.policy)

	path := dayPath(week, day)
	seq := e.bump(path)
	delete(e.fieldErrors, path)
	snapshot := *entry
	e.armTimerLocked()
	e.mu.Unlock()

	go e.propagateDay(ctx, week, day, snapshot, path, seq)
	return nil
}

// SetDayType reclassifies a day. Non-Regular types clear the time fields
// and pin the policy default hours; the change propagates immediately and
// cancels any pending auto-submit timer without rearming it.
func (e *Editor) SetDayType(ctx context.Context, week timesheet.WeekNumber, day timesheet.DayOfWeek, dayType timesheet.DayType) error {
	if !week.Valid() {
		return internal.NewValidationError("week must be 1 or 2", internal.ErrCodeInvalidWeek)
	}
	if !day.Valid() {
		return internal.NewValidationError("day must be monday through friday", internal.ErrCodeValidationFailed)
	}
	if !dayType.Valid() {
		return internal.NewValidationError("invalid day type", internal.ErrCodeInvalidDayType)
	}

	e.mu.Lock()
	entry := e.local.Week(week).Day(day)
	entry.DayType = dayType
	if !dayType.IsRegular() {
		entry.ClearTimes()
	}
	e.local.Recalculate(e.policy)

	path := dayPath(week, day)
	seq := e.bump(path)
	delete(e.fieldErrors, path)
	snapshot := *entry
	e.cancelTimerLocked()
	e.mu.Unlock()

	go e.propagateDay(ctx, week, day, snapshot, path, seq)
	return nil
}

// SetExtraHours sets one week's manual adjustment and propagates it
// immediately.
func (e *Editor) SetExtraHours(ctx context.Context, week timesheet.WeekNumber, hours float64) error {
	dto := timesheet.UpdateExtraHoursDTO{Week: int(week), ExtraHours: hours}
	if err := dto.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.local.Week(week).ExtraHours = hours
	e.local.Recalculate(e.policy)

	path := fmt.Sprintf("week%d.extra_hours", week)
	seq := e.bump(path)
	delete(e.fieldErrors, path)
	timesheetID := e.local.ID
	e.cancelTimerLocked()
	e.mu.Unlock()

	go func() {
		updated, err := e.remote.UpdateExtraHours(ctx, timesheetID, dto)
		e.settle(path, seq, updated, err)
	}()
	return nil
}

// SetVacationHours sets the period-level vacation balance and propagates it
// immediately.
func (e *Editor) SetVacationHours(ctx context.Context, hours float64) error {
	dto := timesheet.UpdateVacationHoursDTO{VacationHours: hours}
	if err := dto.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.local.VacationHours = hours

	path := "vacation_hours"
	seq := e.bump(path)
	delete(e.fieldErrors, path)
	timesheetID := e.local.ID
	e.cancelTimerLocked()
	e.mu.Unlock()

	go func() {
		updated, err := e.remote.UpdateVacationHours(ctx, timesheetID, dto)
		e.settle(path, seq, updated, err)
	}()
	return nil
}

// Submit forces an immediate submission attempt, bypassing the debounce.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	e.cancelTimerLocked()
	timesheetID := e.local.ID
	e.mu.Unlock()

	updated, err := e.remote.SubmitTimesheet(ctx, timesheetID)
	if err != nil {
		e.recordSubmitFailure(err)
		return err
	}

	e.mu.Lock()
	e.adoptLocked(updated)
	e.mu.Unlock()
	return nil
}

// Close cancels any pending auto-submit timer. In-flight propagations
// still settle.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cancelTimerLocked()
}

// cancelTimerLocked drops a pending auto-submit timer. Every new edit
// cancels the debounce; only time-field edits rearm it. Callers hold e.mu.
func (e *Editor) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// armTimerLocked starts or resets the debounce timer. Callers hold e.mu.
func (e *Editor) armTimerLocked() {
	if e.closed {
		return
	}
	if e.timer != nil {
		e.timer.Reset(e.quiet)
		return
	}
	e.timer = e.clock.AfterFunc(e.quiet, e.autoSubmit)
}

// autoSubmit fires after the quiet period. It skips entirely while any day
// has an incomplete time pair, and while the sheet is not a submittable
// draft.
func (e *Editor) autoSubmit() {
	e.mu.Lock()
	e.timer = nil
	if e.closed || !e.local.CanSubmit() || e.hasIncompletePairLocked() {
		e.mu.Unlock()
		return
	}
	timesheetID := e.local.ID
	e.mu.Unlock()

	updated, err := e.remote.SubmitTimesheet(context.Background(), timesheetID)
	if err != nil {
		e.logger.Warn("auto-submit attempt rejected", "timesheet_id", timesheetID, "error", err)
		e.recordSubmitFailure(err)
		return
	}

	e.mu.Lock()
	e.adoptLocked(updated)
	e.mu.Unlock()

	e.logger.Info("timesheet auto-submitted", "timesheet_id", timesheetID)
}

func (e *Editor) hasIncompletePairLocked() bool {
	for _, week := range []*timesheet.WeekEntry{&e.local.Week1, &e.local.Week2} {
		for _, d := range week.Days {
			if !d.HasCompletePairs() {
				return true
			}
		}
	}
	return false
}

func (e *Editor) propagateDay(ctx context.Context, week timesheet.WeekNumber, day timesheet.DayOfWeek, entry timesheet.DayEntry, path string, seq uint64) {
	dto := timesheet.UpdateDayEntryDTO{
		DayType:        string(entry.DayType),
		StartTime:      timeString(entry.StartTime),
		EndTime:        timeString(entry.EndTime),
		LunchStartTime: timeString(entry.LunchStartTime),
		LunchEndTime:   timeString(entry.LunchEndTime),
	}

	updated, err := e.remote.UpdateDayEntry(ctx, e.timesheetID(), week, day, dto)
	e.settle(path, seq, updated, err)
}

// settle applies a propagation result. A result whose sequence was
// superseded by a newer edit is dropped; a rejection flags the field and
// keeps the optimistic local value.
func (e *Editor) settle(path string, seq uint64, updated *timesheet.Timesheet, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seq[path] != seq {
		return
	}

	if err != nil {
		e.fieldErrors[path] = err.Error()
		e.logger.Warn("edit propagation rejected", "field", path, "error", err)
		return
	}

	e.adoptLocked(updated)
}

// adoptLocked takes a server response as the new remote snapshot and copies
// the server-owned fields onto the local copy. Day, week and vacation
// fields stay local so optimistic edits are never silently reverted.
func (e *Editor) adoptLocked(updated *timesheet.Timesheet) {
	if updated == nil {
		return
	}
	serverCopy := *updated
	e.serverCopy = &serverCopy

	e.local.Status = updated.Status
	e.local.SubmittedAt = updated.SubmittedAt
	e.local.PayPeriodID = updated.PayPeriodID
	e.local.UpdatedAt = updated.UpdatedAt
}

func (e *Editor) recordSubmitFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if appErr, ok := internal.IsAppError(err); ok {
		if violations, ok := appErr.Details.(internal.ValidationErrors); ok && len(violations.Errors) > 0 {
			for _, detail := range violations.Errors {
				e.fieldErrors[detail.Field] = detail.Message
			}
			return
		}
	}
	e.fieldErrors["timesheet"] = err.Error()
}

func (e *Editor) bump(path string) uint64 {
	e.seq[path]++
	return e.seq[path]
}

func (e *Editor) timesheetID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.local.ID
}

func dayPath(week timesheet.WeekNumber, day timesheet.DayOfWeek) string {
	return fmt.Sprintf("week%d.%s", week, day)
}

func timeString(t *timesheet.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}
