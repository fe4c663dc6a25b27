package timesheet

import (
	"time"
)

// Status is the lifecycle state of a timesheet.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// DayEntry is one day's raw time fields plus the derived hours. Invariant:
// start/end are both present or both absent, and likewise the lunch pair;
// a non-Regular day has all four time fields cleared.
type DayEntry struct {
	Day            DayOfWeek  `json:"day_of_week"`
	DayType        DayType    `json:"day_type"`
	StartTime      *TimeOfDay `json:"start_time"`
	EndTime        *TimeOfDay `json:"end_time"`
	LunchStartTime *TimeOfDay `json:"lunch_start_time"`
	LunchEndTime   *TimeOfDay `json:"lunch_end_time"`
	TotalHours     float64    `json:"total_hours"`
}

// HasCompletePairs reports whether both time pairs are complete or absent.
// The debounced auto-submit waits for this before treating an edit as
// submit-worthy.
func (e DayEntry) HasCompletePairs() bool {
	if (e.StartTime == nil) != (e.EndTime == nil) {
		return false
	}
	if (e.LunchStartTime == nil) != (e.LunchEndTime == nil) {
		return false
	}
	return true
}

// ClearTimes drops all four time fields. Applied when a day is classified
// as vacation, sick or holiday.
func (e *DayEntry) ClearTimes() {
	e.StartTime = nil
	e.EndTime = nil
	e.LunchStartTime = nil
	e.LunchEndTime = nil
}

// WeekEntry is exactly five days, Monday through Friday, plus a manually
// entered extra-hours adjustment.
type WeekEntry struct {
	Days       [DaysPerWeek]DayEntry `json:"days"`
	ExtraHours float64               `json:"extra_hours"`
	TotalHours float64               `json:"total_hours"`
}

// NewWeekEntry returns a week of zero-hour Regular days in fixed order.
func NewWeekEntry() WeekEntry {
	var week WeekEntry
	for i := range week.Days {
		week.Days[i] = DayEntry{Day: DayOfWeek(i), DayType: DayTypeRegular}
	}
	return week
}

func (w *WeekEntry) Day(day DayOfWeek) *DayEntry {
	return &w.Days[day]
}

// WeekNumber selects one of the two weeks of a pay period.
type WeekNumber int

const (
	Week1 WeekNumber = 1
	Week2 WeekNumber = 2
)

func (n WeekNumber) Valid() bool {
	return n == Week1 || n == Week2
}

// Timesheet is the two-week record bound to exactly one pay period per
// user. It owns total computation and the mutation surface used by the
// lifecycle.
type Timesheet struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	PayPeriodID   int64      `json:"pay_period_id"`
	Status        Status     `json:"status"`
	VacationHours float64    `json:"vacation_hours"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	Week1         WeekEntry  `json:"week1"`
	Week2         WeekEntry  `json:"week2"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewTimesheet returns a draft timesheet with all days defaulted to
// zero-hour Regular entries, as created on first access for a period.
func NewTimesheet(userID, payPeriodID int64) *Timesheet {
	now := time.Now()
	return &Timesheet{
		UserID:      userID,
		PayPeriodID: payPeriodID,
		Status:      StatusDraft,
		Week1:       NewWeekEntry(),
		Week2:       NewWeekEntry(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (t *Timesheet) Week(n WeekNumber) *WeekEntry {
	if n == Week2 {
		return &t.Week2
	}
	return &t.Week1
}

// TotalHours is the sum of both week totals.
func (t *Timesheet) TotalHours() float64 {
	return t.Week1.TotalHours + t.Week2.TotalHours
}

// Recalculate recomputes every day's hours and both week totals from the
// raw fields under the given policy.
func (t *Timesheet) Recalculate(policy Policy) {
	RecalculateWeek(&t.Week1, policy)
	RecalculateWeek(&t.Week2, policy)
}

func (t *Timesheet) CanSubmit() bool {
	return t.Status == StatusDraft
}

func (t *Timesheet) CanRecall() bool {
	return t.Status == StatusSubmitted
}

func (t *Timesheet) CanApprove() bool {
	return t.Status == StatusSubmitted
}

func (t *Timesheet) CanReject() bool {
	return t.Status == StatusSubmitted
}

// IsEditable reports whether field edits are still accepted. A draft whose
// pay period fully elapsed is frozen: only recall/resubmit of what already
// exists is allowed.
func (t *Timesheet) IsEditable(periodEnd time.Time, now time.Time) bool {
	if t.Status != StatusDraft {
		return false
	}
	return !PeriodElapsed(periodEnd, now)
}

// PeriodElapsed compares calendar dates, not instants: the period is
// elapsed only once its end date is strictly before today's date.
func PeriodElapsed(periodEnd time.Time, now time.Time) bool {
	endY, endM, endD := periodEnd.Date()
	end := time.Date(endY, endM, endD, 0, 0, 0, 0, time.UTC)
	nowY, nowM, nowD := now.Date()
	today := time.Date(nowY, nowM, nowD, 0, 0, 0, 0, time.UTC)
	return end.Before(today)
}

// Submit marks the timesheet submitted at the given instant. Callers must
// have validated first; Submit itself only guards the transition.
func (t *Timesheet) Submit(now time.Time) bool {
	if !t.CanSubmit() {
		return false
	}
	t.Status = StatusSubmitted
	t.SubmittedAt = &now
	t.UpdatedAt = now
	return true
}

// Recall returns a submitted timesheet to draft and clears SubmittedAt.
func (t *Timesheet) Recall(now time.Time) bool {
	if !t.CanRecall() {
		return false
	}
	t.Status = StatusDraft
	t.SubmittedAt = nil
	t.UpdatedAt = now
	return true
}

func (t *Timesheet) Approve(now time.Time) bool {
	if !t.CanApprove() {
		return false
	}
	t.Status = StatusApproved
	t.UpdatedAt = now
	return true
}

func (t *Timesheet) Reject(now time.Time) bool {
	if !t.CanReject() {
		return false
	}
	t.Status = StatusRejected
	t.UpdatedAt = now
	return true
}
