package sync_test

import (
	"context"
	"log/slog"
	"os"
	stdsync "sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	tssync "github.com/frahmantamala/timesheet-management/internal/timesheet/sync"
)

func TestSyncEditor(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sync Editor Suite")
}

// fakeTimer records stops and resets instead of scheduling anything.
type fakeTimer struct {
	mu      stdsync.Mutex
	fn      func()
	stopped bool
	resets  int
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return true
}

func (t *fakeTimer) Reset(time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resets++
	return true
}

func (t *fakeTimer) fire() {
	t.mu.Lock()
	stopped := t.stopped
	fn := t.fn
	t.mu.Unlock()
	if !stopped {
		fn()
	}
}

func (t *fakeTimer) resetCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resets
}

func (t *fakeTimer) wasStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeClock struct {
	mu     stdsync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(_ time.Duration, fn func()) tssync.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) timerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *fakeClock) lastTimer() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

// stubRemote answers every propagation immediately with a copy of its base
// snapshot, or with the configured error.
type stubRemote struct {
	mu          stdsync.Mutex
	base        timesheet.Timesheet
	dayErr      error
	submitErr   error
	dayCalls    int
	extraCalls  int
	vacCalls    int
	submitCalls int
	lastDayDTO  timesheet.UpdateDayEntryDTO
}

func (r *stubRemote) UpdateDayEntry(_ context.Context, _ int64, _ timesheet.WeekNumber, _ timesheet.DayOfWeek, dto timesheet.UpdateDayEntryDTO) (*timesheet.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dayCalls++
	r.lastDayDTO = dto
	if r.dayErr != nil {
		return nil, r.dayErr
	}
	resp := r.base
	return &resp, nil
}

func (r *stubRemote) UpdateExtraHours(_ context.Context, _ int64, _ timesheet.UpdateExtraHoursDTO) (*timesheet.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extraCalls++
	resp := r.base
	return &resp, nil
}

func (r *stubRemote) UpdateVacationHours(_ context.Context, _ int64, _ timesheet.UpdateVacationHoursDTO) (*timesheet.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vacCalls++
	resp := r.base
	return &resp, nil
}

func (r *stubRemote) SubmitTimesheet(_ context.Context, _ int64) (*timesheet.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitCalls++
	if r.submitErr != nil {
		return nil, r.submitErr
	}
	resp := r.base
	resp.Status = timesheet.StatusSubmitted
	now := time.Now()
	resp.SubmittedAt = &now
	return &resp, nil
}

func (r *stubRemote) dayCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dayCalls
}

func (r *stubRemote) submitCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitCalls
}

func (r *stubRemote) lastDay() timesheet.UpdateDayEntryDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastDayDTO
}

// blockedCall is one in-flight propagation the test answers explicitly.
type blockedCall struct {
	dto   timesheet.UpdateDayEntryDTO
	reply chan blockedReply
}

type blockedReply struct {
	ts  *timesheet.Timesheet
	err error
}

// blockingRemote parks every day propagation until the test replies, so
// settle order is under test control.
type blockingRemote struct {
	stubRemote
	calls chan *blockedCall
}

func newBlockingRemote(base timesheet.Timesheet) *blockingRemote {
	return &blockingRemote{
		stubRemote: stubRemote{base: base},
		calls:      make(chan *blockedCall, 8),
	}
}

func (r *blockingRemote) UpdateDayEntry(_ context.Context, _ int64, _ timesheet.WeekNumber, _ timesheet.DayOfWeek, dto timesheet.UpdateDayEntryDTO) (*timesheet.Timesheet, error) {
	call := &blockedCall{dto: dto, reply: make(chan blockedReply)}
	r.calls <- call
	rep := <-call.reply
	return rep.ts, rep.err
}

func editorPolicy() timesheet.Policy {
	return timesheet.Policy{
		MaxDailyHours:       12,
		MaxWeeklyHours:      60,
		OvertimeThreshold:   40,
		DoubleTimeThreshold: 50,
		MinStartTime:        timesheet.MustTimeOfDay("05:00"),
		MaxEndTime:          timesheet.MustTimeOfDay("23:00"),
		HolidayHoursDefault: 8,
		PayPeriodLength:     14,
	}
}

func timeVal(s string) *timesheet.TimeOfDay {
	return timesheet.TimeOfDayPtr(timesheet.MustTimeOfDay(s))
}

var _ = Describe("Editor", func() {
	var (
		editor *tssync.Editor
		remote *stubRemote
		clock  *fakeClock
		ctx    context.Context
	)

	newSnapshot := func() *timesheet.Timesheet {
		ts := timesheet.NewTimesheet(10, 1)
		ts.ID = 5
		return ts
	}

	quietLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	rebuild := func(mutate func(*timesheet.Timesheet)) {
		snapshot := newSnapshot()
		if mutate != nil {
			mutate(snapshot)
		}
		remote = &stubRemote{base: *snapshot}
		clock = &fakeClock{}
		editor = tssync.NewEditor(remote, snapshot, editorPolicy(),
			tssync.WithClock(clock),
			tssync.WithLogger(quietLogger))
	}

	// settledMarker stamps the remote's responses so a test can wait for an
	// in-flight propagation to fully settle before driving the timer.
	settledMarker := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	markResponses := func() {
		remote.mu.Lock()
		remote.base.UpdatedAt = settledMarker
		remote.mu.Unlock()
	}
	waitSettled := func() {
		Eventually(func() time.Time { return editor.Remote().UpdatedAt }).Should(Equal(settledMarker))
	}

	BeforeEach(func() {
		rebuild(nil)
		ctx = context.Background()
	})

	AfterEach(func() {
		editor.Close()
	})

	Describe("SetDayTime", func() {
		It("should apply the edit locally with zero latency", func() {
			// When
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())

			// Then the local snapshot reflects the edit before any propagation settles
			local := editor.Local()
			day := local.Week1.Day(timesheet.Monday)
			Expect(day.StartTime).NotTo(BeNil())
			Expect(day.TotalHours).To(Equal(8.0))
			Expect(local.Week1.TotalHours).To(Equal(8.0))

			Eventually(remote.dayCallCount).Should(Equal(2))
		})

		It("should arm the debounce timer once and reset it on further edits", func() {
			// When
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Tuesday, tssync.FieldStartTime, timeVal("08:00"))).To(Succeed())

			// Then one timer exists and later edits reset it
			Expect(clock.timerCount()).To(Equal(1))
			Expect(clock.lastTimer().resetCount()).To(Equal(2))
		})

		It("should reject an unknown field", func() {
			err := editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.TimeField("break_time"), timeVal("09:00"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("auto-submit", func() {
		It("should submit after the quiet period when all pairs are complete", func() {
			// Given a day needing only its end time to complete the pair
			rebuild(func(ts *timesheet.Timesheet) {
				ts.Week1.Day(timesheet.Monday).StartTime = timeVal("09:00")
			})
			markResponses()
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())
			waitSettled()

			// When the quiet period elapses
			clock.lastTimer().fire()

			// Then
			Expect(remote.submitCallCount()).To(Equal(1))
			Expect(editor.Local().Status).To(Equal(timesheet.StatusSubmitted))
			Expect(editor.Remote().Status).To(Equal(timesheet.StatusSubmitted))
		})

		It("should skip entirely while any pair is incomplete", func() {
			// Given a start time with no end time
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())

			// When
			clock.lastTimer().fire()

			// Then no submission attempt is made
			Expect(remote.submitCallCount()).To(Equal(0))
			Expect(editor.Local().Status).To(Equal(timesheet.StatusDraft))
		})

		It("should skip when the sheet is not a draft", func() {
			// Given a sheet already out of the employee's hands
			rebuild(func(ts *timesheet.Timesheet) {
				ts.Status = timesheet.StatusSubmitted
			})
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())

			// When
			clock.lastTimer().fire()

			// Then no submission attempt is made
			Expect(remote.submitCallCount()).To(Equal(0))
		})

		It("should not fire after Close", func() {
			// Given
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())
			timer := clock.lastTimer()

			// When
			editor.Close()
			timer.fire()

			// Then
			Expect(timer.wasStopped()).To(BeTrue())
			Expect(remote.submitCallCount()).To(Equal(0))
		})

		It("should flag the offending fields when the server rejects the submission", func() {
			// Given
			remote.submitErr = internal.NewValidationFieldErrors("timesheet is not submittable", []internal.ValidationError{
				{Field: "week1.tuesday", Message: "start and end time must both be entered"},
			})
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())

			// When
			clock.lastTimer().fire()

			// Then the failure maps onto the named field and local state is kept
			msg, ok := editor.FieldError("week1.tuesday")
			Expect(ok).To(BeTrue())
			Expect(msg).To(ContainSubstring("both be entered"))
			Expect(editor.Local().Status).To(Equal(timesheet.StatusDraft))
		})
	})

	Describe("SetDayType", func() {
		It("should clear times locally and propagate without arming the timer", func() {
			// Given an existing complete day whose propagations have settled
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())
			Eventually(remote.dayCallCount).Should(Equal(2))
			timersBefore := clock.timerCount()

			// When
			Expect(editor.SetDayType(ctx, timesheet.Week1, timesheet.Monday, timesheet.DayTypeVacation)).To(Succeed())

			// Then
			local := editor.Local()
			day := local.Week1.Day(timesheet.Monday)
			Expect(day.StartTime).To(BeNil())
			Expect(day.EndTime).To(BeNil())
			Expect(day.TotalHours).To(Equal(8.0))
			Expect(clock.timerCount()).To(Equal(timersBefore))

			Eventually(func() string { return remote.lastDay().DayType }).Should(Equal(string(timesheet.DayTypeVacation)))
		})

		It("should cancel a pending auto-submit timer", func() {
			// Given a complete day with the debounce armed
			rebuild(func(ts *timesheet.Timesheet) {
				ts.Week1.Day(timesheet.Monday).StartTime = timeVal("09:00")
			})
			markResponses()
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())
			waitSettled()
			timer := clock.lastTimer()

			// When the day is reclassified before the quiet period elapses
			Expect(editor.SetDayType(ctx, timesheet.Week1, timesheet.Monday, timesheet.DayTypeSick)).To(Succeed())
			timer.fire()

			// Then the stale timer never submits
			Expect(timer.wasStopped()).To(BeTrue())
			Expect(remote.submitCallCount()).To(Equal(0))
			Expect(editor.Local().Status).To(Equal(timesheet.StatusDraft))
		})

		It("should reject an invalid day type", func() {
			err := editor.SetDayType(ctx, timesheet.Week1, timesheet.Monday, timesheet.DayType("weekend"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDayType))
		})
	})

	Describe("SetExtraHours and SetVacationHours", func() {
		It("should update local totals and propagate immediately", func() {
			// When
			Expect(editor.SetExtraHours(ctx, timesheet.Week2, 3)).To(Succeed())
			Expect(editor.SetVacationHours(ctx, 16)).To(Succeed())

			// Then
			local := editor.Local()
			Expect(local.Week2.ExtraHours).To(Equal(3.0))
			Expect(local.Week2.TotalHours).To(Equal(3.0))
			Expect(local.VacationHours).To(Equal(16.0))

			Eventually(func() int {
				remote.mu.Lock()
				defer remote.mu.Unlock()
				return remote.extraCalls + remote.vacCalls
			}).Should(Equal(2))
		})

		It("should reject negative values before touching local state", func() {
			Expect(editor.SetExtraHours(ctx, timesheet.Week1, -1)).To(HaveOccurred())
			Expect(editor.SetVacationHours(ctx, -4)).To(HaveOccurred())
			Expect(editor.Local().Week1.ExtraHours).To(Equal(0.0))
			Expect(editor.Local().VacationHours).To(Equal(0.0))
		})
	})

	Describe("rejected propagation", func() {
		It("should keep the optimistic value and flag the field", func() {
			// Given
			remote.dayErr = internal.NewStateError("timesheet can no longer be edited", internal.ErrCodeTimesheetNotEditable)

			// When
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())

			// Then the typed value survives and the field carries the error
			Eventually(func() bool {
				_, ok := editor.FieldError("week1.monday")
				return ok
			}).Should(BeTrue())

			local := editor.Local()
			day := local.Week1.Day(timesheet.Monday)
			Expect(day.StartTime).NotTo(BeNil())
			Expect(day.StartTime.String()).To(Equal("09:00"))

			// And dismissing clears the flag
			editor.DismissFieldError("week1.monday")
			_, ok := editor.FieldError("week1.monday")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("superseded propagation", func() {
		It("should drop a stale in-flight result once a newer edit exists", func() {
			// Given a remote whose replies the test controls
			snapshot := newSnapshot()
			blocking := newBlockingRemote(*snapshot)
			editor = tssync.NewEditor(blocking, snapshot, editorPolicy(),
				tssync.WithClock(clock),
				tssync.WithLogger(quietLogger))

			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())
			var first *blockedCall
			Eventually(blocking.calls).Should(Receive(&first))

			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("10:00"))).To(Succeed())
			var second *blockedCall
			Eventually(blocking.calls).Should(Receive(&second))

			// When the stale propagation fails after being superseded
			first.reply <- blockedReply{err: internal.NewStateError("stale", internal.ErrCodePropagationRejected)}

			resp := blocking.base
			resp.UpdatedAt = time.Now()
			second.reply <- blockedReply{ts: &resp}

			// Then the stale failure never flags the field
			Eventually(func() time.Time { return editor.Remote().UpdatedAt }).Should(Equal(resp.UpdatedAt))
			Consistently(func() int { return len(editor.FieldErrors()) }).Should(Equal(0))

			// And the newest local value is the one kept
			local := editor.Local()
			Expect(local.Week1.Day(timesheet.Monday).StartTime.String()).To(Equal("10:00"))
		})
	})

	Describe("Submit", func() {
		It("should bypass the debounce and stop any pending timer", func() {
			// Given
			rebuild(func(ts *timesheet.Timesheet) {
				ts.Week1.Day(timesheet.Monday).StartTime = timeVal("09:00")
			})
			markResponses()
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())
			waitSettled()
			timer := clock.lastTimer()

			// When
			Expect(editor.Submit(ctx)).To(Succeed())

			// Then
			Expect(timer.wasStopped()).To(BeTrue())
			Expect(remote.submitCallCount()).To(Equal(1))
			Expect(editor.Local().Status).To(Equal(timesheet.StatusSubmitted))
			Expect(editor.Local().SubmittedAt).NotTo(BeNil())
		})

		It("should surface a rejection without reverting local edits", func() {
			// Given
			remote.submitErr = internal.NewStateError("only a draft timesheet can be submitted", internal.ErrCodeIllegalTransition)
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldEndTime, timeVal("17:00"))).To(Succeed())

			// When
			err := editor.Submit(ctx)

			// Then
			Expect(err).To(HaveOccurred())
			local := editor.Local()
			Expect(local.Week1.Day(timesheet.Monday).StartTime).NotTo(BeNil())
			_, flagged := editor.FieldError("timesheet")
			Expect(flagged).To(BeTrue())
		})
	})

	Describe("server-owned fields", func() {
		It("should adopt only status, submittedAt, period and updatedAt from responses", func() {
			// Given a server response that disagrees with the local day fields
			remote.mu.Lock()
			remote.base.UpdatedAt = time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
			*remote.base.Week1.Day(timesheet.Monday) = timesheet.DayEntry{
				Day:       timesheet.Monday,
				DayType:   timesheet.DayTypeRegular,
				StartTime: timeVal("06:00"),
				EndTime:   timeVal("14:00"),
			}
			remote.mu.Unlock()

			// When
			Expect(editor.SetDayTime(ctx, timesheet.Week1, timesheet.Monday, tssync.FieldStartTime, timeVal("09:00"))).To(Succeed())

			// Then the server timestamp is adopted but the local edit is not reverted
			Eventually(func() time.Time { return editor.Local().UpdatedAt }).Should(
				Equal(time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)))
			local := editor.Local()
			Expect(local.Week1.Day(timesheet.Monday).StartTime.String()).To(Equal("09:00"))
		})
	})
})
