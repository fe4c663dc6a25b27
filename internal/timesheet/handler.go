package timesheet

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/payperiod"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetCurrentTimesheet(ctx context.Context, userID int64, ref time.Time) (*Timesheet, *payperiod.PayPeriod, error)
	GetTimesheet(ctx context.Context, id, userID int64, isManager bool) (*Timesheet, error)
	UpdateDayEntry(ctx context.Context, timesheetID int64, week WeekNumber, day DayOfWeek, dto UpdateDayEntryDTO, userID int64) (*Timesheet, error)
	UpdateExtraHours(ctx context.Context, timesheetID int64, dto UpdateExtraHoursDTO, userID int64) (*Timesheet, error)
	UpdateVacationHours(ctx context.Context, timesheetID int64, dto UpdateVacationHoursDTO, userID int64) (*Timesheet, error)
	Validate(ctx context.Context, timesheetID, userID int64, isManager bool) (TimesheetValidation, error)
	SubmitTimesheet(ctx context.Context, timesheetID, userID int64) (*Timesheet, error)
	RecallTimesheet(ctx context.Context, timesheetID, userID int64) (*Timesheet, error)
	ApproveTimesheet(ctx context.Context, timesheetID, adminID int64, userPermissions []string) (*Timesheet, error)
	RejectTimesheet(ctx context.Context, timesheetID, adminID int64, userPermissions []string) (*Timesheet, error)
	PeriodSummary(ctx context.Context, payPeriodID int64, userPermissions []string) ([]UserPeriodSummary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// CurrentTimesheetResponse pairs the timesheet with its enclosing pay period
// so the client needs one round trip on load.
type CurrentTimesheetResponse struct {
	Timesheet *Timesheet           `json:"timesheet"`
	PayPeriod *payperiod.PayPeriod `json:"pay_period"`
}

// GetCurrent handles GET /timesheets/current. An optional ?date=YYYY-MM-DD
// selects the period enclosing that date instead of today.
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ref := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	ts, period, err := h.Service.GetCurrentTimesheet(r.Context(), user.ID, ref)
	if err != nil {
		h.Logger.Error("GetCurrent: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CurrentTimesheetResponse{Timesheet: ts, PayPeriod: period})
}

// GetTimesheet handles GET /timesheets/{id}
func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	timesheetID, err := h.timesheetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	ts, err := h.Service.GetTimesheet(r.Context(), timesheetID, user.ID, user.IsAdmin())
	if err != nil {
		h.Logger.Error("GetTimesheet: service error", "error", err, "timesheet_id", timesheetID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ts)
}

// UpdateDay handles PUT /timesheets/{id}/weeks/{week}/days/{day}
func (h *Handler) UpdateDay(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	timesheetID, err := h.timesheetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	weekNum, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid week number")
		return
	}

	day, err := ParseDayOfWeek(chi.URLParam(r, "day"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid day of week")
		return
	}

	var dto UpdateDayEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ts, err := h.Service.UpdateDayEntry(r.Context(), timesheetID, WeekNumber(weekNum), day, dto, user.ID)
	if err != nil {
		h.Logger.Error("UpdateDay: service error", "error", err,
			"timesheet_id", timesheetID, "week", weekNum, "day", day.String())
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ts)
}

// UpdateExtraHours handles PATCH /timesheets/{id}/extra-hours
func (h *Handler) UpdateExtraHours(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	timesheetID, err := h.timesheetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	var dto UpdateExtraHoursDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ts, err := h.Service.UpdateExtraHours(r.Context(), timesheetID, dto, user.ID)
	if err != nil {
		h.Logger.Error("UpdateExtraHours: service error", "error", err, "timesheet_id", timesheetID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ts)
}

// UpdateVacationHours handles PATCH /timesheets/{id}/vacation-hours
func (h *Handler) UpdateVacationHours(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	timesheetID, err := h.timesheetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	var dto UpdateVacationHoursDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ts, err := h.Service.UpdateVacationHours(r.Context(), timesheetID, dto, user.ID)
	if err != nil {
		h.Logger.Error("UpdateVacationHours: service error", "error", err, "timesheet_id", timesheetID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ts)
}

// Validate handles GET /timesheets/{id}/validation
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	timesheetID, err := h.timesheetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	result, err := h.Service.Validate(r.Context(), timesheetID, user.ID, user.IsAdmin())
	if err != nil {
		h.Logger.Error("Validate: service error", "error", err, "timesheet_id", timesheetID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// Submit handles POST /timesheets/{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Submit", func(timesheetID, userID int64, _ []string) (*Timesheet, error) {
		return h.Service.SubmitTimesheet(r.Context(), timesheetID, userID)
	})
}

// Recall handles POST /timesheets/{id}/recall
func (h *Handler) Recall(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Recall", func(timesheetID, userID int64, _ []string) (*Timesheet, error) {
		return h.Service.RecallTimesheet(r.Context(), timesheetID, userID)
	})
}

// Approve handles POST /timesheets/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Approve", func(timesheetID, userID int64, perms []string) (*Timesheet, error) {
		return h.Service.ApproveTimesheet(r.Context(), timesheetID, userID, perms)
	})
}

// Reject handles POST /timesheets/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Reject", func(timesheetID, userID int64, perms []string) (*Timesheet, error) {
		return h.Service.RejectTimesheet(r.Context(), timesheetID, userID, perms)
	})
}

// PeriodSummary handles GET /pay-periods/{id}/summary
func (h *Handler) PeriodSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	payPeriodID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid pay period id")
		return
	}

	summaries, err := h.Service.PeriodSummary(r.Context(), payPeriodID, user.Permissions)
	if err != nil {
		h.Logger.Error("PeriodSummary: service error", "error", err, "pay_period_id", payPeriodID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summaries)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string, fn func(timesheetID, userID int64, perms []string) (*Timesheet, error)) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	timesheetID, err := h.timesheetID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	ts, err := fn(timesheetID, user.ID, user.Permissions)
	if err != nil {
		h.Logger.Error(op+": service error", "error", err, "timesheet_id", timesheetID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ts)
}

func (h *Handler) timesheetID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
