package payperiod

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ResolveCurrentPeriod(ctx context.Context, ref time.Time) (*PayPeriod, error)
	GetPeriod(ctx context.Context, id int64) (*PayPeriod, error)
	ListPeriods(ctx context.Context, limit, offset int) ([]*PayPeriod, error)
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

// GetCurrent handles GET /pay-periods/current, resolving (and lazily
// creating) the period covering today or an explicit ?date.
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ref := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	period, err := h.Service.ResolveCurrentPeriod(r.Context(), ref)
	if err != nil {
		h.Logger.Error("GetCurrent: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, period)
}

// GetPeriod handles GET /pay-periods/{id}
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid pay period id")
		return
	}

	period, err := h.Service.GetPeriod(r.Context(), id)
	if err != nil {
		h.Logger.Error("GetPeriod: service error", "error", err, "pay_period_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, period)
}

// ListPeriods handles GET /pay-periods
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	periods, err := h.Service.ListPeriods(r.Context(), limit, offset)
	if err != nil {
		h.Logger.Error("ListPeriods: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, periods)
}
