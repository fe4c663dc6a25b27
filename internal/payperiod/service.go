package payperiod

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

// RepositoryAPI defines the data access methods for pay periods. Create
// must be an atomic insert-if-absent keyed by the period start date, never
// a read-then-write sequence.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*PayPeriod, error)
	FindCovering(ctx context.Context, date time.Time) (*PayPeriod, error)
	Create(ctx context.Context, period *PayPeriod) error
	List(ctx context.Context, limit, offset int) ([]*PayPeriod, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ResolveCurrentPeriod finds the period covering the reference date,
// deriving and persisting it lazily when none exists yet. Resolution is
// idempotent per date: a creation conflict means another resolution won the
// race, so the existing row is re-read once and returned.
func (s *Service) ResolveCurrentPeriod(ctx context.Context, ref time.Time) (*PayPeriod, error) {
	date := Normalize(ref)

	period, err := s.repo.FindCovering(ctx, date)
	if err == nil {
		return period, nil
	}
	if appErr, ok := internal.IsAppError(err); !ok || appErr.Type != internal.ErrorTypeNotFound {
		s.logger.Error("pay period lookup failed", "error", err, "date", date)
		return nil, err
	}

	derived := Derive(date)
	derived.CreatedAt = time.Now()
	if err := s.repo.Create(ctx, &derived); err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeConflict {
			s.logger.Info("pay period creation raced, re-reading",
				"start_date", derived.StartDate, "end_date", derived.EndDate)
			return s.repo.FindCovering(ctx, date)
		}
		s.logger.Error("pay period creation failed", "error", err, "start_date", derived.StartDate)
		return nil, err
	}

	s.logger.Info("pay period created",
		"pay_period_id", derived.ID,
		"start_date", derived.StartDate.Format("2006-01-02"),
		"end_date", derived.EndDate.Format("2006-01-02"))

	return &derived, nil
}

func (s *Service) GetPeriod(ctx context.Context, id int64) (*PayPeriod, error) {
	period, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get pay period", "error", err, "pay_period_id", id)
		return nil, internal.ErrPayPeriodNotFound
	}
	return period, nil
}

func (s *Service) ListPeriods(ctx context.Context, limit, offset int) ([]*PayPeriod, error) {
	periods, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list pay periods", "error", err)
		return nil, err
	}
	return periods, nil
}
