package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	payperiodDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/payperiod"
	"github.com/frahmantamala/timesheet-management/internal/payperiod"
	"gorm.io/gorm"
)

// PayPeriodRepository implements the payperiod.RepositoryAPI interface using GORM
type PayPeriodRepository struct {
	db *gorm.DB
}

func NewPayPeriodRepository(db *gorm.DB) payperiod.RepositoryAPI {
	return &PayPeriodRepository{db: db}
}

func (r *PayPeriodRepository) GetByID(ctx context.Context, id int64) (*payperiod.PayPeriod, error) {
	var row payperiodDatamodel.PayPeriod
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrPayPeriodNotFound
		}
		return nil, err
	}
	return fromDataModel(row), nil
}

// FindCovering looks up the period whose [start_date, end_date] range covers
// the given date, inclusive on both ends.
func (r *PayPeriodRepository) FindCovering(ctx context.Context, date time.Time) (*payperiod.PayPeriod, error) {
	day := payperiod.Normalize(date)

	var row payperiodDatamodel.PayPeriod
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", day, day).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrPayPeriodNotFound
		}
		return nil, err
	}
	return fromDataModel(row), nil
}

// Create inserts the derived period. The unique index on start_date turns a
// concurrent duplicate derivation into a conflict error the service resolves
// by re-reading.
func (r *PayPeriodRepository) Create(ctx context.Context, period *payperiod.PayPeriod) error {
	row := payperiodDatamodel.PayPeriod{
		StartDate: payperiod.Normalize(period.StartDate),
		EndDate:   payperiod.Normalize(period.EndDate),
		CreatedAt: period.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return internal.ErrPayPeriodOverlap
		}
		return err
	}
	period.ID = row.ID
	return nil
}

func (r *PayPeriodRepository) List(ctx context.Context, limit, offset int) ([]*payperiod.PayPeriod, error) {
	var rows []payperiodDatamodel.PayPeriod
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	periods := make([]*payperiod.PayPeriod, len(rows))
	for i, row := range rows {
		periods[i] = fromDataModel(row)
	}
	return periods, nil
}

func fromDataModel(row payperiodDatamodel.PayPeriod) *payperiod.PayPeriod {
	return &payperiod.PayPeriod{
		ID:        row.ID,
		StartDate: payperiod.Normalize(row.StartDate),
		EndDate:   payperiod.Normalize(row.EndDate),
		CreatedAt: row.CreatedAt,
	}
}

// isUniqueViolation matches both the gorm translated error and the raw
// driver message, since sqlite in tests reports duplicates differently from
// postgres.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
