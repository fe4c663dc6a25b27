package payperiod_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/payperiod"
)

func TestPayPeriodService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PayPeriod Service Suite")
}

type mockPayPeriodRepository struct {
	periods     map[int64]*payperiod.PayPeriod
	byStartDate map[time.Time]*payperiod.PayPeriod
	createError error
	findError   error
	findMisses  int
	nextID      int64
}

func newMockPayPeriodRepository() *mockPayPeriodRepository {
	return &mockPayPeriodRepository{
		periods:     make(map[int64]*payperiod.PayPeriod),
		byStartDate: make(map[time.Time]*payperiod.PayPeriod),
		nextID:      1,
	}
}

func (m *mockPayPeriodRepository) GetByID(_ context.Context, id int64) (*payperiod.PayPeriod, error) {
	p, ok := m.periods[id]
	if !ok {
		return nil, internal.ErrPayPeriodNotFound
	}
	return p, nil
}

func (m *mockPayPeriodRepository) FindCovering(_ context.Context, date time.Time) (*payperiod.PayPeriod, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	if m.findMisses > 0 {
		m.findMisses--
		return nil, internal.ErrPayPeriodNotFound
	}
	for _, p := range m.periods {
		if p.Contains(date) {
			return p, nil
		}
	}
	return nil, internal.ErrPayPeriodNotFound
}

func (m *mockPayPeriodRepository) Create(_ context.Context, period *payperiod.PayPeriod) error {
	if m.createError != nil {
		return m.createError
	}
	start := payperiod.Normalize(period.StartDate)
	if _, exists := m.byStartDate[start]; exists {
		return internal.ErrPayPeriodOverlap
	}
	period.ID = m.nextID
	m.nextID++
	m.periods[period.ID] = period
	m.byStartDate[start] = period
	return nil
}

func (m *mockPayPeriodRepository) List(_ context.Context, limit, offset int) ([]*payperiod.PayPeriod, error) {
	var out []*payperiod.PayPeriod
	for _, p := range m.periods {
		out = append(out, p)
	}
	if offset >= len(out) {
		return []*payperiod.PayPeriod{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

var _ = Describe("PayPeriodService", func() {
	var (
		service *payperiod.Service
		repo    *mockPayPeriodRepository
		ctx     context.Context
	)

	// 2025-06-18 is a Wednesday; its period runs 2025-06-16 to 2025-06-29.
	wednesday := time.Date(2025, 6, 18, 10, 30, 0, 0, time.UTC)

	BeforeEach(func() {
		repo = newMockPayPeriodRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = payperiod.NewService(repo, logger)
		ctx = context.Background()
	})

	Describe("ResolveCurrentPeriod", func() {
		Context("when no period covers the date", func() {
			It("should derive and persist a 14-day window starting Monday", func() {
				// When
				period, err := service.ResolveCurrentPeriod(ctx, wednesday)

				// Then
				Expect(err).NotTo(HaveOccurred())
				Expect(period.ID).NotTo(BeZero())
				Expect(period.StartDate).To(Equal(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)))
				Expect(period.EndDate).To(Equal(time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC)))
			})
		})

		Context("when resolving twice for the same date", func() {
			It("should return the same period id both times", func() {
				// When
				first, err := service.ResolveCurrentPeriod(ctx, wednesday)
				Expect(err).NotTo(HaveOccurred())

				second, err := service.ResolveCurrentPeriod(ctx, wednesday)
				Expect(err).NotTo(HaveOccurred())

				// Then
				Expect(second.ID).To(Equal(first.ID))
				Expect(repo.periods).To(HaveLen(1))
			})
		})

		Context("when resolving for a date in the second week", func() {
			It("should return the stored period, not derive a new one", func() {
				// Given
				first, err := service.ResolveCurrentPeriod(ctx, wednesday)
				Expect(err).NotTo(HaveOccurred())

				// When a date in week two of the same period is resolved
				secondWeek := time.Date(2025, 6, 25, 9, 0, 0, 0, time.UTC)
				period, err := service.ResolveCurrentPeriod(ctx, secondWeek)

				// Then
				Expect(err).NotTo(HaveOccurred())
				Expect(period.ID).To(Equal(first.ID))
				Expect(repo.periods).To(HaveLen(1))
			})
		})

		Context("when creation races with another resolution", func() {
			It("should re-read the winning row after a conflict", func() {
				// Given the winner commits between our lookup and our insert
				winner := payperiod.Derive(wednesday)
				Expect(repo.Create(ctx, &winner)).To(Succeed())
				repo.findMisses = 1
				repo.createError = internal.ErrPayPeriodOverlap

				// When
				period, err := service.ResolveCurrentPeriod(ctx, wednesday)

				// Then
				Expect(err).NotTo(HaveOccurred())
				Expect(period.ID).To(Equal(winner.ID))
				Expect(repo.periods).To(HaveLen(1))
			})
		})

		Context("when the repository lookup fails", func() {
			It("should propagate the error", func() {
				// Given
				repo.findError = internal.NewInternalError("db down", nil)

				// When
				_, err := service.ResolveCurrentPeriod(ctx, wednesday)

				// Then
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("GetPeriod", func() {
		It("should return a stored period", func() {
			// Given
			created, err := service.ResolveCurrentPeriod(ctx, wednesday)
			Expect(err).NotTo(HaveOccurred())

			// When
			period, err := service.GetPeriod(ctx, created.ID)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(period.StartDate).To(Equal(created.StartDate))
		})

		It("should report not found for an unknown id", func() {
			// When
			_, err := service.GetPeriod(ctx, 42)

			// Then
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("ListPeriods", func() {
		It("should page through stored periods", func() {
			// Given
			_, err := service.ResolveCurrentPeriod(ctx, wednesday)
			Expect(err).NotTo(HaveOccurred())

			// When
			periods, err := service.ListPeriods(ctx, 10, 0)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(periods).To(HaveLen(1))
		})
	})
})
