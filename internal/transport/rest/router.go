package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/payperiod"
	"github.com/frahmantamala/timesheet-management/internal/settings"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/transport/swagger"
	"github.com/frahmantamala/timesheet-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, timesheetHandler *timesheet.Handler, payPeriodHandler *payperiod.Handler, settingsHandler *settings.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			if userHandler != nil {
				pr.Get("/users/me", userHandler.GetCurrentUser)
			}

			if settingsHandler != nil {
				pr.Get("/settings", settingsHandler.GetSettings)
				pr.Group(func(sr chi.Router) {
					sr.Use(rbac.RequireManageSettings())
					sr.Put("/settings", settingsHandler.UpdateSettings)
				})
			}

			if payPeriodHandler != nil {
				pr.Route("/pay-periods", func(ppr chi.Router) {
					ppr.Get("/", payPeriodHandler.ListPeriods)
					ppr.Get("/current", payPeriodHandler.GetCurrent)
					ppr.Get("/{id}", payPeriodHandler.GetPeriod)

					if timesheetHandler != nil {
						ppr.Group(func(rr chi.Router) {
							rr.Use(rbac.RequireViewReports())
							rr.Get("/{id}/summary", timesheetHandler.PeriodSummary)
						})
					}
				})
			}

			if timesheetHandler != nil {
				pr.Route("/timesheets", func(tr chi.Router) {
					tr.Get("/current", timesheetHandler.GetCurrent)
					tr.Get("/{id}", timesheetHandler.GetTimesheet)
					tr.Get("/{id}/validation", timesheetHandler.Validate)

					tr.Put("/{id}/weeks/{week}/days/{day}", timesheetHandler.UpdateDay)
					tr.Patch("/{id}/extra-hours", timesheetHandler.UpdateExtraHours)
					tr.Patch("/{id}/vacation-hours", timesheetHandler.UpdateVacationHours)

					tr.Post("/{id}/submit", timesheetHandler.Submit)
					tr.Post("/{id}/recall", timesheetHandler.Recall)

					tr.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireApproveTimesheet())
						mr.Post("/{id}/approve", timesheetHandler.Approve)
					})

					tr.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireRejectTimesheet())
						mr.Post("/{id}/reject", timesheetHandler.Reject)
					})
				})
			}
		})
	})
}
