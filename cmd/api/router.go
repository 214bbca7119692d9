package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/payflow/payflow-api/internal/domain/auth"
	"github.com/payflow/payflow-api/internal/domain/customer"
	"github.com/payflow/payflow-api/internal/domain/notification"
	"github.com/payflow/payflow-api/internal/domain/reminder"
	"github.com/payflow/payflow-api/internal/domain/stats"
	"github.com/payflow/payflow-api/internal/domain/transaction"
	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/jwt"
	"github.com/payflow/payflow-api/internal/pkg/metrics"
	pkgresponse "github.com/payflow/payflow-api/internal/pkg/response"
)

type app struct {
	jwt *jwt.Service

	auth          *auth.Handler
	customers     *customer.Handler
	transactions  *transaction.Handler
	stats         *stats.Handler
	notifications *notification.Handler
	reminders     *reminder.Handler
	ws            *notification.WSHandler

	allowedOrigins []string
	metricsEnabled bool
}

func newRouter(a *app) chi.Router {
	authMiddleware := middleware.Auth(a.jwt)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSHandler(a.allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	if a.metricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	r.With(authMiddleware).Get("/ws", a.ws.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", a.auth.Routes(authMiddleware))

		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)

			r.Post("/change-password", a.auth.ChangePassword)
			r.Mount("/customers", a.customers.Routes(a.transactions.CustomerRoutes, a.reminders.CustomerRoutes))
			r.Mount("/transactions", a.transactions.Routes())
			r.Mount("/stats", a.stats.Routes())
			r.Mount("/reminder-settings", a.reminders.Routes())
			r.Mount("/notifications", a.notifications.Routes())
		})
	})

	return r
}
