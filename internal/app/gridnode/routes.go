// Package gridnode собирает HTTP и gRPC серверы основного приложения.
package gridnode

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/gridnode/internal/access"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/admin/export"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/admin/overview"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/auth/google"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/contact"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/dashboard"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/health"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/locale"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/payment/invoice"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/plans/catalog"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/plans/selectplan"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/risk/check"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/routes/resolve"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/usage"
	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/i18n"
	"github.com/magabrotheeeer/gridnode/internal/metrics"
	adminservice "github.com/magabrotheeeer/gridnode/internal/services/admin"
	contactservice "github.com/magabrotheeeer/gridnode/internal/services/contact"
	dashboardservice "github.com/magabrotheeeer/gridnode/internal/services/dashboard"
	paymentservice "github.com/magabrotheeeer/gridnode/internal/services/payment"
	riskservice "github.com/magabrotheeeer/gridnode/internal/services/risk"
	sessionservice "github.com/magabrotheeeer/gridnode/internal/services/session"
)

// Services зависимости обработчиков.
type Services struct {
	Sessions  *sessionservice.Service
	Risk      *riskservice.Service
	Payment   *paymentservice.Service
	Contact   *contactservice.Service
	Dashboard *dashboardservice.Service
	Admin     *adminservice.Service
	Catalog   *i18n.Catalog
	Health    map[string]health.Check
}

// RouteOptions параметры маршрутизации из конфигурации.
type RouteOptions struct {
	AllowedOrigins []string
	WebhookSecret  string
	Limiter        *middlewarectx.RateLimiter
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, opts RouteOptions) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		opts.Metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Уведомления провайдера подписаны и не несут сессии
		r.Post("/payments/webhook", paymentwebhook.New(logger, svc.Payment, opts.WebhookSecret).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Session(svc.Sessions, logger))

			// Открытые конечные точки
			r.Get("/health", health.New(logger, svc.Health).ServeHTTP)
			r.Get("/i18n/{lang}", locale.New(logger, svc.Catalog).ServeHTTP)
			r.Get("/routes/resolve", resolve.New(logger).ServeHTTP)
			r.Post("/auth/login", login.New(logger, svc.Sessions).ServeHTTP)
			r.Post("/auth/signup", signup.New(logger, svc.Sessions).ServeHTTP)
			r.Post("/auth/google", google.New(logger, svc.Sessions).ServeHTTP)
			r.Get("/auth/me", me.New(logger).ServeHTTP)
			r.Get("/plans", catalog.New(logger, svc.Payment).ServeHTTP)
			r.Post("/plans/{id}/select", selectplan.New(logger, svc.Payment).ServeHTTP)
			r.Post("/contact", contact.New(logger, svc.Contact).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.Require(access.Authenticated, logger))
				r.Post("/auth/logout", logout.New(logger, svc.Sessions).ServeHTTP)
				r.Get("/quota", usage.New(logger).ServeHTTP)
				r.Get("/dashboard", dashboard.New(logger, svc.Dashboard).ServeHTTP)
				r.Post("/payments/invoice", invoice.New(logger, svc.Payment).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.Require(access.Verified, logger))
				r.Use(opts.Limiter.Middleware(logger))
				r.Post("/risk/check", check.New(logger, svc.Risk).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.Require(access.Admin, logger))
				r.Get("/admin/overview", overview.New(logger, svc.Admin).ServeHTTP)
				r.Get("/admin/export/{table}", export.New(logger, svc.Admin).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
