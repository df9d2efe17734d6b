package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/productview/internal/service"
	"github.com/utafrali/productview/pkg/health"
	"github.com/utafrali/productview/pkg/middleware"
)

// RouterConfig carries the HTTP-layer settings of the router.
type RouterConfig struct {
	ServiceName    string
	CORS           middleware.CORSConfig
	CacheMaxAgeSec int
	// Applied to the event-publishing POST routes only.
	RateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all productview routes registered.
func NewRouter(
	presentationService *service.PresentationService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	productHandler := NewProductHandler(presentationService, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(middleware.CacheControl(cfg.CacheMaxAgeSec))

		r.Get("/cards", productHandler.ListCards)
		r.Route("/{sku}", func(r chi.Router) {
			r.Get("/presentation", productHandler.GetPresentation)
			r.Get("/detail", productHandler.GetDetail)
			r.Get("/card", productHandler.GetCard)
			r.Get("/view", productHandler.ViewProduct)

			limited := r.With(middleware.RateLimit(cfg.RateLimit, logger))
			limited.Post("/report-issue", productHandler.ReportIssue)
			limited.Post("/find-inspiration", productHandler.FindInspiration)
		})
	})

	return r
}
