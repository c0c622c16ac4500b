package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/api/handler"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/api/middleware"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/service"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// NewRouter wires the full HTTP surface: health, metrics, the notification
// read-side and the event ingress.
func NewRouter(
	svc *service.NotificationService,
	pool *pgxpool.Pool,
	registry *prometheus.Registry,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(maxBodyBytes))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(logger))

	healthHandler := handler.NewHealthHandler(pool)
	notificationHandler := handler.NewNotificationHandler(svc, logger)
	eventHandler := handler.NewEventHandler(svc, logger)

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Post("/{id}/read", notificationHandler.MarkRead)
			r.Post("/{id}/dismiss", notificationHandler.Dismiss)
		})
		r.Route("/events", func(r chi.Router) {
			r.Post("/comment", eventHandler.PublishComment)
			r.Post("/task", eventHandler.PublishTask)
		})
	})

	return r
}
