package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/parceltrack/parceltrack/internal/config"
	"github.com/parceltrack/parceltrack/internal/handler"
	"github.com/parceltrack/parceltrack/internal/metrics"
	"github.com/parceltrack/parceltrack/internal/middleware"
	"github.com/parceltrack/parceltrack/internal/service"
)

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(cfg *config.Config, deps Deps, logger *slog.Logger) http.Handler {
	recorder := metrics.Recorder(metrics.NewNoop())
	var snapshotter metrics.Snapshotter
	if deps.Metrics != nil {
		recorder = deps.Metrics
		snapshotter = deps.Metrics
	}

	// Interfaces stay nil unless Redis is configured.
	var (
		parcelCache service.ParcelCache
		cacheHealth handler.HealthChecker
		limiter     middleware.IPRateLimiter
	)
	if deps.Cache != nil {
		parcelCache = deps.Cache
		cacheHealth = deps.Cache
		limiter = deps.Cache
	}

	var publisher service.EventPublisher
	if deps.Publisher != nil {
		publisher = deps.Publisher
	}

	userSvc := service.NewUserService(deps.Store, logger)
	parcelSvc := service.NewParcelService(deps.Store, parcelCache, publisher, recorder, logger)
	trackingSvc := service.NewTrackingService(deps.Store, publisher, recorder)
	paymentSvc := service.NewPaymentService(deps.Store, deps.Gateway, parcelCache, publisher, recorder, logger)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(deps.StoreName, deps.Store, cacheHealth)
	userHandler := handler.NewUserHandler(userSvc, logger)
	parcelHandler := handler.NewParcelHandler(parcelSvc, logger)
	trackingHandler := handler.NewTrackingHandler(trackingSvc, logger)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Probes bypass rate limiting.
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if snapshotter != nil {
		r.Get("/metrics", handler.NewMetricsHandler(snapshotter).Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: limiter,
			Enabled: cfg.RateLimitEnabled,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		}))

		r.Get("/", h.Root)

		r.Post("/users", userHandler.Register)
		r.Get("/users/{email}", userHandler.Get)

		r.Route("/parcels", func(r chi.Router) {
			r.Get("/", parcelHandler.List)
			r.Post("/", parcelHandler.Create)
			r.Get("/{id}", parcelHandler.Get)
			r.Delete("/{id}", parcelHandler.Delete)
		})

		r.Post("/tracking", trackingHandler.Create)
		r.Get("/tracking-updates/{parcelId}", trackingHandler.List)

		r.Post("/payments", paymentHandler.Record)
		r.Get("/payments/user/{email}", paymentHandler.ListForUser)
		r.Post("/create-payment-intent", paymentHandler.CreateIntent)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
