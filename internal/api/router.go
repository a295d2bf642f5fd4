package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/hackgods/appointment-booking/internal/booking"
	"github.com/hackgods/appointment-booking/internal/session"
)

type RouterConfig struct {
	Service        *session.Service
	Services       booking.Catalog
	Limiter        *RateLimiter
	PgPool         *pgxpool.Pool
	Redis          *redis.Client
	AllowedOrigins []string
	SecureCookies  bool
	Now            func() time.Time // defaults to time.Now
	Location       *time.Location   // wall clock of submitted dates, defaults to time.Local
	Env            string
	Version        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if len(cfg.Services) == 0 {
		cfg.Services = booking.DefaultServices
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(2, 5)
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	// No configured origins means same-origin only. An empty list would make
	// rs/cors allow every origin, so the middleware is left out entirely.
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: !slices.Contains(cfg.AllowedOrigins, "*"),
		}).Handler)
	}

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Service, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	d := handlerDeps{
		svc:      cfg.Service,
		services: cfg.Services,
		now:      cfg.Now,
		loc:      cfg.Location,
	}

	r.Get("/services", listServicesHandler(d))

	r.Route("/appointments", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.SecureCookies))

		r.With(cfg.Limiter.Limit).Post("/", createAppointmentHandler(d))
		r.Get("/", listAppointmentsHandler(d))
		r.Delete("/", clearAppointmentsHandler(d))
		r.Get("/export", exportAppointmentsHandler(d))
		r.Get("/{id}/slip", appointmentSlipHandler(d))
	})

	return r
}
