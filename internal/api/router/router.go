package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/movementhq/booking-platform/internal/directory"
	"github.com/movementhq/booking-platform/internal/http/handlers"
	httpmiddleware "github.com/movementhq/booking-platform/internal/http/middleware"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	DirectoryHandler    *directory.Handler
	AvailabilityHandler *handlers.AvailabilityHandler
	ReservationHandler  *handlers.ReservationHandler
	CancellationHandler *handlers.CancellationHandler
	AdminAppointments   *handlers.AdminAppointmentsHandler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public widget endpoints
	r.Route("/professionals", func(r chi.Router) {
		r.Get("/", cfg.DirectoryHandler.List)
		r.Post("/refresh", cfg.DirectoryHandler.Refresh)
		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", cfg.DirectoryHandler.Get)
			r.Get("/availability", cfg.AvailabilityHandler.GetAvailability)
			r.Get("/contact-links", cfg.AvailabilityHandler.GetContactLinks)
		})
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", cfg.ReservationHandler.Create)
		r.Get("/check", cfg.ReservationHandler.CheckSlot)
	})

	r.Route("/cancellations", func(r chi.Router) {
		r.Get("/", cfg.CancellationHandler.Lookup)
		r.Post("/{id}", cfg.CancellationHandler.Cancel)
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Post("/professionals", cfg.DirectoryHandler.Upsert)
			admin.Put("/professionals/{slug}", cfg.DirectoryHandler.Upsert)
			admin.Delete("/professionals/{slug}", cfg.DirectoryHandler.Delete)
			admin.Post("/cache/refresh", cfg.DirectoryHandler.Refresh)
			if cfg.AdminAppointments != nil {
				admin.Delete("/appointments/{id}", cfg.AdminAppointments.Delete)
			}
		})
	}

	return r
}
