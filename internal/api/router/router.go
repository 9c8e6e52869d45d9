package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/etihasam-tickets/internal/booking"
	"github.com/wolfman30/etihasam-tickets/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/etihasam-tickets/internal/http/middleware"
	"github.com/wolfman30/etihasam-tickets/internal/webform"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	HealthHandler      *handlers.HealthHandler
	BookingHandler     *booking.Handler
	PageHandler        *webform.Handler
	RelayHandler       *handlers.RelayHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP limit applied to state-changing routes. RateLimitRPS <= 0
	// disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	limited := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRPS > 0 {
		limited = httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Check)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.PageHandler != nil {
		r.Get("/", cfg.PageHandler.Show)
		r.With(limited).Post("/", cfg.PageHandler.Submit)
		r.With(limited).Post("/tickets/pdf", cfg.PageHandler.TicketPDF)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.BookingHandler != nil {
			api.Get("/slots", cfg.BookingHandler.GetSlots)
			api.With(limited).Post("/bookings", cfg.BookingHandler.CreateBooking)
		}
		if cfg.RelayHandler != nil {
			api.With(limited).Post("/submit-ticket", cfg.RelayHandler.SubmitTicket)
		}
	})

	return r
}
