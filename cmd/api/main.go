package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/etihasam-tickets/internal/api/router"
	"github.com/wolfman30/etihasam-tickets/internal/app/bootstrap"
	"github.com/wolfman30/etihasam-tickets/internal/booking"
	appconfig "github.com/wolfman30/etihasam-tickets/internal/config"
	"github.com/wolfman30/etihasam-tickets/internal/http/handlers"
	"github.com/wolfman30/etihasam-tickets/internal/notify"
	"github.com/wolfman30/etihasam-tickets/internal/observability/metrics"
	"github.com/wolfman30/etihasam-tickets/internal/store"
	"github.com/wolfman30/etihasam-tickets/internal/tickets"
	"github.com/wolfman30/etihasam-tickets/internal/webform"
	"github.com/wolfman30/etihasam-tickets/internal/worker/slotpruner"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting etihasam ticket booking server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"collect_time_slot", cfg.CollectTimeSlot,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bookingStore, closeStore, err := bootstrap.BuildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open booking store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close booking store", "error", err)
		}
	}()

	metricsHandler, bookingMetrics := setupMetrics(cfg.MetricsEnabled)
	service := bootstrap.BuildBookingService(cfg, bookingStore, logger, bookingMetrics)

	printer, err := bootstrap.BuildTicketPrinter(cfg, logger)
	if err != nil {
		logger.Error("failed to load ticket font", "error", err)
		os.Exit(1)
	}

	pruner := slotpruner.NewPruner(service, cfg.SlotRetentionDays, logger, bookingMetrics).
		WithInterval(cfg.SlotPruneInterval)
	go pruner.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           buildHandler(cfg, bookingStore, service, printer, metricsHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.WebhookTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := service.Close(shutdownCtx); err != nil {
		logger.Warn("pending webhook deliveries abandoned", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics registers booking metrics on a private registry. When
// disabled both return values are nil and the observers become no-ops.
func setupMetrics(enabled bool) (http.Handler, *metrics.BookingMetrics) {
	if !enabled {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewBookingMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func buildHandler(cfg *appconfig.Config, s store.Store, service *booking.Service, printer *tickets.Printer, metricsHandler http.Handler, logger *logging.Logger) http.Handler {
	var relayClient *notify.WebhookClient
	if cfg.WebhookURL != "" {
		relayClient = notify.NewWebhookClient(cfg.WebhookURL, cfg.WebhookTimeout)
	}
	return router.New(&router.Config{
		Logger:             logger,
		HealthHandler:      handlers.NewHealthHandler(s, logger),
		BookingHandler:     booking.NewHandler(service, logger),
		PageHandler:        webform.NewHandler(service, cfg.CountryCode, logger).WithPrinter(printer),
		RelayHandler:       handlers.NewRelayHandler(relayClient, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
}
