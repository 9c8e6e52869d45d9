package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/etihasam-tickets/internal/booking"
	appconfig "github.com/wolfman30/etihasam-tickets/internal/config"
	"github.com/wolfman30/etihasam-tickets/internal/notify"
	"github.com/wolfman30/etihasam-tickets/internal/observability/metrics"
	"github.com/wolfman30/etihasam-tickets/internal/slots"
	"github.com/wolfman30/etihasam-tickets/internal/store"
	"github.com/wolfman30/etihasam-tickets/internal/tickets"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildStore opens the configured booking-state backend. The returned close
// func releases any connection the backend holds.
func BuildStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (store.Store, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	opts := store.Options{
		Backend:   cfg.StoreBackend,
		Path:      cfg.StorePath,
		KeyPrefix: cfg.RedisKeyPrefix,
	}
	closer := noop
	if cfg.StoreBackend == store.BackendRedis {
		client := BuildRedisClient(ctx, cfg, logger, false)
		if client == nil {
			return nil, nil, fmt.Errorf("bootstrap: redis backend selected but REDIS_ADDR is empty")
		}
		opts.Redis = client
		closer = client.Close
	}

	s, err := store.Open(ctx, opts)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("bootstrap: open %s store: %w", cfg.StoreBackend, err)
	}
	if fileStore, ok := s.(*store.FileStore); ok {
		logger.Info("booking store ready", "backend", cfg.StoreBackend, "path", fileStore.Path())
	} else {
		logger.Info("booking store ready", "backend", cfg.StoreBackend)
	}
	return s, closer, nil
}

// BuildBookingService wires the allocator, slot ledger and webhook dispatcher
// over s.
func BuildBookingService(cfg *appconfig.Config, s store.Store, logger *logging.Logger, m *metrics.BookingMetrics) *booking.Service {
	if logger == nil {
		logger = logging.Default()
	}

	var client *notify.WebhookClient
	if cfg.WebhookURL != "" {
		client = notify.NewWebhookClient(cfg.WebhookURL, cfg.WebhookTimeout)
	} else {
		logger.Warn("WEBHOOK_URL not set; bookings will not reach the spreadsheet")
	}
	dispatcher := notify.NewDispatcher(client, cfg.WebhookTimeout, logger, m)

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("unknown TIMEZONE; booking days follow UTC", "timezone", cfg.Timezone, "error", err)
	}

	return booking.NewService(
		tickets.NewAllocator(s),
		slots.NewLedger(s, loc),
		dispatcher,
		booking.Options{
			CountryCode:     cfg.CountryCode,
			CollectTimeSlot: cfg.CollectTimeSlot,
			Logger:          logger,
			Metrics:         m,
		},
	)
}

// BuildTicketPrinter returns the PDF ticket printer. TICKET_FONT_PATH swaps
// the bundled font for an operator supplied TrueType file, e.g. one with
// Devanagari glyphs.
func BuildTicketPrinter(cfg *appconfig.Config, logger *logging.Logger) (*tickets.Printer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	printer := tickets.NewPrinter()
	if cfg == nil || cfg.TicketFontPath == "" {
		return printer, nil
	}
	ttf, err := os.ReadFile(cfg.TicketFontPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: read ticket font: %w", err)
	}
	printer, err = printer.WithFont(ttf)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: ticket font %s: %w", cfg.TicketFontPath, err)
	}
	logger.Info("ticket font loaded", "path", cfg.TicketFontPath)
	return printer, nil
}
