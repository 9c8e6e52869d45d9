package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/etihasam-tickets/internal/observability/metrics"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

// Status is the final state of a webhook delivery.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome describes how a delivery ended.
type Outcome struct {
	Status     Status
	StatusCode int
	Body       string
	Err        error
	Duration   time.Duration
}

// OK reports whether the record reached the spreadsheet.
func (o Outcome) OK() bool {
	return o.Status == StatusDelivered || o.Status == StatusSkipped
}

// Delivery is a handle on a fire-and-forget webhook call.
type Delivery struct {
	done    chan struct{}
	outcome Outcome
}

// Wait blocks until the delivery finishes or ctx is done.
func (d *Delivery) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-d.done:
		return d.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func completedDelivery(o Outcome) *Delivery {
	d := &Delivery{done: make(chan struct{}), outcome: o}
	close(d.done)
	return d
}

type poster interface {
	Post(ctx context.Context, body any) (Response, error)
}

// Dispatcher sends booking records to the webhook without holding up the
// booking. Failures are logged and reported through the Delivery only.
type Dispatcher struct {
	client  poster
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.BookingMetrics

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A nil client disables delivery.
func NewDispatcher(client *WebhookClient, timeout time.Duration, logger *logging.Logger, m *metrics.BookingMetrics) *Dispatcher {
	d := &Dispatcher{timeout: timeout, logger: logger, metrics: m}
	if client != nil && client.Endpoint() != "" {
		d.client = client
	}
	return d.init()
}

func (d *Dispatcher) init() *Dispatcher {
	if d.logger == nil {
		d.logger = logging.Default()
	}
	if d.timeout <= 0 {
		d.timeout = defaultWebhookTimeout
	}
	return d
}

// Enabled reports whether a webhook endpoint is configured.
func (d *Dispatcher) Enabled() bool {
	return d.client != nil
}

// Dispatch starts delivering p and returns immediately.
func (d *Dispatcher) Dispatch(p Payload) *Delivery {
	if d.client == nil {
		d.metrics.ObserveWebhook(string(StatusSkipped), 0)
		return completedDelivery(Outcome{Status: StatusSkipped})
	}

	delivery := &Delivery{done: make(chan struct{})}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(delivery.done)
		delivery.outcome = d.deliver(p)
	}()
	return delivery
}

func (d *Dispatcher) deliver(p Payload) Outcome {
	// Detached from the submitting request: the booking is already committed.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	resp, err := d.client.Post(ctx, p)
	outcome := Outcome{StatusCode: resp.StatusCode, Body: resp.Body, Duration: time.Since(start)}
	switch {
	case err != nil:
		outcome.Status = StatusFailed
		outcome.Err = err
		d.logger.Error("webhook delivery failed", "ticket_id", p.TicketID, "error", err)
	case resp.StatusCode >= 400:
		outcome.Status = StatusRejected
		outcome.Err = fmt.Errorf("notify: webhook status %d", resp.StatusCode)
		d.logger.Warn("webhook rejected booking", "ticket_id", p.TicketID, "status", resp.StatusCode, "body", truncate(resp.Body, 300))
	default:
		outcome.Status = StatusDelivered
		d.logger.Info("webhook response", "ticket_id", p.TicketID, "status", resp.StatusCode, "body", truncate(resp.Body, 300))
	}
	d.metrics.ObserveWebhook(string(outcome.Status), outcome.Duration.Seconds())
	return outcome
}

// Close waits for in-flight deliveries, or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
