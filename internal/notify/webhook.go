package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultWebhookTimeout = 15 * time.Second

var notifyTracer = otel.Tracer("etihasam.internal.notify")

// Payload is the booking record sent to the spreadsheet.
type Payload struct {
	TicketID string  `json:"ticketId"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Price    float64 `json:"price"`
	TimeSlot string  `json:"timeSlot,omitempty"`
}

// Response is the webhook's reply. The body is opaque text.
type Response struct {
	StatusCode int
	Body       string
}

// WebhookClient posts JSON to the spreadsheet script endpoint. The endpoint
// carries its own secret path so no auth header is sent.
type WebhookClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewWebhookClient creates a client for endpoint. timeout <= 0 uses the default.
func NewWebhookClient(endpoint string, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookClient{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the configured URL.
func (c *WebhookClient) Endpoint() string {
	return c.endpoint
}

// Post marshals body and sends it. Only transport failures are errors; any
// HTTP status is returned in Response for the caller to judge.
func (c *WebhookClient) Post(ctx context.Context, body any) (Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("notify: marshal webhook body: %w", err)
	}
	return c.PostRaw(ctx, data)
}

// PostRaw sends an already-encoded JSON body unchanged.
func (c *WebhookClient) PostRaw(ctx context.Context, data []byte) (Response, error) {
	ctx, span := notifyTracer.Start(ctx, "notify.webhook.post")
	defer span.End()

	if c.endpoint == "" {
		err := fmt.Errorf("notify: webhook endpoint not configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return Response{}, fmt.Errorf("notify: create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return Response{}, fmt.Errorf("notify: webhook request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("notify: read webhook response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return Response{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}
