package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/wolfman30/etihasam-tickets/internal/notify"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

const maxRelayBody = 1 << 20

type rawPoster interface {
	PostRaw(ctx context.Context, data []byte) (notify.Response, error)
}

// RelayHandler forwards ticket submissions to the spreadsheet webhook.
type RelayHandler struct {
	webhook rawPoster
	logger  *logging.Logger
}

// NewRelayHandler creates a relay in front of client.
func NewRelayHandler(client *notify.WebhookClient, logger *logging.Logger) *RelayHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if client == nil {
		client = notify.NewWebhookClient("", 0)
	}
	return &RelayHandler{webhook: client, logger: logger}
}

// SubmitTicket handles POST /api/submit-ticket. The JSON body is passed
// through to the webhook and the webhook's response text is echoed back.
func (h *RelayHandler) SubmitTicket(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxRelayBody))
	if err != nil {
		h.fail(w, "read relay body", err)
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, payload); err != nil {
		h.fail(w, "decode relay body", err)
		return
	}

	resp, err := h.webhook.PostRaw(r.Context(), compact.Bytes())
	if err != nil {
		h.fail(w, "forward relay body", err)
		return
	}

	h.logger.Info("ticket relayed", "webhook_status", resp.StatusCode)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Success", "data": resp.Body})
}

func (h *RelayHandler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("ticket relay failed", "op", op, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to submit data"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
