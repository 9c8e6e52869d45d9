package handlers

import (
	"net/http"

	"github.com/wolfman30/etihasam-tickets/internal/store"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

// HealthHandler reports liveness and whether booking state is readable.
type HealthHandler struct {
	store  store.Store
	logger *logging.Logger
}

// NewHealthHandler creates a health handler. A nil store skips the store check.
func NewHealthHandler(s store.Store, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{store: s, logger: logger}
}

// Check handles GET /health requests
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if _, _, err := h.store.Get(r.Context(), store.KeyLastTicketNumber); err != nil {
			h.logger.Warn("health check: store unreadable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
