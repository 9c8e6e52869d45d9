package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

// maxBookingBody caps POST /api/bookings; a booking is a handful of short fields.
const maxBookingBody = 64 << 10

// Handler serves the JSON booking API.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new booking handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// GetSlots handles GET /api/slots requests
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Form(r.Context())
	if err != nil {
		h.logger.Error("failed to load booking form state", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load slots")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// CreateBooking handles POST /api/bookings requests
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBookingBody)
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode booking request", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := req.Submission()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		status := StatusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("booking failed", "error", err)
			writeError(w, status, "failed to record booking")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// StatusFor maps a Submit error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrSlotUnavailable):
		return http.StatusConflict
	case IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
