package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/etihasam-tickets/internal/slots"
	"github.com/wolfman30/etihasam-tickets/internal/store"
)

func TestCreateBookingHandler(t *testing.T) {
	f := newFixture(t, "", true)
	h := NewHandler(f.service, nil)

	body := `{"name":"Asha","email":"asha@example.com","phone":"+91 98765 43210","price":500,"timeSlot":"` + slots.ID(testNow, "10:50") + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, "#001", receipt["ticketNumber"])
	assert.Equal(t, "919876543210", receipt["phone"])
	assert.Equal(t, "10:50 - 11:00", receipt["slotRange"])
	assert.Equal(t, "settled", receipt["state"])
	assert.Contains(t, receipt["whatsappUrl"], "https://api.whatsapp.com/send?phone=919876543210&text=")
}

func TestCreateBookingHandlerErrors(t *testing.T) {
	f := newFixture(t, "", true)
	h := NewHandler(f.service, nil)
	taken := slots.ID(testNow, "11:00")
	require.NoError(t, f.ledger.Book(context.Background(), taken))

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest},
		{"missing price", `{"name":"A","email":"a@b","phone":"1"}`, http.StatusBadRequest},
		{"negative price", `{"name":"A","email":"a@b","phone":"1","price":-5}`, http.StatusBadRequest},
		{"null price", `{"name":"A","email":"a@b","phone":"1","price":null}`, http.StatusBadRequest},
		{"non-numeric price", `{"name":"A","email":"a@b","phone":"1","price":"lots"}`, http.StatusBadRequest},
		{"out of range price", `{"name":"A","email":"a@b","phone":"1","price":1e400}`, http.StatusBadRequest},
		{"missing name", `{"email":"a@b","phone":"1","price":5}`, http.StatusBadRequest},
		{"unknown slot", `{"name":"A","email":"a@b","phone":"1","price":5,"timeSlot":"nope"}`, http.StatusBadRequest},
		{"booked slot", `{"name":"A","email":"a@b","phone":"1","price":5,"timeSlot":"` + taken + `"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestCreateBookingHandlerCapsBody(t *testing.T) {
	f := newFixture(t, "", true)
	h := NewHandler(f.service, nil)

	body := `{"name":"` + strings.Repeat("A", maxBookingBody) + `","email":"a@b","phone":"1","price":5}`
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	form, err := f.service.Form(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#001", form.NextTicket, "oversized body must not allocate a ticket")
}

func TestCreateBookingHandlerKeepsTypedPrice(t *testing.T) {
	f := newFixture(t, "", false)
	h := NewHandler(f.service, nil)

	body := `{"name":"Asha","email":"asha@example.com","phone":"98765 43210","price":500.00}`
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, "500.00", receipt["priceText"])
	assert.Equal(t, float64(500), receipt["price"])
	assert.Contains(t, receipt["message"], "Paid Amount: ₹500.00")
}

func TestGetSlotsHandler(t *testing.T) {
	f := newFixture(t, "", true)
	h := NewHandler(f.service, nil)

	rec := httptest.NewRecorder()
	h.GetSlots(rec, httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var state FormState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.CollectTimeSlot)
	assert.Len(t, state.Slots, slots.SlotsPerDay)
	assert.Equal(t, "#001", state.NextTicket)
}

func TestGetSlotsHandlerStorageError(t *testing.T) {
	f := newFixture(t, "", true)
	require.NoError(t, f.store.Set(context.Background(), store.KeyBookedTimeSlots, "corrupt"))
	h := NewHandler(f.service, nil)

	rec := httptest.NewRecorder()
	h.GetSlots(rec, httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
