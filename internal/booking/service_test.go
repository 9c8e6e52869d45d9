package booking

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/etihasam-tickets/internal/notify"
	"github.com/wolfman30/etihasam-tickets/internal/slots"
	"github.com/wolfman30/etihasam-tickets/internal/store"
	"github.com/wolfman30/etihasam-tickets/internal/tickets"
)

var testNow = time.Date(2026, time.October, 5, 9, 0, 0, 0, time.UTC)

type fixture struct {
	service *Service
	store   *store.MemoryStore
	ledger  *slots.Ledger
}

func newFixture(t *testing.T, webhookURL string, collect bool) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	ledger := slots.NewLedger(s, time.UTC).WithClock(func() time.Time { return testNow })
	var client *notify.WebhookClient
	if webhookURL != "" {
		client = notify.NewWebhookClient(webhookURL, time.Second)
	}
	svc := NewService(
		tickets.NewAllocator(s),
		ledger,
		notify.NewDispatcher(client, time.Second, nil, nil),
		Options{CountryCode: "91", CollectTimeSlot: collect},
	)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return &fixture{service: svc, store: s, ledger: ledger}
}

func validSubmission() Submission {
	return Submission{Name: "Asha", Email: "asha@example.com", Phone: "98765 43210", Price: 500}
}

func TestSubmitIssuesSequentialTickets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", true)

	var got []string
	for i := 0; i < 3; i++ {
		r, err := f.service.Submit(ctx, validSubmission())
		require.NoError(t, err)
		assert.Equal(t, StateSettled, r.State)
		got = append(got, r.TicketNumber)
	}
	assert.Equal(t, []string{"#001", "#002", "#003"}, got)

	form, err := f.service.Form(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#004", form.NextTicket)
}

func TestSubmitContinuesAfterPersistedCounter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", false)
	require.NoError(t, f.store.Set(ctx, store.KeyLastTicketNumber, "999"))

	r, err := f.service.Submit(ctx, validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "#1000", r.TicketNumber)
}

func TestSubmitWithoutSlotBuildsMessageAndLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", true)
	require.NoError(t, f.store.Set(ctx, store.KeyLastTicketNumber, "6"))

	r, err := f.service.Submit(ctx, validSubmission())
	require.NoError(t, err)

	assert.Equal(t, "#007", r.TicketNumber)
	assert.Nil(t, r.Slot)
	assert.Equal(t, 1, strings.Count(r.Message, "Ticket ID: #007"))
	assert.NotContains(t, r.Message, "Time Slot")
	assert.Equal(t, "919876543210", r.Phone)

	link, err := url.Parse(r.WhatsAppURL)
	require.NoError(t, err)
	assert.Equal(t, "api.whatsapp.com", link.Host)
	assert.Equal(t, "/send", link.Path)
	assert.Equal(t, "919876543210", link.Query().Get("phone"))
	assert.Equal(t, r.Message, link.Query().Get("text"))
}

func TestSubmitBooksSelectedSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", true)
	id := slots.ID(testNow, "10:50")

	sub := validSubmission()
	sub.TimeSlot = id
	r, err := f.service.Submit(ctx, sub)
	require.NoError(t, err)

	require.NotNil(t, r.Slot)
	assert.False(t, r.Slot.Available)
	assert.Equal(t, "10:50 - 11:00", r.SlotRange)
	assert.Contains(t, r.Message, "⏰ Time Slot: 10:50 (10 minute show)")

	booked, err := f.ledger.Booked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, booked)

	form, err := f.service.Form(ctx)
	require.NoError(t, err)
	assert.Len(t, form.Available, slots.SlotsPerDay-1)
	assert.False(t, form.SubmitDisabled)
}

func TestSubmitRejectsBookedSlotWithoutConsumingTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", true)
	sub := validSubmission()
	sub.TimeSlot = slots.ID(testNow, "12:00")

	_, err := f.service.Submit(ctx, sub)
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, sub)
	assert.True(t, errors.Is(err, ErrSlotUnavailable))

	sub.TimeSlot = "Sun Oct 04 2026-12:00"
	_, err = f.service.Submit(ctx, sub)
	assert.True(t, errors.Is(err, ErrUnknownSlot))

	form, err := f.service.Form(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#002", form.NextTicket)
}

func TestSubmitIgnoresSlotWhenVariantDoesNotCollect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", false)
	sub := validSubmission()
	sub.TimeSlot = slots.ID(testNow, "12:00")

	r, err := f.service.Submit(ctx, sub)
	require.NoError(t, err)
	assert.Nil(t, r.Slot)
	assert.NotContains(t, r.Message, "Time Slot")

	booked, err := f.ledger.Booked(ctx)
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", true)

	tests := []struct {
		name   string
		mutate func(*Submission)
		want   error
	}{
		{"missing name", func(s *Submission) { s.Name = "  " }, ErrNameRequired},
		{"missing email", func(s *Submission) { s.Email = "" }, ErrEmailRequired},
		{"missing phone", func(s *Submission) { s.Phone = "" }, ErrPhoneRequired},
		{"negative price", func(s *Submission) { s.Price = -1 }, ErrNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)
			_, err := f.service.Submit(ctx, sub)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	zero := validSubmission()
	zero.Price = 0
	_, err := f.service.Submit(ctx, zero)
	assert.NoError(t, err, "a free ticket is allowed")
}

func TestSubmitEchoesTypedAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", false)

	typed := validSubmission()
	typed.PriceText = "500.00"
	receipt, err := f.service.Submit(ctx, typed)
	require.NoError(t, err)
	assert.Equal(t, "500.00", receipt.PriceText)
	assert.Contains(t, receipt.Message, "Paid Amount: ₹500.00")

	receipt, err = f.service.Submit(ctx, validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "500", receipt.PriceText)
	assert.Contains(t, receipt.Message, "Paid Amount: ₹500\n")
}

func TestFormDisablesSubmitWhenAllSlotsBooked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", true)

	all := slots.Generate(testNow, nil)
	for _, s := range all[:len(all)-1] {
		require.NoError(t, f.ledger.Book(ctx, s.ID))
	}
	form, err := f.service.Form(ctx)
	require.NoError(t, err)
	assert.False(t, form.SubmitDisabled)
	require.Len(t, form.Available, 1)

	require.NoError(t, f.ledger.Book(ctx, all[len(all)-1].ID))
	form, err = f.service.Form(ctx)
	require.NoError(t, err)
	assert.True(t, form.AllBooked)
	assert.True(t, form.SubmitDisabled)
	assert.Empty(t, form.Available)
}

func TestFormWithoutSlotVariant(t *testing.T) {
	f := newFixture(t, "", false)
	form, err := f.service.Form(context.Background())
	require.NoError(t, err)
	assert.False(t, form.CollectTimeSlot)
	assert.False(t, form.SubmitDisabled)
	assert.Empty(t, form.Slots)
}

func TestWebhookFailureDoesNotBlockBooking(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := ts.URL
	ts.Close()

	f := newFixture(t, dead, true)
	sub := validSubmission()
	sub.TimeSlot = slots.ID(testNow, "15:00")

	r, err := f.service.Submit(ctx, sub)
	require.NoError(t, err)
	assert.NotEmpty(t, r.WhatsAppURL)
	assert.Equal(t, "#001", r.TicketNumber)

	outcome, err := r.Delivery.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusFailed, outcome.Status)

	booked, err := f.ledger.Booked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{sub.TimeSlot}, booked, "local booking stays committed")
}

func TestWebhookReceivesBookingFields(t *testing.T) {
	ctx := context.Background()
	bodies := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies <- string(data)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	f := newFixture(t, ts.URL, true)
	sub := validSubmission()
	sub.TimeSlot = slots.ID(testNow, "10:00")
	r, err := f.service.Submit(ctx, sub)
	require.NoError(t, err)

	outcome, err := r.Delivery.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusDelivered, outcome.Status)

	body := <-bodies
	assert.JSONEq(t, `{
		"ticketId": "#001",
		"name": "Asha",
		"email": "asha@example.com",
		"phone": "98765 43210",
		"price": 500,
		"timeSlot": "Mon Oct 05 2026-10:00"
	}`, body)
}

type brokenStore struct{ store.Store }

func (brokenStore) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func TestSubmitSurfacesStorageFailure(t *testing.T) {
	s := brokenStore{Store: store.NewMemoryStore()}
	ledger := slots.NewLedger(s, time.UTC).WithClock(func() time.Time { return testNow })
	svc := NewService(tickets.NewAllocator(s), ledger, nil, Options{CountryCode: "91", CollectTimeSlot: true})

	_, err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusFor(err))
}

func TestPruneSlotsKeepsToday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "", true)
	yesterday := testNow.AddDate(0, 0, -1)
	require.NoError(t, f.ledger.Book(ctx, slots.ID(yesterday, "10:00")))
	require.NoError(t, f.ledger.Book(ctx, slots.ID(testNow, "10:00")))

	removed, err := f.service.PruneSlots(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	booked, err := f.ledger.Booked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{slots.ID(testNow, "10:00")}, booked)
}
