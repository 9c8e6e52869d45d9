// Package booking runs the ticket booking form: validation, ticket and slot
// allocation, the WhatsApp hand-off and the spreadsheet webhook.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/etihasam-tickets/internal/notify"
	"github.com/wolfman30/etihasam-tickets/internal/observability/metrics"
	"github.com/wolfman30/etihasam-tickets/internal/slots"
	"github.com/wolfman30/etihasam-tickets/internal/tickets"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

var bookingTracer = otel.Tracer("etihasam.internal.booking")

// Options tune the form variant and phone formatting.
type Options struct {
	CountryCode     string
	CollectTimeSlot bool
	Logger          *logging.Logger
	Metrics         *metrics.BookingMetrics
}

// Service runs the booking form's submit flow. It is the single writer of
// the ticket counter and the booked-slot ledger.
type Service struct {
	mu sync.Mutex

	allocator   *tickets.Allocator
	ledger      *slots.Ledger
	dispatcher  *notify.Dispatcher
	countryCode string
	collectSlot bool
	logger      *logging.Logger
	metrics     *metrics.BookingMetrics
}

// NewService constructs a booking service.
func NewService(allocator *tickets.Allocator, ledger *slots.Ledger, dispatcher *notify.Dispatcher, opts Options) *Service {
	if allocator == nil {
		panic("booking: allocator required")
	}
	if ledger == nil {
		panic("booking: ledger required")
	}
	if dispatcher == nil {
		dispatcher = notify.NewDispatcher(nil, 0, opts.Logger, opts.Metrics)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Service{
		allocator:   allocator,
		ledger:      ledger,
		dispatcher:  dispatcher,
		countryCode: opts.CountryCode,
		collectSlot: opts.CollectTimeSlot,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
}

// Form returns today's slots and the next ticket number.
func (s *Service) Form(ctx context.Context) (*FormState, error) {
	next, err := s.allocator.Peek(ctx)
	if err != nil {
		return nil, err
	}
	state := &FormState{CollectTimeSlot: s.collectSlot, NextTicket: next.String()}
	if !s.collectSlot {
		return state, nil
	}

	all, err := s.ledger.Slots(ctx)
	if err != nil {
		return nil, err
	}
	state.Slots = all
	state.Available = slots.Available(all)
	state.AllBooked = slots.AllBooked(all)
	state.SubmitDisabled = state.AllBooked
	return state, nil
}

// Submit allocates a ticket, books the chosen slot, builds the WhatsApp link
// and starts the webhook delivery. Nothing is rolled back once the ticket
// number has been allocated.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()

	id := uuid.NewString()
	span.SetAttributes(attribute.String("etihasam.submission_id", id))

	sub.normalize()
	if err := sub.Validate(); err != nil {
		s.metrics.ObserveSubmission("invalid")
		return nil, err
	}
	if !s.collectSlot {
		sub.TimeSlot = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transition(span, id, StateIdle, StateSubmitting)

	receipt, err := s.submitLocked(ctx, id, sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveSubmission(resultLabel(err))
		s.transition(span, id, StateSubmitting, StateSettled)
		return nil, err
	}

	s.metrics.ObserveSubmission("ok")
	s.transition(span, id, StateSubmitting, StateSettled)
	receipt.State = StateSettled
	return receipt, nil
}

func (s *Service) submitLocked(ctx context.Context, id string, sub Submission) (*Receipt, error) {
	var chosen *slots.Slot
	if sub.TimeSlot != "" {
		today, err := s.ledger.Slots(ctx)
		if err != nil {
			return nil, err
		}
		slot, ok := slots.Find(today, sub.TimeSlot)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, sub.TimeSlot)
		}
		if !slot.Available {
			return nil, fmt.Errorf("%w: %s", ErrSlotUnavailable, sub.TimeSlot)
		}
		chosen = &slot
	}

	number, err := s.allocator.Allocate(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTicketIssued()
	ticketID := number.String()

	var slotRange, slotTime string
	if chosen != nil {
		if err := s.ledger.Book(ctx, chosen.ID); err != nil {
			s.logger.Error("slot booking failed after ticket allocation", "ticket_id", ticketID, "slot_id", chosen.ID, "error", err)
			return nil, err
		}
		s.metrics.ObserveSlotBooked()
		chosen.Available = false
		slotTime = chosen.Time
		slotRange = chosen.Range()
	}

	message := notify.Message(notify.Details{
		Name:         sub.Name,
		TicketNumber: ticketID,
		SlotTime:     slotTime,
		Price:        sub.Price,
		PriceText:    sub.priceLabel(),
	})
	phone := notify.NormalizePhone(sub.Phone, s.countryCode)

	delivery := s.dispatcher.Dispatch(notify.Payload{
		TicketID: ticketID,
		Name:     sub.Name,
		Email:    sub.Email,
		Phone:    sub.Phone,
		Price:    sub.Price,
		TimeSlot: sub.TimeSlot,
	})

	s.logger.Info("ticket issued", "submission_id", id, "ticket_id", ticketID, "slot_id", sub.TimeSlot)
	return &Receipt{
		ID:           id,
		TicketNumber: ticketID,
		Name:         sub.Name,
		Email:        sub.Email,
		Phone:        phone,
		Price:        sub.Price,
		PriceText:    sub.priceLabel(),
		Slot:         chosen,
		SlotRange:    slotRange,
		Message:      message,
		WhatsAppURL:  notify.WhatsAppURL(phone, message),
		Delivery:     delivery,
	}, nil
}

func (s *Service) transition(span trace.Span, id string, from, to State) {
	span.AddEvent("state", trace.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
	s.logger.Debug("submission state", "submission_id", id, "from", from, "to", to)
}

// PruneSlots drops booked-slot ids from days before cutoff. It shares the
// submit lock so a prune never overwrites a concurrent booking.
func (s *Service) PruneSlots(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Prune(ctx, cutoff)
}

// Close waits for pending webhook deliveries.
func (s *Service) Close(ctx context.Context) error {
	return s.dispatcher.Close(ctx)
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrSlotUnavailable):
		return "conflict"
	case IsValidation(err):
		return "invalid"
	default:
		return "error"
	}
}
