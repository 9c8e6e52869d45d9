package booking

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/wolfman30/etihasam-tickets/internal/notify"
	"github.com/wolfman30/etihasam-tickets/internal/slots"
)

// State is a step of the submission lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSettled    State = "settled"
)

// Submission is what the visitor typed into the form.
type Submission struct {
	Name  string
	Email string
	Phone string
	Price float64
	// PriceText is the amount as typed, echoed back on the confirmation.
	PriceText string
	TimeSlot  string
}

// priceLabel is the amount as shown to the visitor.
func (s *Submission) priceLabel() string {
	if s.PriceText != "" {
		return s.PriceText
	}
	return notify.FormatPrice(s.Price)
}

func (s *Submission) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.PriceText = strings.TrimSpace(s.PriceText)
	s.TimeSlot = strings.TrimSpace(s.TimeSlot)
}

// Validate applies the form's field checks: required fields and a
// non-negative amount.
func (s *Submission) Validate() error {
	if s.Name == "" {
		return ErrNameRequired
	}
	if s.Email == "" {
		return ErrEmailRequired
	}
	if s.Phone == "" {
		return ErrPhoneRequired
	}
	if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return ErrPriceRequired
	}
	if s.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// CreateBookingRequest is the JSON body of POST /api/bookings.
type CreateBookingRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Price    json.Number `json:"price"`
	TimeSlot string      `json:"timeSlot"`
}

// Submission converts the request, rejecting a missing or non-numeric price.
// The number keeps its literal spelling, so 500.00 is echoed as 500.00.
func (r *CreateBookingRequest) Submission() (Submission, error) {
	if r.Price == "" {
		return Submission{}, ErrPriceRequired
	}
	price, err := r.Price.Float64()
	if err != nil {
		return Submission{}, ErrPriceRequired
	}
	return Submission{
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Price:     price,
		PriceText: r.Price.String(),
		TimeSlot:  r.TimeSlot,
	}, nil
}

// Receipt is the settled result of a submission.
type Receipt struct {
	ID           string      `json:"id"`
	TicketNumber string      `json:"ticketNumber"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Price        float64     `json:"price"`
	PriceText    string      `json:"priceText"`
	Slot         *slots.Slot `json:"timeSlot,omitempty"`
	SlotRange    string      `json:"slotRange,omitempty"`
	Message      string      `json:"message"`
	WhatsAppURL  string      `json:"whatsappUrl"`
	State        State       `json:"state"`

	// Delivery tracks the spreadsheet webhook call started for this booking.
	Delivery *notify.Delivery `json:"-"`
}

// FormState is what the booking page needs to render.
type FormState struct {
	CollectTimeSlot bool         `json:"collectTimeSlot"`
	Slots           []slots.Slot `json:"slots"`
	Available       []slots.Slot `json:"available"`
	AllBooked       bool         `json:"allBooked"`
	SubmitDisabled  bool         `json:"submitDisabled"`
	NextTicket      string       `json:"nextTicket"`
}
