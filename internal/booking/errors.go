package booking

import "errors"

var (
	// ErrNameRequired is returned when the visitor's name is blank
	ErrNameRequired = errors.New("name is required")

	// ErrEmailRequired is returned when the email is blank
	ErrEmailRequired = errors.New("email is required")

	// ErrPhoneRequired is returned when the phone number is blank
	ErrPhoneRequired = errors.New("phone is required")

	// ErrPriceRequired is returned when no paid amount was given
	ErrPriceRequired = errors.New("price is required")

	// ErrNegativePrice is returned when the paid amount is below zero
	ErrNegativePrice = errors.New("price must not be negative")

	// ErrUnknownSlot is returned for a slot id that is not one of today's slots
	ErrUnknownSlot = errors.New("time slot is not offered today")

	// ErrSlotUnavailable is returned when the chosen slot is already booked
	ErrSlotUnavailable = errors.New("time slot is already booked")
)

// IsValidation reports whether err is a field-level input problem.
func IsValidation(err error) bool {
	for _, target := range []error{ErrNameRequired, ErrEmailRequired, ErrPhoneRequired, ErrPriceRequired, ErrNegativePrice, ErrUnknownSlot} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
