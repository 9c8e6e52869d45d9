// Package notify builds the customer's WhatsApp confirmation and records
// bookings on the spreadsheet webhook.
package notify

import (
	"regexp"
	"strconv"
	"strings"
)

// Details are the values substituted into the confirmation message.
type Details struct {
	Name         string
	TicketNumber string
	// SlotTime is the HH:MM start of the show; empty when no slot was chosen.
	SlotTime string
	Price    float64
	// PriceText overrides the formatted Price, e.g. to keep "500.00".
	PriceText string
}

// Message renders the fixed confirmation text.
func Message(d Details) string {
	var b strings.Builder
	b.WriteString("*✨ WELCOME TO ETIHASAM ✨*\n\n")
	b.WriteString("Hello " + d.Name + ",\n\n")
	b.WriteString("Thank you for booking the show with us! 🎭\n\n")
	b.WriteString("*Booking Details:*\n")
	b.WriteString("------------------------\n")
	b.WriteString("🎫 Ticket ID: " + d.TicketNumber + "\n")
	if d.SlotTime != "" {
		b.WriteString("⏰ Time Slot: " + d.SlotTime + " (10 minute show)\n")
	}
	amount := d.PriceText
	if amount == "" {
		amount = FormatPrice(d.Price)
	}
	b.WriteString("💰 Paid Amount: ₹" + amount + "\n")
	b.WriteString("------------------------\n\n")
	b.WriteString("To know more about us:\n")
	b.WriteString("🌐 https://www.etihasam.com\n\n")
	b.WriteString("Have a wonderful day! 🎉")
	return strings.TrimSpace(b.String())
}

// FormatPrice prints the amount in its shortest decimal form: 500, 499.5.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone strips everything but digits and prefixes countryCode
// unless the digits already start with it.
func NormalizePhone(raw, countryCode string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if countryCode == "" || strings.HasPrefix(digits, countryCode) {
		return digits
	}
	return countryCode + digits
}
