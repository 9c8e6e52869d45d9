// Package webform serves the server-rendered booking page.
package webform

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/etihasam-tickets/internal/booking"
	"github.com/wolfman30/etihasam-tickets/internal/slots"
	"github.com/wolfman30/etihasam-tickets/internal/tickets"
	"github.com/wolfman30/etihasam-tickets/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/booking.html"))

const qrSize = 192

// Values echoes the visitor's input back into the form.
type Values struct {
	Name     string
	Email    string
	Phone    string
	Price    string
	TimeSlot string
}

type page struct {
	Form        *booking.FormState
	Values      Values
	Error       string
	Receipt     *booking.Receipt
	QRCode      template.URL
	CountryCode string
}

// Handler renders the booking page and its printable ticket.
type Handler struct {
	service     *booking.Service
	printer     *tickets.Printer
	countryCode string
	logger      *logging.Logger
}

// NewHandler creates the page handler.
func NewHandler(service *booking.Service, countryCode string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if countryCode == "" {
		countryCode = "91"
	}
	return &Handler{service: service, printer: tickets.NewPrinter(), countryCode: countryCode, logger: logger}
}

// WithPrinter sets the ticket printer used by TicketPDF.
func (h *Handler) WithPrinter(p *tickets.Printer) *Handler {
	if p != nil {
		h.printer = p
	}
	return h
}

// Show handles GET / requests.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, page{})
}

// Submit handles POST / requests from the booking form.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, page{Error: "invalid form submission"})
		return
	}
	values := Values{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Phone:    r.PostFormValue("phone"),
		Price:    r.PostFormValue("price"),
		TimeSlot: r.PostFormValue("timeSlot"),
	}

	sub, err := submissionFrom(values)
	if err == nil {
		var receipt *booking.Receipt
		receipt, err = h.service.Submit(r.Context(), sub)
		if err == nil {
			h.render(w, r, http.StatusOK, page{Receipt: receipt, QRCode: h.qrCode(receipt.WhatsAppURL)})
			return
		}
	}

	status := booking.StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("booking form submission failed", "error", err)
		msg = "Could not record the booking. Please try again."
	}
	h.render(w, r, status, page{Values: values, Error: msg})
}

// TicketPDF handles POST /tickets/pdf and streams a printable ticket.
func (h *Handler) TicketPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	number := strings.TrimSpace(r.PostFormValue("ticketId"))
	if number == "" {
		http.Error(w, "ticketId is required", http.StatusBadRequest)
		return
	}
	price, ok := parseAmount(r.PostFormValue("price"))
	if !ok {
		http.Error(w, "price must be a non-negative number", http.StatusBadRequest)
		return
	}

	t := tickets.Ticket{
		Number:    number,
		Name:      strings.TrimSpace(r.PostFormValue("name")),
		SlotID:    strings.TrimSpace(r.PostFormValue("timeSlot")),
		SlotRange: strings.TrimSpace(r.PostFormValue("slotRange")),
		Price:     price,
		PriceText: strings.TrimSpace(r.PostFormValue("price")),
	}
	if t.SlotRange == "" && t.SlotID != "" {
		if i := strings.LastIndex(t.SlotID, "-"); i >= 0 {
			t.SlotRange, _ = slots.Range(t.SlotID[i+1:])
		}
	}

	pdf, err := h.printer.Render(t)
	if err != nil {
		h.logger.Error("failed to render ticket pdf", "error", err, "ticket_id", number)
		http.Error(w, "failed to render ticket", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="ticket-`+strings.TrimPrefix(number, "#")+`.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	form, err := h.service.Form(r.Context())
	if err != nil {
		h.logger.Error("failed to load booking form state", "error", err)
		http.Error(w, "failed to load booking form", http.StatusInternalServerError)
		return
	}
	p.Form = form
	p.CountryCode = h.countryCode

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		h.logger.Error("failed to render booking page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) qrCode(link string) template.URL {
	png, err := tickets.QRCode(link, qrSize)
	if err != nil {
		h.logger.Warn("failed to encode whatsapp qr code", "error", err)
		return ""
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}

func submissionFrom(v Values) (booking.Submission, error) {
	raw := strings.TrimSpace(v.Price)
	if raw == "" {
		return booking.Submission{}, booking.ErrPriceRequired
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return booking.Submission{}, booking.ErrPriceRequired
	}
	return booking.Submission{
		Name:      v.Name,
		Email:     v.Email,
		Phone:     v.Phone,
		Price:     price,
		PriceText: raw,
		TimeSlot:  v.TimeSlot,
	}, nil
}

func parseAmount(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
