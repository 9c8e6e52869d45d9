package tickets

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const fontFamily = "TicketSans"

//go:embed fonts/DejaVuSansCondensed.ttf
var dejaVuRegular []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var dejaVuBold []byte

// ErrUnsupportedFont is returned for font data that is not TrueType.
var ErrUnsupportedFont = errors.New("tickets: font is not a TrueType font")

// Ticket is what goes on a printed ticket.
type Ticket struct {
	Number    string
	Name      string
	SlotID    string
	SlotRange string
	Price     float64
	PriceText string
	IssuedAt  string
}

// Payload is the string encoded in the ticket's QR code.
func (t Ticket) Payload() string {
	return strings.Join([]string{"ETIHASAM", t.Number, t.SlotID}, "|")
}

// QRCode encodes content as a PNG of size×size pixels.
func QRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("tickets: qr encode: %w", err)
	}
	return png, nil
}

// Printer lays out tickets with an embedded UTF-8 TrueType font so names
// outside cp1252 keep their characters.
type Printer struct {
	regular []byte
	bold    []byte
}

var defaultPrinter = NewPrinter()

// NewPrinter uses the bundled DejaVu Sans Condensed faces.
func NewPrinter() *Printer {
	return &Printer{regular: dejaVuRegular, bold: dejaVuBold}
}

// WithFont returns a printer that sets every line in ttf, a TrueType font.
// DejaVu has no Indic glyphs; venues printing Devanagari or Tamil names
// supply a face such as Noto Sans Devanagari here.
func (p *Printer) WithFont(ttf []byte) (*Printer, error) {
	if !isTrueType(ttf) {
		return nil, ErrUnsupportedFont
	}
	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", ttf)
	pdf.SetFont(fontFamily, "", 10)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFont, err)
	}
	return &Printer{regular: ttf, bold: ttf}, nil
}

// RenderPDF lays out a ticket with the bundled font.
func RenderPDF(t Ticket) ([]byte, error) {
	return defaultPrinter.Render(t)
}

// Render lays out a single A6 ticket with a QR code of t.Payload().
func (p *Printer) Render(t Ticket) ([]byte, error) {
	qr, err := QRCode(t.Payload(), 256)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddUTF8FontFromBytes(fontFamily, "", p.regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", p.bold)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 10, "WELCOME TO ETIHASAM", "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 6, "Show ticket", "B", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "", 11)
	for _, line := range bodyLines(t) {
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("ticket-qr", 31, pdf.GetY()+4, 40, 40, false, opts, 0, "")

	pdf.SetY(-18)
	pdf.SetFont(fontFamily, "", 8)
	pdf.CellFormat(0, 6, "www.etihasam.com", "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("tickets: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (t Ticket) amount() string {
	if t.PriceText != "" {
		return t.PriceText
	}
	return strconv.FormatFloat(t.Price, 'f', -1, 64)
}

func bodyLines(t Ticket) []string {
	slot := t.SlotRange
	if slot == "" {
		slot = "Not specified"
	}
	lines := []string{
		"Ticket ID: " + t.Number,
		"Name: " + t.Name,
		"Time Slot: " + slot + " (10 minute show)",
		"Paid Amount: ₹" + t.amount(),
	}
	if t.IssuedAt != "" {
		lines = append(lines, "Issued: "+t.IssuedAt)
	}
	return lines
}

func isTrueType(b []byte) bool {
	if len(b) < 12 {
		return false
	}
	tag := string(b[:4])
	return tag == "\x00\x01\x00\x00" || tag == "true"
}
