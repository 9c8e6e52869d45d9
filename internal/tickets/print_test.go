package tickets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPayload(t *testing.T) {
	tk := Ticket{Number: "#007", SlotID: "Mon Oct 05 2026-10:00"}
	assert.Equal(t, "ETIHASAM|#007|Mon Oct 05 2026-10:00", tk.Payload())
}

func TestQRCodeIsPNG(t *testing.T) {
	png, err := QRCode("https://api.whatsapp.com/send?phone=919876543210", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestRenderPDF(t *testing.T) {
	doc, err := RenderPDF(Ticket{
		Number:    "#042",
		Name:      "Asha",
		SlotID:    "Mon Oct 05 2026-10:50",
		SlotRange: "10:50 - 11:00",
		Price:     500,
		IssuedAt:  "05 Oct 2026 10:41",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestRenderPDFWithoutSlot(t *testing.T) {
	doc, err := RenderPDF(Ticket{Number: "#001", Name: "Ravi", Price: 250.5})
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestBodyLinesPreferTypedAmount(t *testing.T) {
	lines := bodyLines(Ticket{Number: "#004", Name: "Asha", Price: 500, PriceText: "500.00"})
	assert.Equal(t, "Paid Amount: ₹500.00", lines[len(lines)-1])
}

func TestBodyLinesKeepNonLatinText(t *testing.T) {
	lines := bodyLines(Ticket{Number: "#003", Name: "आशा शर्मा", Price: 500})
	assert.Equal(t, []string{
		"Ticket ID: #003",
		"Name: आशा शर्मा",
		"Time Slot: Not specified (10 minute show)",
		"Paid Amount: ₹500",
	}, lines)
}

func TestRenderPDFEmbedsUnicodeFont(t *testing.T) {
	for _, name := range []string{"Ирина", "आशा शर्मा", "Zoë Ørsted"} {
		t.Run(name, func(t *testing.T) {
			doc, err := RenderPDF(Ticket{Number: "#010", Name: name, Price: 120})
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
			assert.Contains(t, string(doc), "/BaseFont /utf8ticketsans")
			assert.Contains(t, string(doc), "/Encoding /Identity-H")
		})
	}
}

func TestPrinterWithFont(t *testing.T) {
	p, err := NewPrinter().WithFont(dejaVuBold)
	require.NoError(t, err)

	doc, err := p.Render(Ticket{Number: "#011", Name: "Ravi", Price: 80})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestPrinterWithFontRejectsNonTrueType(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("OTTO not a truetype face"), []byte("%PDF-1.4 definitely not a font")} {
		_, err := NewPrinter().WithFont(data)
		assert.ErrorIs(t, err, ErrUnsupportedFont)
	}
}
