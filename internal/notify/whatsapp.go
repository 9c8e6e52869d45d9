package notify

import (
	"net/url"
	"strings"
)

const whatsAppSendURL = "https://api.whatsapp.com/send"

// WhatsAppURL builds the click-to-chat link for phone (digits with country
// code) pre-filled with message.
func WhatsAppURL(phone, message string) string {
	return whatsAppSendURL + "?phone=" + phone + "&text=" + EncodeURIComponent(message)
}

// EncodeURIComponent escapes s the way browsers do for a URI component:
// spaces become %20 and the marks -_.!~*'() are left alone.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	r := strings.NewReplacer(
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	)
	return r.Replace(escaped)
}
