package utils

import "strings"

// NormalizePhone canonicalizes a Cameroon phone number to
// +237XXXXXXXXX. It is pure and never fails: inputs it cannot
// interpret are passed through best-effort.
//
//	"699 123 456"      -> "+237699123456"
//	"+237 699 123 456" -> "+237699123456"
//	"237699123456"     -> "+237699123456"
//	""                 -> ""
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	// Keep digits and a leading + only.
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimPrefix(b.String(), "+")

	switch {
	case strings.HasPrefix(cleaned, "237") && len(cleaned) == 12:
		return "+" + cleaned
	case len(cleaned) == 9 && strings.HasPrefix(cleaned, "6"):
		return "+237" + cleaned
	}

	// Fallback: best-effort passthrough.
	if !strings.HasPrefix(phone, "+") {
		return "+" + cleaned
	}
	return phone
}
