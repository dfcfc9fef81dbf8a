// internal/notify/phone/phone.go

// Package phone canonicalizes free-form phone strings to an international
// dial format. The rules are heuristic, not validated against a
// numbering-plan database: callers treat the result as best-effort and the
// SMS/WhatsApp senders reject obviously malformed results before any
// provider call.
package phone

import "strings"

// DefaultCountryCode is the calling code prepended to national numbers when
// no explicit code is configured (South Africa).
const DefaultCountryCode = "27"

// Normalizer rewrites raw phone input into a +<code><subscriber> string.
type Normalizer struct {
	countryCode string
}

func NewNormalizer(countryCode string) *Normalizer {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return &Normalizer{countryCode: strings.TrimPrefix(countryCode, "+")}
}

// Normalize strips separators and prefixes the country calling code.
// Already-normalized input is returned unchanged, so the function is
// idempotent. It never fails; senders enforce minimum length downstream.
func (n *Normalizer) Normalize(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
			return -1
		}
		return r
	}, raw)

	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}

	// National format: trunk prefix 0 plus 9 subscriber digits.
	if strings.HasPrefix(cleaned, "0") && len(cleaned) == 10 {
		return "+" + n.countryCode + cleaned[1:]
	}

	// Subscriber digits without the trunk prefix.
	if len(cleaned) == 9 && !strings.HasPrefix(cleaned, "0") {
		return "+" + n.countryCode + cleaned
	}

	return "+" + cleaned
}
