// Package phone normalizes phone numbers to the international digit form used
// as the appointment lookup key and in WhatsApp links.
package phone

import (
	"errors"
	"strings"
)

// ErrTooShort indicates the number has fewer than the minimum 10 digits.
var ErrTooShort = errors.New("phone: number must have at least 10 digits")

// Digits strips every non-digit rune.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the canonical digit string for a customer number: at least
// 10 digits, always carrying the country code prefix.
func Normalize(raw, countryCode string) (string, error) {
	digits := Digits(raw)
	if len(digits) < 10 {
		return "", ErrTooShort
	}
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return digits, nil
}

// ForWhatsApp formats a professional's number for a wa.me link. The country
// code is prefixed only when the number still looks local (10 digits or fewer
// without it), so already-international numbers pass through untouched.
func ForWhatsApp(raw, countryCode string) (string, error) {
	digits := Digits(raw)
	if !strings.HasPrefix(digits, countryCode) && len(digits) <= 10 {
		digits = countryCode + digits
	}
	if len(digits) < 10 {
		return "", ErrTooShort
	}
	return digits, nil
}
