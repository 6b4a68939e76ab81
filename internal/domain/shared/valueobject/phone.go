package valueobject

import "strings"

const (
	maxPhoneDigits = 11
	minPhoneDigits = 10
	cepDigits      = 8
)

// DigitsOnly strips every non-digit rune from s
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone returns the digits of a phone number, capped at 11.
// Customers are matched by this value.
func NormalizePhone(phone string) string {
	digits := DigitsOnly(phone)
	if len(digits) > maxPhoneDigits {
		digits = digits[:maxPhoneDigits]
	}
	return digits
}

// FormatPhone applies the Brazilian phone mask.
// 10 digits become "(XX) XXXX-XXXX", 11 digits "(XX) XXXXX-XXXX";
// shorter inputs are returned as bare digits.
func FormatPhone(phone string) string {
	digits := NormalizePhone(phone)
	switch len(digits) {
	case 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:]
	case 11:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	default:
		return digits
	}
}

// IsValidPhone reports whether phone has at least 10 digits
func IsValidPhone(phone string) bool {
	return len(DigitsOnly(phone)) >= minPhoneDigits
}

// FormatCEP applies the postal code mask "XXXXX-XXX".
// Incomplete codes are returned as bare digits.
func FormatCEP(cep string) string {
	digits := DigitsOnly(cep)
	if len(digits) > cepDigits {
		digits = digits[:cepDigits]
	}
	if len(digits) < cepDigits {
		return digits
	}
	return digits[:5] + "-" + digits[5:]
}

// IsValidCEP reports whether cep has exactly 8 digits
func IsValidCEP(cep string) bool {
	return len(DigitsOnly(cep)) == cepDigits
}
