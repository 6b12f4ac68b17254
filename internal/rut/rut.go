// Package rut validates and formats Chilean national identifiers (RUT).
package rut

import "strings"

// clean strips separators and uppercases. Only digits and 'K' survive.
func clean(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= '0' && r <= '9') || r == 'K' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CheckDigit computes the check character for a numeric RUT body using the
// weighted mod-11 scheme: multipliers cycle 2..7 right to left, expected
// digit is (11 - sum%11) % 11, with 10 mapped to 'K'.
func CheckDigit(body string) (byte, bool) {
	if len(body) < 7 || len(body) > 8 {
		return 0, false
	}
	sum := 0
	mult := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		sum += int(c-'0') * mult
		mult++
		if mult > 7 {
			mult = 2
		}
	}
	switch d := (11 - sum%11) % 11; d {
	case 10:
		return 'K', true
	default:
		return byte('0' + d), true
	}
}

// Valid reports whether the supplied RUT, with or without separators,
// carries the correct check character. Malformed input returns false,
// never an error.
func Valid(raw string) bool {
	s := clean(raw)
	if len(s) < 8 || len(s) > 9 {
		return false
	}
	body, check := s[:len(s)-1], s[len(s)-1]
	expected, ok := CheckDigit(body)
	if !ok {
		return false
	}
	return check == expected
}

// Format renders a cleaned RUT as "12.345.678-5". Input that does not
// validate is returned unchanged.
func Format(raw string) string {
	if !Valid(raw) {
		return raw
	}
	s := clean(raw)
	body, check := s[:len(s)-1], s[len(s)-1]

	var b strings.Builder
	for i, c := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	b.WriteByte('-')
	b.WriteByte(check)
	return b.String()
}
