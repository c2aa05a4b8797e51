package phone

import (
	"errors"
	"strings"
	"unicode"
)

const countryPrefix = "+255"

var ErrInvalidPhone = errors.New("invalid phone number")

// Normalize canonicalizes a locally or internationally formatted phone
// number into its international form, e.g. 0712345678 -> +255712345678.
// Accepted inputs: 0XXXXXXXXX, 255XXXXXXXXX, +255XXXXXXXXX and bare
// 9-digit subscriber numbers. The subscriber part must start with 6 or 7
// followed by exactly 8 more digits.
func Normalize(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '-', r == '(', r == ')':
			return -1
		}
		return r
	}, raw)

	var subscriber string
	switch {
	case strings.HasPrefix(cleaned, countryPrefix):
		subscriber = cleaned[len(countryPrefix):]
	case strings.HasPrefix(cleaned, "255"):
		subscriber = cleaned[3:]
	case strings.HasPrefix(cleaned, "0"):
		subscriber = cleaned[1:]
	default:
		subscriber = cleaned
	}

	if len(subscriber) != 9 || !isDigits(subscriber) {
		return "", ErrInvalidPhone
	}
	if subscriber[0] != '6' && subscriber[0] != '7' {
		return "", ErrInvalidPhone
	}
	return countryPrefix + subscriber, nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
