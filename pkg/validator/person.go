package validator

import (
	"strings"
	"time"
	"unicode"
)

const DateLayout = "2006-01-02"

var earliestBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ValidateBirthDate checks a YYYY-MM-DD date against [1900-01-01, today].
func ValidateBirthDate(value string, today time.Time) Kind {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return InvalidDate
	}
	return ValidateBirthTime(d, today)
}

func ValidateBirthTime(d, today time.Time) Kind {
	if d.IsZero() {
		return InvalidDate
	}
	if d.Before(earliestBirthDate) {
		return DateTooEarly
	}
	y, m, day := today.Date()
	if d.After(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		return FutureDate
	}
	return Valid
}

// ValidateNombre accepts names and surnames of at least four letters.
func ValidateNombre(s string) Kind {
	s = strings.TrimSpace(s)
	letters := 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == ' ':
		default:
			return InvalidName
		}
	}
	if letters < 4 {
		return InvalidName
	}
	return Valid
}

func ValidateTelefono(s string) Kind {
	if len([]rune(strings.TrimSpace(s))) < 10 {
		return InvalidPhone
	}
	return Valid
}
