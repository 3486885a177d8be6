package validator

import (
	"strings"
	"unicode"
)

const (
	MinPasswordLen = 6
	MaxPasswordLen = 12
	specialChars   = "@$!%*?&"
)

type passwordClasses struct {
	lower, upper, digit, special, other, space bool
}

func classify(pw string) passwordClasses {
	var c passwordClasses
	for _, r := range pw {
		switch {
		case unicode.IsSpace(r):
			c.space = true
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= '0' && r <= '9':
			c.digit = true
		case strings.ContainsRune(specialChars, r):
			c.special = true
		default:
			c.other = true
		}
	}
	return c
}

// ValidatePassword applies the profile and registration policy: 6 to 12
// letters and digits with at least one lowercase, one uppercase and one digit.
func ValidatePassword(pw string) Kind {
	if n := len([]rune(pw)); n < MinPasswordLen || n > MaxPasswordLen {
		return PasswordLength
	}
	c := classify(pw)
	if c.space {
		return PasswordWhitespace
	}
	if !c.lower || !c.upper || !c.digit || c.special || c.other {
		return PasswordPattern
	}
	return Valid
}

// ValidateStrongPassword is the recovery form policy, which also demands one
// of @$!%*?&.
func ValidateStrongPassword(pw string) Kind {
	if n := len([]rune(pw)); n < MinPasswordLen || n > MaxPasswordLen {
		return PasswordLength
	}
	c := classify(pw)
	if c.space {
		return PasswordWhitespace
	}
	if !c.lower || !c.upper || !c.digit || c.other {
		return PasswordPattern
	}
	if !c.special {
		return PasswordSpecial
	}
	return Valid
}
