package validator

import (
	"regexp"
	"strings"
)

var rutPattern = regexp.MustCompile(`^[0-9]{7,8}[0-9K]$`)

// CleanRut strips dots, dashes and spaces and uppercases the check digit.
func CleanRut(rut string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(rut)))
}

// RutCheckDigit computes the modulo-11 check character for a numeric body.
func RutCheckDigit(body string) byte {
	sum, mul := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * mul
		mul++
		if mul > 7 {
			mul = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + dv)
	}
}

func ValidateRut(rut string) Kind {
	clean := CleanRut(rut)
	if !rutPattern.MatchString(clean) {
		return InvalidRut
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1]
	if RutCheckDigit(body) != dv {
		return InvalidRut
	}
	return Valid
}

func IsValidRut(rut string) bool {
	return ValidateRut(rut).OK()
}

// FormatRut renders a RUT as 12.345.678-5. Input that is too short to carry
// a check digit is returned cleaned.
func FormatRut(rut string) string {
	clean := CleanRut(rut)
	if len(clean) < 2 {
		return clean
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]

	var b strings.Builder
	lead := len(body) % 3
	if lead > 0 {
		b.WriteString(body[:lead])
	}
	for i := lead; i < len(body); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(body[i : i+3])
	}
	b.WriteByte('-')
	b.WriteString(dv)
	return b.String()
}
