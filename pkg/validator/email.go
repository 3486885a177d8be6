package validator

import (
	"regexp"
	"strings"
)

var tldPattern = regexp.MustCompile(`^[a-zA-Z]{2,}$`)

// ValidateEmail checks the shape the intake forms enforce: one '@', a dotted
// domain and an alphabetic TLD of at least two letters.
func ValidateEmail(email string) Kind {
	email = strings.TrimSpace(email)
	if strings.Count(email, "@") != 1 {
		return InvalidEmail
	}
	local, domain, _ := strings.Cut(email, "@")
	if local == "" {
		return InvalidEmail
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") {
		return InvalidDomain
	}
	tld := domain[strings.LastIndex(domain, ".")+1:]
	if !tldPattern.MatchString(tld) {
		return InvalidTld
	}
	return Valid
}
