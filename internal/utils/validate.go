package utils

import (
	"regexp"
	"strings"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// ValidEmail checks the minimal shape required at signup: an "@" with a
// dotted domain after it.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// ValidMobile checks a mobile number: exactly 10 digits.
func ValidMobile(mobile string) bool {
	return len(mobile) == 10 && digitsOnly.MatchString(mobile)
}

// OrganisationFromEmail derives an organisation name from the email domain:
// the first label of the domain ("dev@acme.io" -> "acme").
func OrganisationFromEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return ""
	}
	domain := email[at+1:]
	if dot := strings.Index(domain, "."); dot > 0 {
		return domain[:dot]
	}
	return domain
}
