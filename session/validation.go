package session

import (
	"regexp"
	"strings"
)

const minPasswordLength = 6

// Matches the pattern the registration form has always used. Deliberately
// loose; the server does its own verification.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Registration collects the sign-up form fields.
type Registration struct {
	Username string
	Email    string
	Password string
	Confirm  string
}

// validate checks the rules in form order and reports the first violation.
func (r Registration) validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return &ValidationError{Field: "username", Reason: "username is required"}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		return &ValidationError{Field: "email", Reason: "email address is not valid"}
	}
	if len(r.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Reason: "password must be at least 6 characters"}
	}
	if r.Password != r.Confirm {
		return &ValidationError{Field: "confirm", Reason: "passwords do not match"}
	}
	return nil
}
