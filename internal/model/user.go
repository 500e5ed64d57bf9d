package model

import (
	"fmt"
	"strings"
	"time"
)

// User is an account of the identity collaborator. The exchange only ever sees its ID.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password strength rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailAllowed reports whether email belongs to the allowed domain suffix.
// An empty domain allows everything.
func EmailAllowed(email, domain string) bool {
	if domain == "" {
		return true
	}
	email = NormalizeEmail(email)
	domain = strings.ToLower(domain)
	if !strings.HasPrefix(domain, "@") {
		domain = "@" + domain
	}
	return strings.HasSuffix(email, domain) && len(email) > len(domain)
}
