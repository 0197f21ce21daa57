// Package validation provides input validation utilities.
package validation

import (
	"fmt"
	"regexp"

	"inkwell/internal/models"
)

// emailRegex accepts the common mailbox@domain.tld shape. Deliverability is
// not checked; uniqueness is enforced at the storage layer.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const maxNameLen = 100

// ValidateEmail checks that the email has a plausible format.
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return models.NewValidationError("Email must not exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("Invalid email format")
	}
	return nil
}

// ValidateName checks a first or last name field.
func ValidateName(field, name string) error {
	if name == "" {
		return models.NewValidationError(fmt.Sprintf("%s is required", field))
	}
	if len(name) > maxNameLen {
		return models.NewValidationError(fmt.Sprintf("%s must not exceed %d characters", field, maxNameLen))
	}
	return nil
}
