package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MinPasswordLength applies to every password set through the API or gtkctl.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FieldError is a rejected input whose Message is shown to the user as-is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Invalid reports field as rejected with a user-facing message.
func Invalid(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// AsFieldError extracts the FieldError wrapped in err, if any.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// NormalizeEmail trims and lower-cases email and checks its shape.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(SanitizeInput(email))
	if !emailPattern.MatchString(email) {
		return "", Invalid("email", "Email tidak valid")
	}
	return email, nil
}

func CheckPassword(password string) error {
	if len(password) < MinPasswordLength {
		return Invalid("password", fmt.Sprintf("Password minimal %d karakter", MinPasswordLength))
	}
	return nil
}

// SanitizeInput trims surrounding space and drops NUL bytes.
func SanitizeInput(input string) string {
	return strings.ReplaceAll(strings.TrimSpace(input), "\x00", "")
}

// SanitizeOptional sanitizes an optional value; blank becomes nil.
func SanitizeOptional(input *string) *string {
	if input == nil {
		return nil
	}
	v := SanitizeInput(*input)
	if v == "" {
		return nil
	}
	return &v
}
