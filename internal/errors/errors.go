package gerr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("not authenticated")

	BadMailRequest      = errors.New("bad mail request")
	MailApiLimitReached = errors.New("mail api limit reached")

	OrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ReceiptNotFound  = fmt.Errorf("receipt %w", ErrNotFound)
	SubAdminNotFound = fmt.Errorf("sub-admin %w", ErrNotFound)
	SubAdminExists   = fmt.Errorf("sub-admin with this email %w", ErrConflict)
	ReceiptExists    = fmt.Errorf("receipt %w", ErrConflict)
	ProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ProductExists    = fmt.Errorf("product %w", ErrConflict)

	ConversationNotFound = fmt.Errorf("conversation %w", ErrNotFound)
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validation builds a ValidationError for field.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
