package models

import "fmt"

// InvalidInputError rejects malformed or out-of-range input before any
// network call is made.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// NewInvalidInput builds an InvalidInputError with a formatted reason.
func NewInvalidInput(format string, a ...any) *InvalidInputError {
	return &InvalidInputError{Reason: fmt.Sprintf(format, a...)}
}

// AuthError is a failed token exchange. Status and Body carry the upstream
// response verbatim for diagnosis.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token exchange failed: status=%d body=%s", e.Status, e.Body)
}

// QuoteError is a failed price lookup.
type QuoteError struct {
	Symbol string
	Status int
	Body   string
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("quote lookup failed for %s: status=%d body=%s", e.Symbol, e.Status, e.Body)
}

// OrderError is a failed order placement.
type OrderError struct {
	Symbol string
	Status int
	Body   string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order submission failed for %s: status=%d body=%s", e.Symbol, e.Status, e.Body)
}
