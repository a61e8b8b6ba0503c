package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.
// Every one of them leaves journey and ledger state untouched.

var (
	// Lookup errors
	ErrJourneyNotFound = errors.New("journey not found")

	// Access errors
	ErrNotAuthorized = errors.New("caller is not authorized for this operation")

	// Creation errors
	ErrInvalidParameter  = errors.New("invalid journey parameter")
	ErrInvalidRecipient  = errors.New("invalid recipient identity")
	ErrFeeExceedsDeposit = errors.New("fee exceeds attached value")

	// Timing errors
	ErrWindowClosed     = errors.New("journey window has closed")
	ErrTooEarly         = errors.New("journey window has not closed yet")
	ErrAlreadyCompleted = errors.New("journey already completed")

	// Arithmetic errors
	ErrOverflow = errors.New("value exceeds representable range")

	// Ledger errors
	ErrInsufficientBalance = errors.New("insufficient ledger balance")

	// Bootstrap errors
	ErrNoFeeBeneficiary = errors.New("fee beneficiary not initialized")
)

// ValidationError names the creation field that failed validation.
// It unwraps to ErrInvalidParameter or ErrInvalidRecipient.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError for field wrapping ErrInvalidParameter.
func Invalid(field string) error {
	return &ValidationError{Field: field, Err: ErrInvalidParameter}
}

// ErrorKind returns a stable short name for a domain error, used as a
// metrics label and API error type. Unknown errors map to "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrJourneyNotFound):
		return "not_found"
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrFeeExceedsDeposit):
		return "fee_exceeds_deposit"
	case errors.Is(err, ErrWindowClosed):
		return "window_closed"
	case errors.Is(err, ErrTooEarly):
		return "too_early"
	case errors.Is(err, ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrNoFeeBeneficiary):
		return "no_fee_beneficiary"
	default:
		return "internal"
	}
}
