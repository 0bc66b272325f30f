package orders

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidTenant   ErrorCode = "invalid_tenant"
	CodeEmptyOrder      ErrorCode = "empty_order"
	CodeInvalidTable    ErrorCode = "invalid_table"
	CodeMissingContact  ErrorCode = "missing_contact"
	CodeInvalidPhone    ErrorCode = "invalid_phone"
	CodeInvalidEmail    ErrorCode = "invalid_email"
	CodeInvalidQuantity ErrorCode = "invalid_quantity"
	CodeItemUnavailable ErrorCode = "item_unavailable"
	CodeInvalidExtra    ErrorCode = "invalid_extra"
)

// ValidationError is a caller-correctable rejection of an order request.
// These map to 4xx responses and are never logged as server faults.
type ValidationError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(code ErrorCode, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err to a ValidationError if there is one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

var (
	// ErrNotFound covers a missing row or one owned by another tenant;
	// callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrSequenceConflict is a duplicate (restaurant, order_number)
	// write collision. The reserved number is lost, not reused.
	ErrSequenceConflict = errors.New("order number conflict")
)

// InvalidTransitionError reports a rejected status change together with
// the edges the caller could have taken.
type InvalidTransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q, allowed: %v", e.From, e.To, e.Allowed)
}
