package storefront

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can branch without matching message text.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindNetwork    ErrorKind = "network"
	KindServer     ErrorKind = "server"
)

// Kind sentinels, matched with errors.Is against any *Error of that kind.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("auth error")
	ErrNetwork    = errors.New("network error")
	ErrServer     = errors.New("server error")
)

// Value validation errors.
var (
	ErrInvalidProductID   = errors.New("invalid product id")
	ErrInvalidCartItemID  = errors.New("invalid cart item id")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidRating      = errors.New("invalid rating")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCouponCode  = errors.New("invalid coupon code")
	ErrInvalidSortKey     = errors.New("invalid sort key")
	ErrInvalidPagination  = errors.New("invalid pagination")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
)

const defaultFailureMessage = "Request failed"

// Error is the tagged failure returned by the API client and the session store.
type Error struct {
	kind      ErrorKind
	operation string
	status    int
	message   string
	err       error
}

// NewError builds a tagged error. An empty message falls back to the cause or a generic text.
func NewError(kind ErrorKind, operation string, status int, message string, cause error) *Error {
	if message == "" {
		if cause != nil {
			message = cause.Error()
		} else {
			message = defaultFailureMessage
		}
	}
	return &Error{
		kind:      kind,
		operation: operation,
		status:    status,
		message:   message,
		err:       cause,
	}
}

// ValidationError tags a local validation failure for operation.
func ValidationError(operation string, cause error) *Error {
	return NewError(KindValidation, operation, 0, "", cause)
}

// Error returns the message verbatim.
func (failure *Error) Error() string {
	return failure.message
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (failure *Error) Unwrap() []error {
	unwrapped := []error{failure.kind.sentinel()}
	if failure.err != nil {
		unwrapped = append(unwrapped, failure.err)
	}
	return unwrapped
}

// Kind returns the failure class.
func (failure *Error) Kind() ErrorKind {
	return failure.kind
}

// Operation names the client operation that failed.
func (failure *Error) Operation() string {
	return failure.operation
}

// Status returns the HTTP status when one was received, otherwise zero.
func (failure *Error) Status() int {
	return failure.status
}

// Message returns the human readable message.
func (failure *Error) Message() string {
	return failure.message
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var failure *Error
	if errors.As(err, &failure) {
		return failure.kind, true
	}
	return "", false
}

func (kind ErrorKind) sentinel() error {
	switch kind {
	case KindAuth:
		return ErrAuth
	case KindNetwork:
		return ErrNetwork
	case KindServer:
		return ErrServer
	default:
		return ErrValidation
	}
}

// OperationError wraps a local infrastructure failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
