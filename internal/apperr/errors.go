// Package apperr classifies failures into the small set of kinds the HTTP
// surface knows how to render.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the coarse classification of an error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Stable machine-readable codes returned to clients.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeEmptyOrder         = "EMPTY_ORDER"
	CodePriceMismatch      = "PRICE_MISMATCH"
	CodeOutOfStock         = "OUT_OF_STOCK"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailInUse         = "EMAIL_IN_USE"
	CodeOrderNotPaid       = "ORDER_NOT_PAID"
	CodeAlreadyReviewed    = "ALREADY_REVIEWED"
	CodeInternal           = "INTERNAL"
)

// Error is a classified application error. Message is safe to show to the
// client; Err is the internal cause and is never rendered in production.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinel errors compare equal to wrapped copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithDetails returns a copy of e carrying extra client-visible fields.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of e with a different public message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(KindValidation, CodeValidation, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, CodeNotFound, message)
}

// Internal wraps an unclassified cause behind a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "Internal server error", Err: cause}
}

var (
	ErrEmptyOrder         = New(KindValidation, CodeEmptyOrder, "No order items")
	ErrInvalidCredentials = New(KindUnauthenticated, CodeInvalidCredentials, "Invalid email address and password combination. Please try again.")
	ErrNoToken            = New(KindUnauthenticated, CodeUnauthenticated, "Not authorised - no token")
	ErrTokenFailed        = New(KindUnauthenticated, CodeUnauthenticated, "Not authorised - token failed")
	ErrNotAdmin           = New(KindForbidden, CodeForbidden, "Not authorised as an admin")
	ErrForbidden          = New(KindForbidden, CodeForbidden, "Not authorised to access this resource")
	ErrEmailInUse         = New(KindConflict, CodeEmailInUse, "Email address is already in use")
	ErrOrderNotFound      = NotFound("Order not found")
	ErrUserNotFound       = NotFound("User not found")
	ErrProductNotFound    = NotFound("Product not found")
	ErrOrderNotPaid       = New(KindConflict, CodeOrderNotPaid, "Order has not been paid")
	ErrAlreadyReviewed    = New(KindConflict, CodeAlreadyReviewed, "Product already reviewed")
)

// From classifies any error. Unknown errors become KindInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
