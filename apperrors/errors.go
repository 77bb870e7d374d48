package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code and message so wrapped copies of a sentinel
// still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of a sentinel carrying the underlying cause.
func Wrap(sentinel *Error, err error) *Error {
	return New(sentinel.Code, sentinel.Message, err)
}

// Invalid returns a copy of a sentinel with a client-facing detail.
func Invalid(sentinel *Error, detail string) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Detail: detail}
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
	ErrTooManyRequests    = New(http.StatusTooManyRequests, "Rate limit exceeded", nil)
)

// Storage error types
var (
	ErrStorage      = New(http.StatusServiceUnavailable, "Session storage error", nil)
	ErrCorruptState = New(http.StatusInternalServerError, "Corrupt session state", nil)
)

// Cart error types
var (
	ErrInvalidFoodID   = New(http.StatusBadRequest, "Invalid food id", nil)
	ErrInvalidQuantity = New(http.StatusBadRequest, "Invalid quantity", nil)
	ErrInvalidPrice    = New(http.StatusBadRequest, "Price must be greater than zero", nil)
	ErrItemNotInCart   = New(http.StatusNotFound, "Item not in cart", nil)
	ErrEmptyCart       = New(http.StatusBadRequest, "Cart is empty", nil)
)

// Authentication error types
var (
	ErrNotAuthenticated   = New(http.StatusUnauthorized, "Not authenticated", nil)
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
)

// Checkout error types
var (
	ErrInvalidReservation = New(http.StatusBadRequest, "Invalid reservation", nil)
	ErrInvalidPayment     = New(http.StatusBadRequest, "Invalid payment method", nil)
	ErrInvalidOrderStatus = New(http.StatusBadRequest, "Invalid order status", nil)
	ErrPaymentFailed      = New(http.StatusPaymentRequired, "Payment failed", nil)
)

// Upstream error types
var (
	ErrUpstream = New(http.StatusBadGateway, "Restaurant service error", nil)
)

// From converts any error into an *Error, defaulting to 500.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternalServer, err)
}

// Error middleware for Gin
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			appErr := From(c.Errors.Last().Err)
			c.JSON(appErr.Code, appErr)
			c.Abort()
		}
	}
}
