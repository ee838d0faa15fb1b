package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error independently of its message.
type Kind string

const (
	KindValidation Kind = "validation"
	KindDuplicate  Kind = "duplicate"
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
	KindFormat     Kind = "format"
	KindInternal   Kind = "internal"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates a new Error
func New(code int, kind Kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Sentinels for errors.Is matching.
var (
	ErrValidation = New(http.StatusBadRequest, KindValidation, "Validation error", nil)
	ErrDuplicate  = New(http.StatusBadRequest, KindDuplicate, "Duplicate", nil)
	ErrNotFound   = New(http.StatusNotFound, KindNotFound, "Not found", nil)
	ErrStorage    = New(http.StatusInternalServerError, KindStorage, "Database error", nil)
	ErrFormat     = New(http.StatusBadRequest, KindFormat, "Invalid data format", nil)
	ErrInternal   = New(http.StatusInternalServerError, KindInternal, "Internal server error", nil)
)

func Validation(message string) *Error {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

func Duplicate(message string) *Error {
	return New(http.StatusBadRequest, KindDuplicate, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

func Format(message string) *Error {
	return New(http.StatusBadRequest, KindFormat, message, nil)
}

// Storage wraps a driver or connection failure.
func Storage(err error) *Error {
	return New(http.StatusInternalServerError, KindStorage, "Database error", err)
}

// From returns err as an *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return New(http.StatusInternalServerError, KindInternal, err.Error(), err)
}

// Respond writes the failure envelope used by every handler.
func Respond(c *gin.Context, err error) {
	appErr := From(err)
	c.JSON(appErr.Code, gin.H{"ok": false, "error": appErr.Error()})
}

// Recovered renders a panic as an internal error envelope. Use with
// gin.CustomRecovery.
func Recovered(c *gin.Context, _ interface{}) {
	Respond(c, ErrInternal)
	c.Abort()
}

// Error middleware for Gin
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		Respond(c, c.Errors.Last().Err)
		c.Abort()
	}
}
