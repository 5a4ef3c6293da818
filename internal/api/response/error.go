package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an error that knows its HTTP status.
type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
	cause   error
}

func (e Error) Error() string {
	return e.Extras
}

func (e Error) Unwrap() error {
	return e.cause
}

// NewError wraps cause with an HTTP status. The message shown to clients is
// cause's text.
func NewError(code int, cause error) Error {
	return Error{
		Success: false,
		Code:    code,
		Extras:  cause.Error(),
		cause:   cause,
	}
}

// ErrorFrom writes err with its own status, or 500 for errors that carry none.
func ErrorFrom(c *gin.Context, err error) {
	var apiErr Error
	if errors.As(err, &apiErr) {
		ErrorResponse(c, apiErr.Code, apiErr.Extras)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, err.Error())
}
