// Package httperr writes the API error envelope
// {"error": {"code", "message", "details"}} shared by handlers and middleware.
package httperr

import "github.com/gin-gonic/gin"

const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternal        = "INTERNAL"
)

type Body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type Envelope struct {
	Error Body `json:"error"`
}

func Write(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, Envelope{Error: Body{Code: code, Message: message, Details: details}})
}

// Abort writes the envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, Envelope{Error: Body{Code: code, Message: message, Details: details}})
}
