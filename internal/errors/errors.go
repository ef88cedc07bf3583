package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

const bearerChallenge = `Bearer realm="api"`

// codeSpec fixes the status and fallback message for an error code.
type codeSpec struct {
	status   int
	fallback string
	// challenge adds a WWW-Authenticate header naming the bearer scheme
	challenge bool
}

var codes = map[string]codeSpec{
	ErrCodeUnauthorized:       {http.StatusUnauthorized, "Authentication required", true},
	ErrCodeInvalidCredentials: {http.StatusUnauthorized, "Invalid credentials", true},
	ErrCodeInvalidToken:       {http.StatusUnauthorized, "Token is invalid or expired", true},
	ErrCodeForbidden:          {http.StatusForbidden, "Access denied", false},
	ErrCodeInvalidInput:       {http.StatusBadRequest, "Invalid request", false},
	ErrCodeNotFound:           {http.StatusNotFound, "Resource not found", false},
	ErrCodeInternalError:      {http.StatusInternalServerError, "Internal server error", false},
}

// APIError is the body of every error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// StatusCode returns the HTTP status registered for the error code, or 500.
func (e *APIError) StatusCode() int {
	if spec, ok := codes[e.Code]; ok {
		return spec.status
	}
	return http.StatusInternalServerError
}

// Respond writes err with the status of its code and stops the handler chain.
// An empty message is replaced by the code's fallback.
func Respond(c *gin.Context, err *APIError) {
	spec, ok := codes[err.Code]
	if ok && err.Message == "" {
		err.Message = spec.fallback
	}
	if spec.challenge {
		c.Header("WWW-Authenticate", bearerChallenge)
	}
	c.AbortWithStatusJSON(err.StatusCode(), err)
}

// Unauthorized sends a 401 response for a request that needs credentials
func Unauthorized(c *gin.Context, message string) {
	Respond(c, NewAPIError(ErrCodeUnauthorized, message))
}

// InvalidCredentials sends a 401 response for a failed login
func InvalidCredentials(c *gin.Context, message string) {
	Respond(c, NewAPIError(ErrCodeInvalidCredentials, message))
}

// InvalidToken sends a 401 response for a rejected token
func InvalidToken(c *gin.Context, message string) {
	Respond(c, NewAPIError(ErrCodeInvalidToken, message))
}

func Forbidden(c *gin.Context, message string) {
	Respond(c, NewAPIError(ErrCodeForbidden, message))
}

func NotFound(c *gin.Context, message string) {
	Respond(c, NewAPIError(ErrCodeNotFound, message))
}

func BadRequest(c *gin.Context, message string) {
	Respond(c, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response whose details map each
// rejected field to its messages
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	err := NewAPIError(ErrCodeInvalidInput, message)
	err.Details = details
	Respond(c, err)
}

func InternalError(c *gin.Context, message string) {
	Respond(c, NewAPIError(ErrCodeInternalError, message))
}
