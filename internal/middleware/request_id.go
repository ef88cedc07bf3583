package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/to-do-list-api/internal/constants"
)

// RequestID tags each request with an ID, reusing one sent by the client
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(constants.HeaderRequestID, requestID)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or "-" outside it
func GetRequestID(c *gin.Context) string {
	if requestID := c.GetString(constants.ContextKeyRequestID); requestID != "" {
		return requestID
	}
	return "-"
}
