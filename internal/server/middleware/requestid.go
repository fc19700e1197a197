package middleware

import (
	"github.com/gin-gonic/gin"

	"fitcoach/internal/pkg/id"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id, or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}
