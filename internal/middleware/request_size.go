package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestSize limits the size of incoming request bodies.
// Reads past maxBytes fail with *http.MaxBytesError, which handlers map to 413.
func RequestSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
