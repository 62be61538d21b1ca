package middleware

import (
	"net/http"

	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DefaultMaxRequestSize matches the JSON body limit of the public API.
const DefaultMaxRequestSize = 10 << 20

func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
