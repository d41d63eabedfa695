package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/log"
)

// HeaderRequestID is the header the request ID is read from and echoed to.
const HeaderRequestID = "X-Request-Id"

// RequestID tags each request with a stable ID for log correlation. An
// inbound X-Request-Id is honored; otherwise a fresh UUID is issued. The ID
// is placed on the request context so log entries pick it up automatically.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(log.SetRequestID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
