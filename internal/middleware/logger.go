package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"vertexchat-go/internal/logging"
)

// RequestLogger logs HTTP requests at debug level; scrapes are frequent.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		extras := log.Fields{
			"status":     c.Writer.Status(),
			"latency_ms": logging.DurationMS(time.Since(start)),
			"user_agent": c.Request.UserAgent(),
		}
		entry := logging.WithReq(c, extras)
		if c.Writer.Status() >= 500 {
			entry.Warn("http_request")
			return
		}
		entry.Debug("http_request")
	}
}
