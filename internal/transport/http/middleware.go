package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stocklens/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID 为每个请求分配（或透传）一个请求 ID，并记录访问日志。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()
		logger.Infof("[http] %s %s %d %s rid=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), id)
	}
}
