package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/lifedebt_server/internal/pkg/metrics"
)

// Metrics 记录请求数与耗时，route 取路由模板避免高基数
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
