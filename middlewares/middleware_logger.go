package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/club-manager/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Warn(path + " " + c.Errors.String())
			return
		}
		entry.Info(path)
	}
}

// AuditLogger records who performed an admin action and how it ended.
func AuditLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		username, _ := c.Get("username")
		fields := logrus.Fields{
			"user":   username,
			"action": c.Request.Method + " " + c.FullPath(),
			"status": c.Writer.Status(),
		}
		if c.Writer.Status() < 400 {
			utils.InfoLogger.WithFields(fields).Info("admin action")
		} else {
			utils.ErrorLogger.WithFields(fields).Warn("admin action rejected")
		}
	}
}
