package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger пишет в лог каждый запрос: метод, путь, статус и длительность.
// Детали приватных ошибок попадают только в лог, клиенту не отдаются.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := l.WithFields(logrus.Fields{
			"Method":   c.Request.Method,
			"Path":     c.Request.URL.Path,
			"Status":   c.Writer.Status(),
			"Duration": time.Since(start).String(),
		})

		privateErrs := c.Errors.ByType(gin.ErrorTypePrivate)
		if len(privateErrs) > 0 {
			entry.WithField("Errors", privateErrs.String()).Error("request failed")
			return
		}
		entry.Info("request")
	}
}
