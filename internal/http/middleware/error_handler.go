package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/http/response"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
)

// ErrorHandler отвечает за ошибки, добавленные хэндлерами через c.Error.
// Текст берётся из AppError, внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := response.Status(err)

		entry := logger.WithComponent("http").WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= 500 {
			entry.Error("Request error")
		} else {
			entry.Debug("Request rejected")
		}

		response.Error(c, err)
	}
}
