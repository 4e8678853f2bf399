package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-nexus/internal/http/response"
)

// IDParam проверяет, что параметр маршрута является положительным числовым идентификатором.
// Использование: r.GET("/projects/:id", IDParam("id"), handler)
func IDParam(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		if raw == "" {
			response.BadRequest(c, "параметр "+paramName+" обязателен")
			c.Abort()
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "параметр "+paramName+" должен быть положительным числом")
			c.Abort()
			return
		}

		c.Set(paramName, id)
		c.Next()
	}
}

// ParamID идентификатор, проверенный IDParam.
func ParamID(c *gin.Context, paramName string) int64 {
	return c.GetInt64(paramName)
}
