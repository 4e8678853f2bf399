package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-nexus/internal/guard"
	"github.com/ignatzorin/freelance-nexus/internal/http/response"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/session"
)

// ContextUserKey ключ пользователя сессии в gin.Context.
const ContextUserKey = "user"

// SessionState источник снимка сессии.
type SessionState interface {
	Snapshot() session.State
}

// Guard пропускает запрос к маршруту только при разрешающем решении.
func Guard(sessions SessionState, policy guard.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := sessions.Snapshot()

		switch guard.Evaluate(policy, state) {
		case guard.Loading:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"state": "loading"})
			return
		case guard.DeniedUnauthenticated:
			response.Unauthorized(c, "требуется авторизация", guard.LoginPath)
			return
		case guard.DeniedForbidden:
			response.Forbidden(c, "у вас нет доступа к этой странице")
			return
		}

		if state.User != nil {
			c.Set(ContextUserKey, state.User)
		}
		c.Next()
	}
}

// CurrentUser пользователь, положенный Guard.
func CurrentUser(c *gin.Context) *models.User {
	raw, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := raw.(*models.User)
	return user
}
