package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/guard"
	"github.com/ignatzorin/freelance-nexus/internal/http/middleware"
	"github.com/ignatzorin/freelance-nexus/internal/http/response"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/session"
	"github.com/ignatzorin/freelance-nexus/internal/ws"
)

// SessionFeed снимок сессии и подписка на его изменения.
type SessionFeed interface {
	middleware.SessionState
	Subscribe(fn func(session.State)) func()
}

// WSHandler подписывает WebSocket клиента на изменения одного представления.
type WSHandler struct {
	hub      *ws.Hub
	sessions SessionFeed
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер.
func NewWSHandler(hub *ws.Hub, sessions SessionFeed, allowedOrigins []string) *WSHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimSpace(o)] = struct{}{}
	}

	return &WSHandler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := origins["*"]; ok {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /ws?view=/client/proposals/7
func (h *WSHandler) Handle(c *gin.Context) {
	path := c.Query("view")
	route, ok := guard.Match(path)
	if !ok {
		response.NotFound(c, "представление не найдено")
		return
	}

	switch guard.Evaluate(route.Policy, h.sessions.Snapshot()) {
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

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.WithComponent("ws").WithError(err).Debug("upgrade не удался")
		return
	}

	client := ws.NewClient(conn, h.hub, path)
	h.hub.Register(client)
	logger.WithComponent("ws").WithFields(logrus.Fields{
		"client": client.ID(),
		"topic":  path,
	}).Debug("клиент подписан")

	client.Run(c.Request.Context())
}

// EnforceAccess при каждом изменении сессии заново проверяет доступ к темам хаба
// и отключает подписчиков представлений, к которым доступа больше нет.
// Возвращает функцию отписки.
func (h *WSHandler) EnforceAccess() func() {
	return h.sessions.Subscribe(func(state session.State) {
		revoked := h.hub.Revoke(func(topic string) bool {
			route, ok := guard.Match(topic)
			if !ok {
				return false
			}
			decision := guard.Evaluate(route.Policy, state)
			return decision == guard.Granted || decision == guard.Loading
		})
		if revoked > 0 {
			logger.WithComponent("ws").WithField("clients", revoked).Info("подписки отозваны после смены сессии")
		}
	})
}
