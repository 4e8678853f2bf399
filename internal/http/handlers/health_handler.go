package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

const healthTimeout = 2 * time.Second

// HealthHandler состояние локального клиента: файл сессии и вход.
type HealthHandler struct {
	db       *sqlx.DB
	sessions Sessions
	apiURL   string
}

func NewHealthHandler(db *sqlx.DB, sessions Sessions, apiURL string) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions, apiURL: apiURL}
}

// HealthResponse ответ GET /health. API не опрашивается: клиент не знает его health-путей.
type HealthResponse struct {
	Status       string    `json:"status"`
	CheckedAt    time.Time `json:"checkedAt"`
	API          string    `json:"api"`
	SessionFile  string    `json:"sessionFile"`
	SessionState string    `json:"session"`
	Error        string    `json:"error,omitempty"`
}

// Health отвечает 503 только если файл сессии недоступен.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:       "ok",
		CheckedAt:    time.Now().UTC(),
		API:          h.apiURL,
		SessionFile:  "ok",
		SessionState: sessionLabel(h.sessions),
	}

	if err := h.pingSessionFile(c.Request.Context()); err != nil {
		resp.Status = "degraded"
		resp.SessionFile = "unavailable"
		resp.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) pingSessionFile(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return h.db.PingContext(ctx)
}

func sessionLabel(sessions Sessions) string {
	if sessions == nil {
		return "unknown"
	}
	state := sessions.Snapshot()
	switch {
	case state.Loading:
		return "loading"
	case state.Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}
