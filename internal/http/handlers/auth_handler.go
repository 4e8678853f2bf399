package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-nexus/internal/http/response"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/session"
	"github.com/ignatzorin/freelance-nexus/internal/validation"
)

// Sessions операции хранилища сессии, нужные HTTP слою.
type Sessions interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context)
	Snapshot() session.State
}

// AuthHandler вход, регистрация и выход текущего пользователя.
type AuthHandler struct {
	sessions Sessions
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(sessions Sessions) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login обрабатывает POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email и пароль обязательны")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		_ = c.Error(err)
		return
	}

	if _, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	response.Navigate(c, h.sessions.Snapshot(), homeFor(h.sessions.Snapshot().User))
}

// Register обрабатывает POST /register. Вход после регистрации выполняется отдельно.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса")
		return
	}
	if err := validation.Struct(req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.sessions.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response.Response{Success: true, Data: user})
}

// Logout обрабатывает POST /logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	response.Success(c, h.sessions.Snapshot())
}

// Session обрабатывает GET /session.
func (h *AuthHandler) Session(c *gin.Context) {
	response.Success(c, h.sessions.Snapshot())
}
