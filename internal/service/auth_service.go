package service

import (
	"context"

	"github.com/ignatzorin/freelance-nexus/internal/apiclient"
	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// AuthService вход и регистрация через API пользователей.
type AuthService struct {
	api API
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(api API) *AuthService {
	return &AuthService{api: api}
}

// Login отправляет учётные данные. Ошибка возвращается без изменений и без повторов.
// 401 здесь означает неверный пароль, а не истёкшую сессию.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := s.api.Post(apiclient.Anonymous(ctx), "/api/users/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register создаёт учётную запись. Вход после регистрации не выполняется.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := s.api.Post(apiclient.Anonymous(ctx), "/api/users/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
