// Package session хранит состояние входа пользователя: токен, пользователя и флаг загрузки.
// Store единственный владелец этого состояния; остальные компоненты только читают его.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

// Authenticator описывает вызовы API пользователей, нужные хранилищу.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

// Persister долговременное хранилище токена и пользователя.
// Токен и пользователь сохраняются и удаляются вместе.
type Persister interface {
	Load(ctx context.Context) (string, *models.User, error)
	Save(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
}

// State снимок сессии. Токен в снимок не попадает.
type State struct {
	User          *models.User `json:"user"`
	Authenticated bool         `json:"authenticated"`
	Loading       bool         `json:"loading"`
}

// Store хранилище сессии процесса.
type Store struct {
	auth    Authenticator
	persist Persister
	now     func() time.Time

	once sync.Once

	mu            sync.RWMutex
	token         string
	user          *models.User
	authenticated bool
	loading       bool

	listenersMu sync.Mutex
	listeners   map[int]func(State)
	nextID      int
}

// New создаёт хранилище в состоянии loading=true. До Bootstrap сессия не определена.
func New(auth Authenticator, persist Persister) *Store {
	return &Store{
		auth:      auth,
		persist:   persist,
		now:       time.Now,
		loading:   true,
		listeners: make(map[int]func(State)),
	}
}

// Bootstrap восстанавливает сессию из хранилища. Выполняется один раз за процесс,
// повторные вызовы ничего не делают. Всегда завершается с loading=false.
func (s *Store) Bootstrap(ctx context.Context) {
	s.once.Do(func() {
		log := logger.WithComponent("session")

		token, user, err := s.persist.Load(ctx)
		if err != nil {
			log.WithError(err).Warn("не удалось прочитать сохранённую сессию, начинаем заново")
			s.clearPersisted(ctx)
			token, user = "", nil
		}

		if token != "" && user != nil && expired(token, s.now()) {
			log.Info("сохранённый токен истёк, сессия сброшена")
			s.clearPersisted(ctx)
			token, user = "", nil
		}

		s.mu.Lock()
		if token != "" && user != nil {
			s.token = token
			s.user = user
			s.authenticated = true
		}
		s.loading = false
		s.mu.Unlock()

		s.notify()
	})
}

// Login выполняет вход. При ошибке состояние не меняется, ошибка возвращается как есть.
func (s *Store) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	resp, err := s.auth.Login(ctx, models.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return nil, err
	}

	token := resp.BearerToken()
	if token == "" || resp.User == nil {
		return nil, apperror.New(apperror.ErrCodeInternal, "ответ входа не содержит токена или пользователя")
	}

	user := *resp.User
	enrichFromClaims(&user, token)

	if err := s.persist.Save(ctx, token, &user); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить сессию")
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.authenticated = true
	s.loading = false
	s.mu.Unlock()

	logger.WithComponent("session").WithFields(logrus.Fields{
		"user_id": user.ID,
		"roles":   user.Roles,
	}).Info("вход выполнен")

	s.notify()
	return resp, nil
}

// Register создаёт учётную запись без входа.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.auth.Register(ctx, req)
}

// Logout очищает хранилище и состояние. Запросов к API не выполняет.
func (s *Store) Logout(ctx context.Context) {
	s.clearPersisted(ctx)

	s.mu.Lock()
	wasAuthenticated := s.authenticated
	s.token = ""
	s.user = nil
	s.authenticated = false
	s.loading = false
	s.mu.Unlock()

	if wasAuthenticated {
		logger.WithComponent("session").Info("выход выполнен")
	}
	s.notify()
}

// HandleUnauthorized реакция на 401 от API: локальный выход.
func (s *Store) HandleUnauthorized() {
	if !s.IsAuthenticated() {
		return
	}
	logger.WithComponent("session").Warn("API ответил 401, сессия завершена")
	s.Logout(context.Background())
}

// Token текущий токен или пустая строка. Реализует источник токена для адаптера.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser копия текущего пользователя или nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) HasRole(role models.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated && s.user.HasRole(role)
}

// Snapshot согласованный снимок состояния.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{User: copyUser(s.user), Authenticated: s.authenticated, Loading: s.loading}
}

// Subscribe регистрирует слушателя изменений. Возвращает функцию отписки.
func (s *Store) Subscribe(fn func(State)) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) notify() {
	s.listenersMu.Lock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	if len(fns) == 0 {
		return
	}
	state := s.Snapshot()
	for _, fn := range fns {
		fn(state)
	}
}

func copyUser(user *models.User) *models.User {
	if user == nil {
		return nil
	}
	u := *user
	u.Roles = append(models.Roles(nil), user.Roles...)
	return &u
}

func (s *Store) clearPersisted(ctx context.Context) {
	if err := s.persist.Clear(ctx); err != nil {
		logger.WithComponent("session").WithError(err).Error("не удалось очистить сохранённую сессию")
	}
}

// enrichFromClaims дополняет пользователя данными из токена, если API их не прислал.
func enrichFromClaims(user *models.User, token string) {
	claims, ok := parseClaims(token)
	if !ok {
		return
	}
	if user.ID == 0 && claims.UserID != 0 {
		user.ID = claims.UserID
	}
	if len(user.Roles) == 0 {
		for _, raw := range append([]string{claims.Role}, claims.Roles...) {
			role := models.Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "ROLE_"))
			if role != "" && !user.Roles.Has(role) {
				user.Roles = append(user.Roles, role)
			}
		}
	}
}
