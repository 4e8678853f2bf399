// Package apiclient адаптер исходящих HTTP запросов к API маркетплейса.
// Подставляет базовый адрес и bearer токен, разбирает ответы и ошибки.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

// RequestIDHeader заголовок корреляции запросов.
const RequestIDHeader = "X-Request-ID"

// TokenSource отдаёт текущий токен сессии (пустая строка для анонимного запроса).
type TokenSource interface {
	Token() string
}

type anonymousKey struct{}

// Anonymous помечает запрос как выполняемый без сессии: токен не подставляется,
// а ответ 401 не считается истечением сессии. Так вызываются вход и регистрация.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	anon, _ := ctx.Value(anonymousKey{}).(bool)
	return anon
}

// Client адаптер к API шлюзу.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()
}

// New создаёт клиента с единым базовым адресом.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL возвращает настроенный адрес API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource подключает источник токена (обычно хранилище сессии).
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnUnauthorized регистрирует реакцию на ответ 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do выполняет ровно один запрос и декодирует 2xx ответ в out (если out не nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать запрос")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сформировать запрос")
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	anonymous := isAnonymous(ctx)
	if token := c.token(); token != "" && !anonymous {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := logger.WithComponent("apiclient").WithFields(logrus.Fields{
		"method":     method,
		"path":       req.URL.Path,
		"request_id": requestID,
	})

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Debug("запрос не дошёл до API")
		return networkError(ctx, err)
	}
	defer resp.Body.Close()

	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(started).String(),
	}).Debug("ответ API")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := apperror.Request(resp.StatusCode, serverMessage(resp.Body))
		if resp.StatusCode == http.StatusUnauthorized && !anonymous {
			c.unauthorized()
		}
		return appErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(ctx, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "некорректный ответ API")
	}
	return nil
}

func (c *Client) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

func (c *Client) unauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func networkError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return apperror.Wrap(ctx.Err(), apperror.ErrCodeNetwork, "запрос отменён")
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperror.Wrap(ctx.Err(), apperror.ErrCodeNetwork, "время ожидания ответа истекло")
	}
	return apperror.Network(err)
}

// serverMessage достаёт текст ошибки из тела ответа: message, затем error.
func serverMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if msg, ok := payload[key].(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return ""
}
