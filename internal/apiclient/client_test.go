package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestDo_InjectsTokenAndRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/7", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "title": "Лендинг"})
	}))
	defer server.Close()

	c := New(server.URL+"/", time.Second)
	c.SetTokenSource(staticToken("secret"))

	var out struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, c.Get(context.Background(), "/api/projects/7", nil, &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Лендинг", out.Title)
}

func TestDo_AnonymousHasNoAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "OPEN", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	c.SetTokenSource(staticToken(""))

	var out []map[string]any
	require.NoError(t, c.Get(context.Background(), "api/projects", url.Values{"status": {"OPEN"}}, &out))
	assert.Empty(t, out)
}

func TestDo_PostSendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PENDING", body["status"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":11}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	var out struct{ ID int64 }
	require.NoError(t, c.Post(context.Background(), "/api/proposals", map[string]string{"status": "PENDING"}, &out))
	assert.Equal(t, int64(11), out.ID)
}

func TestDo_EmptyBodyIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	var out map[string]any
	require.NoError(t, c.Delete(context.Background(), "/api/projects/3", &out))
	assert.Nil(t, out)
}

func TestDo_RequestErrorCarriesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"error":"Bad Request","message":"Бюджет вне диапазона"}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	err := c.Post(context.Background(), "/api/proposals", map[string]int{"bidAmount": 1}, nil)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeRequest, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Бюджет вне диапазона", appErr.Message)
}

func TestDo_RequestErrorGenericMarker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	err := c.Get(context.Background(), "/api/projects", nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsRequest(err))
	assert.Contains(t, apperror.UserMessage(err), apperror.GenericFailure)
}

func TestDo_UnauthorizedFiresHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Token expired"}`))
	}))
	defer server.Close()

	var fired int32
	c := New(server.URL, time.Second)
	c.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) })

	err := c.Get(context.Background(), "/api/proposals/freelancer/3", nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsAuth(err))
	assert.Equal(t, "Token expired", apperror.UserMessage(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestDo_AnonymousRequestSkipsTokenAndHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Неверный пароль"}`))
	}))
	defer server.Close()

	var fired int32
	c := New(server.URL, time.Second)
	c.SetTokenSource(staticToken("secret"))
	c.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) })

	err := c.Post(Anonymous(context.Background()), "/api/users/login", map[string]string{"password": "bad"}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsAuth(err))
	assert.Zero(t, atomic.LoadInt32(&fired))
}

func TestDo_NetworkError(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second)
	err := c.Get(context.Background(), "/api/projects", nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsNetwork(err))
}

func TestDo_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(server.URL, time.Second)
	err := c.Get(ctx, "/api/projects", nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsNetwork(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_InvalidJSONIsInternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	var out map[string]any
	err := c.Get(context.Background(), "/api/projects/1", nil, &out)
	require.Error(t, err)
	assert.False(t, apperror.IsRequest(err))
	assert.False(t, apperror.IsNetwork(err))
}
