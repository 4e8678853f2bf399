package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все параметры запуска клиента.
type Config struct {
	Env             string
	LogLevel        string
	APIBaseURL      string
	RequestTimeout  time.Duration
	HTTPHost        string
	HTTPPort        string
	SessionDBPath   string
	SessionSecret   string
	MaxUploadSizeMB int64
	AllowedOrigins  []string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
}

// Load читает переменные окружения и возвращает готовую конфигурацию.
func Load() (*Config, error) {
	// Загружаем .env только если он существует, иначе используем системные переменные.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("config: не удалось прочитать .env: %v", err)
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:           env,
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel(env)),
		APIBaseURL:    strings.TrimRight(apiBaseURL(), "/"),
		HTTPHost:      getEnv("HTTP_HOST", "127.0.0.1"),
		HTTPPort:      getEnv("HTTP_PORT", "3000"),
		SessionDBPath: getEnv("SESSION_DB_PATH", defaultSessionPath()),
	}

	// пустой HTTP_HOST не должен открывать интерфейс на всех адресах
	if strings.TrimSpace(cfg.HTTPHost) == "" {
		cfg.HTTPHost = "127.0.0.1"
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("config: NEXUS_API_URL не задан")
	}

	secret := getEnv("SESSION_SECRET", "")
	if env == "production" {
		if len(secret) < 32 {
			return nil, fmt.Errorf("config: SESSION_SECRET обязателен и должен быть не менее 32 символов в production")
		}
	} else if secret == "" {
		secret = "nexus-development-session-secret-change-me"
		log.Printf("config: WARNING - используется дефолтный SESSION_SECRET, измените в production!")
	}
	cfg.SessionSecret = secret

	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		cfg.AllowedOrigins = []string{"http://localhost:" + cfg.HTTPPort, "http://127.0.0.1:" + cfg.HTTPPort}
	} else {
		for _, origin := range strings.Split(originsStr, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	var err error
	if cfg.RequestTimeout, err = parseDuration(getEnv("REQUEST_TIMEOUT", "30s")); err != nil {
		return nil, err
	}
	if cfg.MaxUploadSizeMB, err = parseInt64(getEnv("MAX_UPLOAD_MB", "10")); err != nil {
		return nil, err
	}
	if cfg.RateLimitLimit, err = parseInt64(getEnv("RATE_LIMIT_LIMIT", "5")); err != nil {
		return nil, err
	}
	if cfg.RateLimitPeriod, err = parseDuration(getEnv("RATE_LIMIT_PERIOD", "1m")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// apiBaseURL возвращает единый адрес API. Старые имена переменных поддерживаются
// для совместимости с окружениями, где адрес шлюза задавался отдельно.
func apiBaseURL() string {
	for _, key := range []string{"NEXUS_API_URL", "API_GATEWAY_URL", "API_URL"} {
		if v := getEnv(key, ""); v != "" {
			return v
		}
	}
	return "http://localhost:8765"
}

func defaultLogLevel(env string) string {
	if env == "development" {
		return "debug"
	}
	return "info"
}

// defaultSessionPath файл сессии в пользовательском каталоге конфигурации.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "nexus-session.db"
	}
	return filepath.Join(dir, "freelance-nexus", "session.db")
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// parseDuration парсит строку в duration.
func parseDuration(v string) (time.Duration, error) {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить длительность %q: %w", v, err)
	}
	return dur, nil
}

// parseInt64 парсит строку в int64.
func parseInt64(v string) (int64, error) {
	num, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить число %q: %w", v, err)
	}
	return num, nil
}

// ListenAddr адрес локального HTTP интерфейса. По умолчанию только loopback:
// интерфейс действует от имени вошедшего пользователя.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.HTTPHost, c.HTTPPort)
}
