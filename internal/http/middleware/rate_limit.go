package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/freelance-nexus/internal/http/response"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

const (
	defaultAttempts = 5
	defaultWindow   = time.Minute
)

// RateLimitMiddleware ограничивает попытки входа и регистрации.
// Ключ: адрес клиента и маршрут, счётчики в памяти процесса.
func RateLimitMiddleware(attempts int64, window time.Duration) gin.HandlerFunc {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	lim := limiter.New(memory.NewStore(), limiter.Rate{Period: window, Limit: attempts})

	return func(c *gin.Context) {
		state, err := lim.Get(c.Request.Context(), c.ClientIP()+":"+c.FullPath())
		if err != nil {
			logger.WithComponent("http").WithError(err).Error("rate limiter недоступен")
			response.Error(c, apperror.Wrap(err, apperror.ErrCodeInternal, "rate limiter недоступен"))
			c.Abort()
			return
		}
		setLimitHeaders(c, state)

		if state.Reached {
			response.TooManyRequests(c, "слишком много попыток, попробуйте позже")
			return
		}
		c.Next()
	}
}

func setLimitHeaders(c *gin.Context, state limiter.Context) {
	c.Header("X-RateLimit-Limit", strconv.FormatInt(state.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(state.Reset, 10))
}
