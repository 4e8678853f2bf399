package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-nexus/internal/config"
	"github.com/ignatzorin/freelance-nexus/internal/guard"
	"github.com/ignatzorin/freelance-nexus/internal/http/handlers"
	"github.com/ignatzorin/freelance-nexus/internal/http/middleware"
)

// SetupRouter собирает локальный сервер представлений.
// Каждый маршрут guard.Routes обслуживается GET (состояние) и POST .../actions/:action.
func SetupRouter(
	cfg *config.Config,
	sessions middleware.SessionState,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	viewHandler *handlers.ViewHandler,
	wsHandler *handlers.WSHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	r.POST("/login", middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod), authHandler.Login)
	r.POST("/register", middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod), authHandler.Register)
	r.POST("/logout", authHandler.Logout)
	r.GET("/session", authHandler.Session)

	if wsHandler != nil {
		r.GET("/ws", wsHandler.Handle)
	}

	for _, route := range guard.Routes {
		if !viewHandler.Has(route.Path) {
			continue
		}

		group := r.Group(route.Path, middleware.Guard(sessions, route.Policy))
		if param := handlers.RouteParam(route.Path); param != "" {
			group.Use(middleware.IDParam(param))
		}

		group.GET("", viewHandler.Show(route.Path))
		if viewHandler.Actions(route.Path) {
			group.POST("/actions/:action", viewHandler.Act(route.Path))
		}
	}

	r.NoRoute(handlers.NoRoute)

	return r
}
