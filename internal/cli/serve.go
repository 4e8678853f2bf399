package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-nexus/internal/goroutine"
	"github.com/ignatzorin/freelance-nexus/internal/http/handlers"
	"github.com/ignatzorin/freelance-nexus/internal/http/router"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/ws"
)

const shutdownTimeout = 10 * time.Second

// serveCmd локальный HTTP интерфейс: те же представления по их маршрутам
// и вебсокет с обновлениями состояния.
func (a *App) serveCmd() *cobra.Command {
	var host, port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить локальный HTTP интерфейс с вебсокетами",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.rt.Config
			if host != "" {
				cfg.HTTPHost = host
			}
			if port != "" {
				cfg.HTTPPort = port
			}
			return a.serve(cmd.Context(), cfg.ListenAddr())
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "адрес прослушивания (перекрывает HTTP_HOST, по умолчанию 127.0.0.1)")
	cmd.Flags().StringVar(&port, "port", "", "порт (перекрывает HTTP_PORT)")
	return cmd
}

func (a *App) serve(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := a.rt.Config
	log := logger.WithComponent("serve")

	hub := ws.NewHub()
	goroutine.GoContext(ctx, "ws-hub", hub.Run)

	authHandler := handlers.NewAuthHandler(a.rt.Session)
	healthHandler := handlers.NewHealthHandler(a.rt.DB, a.rt.Session, cfg.APIBaseURL)
	viewHandler := handlers.NewViewHandler(a.rt.Deps, hub)
	wsHandler := handlers.NewWSHandler(hub, a.rt.Session, cfg.AllowedOrigins)
	stopAccess := wsHandler.EnforceAccess()
	defer stopAccess()

	engine := router.SetupRouter(cfg, a.rt.Session, authHandler, healthHandler, viewHandler, wsHandler)

	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при отмене контекста.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("ошибка остановки http сервера")
		}
	}()

	log.WithField("addr", addr).WithField("api", cfg.APIBaseURL).Info("HTTP сервер запущен")
	a.printer.Message("Интерфейс доступен на %s", browseURL(addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("HTTP сервер остановлен")
	return nil
}

// browseURL адрес для браузера: неуказанный хост заменяется на localhost.
func browseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
