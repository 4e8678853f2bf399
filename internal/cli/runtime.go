package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-nexus/internal/apiclient"
	"github.com/ignatzorin/freelance-nexus/internal/attachment"
	"github.com/ignatzorin/freelance-nexus/internal/config"
	"github.com/ignatzorin/freelance-nexus/internal/db"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/repository"
	"github.com/ignatzorin/freelance-nexus/internal/service"
	"github.com/ignatzorin/freelance-nexus/internal/session"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

// Runtime собранный процесс клиента: файл сессии, адаптер API, хранилище сессии и сервисы.
type Runtime struct {
	Config  *config.Config
	DB      *sqlx.DB
	API     *apiclient.Client
	Session *session.Store
	Deps    view.Deps
}

// NewRuntime открывает файл сессии, восстанавливает вход и готовит зависимости представлений.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	conn, err := db.Open(ctx, cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("cli: открыть файл сессии: %w", err)
	}

	api := apiclient.New(cfg.APIBaseURL, cfg.RequestTimeout)
	store := session.New(service.NewAuthService(api), repository.NewSessionRepository(conn, cfg.SessionSecret))
	api.SetTokenSource(store)
	api.OnUnauthorized(store.HandleUnauthorized)

	store.Bootstrap(ctx)
	logger.WithComponent("cli").WithField("api", cfg.APIBaseURL).Debug("сессия восстановлена")

	return &Runtime{
		Config:  cfg,
		DB:      conn,
		API:     api,
		Session: store,
		Deps:    NewDeps(store, api, cfg.MaxUploadSizeMB),
	}, nil
}

// NewDeps зависимости представлений поверх одного адаптера API.
func NewDeps(sess view.Session, api service.API, maxUploadMB int64) view.Deps {
	return view.Deps{
		Session:       sess,
		Projects:      service.NewProjectService(api),
		Proposals:     service.NewProposalService(api),
		Payments:      service.NewPaymentService(api),
		Freelancers:   service.NewFreelancerService(api),
		AI:            service.NewAIService(api),
		Notifications: service.NewNotificationService(api),
		Attachments:   attachment.New(maxUploadMB),
	}
}

// Close закрывает файл сессии.
func (r *Runtime) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
