// Package cli командная строка клиента: каждая команда монтирует представление,
// выполняет загрузку или действие и печатает состояние.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-nexus/internal/config"
	"github.com/ignatzorin/freelance-nexus/internal/guard"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

// RuntimeFactory собирает Runtime по конфигурации. Тесты подменяют её.
type RuntimeFactory func(ctx context.Context, cfg *config.Config) (*Runtime, error)

// App общее состояние команд одного запуска.
type App struct {
	out, errOut io.Writer
	factory     RuntimeFactory
	prompt      Prompter

	apiURL string
	output string
	yes    bool

	rt      *Runtime
	printer *Printer
}

// Option настраивает App.
type Option func(*App)

func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) { a.out, a.errOut = out, errOut }
}

func WithRuntimeFactory(f RuntimeFactory) Option {
	return func(a *App) { a.factory = f }
}

func WithPrompter(p Prompter) Option {
	return func(a *App) { a.prompt = p }
}

// NewRootCmd корневая команда nexus.
func NewRootCmd(opts ...Option) *cobra.Command {
	root, _ := newRoot(opts...)
	return root
}

func newRoot(opts ...Option) (*cobra.Command, *App) {
	app := &App{
		out:     os.Stdout,
		errOut:  os.Stderr,
		factory: NewRuntime,
		prompt:  huhPrompter{},
	}
	for _, opt := range opts {
		opt(app)
	}

	root := &cobra.Command{
		Use:   "nexus",
		Short: "Клиент фриланс биржи",
		Long: `nexus клиент фриланс биржи: проекты, предложения, платежи и AI подсказки.

Переменные окружения:
  NEXUS_API_URL      адрес API (по умолчанию http://localhost:8765)
  SESSION_DB_PATH    файл сохранённой сессии
  LOG_LEVEL          уровень логов (логи пишутся в stderr)`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}
	root.SetOut(app.out)
	root.SetErr(app.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&app.apiURL, "api-url", "", "адрес API (перекрывает NEXUS_API_URL)")
	flags.StringVarP(&app.output, "output", "o", string(FormatTable), "формат вывода: table, json, yaml")
	flags.BoolVarP(&app.yes, "yes", "y", false, "не спрашивать подтверждение")

	root.AddCommand(
		app.loginCmd(), app.logoutCmd(), app.registerCmd(), app.whoamiCmd(),
		app.projectsCmd(), app.proposalsCmd(), app.rankingCmd(),
		app.paymentsCmd(), app.dashboardCmd(), app.profileCmd(),
		app.recommendationsCmd(), app.notificationsCmd(), app.serveCmd(),
	)
	return root, app
}

// Execute запускает CLI с аргументами процесса.
func Execute(ctx context.Context) error {
	root, app := newRoot()
	defer func() {
		if err := app.teardown(); err != nil {
			logger.WithComponent("cli").WithError(err).Warn("файл сессии не закрыт")
		}
	}()
	return root.ExecuteContext(ctx)
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	format, err := ParseFormat(a.output)
	if err != nil {
		return err
	}
	a.printer = NewPrinter(a.out, format)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}

	logger.Init(cfg.LogLevel, cfg.Env == "development")
	logger.SetOutput(a.errOut)

	rt, err := a.factory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	a.rt = rt
	return nil
}

func (a *App) teardown() error {
	if a.rt == nil {
		return nil
	}
	err := a.rt.Close()
	a.rt = nil
	return err
}

// deps зависимости представлений с подтверждением через терминал.
func (a *App) deps() view.Deps {
	var confirm view.Confirmer = view.Declined
	switch {
	case a.yes:
		confirm = view.Confirmed
	case a.prompt != nil:
		confirm = view.ConfirmFunc(a.prompt.Confirm)
	}
	return a.rt.Deps.With(confirm, flashNavigator{printer: a.printer})
}

// authorize проверяет доступ к маршруту представления по текущей сессии.
func (a *App) authorize(route string) error {
	switch guard.Evaluate(guard.PolicyFor(route), a.rt.Session.Snapshot()) {
	case guard.DeniedUnauthenticated:
		return apperror.Wrap(apperror.ErrNotAuthenticated, apperror.ErrCodeUnauthorized, "требуется вход: выполните nexus login")
	case guard.DeniedForbidden:
		return apperror.Wrap(apperror.ErrForbidden, apperror.ErrCodeForbidden, "команда недоступна для вашей роли")
	case guard.Loading:
		return apperror.New(apperror.ErrCodeInternal, "сессия ещё загружается")
	}
	return nil
}

type step func(ctx context.Context) error

// loadStep загрузка представления. Ошибка чтения остаётся в состоянии,
// наружу выходит только ошибка авторизации.
func loadStep(v view.View) step {
	return func(ctx context.Context) error {
		return ignoreRead(v.Load(ctx))
	}
}

// ignoreRead пропускает только ошибку авторизации.
func ignoreRead(err error) error {
	if err != nil && apperror.IsAuth(err) {
		return err
	}
	return nil
}

// mounted монтирует представление маршрута, выполняет шаги и печатает состояние.
// Без шагов выполняется только загрузка.
func (a *App) mounted(ctx context.Context, route string, v view.View, render func() string, steps ...step) error {
	if err := a.authorize(route); err != nil {
		return err
	}
	defer v.Close()

	if len(steps) == 0 {
		steps = []step{loadStep(v)}
	}
	for _, run := range steps {
		if err := run(ctx); err != nil {
			return err
		}
	}
	return a.printer.Print(v.Render(), render)
}

// Describe текст ошибки для терминала: Alert целиком, ошибки API без кода.
func Describe(err error) string {
	if alert, ok := view.AsAlert(err); ok {
		return alert.Error()
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// flashNavigator печатает сообщение перехода после успешной формы.
type flashNavigator struct {
	printer *Printer
}

func (n flashNavigator) Navigate(to, flash string) {
	if flash != "" {
		n.printer.Message("%s → %s", flash, to)
	}
}
