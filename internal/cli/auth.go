package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/session"
	"github.com/ignatzorin/freelance-nexus/internal/validation"
)

func (a *App) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Войти в аккаунт",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
			if req.Password == "" && a.prompt != nil {
				pw, err := a.prompt.Password(ctx, "Пароль для "+req.Email)
				if err != nil {
					return err
				}
				req.Password = pw
			}
			if err := validation.Struct(req); err != nil {
				return err
			}

			if _, err := a.rt.Session.Login(ctx, req.Email, req.Password); err != nil {
				return err
			}
			return a.printSession(a.rt.Session.Snapshot())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email аккаунта")
	cmd.Flags().StringVar(&password, "password", "", "пароль (если не указан, будет запрошен)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выйти и удалить сохранённую сессию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.rt.Session.Logout(cmd.Context())
			return a.printSession(a.rt.Session.Snapshot())
		},
	}
}

func (a *App) registerCmd() *cobra.Command {
	var req models.RegisterRequest
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Создать аккаунт клиента или фрилансера",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req.Role = models.Role(strings.ToUpper(strings.TrimSpace(role)))
			req.Email = strings.TrimSpace(req.Email)
			req.Username = strings.TrimSpace(req.Username)
			if req.Password == "" && a.prompt != nil {
				pw, err := a.prompt.Password(ctx, "Новый пароль")
				if err != nil {
					return err
				}
				req.Password = pw
			}
			if err := validation.Struct(req); err != nil {
				return err
			}

			user, err := a.rt.Session.Register(ctx, req)
			if err != nil {
				return err
			}
			return a.printer.Print(user, func() string {
				return "Аккаунт " + titleStyle.Render(user.Username) + " создан. Войдите: nexus login --email " + user.Email
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.Username, "username", "", "имя пользователя")
	flags.StringVar(&req.Email, "email", "", "email")
	flags.StringVar(&req.Password, "password", "", "пароль (если не указан, будет запрошен)")
	flags.StringVar(&req.FirstName, "first-name", "", "имя")
	flags.StringVar(&req.LastName, "last-name", "", "фамилия")
	flags.StringVar(&role, "role", string(models.RoleFreelancer), "роль: client или freelancer")
	return cmd
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Показать текущую сессию",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printSession(a.rt.Session.Snapshot())
		},
	}
}

func (a *App) printSession(state session.State) error {
	return a.printer.Print(state, func() string {
		if !state.Authenticated || state.User == nil {
			return mutedStyle.Render("не выполнен вход")
		}
		roles := make([]string, 0, len(state.User.Roles))
		for _, r := range state.User.Roles {
			roles = append(roles, badge(string(r)))
		}
		return join(
			titleStyle.Render(state.User.Username)+" <"+state.User.Email+">",
			"Роли: "+strings.Join(roles, " "),
		)
	})
}
