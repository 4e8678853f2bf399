package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

// dashboardCmd панель по роли: клиенту его проекты, фрилансеру статистика.
func (a *App) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Панель текущего пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user := a.rt.Session.Snapshot().User
			if user != nil && user.HasRole(models.RoleClient) {
				v := view.NewClientDashboard(a.deps())
				return a.mounted(ctx, "/client/dashboard", v, func() string { return renderClientDashboard(v.State()) })
			}
			v := view.NewFreelancerDashboard(a.deps())
			return a.mounted(ctx, "/freelancer/dashboard", v, func() string { return renderFreelancerDashboard(v.State()) })
		},
	}
}

func renderClientDashboard(s view.ClientDashboardState) string {
	return join(
		titleStyle.Render("Панель клиента"),
		failure(s.Status, s.Error),
		fmt.Sprintf("Проектов: %d · В работе: %d · Завершено: %d · Бюджет: %s",
			s.Stats.TotalProjects, s.Stats.ActiveProjects, s.Stats.CompletedProjects, money(s.Stats.TotalSpent)),
		mutedStyle.Render("Последние проекты"),
		renderTable(projectHeaders, projectRows(s.Recent)),
	)
}

func renderFreelancerDashboard(s view.Snapshot[view.FreelancerDashboardData]) string {
	lines := []string{titleStyle.Render("Панель фрилансера"), failure(s.Status, s.Error)}
	if st := s.Data.Stats; st != nil {
		lines = append(lines,
			fmt.Sprintf("Предложений: %d · Принято: %d · Активных проектов: %d · Завершено: %d",
				st.TotalProposals, st.AcceptedProposals, st.ActiveProjects, st.CompletedProjects),
			fmt.Sprintf("Заработано: %s · Рейтинг: %.1f · Профиль заполнен на %d%%",
				money(st.TotalEarnings), st.AverageRating, st.ProfileCompletion),
		)
	}
	lines = append(lines, mutedStyle.Render("Последние предложения"), renderTable(proposalHeaders, proposalRows(s.Data.Recent)))
	return join(lines...)
}

func (a *App) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Профиль фрилансера и портфолио",
	}
	cmd.AddCommand(a.profileShowCmd(), a.profileSaveCmd(), a.portfolioCmd())
	return cmd
}

const profileRoute = "/freelancer/profile"

func (a *App) profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Показать профиль с AI анализом",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewFreelancerProfile(a.deps())
			return a.mounted(cmd.Context(), profileRoute, v, func() string { return renderProfile(v.State()) })
		},
	}
}

func (a *App) profileSaveCmd() *cobra.Command {
	var (
		bio          string
		rate         float64
		addSkills    []string
		removeSkills []string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Изменить описание, ставку и навыки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var upd view.ProfileUpdate
			if cmd.Flags().Changed("bio") {
				upd.Bio = &bio
			}
			if cmd.Flags().Changed("rate") {
				upd.HourlyRate = &rate
			}

			v := view.NewFreelancerProfile(a.deps())
			return a.mounted(cmd.Context(), profileRoute, v,
				func() string { return renderProfile(v.State()) },
				v.Load,
				func(context.Context) error {
					for _, s := range addSkills {
						if err := v.AddSkill(s); err != nil {
							return err
						}
					}
					for _, s := range removeSkills {
						v.RemoveSkill(s)
					}
					return nil
				},
				func(ctx context.Context) error { return v.Save(ctx, upd) },
			)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&bio, "bio", "", "описание")
	flags.Float64Var(&rate, "rate", 0, "почасовая ставка")
	flags.StringSliceVar(&addSkills, "add-skill", nil, "добавить навык (можно несколько)")
	flags.StringSliceVar(&removeSkills, "remove-skill", nil, "убрать навык (можно несколько)")
	return cmd
}

func (a *App) portfolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Работы в портфолио",
	}

	var item models.PortfolioItem
	var image string
	add := &cobra.Command{
		Use:   "add",
		Short: "Добавить работу",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewFreelancerProfile(a.deps())
			return a.mounted(cmd.Context(), profileRoute, v,
				func() string { return renderProfile(v.State()) },
				v.Load,
				func(ctx context.Context) error { return v.AddPortfolio(ctx, item, image) },
			)
		},
	}
	flags := add.Flags()
	flags.StringVar(&item.Title, "title", "", "название")
	flags.StringVar(&item.Description, "description", "", "описание")
	flags.StringVar(&item.URL, "url", "", "ссылка на работу")
	flags.StringVar(&image, "image", "", "файл изображения")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Удалить работу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id работы", args[0])
			if err != nil {
				return err
			}
			v := view.NewFreelancerProfile(a.deps())
			return a.mounted(cmd.Context(), profileRoute, v,
				func() string { return renderProfile(v.State()) },
				v.Load,
				func(ctx context.Context) error { return v.RemovePortfolio(ctx, id) },
			)
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func renderProfile(s view.FreelancerProfileState) string {
	p := s.Data.Profile
	if p == nil {
		return failure(s.Status, s.Error)
	}

	lines := []string{
		titleStyle.Render("Профиль") + " " + mutedStyle.Render(money(p.HourlyRate)+"/час"),
		p.Bio,
		"Навыки: " + strings.Join(p.Skills, ", "),
	}
	if s.Form.Error != "" {
		lines = append(lines, errorStyle.Render(s.Form.Error))
	}

	rows := make([][]string, 0, len(p.Portfolio))
	for _, item := range p.Portfolio {
		image := ""
		if item.Image != nil {
			image = item.Image.Name
		}
		rows = append(rows, []string{itoa(item.ID), item.Title, item.URL, image})
	}
	lines = append(lines, "", titleStyle.Render("Портфолио"), renderTable([]string{"ID", "Название", "Ссылка", "Изображение"}, rows))

	switch an := s.Data.Analysis; {
	case an != nil:
		lines = append(lines, "", titleStyle.Render("AI анализ · "+strconv.FormatFloat(an.Score, 'f', 0, 64)))
		if an.Summary != "" {
			lines = append(lines, an.Summary)
		}
		if len(an.Strengths) > 0 {
			lines = append(lines, "Сильные стороны: "+strings.Join(an.Strengths, "; "))
		}
		if len(an.Improvements) > 0 {
			lines = append(lines, "Улучшить: "+strings.Join(an.Improvements, "; "))
		}
	case s.Data.AnalysisError != "":
		lines = append(lines, "", mutedStyle.Render(s.Data.AnalysisError))
	}
	return join(lines...)
}

func (a *App) recommendationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "recommendations",
		Aliases: []string{"recs"},
		Short:   "AI рекомендации проектов",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewRecommendations(a.deps())
			return a.mounted(cmd.Context(), "/freelancer/recommendations", v, func() string { return renderRecommendations(v.State()) })
		},
	}
}

func renderRecommendations(s view.Snapshot[[]models.Recommendation]) string {
	rows := make([][]string, 0, len(s.Data))
	for _, r := range s.Data {
		rows = append(rows, []string{
			itoa(r.Project.ID), r.Project.Title,
			strconv.FormatFloat(r.MatchScore, 'f', 0, 64),
			strings.Join(r.MatchingSkills, ", "), r.Reasoning,
		})
	}
	return join(
		titleStyle.Render("Рекомендованные проекты"),
		failure(s.Status, s.Error),
		renderTable([]string{"ID", "Проект", "Совпадение", "Навыки", "Почему"}, rows),
	)
}
