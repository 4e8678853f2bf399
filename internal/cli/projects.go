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

// parseID разбирает положительный идентификатор из аргумента.
func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("cli: %s должен быть положительным числом, получено %q", name, raw)
	}
	return id, nil
}

func (a *App) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Проекты: просмотр, поиск и управление своими",
	}
	cmd.AddCommand(
		a.projectsListCmd(), a.projectsSearchCmd(), a.projectsShowCmd(),
		a.projectsMineCmd(), a.projectsDeleteCmd(), a.projectsPostCmd(),
	)
	return cmd
}

func (a *App) projectsListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Открытые проекты",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewProjectList(a.deps())
			v.SetCategory(category)
			return a.mounted(cmd.Context(), "/projects", v, func() string { return renderProjectList(v.State()) })
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "показать только категорию")
	return cmd
}

func (a *App) projectsSearchCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "search <запрос>",
		Short: "Поиск проектов по тексту",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := view.NewProjectList(a.deps())
			v.SetCategory(category)
			term := strings.Join(args, " ")
			return a.mounted(cmd.Context(), "/projects", v,
				func() string { return renderProjectList(v.State()) },
				searchStep(v, term),
			)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "показать только категорию")
	return cmd
}

func searchStep(v *view.ProjectList, term string) step {
	return func(ctx context.Context) error {
		return ignoreRead(v.Search(ctx, term))
	}
}

func renderProjectList(s view.ProjectListState) string {
	header := "Открытые проекты"
	if s.SearchTerm != "" {
		header = "Поиск: " + s.SearchTerm
	}
	if s.Category != "" && s.Category != models.FilterAll {
		header += " · " + s.Category
	}
	return join(
		titleStyle.Render(header),
		failure(s.Status, s.Error),
		renderTable(projectHeaders, projectRows(s.Visible)),
		mutedStyle.Render("Категории: "+strings.Join(s.Categories, ", ")),
	)
}

func (a *App) projectsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Карточка проекта с кратким изложением",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id проекта", args[0])
			if err != nil {
				return err
			}
			v := view.NewProjectDetails(a.deps(), id)
			return a.mounted(cmd.Context(), "/projects/:id", v, func() string { return renderProjectDetails(v.State()) })
		},
	}
}

func renderProjectDetails(s view.ProjectDetailsState) string {
	p := s.Data.Project
	if p == nil {
		return failure(s.Status, s.Error)
	}

	lines := []string{
		titleStyle.Render(p.Title) + " " + badge(p.Status),
		p.Description,
		fmt.Sprintf("Бюджет: %s – %s · Срок: %d дн. · Категория: %s · Предложений: %d",
			money(p.MinBudget), money(p.MaxBudget), p.Duration, p.Category, p.ProposalCount),
	}
	if len(p.RequiredSkills) > 0 {
		lines = append(lines, "Навыки: "+strings.Join(p.RequiredSkills, ", "))
	}
	switch {
	case s.Data.Summary != nil:
		lines = append(lines, "", titleStyle.Render("Кратко"), s.Data.Summary.Summary)
	case s.Data.SummaryError != "":
		lines = append(lines, "", mutedStyle.Render(s.Data.SummaryError))
	}
	if s.CanPropose {
		lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("Откликнуться: nexus proposals submit %d", p.ID)))
	}
	if s.CanManage {
		lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("Предложения: nexus proposals list %d", p.ID)))
	}
	return join(lines...)
}

func (a *App) projectsMineCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Мои проекты (клиент)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewMyProjects(a.deps())
			v.SetFilter(status)
			return a.mounted(cmd.Context(), "/client/projects", v, func() string { return renderMyProjects(v.State()) })
		},
	}
	cmd.Flags().StringVar(&status, "status", models.FilterAll, "фильтр по статусу")
	return cmd
}

func renderMyProjects(s view.MyProjectsState) string {
	return join(
		titleStyle.Render("Мои проекты"),
		failure(s.Status, s.Error),
		renderTable(projectHeaders, projectRows(s.Visible)),
		counts(s.Counts, models.ProjectStatusOpen, models.ProjectStatusInProgress, models.ProjectStatusCompleted, models.ProjectStatusCancelled),
	)
}

func (a *App) projectsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить открытый проект",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id проекта", args[0])
			if err != nil {
				return err
			}
			v := view.NewMyProjects(a.deps())
			return a.mounted(cmd.Context(), "/client/projects", v,
				func() string { return renderMyProjects(v.State()) },
				v.Load,
				func(ctx context.Context) error { return v.Delete(ctx, id) },
			)
		},
	}
}

func (a *App) projectsPostCmd() *cobra.Command {
	var in models.ProjectInput
	var skills string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Опубликовать проект",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.RequiredSkills = splitList(skills)
			v := view.NewPostProject(a.deps())
			return a.mounted(cmd.Context(), "/client/post-project", v,
				func() string { return renderPostProject(v.State()) },
				func(ctx context.Context) error { return v.Submit(ctx, in) },
			)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.Title, "title", "", "название")
	flags.StringVar(&in.Description, "description", "", "описание")
	flags.Float64Var(&in.MinBudget, "min-budget", 0, "минимальный бюджет")
	flags.Float64Var(&in.MaxBudget, "max-budget", 0, "максимальный бюджет")
	flags.IntVar(&in.Duration, "duration", 0, "срок в днях")
	flags.StringVar(&in.Category, "category", "", "категория")
	flags.StringVar(&skills, "skills", "", "навыки через запятую")
	return cmd
}

func renderPostProject(s view.PostProjectState) string {
	if s.Created == nil {
		return failure(view.Failed, s.Error)
	}
	return join(
		"Проект опубликован: "+titleStyle.Render(s.Created.Title)+" "+badge(s.Created.Status),
		mutedStyle.Render("ID "+itoa(s.Created.ID)),
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
