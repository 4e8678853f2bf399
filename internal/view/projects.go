package view

import (
	"context"
	"strings"
	"sync"

	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// ProjectList публичный список открытых проектов с поиском и фильтром категории.
type ProjectList struct {
	deps   Deps
	loader *Loader[[]models.Project]

	mu       sync.Mutex
	category string
	term     string
}

// ProjectListState состояние для отображения.
type ProjectListState struct {
	Snapshot[[]models.Project]
	Category   string           `json:"category"`
	SearchTerm string           `json:"searchTerm"`
	Categories []string         `json:"categories"`
	Visible    []models.Project `json:"visible"`
}

func NewProjectList(deps Deps) *ProjectList {
	return &ProjectList{deps: deps, loader: NewLoader[[]models.Project]("projects")}
}

func (v *ProjectList) Name() string { return v.loader.Name() }
func (v *ProjectList) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *ProjectList) Close() { v.loader.Close() }
func (v *ProjectList) Render() any { return v.State() }

// Load читает открытые проекты.
func (v *ProjectList) Load(ctx context.Context) error {
	v.mu.Lock()
	v.term = ""
	v.mu.Unlock()

	return v.loader.Load(ctx, func(ctx context.Context) ([]models.Project, error) {
		return v.deps.Projects.List(ctx, models.ProjectFilter{Status: models.ProjectStatusOpen})
	})
}

// Search заменяет коллекцию результатами поиска. Пустой запрос перечитывает список.
func (v *ProjectList) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return v.Load(ctx)
	}

	v.mu.Lock()
	v.term = term
	v.mu.Unlock()

	return v.loader.Load(ctx, func(ctx context.Context) ([]models.Project, error) {
		return v.deps.Projects.Search(ctx, term)
	})
}

// SetCategory локальный фильтр, запросов не выполняет.
func (v *ProjectList) SetCategory(category string) {
	v.mu.Lock()
	v.category = strings.TrimSpace(category)
	v.mu.Unlock()
	v.loader.notify()
}

func (v *ProjectList) State() ProjectListState {
	snap := v.loader.Snapshot()

	v.mu.Lock()
	category, term := v.category, v.term
	v.mu.Unlock()

	categories := make(map[string]struct{})
	visible := make([]models.Project, 0, len(snap.Data))
	for _, p := range snap.Data {
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
		if category == "" || category == models.FilterAll || p.Category == category {
			visible = append(visible, p)
		}
	}

	return ProjectListState{
		Snapshot:   snap,
		Category:   category,
		SearchTerm: term,
		Categories: sortedKeys(categories),
		Visible:    visible,
	}
}

// ProjectDetails карточка проекта с кратким изложением от AI.
type ProjectDetails struct {
	deps      Deps
	projectID int64
	loader    *Loader[ProjectDetailsData]
}

// ProjectDetailsData проект и необязательное изложение. Ошибка AI не ломает карточку.
type ProjectDetailsData struct {
	Project      *models.Project        `json:"project"`
	Summary      *models.ProjectSummary `json:"summary,omitempty"`
	SummaryError string                 `json:"summaryError,omitempty"`
}

// ProjectDetailsState добавляет доступные пользователю действия.
type ProjectDetailsState struct {
	Snapshot[ProjectDetailsData]
	CanPropose bool `json:"canPropose"`
	CanManage  bool `json:"canManage"`
}

func NewProjectDetails(deps Deps, projectID int64) *ProjectDetails {
	return &ProjectDetails{deps: deps, projectID: projectID, loader: NewLoader[ProjectDetailsData]("project-details")}
}

func (v *ProjectDetails) Name() string { return v.loader.Name() }
func (v *ProjectDetails) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *ProjectDetails) Close() { v.loader.Close() }
func (v *ProjectDetails) Render() any { return v.State() }

func (v *ProjectDetails) Load(ctx context.Context) error {
	return v.loader.Load(ctx, func(ctx context.Context) (ProjectDetailsData, error) {
		var data ProjectDetailsData
		err := Gather(ctx,
			func(ctx context.Context) error {
				project, err := v.deps.Projects.Get(ctx, v.projectID)
				data.Project = project
				return err
			},
			func(ctx context.Context) error {
				summary, err := v.deps.AI.SummarizeProject(ctx, v.projectID)
				if err != nil {
					logger.WithComponent("view").WithError(err).Warn("изложение проекта недоступно")
					data.SummaryError = "краткое изложение недоступно"
					return nil
				}
				data.Summary = summary
				return nil
			},
		)
		return data, err
	})
}

func (v *ProjectDetails) State() ProjectDetailsState {
	snap := v.loader.Snapshot()
	state := ProjectDetailsState{Snapshot: snap}

	project := snap.Data.Project
	if project == nil || v.deps.Session == nil {
		return state
	}
	user := v.deps.Session.CurrentUser()
	state.CanPropose = user.HasRole(models.RoleFreelancer) && project.Status == models.ProjectStatusOpen
	state.CanManage = user.HasRole(models.RoleClient) && user.ID == project.ClientID
	return state
}
