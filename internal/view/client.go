package view

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-nexus/internal/validation"
)

// MyProjects проекты текущего клиента.
type MyProjects struct {
	deps   Deps
	loader *Loader[[]models.Project]

	mu     sync.Mutex
	filter string
}

// MyProjectsState список, отфильтрованный по статусу, и счётчики по статусам.
type MyProjectsState struct {
	Snapshot[[]models.Project]
	Filter  string           `json:"filter"`
	Visible []models.Project `json:"visible"`
	Counts  map[string]int   `json:"counts"`
}

func NewMyProjects(deps Deps) *MyProjects {
	return &MyProjects{deps: deps, loader: NewLoader[[]models.Project]("my-projects"), filter: models.FilterAll}
}

func (v *MyProjects) Name() string { return v.loader.Name() }
func (v *MyProjects) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *MyProjects) Close() { v.loader.Close() }
func (v *MyProjects) Render() any { return v.State() }

func (v *MyProjects) Load(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	return v.loader.Load(ctx, func(ctx context.Context) ([]models.Project, error) {
		return v.deps.Projects.ListByClient(ctx, user.ID)
	})
}

func (v *MyProjects) SetFilter(status string) {
	v.mu.Lock()
	v.filter = normalizeFilter(status)
	v.mu.Unlock()
	v.loader.notify()
}

func (v *MyProjects) State() MyProjectsState {
	snap := v.loader.Snapshot()
	v.mu.Lock()
	filter := v.filter
	v.mu.Unlock()

	return MyProjectsState{
		Snapshot: snap,
		Filter:   filter,
		Visible:  filterByStatus(snap.Data, filter, projectStatus),
		Counts:   countByStatus(snap.Data, projectStatus),
	}
}

// Delete удаляет открытый проект после подтверждения.
// Проверка статуса выполняется здесь: сервис удаляет любой проект.
func (v *MyProjects) Delete(ctx context.Context, projectID int64) error {
	project, ok := findByID(v.loader.Data(), projectID, func(p models.Project) int64 { return p.ID })
	if !ok {
		return &Alert{Message: "Не удалось удалить проект", Err: apperror.New(apperror.ErrCodeNotFound, "проект не найден")}
	}
	if !project.Deletable() {
		return &Alert{Message: "Не удалось удалить проект", Err: apperror.Validation("удалить можно только открытый проект")}
	}
	if err := v.deps.confirm(ctx, "Удалить проект «"+project.Title+"»?"); err != nil {
		return err
	}
	if err := v.deps.Projects.Delete(ctx, projectID); err != nil {
		return &Alert{Message: "Не удалось удалить проект", Err: err}
	}

	v.loader.Patch(func(items []models.Project) []models.Project {
		return removeByID(items, projectID, func(p models.Project) int64 { return p.ID })
	})
	return nil
}

// ViewProposals предложения по проекту клиента.
type ViewProposals struct {
	deps      Deps
	projectID int64
	loader    *Loader[ProjectProposals]

	mu     sync.Mutex
	filter string
}

// ProjectProposals проект и его предложения.
type ProjectProposals struct {
	Project   *models.Project   `json:"project"`
	Proposals []models.Proposal `json:"proposals"`
}

type ViewProposalsState struct {
	Snapshot[ProjectProposals]
	Filter  string            `json:"filter"`
	Visible []models.Proposal `json:"visible"`
	Counts  map[string]int    `json:"counts"`
}

func NewViewProposals(deps Deps, projectID int64) *ViewProposals {
	return &ViewProposals{
		deps:      deps,
		projectID: projectID,
		loader:    NewLoader[ProjectProposals]("project-proposals"),
		filter:    models.FilterAll,
	}
}

func (v *ViewProposals) Name() string { return v.loader.Name() }
func (v *ViewProposals) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *ViewProposals) Close() { v.loader.Close() }
func (v *ViewProposals) Render() any { return v.State() }

func (v *ViewProposals) Load(ctx context.Context) error {
	return v.loader.Load(ctx, func(ctx context.Context) (ProjectProposals, error) {
		var data ProjectProposals
		err := Gather(ctx,
			func(ctx context.Context) error {
				project, err := v.deps.Projects.Get(ctx, v.projectID)
				data.Project = project
				return err
			},
			func(ctx context.Context) error {
				proposals, err := v.deps.Proposals.ListByProject(ctx, v.projectID)
				data.Proposals = proposals
				return err
			},
		)
		return data, err
	})
}

func (v *ViewProposals) SetFilter(status string) {
	v.mu.Lock()
	v.filter = normalizeFilter(status)
	v.mu.Unlock()
	v.loader.notify()
}

func (v *ViewProposals) State() ViewProposalsState {
	snap := v.loader.Snapshot()
	v.mu.Lock()
	filter := v.filter
	v.mu.Unlock()

	return ViewProposalsState{
		Snapshot: snap,
		Filter:   filter,
		Visible:  filterByStatus(snap.Data.Proposals, filter, proposalStatus),
		Counts:   countByStatus(snap.Data.Proposals, proposalStatus),
	}
}

// Accept принимает предложение. Сервер отклоняет остальные, поэтому коллекция перечитывается целиком.
func (v *ViewProposals) Accept(ctx context.Context, proposalID int64) error {
	if err := v.deps.confirm(ctx, "Принять предложение? Все остальные предложения будут отклонены."); err != nil {
		return err
	}
	if _, err := v.deps.Proposals.Accept(ctx, proposalID); err != nil {
		return &Alert{Message: "Не удалось принять предложение", Err: err}
	}

	logger.WithComponent("view").WithFields(logrus.Fields{
		"project_id":  v.projectID,
		"proposal_id": proposalID,
	}).Info("предложение принято")

	// ошибка перечитывания остаётся в состоянии представления
	_ = v.Load(ctx)
	return nil
}

// Reject отклоняет предложение и меняет его статус на месте.
func (v *ViewProposals) Reject(ctx context.Context, proposalID int64) error {
	if err := v.deps.confirm(ctx, "Отклонить предложение?"); err != nil {
		return err
	}
	if _, err := v.deps.Proposals.Reject(ctx, proposalID); err != nil {
		return &Alert{Message: "Не удалось отклонить предложение", Err: err}
	}

	v.loader.Patch(func(data ProjectProposals) ProjectProposals {
		data.Proposals = setProposalStatus(data.Proposals, proposalID, models.ProposalStatusRejected)
		return data
	})
	return nil
}

// AIRanking рейтинг предложений по проекту.
type AIRanking struct {
	deps      Deps
	projectID int64
	loader    *Loader[RankingData]
}

// RankingData прогноз и подбор фрилансеров дополняют рейтинг и могут отсутствовать.
type RankingData struct {
	Project         *models.Project           `json:"project"`
	Rankings        []models.ProposalRanking  `json:"rankings"`
	Prediction      *models.SuccessPrediction `json:"prediction,omitempty"`
	PredictionError string                    `json:"predictionError,omitempty"`
	Matches         []models.FreelancerMatch  `json:"matches,omitempty"`
	MatchesError    string                    `json:"matchesError,omitempty"`
}

func NewAIRanking(deps Deps, projectID int64) *AIRanking {
	return &AIRanking{deps: deps, projectID: projectID, loader: NewLoader[RankingData]("ai-ranking")}
}

func (v *AIRanking) Name() string { return v.loader.Name() }
func (v *AIRanking) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *AIRanking) Close() { v.loader.Close() }
func (v *AIRanking) Render() any { return v.State() }

func (v *AIRanking) Load(ctx context.Context) error {
	return v.loader.Load(ctx, func(ctx context.Context) (RankingData, error) {
		var data RankingData
		err := Gather(ctx,
			func(ctx context.Context) error {
				project, err := v.deps.Projects.Get(ctx, v.projectID)
				data.Project = project
				return err
			},
			func(ctx context.Context) error {
				rankings, err := v.deps.AI.RankProposals(ctx, v.projectID)
				data.Rankings = rankings
				return err
			},
			func(ctx context.Context) error {
				prediction, err := v.deps.AI.PredictSuccess(ctx, v.projectID)
				if err != nil {
					data.PredictionError = optionalFailure(err, "прогноз недоступен")
					return nil
				}
				data.Prediction = prediction
				return nil
			},
			func(ctx context.Context) error {
				matches, err := v.deps.AI.MatchFreelancers(ctx, v.projectID)
				if err != nil {
					data.MatchesError = optionalFailure(err, "подбор фрилансеров недоступен")
					return nil
				}
				data.Matches = matches
				return nil
			},
		)
		return data, err
	})
}

func (v *AIRanking) State() Snapshot[RankingData] {
	return v.loader.Snapshot()
}

// PostProject форма публикации проекта.
type PostProject struct {
	deps Deps
	form form

	mu      sync.Mutex
	created *models.Project
}

type PostProjectState struct {
	FormState
	Created *models.Project `json:"created,omitempty"`
}

func NewPostProject(deps Deps) *PostProject {
	return &PostProject{deps: deps}
}

func (v *PostProject) Name() string { return "post-project" }
func (v *PostProject) OnChange(fn func()) { v.form.onChange(fn) }
func (v *PostProject) Close() { v.form.close() }
func (v *PostProject) Render() any { return v.State() }

// Load форме нечего читать.
func (v *PostProject) Load(context.Context) error { return nil }

func (v *PostProject) State() PostProjectState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return PostProjectState{FormState: v.form.state(), Created: v.created}
}

// Submit публикует проект от имени текущего клиента со статусом OPEN.
func (v *PostProject) Submit(ctx context.Context, in models.ProjectInput) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	if !v.form.begin() {
		return errSubmitting
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.RequiredSkills = cleanSkills(in.RequiredSkills)
	in.ClientID = user.ID
	in.Status = models.ProjectStatusOpen

	if err := validation.Struct(in); err != nil {
		return v.form.finish(err)
	}
	project, err := v.deps.Projects.Create(ctx, in)
	if err != nil {
		return v.form.finish(err)
	}

	v.mu.Lock()
	v.created = project
	v.mu.Unlock()
	v.form.finish(nil)

	v.deps.navigate("/client/projects", "Проект опубликован")
	return nil
}

// ClientDashboard сводка клиента.
type ClientDashboard struct {
	deps   Deps
	loader *Loader[[]models.Project]
}

// ClientStats TotalSpent считается по верхней границе бюджета.
type ClientStats struct {
	TotalProjects     int     `json:"totalProjects"`
	ActiveProjects    int     `json:"activeProjects"`
	CompletedProjects int     `json:"completedProjects"`
	TotalSpent        float64 `json:"totalSpent"`
}

type ClientDashboardState struct {
	Status Status           `json:"status"`
	Error  string           `json:"error,omitempty"`
	Stats  ClientStats      `json:"stats"`
	Recent []models.Project `json:"recent"`
}

const dashboardRecent = 5

func NewClientDashboard(deps Deps) *ClientDashboard {
	return &ClientDashboard{deps: deps, loader: NewLoader[[]models.Project]("client-dashboard")}
}

func (v *ClientDashboard) Name() string { return v.loader.Name() }
func (v *ClientDashboard) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *ClientDashboard) Close() { v.loader.Close() }
func (v *ClientDashboard) Render() any { return v.State() }

func (v *ClientDashboard) Load(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	return v.loader.Load(ctx, func(ctx context.Context) ([]models.Project, error) {
		return v.deps.Projects.ListByClient(ctx, user.ID)
	})
}

func (v *ClientDashboard) State() ClientDashboardState {
	snap := v.loader.Snapshot()
	state := ClientDashboardState{
		Status: snap.Status,
		Error:  snap.Error,
		Recent: firstN(snap.Data, dashboardRecent),
	}
	state.Stats.TotalProjects = len(snap.Data)
	for _, p := range snap.Data {
		switch p.Status {
		case models.ProjectStatusInProgress:
			state.Stats.ActiveProjects++
		case models.ProjectStatusCompleted:
			state.Stats.CompletedProjects++
		}
		state.Stats.TotalSpent += p.MaxBudget
	}
	return state
}

func optionalFailure(err error, message string) string {
	logger.WithComponent("view").WithError(err).Warn(message)
	return message
}

func normalizeFilter(status string) string {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return models.FilterAll
	}
	return status
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func findByID[T any](items []T, id int64, idOf func(T) int64) (T, bool) {
	for _, item := range items {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func removeByID[T any](items []T, id int64, idOf func(T) int64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

func setProposalStatus(items []models.Proposal, proposalID int64, status string) []models.Proposal {
	out := make([]models.Proposal, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == proposalID {
			out[i].Status = status
		}
	}
	return out
}
