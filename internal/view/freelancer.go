package view

import (
	"context"
	"strings"
	"sync"

	"github.com/ignatzorin/freelance-nexus/internal/attachment"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-nexus/internal/validation"
)

// MyProposals предложения текущего фрилансера.
type MyProposals struct {
	deps   Deps
	loader *Loader[[]models.Proposal]

	mu     sync.Mutex
	filter string
}

type MyProposalsState struct {
	Snapshot[[]models.Proposal]
	Filter  string            `json:"filter"`
	Visible []models.Proposal `json:"visible"`
	Counts  map[string]int    `json:"counts"`
}

func NewMyProposals(deps Deps) *MyProposals {
	return &MyProposals{deps: deps, loader: NewLoader[[]models.Proposal]("my-proposals"), filter: models.FilterAll}
}

func (v *MyProposals) Name() string { return v.loader.Name() }
func (v *MyProposals) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *MyProposals) Close() { v.loader.Close() }
func (v *MyProposals) Render() any { return v.State() }

func (v *MyProposals) Load(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	return v.loader.Load(ctx, func(ctx context.Context) ([]models.Proposal, error) {
		return v.deps.Proposals.ListByFreelancer(ctx, user.ID)
	})
}

func (v *MyProposals) SetFilter(status string) {
	v.mu.Lock()
	v.filter = normalizeFilter(status)
	v.mu.Unlock()
	v.loader.notify()
}

func (v *MyProposals) State() MyProposalsState {
	snap := v.loader.Snapshot()
	v.mu.Lock()
	filter := v.filter
	v.mu.Unlock()

	return MyProposalsState{
		Snapshot: snap,
		Filter:   filter,
		Visible:  filterByStatus(snap.Data, filter, proposalStatus),
		Counts:   countByStatus(snap.Data, proposalStatus),
	}
}

// Withdraw отзывает предложение и меняет статус на месте.
func (v *MyProposals) Withdraw(ctx context.Context, proposalID int64) error {
	if err := v.deps.confirm(ctx, "Отозвать предложение?"); err != nil {
		return err
	}
	if _, err := v.deps.Proposals.Withdraw(ctx, proposalID); err != nil {
		return &Alert{Message: "Не удалось отозвать предложение", Err: err}
	}
	v.loader.Patch(func(items []models.Proposal) []models.Proposal {
		return setProposalStatus(items, proposalID, models.ProposalStatusWithdrawn)
	})
	return nil
}

// SubmitProposal форма предложения по проекту.
type SubmitProposal struct {
	deps      Deps
	projectID int64
	loader    *Loader[*models.Project]
	form      form

	mu          sync.Mutex
	attachments []models.Attachment
}

type SubmitProposalState struct {
	Snapshot[*models.Project]
	Form        FormState           `json:"form"`
	Attachments []models.Attachment `json:"attachments"`
}

func NewSubmitProposal(deps Deps, projectID int64) *SubmitProposal {
	return &SubmitProposal{deps: deps, projectID: projectID, loader: NewLoader[*models.Project]("submit-proposal")}
}

func (v *SubmitProposal) Name() string { return v.loader.Name() }

func (v *SubmitProposal) OnChange(fn func()) {
	v.loader.OnChange(fn)
	v.form.onChange(fn)
}

func (v *SubmitProposal) Close() {
	v.loader.Close()
	v.form.close()
}

func (v *SubmitProposal) Render() any { return v.State() }

func (v *SubmitProposal) Load(ctx context.Context) error {
	return v.loader.Load(ctx, func(ctx context.Context) (*models.Project, error) {
		return v.deps.Projects.Get(ctx, v.projectID)
	})
}

func (v *SubmitProposal) State() SubmitProposalState {
	v.mu.Lock()
	attachments := append([]models.Attachment(nil), v.attachments...)
	v.mu.Unlock()
	return SubmitProposalState{Snapshot: v.loader.Snapshot(), Form: v.form.state(), Attachments: attachments}
}

// Attach проверяет файл и добавляет его к предложению.
func (v *SubmitProposal) Attach(ctx context.Context, path string) (models.Attachment, error) {
	if v.deps.Attachments == nil {
		return models.Attachment{}, apperror.New(apperror.ErrCodeInternal, "вложения не настроены")
	}
	att, err := v.deps.Attachments.ReadFile(ctx, path, attachment.Documents)
	if err != nil {
		return models.Attachment{}, err
	}
	v.mu.Lock()
	v.attachments = append(v.attachments, att)
	v.mu.Unlock()
	v.form.notify()
	return att, nil
}

// Submit отправляет предложение со статусом PENDING от имени текущего фрилансера.
func (v *SubmitProposal) Submit(ctx context.Context, in models.ProposalInput) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	if !v.form.begin() {
		return errSubmitting
	}

	v.mu.Lock()
	in.Attachments = append(in.Attachments, v.attachments...)
	v.mu.Unlock()
	in.ProjectID = v.projectID
	in.FreelancerID = user.ID
	in.Status = models.ProposalStatusPending
	in.CoverLetter = strings.TrimSpace(in.CoverLetter)

	if err := validation.Struct(in); err != nil {
		return v.form.finish(err)
	}
	if _, err := v.deps.Proposals.Submit(ctx, in); err != nil {
		return v.form.finish(err)
	}

	v.mu.Lock()
	v.attachments = nil
	v.mu.Unlock()
	v.form.finish(nil)

	v.deps.navigate("/freelancer/proposals", "Предложение отправлено")
	return nil
}

// FreelancerDashboard статистика и последние предложения.
type FreelancerDashboard struct {
	deps   Deps
	loader *Loader[FreelancerDashboardData]
}

type FreelancerDashboardData struct {
	Stats  *models.FreelancerStats `json:"stats"`
	Recent []models.Proposal       `json:"recent"`
}

func NewFreelancerDashboard(deps Deps) *FreelancerDashboard {
	return &FreelancerDashboard{deps: deps, loader: NewLoader[FreelancerDashboardData]("freelancer-dashboard")}
}

func (v *FreelancerDashboard) Name() string { return v.loader.Name() }
func (v *FreelancerDashboard) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *FreelancerDashboard) Close() { v.loader.Close() }
func (v *FreelancerDashboard) Render() any { return v.State() }

func (v *FreelancerDashboard) Load(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	return v.loader.Load(ctx, func(ctx context.Context) (FreelancerDashboardData, error) {
		var data FreelancerDashboardData
		err := Gather(ctx,
			func(ctx context.Context) error {
				stats, err := v.deps.Freelancers.GetStats(ctx, user.ID)
				data.Stats = stats
				return err
			},
			func(ctx context.Context) error {
				proposals, err := v.deps.Proposals.ListByFreelancer(ctx, user.ID)
				data.Recent = firstN(proposals, dashboardRecent)
				return err
			},
		)
		return data, err
	})
}

func (v *FreelancerDashboard) State() Snapshot[FreelancerDashboardData] {
	return v.loader.Snapshot()
}

// FreelancerProfile профиль с локальным редактированием навыков.
type FreelancerProfile struct {
	deps   Deps
	loader *Loader[ProfileData]
	form   form
}

// ProfileData Dirty выставляется при локальных изменениях навыков до сохранения.
type ProfileData struct {
	Profile       *models.FreelancerProfile `json:"profile"`
	Analysis      *models.ProfileAnalysis   `json:"analysis,omitempty"`
	AnalysisError string                    `json:"analysisError,omitempty"`
	Dirty         bool                      `json:"dirty"`
}

type FreelancerProfileState struct {
	Snapshot[ProfileData]
	Form FormState `json:"form"`
}

func NewFreelancerProfile(deps Deps) *FreelancerProfile {
	return &FreelancerProfile{deps: deps, loader: NewLoader[ProfileData]("profile")}
}

func (v *FreelancerProfile) Name() string { return v.loader.Name() }

func (v *FreelancerProfile) OnChange(fn func()) {
	v.loader.OnChange(fn)
	v.form.onChange(fn)
}

func (v *FreelancerProfile) Close() {
	v.loader.Close()
	v.form.close()
}

func (v *FreelancerProfile) Render() any { return v.State() }

func (v *FreelancerProfile) Load(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	return v.loader.Load(ctx, func(ctx context.Context) (ProfileData, error) {
		var data ProfileData
		err := Gather(ctx,
			func(ctx context.Context) error {
				profile, err := v.deps.Freelancers.GetProfile(ctx, user.ID)
				data.Profile = profile
				return err
			},
			func(ctx context.Context) error {
				analysis, err := v.deps.AI.AnalyzeProfile(ctx, user.ID)
				if err != nil {
					data.AnalysisError = optionalFailure(err, "анализ профиля недоступен")
					return nil
				}
				data.Analysis = analysis
				return nil
			},
		)
		return data, err
	})
}

func (v *FreelancerProfile) State() FreelancerProfileState {
	return FreelancerProfileState{Snapshot: v.loader.Snapshot(), Form: v.form.state()}
}

// AddSkill меняет навыки локально; на сервер они уходят при Save.
func (v *FreelancerProfile) AddSkill(skill string) error {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return apperror.Validation("навык не может быть пустым")
	}
	profile := v.loader.Data().Profile
	if profile == nil {
		return apperror.New(apperror.ErrCodeValidation, "профиль ещё не загружен")
	}
	if profile.HasSkill(skill) {
		return nil
	}
	v.loader.Patch(func(data ProfileData) ProfileData {
		p := cloneProfile(data.Profile)
		p.Skills = append(p.Skills, skill)
		data.Profile = p
		data.Dirty = true
		return data
	})
	return nil
}

func (v *FreelancerProfile) RemoveSkill(skill string) {
	v.loader.Patch(func(data ProfileData) ProfileData {
		if data.Profile == nil || !data.Profile.HasSkill(skill) {
			return data
		}
		p := cloneProfile(data.Profile)
		skills := make([]string, 0, len(p.Skills))
		for _, s := range p.Skills {
			if !strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(skill)) {
				skills = append(skills, s)
			}
		}
		p.Skills = skills
		data.Profile = p
		data.Dirty = true
		return data
	})
}

// ProfileUpdate редактируемые поля профиля.
type ProfileUpdate struct {
	Bio        *string
	HourlyRate *float64
}

// Save сохраняет профиль, затем навыки. Ошибка показывается в форме.
func (v *FreelancerProfile) Save(ctx context.Context, upd ProfileUpdate) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	current := v.loader.Data().Profile
	if current == nil {
		return apperror.New(apperror.ErrCodeValidation, "профиль ещё не загружен")
	}
	if !v.form.begin() {
		return errSubmitting
	}

	profile := cloneProfile(current)
	if upd.Bio != nil {
		profile.Bio = strings.TrimSpace(*upd.Bio)
	}
	if upd.HourlyRate != nil {
		if *upd.HourlyRate < 0 {
			return v.form.finish(apperror.Validation("ставка не может быть отрицательной"))
		}
		profile.HourlyRate = *upd.HourlyRate
	}

	saved, err := v.deps.Freelancers.UpdateProfile(ctx, user.ID, *profile)
	if err != nil {
		return v.form.finish(err)
	}
	skills, err := v.deps.Freelancers.UpdateSkills(ctx, user.ID, profile.Skills)
	if err != nil {
		return v.form.finish(err)
	}

	result := cloneProfile(saved)
	result.Skills = skills
	if result.Portfolio == nil {
		result.Portfolio = profile.Portfolio
	}
	v.loader.Patch(func(data ProfileData) ProfileData {
		data.Profile = result
		data.Dirty = false
		return data
	})
	v.form.finish(nil)
	return nil
}

// AddPortfolio добавляет работу; imagePath необязателен и проверяется как изображение.
func (v *FreelancerProfile) AddPortfolio(ctx context.Context, item models.PortfolioItem, imagePath string) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	item.Title = strings.TrimSpace(item.Title)
	item.Description = strings.TrimSpace(item.Description)
	item.URL = strings.TrimSpace(item.URL)

	if imagePath != "" {
		if v.deps.Attachments == nil {
			return apperror.New(apperror.ErrCodeInternal, "вложения не настроены")
		}
		img, err := v.deps.Attachments.ReadFile(ctx, imagePath, attachment.Images)
		if err != nil {
			return err
		}
		item.Image = &img
	}
	if err := validation.Struct(item); err != nil {
		return err
	}

	added, err := v.deps.Freelancers.AddPortfolioItem(ctx, user.ID, item)
	if err != nil {
		return &Alert{Message: "Не удалось добавить работу в портфолио", Err: err}
	}
	v.loader.Patch(func(data ProfileData) ProfileData {
		if data.Profile == nil {
			return data
		}
		p := cloneProfile(data.Profile)
		p.Portfolio = append(p.Portfolio, *added)
		data.Profile = p
		return data
	})
	return nil
}

// RemovePortfolio удаляет работу после подтверждения.
func (v *FreelancerProfile) RemovePortfolio(ctx context.Context, itemID int64) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	if err := v.deps.confirm(ctx, "Удалить работу из портфолио?"); err != nil {
		return err
	}
	if err := v.deps.Freelancers.DeletePortfolioItem(ctx, user.ID, itemID); err != nil {
		return &Alert{Message: "Не удалось удалить работу", Err: err}
	}
	v.loader.Patch(func(data ProfileData) ProfileData {
		if data.Profile == nil {
			return data
		}
		p := cloneProfile(data.Profile)
		p.Portfolio = removeByID(p.Portfolio, itemID, func(i models.PortfolioItem) int64 { return i.ID })
		data.Profile = p
		return data
	})
	return nil
}

func cloneProfile(p *models.FreelancerProfile) *models.FreelancerProfile {
	if p == nil {
		return &models.FreelancerProfile{}
	}
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	c.Portfolio = append([]models.PortfolioItem(nil), p.Portfolio...)
	return &c
}

// Recommendations проекты, подобранные AI.
type Recommendations struct {
	deps   Deps
	loader *Loader[[]models.Recommendation]
}

func NewRecommendations(deps Deps) *Recommendations {
	return &Recommendations{deps: deps, loader: NewLoader[[]models.Recommendation]("recommendations")}
}

func (v *Recommendations) Name() string { return v.loader.Name() }
func (v *Recommendations) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *Recommendations) Close() { v.loader.Close() }
func (v *Recommendations) Render() any { return v.State() }

func (v *Recommendations) Load(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	return v.loader.Load(ctx, func(ctx context.Context) ([]models.Recommendation, error) {
		return v.deps.AI.Recommendations(ctx, user.ID)
	})
}

func (v *Recommendations) State() Snapshot[[]models.Recommendation] {
	return v.loader.Snapshot()
}
