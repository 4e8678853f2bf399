package view

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func seedProjects(b *fakeBackend) {
	b.addProject(models.Project{ID: 1, Title: "Лендинг на Go", Category: "WEB", Status: models.ProjectStatusOpen, ClientID: 1, MaxBudget: 500})
	b.addProject(models.Project{ID: 2, Title: "Мобильное приложение", Category: "MOBILE", Status: models.ProjectStatusOpen, ClientID: 1, MaxBudget: 1500})
	b.addProject(models.Project{ID: 3, Title: "Интеграция платежей", Category: "WEB", Status: models.ProjectStatusInProgress, ClientID: 1, MaxBudget: 800})
	b.addProject(models.Project{ID: 4, Title: "Чужой проект", Category: "DATA", Status: models.ProjectStatusCompleted, ClientID: 9, MaxBudget: 300})
}

func TestProjectList_LoadsOpenAndFiltersCategoryLocally(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, nil)

	v := NewProjectList(deps)
	require.NoError(t, v.Load(context.Background()))

	state := v.State()
	assert.Equal(t, Ready, state.Status)
	assert.Len(t, state.Data, 2)
	assert.Equal(t, []string{"MOBILE", "WEB"}, state.Categories)

	calls := b.hitCount("GET /api/projects")
	v.SetCategory("WEB")
	state = v.State()
	require.Len(t, state.Visible, 1)
	assert.Equal(t, int64(1), state.Visible[0].ID)
	assert.Equal(t, calls, b.hitCount("GET /api/projects"), "фильтр категории не делает запросов")
}

func TestProjectList_SearchEmptyResultIsReady(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, nil)

	v := NewProjectList(deps)
	require.NoError(t, v.Load(context.Background()))
	require.NoError(t, v.Search(context.Background(), "rust"))

	state := v.State()
	assert.Equal(t, Ready, state.Status)
	assert.Empty(t, state.Error)
	assert.NotNil(t, state.Data)
	assert.Empty(t, state.Data)
	assert.Equal(t, "rust", state.SearchTerm)
}

func TestProjectList_EmptySearchRefetchesList(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, nil)

	v := NewProjectList(deps)
	require.NoError(t, v.Search(context.Background(), "Лендинг"))
	assert.Len(t, v.State().Data, 1)

	require.NoError(t, v.Search(context.Background(), "   "))
	assert.Len(t, v.State().Data, 2)
	assert.Equal(t, 1, b.hitCount("GET /api/projects"))
	assert.Equal(t, 1, b.hitCount("GET /api/projects/search"))
}

func TestProjectList_ReadFailureIsInline(t *testing.T) {
	b := newFakeBackend()
	b.failOn("GET /api/projects", http.StatusInternalServerError)
	deps, _ := newDeps(t, b, nil)

	v := NewProjectList(deps)
	err := v.Load(context.Background())
	require.Error(t, err)
	_, isAlert := AsAlert(err)
	assert.False(t, isAlert)

	state := v.State()
	assert.Equal(t, Failed, state.Status)
	assert.Equal(t, "ошибка сервера", state.Error)
}

func TestProjectDetails_SummaryFailureIsNotFatal(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	b.failOn("GET /api/ai/summarize-project/{id}", http.StatusServiceUnavailable)
	deps, _ := newDeps(t, b, freelancerUser)

	v := NewProjectDetails(deps, 1)
	require.NoError(t, v.Load(context.Background()))

	state := v.State()
	assert.Equal(t, Ready, state.Status)
	require.NotNil(t, state.Data.Project)
	assert.Nil(t, state.Data.Summary)
	assert.NotEmpty(t, state.Data.SummaryError)
	assert.True(t, state.CanPropose)
	assert.False(t, state.CanManage)
}

func TestMyProjects_DeleteRemovesInPlace(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, clientUser)

	v := NewMyProjects(deps)
	require.NoError(t, v.Load(context.Background()))
	require.Len(t, v.State().Data, 3)

	require.NoError(t, v.Delete(context.Background(), 1))

	state := v.State()
	assert.Len(t, state.Data, 2)
	assert.Equal(t, 1, b.hitCount("GET /api/projects/client/{id}"), "удаление не перечитывает список")
	assert.Equal(t, 2, state.Counts[models.FilterAll])
}

func TestMyProjects_DeleteNonOpenIsRefusedAtCallSite(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, clientUser)

	v := NewMyProjects(deps)
	require.NoError(t, v.Load(context.Background()))

	err := v.Delete(context.Background(), 3)
	alert, ok := AsAlert(err)
	require.True(t, ok)
	assert.Contains(t, alert.Error(), "только открытый")
	assert.Equal(t, 0, b.hitCount("DELETE /api/projects/{id}"))
	assert.Len(t, v.State().Data, 3)
}

func TestMyProjects_DeclinedConfirmDoesNothing(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, clientUser)

	v := NewMyProjects(deps.With(Declined, nil))
	require.NoError(t, v.Load(context.Background()))

	err := v.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, apperror.ErrNotConfirmed)
	assert.Equal(t, 0, b.hitCount("DELETE /api/projects/{id}"))
}

func TestMyProjects_DeleteFailureIsAlertAndKeepsItem(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	b.failOn("DELETE /api/projects/{id}", http.StatusConflict)
	deps, _ := newDeps(t, b, clientUser)

	v := NewMyProjects(deps)
	require.NoError(t, v.Load(context.Background()))

	err := v.Delete(context.Background(), 1)
	alert, ok := AsAlert(err)
	require.True(t, ok)
	assert.Equal(t, "Не удалось удалить проект: ошибка сервера", alert.Error())
	assert.Len(t, v.State().Data, 3)
}

func TestMyProjects_StatusFilterAndCounts(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, clientUser)

	v := NewMyProjects(deps)
	require.NoError(t, v.Load(context.Background()))
	v.SetFilter("open")

	state := v.State()
	assert.Equal(t, models.ProjectStatusOpen, state.Filter)
	assert.Len(t, state.Visible, 2)
	assert.Equal(t, 2, state.Counts[models.ProjectStatusOpen])
	assert.Equal(t, 1, state.Counts[models.ProjectStatusInProgress])
}

func seedProposals(b *fakeBackend) {
	b.addProposal(models.Proposal{ID: 11, ProjectID: 1, FreelancerID: 2, BidAmount: 400, Status: models.ProposalStatusPending})
	b.addProposal(models.Proposal{ID: 12, ProjectID: 1, FreelancerID: 5, BidAmount: 450, Status: models.ProposalStatusPending})
	b.addProposal(models.Proposal{ID: 13, ProjectID: 1, FreelancerID: 6, BidAmount: 480, Status: models.ProposalStatusPending})
}

func TestViewProposals_AcceptRefetchesCollection(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	seedProposals(b)
	deps, _ := newDeps(t, b, clientUser)

	v := NewViewProposals(deps, 1)
	require.NoError(t, v.Load(context.Background()))
	require.NoError(t, v.Accept(context.Background(), 12))

	assert.Equal(t, 2, b.hitCount("GET /api/proposals/project/{id}"))

	statuses := map[int64]string{}
	for _, p := range v.State().Data.Proposals {
		statuses[p.ID] = p.Status
	}
	assert.Equal(t, map[int64]string{
		11: models.ProposalStatusRejected,
		12: models.ProposalStatusAccepted,
		13: models.ProposalStatusRejected,
	}, statuses)
}

func TestViewProposals_RejectPatchesInPlace(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	seedProposals(b)
	deps, _ := newDeps(t, b, clientUser)

	v := NewViewProposals(deps, 1)
	require.NoError(t, v.Load(context.Background()))
	require.NoError(t, v.Reject(context.Background(), 11))

	assert.Equal(t, 1, b.hitCount("GET /api/proposals/project/{id}"))
	state := v.State()
	assert.Equal(t, models.ProposalStatusRejected, state.Data.Proposals[0].Status)
	assert.Equal(t, models.ProposalStatusPending, state.Data.Proposals[1].Status)
	assert.Equal(t, 1, state.Counts[models.ProposalStatusRejected])
}

func TestViewProposals_AcceptFailureIsAlert(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	seedProposals(b)
	b.failOn("POST /api/proposals/{id}/accept", http.StatusBadRequest)
	deps, _ := newDeps(t, b, clientUser)

	v := NewViewProposals(deps, 1)
	require.NoError(t, v.Load(context.Background()))

	_, ok := AsAlert(v.Accept(context.Background(), 12))
	assert.True(t, ok)
	assert.Equal(t, 1, b.hitCount("GET /api/proposals/project/{id}"))
}

func TestAIRanking_OptionalPartsAreNonFatal(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	b.failOn("GET /api/ai/predict-success/{id}", http.StatusInternalServerError)
	deps, _ := newDeps(t, b, clientUser)

	v := NewAIRanking(deps, 1)
	require.NoError(t, v.Load(context.Background()))

	state := v.State()
	assert.Equal(t, Ready, state.Status)
	assert.Len(t, state.Data.Rankings, 1)
	assert.Nil(t, state.Data.Prediction)
	assert.NotEmpty(t, state.Data.PredictionError)
	assert.Len(t, state.Data.Matches, 1)
}

func TestAIRanking_ReadsRunConcurrently(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	// проект, рейтинг, прогноз и подбор: каждый ответ ждёт остальные три
	b.awaitAll(4)
	deps, _ := newDeps(t, b, clientUser)

	v := NewAIRanking(deps, 1)
	require.NoError(t, v.Load(context.Background()))

	state := v.State()
	assert.Equal(t, Ready, state.Status)
	assert.Empty(t, state.Data.PredictionError)
	assert.Empty(t, state.Data.MatchesError)
	assert.Len(t, state.Data.Rankings, 1)
}

func TestViewProposals_ReadsRunConcurrently(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	seedProposals(b)
	b.awaitAll(2)
	deps, _ := newDeps(t, b, clientUser)

	v := NewViewProposals(deps, 1)
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, Ready, v.State().Status)
}

func TestAIRanking_RankingFailureFailsView(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	b.failOn("GET /api/ai/rank-proposals/{id}", http.StatusInternalServerError)
	deps, _ := newDeps(t, b, clientUser)

	v := NewAIRanking(deps, 1)
	require.Error(t, v.Load(context.Background()))
	assert.Equal(t, Failed, v.State().Status)
}

func TestMyProposals_WithdrawPatchesStatus(t *testing.T) {
	b := newFakeBackend()
	seedProposals(b)
	deps, _ := newDeps(t, b, freelancerUser)

	v := NewMyProposals(deps)
	require.NoError(t, v.Load(context.Background()))
	require.Len(t, v.State().Data, 1)

	require.NoError(t, v.Withdraw(context.Background(), 11))
	state := v.State()
	assert.Equal(t, models.ProposalStatusWithdrawn, state.Data[0].Status)
	assert.Equal(t, 1, b.hitCount("GET /api/proposals/freelancer/{id}"))
}

func TestSubmitProposal_NavigatesAndNextFetchIncludesPending(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, rec := newDeps(t, b, freelancerUser)

	v := NewSubmitProposal(deps, 2)
	require.NoError(t, v.Load(context.Background()))

	err := v.Submit(context.Background(), models.ProposalInput{
		BidAmount:   1200,
		Duration:    14,
		CoverLetter: "  Сделаю за две недели  ",
	})
	require.NoError(t, err)

	nav := rec.Last()
	require.NotNil(t, nav)
	assert.Equal(t, "/freelancer/proposals", nav.To)
	assert.NotEmpty(t, nav.Flash)

	mine := NewMyProposals(deps)
	require.NoError(t, mine.Load(context.Background()))
	data := mine.State().Data
	require.Len(t, data, 1)
	assert.Equal(t, models.ProposalStatusPending, data[0].Status)
	assert.Equal(t, int64(2), data[0].ProjectID)
	assert.Equal(t, freelancerUser.ID, data[0].FreelancerID)
	assert.Equal(t, "Сделаю за две недели", data[0].CoverLetter)
}

func TestSubmitProposal_ValidationIsInline(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, rec := newDeps(t, b, freelancerUser)

	v := NewSubmitProposal(deps, 2)
	err := v.Submit(context.Background(), models.ProposalInput{BidAmount: 0, Duration: 3})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.NotEmpty(t, v.State().Form.Error)
	assert.False(t, v.State().Form.Submitting)
	assert.Nil(t, rec.Last())
	assert.Equal(t, 0, b.hitCount("POST /api/proposals"))
}

func TestSubmitProposal_AttachDocument(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, freelancerUser)

	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, append([]byte("%PDF-1.4\n"), make([]byte, 64)...), 0o600))

	v := NewSubmitProposal(deps, 2)
	att, err := v.Attach(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", att.MIME)

	require.NoError(t, v.Submit(context.Background(), models.ProposalInput{BidAmount: 100, Duration: 2, CoverLetter: "Готов начать"}))
	assert.Len(t, b.proposal(1001).Attachments, 1)
	assert.Empty(t, v.State().Attachments)
}

func TestPostProject_CreatesOpenProjectForClient(t *testing.T) {
	b := newFakeBackend()
	deps, rec := newDeps(t, b, clientUser)

	v := NewPostProject(deps)
	err := v.Submit(context.Background(), models.ProjectInput{
		Title:          "Telegram бот",
		Description:    "Бот для приёма заказов",
		MinBudget:      100,
		MaxBudget:      300,
		Duration:       10,
		Category:       "WEB",
		RequiredSkills: []string{"Go", " go ", ""},
	})
	require.NoError(t, err)

	created := v.State().Created
	require.NotNil(t, created)
	assert.Equal(t, models.ProjectStatusOpen, created.Status)
	assert.Equal(t, clientUser.ID, created.ClientID)
	assert.Equal(t, []string{"Go"}, created.RequiredSkills)
	assert.Equal(t, "/client/projects", rec.Last().To)
}

func TestPostProject_BudgetRangeValidated(t *testing.T) {
	b := newFakeBackend()
	deps, rec := newDeps(t, b, clientUser)

	v := NewPostProject(deps)
	err := v.Submit(context.Background(), models.ProjectInput{
		Title: "Проект", Description: "Описание проекта", MinBudget: 500, MaxBudget: 100, Duration: 5, Category: "WEB",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Nil(t, rec.Last())
	assert.Equal(t, 0, b.hitCount("POST /api/projects"))
}

func TestPaymentForm_InitiateThenProcessUPI(t *testing.T) {
	b := newFakeBackend()
	b.addProposal(models.Proposal{ID: 21, ProjectID: 1, FreelancerID: 2, BidAmount: 750, Status: models.ProposalStatusAccepted, ProjectTitle: "Лендинг"})
	deps, rec := newDeps(t, b, clientUser)

	v := NewPaymentForm(deps, 21)
	require.NoError(t, v.Load(context.Background()))
	state := v.State()
	assert.Equal(t, 750.0, state.Amount)
	assert.Equal(t, "Оплата проекта: Лендинг", state.Description)

	require.NoError(t, v.Pay(context.Background(), "client@okbank"))
	assert.Equal(t, 1, b.hitCount("POST /api/payments"))
	assert.Equal(t, 1, b.hitCount("POST /api/payments/{id}/upi"))
	assert.Equal(t, models.PaymentStatusCompleted, v.State().Payment.Status)
	assert.Equal(t, "/payment-history", rec.Last().To)
}

func TestPaymentForm_InvalidUPIIsInline(t *testing.T) {
	b := newFakeBackend()
	b.addProposal(models.Proposal{ID: 21, ProjectID: 1, FreelancerID: 2, BidAmount: 750})
	deps, _ := newDeps(t, b, clientUser)

	v := NewPaymentForm(deps, 21)
	require.NoError(t, v.Load(context.Background()))

	err := v.Pay(context.Background(), "не-upi")
	require.Error(t, err)
	assert.NotEmpty(t, v.State().Form.Error)
	assert.Equal(t, 0, b.hitCount("POST /api/payments"))
}

func TestPaymentHistory_TotalsAndSuccessRate(t *testing.T) {
	b := newFakeBackend()
	b.payments[1] = models.Payment{ID: 1, ClientID: 1, Amount: 100, Status: models.PaymentStatusCompleted}
	b.payments[2] = models.Payment{ID: 2, ClientID: 1, Amount: 50, Status: models.PaymentStatusFailed}
	b.payments[3] = models.Payment{ID: 3, ClientID: 1, Amount: 25, Status: models.PaymentStatusCompleted}
	deps, _ := newDeps(t, b, clientUser)

	v := NewPaymentHistory(deps)
	require.NoError(t, v.Load(context.Background()))
	v.SetFilter(models.PaymentStatusCompleted)

	state := v.State()
	assert.Len(t, state.Visible, 2)
	assert.Equal(t, 175.0, state.TotalAmount)
	assert.Equal(t, 67.0, state.SuccessRate)
}

func TestClientDashboard_DerivedStats(t *testing.T) {
	b := newFakeBackend()
	seedProjects(b)
	deps, _ := newDeps(t, b, clientUser)

	v := NewClientDashboard(deps)
	require.NoError(t, v.Load(context.Background()))

	state := v.State()
	assert.Equal(t, ClientStats{TotalProjects: 3, ActiveProjects: 1, CompletedProjects: 0, TotalSpent: 2800}, state.Stats)
	assert.Len(t, state.Recent, 3)
}

func TestFreelancerDashboard_StatsAndRecent(t *testing.T) {
	b := newFakeBackend()
	for i := int64(1); i <= 7; i++ {
		b.addProposal(models.Proposal{ID: i, ProjectID: 1, FreelancerID: 2, Status: models.ProposalStatusPending})
	}
	deps, _ := newDeps(t, b, freelancerUser)

	v := NewFreelancerDashboard(deps)
	require.NoError(t, v.Load(context.Background()))

	state := v.State()
	require.NotNil(t, state.Data.Stats)
	assert.Equal(t, 3, state.Data.Stats.TotalProposals)
	assert.Len(t, state.Data.Recent, 5)
}

func TestFreelancerProfile_SkillsSavedOnSave(t *testing.T) {
	b := newFakeBackend()
	b.profiles[2] = models.FreelancerProfile{ID: 2, UserID: 2, Bio: "Go", Skills: []string{"Go"}}
	deps, _ := newDeps(t, b, freelancerUser)

	v := NewFreelancerProfile(deps)
	require.NoError(t, v.Load(context.Background()))

	require.NoError(t, v.AddSkill("PostgreSQL"))
	require.NoError(t, v.AddSkill("go"))
	v.RemoveSkill("Go")
	assert.True(t, v.State().Data.Dirty)
	assert.Equal(t, 0, b.hitCount("PUT /api/freelancers/{id}/skills"))

	bio := "Backend на Go"
	require.NoError(t, v.Save(context.Background(), ProfileUpdate{Bio: &bio}))

	state := v.State()
	assert.False(t, state.Data.Dirty)
	assert.Equal(t, []string{"PostgreSQL"}, state.Data.Profile.Skills)
	assert.Equal(t, bio, state.Data.Profile.Bio)
	assert.Equal(t, []string{"PostgreSQL"}, b.profile(2).Skills)
}

func TestFreelancerProfile_RemovePortfolioFailureIsAlert(t *testing.T) {
	b := newFakeBackend()
	b.profiles[2] = models.FreelancerProfile{ID: 2, UserID: 2, Portfolio: []models.PortfolioItem{{ID: 5, Title: "Сайт"}}}
	b.failOn("DELETE /api/freelancers/{id}/portfolio/{itemId}", http.StatusInternalServerError)
	deps, _ := newDeps(t, b, freelancerUser)

	v := NewFreelancerProfile(deps)
	require.NoError(t, v.Load(context.Background()))

	_, ok := AsAlert(v.RemovePortfolio(context.Background(), 5))
	assert.True(t, ok)
	assert.Len(t, v.State().Data.Profile.Portfolio, 1)
}

func TestNotifications_MarkReadPatches(t *testing.T) {
	b := newFakeBackend()
	b.notices[1] = models.Notification{ID: 1, UserID: 1, Title: "Новое предложение"}
	b.notices[2] = models.Notification{ID: 2, UserID: 1, Title: "Платёж"}
	deps, _ := newDeps(t, b, clientUser)

	v := NewNotifications(deps)
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, int64(2), v.State().Data.Unread)

	require.NoError(t, v.MarkRead(context.Background(), 1))
	assert.Equal(t, int64(1), v.State().Data.Unread)
	assert.True(t, v.State().Data.Items[0].Read)

	require.NoError(t, v.MarkAllRead(context.Background()))
	assert.Equal(t, int64(0), v.State().Data.Unread)
	assert.True(t, v.State().Data.Items[1].Read)
}

func TestViews_RequireUser(t *testing.T) {
	b := newFakeBackend()
	deps, _ := newDeps(t, b, nil)

	err := NewMyProjects(deps).Load(context.Background())
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)
}
