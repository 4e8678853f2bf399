package view

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ignatzorin/freelance-nexus/internal/apiclient"
	"github.com/ignatzorin/freelance-nexus/internal/attachment"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/service"
)

// fakeBackend in-memory API с теми же путями, что у настоящего сервера.
type fakeBackend struct {
	mu        sync.Mutex
	projects  map[int64]models.Project
	proposals map[int64]models.Proposal
	payments  map[int64]models.Payment
	profiles  map[int64]models.FreelancerProfile
	notices   map[int64]models.Notification
	nextID    int64
	fail      map[string]int
	hits      map[string]int
	barrier   *barrier
}

// barrier держит каждый запрос, пока не придут все ожидаемые.
type barrier struct {
	mu        sync.Mutex
	remaining int
	open      chan struct{}
}

func (br *barrier) arrive() {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.remaining--
	if br.remaining == 0 {
		close(br.open)
	}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		projects:  map[int64]models.Project{},
		proposals: map[int64]models.Proposal{},
		payments:  map[int64]models.Payment{},
		profiles:  map[int64]models.FreelancerProfile{},
		notices:   map[int64]models.Notification{},
		nextID:    1000,
		fail:      map[string]int{},
		hits:      map[string]int{},
	}
}

// failOn заставляет маршрут отвечать статусом с сообщением.
func (b *fakeBackend) failOn(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[route] = status
}

// awaitAll заставляет сервер отвечать только после прихода n запросов.
// Запрос, не дождавшийся остальных за секунду, получает 504.
func (b *fakeBackend) awaitAll(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.barrier = &barrier{remaining: n, open: make(chan struct{})}
}

func (b *fakeBackend) hitCount(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *fakeBackend) addProject(p models.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects[p.ID] = p
}

func (b *fakeBackend) addProposal(p models.Proposal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.proposals[p.ID] = p
}

func (b *fakeBackend) proposal(id int64) models.Proposal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.proposals[id]
}

func (b *fakeBackend) profile(id int64) models.FreelancerProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profiles[id]
}

func (b *fakeBackend) handle(mux *http.ServeMux, route string, fn func(w http.ResponseWriter, r *http.Request)) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[route]++
		status, failing := b.fail[route]
		br := b.barrier
		b.mu.Unlock()
		if br != nil {
			br.arrive()
			select {
			case <-br.open:
			case <-time.After(time.Second):
				writeJSON(w, http.StatusGatewayTimeout, map[string]string{"message": "запросы пришли не одновременно"})
				return
			}
		}
		if failing {
			writeJSON(w, status, map[string]string{"message": "ошибка сервера"})
			return
		}
		fn(w, r)
	})
}

func (b *fakeBackend) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	b.handle(mux, "GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		writeJSON(w, http.StatusOK, b.listProjects(func(p models.Project) bool {
			return status == "" || p.Status == status
		}))
	})
	b.handle(mux, "GET /api/projects/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		writeJSON(w, http.StatusOK, b.listProjects(func(p models.Project) bool {
			return q != "" && containsFold(p.Title, q)
		}))
	})
	b.handle(mux, "GET /api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		p, ok := b.projects[pathID(r, "id")]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "проект не найден"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
	b.handle(mux, "GET /api/projects/client/{id}", func(w http.ResponseWriter, r *http.Request) {
		clientID := pathID(r, "id")
		writeJSON(w, http.StatusOK, b.listProjects(func(p models.Project) bool { return p.ClientID == clientID }))
	})
	b.handle(mux, "POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		var in models.ProjectInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.nextID++
		p := models.Project{
			ID: b.nextID, Title: in.Title, Description: in.Description, MinBudget: in.MinBudget,
			MaxBudget: in.MaxBudget, Duration: in.Duration, Category: in.Category,
			Status: in.Status, ClientID: in.ClientID, RequiredSkills: in.RequiredSkills,
		}
		b.projects[p.ID] = p
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, p)
	})
	b.handle(mux, "DELETE /api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delete(b.projects, pathID(r, "id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	b.handle(mux, "GET /api/proposals/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.proposal(pathID(r, "id")))
	})
	b.handle(mux, "GET /api/proposals/project/{id}", func(w http.ResponseWriter, r *http.Request) {
		projectID := pathID(r, "id")
		writeJSON(w, http.StatusOK, b.listProposals(func(p models.Proposal) bool { return p.ProjectID == projectID }))
	})
	b.handle(mux, "GET /api/proposals/freelancer/{id}", func(w http.ResponseWriter, r *http.Request) {
		freelancerID := pathID(r, "id")
		writeJSON(w, http.StatusOK, b.listProposals(func(p models.Proposal) bool { return p.FreelancerID == freelancerID }))
	})
	b.handle(mux, "POST /api/proposals", func(w http.ResponseWriter, r *http.Request) {
		var in models.ProposalInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.nextID++
		p := models.Proposal{
			ID: b.nextID, ProjectID: in.ProjectID, FreelancerID: in.FreelancerID, BidAmount: in.BidAmount,
			Duration: in.Duration, CoverLetter: in.CoverLetter, Status: in.Status, Attachments: in.Attachments,
		}
		b.proposals[p.ID] = p
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, p)
	})
	b.handle(mux, "POST /api/proposals/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
		accepted := pathID(r, "id")
		b.mu.Lock()
		target := b.proposals[accepted]
		for id, p := range b.proposals {
			if p.ProjectID != target.ProjectID {
				continue
			}
			if id == accepted {
				p.Status = models.ProposalStatusAccepted
			} else if p.Status == models.ProposalStatusPending {
				p.Status = models.ProposalStatusRejected
			}
			b.proposals[id] = p
		}
		result := b.proposals[accepted]
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, result)
	})
	b.handle(mux, "POST /api/proposals/{id}/reject", b.setProposalStatus(models.ProposalStatusRejected))
	b.handle(mux, "POST /api/proposals/{id}/withdraw", b.setProposalStatus(models.ProposalStatusWithdrawn))

	b.handle(mux, "POST /api/payments", func(w http.ResponseWriter, r *http.Request) {
		var in models.PaymentInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.nextID++
		p := models.Payment{
			ID: b.nextID, ProposalID: in.ProposalID, ClientID: in.ClientID, FreelancerID: in.FreelancerID,
			Amount: in.Amount, PaymentMethod: in.PaymentMethod, Status: models.PaymentStatusPending,
			Description: in.Description,
		}
		b.payments[p.ID] = p
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, p)
	})
	b.handle(mux, "POST /api/payments/{id}/upi", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		p := b.payments[pathID(r, "id")]
		p.Status = models.PaymentStatusCompleted
		p.TransactionID = "TXN-" + strconv.FormatInt(p.ID, 10)
		b.payments[p.ID] = p
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, p)
	})
	b.handle(mux, "GET /api/payments/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		userID := pathID(r, "id")
		b.mu.Lock()
		out := []models.Payment{}
		for _, p := range b.payments {
			if p.ClientID == userID || p.FreelancerID == userID {
				out = append(out, p)
			}
		}
		b.mu.Unlock()
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		writeJSON(w, http.StatusOK, out)
	})

	b.handle(mux, "GET /api/freelancers/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		p := b.profiles[pathID(r, "id")]
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, p)
	})
	b.handle(mux, "PUT /api/freelancers/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in models.FreelancerProfile
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		p := b.profiles[pathID(r, "id")]
		p.Bio, p.HourlyRate = in.Bio, in.HourlyRate
		b.profiles[pathID(r, "id")] = p
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, p)
	})
	b.handle(mux, "PUT /api/freelancers/{id}/skills", func(w http.ResponseWriter, r *http.Request) {
		var skills []string
		_ = json.NewDecoder(r.Body).Decode(&skills)
		b.mu.Lock()
		p := b.profiles[pathID(r, "id")]
		p.Skills = skills
		b.profiles[pathID(r, "id")] = p
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, skills)
	})
	b.handle(mux, "DELETE /api/freelancers/{id}/portfolio/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	b.handle(mux, "GET /api/freelancers/{id}/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.FreelancerStats{TotalProposals: 3, TotalEarnings: 1200})
	})

	b.handle(mux, "GET /api/ai/summarize-project/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ProjectSummary{ProjectID: pathID(r, "id"), Summary: "Кратко"})
	})
	b.handle(mux, "GET /api/ai/analyze-profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ProfileAnalysis{FreelancerID: pathID(r, "id"), Score: 80})
	})
	b.handle(mux, "GET /api/ai/rank-proposals/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.ProposalRanking{{ProposalID: 1, Score: 91, Rank: 1}})
	})
	b.handle(mux, "GET /api/ai/predict-success/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.SuccessPrediction{ProjectID: pathID(r, "id"), Probability: 0.7})
	})
	b.handle(mux, "GET /api/ai/match-freelancers/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.FreelancerMatch{{FreelancerID: 7, MatchScore: 88}})
	})

	b.handle(mux, "GET /api/notifications/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		userID := pathID(r, "id")
		b.mu.Lock()
		out := []models.Notification{}
		for _, n := range b.notices {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
		b.mu.Unlock()
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		writeJSON(w, http.StatusOK, out)
	})
	b.handle(mux, "GET /api/notifications/user/{id}/unread/count", func(w http.ResponseWriter, r *http.Request) {
		userID := pathID(r, "id")
		b.mu.Lock()
		var n int
		for _, item := range b.notices {
			if item.UserID == userID && !item.Read {
				n++
			}
		}
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(strconv.Itoa(n)))
	})
	b.handle(mux, "PUT /api/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		n := b.notices[pathID(r, "id")]
		n.Read = true
		b.notices[n.ID] = n
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, n)
	})
	b.handle(mux, "PUT /api/notifications/user/{id}/read-all", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (b *fakeBackend) setProposalStatus(status string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		p := b.proposals[pathID(r, "id")]
		p.Status = status
		b.proposals[p.ID] = p
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, p)
	}
}

func (b *fakeBackend) listProjects(keep func(models.Project) bool) []models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Project{}
	for _, p := range b.projects {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *fakeBackend) listProposals(keep func(models.Proposal) bool) []models.Proposal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Proposal{}
	for _, p := range b.proposals {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func pathID(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(r.PathValue(name), 10, 64)
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// fakeSession фиксированный пользователь.
type fakeSession struct {
	user *models.User
}

func (s fakeSession) CurrentUser() *models.User { return s.user }

var (
	clientUser     = &models.User{ID: 1, Username: "client", Roles: models.Roles{models.RoleClient}}
	freelancerUser = &models.User{ID: 2, Username: "dev", Roles: models.Roles{models.RoleFreelancer}}
)

// newDeps зависимости поверх настоящего адаптера и клиентов ресурсов.
func newDeps(t *testing.T, b *fakeBackend, user *models.User) (Deps, *Recorder) {
	srv := b.server(t)
	api := apiclient.New(srv.URL, 5*time.Second)
	rec := &Recorder{}
	return Deps{
		Session:       fakeSession{user: user},
		Projects:      service.NewProjectService(api),
		Proposals:     service.NewProposalService(api),
		Payments:      service.NewPaymentService(api),
		Freelancers:   service.NewFreelancerService(api),
		AI:            service.NewAIService(api),
		Notifications: service.NewNotificationService(api),
		Attachments:   attachment.New(1),
		Confirm:       Confirmed,
		Navigate:      rec,
	}, rec
}
