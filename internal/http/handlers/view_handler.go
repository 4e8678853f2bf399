package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/http/middleware"
	"github.com/ignatzorin/freelance-nexus/internal/http/response"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-nexus/internal/view"
	"github.com/ignatzorin/freelance-nexus/internal/ws"
)

// ActionRequest тело POST действия. Каждое действие читает только свои поля.
type ActionRequest struct {
	ID           int64                 `json:"id"`
	UPIID        string                `json:"upiId"`
	Project      *models.ProjectInput  `json:"project"`
	Proposal     *models.ProposalInput `json:"proposal"`
	Attachments  []string              `json:"attachments"`
	Portfolio    *models.PortfolioItem `json:"portfolio"`
	ImagePath    string                `json:"imagePath"`
	Bio          *string               `json:"bio"`
	HourlyRate   *float64              `json:"hourlyRate"`
	AddSkills    []string              `json:"addSkills"`
	RemoveSkills []string              `json:"removeSkills"`
}

type (
	mountFunc  func(deps view.Deps, id int64) view.View
	queryFunc  func(ctx context.Context, v view.View, c *gin.Context) error
	actionFunc func(ctx context.Context, v view.View, req ActionRequest) error
)

// page представление, смонтированное на маршрут.
// query заменяет Load для GET, если маршрут принимает параметры фильтра.
type page struct {
	mount   mountFunc
	query   queryFunc
	actions map[string]actionFunc
}

// ViewHandler монтирует представление на каждый запрос: загрузка, действие, ответ состоянием.
// Пока запрос выполняется, изменения состояния уходят подписчикам /ws.
type ViewHandler struct {
	deps  view.Deps
	hub   *ws.Hub
	pages map[string]page
}

// NewViewHandler создаёт хэндлер. hub может быть nil.
func NewViewHandler(deps view.Deps, hub *ws.Hub) *ViewHandler {
	return &ViewHandler{deps: deps, hub: hub, pages: pages()}
}

// Has сообщает, обслуживает ли хэндлер шаблон маршрута.
func (h *ViewHandler) Has(pattern string) bool {
	_, ok := h.pages[pattern]
	return ok
}

// Actions действия, доступные на шаблоне маршрута.
func (h *ViewHandler) Actions(pattern string) bool {
	return len(h.pages[pattern].actions) > 0
}

// Show обрабатывает GET шаблона: монтирует и загружает представление.
// Ошибка чтения остаётся в состоянии, ответ 200. Ошибка авторизации прерывает запрос.
func (h *ViewHandler) Show(pattern string) gin.HandlerFunc {
	p := h.pages[pattern]
	param := RouteParam(pattern)

	return func(c *gin.Context) {
		v, _ := h.mount(c, p, param, view.Declined)
		defer v.Close()

		ctx := c.Request.Context()
		var err error
		if p.query != nil {
			err = p.query(ctx, v, c)
		} else {
			err = v.Load(ctx)
		}
		if err != nil && apperror.IsAuth(err) {
			_ = c.Error(err)
			return
		}

		response.Success(c, v.Render())
	}
}

// Act обрабатывает POST <шаблон>/actions/:action.
func (h *ViewHandler) Act(pattern string) gin.HandlerFunc {
	p := h.pages[pattern]
	param := RouteParam(pattern)

	return func(c *gin.Context) {
		name := c.Param("action")
		act, ok := p.actions[name]
		if !ok {
			response.NotFound(c, "неизвестное действие "+name)
			return
		}

		var req ActionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				response.BadRequest(c, "некорректное тело запроса")
				return
			}
		}

		v, rec := h.mount(c, p, param, confirmer(c))
		defer v.Close()

		ctx := c.Request.Context()
		if err := v.Load(ctx); err != nil {
			_ = c.Error(err)
			return
		}

		log := logger.WithComponent("http").WithFields(logrus.Fields{
			"view":   v.Name(),
			"action": name,
		})
		if err := act(ctx, v, req); err != nil {
			log.WithError(err).Debug("действие не выполнено")
			_ = c.Error(err)
			return
		}
		log.Info("действие выполнено")

		response.Navigate(c, v.Render(), rec.Last())
	}
}

func (h *ViewHandler) mount(c *gin.Context, p page, param string, confirm view.Confirmer) (view.View, *view.Recorder) {
	rec := &view.Recorder{}
	var id int64
	if param != "" {
		id = middleware.ParamID(c, param)
	}

	v := p.mount(h.deps.With(confirm, rec), id)
	if h.hub != nil {
		ws.Watch(h.hub, c.Request.URL.Path, v)
	}
	return v, rec
}

func statusQuery(c *gin.Context) string {
	return c.DefaultQuery("status", models.FilterAll)
}

// pages таблица представлений по шаблонам маршрутов.
func pages() map[string]page {
	return map[string]page{
		"/projects": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewProjectList(d) },
			query: func(ctx context.Context, v view.View, c *gin.Context) error {
				list := v.(*view.ProjectList)
				list.SetCategory(c.Query("category"))
				return list.Search(ctx, c.Query("q"))
			},
		},
		"/projects/:id": {
			mount: func(d view.Deps, id int64) view.View { return view.NewProjectDetails(d, id) },
		},

		"/freelancer/dashboard": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewFreelancerDashboard(d) },
		},
		"/freelancer/profile": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewFreelancerProfile(d) },
			actions: map[string]actionFunc{
				"save": func(ctx context.Context, v view.View, req ActionRequest) error {
					profile := v.(*view.FreelancerProfile)
					for _, skill := range req.AddSkills {
						if err := profile.AddSkill(skill); err != nil {
							return err
						}
					}
					for _, skill := range req.RemoveSkills {
						profile.RemoveSkill(skill)
					}
					return profile.Save(ctx, view.ProfileUpdate{Bio: req.Bio, HourlyRate: req.HourlyRate})
				},
				"add-portfolio": func(ctx context.Context, v view.View, req ActionRequest) error {
					if req.Portfolio == nil {
						return apperror.Validation("не указана работа портфолио")
					}
					return v.(*view.FreelancerProfile).AddPortfolio(ctx, *req.Portfolio, req.ImagePath)
				},
				"remove-portfolio": func(ctx context.Context, v view.View, req ActionRequest) error {
					return v.(*view.FreelancerProfile).RemovePortfolio(ctx, req.ID)
				},
			},
		},
		"/freelancer/recommendations": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewRecommendations(d) },
		},
		"/freelancer/proposals": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewMyProposals(d) },
			query: func(ctx context.Context, v view.View, c *gin.Context) error {
				v.(*view.MyProposals).SetFilter(statusQuery(c))
				return v.Load(ctx)
			},
			actions: map[string]actionFunc{
				"withdraw": func(ctx context.Context, v view.View, req ActionRequest) error {
					return v.(*view.MyProposals).Withdraw(ctx, req.ID)
				},
			},
		},
		"/freelancer/submit-proposal/:projectId": {
			mount: func(d view.Deps, id int64) view.View { return view.NewSubmitProposal(d, id) },
			actions: map[string]actionFunc{
				"submit": func(ctx context.Context, v view.View, req ActionRequest) error {
					if req.Proposal == nil {
						return apperror.Validation("не указано предложение")
					}
					form := v.(*view.SubmitProposal)
					for _, path := range req.Attachments {
						if _, err := form.Attach(ctx, path); err != nil {
							return err
						}
					}
					return form.Submit(ctx, *req.Proposal)
				},
			},
		},

		"/client/dashboard": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewClientDashboard(d) },
		},
		"/client/post-project": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewPostProject(d) },
			actions: map[string]actionFunc{
				"submit": func(ctx context.Context, v view.View, req ActionRequest) error {
					if req.Project == nil {
						return apperror.Validation("не указан проект")
					}
					return v.(*view.PostProject).Submit(ctx, *req.Project)
				},
			},
		},
		"/client/projects": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewMyProjects(d) },
			query: func(ctx context.Context, v view.View, c *gin.Context) error {
				v.(*view.MyProjects).SetFilter(statusQuery(c))
				return v.Load(ctx)
			},
			actions: map[string]actionFunc{
				"delete": func(ctx context.Context, v view.View, req ActionRequest) error {
					return v.(*view.MyProjects).Delete(ctx, req.ID)
				},
			},
		},
		"/client/proposals/:projectId": {
			mount: func(d view.Deps, id int64) view.View { return view.NewViewProposals(d, id) },
			query: func(ctx context.Context, v view.View, c *gin.Context) error {
				v.(*view.ViewProposals).SetFilter(statusQuery(c))
				return v.Load(ctx)
			},
			actions: map[string]actionFunc{
				"accept": func(ctx context.Context, v view.View, req ActionRequest) error {
					return v.(*view.ViewProposals).Accept(ctx, req.ID)
				},
				"reject": func(ctx context.Context, v view.View, req ActionRequest) error {
					return v.(*view.ViewProposals).Reject(ctx, req.ID)
				},
			},
		},
		"/client/ai-ranking/:projectId": {
			mount: func(d view.Deps, id int64) view.View { return view.NewAIRanking(d, id) },
		},

		"/payment/:proposalId": {
			mount: func(d view.Deps, id int64) view.View { return view.NewPaymentForm(d, id) },
			actions: map[string]actionFunc{
				"pay": func(ctx context.Context, v view.View, req ActionRequest) error {
					return v.(*view.PaymentForm).Pay(ctx, req.UPIID)
				},
			},
		},
		"/payment-history": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewPaymentHistory(d) },
			query: func(ctx context.Context, v view.View, c *gin.Context) error {
				v.(*view.PaymentHistory).SetFilter(statusQuery(c))
				return v.Load(ctx)
			},
		},
		"/notifications": {
			mount: func(d view.Deps, _ int64) view.View { return view.NewNotifications(d) },
			actions: map[string]actionFunc{
				"mark-read": func(ctx context.Context, v view.View, req ActionRequest) error {
					return v.(*view.Notifications).MarkRead(ctx, req.ID)
				},
				"mark-all-read": func(ctx context.Context, v view.View, _ ActionRequest) error {
					return v.(*view.Notifications).MarkAllRead(ctx)
				},
			},
		},
	}
}

// NoRoute ответ для пути без представления.
func NoRoute(c *gin.Context) {
	response.NotFound(c, "страница не найдена")
}
