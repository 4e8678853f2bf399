// Package guard решает, можно ли показать представление при текущей сессии.
package guard

import (
	"strings"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/session"
)

// Decision результат проверки доступа.
type Decision int

const (
	Loading Decision = iota
	DeniedUnauthenticated
	DeniedForbidden
	Granted
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case DeniedUnauthenticated:
		return "unauthenticated"
	case DeniedForbidden:
		return "forbidden"
	case Granted:
		return "granted"
	default:
		return "unknown"
	}
}

// LoginPath куда отправляется анонимный пользователь.
const LoginPath = "/login"

// Policy требования представления.
// Public пускает анонимов; пустой Roles без Public означает любого вошедшего пользователя.
type Policy struct {
	Roles  []models.Role
	Public bool
}

// Evaluate проверяет по порядку: загрузка, вход, роли.
func Evaluate(policy Policy, state session.State) Decision {
	if state.Loading {
		return Loading
	}
	if policy.Public {
		return Granted
	}
	if !state.Authenticated {
		return DeniedUnauthenticated
	}
	if len(policy.Roles) > 0 && (state.User == nil || !state.User.Roles.HasAny(policy.Roles...)) {
		return DeniedForbidden
	}
	return Granted
}

// Route представление и его политика доступа.
type Route struct {
	Path   string
	Policy Policy
}

var (
	public        = Policy{Public: true}
	authenticated = Policy{}
	freelancer    = Policy{Roles: []models.Role{models.RoleFreelancer}}
	client        = Policy{Roles: []models.Role{models.RoleClient}}
)

// Routes таблица представлений клиента.
var Routes = []Route{
	{Path: "/projects", Policy: public},
	{Path: "/projects/:id", Policy: public},

	{Path: "/freelancer/dashboard", Policy: freelancer},
	{Path: "/freelancer/profile", Policy: freelancer},
	{Path: "/freelancer/recommendations", Policy: freelancer},
	{Path: "/freelancer/proposals", Policy: freelancer},
	{Path: "/freelancer/submit-proposal/:projectId", Policy: freelancer},

	{Path: "/client/dashboard", Policy: client},
	{Path: "/client/post-project", Policy: client},
	{Path: "/client/projects", Policy: client},
	{Path: "/client/proposals/:projectId", Policy: client},
	{Path: "/client/ai-ranking/:projectId", Policy: client},

	{Path: "/payment/:proposalId", Policy: client},
	{Path: "/payment-history", Policy: authenticated},
	{Path: "/notifications", Policy: authenticated},
}

// PolicyFor политика по шаблону пути. Неизвестный путь требует входа.
func PolicyFor(path string) Policy {
	for _, r := range Routes {
		if r.Path == path {
			return r.Policy
		}
	}
	return authenticated
}

// Match находит маршрут для конкретного пути, например /client/proposals/7.
func Match(path string) (Route, bool) {
	parts := splitPath(path)
	for _, r := range Routes {
		pattern := splitPath(r.Path)
		if len(pattern) != len(parts) {
			continue
		}
		ok := true
		for i, seg := range pattern {
			if strings.HasPrefix(seg, ":") {
				if parts[i] == "" {
					ok = false
					break
				}
				continue
			}
			if seg != parts[i] {
				ok = false
				break
			}
		}
		if ok {
			return r, true
		}
	}
	return Route{}, false
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}
