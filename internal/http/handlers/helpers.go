package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

// homeFor начальная страница после входа по роли пользователя.
func homeFor(user *models.User) *view.Navigation {
	switch {
	case user.HasRole(models.RoleClient):
		return &view.Navigation{To: "/client/dashboard"}
	case user.HasRole(models.RoleFreelancer):
		return &view.Navigation{To: "/freelancer/dashboard"}
	default:
		return &view.Navigation{To: "/projects"}
	}
}

// confirmer подтверждение разрушительного действия передаётся параметром confirm=true.
func confirmer(c *gin.Context) view.Confirmer {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); ok {
		return view.Confirmed
	}
	return view.Declined
}

// RouteParam имя единственного параметра шаблона маршрута или пустая строка.
func RouteParam(pattern string) string {
	for _, seg := range strings.Split(pattern, "/") {
		if strings.HasPrefix(seg, ":") {
			return strings.TrimPrefix(seg, ":")
		}
	}
	return ""
}
