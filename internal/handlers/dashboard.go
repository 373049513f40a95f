package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/middleware"
	"github.com/sisgic/backend/internal/services"
	"github.com/sisgic/backend/pkg/response"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB, store services.ObjectStore) *DashboardHandler {
	projectService := services.NewProjectService(db, store)
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db, projectService),
	}
}

// Overview returns the landing-page summary for the caller
// GET /api/dashboard/overview
func (h *DashboardHandler) Overview(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	overview, err := h.dashboardService.Overview(userID, role)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, overview)
}
