package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/middleware"
	"github.com/sisgic/backend/internal/services"
	"github.com/sisgic/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	stageService   *services.StageService
	hub            *services.EventHub
}

func NewProjectHandler(db *gorm.DB, store services.ObjectStore, hub *services.EventHub) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db, store),
		stageService:   services.NewStageService(db, store),
		hub:            hub,
	}
}

// List returns the caller's projects, newest first
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	projects, err := h.projectService.ListForUser(userID, role)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, projects)
}

// GetByID returns a project the caller can see
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	project, err := h.projectService.GetByID(uint(id), userID, role)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, project)
}

// ListStages returns a project's stages with nested tasks and attachments
// GET /api/projects/:id/stages
func (h *ProjectHandler) ListStages(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	// Visibility check before the stage query
	if _, err := h.projectService.GetByID(uint(id), userID, role); err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	stages, err := h.stageService.ListForProject(uint(id))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, stages)
}

// Create creates a new project owned by the calling advisor
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	advisorID := middleware.GetUserID(c)
	project, err := h.projectService.Create(&req, advisorID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "projects", Action: "created", ProjectID: project.ID, EntityID: project.ID,
	})
	response.Created(c, project)
}

// Update updates a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	advisorID := middleware.GetUserID(c)
	project, err := h.projectService.Update(uint(id), advisorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "projects", Action: "updated", ProjectID: project.ID, EntityID: project.ID,
	})
	response.Success(c, project)
}

// Delete deletes a project with everything under it
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	advisorID := middleware.GetUserID(c)
	if err := h.projectService.Delete(uint(id), advisorID); err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "projects", Action: "deleted", ProjectID: uint(id), EntityID: uint(id),
	})
	response.Success(c, gin.H{"message": "project deleted successfully"})
}
