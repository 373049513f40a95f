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

type StageHandler struct {
	stageService *services.StageService
	taskService  *services.TaskService
	hub          *services.EventHub
}

func NewStageHandler(db *gorm.DB, store services.ObjectStore, hub *services.EventHub) *StageHandler {
	return &StageHandler{
		stageService: services.NewStageService(db, store),
		taskService:  services.NewTaskService(db, store),
		hub:          hub,
	}
}

// Create adds a stage to a project
// POST /api/projects/:id/stages
func (h *StageHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	advisorID := middleware.GetUserID(c)
	stage, err := h.stageService.Create(uint(projectID), advisorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "stages", Action: "created", ProjectID: stage.ProjectID, EntityID: stage.ID,
	})
	response.Created(c, stage)
}

// Update updates a stage
// PUT /api/stages/:id
func (h *StageHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid stage id")
		return
	}

	var req services.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	advisorID := middleware.GetUserID(c)
	stage, err := h.stageService.Update(uint(id), advisorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrStageNotFound) {
			response.NotFound(c, "stage not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "stages", Action: "updated", ProjectID: stage.ProjectID, EntityID: stage.ID,
	})
	response.Success(c, stage)
}

// Delete removes a stage with its tasks and attachments
// DELETE /api/stages/:id
func (h *StageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid stage id")
		return
	}

	advisorID := middleware.GetUserID(c)
	projectID := h.projectIDForStage(uint(id))

	if err := h.stageService.Delete(uint(id), advisorID); err != nil {
		if errors.Is(err, services.ErrStageNotFound) {
			response.NotFound(c, "stage not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "stages", Action: "deleted", ProjectID: projectID, EntityID: uint(id),
	})
	response.Success(c, gin.H{"message": "stage deleted successfully"})
}

// CreateTask adds a task to a stage
// POST /api/stages/:id/tasks
func (h *StageHandler) CreateTask(c *gin.Context) {
	stageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid stage id")
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	advisorID := middleware.GetUserID(c)
	task, err := h.taskService.Create(uint(stageID), advisorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrStageNotFound) {
			response.NotFound(c, "stage not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "tasks", Action: "created", ProjectID: h.projectIDForStage(uint(stageID)), EntityID: task.ID,
	})
	response.Created(c, task)
}

func (h *StageHandler) projectIDForStage(stageID uint) uint {
	projectID, err := h.stageService.ProjectIDForStage(stageID)
	if err != nil {
		return 0
	}
	return projectID
}
