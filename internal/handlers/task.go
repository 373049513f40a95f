package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/middleware"
	"github.com/sisgic/backend/internal/models"
	"github.com/sisgic/backend/internal/services"
	"github.com/sisgic/backend/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService       *services.TaskService
	attachmentService *services.AttachmentService
	hub               *services.EventHub
}

func NewTaskHandler(db *gorm.DB, store services.ObjectStore, hub *services.EventHub) *TaskHandler {
	return &TaskHandler{
		taskService:       services.NewTaskService(db, store),
		attachmentService: services.NewAttachmentService(db, store),
		hub:               hub,
	}
}

// Update updates a task's title or description
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	advisorID := middleware.GetUserID(c)
	task, err := h.taskService.Update(uint(id), advisorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	h.publish("updated", task.ID)
	response.Success(c, task)
}

// UpdateStatus moves a task between statuses. Available to the advisor and
// the assigned student alike.
// PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	task, err := h.taskService.UpdateStatus(uint(id), userID, role, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	h.publish("updated", task.ID)
	response.Success(c, gin.H{
		"task":  task,
		"badge": models.StatusBadge(task.Status),
	})
}

// Delete removes a task with its attachments
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	projectID, _ := h.taskService.ProjectIDForTask(uint(id))

	advisorID := middleware.GetUserID(c)
	if err := h.taskService.Delete(uint(id), advisorID); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "tasks", Action: "deleted", ProjectID: projectID, EntityID: uint(id),
	})
	response.Success(c, gin.H{"message": "task deleted successfully"})
}

// UploadAttachment stores a file and attaches it to a task. Available to the
// advisor and the assigned student alike.
// POST /api/tasks/:id/attachments
func (h *TaskHandler) UploadAttachment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer file.Close()

	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	attachment, err := h.attachmentService.Upload(
		uint(id), userID, role,
		fileHeader.Filename, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	h.publish("updated", uint(id))
	response.Created(c, attachment)
}

func (h *TaskHandler) publish(action string, taskID uint) {
	projectID, err := h.taskService.ProjectIDForTask(taskID)
	if err != nil {
		return
	}
	h.hub.Publish(services.EntityEvent{
		Section: "tasks", Action: action, ProjectID: projectID, EntityID: taskID,
	})
}
