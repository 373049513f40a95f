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

type MeetingHandler struct {
	meetingService *services.MeetingService
	hub            *services.EventHub
}

func NewMeetingHandler(db *gorm.DB, store services.ObjectStore, hub *services.EventHub) *MeetingHandler {
	projectService := services.NewProjectService(db, store)
	return &MeetingHandler{
		meetingService: services.NewMeetingService(db, projectService),
		hub:            hub,
	}
}

// List returns the meetings across all of the caller's projects, soonest
// first
// GET /api/meetings
func (h *MeetingHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	meetings, err := h.meetingService.ListForUser(userID, role)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, meetings)
}

// Create schedules a meeting on one of the advisor's projects
// POST /api/meetings
func (h *MeetingHandler) Create(c *gin.Context) {
	var req services.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	advisorID := middleware.GetUserID(c)
	meeting, err := h.meetingService.Create(&req, advisorID)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "meetings", Action: "created", ProjectID: meeting.ProjectID, EntityID: meeting.ID,
	})
	response.Created(c, meeting)
}

// Update updates a meeting
// PUT /api/meetings/:id
func (h *MeetingHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}

	var req services.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	advisorID := middleware.GetUserID(c)
	meeting, err := h.meetingService.Update(uint(id), advisorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrMeetingNotFound) {
			response.NotFound(c, "meeting not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "meetings", Action: "updated", ProjectID: meeting.ProjectID, EntityID: meeting.ID,
	})
	response.Success(c, meeting)
}

// Delete removes a meeting
// DELETE /api/meetings/:id
func (h *MeetingHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}

	meeting, _ := h.meetingService.GetByID(uint(id))

	advisorID := middleware.GetUserID(c)
	if err := h.meetingService.Delete(uint(id), advisorID); err != nil {
		if errors.Is(err, services.ErrMeetingNotFound) {
			response.NotFound(c, "meeting not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	var projectID uint
	if meeting != nil {
		projectID = meeting.ProjectID
	}
	h.hub.Publish(services.EntityEvent{
		Section: "meetings", Action: "deleted", ProjectID: projectID, EntityID: uint(id),
	})
	response.Success(c, gin.H{"message": "meeting deleted successfully"})
}
