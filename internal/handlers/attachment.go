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

type AttachmentHandler struct {
	attachmentService *services.AttachmentService
	hub               *services.EventHub
}

func NewAttachmentHandler(db *gorm.DB, store services.ObjectStore, hub *services.EventHub) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: services.NewAttachmentService(db, store),
		hub:               hub,
	}
}

// Delete removes an attachment: the stored object first, then the row. When
// object removal fails the row stays and the attachment remains listed.
// DELETE /api/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid attachment id")
		return
	}

	projectID, _ := h.attachmentService.ProjectIDForAttachment(uint(id))

	advisorID := middleware.GetUserID(c)
	if err := h.attachmentService.Delete(uint(id), advisorID); err != nil {
		if errors.Is(err, services.ErrAttachmentNotFound) {
			response.NotFound(c, "attachment not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	h.hub.Publish(services.EntityEvent{
		Section: "attachments", Action: "deleted", ProjectID: projectID, EntityID: uint(id),
	})
	response.Success(c, gin.H{"message": "attachment deleted successfully"})
}
