package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/services"
	"github.com/sisgic/backend/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// GetGroup returns all settings in a group. Secret values are masked.
// GET /api/system/config/:group
func (h *SystemConfigHandler) GetGroup(c *gin.Context) {
	group := c.Param("group")

	configs, err := h.configService.GetByGroup(group)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	values := gin.H{}
	for _, cfg := range configs {
		if secretKey(cfg.Key) && cfg.Value != "" {
			values[cfg.Key] = "******"
		} else {
			values[cfg.Key] = cfg.Value
		}
	}

	response.Success(c, values)
}

func secretKey(key string) bool {
	return strings.Contains(key, "password") || strings.Contains(key, "secret")
}

// UpdateGroup updates settings within a group. Keys outside the group are
// rejected; masked secret values are left untouched.
// PUT /api/system/config/:group
func (h *SystemConfigHandler) UpdateGroup(c *gin.Context) {
	group := c.Param("group")

	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// A masked value means the client did not change the secret
	for key, value := range values {
		if value == "******" {
			delete(values, key)
		}
	}

	if err := h.configService.UpdateGroup(group, values); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "configuration updated"})
}
