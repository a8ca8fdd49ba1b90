// internal/handlers/settings/settings_handler.go
package settings

import (
	"net/http"

	"takataka-service/internal/domain/settings"
	"takataka-service/internal/middleware"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/settings"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService *service.Service
}

func NewSettingsHandler(settingsService *service.Service) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// ListSettings returns every setting.
func (h *SettingsHandler) ListSettings(c *gin.Context) {
	result, err := h.settingsService.List(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list settings", err)
		return
	}

	response.Success(c, http.StatusOK, "settings retrieved", result)
}

// GetSetting returns a single setting value by key.
func (h *SettingsHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		response.ValidationError(c, "setting key is required", nil)
		return
	}

	value, err := h.settingsService.Get(c.Request.Context(), key)
	if err != nil {
		response.FromError(c, "setting not found", err)
		return
	}

	response.Success(c, http.StatusOK, "setting retrieved", gin.H{
		"key":   key,
		"value": value,
	})
}

// UpsertSetting creates or updates a setting. Super admin only.
func (h *SettingsHandler) UpsertSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		response.ValidationError(c, "setting key is required", nil)
		return
	}

	var req settings.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.settingsService.Upsert(c.Request.Context(), key, &req, middleware.MustGetAdminID(c))
	if err != nil {
		response.FromError(c, "failed to save setting", err)
		return
	}

	response.Success(c, http.StatusOK, "setting saved", result)
}
