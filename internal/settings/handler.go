package settings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/church-notification-backend/internal/auditlog"
	"github.com/sharath018/church-notification-backend/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	audit   auditlog.Service
	logger  *zap.Logger
}

func NewHandler(service Service, audit auditlog.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, audit: audit, logger: logger.Named("settings")}
}

// GET /api/v1/tenants/:tenantId/settings/notifications
func (h *Handler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Get(c.Request.Context(), c.Param("tenantId")))
}

// PUT /api/v1/tenants/:tenantId/settings/notifications
func (h *Handler) Update(c *gin.Context) {
	tenantID := c.Param("tenantId")

	var rec Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	effective, err := h.service.Update(c.Request.Context(), tenantID, &rec)
	h.record(c, tenantID, auditlog.ActionSettingsUpdated, err)
	if err != nil {
		if errors.Is(err, ErrInvalidSettings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("❌ Failed to save settings", zap.String("tenant_id", tenantID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, effective)
}

// DELETE /api/v1/tenants/:tenantId/settings/notifications
func (h *Handler) Delete(c *gin.Context) {
	tenantID := c.Param("tenantId")

	err := h.service.Delete(c.Request.Context(), tenantID)
	h.record(c, tenantID, auditlog.ActionSettingsDeleted, err)
	if err != nil {
		h.logger.Error("❌ Failed to delete settings", zap.String("tenant_id", tenantID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete settings"})
		return
	}

	c.JSON(http.StatusOK, Defaults())
}

func (h *Handler) record(c *gin.Context, tenantID, action string, err error) {
	if h.audit == nil {
		return
	}
	details := map[string]interface{}{}
	if err != nil {
		details["error"] = err.Error()
	}
	if auditErr := h.audit.LogAction(c.Request.Context(), &tenantID, action, details,
		middleware.GetIPFromContext(c), auditlog.StatusOf(err)); auditErr != nil {
		h.logger.Warn("⚠️ Failed to write audit log", zap.String("action", action), zap.Error(auditErr))
	}
}
