package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Engine  *Engine
	History Repository
}

func NewHandler(engine *Engine, history Repository) *Handler {
	return &Handler{
		Engine:  engine,
		History: history,
	}
}

type enqueueRequest struct {
	Title    string   `json:"title" binding:"required"`
	Body     string   `json:"body" binding:"required"`
	Category Category `json:"category" binding:"required"`
}

// POST /api/v1/tenants/:tenantId/notifications
func (h *Handler) Enqueue(c *gin.Context) {
	tenantID := c.Param("tenantId")

	var input enqueueRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Engine.Enqueue(c.Request.Context(), tenantID, input.Title, input.Body, input.Category)
	if errors.Is(err, ErrUnknownCategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue notification"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "notification accepted",
		"pending": h.Engine.Pending(tenantID),
	})
}

// POST /api/v1/tenants/:tenantId/notifications/flush
func (h *Handler) Flush(c *gin.Context) {
	tenantID := c.Param("tenantId")
	h.Engine.Flush(c.Request.Context(), tenantID)
	c.JSON(http.StatusOK, gin.H{"message": "flushed"})
}

// GET /api/v1/tenants/:tenantId/notifications/history?limit=
func (h *Handler) ListHistory(c *gin.Context) {
	tenantID := c.Param("tenantId")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	items, err := h.History.ListByTenant(c.Request.Context(), tenantID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notification history"})
		return
	}

	c.JSON(http.StatusOK, items)
}
