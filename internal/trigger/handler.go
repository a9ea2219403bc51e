package trigger

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebhookHandler accepts change events over HTTP for writers that cannot
// publish to Kafka.
type WebhookHandler struct {
	dispatcher *Dispatcher
}

func NewWebhookHandler(d *Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: d}
}

// POST /api/v1/events/changes
func (h *WebhookHandler) Receive(c *gin.Context) {
	var ev ChangeEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.dispatcher.Dispatch(c.Request.Context(), ev)
	if errors.Is(err, ErrInvalidChange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process change"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "change accepted"})
}
