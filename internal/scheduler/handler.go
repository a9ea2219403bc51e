package scheduler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// POST /api/v1/admin/jobs/:name/run
func (h *Handler) Run(c *gin.Context) {
	name := c.Param("name")
	if err := h.service.RunNow(c.Request.Context(), name); err != nil {
		if errors.Is(err, ErrUnknownJob) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": name, "status": "completed"})
}
