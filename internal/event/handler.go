package event

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Reconciler *Reconciler
}

func NewHandler(r *Reconciler) *Handler {
	return &Handler{Reconciler: r}
}

// POST /api/v1/admin/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	report, err := h.Reconciler.Reconcile(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
