package tenant

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Store is the church registry the handler reads and writes.
type Store interface {
	List(ctx context.Context) ([]Church, error)
	FindByID(ctx context.Context, id string) (*Church, error)
	Save(ctx context.Context, church *Church) error
}

type Handler struct {
	repo   Store
	logger *zap.Logger
}

func NewHandler(repo Store, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// GET /api/v1/tenants
func (h *Handler) List(c *gin.Context) {
	churches, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("❌ Failed to list churches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch churches"})
		return
	}
	c.JSON(http.StatusOK, churches)
}

// POST /api/v1/tenants
func (h *Handler) Register(c *gin.Context) {
	var input RegisterChurchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.repo.FindByID(c.Request.Context(), input.ID)
	if err != nil {
		h.logger.Error("❌ Failed to look up church", zap.String("tenant_id", input.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register church"})
		return
	}

	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown timezone " + input.Timezone})
			return
		}
	}

	church := &Church{
		ID:       input.ID,
		Name:     input.Name,
		Timezone: input.Timezone,
		IsActive: true,
	}
	if err := h.repo.Save(c.Request.Context(), church); err != nil {
		h.logger.Error("❌ Failed to register church", zap.String("tenant_id", input.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register church"})
		return
	}

	if existing != nil {
		h.logger.Info("⛪ Church updated", zap.String("tenant_id", church.ID))
		c.JSON(http.StatusOK, church)
		return
	}
	h.logger.Info("⛪ Church registered", zap.String("tenant_id", church.ID))
	c.JSON(http.StatusCreated, church)
}
