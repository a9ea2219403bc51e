package notification

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryWriter records delivered pushes.
type HistoryWriter interface {
	Create(ctx context.Context, h *History) error
}

type Repository interface {
	HistoryWriter
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]History, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, h *History) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]History, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > 200:
		limit = 200
	}
	var items []History
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
