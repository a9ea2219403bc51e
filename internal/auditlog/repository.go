package auditlog

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByFilter returns one page of entries, newest first, plus the total match count.
func (r *repository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&AuditLog{}).Scopes(
		equals("tenant_id", filter.TenantID),
		equals("status", strPtr(filter.Status)),
		equals("source", strPtr(filter.Source)),
		actionLike(filter.Action),
		createdBetween(filter.FromDate, filter.ToDate),
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []AuditLog{}, 0, nil
	}

	var logs []AuditLog
	err := query.Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&logs).Error
	return logs, total, err
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func equals(column string, v *string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v == nil {
			return db
		}
		return db.Where(column+" = ?", *v)
	}
}

// actionLike matches action names by substring so "SETTINGS" finds both writes.
func actionLike(action string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if action == "" {
			return db
		}
		return db.Where("action ILIKE ?", "%"+action+"%")
	}
}

func createdBetween(from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("created_at >= ?", *from)
		}
		if to != nil {
			db = db.Where("created_at < ?", *to)
		}
		return db
	}
}
