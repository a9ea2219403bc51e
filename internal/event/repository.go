package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/church-notification-backend/internal/notification"
	"github.com/sharath018/church-notification-backend/internal/recurrence"
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🔁 Recurring templates of one church, church-wide and team scoped
func (r *Repository) ListTemplates(ctx context.Context, tenantID string) ([]Event, error) {
	var events []Event
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND recurrence_type <> ? AND is_recurring_instance = ?", tenantID, recurrence.None, false).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

// ===========================
// ♻️ Delete past instances of a template and insert the new ones atomically
func (r *Repository) ReplaceInstances(ctx context.Context, templateID string, now time.Time, instances []recurrence.Instance) (int64, error) {
	var deleted int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("parent_event_id = ? AND start_time < ?", templateID, now).Delete(&Event{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected

		if len(instances) == 0 {
			return nil
		}
		rows := make([]Event, len(instances))
		for i, inst := range instances {
			rows[i] = fromInstance(uuid.NewString(), inst)
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ===========================
// 📆 Events of a church starting in (from, to]
func (r *Repository) EventsStartingBetween(ctx context.Context, tenantID string, from, to time.Time) ([]Event, error) {
	var events []Event
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND start_time > ? AND start_time <= ?", tenantID, from, to).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

// FindTeam returns nil, nil when the team does not exist.
func (r *Repository) FindTeam(ctx context.Context, tenantID, teamID string) (*Team, error) {
	var team Team
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, teamID).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// UserDisplayName returns "" when the user is unknown.
func (r *Repository) UserDisplayName(ctx context.Context, userID string) (string, error) {
	var user User
	err := r.DB.WithContext(ctx).Select("id", "display_name").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}

// ===========================
// 🧹 Prune old church events and delivery history of one church
// Recurring templates are kept since they still generate future instances.
func (r *Repository) Prune(ctx context.Context, tenantID string, cutoff time.Time) (PruneResult, error) {
	var result PruneResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("tenant_id = ? AND team_id IS NULL AND start_time < ?", tenantID, cutoff).
			Where("is_recurring_instance = ? OR recurrence_type = ?", true, recurrence.None).
			Delete(&Event{})
		if res.Error != nil {
			return res.Error
		}
		result.Events = res.RowsAffected

		res = tx.Where("tenant_id = ? AND created_at < ?", tenantID, cutoff).Delete(&notification.History{})
		if res.Error != nil {
			return res.Error
		}
		result.Notifications = res.RowsAffected
		return nil
	})
	return result, err
}

type PruneResult struct {
	Events        int64 `json:"events"`
	Notifications int64 `json:"notifications"`
}
