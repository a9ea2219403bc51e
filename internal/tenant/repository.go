package tenant

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListIDs returns the IDs of every active church.
func (r *Repository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&Church{}).
		Where("is_active = ?", true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *Repository) List(ctx context.Context) ([]Church, error) {
	var churches []Church
	err := r.db.WithContext(ctx).Order("name").Find(&churches).Error
	return churches, err
}

// FindByID returns nil, nil when the church does not exist.
func (r *Repository) FindByID(ctx context.Context, id string) (*Church, error) {
	var church Church
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&church).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &church, nil
}

// Save creates the church or updates its name and timezone.
func (r *Repository) Save(ctx context.Context, church *Church) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "timezone", "updated_at"}),
		}).
		Create(church).Error
}
