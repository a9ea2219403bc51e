package tenant

import "time"

// Church is one tenant of the platform. Its ID scopes every other record and
// names its push topic.
type Church struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Timezone  string    `gorm:"size:64" json:"timezone,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Church) TableName() string {
	return "churches"
}

type RegisterChurchInput struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone"`
}
