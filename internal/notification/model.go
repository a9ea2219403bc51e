package notification

import (
	"errors"
	"time"
)

// Category is the kind of content a notification describes.
type Category string

const (
	CategoryAnnouncement  Category = "announcement"
	CategoryEvent         Category = "event"
	CategoryReminder      Category = "reminder"
	CategoryPrayerRequest Category = "prayer_request"
	CategoryBibleStudy    Category = "bible_study"
	CategoryMinistryTeam  Category = "ministry_team"
	CategoryTeamEvent     Category = "team_event"
)

// summaryOrder is the order categories appear in a batch summary.
var summaryOrder = []Category{
	CategoryAnnouncement,
	CategoryEvent,
	CategoryReminder,
	CategoryPrayerRequest,
	CategoryBibleStudy,
	CategoryMinistryTeam,
	CategoryTeamEvent,
}

func (c Category) Valid() bool {
	for _, known := range summaryOrder {
		if c == known {
			return true
		}
	}
	return false
}

// historyCategoryBatch marks a delivery log entry written for a summary push.
const historyCategoryBatch = "batch"

var ErrUnknownCategory = errors.New("unknown notification category")

type PendingNotification struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Category Category `json:"category"`
}

// History is one delivered push, written after the transport accepted it.
type History struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string    `gorm:"size:64;not null;index:idx_history_tenant_created" json:"churchId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Category  string    `gorm:"size:30;not null" json:"type"`
	IsBatched bool      `gorm:"default:false" json:"isBatched"`
	BatchSize *int      `json:"batchSize,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_history_tenant_created" json:"timestamp"`
}

func (History) TableName() string {
	return "notification_history"
}
