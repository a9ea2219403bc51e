package event

import (
	"encoding/json"
	"time"

	"github.com/sharath018/church-notification-backend/internal/recurrence"
	"gorm.io/datatypes"
)

// ============================
// 🔷 GORM Event Model
// A nil TeamID marks a church-wide event; otherwise the event belongs to a
// ministry team.
type Event struct {
	ID                  string          `gorm:"primaryKey;size:36" json:"id"`
	TenantID            string          `gorm:"size:64;not null;index:idx_events_tenant_start" json:"churchId"`
	TeamID              *string         `gorm:"size:64;index" json:"teamId,omitempty"`
	Title               string          `gorm:"type:varchar(255);not null" json:"title"`
	Description         string          `gorm:"type:text" json:"description"`
	Location            string          `gorm:"type:text" json:"location"`
	StartTime           time.Time       `gorm:"not null;index:idx_events_tenant_start" json:"startTime"`
	EndTime             *time.Time      `json:"endTime,omitempty"`
	RecurrenceType      recurrence.Type `gorm:"type:varchar(20);default:'none';index" json:"recurrenceType"`
	RecurrenceInterval  int             `gorm:"default:1" json:"recurrenceInterval"`
	RecurrenceEndDate   *time.Time      `json:"recurrenceEndDate,omitempty"`
	WeeklyDays          datatypes.JSON  `gorm:"type:jsonb" json:"weeklyDays,omitempty"` // 0 = Sunday
	MonthlyDay          *int            `json:"monthlyDay,omitempty"`
	ParentEventID       *string         `gorm:"size:36;index" json:"parentEventId,omitempty"`
	IsRecurringInstance bool            `gorm:"default:false" json:"isRecurringInstance"`
	Attendees           datatypes.JSON  `gorm:"type:jsonb" json:"attendees,omitempty"` // user IDs
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsTemplate reports whether the event defines a recurrence rule to expand.
func (e *Event) IsTemplate() bool {
	return !e.IsRecurringInstance && e.RecurrenceType != "" && e.RecurrenceType != recurrence.None
}

func (e *Event) Template() recurrence.Template {
	t := recurrence.Template{
		ID:                 e.ID,
		TenantID:           e.TenantID,
		TeamID:             e.TeamID,
		Title:              e.Title,
		Description:        e.Description,
		Location:           e.Location,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		RecurrenceType:     e.RecurrenceType,
		RecurrenceInterval: e.RecurrenceInterval,
		RecurrenceEndDate:  e.RecurrenceEndDate,
		MonthlyDay:         e.MonthlyDay,
	}
	if len(e.WeeklyDays) > 0 {
		var days []int
		if err := json.Unmarshal(e.WeeklyDays, &days); err == nil {
			for _, d := range days {
				if d >= 0 && d <= 6 {
					t.WeeklyDays = append(t.WeeklyDays, time.Weekday(d))
				}
			}
		}
	}
	return t
}

// fromInstance builds the row stored for one materialized occurrence.
func fromInstance(id string, inst recurrence.Instance) Event {
	parent := inst.ParentEventID
	return Event{
		ID:                  id,
		TenantID:            inst.TenantID,
		TeamID:              inst.TeamID,
		Title:               inst.Title,
		Description:         inst.Description,
		Location:            inst.Location,
		StartTime:           inst.StartTime,
		EndTime:             inst.EndTime,
		RecurrenceType:      inst.RecurrenceType,
		RecurrenceInterval:  1,
		ParentEventID:       &parent,
		IsRecurringInstance: true,
	}
}

// Team is a ministry team inside a church.
type Team struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	TenantID   string    `gorm:"size:64;not null;index" json:"churchId"`
	Name       string    `gorm:"size:150;not null" json:"name"`
	LeaderName string    `gorm:"size:150" json:"leaderName"`
	IsActive   bool      `gorm:"default:true" json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Team) TableName() string {
	return "ministry_teams"
}

// User is the member profile notifications refer to by name.
type User struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	DisplayName string `gorm:"size:150" json:"displayName"`
}

func (User) TableName() string {
	return "users"
}
