package settings

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultBatchIntervalMinutes = 15
)

var ErrInvalidSettings = errors.New("invalid notification settings")

// Record is the persisted per-tenant settings document. Every field is
// optional; unset fields resolve to defaults. JSON names match the documents
// written by the mobile admin screens.
type Record struct {
	TenantID             string         `gorm:"primaryKey;size:64" json:"-"`
	EnableReminders      *bool          `json:"enableReminders,omitempty"`
	ReminderIntervals    datatypes.JSON `gorm:"type:jsonb" json:"reminderIntervals,omitempty"` // hours before event
	BatchNotifications   *bool          `json:"batchNotifications,omitempty"`
	BatchIntervalMinutes *int           `gorm:"column:batch_interval_minutes" json:"batchInterval,omitempty"`
	QuietHoursStart      *int           `json:"quietHoursStart,omitempty"` // hour of day (0-23)
	QuietHoursEnd        *int           `json:"quietHoursEnd,omitempty"`
	UpdatedAt            time.Time      `json:"-"`
}

func (Record) TableName() string {
	return "notification_settings"
}

// Settings is the effective configuration after defaults are applied.
type Settings struct {
	EnableReminders        bool  `json:"enableReminders"`
	ReminderIntervalsHours []int `json:"reminderIntervals"`
	BatchNotifications     bool  `json:"batchNotifications"`
	BatchIntervalMinutes   int   `json:"batchInterval"`
	QuietHoursStart        *int  `json:"quietHoursStart,omitempty"`
	QuietHoursEnd          *int  `json:"quietHoursEnd,omitempty"`
}

func Defaults() Settings {
	return Settings{
		EnableReminders:        true,
		ReminderIntervalsHours: []int{1, 24},
		BatchNotifications:     false,
		BatchIntervalMinutes:   DefaultBatchIntervalMinutes,
	}
}

// Resolve merges a stored record over the defaults field by field.
// A nil record yields the defaults.
func Resolve(rec *Record) Settings {
	s := Defaults()
	if rec == nil {
		return s
	}
	if rec.EnableReminders != nil {
		s.EnableReminders = *rec.EnableReminders
	}
	if intervals := rec.Intervals(); intervals != nil {
		s.ReminderIntervalsHours = intervals
	}
	if rec.BatchNotifications != nil {
		s.BatchNotifications = *rec.BatchNotifications
	}
	if rec.BatchIntervalMinutes != nil && *rec.BatchIntervalMinutes > 0 {
		s.BatchIntervalMinutes = *rec.BatchIntervalMinutes
	}
	s.QuietHoursStart = copyInt(rec.QuietHoursStart)
	s.QuietHoursEnd = copyInt(rec.QuietHoursEnd)
	return s
}

// Intervals decodes the reminder interval list, or nil when unset or malformed.
func (r *Record) Intervals() []int {
	if len(r.ReminderIntervals) == 0 {
		return nil
	}
	var hours []int
	if err := json.Unmarshal(r.ReminderIntervals, &hours); err != nil {
		return nil
	}
	return hours
}

func (r *Record) Validate() error {
	if r.BatchIntervalMinutes != nil && *r.BatchIntervalMinutes <= 0 {
		return errors.Join(ErrInvalidSettings, errors.New("batchInterval must be positive"))
	}
	for _, h := range []*int{r.QuietHoursStart, r.QuietHoursEnd} {
		if h != nil && (*h < 0 || *h > 23) {
			return errors.Join(ErrInvalidSettings, errors.New("quiet hours must be between 0 and 23"))
		}
	}
	if len(r.ReminderIntervals) > 0 {
		var hours []int
		if err := json.Unmarshal(r.ReminderIntervals, &hours); err != nil {
			return errors.Join(ErrInvalidSettings, errors.New("reminderIntervals must be a list of hours"))
		}
		for _, h := range hours {
			if h <= 0 {
				return errors.Join(ErrInvalidSettings, errors.New("reminder intervals must be positive"))
			}
		}
	}
	return nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
