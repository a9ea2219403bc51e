package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionSettingsUpdated = "NOTIFICATION_SETTINGS_UPDATED"
	ActionSettingsDeleted = "NOTIFICATION_SETTINGS_DELETED"
	ActionReconcileRun    = "RECURRING_EVENTS_RECONCILED"
	ActionCleanupRun      = "CLEANUP_RUN"

	StatusSuccess = "success"
	StatusFailure = "failure"

	// SourceAPI marks entries written on behalf of an HTTP caller; SourceSystem
	// marks scheduled runs.
	SourceAPI    = "api"
	SourceSystem = "system"
)

// AuditLog represents the audit_logs table
type AuditLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  *string        `gorm:"size:64;index" json:"tenant_id"` // nil for system-wide runs
	Action    string         `gorm:"size:100;not null;index" json:"action"`
	Details   datatypes.JSON `gorm:"type:jsonb" json:"details"`
	Source    string         `gorm:"size:16;not null;default:system;index" json:"source"`
	IPAddress string         `gorm:"size:45" json:"ip_address,omitempty"`
	Status    string         `gorm:"size:20;not null;index" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows an audit query. Zero values match everything.
type AuditLogFilter struct {
	TenantID *string    `json:"tenant_id"`
	Action   string     `json:"action"`
	Status   string     `json:"status"`
	Source   string     `json:"source"`
	FromDate *time.Time `json:"from_date"`
	ToDate   *time.Time `json:"to_date"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
}

// PaginatedAuditLogs represents paginated audit log response
type PaginatedAuditLogs struct {
	Data       []AuditLog `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
