package auditlog

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	// LogAction records one operation. An empty ip means the run was not
	// triggered by an HTTP caller.
	LogAction(ctx context.Context, tenantID *string, action string, details map[string]interface{}, ip string, status string) error
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogAction(ctx context.Context, tenantID *string, action string, details map[string]interface{}, ip string, status string) error {
	raw := []byte("{}")
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			raw = b
		}
	}

	source := SourceAPI
	if ip == "" {
		source = SourceSystem
	}

	return s.repo.Create(ctx, &AuditLog{
		TenantID:  tenantID,
		Action:    action,
		Details:   datatypes.JSON(raw),
		Source:    source,
		IPAddress: ip,
		Status:    status,
	})
}

func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultPageSize
	case filter.Limit > maxPageSize:
		filter.Limit = maxPageSize
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

// StatusOf maps an operation error to an audit status.
func StatusOf(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}
