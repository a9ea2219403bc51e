package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeRepo struct {
	created []AuditLog
	filter  AuditLogFilter
	total   int64
}

func (f *fakeRepo) Create(_ context.Context, log *AuditLog) error {
	f.created = append(f.created, *log)
	return nil
}

func (f *fakeRepo) GetByFilter(_ context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	f.filter = filter
	return nil, f.total, nil
}

func TestLogActionEncodesDetails(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	tenant := "grace"

	err := svc.LogAction(context.Background(), &tenant, ActionReconcileRun, map[string]interface{}{"created": 12}, "", StatusSuccess)
	if err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}

	var details map[string]int
	if err := json.Unmarshal(repo.created[0].Details, &details); err != nil {
		t.Fatalf("details not JSON: %v", err)
	}
	if details["created"] != 12 || *repo.created[0].TenantID != "grace" {
		t.Fatalf("entry = %+v", repo.created[0])
	}
	if repo.created[0].Source != SourceSystem {
		t.Fatalf("Source = %q, want %q", repo.created[0].Source, SourceSystem)
	}
}

func TestLogActionFromCallerIsAPISourced(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	tenant := "grace"

	if err := svc.LogAction(context.Background(), &tenant, ActionSettingsUpdated, nil, "203.0.113.7", StatusFailure); err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	got := repo.created[0]
	if got.Source != SourceAPI || got.IPAddress != "203.0.113.7" || string(got.Details) != "{}" {
		t.Fatalf("entry = %+v", got)
	}
}

func TestGetAuditLogsDefaultsPagination(t *testing.T) {
	repo := &fakeRepo{total: 41}
	svc := NewService(repo)

	got, err := svc.GetAuditLogs(context.Background(), AuditLogFilter{})
	if err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if repo.filter.Page != 1 || repo.filter.Limit != 20 {
		t.Fatalf("filter = %+v, want page 1 limit 20", repo.filter)
	}
	if got.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", got.TotalPages)
	}

	if _, err := svc.GetAuditLogs(context.Background(), AuditLogFilter{Page: 2, Limit: 500}); err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if repo.filter.Page != 2 || repo.filter.Limit != maxPageSize {
		t.Fatalf("filter = %+v, want page 2 limit %d", repo.filter, maxPageSize)
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(nil) != StatusSuccess || StatusOf(errors.New("x")) != StatusFailure {
		t.Fatal("StatusOf mapping is wrong")
	}
}
