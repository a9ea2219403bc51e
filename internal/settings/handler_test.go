package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/church-notification-backend/internal/auditlog"
	"go.uber.org/zap"
)

type auditCall struct {
	action string
	status string
	ip     string
}

type fakeAudit struct {
	calls []auditCall
}

func (f *fakeAudit) LogAction(_ context.Context, _ *string, action string, _ map[string]interface{}, ip string, status string) error {
	f.calls = append(f.calls, auditCall{action: action, status: status, ip: ip})
	return nil
}

func (f *fakeAudit) GetAuditLogs(context.Context, auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

func newTestRouter(svc Service, audit auditlog.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, audit, zap.NewNop())
	r := gin.New()
	r.GET("/tenants/:tenantId/settings", h.Get)
	r.PUT("/tenants/:tenantId/settings", h.Update)
	r.DELETE("/tenants/:tenantId/settings", h.Delete)
	return r
}

func TestHandlerUpdateAndGet(t *testing.T) {
	repo := newFakeRepo()
	audit := &fakeAudit{}
	r := newTestRouter(NewService(repo, nil, 0, zap.NewNop()), audit)

	req := httptest.NewRequest(http.MethodPut, "/tenants/grace/settings",
		strings.NewReader(`{"batchNotifications":true,"batchInterval":30}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Real-Ip", "198.51.100.4")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %s", w.Code, w.Body.String())
	}
	if len(audit.calls) != 1 || audit.calls[0] != (auditCall{auditlog.ActionSettingsUpdated, auditlog.StatusSuccess, "198.51.100.4"}) {
		t.Fatalf("audit calls = %+v", audit.calls)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/grace/settings", nil))
	var got Settings
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.BatchNotifications || got.BatchIntervalMinutes != 30 || !got.EnableReminders {
		t.Fatalf("effective settings = %+v", got)
	}
}

func TestHandlerRejectsInvalidSettings(t *testing.T) {
	audit := &fakeAudit{}
	r := newTestRouter(NewService(newFakeRepo(), nil, 0, zap.NewNop()), audit)

	req := httptest.NewRequest(http.MethodPut, "/tenants/grace/settings", strings.NewReader(`{"quietHoursStart":25}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(audit.calls) != 1 || audit.calls[0].status != auditlog.StatusFailure {
		t.Fatalf("audit calls = %+v", audit.calls)
	}
}

func TestHandlerDeleteReturnsDefaults(t *testing.T) {
	repo := newFakeRepo()
	repo.records["grace"] = &Record{TenantID: "grace", BatchNotifications: boolPtr(true)}
	r := newTestRouter(NewService(repo, nil, 0, zap.NewNop()), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/tenants/grace/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, ok := repo.records["grace"]; ok {
		t.Fatal("record not deleted")
	}
}
