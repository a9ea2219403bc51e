package event

import (
	"context"
	"fmt"
	"time"

	"github.com/sharath018/church-notification-backend/internal/auditlog"
	"github.com/sharath018/church-notification-backend/internal/recurrence"
	"github.com/sharath018/church-notification-backend/metrics"
	"go.uber.org/zap"
)

// TenantLister enumerates the churches periodic jobs walk over.
type TenantLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type TemplateStore interface {
	ListTemplates(ctx context.Context, tenantID string) ([]Event, error)
	ReplaceInstances(ctx context.Context, templateID string, now time.Time, instances []recurrence.Instance) (int64, error)
}

// Report summarizes one reconciliation pass.
type Report struct {
	Tenants   int           `json:"tenants"`
	Templates int           `json:"templates"`
	Created   int           `json:"created"`
	Deleted   int64         `json:"deleted"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Reconciler keeps a rolling window of materialized instances for every
// recurring template.
type Reconciler struct {
	tenants TenantLister
	store   TemplateStore
	audit   auditlog.Service
	months  int
	logger  *zap.Logger
	now     func() time.Time
}

func NewReconciler(tenants TenantLister, store TemplateStore, audit auditlog.Service, months int, logger *zap.Logger) *Reconciler {
	if months <= 0 {
		months = 3
	}
	return &Reconciler{
		tenants: tenants,
		store:   store,
		audit:   audit,
		months:  months,
		logger:  logger.Named("reconciler"),
		now:     time.Now,
	}
}

// Reconcile expands every template over [now, now+months] and replaces its
// past instances with the expansion, one transaction per template. A failed
// template is counted and left for the next run; only a failure to list
// churches aborts the pass.
func (r *Reconciler) Reconcile(ctx context.Context) (Report, error) {
	now := r.now()
	report := Report{StartedAt: now}
	windowEnd := now.AddDate(0, r.months, 0)

	tenantIDs, err := r.tenants.ListIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("list churches: %w", err)
	}

	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			break
		}
		report.Tenants++

		templates, err := r.store.ListTemplates(ctx, tenantID)
		if err != nil {
			report.Failed++
			r.logger.Error("❌ Failed to load recurring events", zap.String("tenant_id", tenantID), zap.Error(err))
			continue
		}

		for i := range templates {
			tmpl := &templates[i]
			if !tmpl.IsTemplate() {
				continue
			}
			report.Templates++

			instances := recurrence.Expand(tmpl.Template(), now, windowEnd)
			deleted, err := r.store.ReplaceInstances(ctx, tmpl.ID, now, instances)
			if err != nil {
				report.Failed++
				metrics.ReconcileFailuresTotal.Inc()
				r.logger.Error("❌ Failed to materialize recurring event",
					zap.String("tenant_id", tenantID),
					zap.String("event_id", tmpl.ID),
					zap.Error(err),
				)
				continue
			}

			report.Created += len(instances)
			report.Deleted += deleted
			metrics.RecurringInstancesCreatedTotal.Add(float64(len(instances)))
			metrics.RecurringInstancesDeletedTotal.Add(float64(deleted))
		}
	}

	report.Duration = time.Since(now)
	r.logger.Info("🔁 Recurring events reconciled",
		zap.Int("tenants", report.Tenants),
		zap.Int("templates", report.Templates),
		zap.Int("created", report.Created),
		zap.Int64("deleted", report.Deleted),
		zap.Int("failed", report.Failed),
	)
	r.record(ctx, report)
	return report, nil
}

func (r *Reconciler) record(ctx context.Context, report Report) {
	if r.audit == nil {
		return
	}
	status := auditlog.StatusSuccess
	if report.Failed > 0 {
		status = auditlog.StatusFailure
	}
	details := map[string]interface{}{
		"tenants":   report.Tenants,
		"templates": report.Templates,
		"created":   report.Created,
		"deleted":   report.Deleted,
		"failed":    report.Failed,
	}
	if err := r.audit.LogAction(ctx, nil, auditlog.ActionReconcileRun, details, "", status); err != nil {
		r.logger.Warn("⚠️ Audit log error", zap.Error(err))
	}
}
