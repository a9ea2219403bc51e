package event

import (
	"context"
	"fmt"
	"time"

	"github.com/sharath018/church-notification-backend/internal/auditlog"
	"go.uber.org/zap"
)

type Pruner interface {
	Prune(ctx context.Context, tenantID string, cutoff time.Time) (PruneResult, error)
}

// Cleaner removes church events and delivery history past the retention
// period.
type Cleaner struct {
	tenants   TenantLister
	store     Pruner
	audit     auditlog.Service
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewCleaner(tenants TenantLister, store Pruner, audit auditlog.Service, retentionDays int, logger *zap.Logger) *Cleaner {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Cleaner{
		tenants:   tenants,
		store:     store,
		audit:     audit,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger.Named("cleanup"),
		now:       time.Now,
	}
}

func (c *Cleaner) Run(ctx context.Context) (PruneResult, error) {
	var total PruneResult
	cutoff := c.now().Add(-c.retention)

	tenantIDs, err := c.tenants.ListIDs(ctx)
	if err != nil {
		return total, fmt.Errorf("list churches: %w", err)
	}

	failed := 0
	for _, tenantID := range tenantIDs {
		res, err := c.store.Prune(ctx, tenantID, cutoff)
		if err != nil {
			failed++
			c.logger.Error("❌ Error cleaning up church", zap.String("tenant_id", tenantID), zap.Error(err))
			continue
		}
		if res.Events > 0 || res.Notifications > 0 {
			c.logger.Info("🧹 Deleted old records",
				zap.String("tenant_id", tenantID),
				zap.Int64("events", res.Events),
				zap.Int64("notifications", res.Notifications),
			)
		}
		total.Events += res.Events
		total.Notifications += res.Notifications
	}

	if c.audit != nil {
		status := auditlog.StatusSuccess
		if failed > 0 {
			status = auditlog.StatusFailure
		}
		details := map[string]interface{}{
			"events":        total.Events,
			"notifications": total.Notifications,
			"failed":        failed,
			"cutoff":        cutoff,
		}
		if err := c.audit.LogAction(ctx, nil, auditlog.ActionCleanupRun, details, "", status); err != nil {
			c.logger.Warn("⚠️ Audit log error", zap.Error(err))
		}
	}
	return total, nil
}
