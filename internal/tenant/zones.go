package tenant

import (
	"context"
	"sync"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
)

type churchFinder interface {
	FindByID(ctx context.Context, id string) (*Church, error)
}

// Zones resolves the local time zone of each church from its registry entry.
// Churches without a zone, or with one that cannot be loaded, use fallback.
type Zones struct {
	churches churchFinder
	fallback *time.Location
	logger   *zap.Logger

	loaded sync.Map // zone name -> *time.Location
}

func NewZones(churches churchFinder, fallback *time.Location, logger *zap.Logger) *Zones {
	if fallback == nil {
		fallback = time.UTC
	}
	return &Zones{churches: churches, fallback: fallback, logger: logger.Named("zones")}
}

// Location never returns nil.
func (z *Zones) Location(ctx context.Context, tenantID string) *time.Location {
	church, err := z.churches.FindByID(ctx, tenantID)
	if err != nil {
		z.logger.Warn("⚠️ Church lookup failed, using default timezone",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return z.fallback
	}
	if church == nil || church.Timezone == "" {
		return z.fallback
	}

	if loc, ok := z.loaded.Load(church.Timezone); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(church.Timezone)
	if err != nil {
		z.logger.Warn("⚠️ Unknown church timezone, using default",
			zap.String("tenant_id", tenantID),
			zap.String("timezone", church.Timezone),
		)
		return z.fallback
	}
	z.loaded.Store(church.Timezone, loc)
	return loc
}
