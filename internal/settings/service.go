package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChangeListener observes settings writes. old is nil when the tenant had no
// stored settings; new is nil when they were deleted.
type ChangeListener func(ctx context.Context, tenantID string, old, new *Settings)

type Service interface {
	// Get never fails: an unavailable store resolves to defaults.
	Get(ctx context.Context, tenantID string) Settings
	Update(ctx context.Context, tenantID string, rec *Record) (Settings, error)
	Delete(ctx context.Context, tenantID string) error
	// ApplyChange handles a write made outside this service (document trigger).
	ApplyChange(ctx context.Context, tenantID string, before, after *Record)
	OnChange(l ChangeListener)
}

type service struct {
	repo     Repository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger

	mu        sync.RWMutex
	listeners []ChangeListener
}

// NewService wires the store. cache may be nil, in which case every read
// goes to the repository.
func NewService(repo Repository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.Named("settings"),
	}
}

func cacheKey(tenantID string) string {
	return "settings:notifications:" + tenantID
}

// absentMarker caches "tenant has no settings row" so defaults are not re-queried.
const absentMarker = "null"

func (s *service) Get(ctx context.Context, tenantID string) Settings {
	rec, err := s.load(ctx, tenantID)
	if err != nil {
		s.logger.Warn("⚠️ Settings unavailable, using defaults",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return Defaults()
	}
	return Resolve(rec)
}

func (s *service) load(ctx context.Context, tenantID string) (*Record, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(tenantID)).Bytes()
		switch {
		case err == nil:
			if string(raw) == absentMarker {
				return nil, nil
			}
			var rec Record
			if jsonErr := json.Unmarshal(raw, &rec); jsonErr == nil {
				rec.TenantID = tenantID
				return &rec, nil
			}
		case !errors.Is(err, redis.Nil):
			s.logger.Debug("settings cache read failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}

	rec, err := s.repo.Find(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load settings for %s: %w", tenantID, err)
	}
	s.store(ctx, tenantID, rec)
	return rec, nil
}

func (s *service) store(ctx context.Context, tenantID string, rec *Record) {
	if s.cache == nil {
		return
	}
	payload := []byte(absentMarker)
	if rec != nil {
		b, err := json.Marshal(rec)
		if err != nil {
			return
		}
		payload = b
	}
	if err := s.cache.Set(ctx, cacheKey(tenantID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("settings cache write failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}

func (s *service) invalidate(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(tenantID)).Err(); err != nil {
		s.logger.Warn("⚠️ Settings cache invalidation failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}

func (s *service) Update(ctx context.Context, tenantID string, rec *Record) (Settings, error) {
	if err := rec.Validate(); err != nil {
		return Settings{}, err
	}

	before, err := s.repo.Find(ctx, tenantID)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings for %s: %w", tenantID, err)
	}

	rec.TenantID = tenantID
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return Settings{}, fmt.Errorf("save settings for %s: %w", tenantID, err)
	}

	s.ApplyChange(ctx, tenantID, before, rec)
	return Resolve(rec), nil
}

func (s *service) Delete(ctx context.Context, tenantID string) error {
	before, err := s.repo.Find(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("load settings for %s: %w", tenantID, err)
	}
	if err := s.repo.Delete(ctx, tenantID); err != nil {
		return fmt.Errorf("delete settings for %s: %w", tenantID, err)
	}
	s.ApplyChange(ctx, tenantID, before, nil)
	return nil
}

func (s *service) ApplyChange(ctx context.Context, tenantID string, before, after *Record) {
	s.invalidate(ctx, tenantID)

	var oldSettings, newSettings *Settings
	if before != nil {
		resolved := Resolve(before)
		oldSettings = &resolved
	}
	if after != nil {
		resolved := Resolve(after)
		newSettings = &resolved
	}

	s.mu.RLock()
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, tenantID, oldSettings, newSettings)
	}
}

func (s *service) OnChange(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}
