package notification

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sharath018/church-notification-backend/internal/settings"
	"github.com/sharath018/church-notification-backend/metrics"
	"go.uber.org/zap"
)

// SettingsProvider resolves the effective settings for a tenant. It must not
// fail; an unavailable store resolves to defaults.
type SettingsProvider interface {
	Get(ctx context.Context, tenantID string) settings.Settings
}

// ZoneResolver returns the local time zone of a tenant.
type ZoneResolver interface {
	Location(ctx context.Context, tenantID string) *time.Location
}

// accumulator buffers one tenant's notifications until its flush. It is
// created holding its first notification and is closed once taken, after
// which no further appends land in it.
type accumulator struct {
	mu        sync.Mutex
	tenantID  string
	items     []PendingNotification
	createdAt time.Time
	timer     Timer
	closed    bool
}

func (a *accumulator) take() []PendingNotification {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
	items := a.items
	a.items = nil
	return items
}

// Engine applies quiet hours and batching to outgoing notifications and hands
// them to the push transport.
type Engine struct {
	settings SettingsProvider
	pusher   Pusher
	history  HistoryWriter
	clock    Clock
	loc      *time.Location
	zones    ZoneResolver
	logger   *zap.Logger

	pending  sync.Map // tenantID -> *accumulator
	stopped  atomic.Bool
	inflight sync.WaitGroup
}

type EngineOption func(*Engine)

func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithLocation sets the timezone quiet hours are evaluated in when no
// ZoneResolver is configured.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithZones evaluates quiet hours in each tenant's own timezone.
func WithZones(z ZoneResolver) EngineOption {
	return func(e *Engine) { e.zones = z }
}

func NewEngine(sp SettingsProvider, pusher Pusher, history HistoryWriter, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		settings: sp,
		pusher:   pusher,
		history:  history,
		clock:    SystemClock(),
		loc:      time.UTC,
		logger:   logger.Named("notification"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue accepts a notification for a tenant. It is dropped during quiet
// hours, sent immediately when batching is off and buffered otherwise.
// Delivery failures are logged, never returned.
func (e *Engine) Enqueue(ctx context.Context, tenantID, title, body string, category Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	s := e.settings.Get(ctx, tenantID)

	hour := e.clock.Now().In(e.location(ctx, tenantID)).Hour()
	if InQuietHours(s, hour) {
		metrics.NotificationsSuppressedTotal.WithLabelValues(string(category)).Inc()
		e.logger.Info("🌙 Skipping notification during quiet hours",
			zap.String("tenant_id", tenantID),
			zap.String("category", string(category)),
		)
		return nil
	}

	n := PendingNotification{Title: title, Body: body, Category: category}
	if !s.BatchNotifications || e.stopped.Load() {
		e.deliver(ctx, tenantID, []PendingNotification{n})
		return nil
	}

	e.buffer(tenantID, n, time.Duration(s.BatchIntervalMinutes)*time.Minute)
	return nil
}

func (e *Engine) location(ctx context.Context, tenantID string) *time.Location {
	if e.zones == nil {
		return e.loc
	}
	if loc := e.zones.Location(ctx, tenantID); loc != nil {
		return loc
	}
	return e.loc
}

func (e *Engine) buffer(tenantID string, n PendingNotification, interval time.Duration) {
	for {
		fresh := &accumulator{
			tenantID:  tenantID,
			items:     []PendingNotification{n},
			createdAt: e.clock.Now(),
		}
		// Held until the timer is attached so a concurrent take sees it.
		fresh.mu.Lock()
		actual, loaded := e.pending.LoadOrStore(tenantID, fresh)
		if !loaded {
			if e.stopped.Load() {
				// Shutdown began after Enqueue checked; its sweep may already
				// have passed this tenant.
				e.pending.CompareAndDelete(tenantID, fresh)
				fresh.closed = true
				items := fresh.items
				fresh.items = nil
				fresh.mu.Unlock()
				e.deliver(context.Background(), tenantID, items)
				return
			}
			fresh.timer = e.clock.AfterFunc(interval, func() { e.flushScheduled(fresh) })
			fresh.mu.Unlock()
			e.logger.Debug("🕒 Batch opened",
				zap.String("tenant_id", tenantID),
				zap.Duration("interval", interval),
			)
			return
		}
		fresh.mu.Unlock()

		acc := actual.(*accumulator)
		acc.mu.Lock()
		if acc.closed {
			// Taken between load and lock; start a new batch.
			acc.mu.Unlock()
			continue
		}
		acc.items = append(acc.items, n)
		acc.mu.Unlock()
		return
	}
}

// flushScheduled only takes the accumulator it was scheduled for, so a timer
// outliving a discarded batch does nothing.
func (e *Engine) flushScheduled(acc *accumulator) {
	if !e.pending.CompareAndDelete(acc.tenantID, acc) {
		return
	}
	e.inflight.Add(1)
	defer e.inflight.Done()
	e.deliver(context.Background(), acc.tenantID, acc.take())
}

// Flush sends whatever is buffered for tenantID now.
func (e *Engine) Flush(ctx context.Context, tenantID string) {
	v, ok := e.pending.LoadAndDelete(tenantID)
	if !ok {
		return
	}
	e.deliver(ctx, tenantID, v.(*accumulator).take())
}

// Pending returns the number of buffered notifications for tenantID.
func (e *Engine) Pending(tenantID string) int {
	v, ok := e.pending.Load(tenantID)
	if !ok {
		return 0
	}
	acc := v.(*accumulator)
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return len(acc.items)
}

// OnSettingsChanged discards a tenant's pending batch when its batch interval
// changed or its settings were first created. Nothing is sent.
func (e *Engine) OnSettingsChanged(_ context.Context, tenantID string, old, new *settings.Settings) {
	if new == nil {
		e.logger.Info("🗑️ Notification settings deleted", zap.String("tenant_id", tenantID))
		return
	}

	if old == nil || old.BatchIntervalMinutes != new.BatchIntervalMinutes {
		if v, ok := e.pending.LoadAndDelete(tenantID); ok {
			dropped := v.(*accumulator).take()
			metrics.BatchesDiscardedTotal.Inc()
			e.logger.Info("🧹 Discarded pending batch after interval change",
				zap.String("tenant_id", tenantID),
				zap.Int("dropped", len(dropped)),
			)
		}
	}

	e.logger.Info("⚙️ Notification settings updated",
		zap.String("tenant_id", tenantID),
		zap.Bool("batch", new.BatchNotifications),
		zap.Int("batch_interval", new.BatchIntervalMinutes),
	)
}

// Shutdown stops batching and flushes every pending accumulator once.
func (e *Engine) Shutdown(ctx context.Context) {
	e.stopped.Store(true)

	e.pending.Range(func(key, _ any) bool {
		e.Flush(ctx, key.(string))
		return true
	})

	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		e.logger.Warn("⚠️ Shutdown deadline reached with flushes in flight")
	}
}

func (e *Engine) deliver(ctx context.Context, tenantID string, items []PendingNotification) {
	switch len(items) {
	case 0:
		return
	case 1:
		n := items[0]
		e.send(ctx, tenantID, n.Title, n.Body, string(n.Category), nil)
	default:
		size := len(items)
		metrics.BatchesFlushedTotal.Inc()
		metrics.BatchSize.Observe(float64(size))
		e.send(ctx, tenantID, summaryTitle, summarize(items), historyCategoryBatch, &size)
	}
}

func (e *Engine) send(ctx context.Context, tenantID, title, body, category string, batchSize *int) {
	batched := batchSize != nil

	if err := e.pusher.SendToTopic(ctx, TenantTopic(tenantID), title, body); err != nil {
		metrics.NotificationsFailedTotal.WithLabelValues(category).Inc()
		e.logger.Error("❌ Error sending notification",
			zap.String("tenant_id", tenantID),
			zap.String("title", title),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsSentTotal.WithLabelValues(category, strconv.FormatBool(batched)).Inc()

	entry := &History{
		TenantID:  tenantID,
		Title:     title,
		Body:      body,
		Category:  category,
		IsBatched: batched,
		BatchSize: batchSize,
		CreatedAt: e.clock.Now(),
	}
	if err := e.history.Create(ctx, entry); err != nil {
		e.logger.Warn("⚠️ Failed to log notification",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
	}

	e.logger.Info("✅ Notification sent successfully",
		zap.String("tenant_id", tenantID),
		zap.String("title", title),
		zap.Bool("batched", batched),
	)
}
