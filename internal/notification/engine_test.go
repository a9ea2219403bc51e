package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sharath018/church-notification-backend/internal/settings"
	"go.uber.org/zap"
)

const tenant = "grace-chapel"

type harness struct {
	engine   *Engine
	clock    *fakeClock
	pusher   *fakePusher
	history  *fakeHistory
	settings *fakeSettings
}

func newHarness(t *testing.T, s settings.Settings) *harness {
	t.Helper()
	h := &harness{
		clock:    newFakeClock(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)),
		pusher:   &fakePusher{},
		history:  &fakeHistory{},
		settings: &fakeSettings{s: s},
	}
	h.engine = NewEngine(h.settings, h.pusher, h.history, zap.NewNop(), WithClock(h.clock))
	return h
}

func batching(minutes int) settings.Settings {
	s := settings.Defaults()
	s.BatchNotifications = true
	s.BatchIntervalMinutes = minutes
	return s
}

func TestEnqueueSendsImmediatelyWithoutBatching(t *testing.T) {
	h := newHarness(t, settings.Defaults())
	ctx := context.Background()

	if err := h.engine.Enqueue(ctx, tenant, "New Event: Picnic", "Bring food", CategoryEvent); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	sent := h.pusher.calls()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	if sent[0].topic != "church_grace-chapel" || sent[0].title != "New Event: Picnic" {
		t.Fatalf("sent = %+v", sent[0])
	}

	logged := h.history.all()
	if len(logged) != 1 || logged[0].IsBatched || logged[0].Category != "event" {
		t.Fatalf("history = %+v", logged)
	}
	if h.clock.scheduled() != 0 {
		t.Fatal("no flush should be scheduled without batching")
	}
}

func TestEnqueueRejectsUnknownCategory(t *testing.T) {
	h := newHarness(t, settings.Defaults())
	err := h.engine.Enqueue(context.Background(), tenant, "t", "b", Category("sermon"))
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("Enqueue() = %v, want ErrUnknownCategory", err)
	}
	if len(h.pusher.calls()) != 0 {
		t.Fatal("nothing should be sent")
	}
}

func TestEnqueueDropsDuringQuietHours(t *testing.T) {
	s := batching(15)
	s.QuietHoursStart = intPtr(22)
	s.QuietHoursEnd = intPtr(6)
	h := newHarness(t, s)
	h.clock.Advance(11 * time.Hour) // 23:00

	if err := h.engine.Enqueue(context.Background(), tenant, "t", "b", CategoryAnnouncement); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if got := h.engine.Pending(tenant); got != 0 {
		t.Fatalf("Pending = %d, want 0", got)
	}
	h.clock.Advance(time.Hour)
	if len(h.pusher.calls()) != 0 || len(h.history.all()) != 0 {
		t.Fatal("suppressed notification must not be sent or logged")
	}
}

func TestQuietHoursUseEngineLocation(t *testing.T) {
	s := settings.Defaults()
	s.QuietHoursStart = intPtr(22)
	s.QuietHoursEnd = intPtr(6)
	h := newHarness(t, s)
	// 12:00 UTC is 23:00 at UTC+11.
	h.engine = NewEngine(h.settings, h.pusher, h.history, zap.NewNop(),
		WithClock(h.clock), WithLocation(time.FixedZone("UTC+11", 11*3600)))

	if err := h.engine.Enqueue(context.Background(), tenant, "t", "b", CategoryEvent); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if len(h.pusher.calls()) != 0 {
		t.Fatal("expected suppression in local quiet hours")
	}
}

type zoneMap map[string]*time.Location

func (z zoneMap) Location(_ context.Context, tenantID string) *time.Location {
	return z[tenantID]
}

func TestQuietHoursUseEachTenantsZone(t *testing.T) {
	s := settings.Defaults()
	s.QuietHoursStart = intPtr(22)
	s.QuietHoursEnd = intPtr(6)
	h := newHarness(t, s)
	// 12:00 UTC is 23:00 in Sydney (quiet) and 07:00 in New York (not quiet).
	zones := zoneMap{
		"sydney":   time.FixedZone("AEDT", 11*3600),
		"new-york": time.FixedZone("EST", -5*3600),
	}
	h.engine = NewEngine(h.settings, h.pusher, h.history, zap.NewNop(),
		WithClock(h.clock), WithZones(zones))
	ctx := context.Background()

	_ = h.engine.Enqueue(ctx, "sydney", "t", "b", CategoryEvent)
	_ = h.engine.Enqueue(ctx, "new-york", "t", "b", CategoryEvent)
	// No zone known: the engine location (UTC, 12:00) applies.
	_ = h.engine.Enqueue(ctx, "unknown", "t", "b", CategoryEvent)

	sent := h.pusher.calls()
	if len(sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(sent))
	}
	for _, c := range sent {
		if c.topic == TenantTopic("sydney") {
			t.Fatal("sydney is inside its quiet hours")
		}
	}
}

func TestBatchFlushSendsSummary(t *testing.T) {
	h := newHarness(t, batching(15))
	ctx := context.Background()

	for _, c := range []Category{CategoryAnnouncement, CategoryEvent, CategoryAnnouncement} {
		if err := h.engine.Enqueue(ctx, tenant, "title", "body", c); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	if got := h.engine.Pending(tenant); got != 3 {
		t.Fatalf("Pending = %d, want 3", got)
	}
	if h.clock.scheduled() != 1 {
		t.Fatalf("scheduled flushes = %d, want 1", h.clock.scheduled())
	}

	h.clock.Advance(14 * time.Minute)
	if len(h.pusher.calls()) != 0 {
		t.Fatal("flushed before the batch interval elapsed")
	}

	h.clock.Advance(time.Minute)
	sent := h.pusher.calls()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	if sent[0].title != "New Updates" || sent[0].body != "2 new announcements\n1 event update" {
		t.Fatalf("summary = %+v", sent[0])
	}
	if got := h.engine.Pending(tenant); got != 0 {
		t.Fatalf("Pending after flush = %d, want 0", got)
	}

	logged := h.history.all()
	if len(logged) != 1 || !logged[0].IsBatched || logged[0].BatchSize == nil || *logged[0].BatchSize != 3 {
		t.Fatalf("history = %+v", logged)
	}
}

func TestBatchOfOneIsSentUnchanged(t *testing.T) {
	h := newHarness(t, batching(5))

	if err := h.engine.Enqueue(context.Background(), tenant, "New Prayer Request", "Pray for Ann", CategoryPrayerRequest); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	h.clock.Advance(5 * time.Minute)

	sent := h.pusher.calls()
	if len(sent) != 1 || sent[0].title != "New Prayer Request" || sent[0].body != "Pray for Ann" {
		t.Fatalf("sent = %+v", sent)
	}
	logged := h.history.all()
	if len(logged) != 1 || logged[0].IsBatched || logged[0].Category != "prayer_request" {
		t.Fatalf("history = %+v", logged)
	}
}

func TestConcurrentEnqueueSchedulesOneFlush(t *testing.T) {
	h := newHarness(t, batching(15))
	ctx := context.Background()

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.engine.Enqueue(ctx, tenant, "title", "body", CategoryReminder); err != nil {
				t.Errorf("Enqueue: %v", err)
			}
		}()
	}
	wg.Wait()

	if h.clock.scheduled() != 1 {
		t.Fatalf("scheduled flushes = %d, want 1", h.clock.scheduled())
	}
	if got := h.engine.Pending(tenant); got != n {
		t.Fatalf("Pending = %d, want %d", got, n)
	}

	h.clock.Advance(15 * time.Minute)
	sent := h.pusher.calls()
	if len(sent) != 1 || sent[0].body != "64 event reminders" {
		t.Fatalf("sent = %+v", sent)
	}
}

func TestTenantsBatchIndependently(t *testing.T) {
	h := newHarness(t, batching(10))
	ctx := context.Background()

	_ = h.engine.Enqueue(ctx, "a", "t", "b", CategoryEvent)
	_ = h.engine.Enqueue(ctx, "b", "t", "b", CategoryEvent)
	_ = h.engine.Enqueue(ctx, "b", "t", "b", CategoryEvent)

	if h.clock.scheduled() != 2 {
		t.Fatalf("scheduled flushes = %d, want 2", h.clock.scheduled())
	}
	h.engine.Flush(ctx, "a")
	if h.engine.Pending("a") != 0 || h.engine.Pending("b") != 2 {
		t.Fatalf("pending a/b = %d/%d", h.engine.Pending("a"), h.engine.Pending("b"))
	}
}

func TestIntervalChangeDiscardsPendingBatch(t *testing.T) {
	h := newHarness(t, batching(15))
	ctx := context.Background()

	_ = h.engine.Enqueue(ctx, tenant, "t", "b", CategoryEvent)
	_ = h.engine.Enqueue(ctx, tenant, "t", "b", CategoryEvent)

	old := batching(15)
	updated := batching(30)
	h.settings.set(updated)
	h.engine.OnSettingsChanged(ctx, tenant, &old, &updated)

	if got := h.engine.Pending(tenant); got != 0 {
		t.Fatalf("Pending = %d, want 0", got)
	}

	// A new batch opened after the change must not be taken by the old timer.
	_ = h.engine.Enqueue(ctx, tenant, "late", "b", CategoryAnnouncement)
	h.clock.Advance(15 * time.Minute)
	if len(h.pusher.calls()) != 0 {
		t.Fatal("discarded batch must never be sent")
	}
	if got := h.engine.Pending(tenant); got != 1 {
		t.Fatalf("Pending = %d, want 1", got)
	}

	h.clock.Advance(15 * time.Minute)
	sent := h.pusher.calls()
	if len(sent) != 1 || sent[0].title != "late" {
		t.Fatalf("sent = %+v", sent)
	}
}

func TestSettingsChangeKeepsBatchWhenIntervalUnchanged(t *testing.T) {
	h := newHarness(t, batching(15))
	ctx := context.Background()
	_ = h.engine.Enqueue(ctx, tenant, "t", "b", CategoryEvent)

	old := batching(15)
	updated := batching(15)
	updated.EnableReminders = false
	h.engine.OnSettingsChanged(ctx, tenant, &old, &updated)
	if got := h.engine.Pending(tenant); got != 1 {
		t.Fatalf("Pending = %d, want 1", got)
	}

	h.engine.OnSettingsChanged(ctx, tenant, &updated, nil)
	if got := h.engine.Pending(tenant); got != 1 {
		t.Fatalf("Pending after delete = %d, want 1", got)
	}

	h.engine.OnSettingsChanged(ctx, tenant, nil, &updated)
	if got := h.engine.Pending(tenant); got != 0 {
		t.Fatalf("Pending after create = %d, want 0", got)
	}
}

func TestTransportFailureIsNotRetried(t *testing.T) {
	h := newHarness(t, batching(15))
	h.pusher.err = errors.New("unavailable")
	ctx := context.Background()

	_ = h.engine.Enqueue(ctx, tenant, "t", "b", CategoryEvent)
	_ = h.engine.Enqueue(ctx, tenant, "t", "b", CategoryAnnouncement)
	h.clock.Advance(15 * time.Minute)

	if len(h.pusher.calls()) != 1 {
		t.Fatalf("send attempts = %d, want 1", len(h.pusher.calls()))
	}
	if got := h.engine.Pending(tenant); got != 0 {
		t.Fatalf("failed batch re-queued: Pending = %d", got)
	}
	if len(h.history.all()) != 0 {
		t.Fatal("failed send must not be logged")
	}

	h.clock.Advance(time.Hour)
	if len(h.pusher.calls()) != 1 {
		t.Fatal("failed batch was retried")
	}
}

func TestFlushWithoutPendingIsNoop(t *testing.T) {
	h := newHarness(t, batching(15))
	h.engine.Flush(context.Background(), tenant)
	if len(h.pusher.calls()) != 0 {
		t.Fatal("Flush sent with nothing pending")
	}
}

func TestManualFlushCancelsScheduledFlush(t *testing.T) {
	h := newHarness(t, batching(15))
	ctx := context.Background()

	_ = h.engine.Enqueue(ctx, tenant, "t", "b", CategoryEvent)
	h.engine.Flush(ctx, tenant)
	h.clock.Advance(15 * time.Minute)

	if len(h.pusher.calls()) != 1 {
		t.Fatalf("sent = %d, want 1", len(h.pusher.calls()))
	}
}

func TestShutdownFlushesPendingAndStopsBatching(t *testing.T) {
	h := newHarness(t, batching(15))
	ctx := context.Background()

	_ = h.engine.Enqueue(ctx, "a", "t", "b", CategoryEvent)
	_ = h.engine.Enqueue(ctx, "b", "t", "b", CategoryEvent)
	_ = h.engine.Enqueue(ctx, "b", "t", "b", CategoryEvent)

	h.engine.Shutdown(ctx)
	if len(h.pusher.calls()) != 2 {
		t.Fatalf("sent = %d, want 2", len(h.pusher.calls()))
	}

	_ = h.engine.Enqueue(ctx, "a", "after", "b", CategoryEvent)
	if len(h.pusher.calls()) != 3 || h.engine.Pending("a") != 0 {
		t.Fatal("enqueue after shutdown should send immediately")
	}
}

func TestBufferAfterShutdownDeliversDirectly(t *testing.T) {
	h := newHarness(t, batching(15))
	ctx := context.Background()
	h.engine.Shutdown(ctx)

	// An Enqueue that passed its stopped check before Shutdown ends up here.
	h.engine.buffer("late", PendingNotification{Title: "t", Body: "b", Category: CategoryEvent}, 15*time.Minute)

	if len(h.pusher.calls()) != 1 {
		t.Fatalf("sent = %d, want 1", len(h.pusher.calls()))
	}
	if h.engine.Pending("late") != 0 || h.clock.scheduled() != 0 {
		t.Fatal("nothing should stay buffered after shutdown")
	}
}
