package notification

import (
	"context"
	"sync"
	"time"

	"github.com/sharath018/church-notification-backend/internal/settings"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that came due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type sentPush struct {
	topic, title, body string
}

type fakePusher struct {
	mu   sync.Mutex
	sent []sentPush
	err  error
}

func (p *fakePusher) SendToTopic(_ context.Context, topic, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentPush{topic, title, body})
	return p.err
}

func (p *fakePusher) calls() []sentPush {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sentPush(nil), p.sent...)
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []History
}

func (h *fakeHistory) Create(_ context.Context, entry *History) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, *entry)
	return nil
}

func (h *fakeHistory) all() []History {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]History(nil), h.entries...)
}

type fakeSettings struct {
	mu sync.Mutex
	s  settings.Settings
}

func (f *fakeSettings) Get(context.Context, string) settings.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fakeSettings) set(s settings.Settings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.s = s
}

func intPtr(i int) *int { return &i }
