package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sharath018/church-notification-backend/internal/auditlog"
	"github.com/sharath018/church-notification-backend/internal/notification"
	"github.com/sharath018/church-notification-backend/internal/recurrence"
	"github.com/sharath018/church-notification-backend/internal/settings"
)

type fakeTenants []string

func (f fakeTenants) ListIDs(context.Context) ([]string, error) {
	return f, nil
}

type replaceCall struct {
	templateID string
	now        time.Time
	instances  []recurrence.Instance
}

type fakeStore struct {
	templates map[string][]Event
	events    map[string][]Event
	teams     map[string]*Team
	failFor   map[string]bool

	// rows holds materialized instances per template.
	rows     map[string][]Event
	seq      int
	replaced []replaceCall
	pruned   map[string]time.Time
	ranges   [][2]time.Time
}

func (f *fakeStore) ListTemplates(_ context.Context, tenantID string) ([]Event, error) {
	return f.templates[tenantID], nil
}

// ReplaceInstances mirrors the repository transaction: past rows of the
// template are deleted and the new rows inserted, or nothing changes at all.
func (f *fakeStore) ReplaceInstances(_ context.Context, templateID string, now time.Time, instances []recurrence.Instance) (int64, error) {
	var kept []Event
	for _, ev := range f.rows[templateID] {
		if !ev.StartTime.Before(now) {
			kept = append(kept, ev)
		}
	}
	deleted := int64(len(f.rows[templateID]) - len(kept))

	if f.failFor[templateID] {
		// Insert failed; the delete rolls back with it.
		return 0, errors.New("write conflict")
	}

	for _, inst := range instances {
		f.seq++
		kept = append(kept, fromInstance(fmt.Sprintf("row-%d", f.seq), inst))
	}
	if f.rows == nil {
		f.rows = make(map[string][]Event)
	}
	f.rows[templateID] = kept
	f.replaced = append(f.replaced, replaceCall{templateID, now, instances})
	return deleted, nil
}

func (f *fakeStore) EventsStartingBetween(_ context.Context, tenantID string, from, to time.Time) ([]Event, error) {
	f.ranges = append(f.ranges, [2]time.Time{from, to})
	var out []Event
	for _, ev := range f.events[tenantID] {
		if ev.StartTime.After(from) && !ev.StartTime.After(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) FindTeam(_ context.Context, _ string, teamID string) (*Team, error) {
	return f.teams[teamID], nil
}

func (f *fakeStore) Prune(_ context.Context, tenantID string, cutoff time.Time) (PruneResult, error) {
	if f.failFor[tenantID] {
		return PruneResult{}, errors.New("db down")
	}
	if f.pruned == nil {
		f.pruned = make(map[string]time.Time)
	}
	f.pruned[tenantID] = cutoff
	return PruneResult{Events: 1, Notifications: 3}, nil
}

type fakeAudit struct {
	actions  []string
	statuses []string
}

func (f *fakeAudit) LogAction(_ context.Context, _ *string, action string, _ map[string]interface{}, _ string, status string) error {
	f.actions = append(f.actions, action)
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeAudit) GetAuditLogs(context.Context, auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}

type queued struct {
	tenantID, title, body string
	category              notification.Category
}

type fakeNotifier struct {
	mu    sync.Mutex
	items []queued
}

func (f *fakeNotifier) Enqueue(_ context.Context, tenantID, title, body string, category notification.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, queued{tenantID, title, body, category})
	return nil
}

type fakeSettings map[string]settings.Settings

func (f fakeSettings) Get(_ context.Context, tenantID string) settings.Settings {
	if s, ok := f[tenantID]; ok {
		return s
	}
	return settings.Defaults()
}

func strPtr(s string) *string { return &s }
