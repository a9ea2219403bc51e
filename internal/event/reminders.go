package event

import (
	"context"
	"fmt"
	"time"

	"github.com/sharath018/church-notification-backend/internal/notification"
	"github.com/sharath018/church-notification-backend/internal/settings"
	"go.uber.org/zap"
)

type ReminderStore interface {
	EventsStartingBetween(ctx context.Context, tenantID string, from, to time.Time) ([]Event, error)
	FindTeam(ctx context.Context, tenantID, teamID string) (*Team, error)
}

type SettingsProvider interface {
	Get(ctx context.Context, tenantID string) settings.Settings
}

type Notifier interface {
	Enqueue(ctx context.Context, tenantID, title, body string, category notification.Category) error
}

// ZoneResolver returns the local time zone of a church.
type ZoneResolver interface {
	Location(ctx context.Context, tenantID string) *time.Location
}

// Reminders enqueues one reminder per configured lead time for every event
// whose start falls in the slice of time the current tick covers.
type Reminders struct {
	tenants  TenantLister
	store    ReminderStore
	settings SettingsProvider
	notifier Notifier
	tick     time.Duration
	loc      *time.Location
	zones    ZoneResolver
	logger   *zap.Logger
	now      func() time.Time
}

func NewReminders(tenants TenantLister, store ReminderStore, sp SettingsProvider, notifier Notifier, tick time.Duration, loc *time.Location, logger *zap.Logger) *Reminders {
	if tick <= 0 {
		tick = 15 * time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Reminders{
		tenants:  tenants,
		store:    store,
		settings: sp,
		notifier: notifier,
		tick:     tick,
		loc:      loc,
		logger:   logger.Named("reminders"),
		now:      time.Now,
	}
}

// WithZones formats reminder times in each church's own timezone instead of
// the default location.
func (r *Reminders) WithZones(z ZoneResolver) *Reminders {
	r.zones = z
	return r
}

func (r *Reminders) location(ctx context.Context, tenantID string) *time.Location {
	if r.zones != nil {
		if loc := r.zones.Location(ctx, tenantID); loc != nil {
			return loc
		}
	}
	return r.loc
}

// Run checks every church once and returns the number of reminders enqueued.
// For lead time h an event is due when it starts in (now+h-tick, now+h], so
// consecutive ticks never remind twice for the same h.
func (r *Reminders) Run(ctx context.Context) (int, error) {
	now := r.now()

	tenantIDs, err := r.tenants.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list churches: %w", err)
	}

	sent := 0
	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			break
		}
		s := r.settings.Get(ctx, tenantID)
		if !s.EnableReminders {
			continue
		}

		loc := r.location(ctx, tenantID)
		teams := make(map[string]*Team)
		for _, hours := range s.ReminderIntervalsHours {
			if hours <= 0 {
				continue
			}
			to := now.Add(time.Duration(hours) * time.Hour)
			events, err := r.store.EventsStartingBetween(ctx, tenantID, to.Add(-r.tick), to)
			if err != nil {
				r.logger.Error("❌ Failed to load upcoming events",
					zap.String("tenant_id", tenantID),
					zap.Int("hours", hours),
					zap.Error(err),
				)
				continue
			}

			for i := range events {
				ev := &events[i]
				prefix := "Event "
				if ev.TeamID != nil {
					team, ok := teams[*ev.TeamID]
					if !ok {
						team, err = r.store.FindTeam(ctx, tenantID, *ev.TeamID)
						if err != nil {
							r.logger.Warn("⚠️ Team lookup failed", zap.String("team_id", *ev.TeamID), zap.Error(err))
						}
						teams[*ev.TeamID] = team
					}
					if team == nil {
						continue
					}
					prefix = team.Name + "'s event "
				}

				title, body := reminderText(prefix, ev, hours, loc)
				if err := r.notifier.Enqueue(ctx, tenantID, title, body, notification.CategoryReminder); err != nil {
					r.logger.Warn("⚠️ Failed to enqueue reminder", zap.String("event_id", ev.ID), zap.Error(err))
					continue
				}
				sent++
			}
		}
	}

	r.logger.Info("⏰ Event reminders check completed", zap.Int("queued", sent))
	return sent, nil
}

func reminderText(prefix string, ev *Event, hours int, loc *time.Location) (string, string) {
	switch hours {
	case 1:
		return "Event Starting Soon", fmt.Sprintf("%s%q starts in 1 hour at %s", prefix, ev.Title, ev.Location)
	case 24:
		return "Event Reminder", fmt.Sprintf("%s%q is tomorrow at %s", prefix, ev.Title, ev.StartTime.In(loc).Format("3:04 PM"))
	default:
		return "Event Reminder", fmt.Sprintf("%s%q starts in %d hours at %s", prefix, ev.Title, hours, ev.Location)
	}
}
