package trigger

import (
	"context"
	"fmt"

	"github.com/sharath018/church-notification-backend/internal/event"
	"github.com/sharath018/church-notification-backend/internal/notification"
	"github.com/sharath018/church-notification-backend/internal/settings"
	"go.uber.org/zap"
)

type Notifier interface {
	Enqueue(ctx context.Context, tenantID, title, body string, category notification.Category) error
}

// Directory resolves the related records handlers mention by name.
type Directory interface {
	FindTeam(ctx context.Context, tenantID, teamID string) (*event.Team, error)
	UserDisplayName(ctx context.Context, userID string) (string, error)
}

type SettingsChanges interface {
	ApplyChange(ctx context.Context, tenantID string, before, after *settings.Record)
}

// Handlers translates content changes into notifications.
type Handlers struct {
	notifier Notifier
	dir      Directory
	settings SettingsChanges
	logger   *zap.Logger
}

func NewHandlers(notifier Notifier, dir Directory, sc SettingsChanges, logger *zap.Logger) *Handlers {
	return &Handlers{
		notifier: notifier,
		dir:      dir,
		settings: sc,
		logger:   logger.Named("trigger"),
	}
}

// Register installs every content route on d.
func (h *Handlers) Register(d *Dispatcher) {
	d.Handle(ResourceAnnouncement, h.announcementCreated, Create)
	d.Handle(ResourceAnnouncement, h.announcementUpdated, Update)
	d.Handle(ResourceEvent, h.eventCreated, Create)
	d.Handle(ResourceEvent, h.eventUpdated, Update)
	d.Handle(ResourcePrayerRequest, h.prayerRequestCreated, Create)
	d.Handle(ResourcePrayerRequest, h.prayerRequestAnswered, Update)
	d.Handle(ResourceBibleStudyGroup, h.bibleStudyCreated, Create)
	d.Handle(ResourceBibleStudyGroup, h.bibleStudyUpdated, Update)
	d.Handle(ResourceBibleStudyGroup, h.bibleStudyDeleted, Delete)
	d.Handle(ResourceMinistryTeam, h.teamCreated, Create)
	d.Handle(ResourceMinistryTeam, h.teamUpdated, Update)
	d.Handle(ResourceMinistryTeam, h.teamDeleted, Delete)
	d.Handle(ResourceTeamMember, h.memberJoined, Create)
	d.Handle(ResourceTeamMember, h.memberRoleChanged, Update)
	d.Handle(ResourceTeamMember, h.memberLeft, Delete)
	d.Handle(ResourceTeamEvent, h.teamEventCreated, Create)
	d.Handle(ResourceTeamEvent, h.teamEventUpdated, Update)
	d.Handle(ResourceTeamEvent, h.teamEventDeleted, Delete)
	d.Handle(ResourceNotificationSettings, h.settingsWritten, Create, Update, Delete)
}

type announcementDoc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type eventDoc struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   text   `json:"startTime"`
	Location    string `json:"location"`
}

type prayerRequestDoc struct {
	Title      string `json:"title"`
	AuthorName string `json:"authorName"`
	IsAnswered bool   `json:"isAnswered"`
}

type bibleStudyDoc struct {
	Name        string `json:"name"`
	MeetingTime text   `json:"meetingTime"`
	Location    string `json:"location"`
	IsActive    bool   `json:"isActive"`
}

type teamDoc struct {
	Name       string `json:"name"`
	LeaderName string `json:"leaderName"`
	IsActive   bool   `json:"isActive"`
}

type memberDoc struct {
	UserName string `json:"userName"`
	Role     string `json:"role"`
}

type teamEventDoc struct {
	Title     string   `json:"title"`
	StartTime text     `json:"startTime"`
	Location  string   `json:"location"`
	Attendees []string `json:"attendees"`
}

func (h *Handlers) enqueue(ctx context.Context, ev ChangeEvent, title, body string, c notification.Category) error {
	return h.notifier.Enqueue(ctx, ev.TenantID, title, body, c)
}

// change decodes the before and after snapshots an update carries.
func change[T any](ev ChangeEvent) (before, after T, err error) {
	if _, err = decode(ev.Before, &before); err != nil {
		return
	}
	_, err = decode(ev.After, &after)
	return
}

// snapshot decodes the document a create or delete carries.
func snapshot[T any](ev ChangeEvent) (T, error) {
	var doc T
	raw := ev.After
	if ev.ChangeType == Delete {
		raw = ev.Before
	}
	_, err := decode(raw, &doc)
	return doc, err
}

// team resolves the team a team-scoped change belongs to. A nil team means
// it no longer exists and the change produces no notification.
func (h *Handlers) team(ctx context.Context, ev ChangeEvent) (*event.Team, error) {
	teamID := ev.Param(ParamTeamID)
	if teamID == "" {
		return nil, nil
	}
	t, err := h.dir.FindTeam(ctx, ev.TenantID, teamID)
	if err != nil {
		return nil, fmt.Errorf("find team %s: %w", teamID, err)
	}
	if t == nil {
		h.logger.Info("team not found, skipping notification",
			zap.String("tenant_id", ev.TenantID),
			zap.String("team_id", teamID),
			zap.String("resource", ev.Resource),
		)
	}
	return t, nil
}

// ===========================
// 📢 Announcements & events

func (h *Handlers) announcementCreated(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[announcementDoc](ev)
	if err != nil {
		return err
	}
	return h.enqueue(ctx, ev, doc.Title, doc.Content, notification.CategoryAnnouncement)
}

func (h *Handlers) announcementUpdated(ctx context.Context, ev ChangeEvent) error {
	_, doc, err := change[announcementDoc](ev)
	if err != nil {
		return err
	}
	return h.enqueue(ctx, ev, "Announcement Updated: "+doc.Title, doc.Content, notification.CategoryAnnouncement)
}

func eventBody(doc eventDoc) string {
	return fmt.Sprintf("%s\nWhen: %s\nWhere: %s", doc.Description, doc.StartTime, doc.Location)
}

func (h *Handlers) eventCreated(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[eventDoc](ev)
	if err != nil {
		return err
	}
	return h.enqueue(ctx, ev, "New Event: "+doc.Title, eventBody(doc), notification.CategoryEvent)
}

func (h *Handlers) eventUpdated(ctx context.Context, ev ChangeEvent) error {
	_, doc, err := change[eventDoc](ev)
	if err != nil {
		return err
	}
	return h.enqueue(ctx, ev, "Event Updated: "+doc.Title, eventBody(doc), notification.CategoryEvent)
}

// ===========================
// 🙏 Prayer requests

func (h *Handlers) prayerRequestCreated(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[prayerRequestDoc](ev)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("%s has submitted a prayer request: %s", doc.AuthorName, doc.Title)
	return h.enqueue(ctx, ev, "New Prayer Request", body, notification.CategoryPrayerRequest)
}

func (h *Handlers) prayerRequestAnswered(ctx context.Context, ev ChangeEvent) error {
	before, after, err := change[prayerRequestDoc](ev)
	if err != nil {
		return err
	}
	if !after.IsAnswered || before.IsAnswered {
		return nil
	}
	body := "A prayer request has been marked as answered: " + after.Title
	return h.enqueue(ctx, ev, "Prayer Request Answered", body, notification.CategoryPrayerRequest)
}

// ===========================
// 📖 Bible study groups

func (h *Handlers) bibleStudyCreated(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[bibleStudyDoc](ev)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("A new Bible study group has been created: %s\nMeets: %s at %s", doc.Name, doc.MeetingTime, doc.Location)
	return h.enqueue(ctx, ev, "New Bible Study Group", body, notification.CategoryBibleStudy)
}

func (h *Handlers) bibleStudyUpdated(ctx context.Context, ev ChangeEvent) error {
	before, after, err := change[bibleStudyDoc](ev)
	if err != nil {
		return err
	}
	if before.IsActive == after.IsActive && before.MeetingTime == after.MeetingTime && before.Location == after.Location {
		return nil
	}

	body := fmt.Sprintf("Bible study group %q has been updated.", after.Name)
	if before.IsActive != after.IsActive {
		body = fmt.Sprintf("Bible study group %q has been %s.", after.Name, activation(after.IsActive))
	}
	return h.enqueue(ctx, ev, "Bible Study Group Updated", body, notification.CategoryBibleStudy)
}

func (h *Handlers) bibleStudyDeleted(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[bibleStudyDoc](ev)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("The Bible study group %q has been removed.", doc.Name)
	return h.enqueue(ctx, ev, "Bible Study Group Removed", body, notification.CategoryBibleStudy)
}

func activation(active bool) string {
	if active {
		return "activated"
	}
	return "deactivated"
}

// ===========================
// 👥 Ministry teams & members

func (h *Handlers) teamCreated(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[teamDoc](ev)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("A new ministry team has been created: %s\nLed by: %s", doc.Name, doc.LeaderName)
	return h.enqueue(ctx, ev, "New Ministry Team", body, notification.CategoryMinistryTeam)
}

func (h *Handlers) teamUpdated(ctx context.Context, ev ChangeEvent) error {
	before, after, err := change[teamDoc](ev)
	if err != nil {
		return err
	}

	var body string
	switch {
	case before.IsActive != after.IsActive:
		body = fmt.Sprintf("Ministry team %q has been %s.", after.Name, activation(after.IsActive))
	case before.LeaderName != after.LeaderName:
		body = fmt.Sprintf("%s is now leading the %q ministry team.", after.LeaderName, after.Name)
	default:
		return nil
	}
	return h.enqueue(ctx, ev, "Ministry Team Updated", body, notification.CategoryMinistryTeam)
}

func (h *Handlers) teamDeleted(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[teamDoc](ev)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("The ministry team %q has been removed.", doc.Name)
	return h.enqueue(ctx, ev, "Ministry Team Removed", body, notification.CategoryMinistryTeam)
}

func (h *Handlers) memberJoined(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[memberDoc](ev)
	if err != nil {
		return err
	}
	team, err := h.team(ctx, ev)
	if err != nil || team == nil {
		return err
	}
	body := fmt.Sprintf("%s has joined the %q team as %s", doc.UserName, team.Name, doc.Role)
	return h.enqueue(ctx, ev, "New Team Member", body, notification.CategoryMinistryTeam)
}

func (h *Handlers) memberRoleChanged(ctx context.Context, ev ChangeEvent) error {
	before, after, err := change[memberDoc](ev)
	if err != nil {
		return err
	}
	if before.Role == after.Role {
		return nil
	}
	team, err := h.team(ctx, ev)
	if err != nil || team == nil {
		return err
	}
	body := fmt.Sprintf("%s's role in %q has been updated to %s", after.UserName, team.Name, after.Role)
	return h.enqueue(ctx, ev, "Team Role Updated", body, notification.CategoryMinistryTeam)
}

func (h *Handlers) memberLeft(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[memberDoc](ev)
	if err != nil {
		return err
	}
	team, err := h.team(ctx, ev)
	if err != nil || team == nil {
		return err
	}
	body := fmt.Sprintf("%s has left the %q team", doc.UserName, team.Name)
	return h.enqueue(ctx, ev, "Team Member Left", body, notification.CategoryMinistryTeam)
}

// ===========================
// 📅 Team events

func (h *Handlers) teamEventCreated(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[teamEventDoc](ev)
	if err != nil {
		return err
	}
	team, err := h.team(ctx, ev)
	if err != nil || team == nil {
		return err
	}
	body := fmt.Sprintf("%s has a new event: %s\nWhen: %s\nWhere: %s", team.Name, doc.Title, doc.StartTime, doc.Location)
	return h.enqueue(ctx, ev, "New Team Event", body, notification.CategoryTeamEvent)
}

// teamEventUpdated covers both detail changes and attendance changes.
func (h *Handlers) teamEventUpdated(ctx context.Context, ev ChangeEvent) error {
	before, after, err := change[teamEventDoc](ev)
	if err != nil {
		return err
	}

	detailsChanged := before.StartTime != after.StartTime || before.Location != after.Location || before.Title != after.Title
	joined, left := diff(before.Attendees, after.Attendees)
	if !detailsChanged && len(joined) == 0 && len(left) == 0 {
		return nil
	}

	team, err := h.team(ctx, ev)
	if err != nil || team == nil {
		return err
	}

	if detailsChanged {
		body := fmt.Sprintf("%s's event %q has been updated.\nNew time: %s\nNew location: %s", team.Name, after.Title, after.StartTime, after.Location)
		if err := h.enqueue(ctx, ev, "Team Event Updated", body, notification.CategoryTeamEvent); err != nil {
			return err
		}
	}

	for _, userID := range joined {
		body := fmt.Sprintf("%s is attending %q (%s)", h.userName(ctx, userID), after.Title, team.Name)
		if err := h.enqueue(ctx, ev, "New Event Attendee", body, notification.CategoryTeamEvent); err != nil {
			return err
		}
	}
	for _, userID := range left {
		body := fmt.Sprintf("%s is no longer attending %q (%s)", h.userName(ctx, userID), after.Title, team.Name)
		if err := h.enqueue(ctx, ev, "Event Attendance Update", body, notification.CategoryTeamEvent); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) teamEventDeleted(ctx context.Context, ev ChangeEvent) error {
	doc, err := snapshot[teamEventDoc](ev)
	if err != nil {
		return err
	}
	team, err := h.team(ctx, ev)
	if err != nil || team == nil {
		return err
	}
	body := fmt.Sprintf("%s's event %q has been cancelled.", team.Name, doc.Title)
	return h.enqueue(ctx, ev, "Team Event Cancelled", body, notification.CategoryTeamEvent)
}

func (h *Handlers) userName(ctx context.Context, userID string) string {
	name, err := h.dir.UserDisplayName(ctx, userID)
	if err != nil {
		h.logger.Warn("⚠️ User lookup failed", zap.String("user_id", userID), zap.Error(err))
	}
	if name == "" {
		return "Someone"
	}
	return name
}

// diff returns the IDs present only in after and only in before, each in
// their original order.
func diff(before, after []string) (joined, left []string) {
	inBefore := make(map[string]bool, len(before))
	for _, id := range before {
		inBefore[id] = true
	}
	inAfter := make(map[string]bool, len(after))
	for _, id := range after {
		inAfter[id] = true
		if !inBefore[id] {
			joined = append(joined, id)
		}
	}
	for _, id := range before {
		if !inAfter[id] {
			left = append(left, id)
		}
	}
	return joined, left
}

// ===========================
// ⚙️ Notification settings

func (h *Handlers) settingsWritten(ctx context.Context, ev ChangeEvent) error {
	var before, after *settings.Record

	var b settings.Record
	ok, err := decode(ev.Before, &b)
	if err != nil {
		return err
	}
	if ok {
		b.TenantID = ev.TenantID
		before = &b
	}

	var a settings.Record
	ok, err = decode(ev.After, &a)
	if err != nil {
		return err
	}
	if ok {
		a.TenantID = ev.TenantID
		after = &a
	}

	h.settings.ApplyChange(ctx, ev.TenantID, before, after)
	return nil
}
