package trigger

import (
	"bytes"
	"encoding/json"
	"errors"
)

type ChangeType string

const (
	Create ChangeType = "create"
	Update ChangeType = "update"
	Delete ChangeType = "delete"
)

const (
	ResourceAnnouncement         = "announcement"
	ResourceEvent                = "event"
	ResourcePrayerRequest        = "prayer_request"
	ResourceBibleStudyGroup      = "bible_study_group"
	ResourceMinistryTeam         = "ministry_team"
	ResourceTeamMember           = "team_member"
	ResourceTeamEvent            = "team_event"
	ResourceNotificationSettings = "notification_settings"
)

// ParamTeamID names the team a team-scoped document lives under.
const ParamTeamID = "teamId"

var ErrInvalidChange = errors.New("invalid change event")

// ChangeEvent describes one document write. Before is empty on create and
// After is empty on delete.
type ChangeEvent struct {
	ChangeType ChangeType        `json:"changeType"`
	Resource   string            `json:"resource"`
	TenantID   string            `json:"churchId"`
	Params     map[string]string `json:"params,omitempty"`
	Before     json.RawMessage   `json:"before,omitempty"`
	After      json.RawMessage   `json:"after,omitempty"`
}

func (e ChangeEvent) Validate() error {
	if e.TenantID == "" || e.Resource == "" {
		return errors.Join(ErrInvalidChange, errors.New("churchId and resource are required"))
	}
	switch e.ChangeType {
	case Create, Update, Delete:
		return nil
	}
	return errors.Join(ErrInvalidChange, errors.New("unknown changeType "+string(e.ChangeType)))
}

func (e ChangeEvent) Param(name string) string {
	return e.Params[name]
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// decode unmarshals a document snapshot. It reports false for an absent one.
func decode(raw json.RawMessage, v any) (bool, error) {
	if !present(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, errors.Join(ErrInvalidChange, err)
	}
	return true, nil
}

// text accepts a JSON string or any other scalar and keeps its printed form.
// Timestamps arrive either as ISO strings or as numbers depending on the
// writer.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = ""
		return nil
	}
	*t = text(bytes.TrimSpace(b))
	return nil
}
