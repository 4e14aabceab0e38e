// Package events provides an in-process event bus for live updates.
// Services publish after a successful commit; the HTTP layer fans
// events out to SSE subscribers so board views can refresh.
package events

import "time"

// Type identifies what kind of entity changed.
type Type string

const (
	TypeProjectChanged  Type = "project_changed"
	TypeEpicChanged     Type = "epic_changed"
	TypeWorkItemChanged Type = "work_item_changed"
	TypeBoardChanged    Type = "board_changed"
	TypeStatusChanged   Type = "status_changed"
)

// Event describes a committed change to a tracked entity.
type Event struct {
	Type       Type      `json:"type"`
	ProjectID  int       `json:"project_id,omitempty"`
	EntityID   int       `json:"entity_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is implemented by the bus. Services treat a nil publisher
// as a no-op so wiring stays optional in tests and one-shot commands.
type Publisher interface {
	Publish(event Event)
}
