package amqp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventType names a change to one wedding record, as "<entity>.<action>".
type EventType string

const (
	GuestCreated    EventType = "guest.created"
	GuestUpdated    EventType = "guest.updated"
	GuestDeleted    EventType = "guest.deleted"
	CategoryCreated EventType = "category.created"
	CategoryUpdated EventType = "category.updated"
	CategoryDeleted EventType = "category.deleted"
	ExpenseCreated  EventType = "expense.created"
	ExpenseUpdated  EventType = "expense.updated"
	ExpenseDeleted  EventType = "expense.deleted"
	TaskCreated     EventType = "task.created"
	TaskUpdated     EventType = "task.updated"
	TaskDeleted     EventType = "task.deleted"
	WeddingUpdated  EventType = "wedding.updated"
)

var knownEvents = map[EventType]bool{
	GuestCreated: true, GuestUpdated: true, GuestDeleted: true,
	CategoryCreated: true, CategoryUpdated: true, CategoryDeleted: true,
	ExpenseCreated: true, ExpenseUpdated: true, ExpenseDeleted: true,
	TaskCreated: true, TaskUpdated: true, TaskDeleted: true,
	WeddingUpdated: true,
}

// Entity returns the record kind, e.g. "guest".
func (t EventType) Entity() string {
	entity, _, _ := strings.Cut(string(t), ".")
	return entity
}

// Event is a lightweight change notification. The consumer reloads the
// wedding's records from storage rather than trusting a payload.
type Event struct {
	Type       EventType `json:"type"`
	WeddingID  string    `json:"wedding_id"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, weddingID, entityID string) Event {
	return Event{
		Type:       t,
		WeddingID:  weddingID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks an event body.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if !knownEvents[e.Type] {
		return Event{}, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.WeddingID == "" {
		return Event{}, fmt.Errorf("event %s without wedding_id", e.Type)
	}
	return e, nil
}
