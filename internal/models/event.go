// internal/models/event.go
package models

// EventStatus tracks a scheduled event through its lifecycle.
type EventStatus string

const (
	StatusPending   EventStatus = "pending"
	StatusSent      EventStatus = "sent"
	StatusCancelled EventStatus = "cancelled"
)

// validTransitions is the explicit state machine table: sent and
// cancelled are terminal, pending may move to either.
var validTransitions = map[EventStatus]map[EventStatus]bool{
	StatusPending:   {StatusSent: true, StatusCancelled: true},
	StatusSent:      {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the state machine permits moving
// from s to next. Same-state "transitions" are permitted no-ops.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	if s == next {
		return true
	}
	return validTransitions[s][next]
}

// Terminal reports whether no further transitions are defined out of s.
func (s EventStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// ScheduledEvent is one concrete (time, message) instance generated
// from a recipient's schedule policy. Recipient fields are snapshotted
// at generation time so later recipient edits do not affect queued
// events.
type ScheduledEvent struct {
	ID             string      `json:"id"`
	RecipientID    string      `json:"recipientId"`
	RecipientName  string      `json:"recipientName"`
	Platform       Platform    `json:"platform"`
	Identifier     string      `json:"identifier"`
	Message        string      `json:"message"`
	ScheduledTime  string      `json:"scheduledTime"` // RFC3339
	Status         EventStatus `json:"status"`
	NotificationID string      `json:"notificationId,omitempty"`
	CreatedAt      string      `json:"createdAt"`
	ExecutedAt     string      `json:"executedAt,omitempty"` // set on transition to sent
}
