package domain

import "time"

// ─── Notifications ──────────────────────────────────────────────────────────
// Events are recorded in the same transaction as the state change that
// produced them, then delivered to live observers after commit.

// EventKind names a notification.
type EventKind string

const (
	EventJourneyCreated   EventKind = "JourneyCreated"
	EventShowUp           EventKind = "ShowUp"
	EventJourneyCompleted EventKind = "JourneyCompleted"
)

// Event is a notification emitted by the journey engine.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	JourneyID JourneyID `json:"journey_id"`
	Creator   Identity  `json:"creator,omitempty"` // JourneyCreated
	Amount    int64     `json:"amount,omitempty"`  // ShowUp
	Note      string    `json:"note,omitempty"`    // ShowUp
	At        time.Time `json:"at"`
}
