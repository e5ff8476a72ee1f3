package entities

import (
	"time"

	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

// EventType classifies a timeline entry on a batch.
type EventType string

const (
	EventStageChange  EventType = "stage_change"
	EventObservation  EventType = "observation"
	EventPhotoAdded   EventType = "photo_added"
	EventStatusChange EventType = "status_change"
	EventNote         EventType = "note"
)

// Valid reports whether the event type is known.
func (t EventType) Valid() bool {
	switch t {
	case EventStageChange, EventObservation, EventPhotoAdded, EventStatusChange, EventNote:
		return true
	}
	return false
}

// BatchEvent is an immutable timeline entry scoped to a batch. Events are
// keyed by their ISO timestamp, so the natural sort order of the store is
// event-time order. They are never mutated or deleted.
type BatchEvent struct {
	BatchID  string    `json:"batchId"`
	Type     EventType `json:"type"`
	At       time.Time `json:"at"`
	Note     string    `json:"note,omitempty"`
	PhotoKey string    `json:"photoKey,omitempty"`
	From     string    `json:"from,omitempty"`
	To       string    `json:"to,omitempty"`
}

// NewBatchEvent creates a timeline entry with validation.
func NewBatchEvent(batchID string, eventType EventType, at time.Time) (*BatchEvent, error) {
	if batchID == "" {
		return nil, pkgerrors.NewValidationError("batchID cannot be empty")
	}
	if !eventType.Valid() {
		return nil, pkgerrors.NewValidationError("unknown event type: " + string(eventType))
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	return &BatchEvent{
		BatchID: batchID,
		Type:    eventType,
		At:      at.UTC(),
	}, nil
}
