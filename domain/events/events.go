package events

import "time"

// Source is the EventBridge source attribute for all events from this backend.
const Source = "bubblybatch.backend"

// DomainEvent is implemented by everything published to the event bus.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all domain events.
type BaseEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func newBase(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		ID:        aggregateID,
		Timestamp: time.Now().UTC(),
	}
}

// BatchCreated is published when a new fermentation batch is created.
type BatchCreated struct {
	BaseEvent
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Stage  string `json:"stage"`
}

// NewBatchCreated creates a BatchCreated event.
func NewBatchCreated(batchID, userID, name, stage string) BatchCreated {
	return BatchCreated{
		BaseEvent: newBase("batch.created", batchID),
		UserID:    userID,
		Name:      name,
		Stage:     stage,
	}
}

// BatchArchived is published when a batch is soft-deleted.
type BatchArchived struct {
	BaseEvent
	UserID string `json:"userId"`
}

// NewBatchArchived creates a BatchArchived event.
func NewBatchArchived(batchID, userID string) BatchArchived {
	return BatchArchived{
		BaseEvent: newBase("batch.archived", batchID),
		UserID:    userID,
	}
}

// EventLogged is published when a timeline entry is appended to a batch.
type EventLogged struct {
	BaseEvent
	UserID    string `json:"userId"`
	EntryType string `json:"entryType"`
}

// NewEventLogged creates an EventLogged event.
func NewEventLogged(batchID, userID, entryType string) EventLogged {
	return EventLogged{
		BaseEvent: newBase("batch.event_logged", batchID),
		UserID:    userID,
		EntryType: entryType,
	}
}

// ReminderScheduled is published when a reminder suggestion is confirmed.
type ReminderScheduled struct {
	BaseEvent
	UserID      string    `json:"userId"`
	BatchID     string    `json:"batchId"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// NewReminderScheduled creates a ReminderScheduled event.
func NewReminderScheduled(reminderID, userID, batchID string, scheduledAt time.Time) ReminderScheduled {
	return ReminderScheduled{
		BaseEvent:   newBase("reminder.scheduled", reminderID),
		UserID:      userID,
		BatchID:     batchID,
		ScheduledAt: scheduledAt,
	}
}

// ReminderCancelled is published when a pending reminder is cancelled.
type ReminderCancelled struct {
	BaseEvent
	UserID string `json:"userId"`
}

// NewReminderCancelled creates a ReminderCancelled event.
func NewReminderCancelled(reminderID, userID string) ReminderCancelled {
	return ReminderCancelled{
		BaseEvent: newBase("reminder.cancelled", reminderID),
		UserID:    userID,
	}
}

// DeviceRegistered is published when a push device registers, so downstream
// delivery can refresh its token cache.
type DeviceRegistered struct {
	BaseEvent
	UserID   string `json:"userId"`
	Platform string `json:"platform"`
}

// NewDeviceRegistered creates a DeviceRegistered event.
func NewDeviceRegistered(deviceID, userID, platform string) DeviceRegistered {
	return DeviceRegistered{
		BaseEvent: newBase("device.registered", deviceID),
		UserID:    userID,
		Platform:  platform,
	}
}
