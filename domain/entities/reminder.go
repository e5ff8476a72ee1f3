package entities

import (
	"time"

	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

// ReminderStatus is the delivery state of a reminder. Cancelled reminders are
// kept (status flip only); the external schedule is what gets removed.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderSent      ReminderStatus = "sent"
	ReminderCancelled ReminderStatus = "cancelled"
)

// Reminder is a scheduled one-time notification tied to a batch and user.
type Reminder struct {
	ReminderID   string         `json:"reminderId"`
	UserID       string         `json:"userId"`
	BatchID      string         `json:"batchId"`
	ScheduledAt  time.Time      `json:"scheduledAt"`
	Message      string         `json:"message"`
	Status       ReminderStatus `json:"status"`
	ScheduleName string         `json:"scheduleName,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// NewReminder creates a pending reminder with validation.
func NewReminder(reminderID, userID, batchID string, scheduledAt time.Time, message string) (*Reminder, error) {
	if reminderID == "" {
		return nil, pkgerrors.NewValidationError("reminderID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if batchID == "" {
		return nil, pkgerrors.NewValidationError("batchID cannot be empty")
	}
	if scheduledAt.IsZero() {
		return nil, pkgerrors.NewValidationError("scheduledAt cannot be empty")
	}
	if message == "" {
		return nil, pkgerrors.NewValidationError("message cannot be empty")
	}

	return &Reminder{
		ReminderID:  reminderID,
		UserID:      userID,
		BatchID:     batchID,
		ScheduledAt: scheduledAt.UTC(),
		Message:     message,
		Status:      ReminderPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
