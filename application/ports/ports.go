// Package ports declares the outbound interfaces the application services
// depend on. Infrastructure provides the real implementations; tests provide
// fakes.
package ports

import (
	"context"
	"time"

	"github.com/0xtuytuy/bubblybatch-backend/domain/events"
)

// EventPublisher sends domain events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error
}

// ReminderScheduler manages one-shot delivery schedules for reminders.
type ReminderScheduler interface {
	// Schedule creates a one-shot schedule firing at the given time and
	// returns the schedule name for later cancellation.
	Schedule(ctx context.Context, reminderID, userID string, at time.Time, payload interface{}) (string, error)

	// Cancel deletes a schedule. Cancelling a schedule that already fired
	// or was already deleted is not an error.
	Cancel(ctx context.Context, scheduleName string) error
}

// MediaStore issues presigned URLs for photo upload and download.
type MediaStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
