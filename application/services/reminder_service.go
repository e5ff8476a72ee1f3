package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/ports"
	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
	"github.com/0xtuytuy/bubblybatch-backend/domain/events"
	"github.com/0xtuytuy/bubblybatch-backend/domain/suggest"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/observability"
)

// ReminderService implements the reminder use cases: suggestion, confirmation
// with an external one-shot schedule, cancellation and delivery tracking.
type ReminderService struct {
	repo      *persistence.Repository
	scheduler ports.ReminderScheduler
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewReminderService creates the reminder service.
func NewReminderService(
	repo *persistence.Repository,
	scheduler ports.ReminderScheduler,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		repo:      repo,
		scheduler: scheduler,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// ConfirmReminderInput is a suggestion the user accepted, or a custom
// reminder time.
type ConfirmReminderInput struct {
	BatchID     string    `json:"batchId" validate:"required"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Message     string    `json:"message" validate:"required,max=500"`
}

// reminderPayload is the schedule target input, delivered when it fires.
type reminderPayload struct {
	ReminderID string `json:"reminderId"`
	UserID     string `json:"userId"`
	BatchID    string `json:"batchId"`
	Message    string `json:"message"`
}

// Suggest computes reminder suggestions for a batch from its stage, start
// time and fermentation target. Pure computation, nothing is persisted.
func (s *ReminderService) Suggest(ctx context.Context, userID, batchID string) ([]suggest.Suggestion, error) {
	batch, err := s.repo.GetBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, pkgerrors.NewNotFoundError("batch")
	}

	return suggest.Reminders(batch.Stage, batch.StartedAt, batch.TargetHours), nil
}

// Confirm persists a reminder and creates its one-shot delivery schedule.
func (s *ReminderService) Confirm(ctx context.Context, userID string, input ConfirmReminderInput) (*entities.Reminder, error) {
	batch, err := s.repo.GetBatch(ctx, userID, input.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, pkgerrors.NewNotFoundError("batch")
	}
	if !input.ScheduledAt.After(time.Now()) {
		return nil, pkgerrors.NewValidationError("scheduledAt must be in the future")
	}

	reminder, err := entities.NewReminder(
		uuid.New().String(),
		userID,
		input.BatchID,
		input.ScheduledAt,
		input.Message,
	)
	if err != nil {
		return nil, err
	}

	scheduleName, err := s.scheduler.Schedule(ctx, reminder.ReminderID, userID, reminder.ScheduledAt, reminderPayload{
		ReminderID: reminder.ReminderID,
		UserID:     userID,
		BatchID:    reminder.BatchID,
		Message:    reminder.Message,
	})
	if err != nil {
		return nil, pkgerrors.NewExternalError("scheduler", err)
	}
	reminder.ScheduleName = scheduleName

	if err := s.repo.SaveReminder(ctx, reminder); err != nil {
		// The schedule exists but the record does not; remove the schedule
		// so the user never gets a reminder they cannot see.
		if cancelErr := s.scheduler.Cancel(ctx, scheduleName); cancelErr != nil {
			s.logger.Error("Failed to roll back orphan schedule",
				zap.Error(cancelErr),
				zap.String("schedule", scheduleName),
			)
		}
		return nil, err
	}

	if pubErr := s.publisher.Publish(ctx, events.NewReminderScheduled(reminder.ReminderID, userID, reminder.BatchID, reminder.ScheduledAt)); pubErr != nil {
		s.logger.Error("Failed to publish event", zap.Error(pubErr))
	}
	s.metrics.Increment(ctx, "ReminderScheduled")

	s.logger.Info("Reminder confirmed",
		zap.String("reminderID", reminder.ReminderID),
		zap.String("batchID", reminder.BatchID),
		zap.Time("scheduledAt", reminder.ScheduledAt),
	)
	return reminder, nil
}

// Cancel cancels a pending reminder: status flip plus schedule deletion.
func (s *ReminderService) Cancel(ctx context.Context, userID, reminderID string) (*entities.Reminder, error) {
	reminder, err := s.repo.GetReminder(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, pkgerrors.NewNotFoundError("reminder")
	}
	if reminder.Status != entities.ReminderPending {
		return nil, pkgerrors.NewConflictError("reminder is not pending")
	}

	if reminder.ScheduleName != "" {
		if err := s.scheduler.Cancel(ctx, reminder.ScheduleName); err != nil {
			return nil, pkgerrors.NewExternalError("scheduler", err)
		}
	}

	updated, err := s.repo.SetReminderStatus(ctx, userID, reminderID, entities.ReminderCancelled)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, pkgerrors.NewNotFoundError("reminder")
	}

	if pubErr := s.publisher.Publish(ctx, events.NewReminderCancelled(reminderID, userID)); pubErr != nil {
		s.logger.Error("Failed to publish event", zap.Error(pubErr))
	}
	s.metrics.Increment(ctx, "ReminderCancelled")
	return updated, nil
}

// MarkSent records delivery of a pending reminder. Called by the delivery
// worker once the push has gone out.
func (s *ReminderService) MarkSent(ctx context.Context, userID, reminderID string) (*entities.Reminder, error) {
	reminder, err := s.repo.GetReminder(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, pkgerrors.NewNotFoundError("reminder")
	}
	if reminder.Status != entities.ReminderPending {
		return nil, pkgerrors.NewConflictError("reminder is not pending")
	}

	updated, err := s.repo.SetReminderStatus(ctx, userID, reminderID, entities.ReminderSent)
	if err != nil {
		return nil, err
	}
	s.metrics.Increment(ctx, "ReminderSent")
	return updated, nil
}

// List returns all of the user's reminders.
func (s *ReminderService) List(ctx context.Context, userID string) ([]*entities.Reminder, error) {
	return s.repo.ListReminders(ctx, userID)
}
