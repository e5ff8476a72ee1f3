package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
	"github.com/0xtuytuy/bubblybatch-backend/domain/suggest"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

type reminderFixture struct {
	svc       *ReminderService
	repo      *persistence.Repository
	scheduler *fakeScheduler
	publisher *fakePublisher
}

func newReminderFixture() *reminderFixture {
	repo := newTestRepository()
	scheduler := &fakeScheduler{}
	publisher := &fakePublisher{}
	return &reminderFixture{
		svc:       NewReminderService(repo, scheduler, publisher, noopMetrics(), zap.NewNop()),
		repo:      repo,
		scheduler: scheduler,
		publisher: publisher,
	}
}

func (f *reminderFixture) createBatch(t *testing.T, userID string, stage entities.Stage, targetHours *float64) *entities.Batch {
	t.Helper()
	batch, err := entities.NewBatch("b-"+userID, userID, "test batch", stage, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), targetHours)
	require.NoError(t, err)
	require.NoError(t, f.repo.CreateBatch(context.Background(), batch))
	return batch
}

func TestReminderService_Suggest(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()
	batch := f.createBatch(t, "u1", entities.StageOneOpen, floatPtr(48))

	suggestions, err := f.svc.Suggest(ctx, "u1", batch.BatchID)

	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, suggest.TypeMidpointCheck, suggestions[0].Type)
	assert.Equal(t, "2024-01-02T00:00:00Z", suggestions[0].SuggestedAt)
}

func TestReminderService_SuggestUnknownBatch(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()

	_, err := f.svc.Suggest(ctx, "u1", "nope")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestReminderService_Confirm(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()
	batch := f.createBatch(t, "u1", entities.StageOneOpen, nil)

	reminder, err := f.svc.Confirm(ctx, "u1", ConfirmReminderInput{
		BatchID:     batch.BatchID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Message:     "strain the grains",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.ReminderPending, reminder.Status)
	assert.Equal(t, "reminder-"+reminder.ReminderID, reminder.ScheduleName)
	assert.Len(t, f.scheduler.scheduled, 1)
	assert.Contains(t, f.publisher.types(), "reminder.scheduled")

	saved, err := f.repo.GetReminder(ctx, "u1", reminder.ReminderID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, reminder.ScheduleName, saved.ScheduleName)
}

func TestReminderService_ConfirmRejectsPastTime(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()
	batch := f.createBatch(t, "u1", entities.StageOneOpen, nil)

	_, err := f.svc.Confirm(ctx, "u1", ConfirmReminderInput{
		BatchID:     batch.BatchID,
		ScheduledAt: time.Now().Add(-time.Hour),
		Message:     "too late",
	})

	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, f.scheduler.scheduled)
}

func TestReminderService_ConfirmSchedulerFailure(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()
	f.scheduler.scheduleErr = errFakeDown
	batch := f.createBatch(t, "u1", entities.StageOneOpen, nil)

	_, err := f.svc.Confirm(ctx, "u1", ConfirmReminderInput{
		BatchID:     batch.BatchID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Message:     "doomed",
	})

	require.Error(t, err)

	// Nothing persisted when the schedule could not be created.
	reminders, listErr := f.repo.ListReminders(ctx, "u1")
	require.NoError(t, listErr)
	assert.Empty(t, reminders)
}

func TestReminderService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()
	batch := f.createBatch(t, "u1", entities.StageOneOpen, nil)

	reminder, err := f.svc.Confirm(ctx, "u1", ConfirmReminderInput{
		BatchID:     batch.BatchID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Message:     "cancel me",
	})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, "u1", reminder.ReminderID)

	require.NoError(t, err)
	assert.Equal(t, entities.ReminderCancelled, cancelled.Status)
	assert.Equal(t, []string{reminder.ScheduleName}, f.scheduler.cancelled)
	assert.Contains(t, f.publisher.types(), "reminder.cancelled")
}

func TestReminderService_CancelNonPending(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()
	batch := f.createBatch(t, "u1", entities.StageOneOpen, nil)

	reminder, err := f.svc.Confirm(ctx, "u1", ConfirmReminderInput{
		BatchID:     batch.BatchID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Message:     "once only",
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, "u1", reminder.ReminderID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, "u1", reminder.ReminderID)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestReminderService_MarkSent(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()
	batch := f.createBatch(t, "u1", entities.StageOneOpen, nil)

	reminder, err := f.svc.Confirm(ctx, "u1", ConfirmReminderInput{
		BatchID:     batch.BatchID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Message:     "deliver me",
	})
	require.NoError(t, err)

	sent, err := f.svc.MarkSent(ctx, "u1", reminder.ReminderID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReminderSent, sent.Status)

	// Sent reminders can not be cancelled.
	_, err = f.svc.Cancel(ctx, "u1", reminder.ReminderID)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestReminderService_ListScopedToUser(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture()
	b1 := f.createBatch(t, "u1", entities.StageOneOpen, nil)
	b2 := f.createBatch(t, "u2", entities.StageOneOpen, nil)

	_, err := f.svc.Confirm(ctx, "u1", ConfirmReminderInput{
		BatchID:     b1.BatchID,
		ScheduledAt: time.Now().Add(time.Hour),
		Message:     "mine",
	})
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, "u2", ConfirmReminderInput{
		BatchID:     b2.BatchID,
		ScheduledAt: time.Now().Add(time.Hour),
		Message:     "theirs",
	})
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].Message)
}
