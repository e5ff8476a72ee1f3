package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence/store"
)

func newTestRepo() *Repository {
	return NewRepository(store.NewMemoryStore(), zap.NewNop())
}

func floatPtr(f float64) *float64 {
	return &f
}

func mustBatch(t *testing.T, userID, batchID string) *entities.Batch {
	t.Helper()
	batch, err := entities.NewBatch(batchID, userID, "morning kefir", entities.StageOneOpen, time.Now().UTC(), floatPtr(48))
	require.NoError(t, err)
	return batch
}

func TestRepository_GetOrCreateUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	created, err := repo.GetOrCreateUser(ctx, "u1", "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "u1@example.com", created.Email)

	again, err := repo.GetOrCreateUser(ctx, "u1", "changed@example.com")
	require.NoError(t, err)
	// Existing record wins; the email from the first sighting sticks.
	assert.Equal(t, "u1@example.com", again.Email)
	assert.Equal(t, created.CreatedAt.Unix(), again.CreatedAt.Unix())
}

func TestRepository_CreateAndGetBatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	batch := mustBatch(t, "u1", "b1")

	require.NoError(t, repo.CreateBatch(ctx, batch))

	got, err := repo.GetBatch(ctx, "u1", "b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "morning kefir", got.Name)
	assert.Equal(t, entities.StatusActive, got.Status)
	require.NotNil(t, got.TargetHours)
	assert.Equal(t, 48.0, *got.TargetHours)
}

func TestRepository_GetBatchMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	got, err := repo.GetBatch(ctx, "u1", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_GetBatchByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	require.NoError(t, repo.CreateBatch(ctx, mustBatch(t, "u1", "b1")))
	require.NoError(t, repo.CreateBatch(ctx, mustBatch(t, "u2", "b2")))

	got, err := repo.GetBatchByID(ctx, "b2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u2", got.UserID)

	missing, err := repo.GetBatchByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_ListBatchesWithFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	b1 := mustBatch(t, "u1", "b1")
	b2 := mustBatch(t, "u1", "b2")
	b2.Stage = entities.StageTwoBottled
	b3 := mustBatch(t, "u1", "b3")
	b3.Status = entities.StatusReady
	require.NoError(t, repo.CreateBatch(ctx, b1))
	require.NoError(t, repo.CreateBatch(ctx, b2))
	require.NoError(t, repo.CreateBatch(ctx, b3))
	require.NoError(t, repo.CreateBatch(ctx, mustBatch(t, "u2", "other")))

	all, err := repo.ListBatches(ctx, "u1", BatchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stage2, err := repo.ListBatches(ctx, "u1", BatchFilter{Stage: entities.StageTwoBottled})
	require.NoError(t, err)
	require.Len(t, stage2, 1)
	assert.Equal(t, "b2", stage2[0].BatchID)

	ready, err := repo.ListBatches(ctx, "u1", BatchFilter{Status: entities.StatusReady})
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, "b3", ready[0].BatchID)

	limited, err := repo.ListBatches(ctx, "u1", BatchFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRepository_UpdateBatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	require.NoError(t, repo.CreateBatch(ctx, mustBatch(t, "u1", "b1")))

	updated, err := repo.UpdateBatch(ctx, "u1", "b1", map[string]interface{}{
		"name":  "evening kefir",
		"notes": "slower this time",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "evening kefir", updated.Name)
	assert.Equal(t, "slower this time", updated.Notes)
	// Untouched fields survive.
	assert.Equal(t, entities.StageOneOpen, updated.Stage)
}

func TestRepository_UpdateBatchMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	updated, err := repo.UpdateBatch(ctx, "u1", "nope", map[string]interface{}{"name": "x"})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestRepository_ArchiveBatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	require.NoError(t, repo.CreateBatch(ctx, mustBatch(t, "u1", "b1")))

	archived, err := repo.ArchiveBatch(ctx, "u1", "b1")
	require.NoError(t, err)
	require.NotNil(t, archived)
	assert.True(t, archived.IsArchived())

	// Still readable after the soft delete.
	got, err := repo.GetBatch(ctx, "u1", "b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.StatusArchived, got.Status)
}

func TestRepository_EventsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)} {
		event, err := entities.NewBatchEvent("b1", entities.EventObservation, at)
		require.NoError(t, err)
		event.Note = []string{"first", "second", "third"}[i]
		require.NoError(t, repo.AppendEvent(ctx, event))
	}

	events, err := repo.ListEvents(ctx, "b1", 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "third", events[0].Note)
	assert.Equal(t, "first", events[2].Note)

	limited, err := repo.ListEvents(ctx, "b1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "third", limited[0].Note)
}

func TestRepository_EventsWithinSameSecondAreDistinct(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	// Sort keys carry millisecond precision, so entries logged within the
	// same second must not overwrite each other.
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{base, base.Add(300 * time.Millisecond)} {
		event, err := entities.NewBatchEvent("b1", entities.EventObservation, at)
		require.NoError(t, err)
		event.Note = []string{"earlier", "later"}[i]
		require.NoError(t, repo.AppendEvent(ctx, event))
	}

	events, err := repo.ListEvents(ctx, "b1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "later", events[0].Note)
	assert.Equal(t, "earlier", events[1].Note)
}

func TestRepository_ReminderLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	reminder, err := entities.NewReminder("r1", "u1", "b1", time.Now().Add(time.Hour), "check the fizz")
	require.NoError(t, err)
	reminder.ScheduleName = "reminder-r1"
	require.NoError(t, repo.SaveReminder(ctx, reminder))

	got, err := repo.GetReminder(ctx, "u1", "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.ReminderPending, got.Status)
	assert.Equal(t, "reminder-r1", got.ScheduleName)

	cancelled, err := repo.SetReminderStatus(ctx, "u1", "r1", entities.ReminderCancelled)
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	assert.Equal(t, entities.ReminderCancelled, cancelled.Status)

	list, err := repo.ListReminders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.ReminderCancelled, list[0].Status)
}

func TestRepository_SetReminderStatusMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	updated, err := repo.SetReminderStatus(ctx, "u1", "nope", entities.ReminderSent)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestRepository_DeviceLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	device, err := entities.NewDevice("d1", "u1", "ios", "token-1")
	require.NoError(t, err)
	require.NoError(t, repo.UpsertDevice(ctx, device))

	// Re-registering replaces the token.
	device2, err := entities.NewDevice("d1", "u1", "ios", "token-2")
	require.NoError(t, err)
	require.NoError(t, repo.UpsertDevice(ctx, device2))

	devices, err := repo.ListDevices(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "token-2", devices[0].PushToken)

	require.NoError(t, repo.DeleteDevice(ctx, "u1", "d1"))
	devices, err = repo.ListDevices(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, devices)
}
