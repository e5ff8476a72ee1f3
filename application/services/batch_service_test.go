package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

func floatPtr(f float64) *float64 {
	return &f
}

func strPtr(s string) *string {
	return &s
}

func newBatchService() (*BatchService, *fakePublisher) {
	publisher := &fakePublisher{}
	svc := NewBatchService(newTestRepository(), publisher, &fakeMediaStore{}, noopMetrics(), zap.NewNop())
	return svc, publisher
}

func createTestBatch(t *testing.T, svc *BatchService, userID string) *entities.Batch {
	t.Helper()
	batch, err := svc.CreateBatch(context.Background(), userID, CreateBatchInput{
		Name:        "morning kefir",
		Stage:       string(entities.StageOneOpen),
		StartedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TargetHours: floatPtr(48),
	})
	require.NoError(t, err)
	return batch
}

func TestBatchService_CreateBatch(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newBatchService()

	batch, err := svc.CreateBatch(ctx, "u1", CreateBatchInput{
		Name:         "morning kefir",
		Stage:        string(entities.StageOneOpen),
		TargetHours:  floatPtr(48),
		TemperatureC: floatPtr(21.5),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, entities.StatusActive, batch.Status)
	require.NotNil(t, batch.TemperatureC)
	assert.Equal(t, 21.5, *batch.TemperatureC)
	assert.Equal(t, []string{"batch.created"}, publisher.types())
}

func TestBatchService_CreateBatchInvalidStage(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newBatchService()

	_, err := svc.CreateBatch(ctx, "u1", CreateBatchInput{
		Name:  "bad",
		Stage: "stage3_frozen",
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, publisher.types())
}

func TestBatchService_GetBatchNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()

	_, err := svc.GetBatch(ctx, "u1", "nope")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestBatchService_ListBatchesHidesArchived(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()

	keep := createTestBatch(t, svc, "u1")
	archive := createTestBatch(t, svc, "u1")
	require.NoError(t, svc.ArchiveBatch(ctx, "u1", archive.BatchID))

	visible, err := svc.ListBatches(ctx, "u1", persistence.BatchFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, keep.BatchID, visible[0].BatchID)

	// Asking for archived explicitly surfaces them.
	archived, err := svc.ListBatches(ctx, "u1", persistence.BatchFilter{Status: entities.StatusArchived})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, archive.BatchID, archived[0].BatchID)
}

func TestBatchService_UpdateBatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()
	batch := createTestBatch(t, svc, "u1")

	updated, err := svc.UpdateBatch(ctx, "u1", batch.BatchID, UpdateBatchInput{
		Name:   strPtr("evening kefir"),
		Status: strPtr(string(entities.StatusInFridge)),
	})

	require.NoError(t, err)
	assert.Equal(t, "evening kefir", updated.Name)
	assert.Equal(t, entities.StatusInFridge, updated.Status)
}

func TestBatchService_UpdateBatchRejectsEmptyAndUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()
	batch := createTestBatch(t, svc, "u1")

	_, err := svc.UpdateBatch(ctx, "u1", batch.BatchID, UpdateBatchInput{})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = svc.UpdateBatch(ctx, "u1", batch.BatchID, UpdateBatchInput{Status: strPtr("bogus")})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestBatchService_ArchiveBatch(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newBatchService()
	batch := createTestBatch(t, svc, "u1")

	require.NoError(t, svc.ArchiveBatch(ctx, "u1", batch.BatchID))
	assert.Contains(t, publisher.types(), "batch.archived")

	err := svc.ArchiveBatch(ctx, "u1", "nope")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestBatchService_LogEventSyncsBatch(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newBatchService()
	batch := createTestBatch(t, svc, "u1")

	_, err := svc.LogEvent(ctx, "u1", batch.BatchID, LogEventInput{
		Type: string(entities.EventStageChange),
		From: string(entities.StageOneOpen),
		To:   string(entities.StageTwoBottled),
	})
	require.NoError(t, err)

	got, err := svc.GetBatch(ctx, "u1", batch.BatchID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageTwoBottled, got.Stage)
	assert.Contains(t, publisher.types(), "batch.event_logged")
}

func TestBatchService_LogEventPhotoAttachesKey(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()
	batch := createTestBatch(t, svc, "u1")

	_, err := svc.LogEvent(ctx, "u1", batch.BatchID, LogEventInput{
		Type:     string(entities.EventPhotoAdded),
		PhotoKey: "photos/u1/b1/p1",
	})
	require.NoError(t, err)

	got, err := svc.GetBatch(ctx, "u1", batch.BatchID)
	require.NoError(t, err)
	assert.Equal(t, []string{"photos/u1/b1/p1"}, got.PhotoKeys)
}

func TestBatchService_ListEvents(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()
	batch := createTestBatch(t, svc, "u1")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := svc.LogEvent(ctx, "u1", batch.BatchID, LogEventInput{
			Type: string(entities.EventObservation),
			At:   base.Add(time.Duration(i) * time.Hour),
			Note: "check",
		})
		require.NoError(t, err)
	}

	events, err := svc.ListEvents(ctx, "u1", batch.BatchID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, base.Add(2*time.Hour), events[0].At)
}

func TestBatchService_LogEventUnknownBatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()

	_, err := svc.LogEvent(ctx, "u1", "nope", LogEventInput{
		Type: string(entities.EventNote),
		Note: "hi",
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestBatchService_PresignPhotoUpload(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()
	batch := createTestBatch(t, svc, "u1")

	upload, err := svc.PresignPhotoUpload(ctx, "u1", batch.BatchID, "image/jpeg")
	require.NoError(t, err)
	assert.Contains(t, upload.Key, "photos/u1/"+batch.BatchID+"/")
	assert.Contains(t, upload.UploadURL, upload.Key)
}

func TestBatchService_PresignPhotoDownloadRequiresAttachedKey(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBatchService()
	batch := createTestBatch(t, svc, "u1")

	_, err := svc.PresignPhotoDownload(ctx, "u1", batch.BatchID, "photos/u1/other")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = svc.LogEvent(ctx, "u1", batch.BatchID, LogEventInput{
		Type:     string(entities.EventPhotoAdded),
		PhotoKey: "photos/u1/k1",
	})
	require.NoError(t, err)

	url, err := svc.PresignPhotoDownload(ctx, "u1", batch.BatchID, "photos/u1/k1")
	require.NoError(t, err)
	assert.Contains(t, url, "photos/u1/k1")
}

func TestBatchService_PublisherFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	publisher := &fakePublisher{err: errFakeDown}
	svc := NewBatchService(newTestRepository(), publisher, &fakeMediaStore{}, noopMetrics(), zap.NewNop())

	batch, err := svc.CreateBatch(ctx, "u1", CreateBatchInput{
		Name:  "resilient",
		Stage: string(entities.StageOneOpen),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, batch.BatchID)
}
