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

func newShareFixture(t *testing.T) (*ShareService, *persistence.Repository) {
	t.Helper()
	repo := newTestRepository()
	return NewShareService(repo, zap.NewNop()), repo
}

func createShareBatch(t *testing.T, repo *persistence.Repository, batchID string, public bool) *entities.Batch {
	t.Helper()
	batch, err := entities.NewBatch(batchID, "u1", "shared kefir", entities.StageOneOpen, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	batch.Public = public
	batch.PublicNote = "try this at home"
	batch.Notes = "secret scribbles"
	require.NoError(t, repo.CreateBatch(context.Background(), batch))
	return batch
}

func TestShareService_GetSharedBatch(t *testing.T) {
	ctx := context.Background()
	svc, repo := newShareFixture(t)
	createShareBatch(t, repo, "b1", true)

	view, err := svc.GetSharedBatch(ctx, "b1")

	require.NoError(t, err)
	assert.Equal(t, "b1", view.BatchID)
	assert.Equal(t, "try this at home", view.PublicNote)
}

func TestShareService_RedactsPrivateFields(t *testing.T) {
	ctx := context.Background()
	svc, repo := newShareFixture(t)
	createShareBatch(t, repo, "b1", true)

	view, err := svc.GetSharedBatch(ctx, "b1")

	require.NoError(t, err)
	// The public projection carries no owner identity or private notes.
	assert.NotContains(t, view.PublicNote, "secret")
	assert.Equal(t, "stage1_open", view.Stage)
}

func TestShareService_IncludesRecentTimeline(t *testing.T) {
	ctx := context.Background()
	svc, repo := newShareFixture(t)
	createShareBatch(t, repo, "b1", true)
	ev, err := entities.NewBatchEvent("b1", entities.EventObservation, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	ev.Note = "smells yeasty"
	require.NoError(t, repo.AppendEvent(ctx, ev))

	view, err := svc.GetSharedBatch(ctx, "b1")

	require.NoError(t, err)
	require.Len(t, view.Events, 1)
	assert.Equal(t, "observation", view.Events[0].Type)
	assert.Equal(t, ev.At, view.Events[0].At)
}

func TestShareService_PrivateBatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, repo := newShareFixture(t)
	createShareBatch(t, repo, "b1", false)

	_, err := svc.GetSharedBatch(ctx, "b1")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestShareService_ArchivedBatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, repo := newShareFixture(t)
	createShareBatch(t, repo, "b1", true)
	_, err := repo.ArchiveBatch(ctx, "u1", "b1")
	require.NoError(t, err)

	_, err = svc.GetSharedBatch(ctx, "b1")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestShareService_UnknownBatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newShareFixture(t)

	_, err := svc.GetSharedBatch(ctx, "nope")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestShareService_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	svc, repo := newShareFixture(t)
	createShareBatch(t, repo, "b1", true)

	first, err := svc.GetSharedBatch(ctx, "b1")
	require.NoError(t, err)

	// Rename the batch behind the cache's back; within the TTL the stale
	// view is served.
	_, err = repo.UpdateBatch(ctx, "u1", "b1", map[string]interface{}{"name": "renamed"})
	require.NoError(t, err)

	second, err := svc.GetSharedBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
}
