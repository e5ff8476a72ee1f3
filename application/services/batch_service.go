// Package services holds the application layer: use cases composed from the
// repository, the event bus and the other outbound ports.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/ports"
	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
	"github.com/0xtuytuy/bubblybatch-backend/domain/events"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/observability"
)

// BatchService implements the batch use cases.
type BatchService struct {
	repo      *persistence.Repository
	publisher ports.EventPublisher
	media     ports.MediaStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewBatchService creates the batch service.
func NewBatchService(
	repo *persistence.Repository,
	publisher ports.EventPublisher,
	media ports.MediaStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BatchService {
	return &BatchService{
		repo:      repo,
		publisher: publisher,
		media:     media,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateBatchInput carries the client-supplied fields of a new batch.
type CreateBatchInput struct {
	Name         string    `json:"name" validate:"required,max=120"`
	Stage        string    `json:"stage" validate:"required"`
	StartedAt    time.Time `json:"startedAt"`
	TargetHours  *float64  `json:"targetHours,omitempty" validate:"omitempty,gt=0"`
	TemperatureC *float64  `json:"temperatureC,omitempty"`
	SugarGrams   *float64  `json:"sugarGrams,omitempty" validate:"omitempty,gte=0"`
	Notes        string    `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateBatchInput carries the mutable fields of a batch. Nil means "leave
// unchanged".
type UpdateBatchInput struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Stage        *string  `json:"stage,omitempty"`
	Status       *string  `json:"status,omitempty"`
	TargetHours  *float64 `json:"targetHours,omitempty" validate:"omitempty,gt=0"`
	TemperatureC *float64 `json:"temperatureC,omitempty"`
	SugarGrams   *float64 `json:"sugarGrams,omitempty" validate:"omitempty,gte=0"`
	Notes        *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Public       *bool    `json:"public,omitempty"`
	PublicNote   *string  `json:"publicNote,omitempty" validate:"omitempty,max=500"`
}

// LogEventInput carries a new timeline entry.
type LogEventInput struct {
	Type     string    `json:"type" validate:"required"`
	At       time.Time `json:"at"`
	Note     string    `json:"note,omitempty" validate:"max=2000"`
	PhotoKey string    `json:"photoKey,omitempty"`
	From     string    `json:"from,omitempty"`
	To       string    `json:"to,omitempty"`
}

// CreateBatch creates a batch for the user and publishes BatchCreated.
func (s *BatchService) CreateBatch(ctx context.Context, userID string, input CreateBatchInput) (*entities.Batch, error) {
	batch, err := entities.NewBatch(
		uuid.New().String(),
		userID,
		input.Name,
		entities.Stage(input.Stage),
		input.StartedAt,
		input.TargetHours,
	)
	if err != nil {
		return nil, err
	}
	batch.TemperatureC = input.TemperatureC
	batch.SugarGrams = input.SugarGrams
	batch.Notes = input.Notes

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	s.publishAsync(ctx, events.NewBatchCreated(batch.BatchID, userID, batch.Name, string(batch.Stage)))
	s.metrics.Increment(ctx, "BatchCreated")

	s.logger.Info("Batch created",
		zap.String("batchID", batch.BatchID),
		zap.String("userID", userID),
		zap.String("stage", string(batch.Stage)),
	)
	return batch, nil
}

// GetBatch returns a user's batch or a not-found error.
func (s *BatchService) GetBatch(ctx context.Context, userID, batchID string) (*entities.Batch, error) {
	batch, err := s.repo.GetBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, pkgerrors.NewNotFoundError("batch")
	}
	return batch, nil
}

// ListBatches returns the user's batches. Archived batches are excluded
// unless the filter asks for them explicitly.
func (s *BatchService) ListBatches(ctx context.Context, userID string, filter persistence.BatchFilter) ([]*entities.Batch, error) {
	batches, err := s.repo.ListBatches(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" {
		return batches, nil
	}

	visible := batches[:0]
	for _, b := range batches {
		if !b.IsArchived() {
			visible = append(visible, b)
		}
	}
	return visible, nil
}

// UpdateBatch applies a partial update and returns the updated batch.
func (s *BatchService) UpdateBatch(ctx context.Context, userID, batchID string, input UpdateBatchInput) (*entities.Batch, error) {
	attrs := map[string]interface{}{}
	if input.Name != nil {
		attrs["name"] = *input.Name
	}
	if input.Stage != nil {
		if !entities.Stage(*input.Stage).Valid() {
			return nil, pkgerrors.NewValidationError("unknown stage: " + *input.Stage)
		}
		attrs["stage"] = *input.Stage
	}
	if input.Status != nil {
		if !entities.Status(*input.Status).Valid() {
			return nil, pkgerrors.NewValidationError("unknown status: " + *input.Status)
		}
		attrs["status"] = *input.Status
	}
	if input.TargetHours != nil {
		attrs["targetHours"] = *input.TargetHours
	}
	if input.TemperatureC != nil {
		attrs["temperatureC"] = *input.TemperatureC
	}
	if input.SugarGrams != nil {
		attrs["sugarGrams"] = *input.SugarGrams
	}
	if input.Notes != nil {
		attrs["notes"] = *input.Notes
	}
	if input.Public != nil {
		attrs["public"] = *input.Public
	}
	if input.PublicNote != nil {
		attrs["publicNote"] = *input.PublicNote
	}
	if len(attrs) == 0 {
		return nil, pkgerrors.NewValidationError("no updatable fields provided")
	}

	batch, err := s.repo.UpdateBatch(ctx, userID, batchID, attrs)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, pkgerrors.NewNotFoundError("batch")
	}
	return batch, nil
}

// ArchiveBatch soft-deletes a batch and publishes BatchArchived.
func (s *BatchService) ArchiveBatch(ctx context.Context, userID, batchID string) error {
	batch, err := s.repo.ArchiveBatch(ctx, userID, batchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return pkgerrors.NewNotFoundError("batch")
	}

	s.publishAsync(ctx, events.NewBatchArchived(batchID, userID))
	s.metrics.Increment(ctx, "BatchArchived")

	s.logger.Info("Batch archived",
		zap.String("batchID", batchID),
		zap.String("userID", userID),
	)
	return nil
}

// LogEvent appends a timeline entry to a batch. Stage and status change
// entries also update the batch record, and photo entries attach the photo
// key to the batch.
func (s *BatchService) LogEvent(ctx context.Context, userID, batchID string, input LogEventInput) (*entities.BatchEvent, error) {
	batch, err := s.GetBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}

	event, err := entities.NewBatchEvent(batchID, entities.EventType(input.Type), input.At)
	if err != nil {
		return nil, err
	}
	event.Note = input.Note
	event.PhotoKey = input.PhotoKey
	event.From = input.From
	event.To = input.To

	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return nil, err
	}

	if attrs := batchAttrsForEvent(batch, event); len(attrs) > 0 {
		if _, err := s.repo.UpdateBatch(ctx, userID, batchID, attrs); err != nil {
			s.logger.Error("Failed to sync batch from event",
				zap.Error(err),
				zap.String("batchID", batchID),
				zap.String("eventType", string(event.Type)),
			)
		}
	}

	s.publishAsync(ctx, events.NewEventLogged(batchID, userID, string(event.Type)))
	s.metrics.Increment(ctx, "EventLogged")
	return event, nil
}

// ListEvents returns a batch's timeline, most recent first.
func (s *BatchService) ListEvents(ctx context.Context, userID, batchID string, limit int32) ([]*entities.BatchEvent, error) {
	if _, err := s.GetBatch(ctx, userID, batchID); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, batchID, limit)
}

// PhotoUpload is the result of a presign request.
type PhotoUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

// PresignPhotoUpload issues a direct-upload URL for a new batch photo.
func (s *BatchService) PresignPhotoUpload(ctx context.Context, userID, batchID, contentType string) (*PhotoUpload, error) {
	if _, err := s.GetBatch(ctx, userID, batchID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("photos/%s/%s/%s", userID, batchID, uuid.New().String())
	url, err := s.media.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, pkgerrors.NewExternalError("media store", err)
	}
	return &PhotoUpload{Key: key, UploadURL: url}, nil
}

// PresignPhotoDownload issues a direct-download URL for one of the batch's
// photos.
func (s *BatchService) PresignPhotoDownload(ctx context.Context, userID, batchID, key string) (string, error) {
	batch, err := s.GetBatch(ctx, userID, batchID)
	if err != nil {
		return "", err
	}
	if !containsString(batch.PhotoKeys, key) {
		return "", pkgerrors.NewNotFoundError("photo")
	}

	url, err := s.media.PresignDownload(ctx, key)
	if err != nil {
		return "", pkgerrors.NewExternalError("media store", err)
	}
	return url, nil
}

// batchAttrsForEvent maps a timeline entry to the batch attributes it implies.
func batchAttrsForEvent(batch *entities.Batch, event *entities.BatchEvent) map[string]interface{} {
	switch event.Type {
	case entities.EventStageChange:
		if entities.Stage(event.To).Valid() {
			return map[string]interface{}{"stage": event.To}
		}
	case entities.EventStatusChange:
		if entities.Status(event.To).Valid() {
			return map[string]interface{}{"status": event.To}
		}
	case entities.EventPhotoAdded:
		if event.PhotoKey != "" {
			return map[string]interface{}{
				"photoKeys": append(append([]string{}, batch.PhotoKeys...), event.PhotoKey),
			}
		}
	}
	return nil
}

// publishAsync publishes an event and logs instead of failing the request if
// the bus is down.
func (s *BatchService) publishAsync(ctx context.Context, event events.DomainEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.Error(err),
			zap.String("eventType", event.EventType()),
		)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
