// Package persistence provides the entity-level wrappers over the generic
// store facade: named query shapes, not separate state. All key construction
// goes through the builders in the store package.
package persistence

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence/store"
)

// Repository exposes entity-level operations over any store.Store.
type Repository struct {
	store  store.Store
	logger *zap.Logger
}

// NewRepository creates a repository over the given store.
func NewRepository(s store.Store, logger *zap.Logger) *Repository {
	return &Repository{
		store:  s,
		logger: logger,
	}
}

// BatchFilter narrows a batch listing. Zero values mean "no filter".
type BatchFilter struct {
	Stage  entities.Stage
	Status entities.Status
	Limit  int32
}

// GetOrCreateUser returns the identity record for userID, creating it on
// first sight. Two concurrent first requests may both observe "absent" and
// both write; last write wins, which is fine for an idempotent record.
func (r *Repository) GetOrCreateUser(ctx context.Context, userID, email string) (*entities.User, error) {
	key := store.UserKey(userID)
	item, err := r.store.Get(ctx, key.PK, key.SK)
	if err != nil {
		return nil, err
	}
	if item != nil {
		var user entities.User
		if err := unmarshalItem(item, &user); err != nil {
			return nil, err
		}
		return &user, nil
	}

	user := entities.NewUser(userID, email)
	if err := r.putEntity(ctx, user, key, "", ""); err != nil {
		return nil, err
	}

	r.logger.Info("User record created", zap.String("userID", userID))
	return user, nil
}

// CreateBatch persists a new batch with its secondary-index pair.
func (r *Repository) CreateBatch(ctx context.Context, batch *entities.Batch) error {
	key := store.BatchKey(batch.UserID, batch.BatchID)
	gsi1pk, gsi1sk := store.BatchIndexKey(batch.UserID, batch.BatchID)
	return r.putEntity(ctx, batch, key, gsi1pk, gsi1sk)
}

// GetBatch returns a user's batch, or nil if absent.
func (r *Repository) GetBatch(ctx context.Context, userID, batchID string) (*entities.Batch, error) {
	key := store.BatchKey(userID, batchID)
	item, err := r.store.Get(ctx, key.PK, key.SK)
	if err != nil || item == nil {
		return nil, err
	}

	var batch entities.Batch
	if err := unmarshalItem(item, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatchByID looks a batch up by its ID alone via the secondary index,
// taking the first match. Used by the public share view.
func (r *Repository) GetBatchByID(ctx context.Context, batchID string) (*entities.Batch, error) {
	gsi1pk, _ := store.BatchIndexKey("", batchID)
	items, err := r.store.QueryIndex(ctx, store.Query{
		PartitionKey: gsi1pk,
		Sort:         store.BeginsWith(store.UserPrefix),
		Limit:        1,
	})
	if err != nil || len(items) == 0 {
		return nil, err
	}

	var batch entities.Batch
	if err := unmarshalItem(items[0], &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListBatches returns a user's batches, optionally filtered by stage and
// status. Filtering happens after the prefix query; the limit applies to the
// filtered result.
func (r *Repository) ListBatches(ctx context.Context, userID string, filter BatchFilter) ([]*entities.Batch, error) {
	key := store.UserKey(userID)
	items, err := r.store.Query(ctx, store.Query{
		PartitionKey: key.PK,
		Sort:         store.BeginsWith(store.BatchPrefix),
	})
	if err != nil {
		return nil, err
	}

	batches := make([]*entities.Batch, 0, len(items))
	for _, item := range items {
		var batch entities.Batch
		if err := unmarshalItem(item, &batch); err != nil {
			r.logger.Warn("Failed to parse batch item, skipping", zap.Error(err))
			continue
		}
		if filter.Stage != "" && batch.Stage != filter.Stage {
			continue
		}
		if filter.Status != "" && batch.Status != filter.Status {
			continue
		}
		batches = append(batches, &batch)
		if filter.Limit > 0 && int32(len(batches)) >= filter.Limit {
			break
		}
	}
	return batches, nil
}

// UpdateBatch merges a partial attribute set into a batch and returns the
// updated record, or nil if the batch does not exist.
func (r *Repository) UpdateBatch(ctx context.Context, userID, batchID string, attrs map[string]interface{}) (*entities.Batch, error) {
	key := store.BatchKey(userID, batchID)
	item, err := r.store.Update(ctx, key.PK, key.SK, attrs)
	if err != nil || item == nil {
		return nil, err
	}

	var batch entities.Batch
	if err := unmarshalItem(item, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ArchiveBatch soft-deletes a batch. Returns the archived record, or nil if
// the batch does not exist.
func (r *Repository) ArchiveBatch(ctx context.Context, userID, batchID string) (*entities.Batch, error) {
	return r.UpdateBatch(ctx, userID, batchID, map[string]interface{}{
		"status": string(entities.StatusArchived),
	})
}

// AppendEvent writes an immutable timeline entry for a batch.
func (r *Repository) AppendEvent(ctx context.Context, event *entities.BatchEvent) error {
	key := store.EventKey(event.BatchID, store.FormatISO(event.At))
	return r.putEntity(ctx, event, key, "", "")
}

// ListEvents returns a batch's timeline entries most-recent-first.
func (r *Repository) ListEvents(ctx context.Context, batchID string, limit int32) ([]*entities.BatchEvent, error) {
	key := store.EventKey(batchID, "")
	items, err := r.store.Query(ctx, store.Query{
		PartitionKey: key.PK,
		Sort:         store.BeginsWith(store.EventPrefix),
		Limit:        limit,
		Descending:   true,
	})
	if err != nil {
		return nil, err
	}

	events := make([]*entities.BatchEvent, 0, len(items))
	for _, item := range items {
		var event entities.BatchEvent
		if err := unmarshalItem(item, &event); err != nil {
			r.logger.Warn("Failed to parse event item, skipping", zap.Error(err))
			continue
		}
		events = append(events, &event)
	}
	return events, nil
}

// SaveReminder persists a reminder.
func (r *Repository) SaveReminder(ctx context.Context, reminder *entities.Reminder) error {
	key := store.ReminderKey(reminder.UserID, reminder.ReminderID)
	return r.putEntity(ctx, reminder, key, "", "")
}

// GetReminder returns a user's reminder, or nil if absent.
func (r *Repository) GetReminder(ctx context.Context, userID, reminderID string) (*entities.Reminder, error) {
	key := store.ReminderKey(userID, reminderID)
	item, err := r.store.Get(ctx, key.PK, key.SK)
	if err != nil || item == nil {
		return nil, err
	}

	var reminder entities.Reminder
	if err := unmarshalItem(item, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListReminders returns all of a user's reminders.
func (r *Repository) ListReminders(ctx context.Context, userID string) ([]*entities.Reminder, error) {
	key := store.UserKey(userID)
	items, err := r.store.Query(ctx, store.Query{
		PartitionKey: key.PK,
		Sort:         store.BeginsWith(store.ReminderPrefix),
	})
	if err != nil {
		return nil, err
	}

	reminders := make([]*entities.Reminder, 0, len(items))
	for _, item := range items {
		var reminder entities.Reminder
		if err := unmarshalItem(item, &reminder); err != nil {
			r.logger.Warn("Failed to parse reminder item, skipping", zap.Error(err))
			continue
		}
		reminders = append(reminders, &reminder)
	}
	return reminders, nil
}

// SetReminderStatus flips a reminder's status. Returns the updated record, or
// nil if the reminder does not exist. Reminders are never physically deleted.
func (r *Repository) SetReminderStatus(ctx context.Context, userID, reminderID string, status entities.ReminderStatus) (*entities.Reminder, error) {
	key := store.ReminderKey(userID, reminderID)
	item, err := r.store.Update(ctx, key.PK, key.SK, map[string]interface{}{
		"status": string(status),
	})
	if err != nil || item == nil {
		return nil, err
	}

	var reminder entities.Reminder
	if err := unmarshalItem(item, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// UpsertDevice registers a push device, replacing any prior registration for
// the same deviceID.
func (r *Repository) UpsertDevice(ctx context.Context, device *entities.Device) error {
	key := store.DeviceKey(device.UserID, device.DeviceID)
	return r.putEntity(ctx, device, key, "", "")
}

// ListDevices returns a user's registered devices.
func (r *Repository) ListDevices(ctx context.Context, userID string) ([]*entities.Device, error) {
	key := store.UserKey(userID)
	items, err := r.store.Query(ctx, store.Query{
		PartitionKey: key.PK,
		Sort:         store.BeginsWith(store.DevicePrefix),
	})
	if err != nil {
		return nil, err
	}

	devices := make([]*entities.Device, 0, len(items))
	for _, item := range items {
		var device entities.Device
		if err := unmarshalItem(item, &device); err != nil {
			r.logger.Warn("Failed to parse device item, skipping", zap.Error(err))
			continue
		}
		devices = append(devices, &device)
	}
	return devices, nil
}

// DeleteDevice physically removes a device registration.
func (r *Repository) DeleteDevice(ctx context.Context, userID, deviceID string) error {
	key := store.DeviceKey(userID, deviceID)
	return r.store.Delete(ctx, key.PK, key.SK)
}

// putEntity marshals an entity, attaches its key attributes (and secondary
// index pair when given) and writes it.
func (r *Repository) putEntity(ctx context.Context, entity interface{}, key store.Key, gsi1pk, gsi1sk string) error {
	item, err := marshalItem(entity)
	if err != nil {
		return err
	}
	item[store.AttrPK] = key.PK
	item[store.AttrSK] = key.SK
	if gsi1pk != "" {
		item[store.AttrGSI1PK] = gsi1pk
		item[store.AttrGSI1SK] = gsi1sk
	}
	return r.store.Put(ctx, item)
}
