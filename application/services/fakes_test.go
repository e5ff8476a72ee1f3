package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/domain/events"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence/store"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/observability"
)

// fakePublisher records published events in memory.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return f.PublishBatch(ctx, []events.DomainEvent{event})
}

func (f *fakePublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, domainEvents...)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.EventType()
	}
	return out
}

// fakeScheduler records created and cancelled schedules.
type fakeScheduler struct {
	mu          sync.Mutex
	scheduled   []string
	cancelled   []string
	scheduleErr error
}

func (f *fakeScheduler) Schedule(ctx context.Context, reminderID, userID string, at time.Time, payload interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	name := fmt.Sprintf("reminder-%s", reminderID)
	f.scheduled = append(f.scheduled, name)
	return name, nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, scheduleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, scheduleName)
	return nil
}

// fakeMediaStore issues deterministic URLs.
type fakeMediaStore struct {
	err error
}

func (f *fakeMediaStore) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://media.test/upload/" + key, nil
}

func (f *fakeMediaStore) PresignDownload(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://media.test/download/" + key, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, key string) error {
	return f.err
}

var errFakeDown = errors.New("dependency down")

func newTestRepository() *persistence.Repository {
	return persistence.NewRepository(store.NewMemoryStore(), zap.NewNop())
}

func noopMetrics() *observability.Metrics {
	return observability.NewMetrics("Test", nil, zap.NewNop())
}
