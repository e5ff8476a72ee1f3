package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

// shareCacheTTL bounds how stale a public view may be. The share page is
// anonymous and read-heavy, so a short cache keeps index queries off the hot
// path.
const shareCacheTTL = 30 * time.Second

// sharedEventLimit caps the public timeline length.
const sharedEventLimit = 10

// SharedBatchView is the redacted, public projection of a batch. No user
// identity, notes or photos leave through this path.
type SharedBatchView struct {
	BatchID     string        `json:"batchId"`
	Name        string        `json:"name"`
	Stage       string        `json:"stage"`
	Status      string        `json:"status"`
	StartedAt   time.Time     `json:"startedAt"`
	TargetHours *float64      `json:"targetHours,omitempty"`
	PublicNote  string        `json:"publicNote,omitempty"`
	Events      []SharedEvent `json:"events"`
}

// SharedEvent is a timeline entry stripped down to what the public page shows.
type SharedEvent struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

type shareCacheEntry struct {
	view      *SharedBatchView
	expiresAt time.Time
}

// ShareService serves the anonymous public view of batches flagged public.
type ShareService struct {
	repo   *persistence.Repository
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]shareCacheEntry
}

// NewShareService creates the share service.
func NewShareService(repo *persistence.Repository, logger *zap.Logger) *ShareService {
	return &ShareService{
		repo:   repo,
		logger: logger,
		cache:  make(map[string]shareCacheEntry),
	}
}

// GetSharedBatch returns the public view of a batch by ID alone. Private,
// archived and unknown batches all answer not-found so the endpoint leaks
// nothing about their existence.
func (s *ShareService) GetSharedBatch(ctx context.Context, batchID string) (*SharedBatchView, error) {
	if view := s.cached(batchID); view != nil {
		return view, nil
	}

	batch, err := s.repo.GetBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil || !batch.Public || batch.IsArchived() {
		return nil, pkgerrors.NewNotFoundError("batch")
	}

	events, err := s.repo.ListEvents(ctx, batchID, sharedEventLimit)
	if err != nil {
		return nil, err
	}
	shared := make([]SharedEvent, 0, len(events))
	for _, ev := range events {
		shared = append(shared, SharedEvent{Type: string(ev.Type), At: ev.At})
	}

	view := &SharedBatchView{
		BatchID:     batch.BatchID,
		Name:        batch.Name,
		Stage:       string(batch.Stage),
		Status:      string(batch.Status),
		StartedAt:   batch.StartedAt,
		TargetHours: batch.TargetHours,
		PublicNote:  batch.PublicNote,
		Events:      shared,
	}
	s.store(batchID, view)
	return view, nil
}

func (s *ShareService) cached(batchID string) *SharedBatchView {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[batchID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.cache, batchID)
		return nil
	}
	return entry.view
}

func (s *ShareService) store(batchID string, view *SharedBatchView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[batchID] = shareCacheEntry{
		view:      view,
		expiresAt: time.Now().Add(shareCacheTTL),
	}
}
