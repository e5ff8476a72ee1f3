package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is the in-memory implementation of Store used for development
// and tests. Partitions are matched by exact key equality, never by string
// prefix, so a partition key that happens to be a prefix of another can not
// spuriously match.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]Item
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partitions: make(map[string]map[string]Item),
	}
}

// Put inserts or replaces the item at its key, refreshing updatedAt.
func (s *MemoryStore) Put(ctx context.Context, item Item) error {
	pk, sk, err := itemKey(item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(pk, sk, item)
	return nil
}

func (s *MemoryStore) putLocked(pk, sk string, item Item) {
	stored := cloneItem(item)
	stored[AttrUpdatedAt] = NowISO()

	partition, ok := s.partitions[pk]
	if !ok {
		partition = make(map[string]Item)
		s.partitions[pk] = partition
	}
	partition[sk] = stored
}

// Get returns the item at the exact composite key, or nil if absent.
func (s *MemoryStore) Get(ctx context.Context, pk, sk string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.partitions[pk][sk]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

// Query returns all items under a partition key, optionally narrowed by a
// sort-key condition, ordered by sort key.
func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partition := s.partitions[q.PartitionKey]
	sks := make([]string, 0, len(partition))
	for sk := range partition {
		if matchSort(sk, q.Sort) {
			sks = append(sks, sk)
		}
	}
	sort.Strings(sks)
	if q.Descending {
		for i, j := 0, len(sks)-1; i < j; i, j = i+1, j-1 {
			sks[i], sks[j] = sks[j], sks[i]
		}
	}
	if q.Limit > 0 && int(q.Limit) < len(sks) {
		sks = sks[:q.Limit]
	}

	items := make([]Item, 0, len(sks))
	for _, sk := range sks {
		items = append(items, cloneItem(partition[sk]))
	}
	return items, nil
}

// QueryIndex runs a query against the GSI1 key pair. Only BeginsWith and
// Equals conditions are supported on the index sort key.
func (s *MemoryStore) QueryIndex(ctx context.Context, q Query) ([]Item, error) {
	if q.Sort != nil && q.Sort.kind == condBetween {
		return nil, fmt.Errorf("between condition is not supported on the secondary index")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type indexed struct {
		sk   string
		item Item
	}
	var matched []indexed
	for _, partition := range s.partitions {
		for _, item := range partition {
			gsi1pk, _ := item[AttrGSI1PK].(string)
			if gsi1pk != q.PartitionKey {
				continue
			}
			gsi1sk, _ := item[AttrGSI1SK].(string)
			if !matchSort(gsi1sk, q.Sort) {
				continue
			}
			matched = append(matched, indexed{sk: gsi1sk, item: item})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].sk < matched[j].sk })
	if q.Limit > 0 && int(q.Limit) < len(matched) {
		matched = matched[:q.Limit]
	}

	items := make([]Item, 0, len(matched))
	for _, m := range matched {
		items = append(items, cloneItem(m.item))
	}
	return items, nil
}

// Update merges attrs into the existing item, refreshing updatedAt. A missing
// item is a no-op returning (nil, nil); it is never created.
func (s *MemoryStore) Update(ctx context.Context, pk, sk string, attrs map[string]interface{}) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.partitions[pk][sk]
	if !ok {
		return nil, nil
	}

	for k, v := range attrs {
		item[k] = cloneValue(v)
	}
	item[AttrUpdatedAt] = NowISO()

	return cloneItem(item), nil
}

// Delete removes the item if present; absent keys are a no-op.
func (s *MemoryStore) Delete(ctx context.Context, pk, sk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(pk, sk)
	return nil
}

func (s *MemoryStore) deleteLocked(pk, sk string) {
	partition, ok := s.partitions[pk]
	if !ok {
		return
	}
	delete(partition, sk)
	if len(partition) == 0 {
		delete(s.partitions, pk)
	}
}

// BatchGet returns the subset of items found for the given keys.
func (s *MemoryStore) BatchGet(ctx context.Context, keys []Key) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		if item, ok := s.partitions[key.PK][key.SK]; ok {
			items = append(items, cloneItem(item))
		}
	}
	return items, nil
}

// BatchWrite applies a mixed list of put/delete operations.
func (s *MemoryStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, op := range ops {
		switch {
		case op.Put != nil:
			pk, sk, err := itemKey(op.Put)
			if err != nil {
				return fmt.Errorf("batch write op %d: %w", i, err)
			}
			s.putLocked(pk, sk, op.Put)
		case op.Delete != nil:
			s.deleteLocked(op.Delete.PK, op.Delete.SK)
		default:
			return fmt.Errorf("batch write op %d: neither put nor delete", i)
		}
	}
	return nil
}

func itemKey(item Item) (pk, sk string, err error) {
	pk, _ = item[AttrPK].(string)
	sk, _ = item[AttrSK].(string)
	if pk == "" || sk == "" {
		return "", "", fmt.Errorf("item is missing its %s/%s attributes", AttrPK, AttrSK)
	}
	return pk, sk, nil
}

func matchSort(sk string, cond *SortCondition) bool {
	if cond == nil {
		return true
	}
	switch cond.kind {
	case condBeginsWith:
		return strings.HasPrefix(sk, cond.value)
	case condEquals:
		return sk == cond.value
	case condBetween:
		return sk >= cond.value && sk <= cond.upper
	}
	return false
}

// cloneItem deep-copies an item so callers never share mutable state with the
// store or with each other.
func cloneItem(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
