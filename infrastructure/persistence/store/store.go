// Package store defines the single-table item store facade: a small set of
// generic operations over items addressed by a composite primary key with one
// secondary index, plus the per-entity key builders. Two implementations
// exist, a DynamoDB adapter and an in-memory map for development and tests;
// callers must not depend on which one is active.
package store

import (
	"context"
	"time"
)

// Attribute names shared by every item.
const (
	AttrPK        = "PK"
	AttrSK        = "SK"
	AttrGSI1PK    = "GSI1PK"
	AttrGSI1SK    = "GSI1SK"
	AttrUpdatedAt = "updatedAt"
)

// Item is a stored record. The store only assumes the presence of the key
// attributes; everything else is entity payload.
type Item map[string]interface{}

// Key addresses a single item.
type Key struct {
	PK string
	SK string
}

// condKind is the variant tag for sort-key conditions. Modeling the three
// mutually exclusive condition shapes as a variant removes the "multiple
// conditions supplied" ambiguity at the type level.
type condKind int

const (
	condBeginsWith condKind = iota
	condEquals
	condBetween
)

// SortCondition restricts a query to a slice of the sort-key space. Construct
// one with BeginsWith, Equals or Between; the zero value is not valid.
type SortCondition struct {
	kind  condKind
	value string
	upper string
}

// BeginsWith matches sort keys starting with the given prefix.
func BeginsWith(prefix string) *SortCondition {
	return &SortCondition{kind: condBeginsWith, value: prefix}
}

// Equals matches the exact sort key.
func Equals(value string) *SortCondition {
	return &SortCondition{kind: condEquals, value: value}
}

// Between matches sort keys in [lo, hi], inclusive on both bounds.
func Between(lo, hi string) *SortCondition {
	return &SortCondition{kind: condBetween, value: lo, upper: hi}
}

// IsBeginsWith reports whether the condition is a prefix match.
func (c *SortCondition) IsBeginsWith() bool { return c != nil && c.kind == condBeginsWith }

// IsEquals reports whether the condition is an exact match.
func (c *SortCondition) IsEquals() bool { return c != nil && c.kind == condEquals }

// IsBetween reports whether the condition is a range match.
func (c *SortCondition) IsBetween() bool { return c != nil && c.kind == condBetween }

// Value returns the prefix, exact value, or lower bound of the condition.
func (c *SortCondition) Value() string { return c.value }

// Bounds returns the inclusive range of a Between condition.
func (c *SortCondition) Bounds() (lo, hi string) { return c.value, c.upper }

// Query describes a partition read. Limit <= 0 means unbounded; results are
// ordered by sort key, ascending unless Descending is set.
type Query struct {
	PartitionKey string
	Sort         *SortCondition
	Limit        int32
	Descending   bool
}

// WriteOp is one entry of a BatchWrite: exactly one of Put or Delete is set.
type WriteOp struct {
	Put    Item
	Delete *Key
}

// Store is the single-table facade. Absence is never an error: Get and Update
// return a nil Item for missing keys, Delete is a no-op, and BatchGet silently
// omits keys that were not found. Transient backend failures propagate to the
// caller unchanged; the facade adds no retries, translation or idempotency
// beyond the unprocessed-item loop inside BatchWrite.
type Store interface {
	// Put inserts or fully replaces the item at its key, refreshing
	// updatedAt. There is no uniqueness check; callers needing
	// create-vs-exists semantics must Get first.
	Put(ctx context.Context, item Item) error

	// Get returns the item at the exact composite key, or nil if absent.
	Get(ctx context.Context, pk, sk string) (Item, error)

	// Query returns all items under a partition key, optionally narrowed by
	// a sort-key condition.
	Query(ctx context.Context, q Query) ([]Item, error)

	// QueryIndex runs the same shape of query against the secondary index
	// key pair. Only BeginsWith and Equals conditions are supported; a
	// Between condition is rejected with an error.
	QueryIndex(ctx context.Context, q Query) ([]Item, error)

	// Update merges the given attributes into the existing item and
	// refreshes updatedAt, returning the full updated item. If the item
	// does not exist the call is a no-op returning (nil, nil); it never
	// creates the item. The merge is atomic per item.
	Update(ctx context.Context, pk, sk string, attrs map[string]interface{}) (Item, error)

	// Delete removes the item if present; absent keys are not an error.
	Delete(ctx context.Context, pk, sk string) error

	// BatchGet returns the subset of items found for the given keys. An
	// empty input yields an empty result.
	BatchGet(ctx context.Context, keys []Key) ([]Item, error)

	// BatchWrite applies a mixed list of put/delete operations, refreshing
	// updatedAt on each put. There is no per-operation status: the call
	// either succeeds as a whole or returns an error for the caller to
	// retry.
	BatchWrite(ctx context.Context, ops []WriteOp) error
}

// isoMillis is the table's timestamp layout. Millisecond precision so
// successive writes within a second still compare correctly.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// NowISO is the store-owned timestamp written to updatedAt.
func NowISO() string {
	return FormatISO(time.Now())
}

// FormatISO renders a time in the table's timestamp layout. Keys derived from
// timestamps must use this so items written within the same second stay
// distinct.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
