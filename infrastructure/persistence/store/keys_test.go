package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserKey(t *testing.T) {
	key := UserKey("u1")

	assert.Equal(t, "USER#u1", key.PK)
	assert.Equal(t, "USER#u1", key.SK)
}

func TestBatchKey(t *testing.T) {
	key := BatchKey("u1", "b1")

	assert.Equal(t, "USER#u1", key.PK)
	assert.Equal(t, "BATCH#b1", key.SK)
}

func TestBatchIndexKey_DependsOnlyOnBatchID(t *testing.T) {
	gsi1pkA, gsi1skA := BatchIndexKey("u1", "b1")
	gsi1pkB, gsi1skB := BatchIndexKey("u2", "b1")

	assert.Equal(t, "BATCH#b1", gsi1pkA)
	assert.Equal(t, gsi1pkA, gsi1pkB)
	assert.Equal(t, "USER#u1", gsi1skA)
	assert.Equal(t, "USER#u2", gsi1skB)
}

func TestEventKey_EmbedsTimestamp(t *testing.T) {
	key := EventKey("b1", "2024-01-01T00:00:00Z")

	assert.Equal(t, "BATCH#b1", key.PK)
	assert.Equal(t, "EVENT#2024-01-01T00:00:00Z", key.SK)
}

func TestReminderAndDeviceKeys(t *testing.T) {
	reminder := ReminderKey("u1", "r1")
	device := DeviceKey("u1", "d1")

	assert.Equal(t, "USER#u1", reminder.PK)
	assert.Equal(t, "REMINDER#r1", reminder.SK)
	assert.Equal(t, "USER#u1", device.PK)
	assert.Equal(t, "DEVICE#d1", device.SK)
}

func TestKeys_Deterministic(t *testing.T) {
	assert.Equal(t, BatchKey("u1", "b1"), BatchKey("u1", "b1"))
	assert.Equal(t, EventKey("b1", "ts"), EventKey("b1", "ts"))
}

func TestKeys_DistinctEntitiesNeverCollide(t *testing.T) {
	// Same IDs under the same user still land on distinct sort keys.
	keys := []Key{
		UserKey("u1"),
		BatchKey("u1", "x"),
		ReminderKey("u1", "x"),
		DeviceKey("u1", "x"),
	}

	seen := map[string]bool{}
	for _, k := range keys {
		id := k.PK + "|" + k.SK
		assert.False(t, seen[id], "duplicate key %s", id)
		seen[id] = true
	}
}
