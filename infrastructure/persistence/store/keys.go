package store

import "fmt"

// Entity key prefixes. The SK prefix determines the entity type of an item;
// listing a collection is a BeginsWith query on the prefix.
const (
	UserPrefix     = "USER#"
	BatchPrefix    = "BATCH#"
	EventPrefix    = "EVENT#"
	ReminderPrefix = "REMINDER#"
	DevicePrefix   = "DEVICE#"
)

// The key builders below are the single source of truth for the key layout.
// Nothing else in the repo formats key strings inline.

// UserKey builds the key of the identity record.
func UserKey(userID string) Key {
	return Key{
		PK: fmt.Sprintf("%s%s", UserPrefix, userID),
		SK: fmt.Sprintf("%s%s", UserPrefix, userID),
	}
}

// BatchKey builds the primary key of a batch.
func BatchKey(userID, batchID string) Key {
	return Key{
		PK: fmt.Sprintf("%s%s", UserPrefix, userID),
		SK: fmt.Sprintf("%s%s", BatchPrefix, batchID),
	}
}

// BatchIndexKey builds the secondary-index pair of a batch, enabling lookup
// by batch ID alone. GSI1PK derives only from the batch ID.
func BatchIndexKey(userID, batchID string) (gsi1pk, gsi1sk string) {
	return fmt.Sprintf("%s%s", BatchPrefix, batchID), fmt.Sprintf("%s%s", UserPrefix, userID)
}

// EventKey builds the key of a timeline entry. The sort key embeds the ISO
// timestamp, so store order is event-time order.
func EventKey(batchID, isoTimestamp string) Key {
	return Key{
		PK: fmt.Sprintf("%s%s", BatchPrefix, batchID),
		SK: fmt.Sprintf("%s%s", EventPrefix, isoTimestamp),
	}
}

// ReminderKey builds the key of a reminder.
func ReminderKey(userID, reminderID string) Key {
	return Key{
		PK: fmt.Sprintf("%s%s", UserPrefix, userID),
		SK: fmt.Sprintf("%s%s", ReminderPrefix, reminderID),
	}
}

// DeviceKey builds the key of a push-device registration.
func DeviceKey(userID, deviceID string) Key {
	return Key{
		PK: fmt.Sprintf("%s%s", UserPrefix, userID),
		SK: fmt.Sprintf("%s%s", DevicePrefix, deviceID),
	}
}
