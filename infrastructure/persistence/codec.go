package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence/store"
)

// marshalItem converts an entity into a store item through its JSON shape.
// Key attributes are not part of the entity; callers attach them from the key
// builders afterwards.
func marshalItem(v interface{}) (store.Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	var item store.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to convert entity to item: %w", err)
	}
	return item, nil
}

// unmarshalItem converts a store item back into an entity. Key attributes
// have no entity fields and are dropped on the floor.
func unmarshalItem(item store.Item, v interface{}) error {
	data, err := json.Marshal(map[string]interface{}(item))
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse item: %w", err)
	}
	return nil
}
