package store

import (
	"fmt"
	"strconv"

	"driipnet/db"
)

// encodeCount renders a list count for storage.
func encodeCount(count uint64) []byte {
	return []byte(strconv.FormatUint(count, 10))
}

// decodeCount parses a stored list count; absent values decode to zero.
func decodeCount(data []byte) (uint64, error) {
	if data == nil {
		return 0, nil
	}
	count, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt list count %q: %w", string(data), err)
	}
	return count, nil
}

// readCount fetches and decodes a list count key.
func readCount(provider db.DatabaseProvider, key []byte) (uint64, error) {
	data, err := provider.Get(key)
	if err != nil {
		return 0, fmt.Errorf("could not read count key %s: %w", string(key), err)
	}
	return decodeCount(data)
}

// indexedKey composes "<prefix><scope>:<index>"; scope may be empty for
// global lists.
func indexedKey(prefix, scope string, index uint64) []byte {
	if scope == "" {
		return []byte(fmt.Sprintf("%s%d", prefix, index))
	}
	return []byte(fmt.Sprintf("%s%s:%d", prefix, scope, index))
}
