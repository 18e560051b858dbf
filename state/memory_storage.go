package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hupe1980/botmesh/schema"
)

// MemoryStorage is a volatile Storage implementation backed by a process
// local map. It is safe for concurrent access from simultaneous turns and
// best suited for tests or ephemeral demo bots. Values are deep-copied on
// both read and write so callers can never alias internal state.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]*Item
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage constructs an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]*Item)}
}

// Read returns the items stored under keys; absent keys are omitted.
func (s *MemoryStorage) Read(ctx context.Context, keys []string) (map[string]*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*Item, len(keys))
	for _, key := range keys {
		if item, ok := s.items[key]; ok {
			clone, err := cloneItem(item)
			if err != nil {
				return nil, fmt.Errorf("read %q: %w", key, err)
			}
			result[key] = clone
		}
	}
	return result, nil
}

// Write stores all changes or none. Concrete ETags are validated against
// the currently stored items before anything is applied; every stored value
// receives a fresh ETag.
func (s *MemoryStorage) Write(ctx context.Context, changes map[string]*Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, change := range changes {
		if change == nil {
			return fmt.Errorf("write %q: nil item", key)
		}
		existing, ok := s.items[key]
		if ok && change.ETag != "" && change.ETag != ETagAny && change.ETag != existing.ETag {
			return fmt.Errorf("write %q: etag %q does not match %q: %w", key, change.ETag, existing.ETag, ErrETagConflict)
		}
	}

	for key, change := range changes {
		clone, err := cloneItem(change)
		if err != nil {
			return fmt.Errorf("write %q: %w", key, err)
		}
		clone.ETag = schema.NewID()
		s.items[key] = clone
	}
	return nil
}

// Delete removes the given keys; absent keys are ignored.
func (s *MemoryStorage) Delete(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.items, key)
	}
	return nil
}

// cloneItem deep-copies an item through a JSON round trip, which also
// normalizes values to plain JSON shapes the way a durable store would.
func cloneItem(item *Item) (*Item, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	clone := &Item{}
	if err := json.Unmarshal(raw, clone); err != nil {
		return nil, err
	}
	if clone.Data == nil {
		clone.Data = map[string]any{}
	}
	return clone, nil
}
