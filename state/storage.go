package state

import "context"

// ETagAny is the wildcard version token: a write carrying it always
// succeeds (last-writer-wins).
const ETagAny = "*"

// Item is the unit of storage: an opaque state document plus its version
// tag. An empty ETag on a write behaves like the wildcard.
type Item struct {
	Data map[string]any `json:"data"`
	ETag string         `json:"eTag,omitempty"`
}

// Storage is the store contract consumed by BotState.
//
// Read omits absent keys from its result rather than failing. Write applies
// all changes or none: a change whose ETag is concrete and stale fails the
// whole write with ErrETagConflict, while ETagAny (or empty) bypasses the
// check; successful writes assign a fresh opaque ETag to each stored value.
type Storage interface {
	Read(ctx context.Context, keys []string) (map[string]*Item, error)
	Write(ctx context.Context, changes map[string]*Item) error
	Delete(ctx context.Context, keys []string) error
}
