package state

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/logging"
	"github.com/hupe1980/botmesh/schema"
)

// StorageKeyFunc derives the storage key for a scope from the current turn,
// e.g. "<channelId>/conversations/<conversationId>".
type StorageKeyFunc func(tc *core.TurnContext) (string, error)

// cachedState is the per-turn cache entry for one scope: the materialized
// state map plus the canonical-serialization hash recorded at the last load
// or save. A diverging hash means the state is dirty.
type cachedState struct {
	state map[string]any
	hash  string
}

func (c *cachedState) isChanged() bool {
	return c.hash != computeHash(c.state)
}

// Options configures a BotState.
type Options struct {
	// Logger receives load/save diagnostics. Defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// BotState manages one persisted scope (conversation, user, ...) of bot
// state: it caches the scope's map in turn state on first access, tracks
// dirtiness via a canonical hash, and writes back only when the state
// actually changed. Concurrency control is the store's concern, not
// BotState's.
type BotState struct {
	storage    Storage
	cacheKey   string
	storageKey StorageKeyFunc
	logger     logging.Logger
}

// NewBotState creates a state scope. cacheKey names the per-turn cache slot
// and must be unique per scope; storageKey derives the persistent key from
// a turn.
func NewBotState(storage Storage, cacheKey string, storageKey StorageKeyFunc, optFns ...func(o *Options)) *BotState {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &BotState{
		storage:    storage,
		cacheKey:   cacheKey,
		storageKey: storageKey,
		logger:     opts.Logger,
	}
}

// Load reads the scope's state into the turn cache. It is a no-op when a
// cache already exists and force is false. A missing stored value
// materializes as an empty map, not an error.
func (bs *BotState) Load(tc *core.TurnContext, force bool) error {
	if !force && bs.cached(tc) != nil {
		return nil
	}

	key, err := bs.storageKey(tc)
	if err != nil {
		return err
	}

	items, err := bs.storage.Read(tc.Context(), []string{key})
	if err != nil {
		return fmt.Errorf("load state %q: %w", key, err)
	}

	stateMap := map[string]any{}
	if item, ok := items[key]; ok && item.Data != nil {
		stateMap = item.Data
	}

	tc.TurnState().Set(bs.cacheKey, &cachedState{state: stateMap, hash: computeHash(stateMap)})
	bs.logger.Debug("state loaded", "key", key)
	return nil
}

// SaveChanges writes the scope back to storage iff the in-memory state
// diverged from the recorded hash (or force is set). Equal hashes perform
// no storage write at all.
func (bs *BotState) SaveChanges(tc *core.TurnContext, force bool) error {
	cache := bs.cached(tc)
	if cache == nil {
		return nil
	}
	if !force && !cache.isChanged() {
		return nil
	}

	key, err := bs.storageKey(tc)
	if err != nil {
		return err
	}

	changes := map[string]*Item{
		key: {Data: cache.state, ETag: ETagAny},
	}
	if err := bs.storage.Write(tc.Context(), changes); err != nil {
		return fmt.Errorf("save state %q: %w", key, err)
	}

	cache.hash = computeHash(cache.state)
	bs.logger.Debug("state saved", "key", key)
	return nil
}

// ClearState resets the cached scope to an empty map in a way that always
// reports dirty, so the next SaveChanges is guaranteed to overwrite
// storage.
func (bs *BotState) ClearState(tc *core.TurnContext) error {
	tc.TurnState().Set(bs.cacheKey, &cachedState{state: map[string]any{}, hash: ""})
	return nil
}

// Delete removes both the turn cache entry and the persisted storage key.
func (bs *BotState) Delete(tc *core.TurnContext) error {
	tc.TurnState().Set(bs.cacheKey, nil)

	key, err := bs.storageKey(tc)
	if err != nil {
		return err
	}
	return bs.storage.Delete(tc.Context(), []string{key})
}

// get returns a property value from the cached scope, lazily loading first.
func (bs *BotState) get(tc *core.TurnContext, name string) (any, bool, error) {
	if err := bs.Load(tc, false); err != nil {
		return nil, false, err
	}
	v, ok := bs.cached(tc).state[name]
	return v, ok, nil
}

// set stores a property value in the cached scope, lazily loading first.
func (bs *BotState) set(tc *core.TurnContext, name string, value any) error {
	if err := bs.Load(tc, false); err != nil {
		return err
	}
	bs.cached(tc).state[name] = value
	return nil
}

// deleteProperty removes a property from the cached scope.
func (bs *BotState) deleteProperty(tc *core.TurnContext, name string) error {
	if err := bs.Load(tc, false); err != nil {
		return err
	}
	delete(bs.cached(tc).state, name)
	return nil
}

func (bs *BotState) cached(tc *core.TurnContext) *cachedState {
	cache, _ := core.StateValue[*cachedState](tc.TurnState(), bs.cacheKey)
	return cache
}

// computeHash canonically serializes a state map. encoding/json emits map
// keys in sorted order, so equal maps always hash equal. A map that cannot
// be serialized hashes to a unique sentinel that never matches, forcing a
// write attempt that will surface the real error.
func computeHash(state map[string]any) string {
	raw, err := json.Marshal(state)
	if err != nil {
		return "unserializable:" + schema.NewID()
	}
	return string(raw)
}
