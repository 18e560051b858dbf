package state

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/internal/testutil"
)

// countingStorage decorates a Storage to count write batches.
type countingStorage struct {
	Storage
	writes int
}

func (s *countingStorage) Write(ctx context.Context, changes map[string]*Item) error {
	s.writes++
	return s.Storage.Write(ctx, changes)
}

func newStateTurnContext(t *testing.T) *core.TurnContext {
	t.Helper()
	tc, err := core.NewTurnContext(context.Background(), nil, testutil.NewMessage("hello"))
	assert.NoError(t, err)
	return tc
}

func TestBotState_LoadMissingYieldsEmptyState(t *testing.T) {
	bs := NewConversationState(NewMemoryStorage())
	tc := newStateTurnContext(t)

	assert.NoError(t, bs.Load(tc, false))

	accessor := NewPropertyAccessor[string](bs.BotState, "greeting")
	_, err := accessor.Get(tc, nil)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestBotState_SaveOnlyWhenDirty(t *testing.T) {
	storage := &countingStorage{Storage: NewMemoryStorage()}
	bs := NewConversationState(storage)
	tc := newStateTurnContext(t)

	// Clean state: no write at all.
	assert.NoError(t, bs.Load(tc, false))
	assert.NoError(t, bs.SaveChanges(tc, false))
	assert.Equal(t, 0, storage.writes)

	accessor := NewPropertyAccessor[int](bs.BotState, "count")
	assert.NoError(t, accessor.Set(tc, 1))

	assert.NoError(t, bs.SaveChanges(tc, false))
	assert.Equal(t, 1, storage.writes)

	// Unchanged since the last save: still one write.
	assert.NoError(t, bs.SaveChanges(tc, false))
	assert.Equal(t, 1, storage.writes)
}

func TestBotState_SaveForce(t *testing.T) {
	storage := &countingStorage{Storage: NewMemoryStorage()}
	bs := NewConversationState(storage)
	tc := newStateTurnContext(t)

	assert.NoError(t, bs.Load(tc, false))
	assert.NoError(t, bs.SaveChanges(tc, true))
	assert.Equal(t, 1, storage.writes)
}

func TestBotState_PersistsAcrossTurns(t *testing.T) {
	storage := NewMemoryStorage()

	bs := NewConversationState(storage)
	accessor := NewPropertyAccessor[int](bs.BotState, "count")

	tc := newStateTurnContext(t)
	assert.NoError(t, accessor.Set(tc, 41))
	assert.NoError(t, bs.SaveChanges(tc, false))

	// A new turn for the same conversation sees the stored value.
	tc2 := newStateTurnContext(t)
	count, err := accessor.Get(tc2, nil)
	assert.NoError(t, err)
	assert.Equal(t, 41, count)
}

func TestBotState_ClearStateAlwaysDirty(t *testing.T) {
	storage := &countingStorage{Storage: NewMemoryStorage()}
	bs := NewConversationState(storage)

	tc := newStateTurnContext(t)
	accessor := NewPropertyAccessor[int](bs.BotState, "count")
	assert.NoError(t, accessor.Set(tc, 7))
	assert.NoError(t, bs.SaveChanges(tc, false))

	assert.NoError(t, bs.ClearState(tc))
	assert.NoError(t, bs.SaveChanges(tc, false))
	assert.Equal(t, 2, storage.writes)

	tc2 := newStateTurnContext(t)
	_, err := accessor.Get(tc2, nil)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestBotState_Delete(t *testing.T) {
	storage := NewMemoryStorage()
	bs := NewConversationState(storage)

	tc := newStateTurnContext(t)
	accessor := NewPropertyAccessor[string](bs.BotState, "name")
	assert.NoError(t, accessor.Set(tc, "value"))
	assert.NoError(t, bs.SaveChanges(tc, false))

	assert.NoError(t, bs.Delete(tc))

	tc2 := newStateTurnContext(t)
	_, err := accessor.Get(tc2, nil)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPropertyAccessor_DefaultFactory(t *testing.T) {
	bs := NewConversationState(NewMemoryStorage())
	tc := newStateTurnContext(t)

	accessor := NewPropertyAccessor[int](bs.BotState, "count")
	count, err := accessor.Get(tc, func() int { return 10 })
	assert.NoError(t, err)
	assert.Equal(t, 10, count)

	// The default was persisted into the cached scope.
	again, err := accessor.Get(tc, nil)
	assert.NoError(t, err)
	assert.Equal(t, 10, again)
}

func TestPropertyAccessor_StructRoundTrip(t *testing.T) {
	type profile struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}

	storage := NewMemoryStorage()
	bs := NewUserState(storage)
	accessor := NewPropertyAccessor[profile](bs.BotState, "profile")

	tc := newStateTurnContext(t)
	assert.NoError(t, accessor.Set(tc, profile{Name: "Ada", Score: 3}))
	assert.NoError(t, bs.SaveChanges(tc, false))

	// After the storage round trip the value comes back as a JSON map and
	// must convert to the struct again.
	tc2 := newStateTurnContext(t)
	got, err := accessor.Get(tc2, nil)
	assert.NoError(t, err)
	assert.Equal(t, profile{Name: "Ada", Score: 3}, got)
}

func TestConversationState_RequiresRoutingFields(t *testing.T) {
	bs := NewConversationState(NewMemoryStorage())

	activity := testutil.NewMessage("hi")
	activity.Conversation = nil
	tc, err := core.NewTurnContext(context.Background(), nil, activity)
	assert.NoError(t, err)

	assert.Error(t, bs.Load(tc, false))
}

func TestUserState_RequiresRoutingFields(t *testing.T) {
	bs := NewUserState(NewMemoryStorage())

	activity := testutil.NewMessage("hi")
	activity.From = nil
	tc, err := core.NewTurnContext(context.Background(), nil, activity)
	assert.NoError(t, err)

	assert.Error(t, bs.Load(tc, false))
}

func TestUserState_StorageKeyIsUserScoped(t *testing.T) {
	key, err := userStorageKey(newStateTurnContext(t))
	assert.NoError(t, err)
	assert.Equal(t, "test/users/user-1", key)

	key, err = conversationStorageKey(newStateTurnContext(t))
	assert.NoError(t, err)
	assert.Equal(t, "test/conversations/conv-1", key)
}

func TestAutoSaveMiddleware_SavesAfterTurn(t *testing.T) {
	storage := &countingStorage{Storage: NewMemoryStorage()}
	conversationState := NewConversationState(storage)
	userState := NewUserState(storage)
	autosave := NewAutoSaveMiddleware(conversationState.BotState, userState.BotState)

	counter := NewPropertyAccessor[int](conversationState.BotState, "count")

	tc := newStateTurnContext(t)
	err := autosave.OnTurn(tc, func() error {
		return counter.Set(tc, 1)
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, storage.writes)

	// The value survived into a fresh turn.
	tc2 := newStateTurnContext(t)
	count, err := counter.Get(tc2, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAutoSaveMiddleware_SkipsSaveOnDownstreamError(t *testing.T) {
	storage := &countingStorage{Storage: NewMemoryStorage()}
	conversationState := NewConversationState(storage)
	autosave := NewAutoSaveMiddleware(conversationState.BotState)

	counter := NewPropertyAccessor[int](conversationState.BotState, "count")
	boom := fmt.Errorf("boom")

	tc := newStateTurnContext(t)
	err := autosave.OnTurn(tc, func() error {
		if err := counter.Set(tc, 1); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, storage.writes)
}

func TestCachedState_IsChanged(t *testing.T) {
	cache := &cachedState{state: map[string]any{"k": "v"}}
	cache.hash = computeHash(cache.state)
	assert.False(t, cache.isChanged())

	cache.state["k"] = "other"
	assert.True(t, cache.isChanged())
}

func TestBotStateSet_LoadAll(t *testing.T) {
	storage := NewMemoryStorage()
	set := NewBotStateSet(NewConversationState(storage).BotState)
	set.Add(NewUserState(storage).BotState)

	tc := newStateTurnContext(t)
	assert.NoError(t, set.LoadAll(tc, false))
	assert.NoError(t, set.SaveAllChanges(tc, false))
}
