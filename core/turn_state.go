package core

import "sync"

// Well-known TurnState keys seeded by adapters. User code normally reaches
// these through the typed helpers rather than the raw keys.
const (
	IdentityKey        = "botmesh.identity"
	ConnectorClientKey = "botmesh.connectorClient"
	UserTokenClientKey = "botmesh.userTokenClient"
	CallbackKey        = "botmesh.callback"
	OAuthScopeKey      = "botmesh.oauthScope"
	InvokeResponseKey  = "botmesh.invokeResponse"
	LocaleKey          = "botmesh.locale"
)

// TurnState is the per-turn capability registry: a string-keyed map from
// capability name to an arbitrary typed value (connector client, identity,
// callback, locale, ...). It lives exactly as long as its turn and is never
// shared across turns. Access is guarded because turn-adjacent workers
// (the typing indicator) read capabilities while the turn is running.
type TurnState struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewTurnState returns an empty registry.
func NewTurnState() *TurnState {
	return &TurnState{values: map[string]any{}}
}

// Get returns the value registered under key, or nil.
func (s *TurnState) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set registers value under key, replacing any previous value. Setting nil
// removes the entry.
func (s *TurnState) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == nil {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// Has reports whether a value is registered under key.
func (s *TurnState) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// StateValue retrieves the value under key asserted to T. The boolean is
// false when the key is absent or holds a different type.
func StateValue[T any](s *TurnState, key string) (T, bool) {
	v, ok := s.Get(key).(T)
	return v, ok
}
