package state

import (
	"fmt"

	"github.com/hupe1980/botmesh/core"
)

// BotStateSet groups multiple state scopes so they can be saved together at
// turn end.
type BotStateSet struct {
	states []*BotState
}

// NewBotStateSet builds a set from the given scopes.
func NewBotStateSet(states ...*BotState) *BotStateSet {
	return &BotStateSet{states: states}
}

// Add appends scopes to the set.
func (s *BotStateSet) Add(states ...*BotState) {
	s.states = append(s.states, states...)
}

// LoadAll loads every scope in the set.
func (s *BotStateSet) LoadAll(tc *core.TurnContext, force bool) error {
	for _, bs := range s.states {
		if err := bs.Load(tc, force); err != nil {
			return err
		}
	}
	return nil
}

// SaveAllChanges flushes every dirty scope in the set. The first error
// aborts the remaining saves.
func (s *BotStateSet) SaveAllChanges(tc *core.TurnContext, force bool) error {
	for _, bs := range s.states {
		if err := bs.SaveChanges(tc, force); err != nil {
			return fmt.Errorf("save state set: %w", err)
		}
	}
	return nil
}

// AutoSaveMiddleware saves every registered scope after the downstream
// pipeline (including the bot callback) has completed successfully. Errors
// from downstream skip the save and propagate unchanged.
type AutoSaveMiddleware struct {
	set *BotStateSet
}

var _ core.Middleware = (*AutoSaveMiddleware)(nil)

// NewAutoSaveMiddleware wraps the given scopes in auto-save behavior.
func NewAutoSaveMiddleware(states ...*BotState) *AutoSaveMiddleware {
	return &AutoSaveMiddleware{set: NewBotStateSet(states...)}
}

// OnTurn implements core.Middleware.
func (m *AutoSaveMiddleware) OnTurn(tc *core.TurnContext, next core.NextFunc) error {
	if err := next(); err != nil {
		return err
	}
	return m.set.SaveAllChanges(tc, false)
}
