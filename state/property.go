package state

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/botmesh/core"
)

// PropertyAccessor reads and writes one named property of a BotState scope.
// Every call lazily triggers a non-forced Load first, so callers never need
// to sequence Load before use.
type PropertyAccessor[T any] struct {
	botState *BotState
	name     string
}

// NewPropertyAccessor creates an accessor for the named property of bs.
func NewPropertyAccessor[T any](bs *BotState, name string) *PropertyAccessor[T] {
	return &PropertyAccessor[T]{botState: bs, name: name}
}

// Name returns the property name.
func (p *PropertyAccessor[T]) Name() string { return p.name }

// Get returns the property value. When the property is missing and
// defaultFactory is non-nil, the default is computed, persisted into the
// cached scope and returned; with no factory the zero value and
// ErrPropertyNotFound are returned.
func (p *PropertyAccessor[T]) Get(tc *core.TurnContext, defaultFactory func() T) (T, error) {
	var zero T

	v, ok, err := p.botState.get(tc, p.name)
	if err != nil {
		return zero, err
	}
	if !ok {
		if defaultFactory == nil {
			return zero, fmt.Errorf("property %q: %w", p.name, ErrPropertyNotFound)
		}
		value := defaultFactory()
		if err := p.botState.set(tc, p.name, value); err != nil {
			return zero, err
		}
		return value, nil
	}

	return convertValue[T](v)
}

// Set stores the property value in the cached scope. The value is persisted
// on the next SaveChanges.
func (p *PropertyAccessor[T]) Set(tc *core.TurnContext, value T) error {
	return p.botState.set(tc, p.name, value)
}

// Delete removes the property from the cached scope.
func (p *PropertyAccessor[T]) Delete(tc *core.TurnContext) error {
	return p.botState.deleteProperty(tc, p.name)
}

// convertValue coerces a cached value to T. Values that went through a
// storage round trip come back as generic JSON shapes, so a failed direct
// assertion falls back to a JSON re-decode.
func convertValue[T any](v any) (T, error) {
	if typed, ok := v.(T); ok {
		return typed, nil
	}

	var zero T
	raw, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("convert state property: %w", err)
	}
	var typed T
	if err := json.Unmarshal(raw, &typed); err != nil {
		return zero, fmt.Errorf("convert state property: %w", err)
	}
	return typed, nil
}
