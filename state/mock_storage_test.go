package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the Storage contract.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Read(ctx context.Context, keys []string) (map[string]*Item, error) {
	args := m.Called(ctx, keys)
	items, _ := args.Get(0).(map[string]*Item)
	return items, args.Error(1)
}

func (m *MockStorage) Write(ctx context.Context, changes map[string]*Item) error {
	args := m.Called(ctx, changes)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, keys []string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

var _ Storage = (*MockStorage)(nil)

func TestBotState_SaveWritesWildcardETag(t *testing.T) {
	storage := &MockStorage{}
	storage.On("Read", mock.Anything, []string{"test/conversations/conv-1"}).
		Return(map[string]*Item{}, nil)
	storage.On("Write", mock.Anything, mock.MatchedBy(func(changes map[string]*Item) bool {
		item, ok := changes["test/conversations/conv-1"]
		return ok && item.ETag == ETagAny
	})).Return(nil)

	bs := NewConversationState(storage)
	tc := newStateTurnContext(t)

	accessor := NewPropertyAccessor[string](bs.BotState, "name")
	assert.NoError(t, accessor.Set(tc, "value"))
	assert.NoError(t, bs.SaveChanges(tc, false))

	storage.AssertExpectations(t)
}
