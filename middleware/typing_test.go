package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/internal/testutil"
	"github.com/hupe1980/botmesh/schema"
)

// captureAdapter records terminal deliveries from the turn and the typing
// worker goroutine.
type captureAdapter struct {
	mu   sync.Mutex
	sent []*schema.Activity
}

func (a *captureAdapter) SendActivities(_ context.Context, _ *core.TurnContext, activities []*schema.Activity) ([]*schema.ResourceResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, activities...)
	responses := make([]*schema.ResourceResponse, len(activities))
	for i := range activities {
		responses[i] = &schema.ResourceResponse{ID: schema.NewID()}
	}
	return responses, nil
}

func (a *captureAdapter) UpdateActivity(_ context.Context, _ *core.TurnContext, activity *schema.Activity) (*schema.ResourceResponse, error) {
	return &schema.ResourceResponse{ID: activity.ID}, nil
}

func (a *captureAdapter) DeleteActivity(context.Context, *core.TurnContext, *schema.ConversationReference) error {
	return nil
}

func (a *captureAdapter) ContinueConversation(context.Context, string, *schema.ConversationReference, core.HandlerFunc) error {
	return nil
}

func (a *captureAdapter) byType(activityType string) []*schema.Activity {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*schema.Activity
	for _, activity := range a.sent {
		if activity.IsType(activityType) {
			out = append(out, activity)
		}
	}
	return out
}

func newTypingContext(t *testing.T, activity *schema.Activity) (*core.TurnContext, *captureAdapter) {
	t.Helper()
	adapter := &captureAdapter{}
	tc, err := core.NewTurnContext(context.Background(), adapter, activity)
	assert.NoError(t, err)
	return tc, adapter
}

func TestShowTyping_SendsIndicatorDuringSlowTurn(t *testing.T) {
	m := NewShowTyping(func(o *ShowTypingOptions) {
		o.Delay = 5 * time.Millisecond
		o.Period = 10 * time.Millisecond
	})

	tc, adapter := newTypingContext(t, testutil.NewMessage("hi"))

	err := m.OnTurn(tc, func() error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	assert.NoError(t, err)
	typings := adapter.byType(schema.ActivityTyping)
	assert.NotEmpty(t, typings)
	// Indicators are addressed outbound and never sent as replies.
	assert.Equal(t, "bot-1", typings[0].From.ID)
	assert.Empty(t, typings[0].ReplyToID)
	// Typing never marks the turn as responded.
	assert.False(t, tc.Responded())
}

func TestShowTyping_WorkerStopsAtTurnEnd(t *testing.T) {
	m := NewShowTyping(func(o *ShowTypingOptions) {
		o.Delay = 5 * time.Millisecond
		o.Period = 5 * time.Millisecond
	})

	tc, adapter := newTypingContext(t, testutil.NewMessage("hi"))

	err := m.OnTurn(tc, func() error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	assert.NoError(t, err)

	// Once OnTurn returned, the worker is gone; no further indicators.
	settled := len(adapter.byType(schema.ActivityTyping))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, len(adapter.byType(schema.ActivityTyping)))
}

func TestShowTyping_FirstMessageStopsIndicator(t *testing.T) {
	m := NewShowTyping(func(o *ShowTypingOptions) {
		o.Delay = 20 * time.Millisecond
		o.Period = 20 * time.Millisecond
	})

	tc, adapter := newTypingContext(t, testutil.NewMessage("hi"))

	err := m.OnTurn(tc, func() error {
		// The reply goes out before the first indicator is due; the worker
		// must be stopped before the delay elapses.
		if _, err := tc.SendText("instant reply"); err != nil {
			return err
		}
		time.Sleep(60 * time.Millisecond)
		return nil
	})

	assert.NoError(t, err)
	assert.Empty(t, adapter.byType(schema.ActivityTyping))
	assert.Len(t, adapter.byType(schema.ActivityMessage), 1)
}

func TestShowTyping_SkipsNonMessageTurns(t *testing.T) {
	m := NewShowTyping(func(o *ShowTypingOptions) {
		o.Delay = time.Millisecond
	})

	activity := testutil.NewActivityBuilder(schema.ActivityEvent).Name("custom").Build()
	tc, adapter := newTypingContext(t, activity)

	err := m.OnTurn(tc, func() error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	assert.NoError(t, err)
	assert.Empty(t, adapter.byType(schema.ActivityTyping))
}

func TestShowTyping_SkipsSkillTurns(t *testing.T) {
	m := NewShowTyping(func(o *ShowTypingOptions) {
		o.Delay = time.Millisecond
	})

	tc, adapter := newTypingContext(t, testutil.NewMessage("hi"))
	tc.TurnState().Set(core.IdentityKey, &core.Identity{Claims: map[string]string{
		core.AppIDClaim:    "calling-bot",
		core.AudienceClaim: "this-bot",
		core.VersionClaim:  "1.0",
	}})

	err := m.OnTurn(tc, func() error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	assert.NoError(t, err)
	assert.Empty(t, adapter.byType(schema.ActivityTyping))
}

func TestShowTyping_SkipsWithoutConversation(t *testing.T) {
	m := NewShowTyping(func(o *ShowTypingOptions) {
		o.Delay = time.Millisecond
	})

	activity := testutil.NewMessage("hi")
	activity.Conversation = nil
	tc, adapter := newTypingContext(t, activity)

	err := m.OnTurn(tc, func() error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	assert.NoError(t, err)
	assert.Empty(t, adapter.byType(schema.ActivityTyping))
}
