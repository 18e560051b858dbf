package botmesh

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/botmesh/bot"
	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/internal/testutil"
	"github.com/hupe1980/botmesh/state"
)

func TestBotMesh_EchoWithConversationState(t *testing.T) {
	auth := testutil.NewFakeAuth()
	mesh := New(auth, func(o *Options) {
		o.TokenPolling = false
	})

	counter := state.NewPropertyAccessor[int](mesh.ConversationState().BotState, "turnCount")

	echo := &bot.ActivityHandler{
		Message: func(tc *core.TurnContext) error {
			count, err := counter.Get(tc, func() int { return 0 })
			if err != nil {
				return err
			}
			if err := counter.Set(tc, count+1); err != nil {
				return err
			}
			_, err = tc.SendText(fmt.Sprintf("%d: %s", count+1, tc.Activity().Text))
			return err
		},
	}

	for i := 0; i < 2; i++ {
		_, err := mesh.ProcessActivity(context.Background(), "", testutil.NewMessage("hello"), echo)
		assert.NoError(t, err)
	}

	connector := auth.Connector.(*testutil.CapturingConnector)
	delivered := connector.Delivered()
	assert.Len(t, delivered, 2)
	// The counter survived across turns through the autosave middleware.
	assert.Equal(t, "1: hello", delivered[0].Text)
	assert.Equal(t, "2: hello", delivered[1].Text)
}

func TestBotMesh_UserMiddlewareRuns(t *testing.T) {
	auth := testutil.NewFakeAuth()

	var sawMiddleware bool
	mesh := New(auth, func(o *Options) {
		o.TokenPolling = false
		o.Middleware = []core.Middleware{
			core.MiddlewareFunc(func(tc *core.TurnContext, next core.NextFunc) error {
				sawMiddleware = true
				return next()
			}),
		}
	})

	_, err := mesh.ProcessActivity(context.Background(), "", testutil.NewMessage("hi"), &bot.ActivityHandler{})

	assert.NoError(t, err)
	assert.True(t, sawMiddleware)
}

func TestBotMesh_OnTurnError(t *testing.T) {
	auth := testutil.NewFakeAuth()

	boom := fmt.Errorf("boom")
	var handled error
	mesh := New(auth, func(o *Options) {
		o.TokenPolling = false
		o.OnTurnError = func(tc *core.TurnContext, turnErr error) error {
			handled = turnErr
			return nil
		}
	})

	handler := &bot.ActivityHandler{
		Message: func(tc *core.TurnContext) error { return boom },
	}

	_, err := mesh.ProcessActivity(context.Background(), "", testutil.NewMessage("hi"), handler)

	assert.NoError(t, err)
	assert.ErrorIs(t, handled, boom)
}

func TestBotMesh_ContinueConversation(t *testing.T) {
	auth := testutil.NewFakeAuth()
	mesh := New(auth, func(o *Options) {
		o.TokenPolling = false
	})

	reference := testutil.NewMessage("hi").GetConversationReference()

	err := mesh.ContinueConversation(context.Background(), "bot-app-id", reference, func(tc *core.TurnContext) error {
		_, err := tc.SendText("proactive ping")
		return err
	})

	assert.NoError(t, err)
	connector := auth.Connector.(*testutil.CapturingConnector)
	assert.Len(t, connector.Delivered(), 1)
	assert.Equal(t, "proactive ping", connector.Delivered()[0].Text)
}

func TestBotMesh_Accessors(t *testing.T) {
	mesh := New(testutil.NewFakeAuth())

	assert.NotNil(t, mesh.Adapter())
	assert.NotNil(t, mesh.ConversationState())
	assert.NotNil(t, mesh.UserState())
}
