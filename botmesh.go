// Package botmesh provides a high-level façade over the turn-processing
// engine (adapter, state & middleware) enabling rapid construction of
// conversational bots. Most applications interact with this package by:
//  1. Creating a BotMesh via New() (optionally overriding default in-memory storage)
//  2. Wiring an ActivityHandler (or any core.Bot) with per-kind hooks
//  3. Processing inbound activities (ProcessActivity) or starting proactive
//     turns (ContinueConversation)
//
// The façade delegates turn orchestration to adapter.CloudAdapter while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// Storage implementation and a structured logger.
package botmesh

import (
	"context"

	"github.com/hupe1980/botmesh/adapter"
	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/logging"
	"github.com/hupe1980/botmesh/middleware"
	"github.com/hupe1980/botmesh/oauth"
	"github.com/hupe1980/botmesh/schema"
	"github.com/hupe1980/botmesh/state"
)

// Options configures the BotMesh instance.
type Options struct {
	// Storage backs conversation and user state. Defaults to an in-memory
	// implementation if not provided.
	Storage state.Storage

	// Middleware run on every turn, in order, after the built-in typing
	// middleware and before state autosave.
	Middleware []core.Middleware

	// OnTurnError routes pipeline errors; nil propagates them to the caller
	// of ProcessActivity / ContinueConversation.
	OnTurnError adapter.TurnErrorHandler

	// DefaultLocale seeds the turn locale when the inbound activity carries
	// none.
	DefaultLocale string

	// ShowTyping keeps a typing indicator alive on the channel while a
	// message turn is still being processed.
	ShowTyping bool

	// TokenPolling arms background token-exchange polling whenever the bot
	// sends an OAuth card.
	TokenPolling bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// BotMesh is the high-level façade aggregating the adapter and the state
// scopes every turn reads and writes.
type BotMesh struct {
	opts              Options
	adapter           *adapter.CloudAdapter
	conversationState *state.ConversationState
	userState         *state.UserState
}

// New creates a new BotMesh instance over the given Auth capability with
// optional overrides. Any unset service is initialized with an in-memory
// implementation.
func New(auth core.Auth, optFns ...func(o *Options)) *BotMesh {
	opts := Options{
		Storage:      state.NewMemoryStorage(),
		TokenPolling: true,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	conversationState := state.NewConversationState(opts.Storage, func(o *state.Options) {
		o.Logger = opts.Logger
	})
	userState := state.NewUserState(opts.Storage, func(o *state.Options) {
		o.Logger = opts.Logger
	})

	pipeline := make([]core.Middleware, 0, len(opts.Middleware)+2)
	if opts.ShowTyping {
		pipeline = append(pipeline, middleware.NewShowTyping(func(o *middleware.ShowTypingOptions) {
			o.Logger = opts.Logger
		}))
	}
	pipeline = append(pipeline, opts.Middleware...)
	pipeline = append(pipeline, state.NewAutoSaveMiddleware(conversationState.BotState, userState.BotState))

	var poller *oauth.TokenPoller
	if opts.TokenPolling {
		poller = oauth.NewTokenPoller(func(o *oauth.PollerOptions) {
			o.Logger = opts.Logger
		})
	}

	a := adapter.New(auth, func(o *adapter.Options) {
		o.Middleware = pipeline
		o.OnTurnError = opts.OnTurnError
		o.DefaultLocale = opts.DefaultLocale
		o.TokenPoller = poller
		o.Logger = opts.Logger
	})

	return &BotMesh{
		opts:              opts,
		adapter:           a,
		conversationState: conversationState,
		userState:         userState,
	}
}

// Adapter exposes the underlying CloudAdapter for hosts that need direct
// access, e.g. to register additional middleware.
func (m *BotMesh) Adapter() *adapter.CloudAdapter { return m.adapter }

// ConversationState returns the per-conversation state scope.
func (m *BotMesh) ConversationState() *state.ConversationState { return m.conversationState }

// UserState returns the per-user state scope.
func (m *BotMesh) UserState() *state.UserState { return m.userState }

// ProcessActivity runs one reactive turn for the inbound activity against
// the given bot. The returned InvokeResponse is non-nil for expectReplies
// and invoke turns.
func (m *BotMesh) ProcessActivity(ctx context.Context, authHeader string, activity *schema.Activity, bot core.Bot) (*schema.InvokeResponse, error) {
	return m.adapter.ProcessActivity(ctx, authHeader, activity, bot.OnTurn)
}

// ContinueConversation starts a proactive turn for the referenced
// conversation under the given bot app id.
func (m *BotMesh) ContinueConversation(ctx context.Context, appID string, reference *schema.ConversationReference, callback core.HandlerFunc) error {
	return m.adapter.ContinueConversation(ctx, appID, reference, callback)
}
