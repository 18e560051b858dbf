package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/logging"
	"github.com/hupe1980/botmesh/oauth"
	"github.com/hupe1980/botmesh/schema"
)

// TurnErrorHandler receives any error raised by middleware or the bot
// callback once a TurnContext exists. Returning nil swallows the error;
// the context is still open, so the handler may send a final message or an
// emulator trace.
type TurnErrorHandler func(tc *core.TurnContext, turnErr error) error

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Middleware run on every turn, in order, before the bot callback.
	Middleware []core.Middleware
	// OnTurnError routes pipeline errors; nil propagates them to the
	// caller of ProcessActivity / ContinueConversation.
	OnTurnError TurnErrorHandler
	// DefaultLocale seeds the turn locale when the activity carries none
	// (or an unparseable one).
	DefaultLocale string
	// TokenPoller arms background token polling whenever an OAuth card is
	// sent. Nil disables polling.
	TokenPoller *oauth.TokenPoller
	// Logger receives adapter diagnostics. Defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// CloudAdapter authenticates inbound requests, builds turn contexts and
// drives the pipeline for reactive and proactive conversations. Public
// methods are safe for concurrent use; each turn gets its own TurnContext.
type CloudAdapter struct {
	auth          core.Auth
	middleware    *core.MiddlewareSet
	onTurnError   TurnErrorHandler
	defaultLocale string
	tokenPoller   *oauth.TokenPoller
	logger        logging.Logger

	// connectorClients is process-wide and keyed by app id, audience and
	// service URL; many turns across different conversations hit it
	// concurrently.
	connectorClients *Cache[core.ConnectorClient]
}

var _ core.Adapter = (*CloudAdapter)(nil)

// New constructs a CloudAdapter over the given Auth capability with
// optional overrides.
func New(auth core.Auth, optFns ...func(o *Options)) *CloudAdapter {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &CloudAdapter{
		auth:             auth,
		middleware:       core.NewMiddlewareSet(opts.Middleware...),
		onTurnError:      opts.OnTurnError,
		defaultLocale:    opts.DefaultLocale,
		tokenPoller:      opts.TokenPoller,
		logger:           opts.Logger,
		connectorClients: NewCache[core.ConnectorClient](),
	}
}

// Use appends middleware to the adapter's pipeline.
func (a *CloudAdapter) Use(middleware ...core.Middleware) *CloudAdapter {
	a.middleware.Use(middleware...)
	return a
}

// ProcessActivity is the reactive entry point: one inbound activity, one
// turn. The returned InvokeResponse is non-nil for expectReplies turns and
// invoke turns; otherwise there is no body to return.
func (a *CloudAdapter) ProcessActivity(ctx context.Context, authHeader string, activity *schema.Activity, callback core.HandlerFunc) (*schema.InvokeResponse, error) {
	if activity == nil {
		return nil, core.ErrMissingActivity
	}
	if activity.Type == "" {
		return nil, core.ErrMissingType
	}

	result, err := a.auth.AuthenticateRequest(ctx, activity, authHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	activity.CallerID = result.CallerID

	connector, err := a.createConnectorClient(ctx, result.ConnectorFactory, result.Identity, activity.ServiceURL, result.Audience)
	if err != nil {
		return nil, fmt.Errorf("create connector client: %w", err)
	}

	tokenClient, err := a.auth.CreateUserTokenClient(ctx, result.Identity)
	if err != nil {
		return nil, fmt.Errorf("create user token client: %w", err)
	}

	tc, err := a.createTurnContext(ctx, activity, result.Identity, result.Audience, connector, tokenClient, callback)
	if err != nil {
		return nil, err
	}
	defer tc.Close()

	if err := a.RunPipeline(tc, callback); err != nil {
		return nil, err
	}

	return a.processTurnResults(tc)
}

// ContinueConversation is the proactive entry point: it synthesizes a
// continuation activity from the reference and runs the identical pipeline
// under a hand-crafted identity for the given bot app id.
func (a *CloudAdapter) ContinueConversation(ctx context.Context, appID string, reference *schema.ConversationReference, callback core.HandlerFunc) error {
	identity := &core.Identity{Claims: map[string]string{
		core.AudienceClaim: appID,
		core.AppIDClaim:    appID,
	}}
	return a.processProactive(ctx, identity, reference, "", callback, nil)
}

// ContinueConversationWithIdentity is the proactive entry point for hosts
// that already hold an authenticated identity, optionally targeting a
// specific audience.
func (a *CloudAdapter) ContinueConversationWithIdentity(ctx context.Context, identity *core.Identity, reference *schema.ConversationReference, audience string, callback core.HandlerFunc) error {
	if identity == nil {
		return fmt.Errorf("identity must not be nil")
	}
	return a.processProactive(ctx, identity, reference, audience, callback, nil)
}

// processProactive is the shared implementation behind every bot-initiated
// turn, including re-injected token-response turns (inbound override).
func (a *CloudAdapter) processProactive(ctx context.Context, identity *core.Identity, reference *schema.ConversationReference, audience string, callback core.HandlerFunc, inbound *schema.Activity) error {
	if reference == nil {
		return fmt.Errorf("conversation reference must not be nil")
	}
	if callback == nil {
		return fmt.Errorf("callback must not be nil")
	}

	factory, err := a.auth.CreateConnectorFactory(ctx, identity)
	if err != nil {
		return fmt.Errorf("create connector factory: %w", err)
	}

	if inbound == nil {
		inbound = reference.GetContinuationActivity()
	}
	if audience == "" {
		audience = identity.Audience()
	}

	connector, err := a.createConnectorClient(ctx, factory, identity, inbound.ServiceURL, audience)
	if err != nil {
		return fmt.Errorf("create connector client: %w", err)
	}

	tokenClient, err := a.auth.CreateUserTokenClient(ctx, identity)
	if err != nil {
		return fmt.Errorf("create user token client: %w", err)
	}

	tc, err := a.createTurnContext(ctx, inbound, identity, audience, connector, tokenClient, callback)
	if err != nil {
		return err
	}
	defer tc.Close()

	return a.RunPipeline(tc, callback)
}

func (a *CloudAdapter) createTurnContext(ctx context.Context, activity *schema.Activity, identity *core.Identity, audience string, connector core.ConnectorClient, tokenClient core.UserTokenClient, callback core.HandlerFunc) (*core.TurnContext, error) {
	tc, err := core.NewTurnContext(ctx, a, activity)
	if err != nil {
		return nil, err
	}

	turnState := tc.TurnState()
	turnState.Set(core.IdentityKey, identity)
	turnState.Set(core.OAuthScopeKey, audience)
	turnState.Set(core.ConnectorClientKey, connector)
	if tokenClient != nil {
		turnState.Set(core.UserTokenClientKey, tokenClient)
	}
	if callback != nil {
		turnState.Set(core.CallbackKey, callback)
	}
	return tc, nil
}

func (a *CloudAdapter) createConnectorClient(ctx context.Context, factory core.ConnectorFactory, identity *core.Identity, serviceURL, audience string) (core.ConnectorClient, error) {
	if factory == nil {
		return nil, fmt.Errorf("no connector factory available")
	}
	key := strings.Join([]string{identity.AppID(), audience, serviceURL}, "|")
	return a.connectorClients.GetOrCreate(key, func() (core.ConnectorClient, error) {
		return factory.Create(ctx, serviceURL, audience)
	})
}

// RunPipeline seeds the turn locale, runs the middleware set and the bot
// callback, and routes any error to the turn error handler when one is
// registered.
func (a *CloudAdapter) RunPipeline(tc *core.TurnContext, callback core.HandlerFunc) error {
	locale := a.defaultLocale
	if raw := tc.Activity().Locale; raw != "" {
		// A bad locale string never fails the turn; fall back silently.
		if tag, err := language.Parse(raw); err == nil {
			locale = tag.String()
		}
	}
	if locale != "" {
		tc.TurnState().Set(core.LocaleKey, locale)
	}

	err := a.middleware.Run(tc, callback)
	if err != nil {
		a.logger.Error("turn failed", "activity_type", tc.Activity().Type, "error", err)
		if a.onTurnError != nil {
			return a.onTurnError(tc, err)
		}
	}
	return err
}

// processTurnResults extracts the turn's result left on the context.
func (a *CloudAdapter) processTurnResults(tc *core.TurnContext) (*schema.InvokeResponse, error) {
	// expectReplies: the whole buffered batch is the body.
	if tc.Activity().DeliveryMode == schema.DeliveryModeExpectReplies {
		return &schema.InvokeResponse{
			Status: http.StatusOK,
			Body:   &schema.ExpectedReplies{Activities: tc.BufferedReplies()},
		}, nil
	}

	// Invoke turns must have produced a response by now.
	if tc.Activity().IsType(schema.ActivityInvoke) {
		responseActivity, ok := core.StateValue[*schema.Activity](tc.TurnState(), core.InvokeResponseKey)
		if !ok {
			return &schema.InvokeResponse{Status: http.StatusNotImplemented}, ErrMissingInvokeResponse
		}
		if response, ok := responseActivity.Value.(*schema.InvokeResponse); ok {
			return response, nil
		}
		return &schema.InvokeResponse{Status: http.StatusNotImplemented}, ErrMissingInvokeResponse
	}

	// No body to return.
	return nil, nil
}

// SendActivities is the terminal step of the send-interceptor chain.
// Delay activities suspend the turn, invokeResponse activities are captured
// into turn state, traces only reach the emulator, everything else goes to
// the connector as a reply or a new conversation post. Every activity gets
// a 1:1 response, synthesized when the connector returns none.
func (a *CloudAdapter) SendActivities(ctx context.Context, tc *core.TurnContext, activities []*schema.Activity) ([]*schema.ResourceResponse, error) {
	if tc == nil {
		return nil, fmt.Errorf("turn context must not be nil")
	}
	if len(activities) == 0 {
		return nil, core.ErrEmptyBatch
	}

	responses := make([]*schema.ResourceResponse, len(activities))
	for i, activity := range activities {
		if activity == nil {
			return nil, core.ErrMissingActivity
		}

		// The channel assigns the id; never send a stale one.
		activity.ID = ""

		var response *schema.ResourceResponse
		switch {
		case activity.IsType(schema.ActivityDelay):
			if err := delayTurn(ctx, activity.Value); err != nil {
				return nil, err
			}

		case activity.IsType(schema.ActivityInvokeResponse):
			tc.TurnState().Set(core.InvokeResponseKey, activity)

		case activity.IsType(schema.ActivityTrace) && activity.ChannelID != schema.ChannelEmulator:
			// Traces are debugging-only; drop them off-emulator.

		default:
			connector, ok := core.StateValue[core.ConnectorClient](tc.TurnState(), core.ConnectorClientKey)
			if !ok {
				return nil, ErrMissingConnector
			}

			var err error
			if activity.ReplyToID != "" {
				response, err = connector.ReplyToActivity(ctx, activity)
			} else {
				response, err = connector.SendToConversation(ctx, activity)
			}
			if err != nil {
				return nil, fmt.Errorf("send activity: %w", err)
			}

			a.startTokenPollingIfNeeded(ctx, tc, activity)
		}

		if response == nil {
			response = &schema.ResourceResponse{ID: activity.ID}
		}
		responses[i] = response
	}
	return responses, nil
}

// UpdateActivity is the terminal step of the update-interceptor chain.
func (a *CloudAdapter) UpdateActivity(ctx context.Context, tc *core.TurnContext, activity *schema.Activity) (*schema.ResourceResponse, error) {
	if activity == nil {
		return nil, core.ErrMissingActivity
	}
	connector, ok := core.StateValue[core.ConnectorClient](tc.TurnState(), core.ConnectorClientKey)
	if !ok {
		return nil, ErrMissingConnector
	}

	response, err := connector.UpdateActivity(ctx, activity)
	if err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}
	if response == nil {
		response = &schema.ResourceResponse{ID: activity.ID}
	}
	return response, nil
}

// DeleteActivity is the terminal step of the delete-interceptor chain.
func (a *CloudAdapter) DeleteActivity(ctx context.Context, tc *core.TurnContext, reference *schema.ConversationReference) error {
	if reference == nil || reference.Conversation == nil {
		return fmt.Errorf("conversation reference must address a conversation")
	}
	connector, ok := core.StateValue[core.ConnectorClient](tc.TurnState(), core.ConnectorClientKey)
	if !ok {
		return ErrMissingConnector
	}

	if err := connector.DeleteActivity(ctx, reference.Conversation.ID, reference.ActivityID); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// startTokenPollingIfNeeded arms the token-exchange poller when an OAuth
// card just went out. The poll runs unawaited; on success it re-injects a
// tokens/response event as a brand-new inbound turn.
func (a *CloudAdapter) startTokenPollingIfNeeded(ctx context.Context, tc *core.TurnContext, activity *schema.Activity) {
	if a.tokenPoller == nil {
		return
	}
	card := oauth.FindOAuthCard(activity)
	if card == nil || card.ConnectionName == "" {
		return
	}

	inbound := tc.Activity()
	if inbound.From == nil || inbound.From.ID == "" {
		return
	}

	tokenClient, ok := core.StateValue[core.UserTokenClient](tc.TurnState(), core.UserTokenClientKey)
	if !ok {
		return
	}
	callback, ok := core.StateValue[core.HandlerFunc](tc.TurnState(), core.CallbackKey)
	if !ok {
		return
	}
	identity, _ := core.StateValue[*core.Identity](tc.TurnState(), core.IdentityKey)

	args := oauth.PollArgs{
		UserID:         inbound.From.ID,
		ConnectionName: card.ConnectionName,
		ChannelID:      inbound.ChannelID,
		Reference:      inbound.GetConversationReference(),
	}

	a.logger.Debug("starting token polling", "connection", card.ConnectionName, "user", args.UserID)

	go a.tokenPoller.Poll(ctx, tokenClient, args, func(pollCtx context.Context, args oauth.PollArgs, response *schema.TokenResponse) error {
		return a.injectTokenResponse(pollCtx, identity, args, response, callback)
	})
}

// injectTokenResponse starts the brand-new inbound turn that carries the
// polled token to the bot.
func (a *CloudAdapter) injectTokenResponse(ctx context.Context, identity *core.Identity, args oauth.PollArgs, response *schema.TokenResponse, callback core.HandlerFunc) error {
	activity := schema.NewEventActivity(schema.TokenResponseEventName, response)
	activity.ApplyConversationReference(args.Reference, true)
	activity.ID = schema.NewID()
	return a.processProactive(ctx, identity, args.Reference, "", callback, activity)
}

// delayTurn suspends the turn for the duration carried by a delay
// activity, honoring cancellation.
func delayTurn(ctx context.Context, value any) error {
	var d time.Duration
	switch v := value.(type) {
	case time.Duration:
		d = v
	case int:
		d = time.Duration(v) * time.Millisecond
	case int64:
		d = time.Duration(v) * time.Millisecond
	case float64:
		d = time.Duration(v) * time.Millisecond
	default:
		return nil
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
