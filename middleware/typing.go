package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/logging"
	"github.com/hupe1980/botmesh/schema"
)

// Default typing cadence: first indicator after Delay, then one per Period.
const (
	DefaultTypingDelay  = 500 * time.Millisecond
	DefaultTypingPeriod = 2 * time.Second
)

// ShowTypingOptions configures ShowTyping.
type ShowTypingOptions struct {
	// Delay before the first typing activity.
	Delay time.Duration
	// Period between subsequent typing activities.
	Period time.Duration
	// Logger receives worker diagnostics. Defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// ShowTyping sends periodic typing activities while a message turn is being
// processed. Indicators are delivered directly through the adapter,
// bypassing the send-interceptor chain, so the turn is never marked as
// responded by its own typing. The worker is cancelled and awaited when the
// bot sends its first real message activity and unconditionally at turn
// end; no typing worker outlives its turn. Skill-to-skill turns are
// skipped, since the calling bot manages the user-facing indicator.
type ShowTyping struct {
	delay  time.Duration
	period time.Duration
	logger logging.Logger

	mu      sync.Mutex
	workers map[string]*typingWorker
}

var _ core.Middleware = (*ShowTyping)(nil)

// NewShowTyping constructs the middleware with optional overrides.
func NewShowTyping(optFns ...func(o *ShowTypingOptions)) *ShowTyping {
	opts := ShowTypingOptions{
		Delay:  DefaultTypingDelay,
		Period: DefaultTypingPeriod,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ShowTyping{
		delay:   opts.Delay,
		period:  opts.Period,
		logger:  opts.Logger,
		workers: make(map[string]*typingWorker),
	}
}

// OnTurn implements core.Middleware.
func (m *ShowTyping) OnTurn(tc *core.TurnContext, next core.NextFunc) error {
	activity := tc.Activity()
	if !activity.IsType(schema.ActivityMessage) || isSkillTurn(tc) || activity.Conversation == nil {
		return next()
	}

	conversationID := activity.Conversation.ID
	m.startWorker(tc, conversationID)
	defer m.stopWorker(conversationID)

	// The first real message from the bot ends the indicator before the
	// message goes out.
	if err := tc.AddSendHandler(func(tc *core.TurnContext, activities []*schema.Activity, next func() ([]*schema.ResourceResponse, error)) ([]*schema.ResourceResponse, error) {
		for _, outbound := range activities {
			if outbound.IsType(schema.ActivityMessage) {
				m.stopWorker(conversationID)
				break
			}
		}
		return next()
	}); err != nil {
		return err
	}

	return next()
}

func (m *ShowTyping) startWorker(tc *core.TurnContext, conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, running := m.workers[conversationID]; running {
		return
	}

	ctx, cancel := context.WithCancel(tc.Context())
	w := &typingWorker{cancel: cancel, done: make(chan struct{})}
	m.workers[conversationID] = w

	go w.run(ctx, tc, m.delay, m.period, m.logger)
}

// stopWorker cancels the conversation's worker and waits for it to finish.
// It is safe to call repeatedly.
func (m *ShowTyping) stopWorker(conversationID string) {
	m.mu.Lock()
	w := m.workers[conversationID]
	delete(m.workers, conversationID)
	m.mu.Unlock()

	if w == nil {
		return
	}
	w.cancel()
	<-w.done
}

type typingWorker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// run sends typing indicators until cancelled. Errors never escape the
// worker boundary; cancellation is normal termination.
func (w *typingWorker) run(ctx context.Context, tc *core.TurnContext, delay, period time.Duration, logger logging.Logger) {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("typing worker panicked", "recovered", r)
		}
	}()

	reference := tc.Activity().GetConversationReference()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		typing := schema.NewTypingActivity()
		typing.ApplyConversationReference(reference, false)
		typing.ReplyToID = ""

		// Straight through the adapter: no interceptors, no responded flag.
		if _, err := tc.Adapter().SendActivities(ctx, tc, []*schema.Activity{typing}); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Debug("typing indicator send failed", "error", err)
		}

		timer.Reset(period)
	}
}

func isSkillTurn(tc *core.TurnContext) bool {
	identity, ok := core.StateValue[*core.Identity](tc.TurnState(), core.IdentityKey)
	return ok && identity.IsSkill()
}
