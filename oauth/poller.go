package oauth

import (
	"context"
	"time"

	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/logging"
	"github.com/hupe1980/botmesh/schema"
)

// Default polling cadence. The token service may override both per poll via
// the tokenPollingSettings property on its responses; a non-positive
// timeout override stops the poll.
const (
	DefaultPollingInterval = time.Second
	DefaultPollingTimeout  = 15 * time.Minute
)

// pollingSettingsProperty is the TokenResponse property carrying overrides:
// {"interval": <ms>, "timeout": <ms>}.
const pollingSettingsProperty = "tokenPollingSettings"

// PollArgs identifies one pending sign-in to poll for.
type PollArgs struct {
	UserID         string
	ConnectionName string
	ChannelID      string
	MagicCode      string

	// Reference addresses the conversation the sign-in started in; the
	// synthesized tokens/response turn is routed there.
	Reference *schema.ConversationReference
}

// TokenHandler receives the token once polling succeeds. The engine wires
// this to re-inject a tokens/response event as a brand-new inbound turn.
type TokenHandler func(ctx context.Context, args PollArgs, response *schema.TokenResponse) error

// PollerOptions configures a TokenPoller.
type PollerOptions struct {
	// Interval between token-service probes.
	Interval time.Duration
	// Timeout bounds the whole poll; expiration is the only cancellation.
	Timeout time.Duration
	// Logger receives poll diagnostics. Defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// TokenPoller polls the token service after an OAuth card went out, waiting
// for the user to finish signing in. Poll is designed to run as a
// fire-and-forget goroutine: it never returns an error and never panics
// past its own boundary; cancellation is purely timeout-driven.
type TokenPoller struct {
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
}

// NewTokenPoller constructs a poller with optional overrides.
func NewTokenPoller(optFns ...func(o *PollerOptions)) *TokenPoller {
	opts := PollerOptions{
		Interval: DefaultPollingInterval,
		Timeout:  DefaultPollingTimeout,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &TokenPoller{
		interval: opts.Interval,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}
}

// Poll probes the token service until a token appears or the timeout
// elapses, then hands the token to onToken. The parent context's
// cancellation is deliberately detached: the turn that sent the OAuth card
// finishes long before the user signs in.
func (p *TokenPoller) Poll(ctx context.Context, client core.UserTokenClient, args PollArgs, onToken TokenHandler) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("token poller panicked", "recovered", r)
		}
	}()

	if client == nil || onToken == nil {
		return
	}

	// The deadline lives outside the context because the token service may
	// move it per poll; contexts cannot be extended or shortened in place.
	interval := p.interval
	deadline := time.Now().Add(p.timeout)
	pollCtx := context.WithoutCancel(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()
	expiry := time.NewTimer(time.Until(deadline))
	defer expiry.Stop()

	for {
		select {
		case <-expiry.C:
			p.logger.Debug("token polling timed out",
				"connection", args.ConnectionName, "user", args.UserID)
			return
		case <-timer.C:
		}

		response, err := client.GetUserToken(pollCtx, args.UserID, args.ConnectionName, args.ChannelID, args.MagicCode)
		if err != nil {
			p.logger.Debug("token poll failed", "error", err)
		}

		if response != nil {
			if response.Token != "" {
				if err := onToken(pollCtx, args, response); err != nil {
					p.logger.Error("token response injection failed", "error", err)
				}
				return
			}
			previous := deadline
			var stop bool
			interval, deadline, stop = p.applyOverrides(response, interval, deadline)
			if stop {
				return
			}
			if !deadline.Equal(previous) {
				if !expiry.Stop() {
					select {
					case <-expiry.C:
					default:
					}
				}
				expiry.Reset(time.Until(deadline))
			}
		}

		timer.Reset(interval)
	}
}

// applyOverrides folds the token service's own polling hints into the loop:
// a positive interval replaces the probe cadence, a positive timeout moves
// the deadline relative to now, and a non-positive timeout stops the poll.
func (p *TokenPoller) applyOverrides(response *schema.TokenResponse, interval time.Duration, deadline time.Time) (time.Duration, time.Time, bool) {
	settings, ok := response.Properties[pollingSettingsProperty].(map[string]any)
	if !ok {
		return interval, deadline, false
	}
	if raw, ok := settings["interval"].(float64); ok && raw > 0 {
		interval = time.Duration(raw) * time.Millisecond
	}
	if raw, ok := settings["timeout"].(float64); ok {
		if raw <= 0 {
			return interval, deadline, true
		}
		deadline = time.Now().Add(time.Duration(raw) * time.Millisecond)
	}
	return interval, deadline, false
}
