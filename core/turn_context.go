package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/botmesh/schema"
)

// SendHandler intercepts an outbound batch of activities. Invoking next
// proceeds to the following handler (and ultimately the adapter); not
// invoking it short-circuits delivery, which callers must treat as a valid
// result rather than an error.
type SendHandler func(tc *TurnContext, activities []*schema.Activity, next func() ([]*schema.ResourceResponse, error)) ([]*schema.ResourceResponse, error)

// UpdateHandler intercepts an activity update on its way to the adapter.
type UpdateHandler func(tc *TurnContext, activity *schema.Activity, next func() (*schema.ResourceResponse, error)) (*schema.ResourceResponse, error)

// DeleteHandler intercepts an activity deletion on its way to the adapter.
type DeleteHandler func(tc *TurnContext, reference *schema.ConversationReference, next func() error) error

// TurnContext is the single point of outbound-activity interception and
// buffering for one turn. It owns the inbound activity (read-only for the
// turn), the TurnState registry and three ordered interceptor chains. A
// TurnContext is created once per inbound activity or proactive
// continuation, closed at turn end, and never shared across turns or
// goroutines.
type TurnContext struct {
	ctx      context.Context
	adapter  Adapter
	activity *schema.Activity
	state    *TurnState

	sendHandlers   []SendHandler
	updateHandlers []UpdateHandler
	deleteHandlers []DeleteHandler

	bufferedReplies []*schema.Activity
	responded       bool
	closed          bool
}

// NewTurnContext creates a context for one turn. The activity must be
// non-nil and carry a type.
func NewTurnContext(ctx context.Context, adapter Adapter, activity *schema.Activity) (*TurnContext, error) {
	if activity == nil {
		return nil, ErrMissingActivity
	}
	if activity.Type == "" {
		return nil, ErrMissingType
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &TurnContext{
		ctx:      ctx,
		adapter:  adapter,
		activity: activity,
		state:    NewTurnState(),
	}, nil
}

// Context returns the cancellation scope threaded from the top-level turn
// invocation.
func (tc *TurnContext) Context() context.Context { return tc.ctx }

// Activity returns the inbound activity for the turn.
func (tc *TurnContext) Activity() *schema.Activity { return tc.activity }

// Adapter returns the adapter driving this turn.
func (tc *TurnContext) Adapter() Adapter { return tc.adapter }

// TurnState returns the per-turn capability registry.
func (tc *TurnContext) TurnState() *TurnState { return tc.state }

// Responded reports whether at least one non-trace activity has been
// delivered or buffered during the turn.
func (tc *TurnContext) Responded() bool { return tc.responded }

// BufferedReplies returns the activities buffered under expectReplies
// delivery, in send order.
func (tc *TurnContext) BufferedReplies() []*schema.Activity {
	replies := make([]*schema.Activity, len(tc.bufferedReplies))
	copy(replies, tc.bufferedReplies)
	return replies
}

// Close ends the turn. Subsequent registrations and outbound operations
// fail with ErrContextClosed. Close is idempotent.
func (tc *TurnContext) Close() { tc.closed = true }

// Closed reports whether the turn has ended.
func (tc *TurnContext) Closed() bool { return tc.closed }

// AddSendHandler appends a send interceptor. Handlers run in registration
// order; there is no removal.
func (tc *TurnContext) AddSendHandler(h SendHandler) error {
	if tc.closed {
		return ErrContextClosed
	}
	tc.sendHandlers = append(tc.sendHandlers, h)
	return nil
}

// AddUpdateHandler appends an update interceptor.
func (tc *TurnContext) AddUpdateHandler(h UpdateHandler) error {
	if tc.closed {
		return ErrContextClosed
	}
	tc.updateHandlers = append(tc.updateHandlers, h)
	return nil
}

// AddDeleteHandler appends a delete interceptor.
func (tc *TurnContext) AddDeleteHandler(h DeleteHandler) error {
	if tc.closed {
		return ErrContextClosed
	}
	tc.deleteHandlers = append(tc.deleteHandlers, h)
	return nil
}

// SendText sends a plain text message reply.
func (tc *TurnContext) SendText(text string) (*schema.ResourceResponse, error) {
	return tc.SendActivity(schema.NewMessageActivity(text))
}

// SendActivity sends a single activity and returns its response.
func (tc *TurnContext) SendActivity(activity *schema.Activity) (*schema.ResourceResponse, error) {
	responses, err := tc.SendActivities(activity)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, nil
	}
	return responses[0], nil
}

// SendActivities binds each activity to the turn's conversation, walks the
// send-handler chain in registration order and finally hands the batch to
// the adapter. Under expectReplies delivery the batch is buffered instead
// and synthetic responses are returned.
func (tc *TurnContext) SendActivities(activities ...*schema.Activity) ([]*schema.ResourceResponse, error) {
	if tc.closed {
		return nil, ErrContextClosed
	}
	if len(activities) == 0 {
		return nil, ErrEmptyBatch
	}

	reference := tc.activity.GetConversationReference()
	for _, activity := range activities {
		if activity == nil {
			return nil, ErrMissingActivity
		}
		activity.ApplyConversationReference(reference, false)
		if activity.Type == "" {
			activity.Type = schema.ActivityMessage
		}
	}

	var run func(i int) ([]*schema.ResourceResponse, error)
	run = func(i int) ([]*schema.ResourceResponse, error) {
		if i == len(tc.sendHandlers) {
			return tc.deliver(activities)
		}
		return tc.sendHandlers[i](tc, activities, func() ([]*schema.ResourceResponse, error) {
			return run(i + 1)
		})
	}
	return run(0)
}

// deliver is the implicit terminal send handler.
func (tc *TurnContext) deliver(activities []*schema.Activity) ([]*schema.ResourceResponse, error) {
	if tc.activity.DeliveryMode == schema.DeliveryModeExpectReplies {
		responses := make([]*schema.ResourceResponse, len(activities))
		for i, activity := range activities {
			tc.bufferedReplies = append(tc.bufferedReplies, activity)
			if !activity.IsType(schema.ActivityTrace) {
				tc.responded = true
			}
			responses[i] = &schema.ResourceResponse{}
		}
		return responses, nil
	}

	responses, err := tc.adapter.SendActivities(tc.ctx, tc, activities)
	if err != nil {
		return nil, err
	}
	for i, activity := range activities {
		// The channel owns activity ids; carry the assigned id back onto
		// the sent activity so callers can address it later.
		if i < len(responses) && responses[i] != nil && responses[i].ID != "" {
			activity.ID = responses[i].ID
		}
		if !activity.IsType(schema.ActivityTrace) {
			tc.responded = true
		}
	}
	return responses, nil
}

// UpdateActivity replaces an existing activity in the conversation,
// chain-walking the update interceptors before the adapter performs the
// update.
func (tc *TurnContext) UpdateActivity(activity *schema.Activity) (*schema.ResourceResponse, error) {
	if tc.closed {
		return nil, ErrContextClosed
	}
	if activity == nil {
		return nil, ErrMissingActivity
	}

	reference := tc.activity.GetConversationReference()
	activity.ApplyConversationReference(reference, false)
	activity.ReplyToID = ""

	var run func(i int) (*schema.ResourceResponse, error)
	run = func(i int) (*schema.ResourceResponse, error) {
		if i == len(tc.updateHandlers) {
			return tc.adapter.UpdateActivity(tc.ctx, tc, activity)
		}
		return tc.updateHandlers[i](tc, activity, func() (*schema.ResourceResponse, error) {
			return run(i + 1)
		})
	}
	return run(0)
}

// DeleteActivityByID deletes the activity with the given id from the turn's
// conversation.
func (tc *TurnContext) DeleteActivityByID(activityID string) error {
	reference := tc.activity.GetConversationReference()
	reference.ActivityID = activityID
	return tc.DeleteActivity(reference)
}

// DeleteActivity removes the activity addressed by reference, chain-walking
// the delete interceptors before the adapter performs the deletion.
func (tc *TurnContext) DeleteActivity(reference *schema.ConversationReference) error {
	if tc.closed {
		return ErrContextClosed
	}
	if reference == nil {
		return fmt.Errorf("conversation reference must not be nil")
	}

	var run func(i int) error
	run = func(i int) error {
		if i == len(tc.deleteHandlers) {
			return tc.adapter.DeleteActivity(tc.ctx, tc, reference)
		}
		return tc.deleteHandlers[i](tc, reference, func() error {
			return run(i + 1)
		})
	}
	return run(0)
}
