package testutil

import (
	"github.com/hupe1980/botmesh/schema"
)

// ActivityBuilder provides a fluent helper for constructing activities in
// tests. Example:
//
//	activity := NewActivityBuilder(schema.ActivityMessage).Text("hi").Conversation("conv-1").Build()
//
// Chain only the parts you need; sensible routing defaults are applied.
type ActivityBuilder struct {
	activity *schema.Activity
}

// NewActivityBuilder creates a builder for an activity of the given type
// with default routing (channel "test", conversation "conv-1", user
// "user-1", bot "bot-1", service URL "https://service.example").
func NewActivityBuilder(activityType string) *ActivityBuilder {
	return &ActivityBuilder{activity: &schema.Activity{
		Type:         activityType,
		ID:           "activity-1",
		ChannelID:    "test",
		ServiceURL:   "https://service.example",
		From:         &schema.ChannelAccount{ID: "user-1", Name: "User"},
		Recipient:    &schema.ChannelAccount{ID: "bot-1", Name: "Bot"},
		Conversation: &schema.ConversationAccount{ID: "conv-1"},
	}}
}

// NewMessage creates a message activity with the given text and default
// routing.
func NewMessage(text string) *schema.Activity {
	return NewActivityBuilder(schema.ActivityMessage).Text(text).Build()
}

// ID overrides the activity id (chainable).
func (b *ActivityBuilder) ID(id string) *ActivityBuilder { b.activity.ID = id; return b }

// Name sets the activity name (chainable). Used by event and invoke turns.
func (b *ActivityBuilder) Name(name string) *ActivityBuilder { b.activity.Name = name; return b }

// Text sets the message text (chainable).
func (b *ActivityBuilder) Text(text string) *ActivityBuilder { b.activity.Text = text; return b }

// Value sets the activity payload (chainable).
func (b *ActivityBuilder) Value(value any) *ActivityBuilder { b.activity.Value = value; return b }

// Channel overrides the channel id (chainable).
func (b *ActivityBuilder) Channel(channelID string) *ActivityBuilder {
	b.activity.ChannelID = channelID
	return b
}

// Conversation overrides the conversation id (chainable).
func (b *ActivityBuilder) Conversation(conversationID string) *ActivityBuilder {
	b.activity.Conversation = &schema.ConversationAccount{ID: conversationID}
	return b
}

// From overrides the sender (chainable).
func (b *ActivityBuilder) From(id, name string) *ActivityBuilder {
	b.activity.From = &schema.ChannelAccount{ID: id, Name: name}
	return b
}

// Recipient overrides the recipient (chainable).
func (b *ActivityBuilder) Recipient(id, name string) *ActivityBuilder {
	b.activity.Recipient = &schema.ChannelAccount{ID: id, Name: name}
	return b
}

// Locale sets the activity locale (chainable).
func (b *ActivityBuilder) Locale(locale string) *ActivityBuilder {
	b.activity.Locale = locale
	return b
}

// DeliveryMode sets the delivery mode, e.g. schema.DeliveryModeExpectReplies
// (chainable).
func (b *ActivityBuilder) DeliveryMode(mode string) *ActivityBuilder {
	b.activity.DeliveryMode = mode
	return b
}

// ReplyTo sets the replied-to activity id (chainable).
func (b *ActivityBuilder) ReplyTo(activityID string) *ActivityBuilder {
	b.activity.ReplyToID = activityID
	return b
}

// MembersAdded appends added members by id (chainable).
func (b *ActivityBuilder) MembersAdded(ids ...string) *ActivityBuilder {
	for _, id := range ids {
		b.activity.MembersAdded = append(b.activity.MembersAdded, schema.ChannelAccount{ID: id})
	}
	return b
}

// MembersRemoved appends removed members by id (chainable).
func (b *ActivityBuilder) MembersRemoved(ids ...string) *ActivityBuilder {
	for _, id := range ids {
		b.activity.MembersRemoved = append(b.activity.MembersRemoved, schema.ChannelAccount{ID: id})
	}
	return b
}

// Build returns the constructed activity.
func (b *ActivityBuilder) Build() *schema.Activity { return b.activity }
