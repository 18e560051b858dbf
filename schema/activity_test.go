package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func inboundMessage() *Activity {
	return &Activity{
		Type:         ActivityMessage,
		ID:           "act-1",
		ChannelID:    "test",
		ServiceURL:   "https://service.example",
		Text:         "hello",
		Locale:       "en-US",
		From:         &ChannelAccount{ID: "user-1", Name: "User"},
		Recipient:    &ChannelAccount{ID: "bot-1", Name: "Bot"},
		Conversation: &ConversationAccount{ID: "conv-1"},
	}
}

func TestActivity_IsType(t *testing.T) {
	activity := &Activity{Type: " Message "}

	assert.True(t, activity.IsType(ActivityMessage))
	assert.True(t, activity.IsType("MESSAGE"))
	assert.False(t, activity.IsType(ActivityEvent))
}

func TestActivity_GetConversationReference(t *testing.T) {
	activity := inboundMessage()

	reference := activity.GetConversationReference()

	assert.Equal(t, "act-1", reference.ActivityID)
	assert.Equal(t, "user-1", reference.User.ID)
	assert.Equal(t, "bot-1", reference.Bot.ID)
	assert.Equal(t, "conv-1", reference.Conversation.ID)
	assert.Equal(t, "test", reference.ChannelID)
	assert.Equal(t, "https://service.example", reference.ServiceURL)
	assert.Equal(t, "en-US", reference.Locale)

	// The reference owns copies, not the activity's accounts.
	reference.User.ID = "mutated"
	assert.Equal(t, "user-1", activity.From.ID)
}

func TestActivity_ApplyConversationReference_Outgoing(t *testing.T) {
	reference := inboundMessage().GetConversationReference()

	reply := &Activity{Type: ActivityMessage, Text: "hi"}
	reply.ApplyConversationReference(reference, false)

	assert.Equal(t, "bot-1", reply.From.ID)
	assert.Equal(t, "user-1", reply.Recipient.ID)
	assert.Equal(t, "conv-1", reply.Conversation.ID)
	assert.Equal(t, "act-1", reply.ReplyToID)
	assert.Equal(t, "en-US", reply.Locale)
}

func TestActivity_ApplyConversationReference_Incoming(t *testing.T) {
	reference := inboundMessage().GetConversationReference()

	activity := &Activity{Type: ActivityEvent, Name: "test"}
	activity.ApplyConversationReference(reference, true)

	assert.Equal(t, "user-1", activity.From.ID)
	assert.Equal(t, "bot-1", activity.Recipient.ID)
	assert.Equal(t, "act-1", activity.ID)
	assert.Empty(t, activity.ReplyToID)
}

func TestActivity_CreateReply(t *testing.T) {
	activity := inboundMessage()

	reply := activity.CreateReply("pong", "")

	assert.Equal(t, ActivityMessage, reply.Type)
	assert.Equal(t, "pong", reply.Text)
	assert.Equal(t, "en-US", reply.Locale)
	assert.Equal(t, "bot-1", reply.From.ID)
	assert.Equal(t, "user-1", reply.Recipient.ID)
	assert.Equal(t, "act-1", reply.ReplyToID)
}

func TestConversationReference_GetContinuationActivity(t *testing.T) {
	reference := inboundMessage().GetConversationReference()

	continuation := reference.GetContinuationActivity()

	assert.Equal(t, ActivityEvent, continuation.Type)
	assert.Equal(t, ContinueConversationEventName, continuation.Name)
	assert.NotEmpty(t, continuation.ID)
	assert.Equal(t, "user-1", continuation.From.ID)
	assert.Equal(t, "bot-1", continuation.Recipient.ID)
	assert.Equal(t, "conv-1", continuation.Conversation.ID)
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
