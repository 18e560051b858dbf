package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mentionedMessage() *Activity {
	return &Activity{
		Type:      ActivityMessage,
		Text:      "<at>EchoBot</at> run report",
		Recipient: &ChannelAccount{ID: "bot-1", Name: "EchoBot"},
		Entities: []map[string]any{
			{
				"type":      "mention",
				"text":      "<at>EchoBot</at>",
				"mentioned": map[string]any{"id": "bot-1", "name": "EchoBot"},
			},
			{"type": "clientInfo", "platform": "Web"},
		},
	}
}

func TestActivity_GetMentions(t *testing.T) {
	mentions := mentionedMessage().GetMentions()

	assert.Len(t, mentions, 1)
	assert.Equal(t, "<at>EchoBot</at>", mentions[0].Text)
	assert.Equal(t, "bot-1", mentions[0].Mentioned.ID)
}

func TestActivity_RemoveRecipientMention(t *testing.T) {
	activity := mentionedMessage()

	assert.Equal(t, "run report", activity.RemoveRecipientMention())
	assert.Equal(t, "run report", activity.Text)
}

func TestActivity_RemoveRecipientMention_OtherUserKept(t *testing.T) {
	activity := mentionedMessage()
	activity.Entities[0]["mentioned"] = map[string]any{"id": "user-2"}

	assert.Equal(t, "<at>EchoBot</at> run report", activity.RemoveRecipientMention())
}

func TestActivity_RemoveRecipientMention_NoRecipient(t *testing.T) {
	activity := mentionedMessage()
	activity.Recipient = nil

	assert.Equal(t, "<at>EchoBot</at> run report", activity.RemoveRecipientMention())
}
