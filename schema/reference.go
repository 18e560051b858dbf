package schema

import "time"

// ConversationReference is the minimal addressing tuple needed to route an
// activity back into a conversation: which channel, which service endpoint,
// which conversation, and the two parties. It is derived from an Activity
// and never independently mutated afterwards.
type ConversationReference struct {
	ActivityID   string               `json:"activityId,omitempty"`
	User         *ChannelAccount      `json:"user,omitempty"`
	Bot          *ChannelAccount      `json:"bot,omitempty"`
	Conversation *ConversationAccount `json:"conversation,omitempty"`
	ChannelID    string               `json:"channelId,omitempty"`
	ServiceURL   string               `json:"serviceUrl,omitempty"`
	Locale       string               `json:"locale,omitempty"`
}

// GetContinuationActivity synthesizes the inbound activity for a proactive
// turn. No real activity arrived from the channel, so a well-known event
// activity stands in and carries the reference's routing fields shaped as if
// it came from the user.
func (r *ConversationReference) GetContinuationActivity() *Activity {
	activity := &Activity{
		Type:      ActivityEvent,
		Name:      ContinueConversationEventName,
		ID:        NewID(),
		Timestamp: time.Now().UTC(),
	}
	activity.ApplyConversationReference(r, true)
	return activity
}
