package state

import (
	"fmt"

	"github.com/hupe1980/botmesh/core"
)

// ConversationState persists state scoped to one conversation on one
// channel.
type ConversationState struct {
	*BotState
}

// NewConversationState creates the conversation scope over storage.
func NewConversationState(storage Storage, optFns ...func(o *Options)) *ConversationState {
	return &ConversationState{
		BotState: NewBotState(storage, "botmesh.conversationState", conversationStorageKey, optFns...),
	}
}

func conversationStorageKey(tc *core.TurnContext) (string, error) {
	activity := tc.Activity()
	if activity.ChannelID == "" {
		return "", fmt.Errorf("conversation state: activity is missing channelId")
	}
	if activity.Conversation == nil || activity.Conversation.ID == "" {
		return "", fmt.Errorf("conversation state: activity is missing conversation.id")
	}
	return fmt.Sprintf("%s/conversations/%s", activity.ChannelID, activity.Conversation.ID), nil
}

// UserState persists state scoped to one user on one channel.
type UserState struct {
	*BotState
}

// NewUserState creates the user scope over storage.
func NewUserState(storage Storage, optFns ...func(o *Options)) *UserState {
	return &UserState{
		BotState: NewBotState(storage, "botmesh.userState", userStorageKey, optFns...),
	}
}

func userStorageKey(tc *core.TurnContext) (string, error) {
	activity := tc.Activity()
	if activity.ChannelID == "" {
		return "", fmt.Errorf("user state: activity is missing channelId")
	}
	if activity.From == nil || activity.From.ID == "" {
		return "", fmt.Errorf("user state: activity is missing from.id")
	}
	return fmt.Sprintf("%s/users/%s", activity.ChannelID, activity.From.ID), nil
}
