package schema

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Activity type tags. Every activity routed through the engine carries
// exactly one of these (or a channel-specific extension tag, which falls
// through to the unrecognized-type path of a dispatcher).
const (
	ActivityMessage            = "message"
	ActivityMessageUpdate      = "messageUpdate"
	ActivityMessageDelete      = "messageDelete"
	ActivityConversationUpdate = "conversationUpdate"
	ActivityMessageReaction    = "messageReaction"
	ActivityEvent              = "event"
	ActivityInvoke             = "invoke"
	ActivityInvokeResponse     = "invokeResponse"
	ActivityEndOfConversation  = "endOfConversation"
	ActivityTyping             = "typing"
	ActivityInstallationUpdate = "installationUpdate"
	ActivityCommand            = "command"
	ActivityCommandResult      = "commandResult"
	ActivityTrace              = "trace"
	ActivityHandoff            = "handoff"

	// ActivityDelay never travels over the wire. Sending it suspends the
	// current turn for the duration carried in Value.
	ActivityDelay = "delay"
)

// Delivery modes controlling how outbound activities reach the channel.
const (
	DeliveryModeNormal        = "normal"
	DeliveryModeExpectReplies = "expectReplies"
)

// Well-known channel identifiers the core needs to recognize.
const (
	ChannelEmulator   = "emulator"
	ChannelMSTeams    = "msteams"
	ChannelDirectLine = "directline"
	ChannelWebchat    = "webchat"
	ChannelTest       = "test"
)

// Sign-in operation and event names used by OAuth flows.
const (
	SignInVerifyStateOperation   = "signin/verifyState"
	SignInTokenExchangeOperation = "signin/tokenExchange"
	TokenResponseEventName       = "tokens/response"
	SearchInvokeName             = "application/search"
	AdaptiveCardActionName       = "adaptiveCard/action"
)

// InstallationUpdate action values carried in Activity.Action.
const (
	InstallationUpdateAdd           = "add"
	InstallationUpdateAddUpgrade    = "add-upgrade"
	InstallationUpdateRemove        = "remove"
	InstallationUpdateRemoveUpgrade = "remove-upgrade"
)

// ContinueConversationEventName names the synthetic event activity used to
// start a proactive turn from a ConversationReference.
const ContinueConversationEventName = "ContinueConversation"

// NewID returns a fresh unique identifier for activities, turns and ETags.
func NewID() string { return uuid.NewString() }

// ChannelAccount identifies a user or bot on a channel.
type ChannelAccount struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// ConversationAccount identifies the conversation an activity belongs to.
type ConversationAccount struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	IsGroup  bool   `json:"isGroup,omitempty"`
	TenantID string `json:"tenantId,omitempty"`
}

// MessageReaction records a reaction (like, heart, ...) added to or removed
// from a prior message.
type MessageReaction struct {
	Type string `json:"type,omitempty"`
}

// Activity is the envelope for one message, event or system notification
// exchanged between a channel and the bot. Within a turn the inbound
// activity must be treated as read-only.
type Activity struct {
	Type           string                 `json:"type"`
	ID             string                 `json:"id,omitempty"`
	Name           string                 `json:"name,omitempty"`
	Timestamp      time.Time              `json:"timestamp,omitempty"`
	LocalTimestamp time.Time              `json:"localTimestamp,omitempty"`
	ChannelID      string                 `json:"channelId,omitempty"`
	ServiceURL     string                 `json:"serviceUrl,omitempty"`
	From           *ChannelAccount        `json:"from,omitempty"`
	Recipient      *ChannelAccount        `json:"recipient,omitempty"`
	Conversation   *ConversationAccount   `json:"conversation,omitempty"`
	ReplyToID      string                 `json:"replyToId,omitempty"`
	RelatesTo      *ConversationReference `json:"relatesTo,omitempty"`
	Text           string                 `json:"text,omitempty"`
	Locale         string                 `json:"locale,omitempty"`
	Value          any                    `json:"value,omitempty"`
	ValueType      string                 `json:"valueType,omitempty"`
	DeliveryMode   string                 `json:"deliveryMode,omitempty"`
	CallerID       string                 `json:"callerId,omitempty"`
	Label          string                 `json:"label,omitempty"`

	// conversationUpdate payload
	MembersAdded   []ChannelAccount `json:"membersAdded,omitempty"`
	MembersRemoved []ChannelAccount `json:"membersRemoved,omitempty"`

	// messageReaction payload
	ReactionsAdded   []MessageReaction `json:"reactionsAdded,omitempty"`
	ReactionsRemoved []MessageReaction `json:"reactionsRemoved,omitempty"`

	// installationUpdate payload
	Action string `json:"action,omitempty"`

	Attachments []Attachment     `json:"attachments,omitempty"`
	Entities    []map[string]any `json:"entities,omitempty"`
}

// IsType reports whether the activity carries the given type tag. The
// comparison ignores case and surrounding whitespace so hand-built and
// channel-built activities compare equal.
func (a *Activity) IsType(activityType string) bool {
	return strings.EqualFold(strings.TrimSpace(a.Type), activityType)
}

// GetConversationReference extracts the routing address of the activity.
// The reference is sufficient to address replies or to continue the
// conversation proactively later.
func (a *Activity) GetConversationReference() *ConversationReference {
	return &ConversationReference{
		ActivityID:   a.ID,
		User:         cloneAccount(a.From),
		Bot:          cloneAccount(a.Recipient),
		Conversation: cloneConversation(a.Conversation),
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		Locale:       a.Locale,
	}
}

// ApplyConversationReference stamps the routing fields from reference onto
// the activity. With incoming true the activity is shaped as if it arrived
// from the user (From=user, Recipient=bot); otherwise as an outbound reply
// (From=bot, Recipient=user, ReplyToID=reference.ActivityID).
func (a *Activity) ApplyConversationReference(reference *ConversationReference, incoming bool) *Activity {
	a.ChannelID = reference.ChannelID
	a.ServiceURL = reference.ServiceURL
	a.Conversation = cloneConversation(reference.Conversation)
	if reference.Locale != "" {
		a.Locale = reference.Locale
	}

	if incoming {
		a.From = cloneAccount(reference.User)
		a.Recipient = cloneAccount(reference.Bot)
		if reference.ActivityID != "" {
			a.ID = reference.ActivityID
		}
	} else {
		a.From = cloneAccount(reference.Bot)
		a.Recipient = cloneAccount(reference.User)
		if reference.ActivityID != "" {
			a.ReplyToID = reference.ActivityID
		}
	}
	return a
}

// CreateReply builds a new message activity addressed back to the sender of
// the receiver, optionally seeded with text and locale.
func (a *Activity) CreateReply(text, locale string) *Activity {
	reply := &Activity{
		Type:      ActivityMessage,
		Timestamp: time.Now().UTC(),
		Text:      text,
		Locale:    locale,
	}
	if locale == "" {
		reply.Locale = a.Locale
	}
	reply.ApplyConversationReference(a.GetConversationReference(), false)
	return reply
}

func cloneAccount(account *ChannelAccount) *ChannelAccount {
	if account == nil {
		return nil
	}
	clone := *account
	return &clone
}

func cloneConversation(conversation *ConversationAccount) *ConversationAccount {
	if conversation == nil {
		return nil
	}
	clone := *conversation
	return &clone
}
