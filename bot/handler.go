package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/schema"
)

// Hook is the signature of a simple activity-kind hook.
type Hook func(tc *core.TurnContext) error

// MembersHook receives the member accounts a conversationUpdate added or
// removed, already filtered to exclude the bot itself.
type MembersHook func(tc *core.TurnContext, members []schema.ChannelAccount) error

// ReactionsHook receives the reactions a messageReaction activity added or
// removed.
type ReactionsHook func(tc *core.TurnContext, reactions []schema.MessageReaction) error

// SearchHook handles an application/search invoke.
type SearchHook func(tc *core.TurnContext, value *schema.SearchInvokeValue) (*schema.SearchInvokeResponse, error)

// AdaptiveCardActionHook handles an adaptiveCard/action invoke.
type AdaptiveCardActionHook func(tc *core.TurnContext, value *schema.AdaptiveCardInvokeValue) (*schema.AdaptiveCardInvokeResponse, error)

// InvokeHook handles invoke names without dedicated dispatch.
type InvokeHook func(tc *core.TurnContext) (*schema.InvokeResponse, error)

// ActivityHandler routes a turn to kind-specific hooks. Unset hooks are
// no-ops (invoke hooks answer 501 instead). Exactly one top-level branch
// fires per turn; composition is done by wrapping hook functions and
// delegating explicitly, not by inheritance.
type ActivityHandler struct {
	Message       Hook
	MessageUpdate Hook
	MessageDelete Hook

	MembersAdded   MembersHook
	MembersRemoved MembersHook

	ReactionsAdded   ReactionsHook
	ReactionsRemoved ReactionsHook

	TokenResponseEvent Hook
	Event              Hook

	SignInInvoke       Hook
	SearchInvoke       SearchHook
	AdaptiveCardAction AdaptiveCardActionHook
	Invoke             InvokeHook

	EndOfConversation Hook
	Typing            Hook
	Command           Hook
	CommandResult     Hook

	InstallationUpdateAdd    Hook
	InstallationUpdateRemove Hook

	UnrecognizedActivityType Hook
}

var _ core.Bot = (*ActivityHandler)(nil)

// OnTurn dispatches the turn by the inbound activity's type.
func (h *ActivityHandler) OnTurn(tc *core.TurnContext) error {
	activity := tc.Activity()
	if activity == nil {
		return core.ErrMissingActivity
	}
	if activity.Type == "" {
		return core.ErrMissingType
	}

	switch {
	case activity.IsType(schema.ActivityMessage):
		return call(h.Message, tc)
	case activity.IsType(schema.ActivityMessageUpdate):
		return call(h.MessageUpdate, tc)
	case activity.IsType(schema.ActivityMessageDelete):
		return call(h.MessageDelete, tc)
	case activity.IsType(schema.ActivityConversationUpdate):
		return h.onConversationUpdate(tc)
	case activity.IsType(schema.ActivityMessageReaction):
		return h.onMessageReaction(tc)
	case activity.IsType(schema.ActivityEvent):
		return h.onEvent(tc)
	case activity.IsType(schema.ActivityInvoke):
		return h.onInvoke(tc)
	case activity.IsType(schema.ActivityEndOfConversation):
		return call(h.EndOfConversation, tc)
	case activity.IsType(schema.ActivityTyping):
		return call(h.Typing, tc)
	case activity.IsType(schema.ActivityCommand):
		return call(h.Command, tc)
	case activity.IsType(schema.ActivityCommandResult):
		return call(h.CommandResult, tc)
	case activity.IsType(schema.ActivityInstallationUpdate):
		return h.onInstallationUpdate(tc)
	default:
		return call(h.UnrecognizedActivityType, tc)
	}
}

func call(hook Hook, tc *core.TurnContext) error {
	if hook == nil {
		return nil
	}
	return hook(tc)
}

// onConversationUpdate fires the members-added hook when anyone other than
// the bot joined, else the members-removed hook when anyone other than the
// bot left. The hook receives the filtered list.
func (h *ActivityHandler) onConversationUpdate(tc *core.TurnContext) error {
	activity := tc.Activity()

	if added := othersThanRecipient(activity.MembersAdded, activity.Recipient); len(added) > 0 {
		if h.MembersAdded == nil {
			return nil
		}
		return h.MembersAdded(tc, added)
	}
	if removed := othersThanRecipient(activity.MembersRemoved, activity.Recipient); len(removed) > 0 {
		if h.MembersRemoved == nil {
			return nil
		}
		return h.MembersRemoved(tc, removed)
	}
	return nil
}

func othersThanRecipient(members []schema.ChannelAccount, recipient *schema.ChannelAccount) []schema.ChannelAccount {
	var others []schema.ChannelAccount
	for _, member := range members {
		if recipient == nil || member.ID != recipient.ID {
			others = append(others, member)
		}
	}
	return others
}

// onMessageReaction may fire both hooks in the same turn: added reactions
// first, then removed ones.
func (h *ActivityHandler) onMessageReaction(tc *core.TurnContext) error {
	activity := tc.Activity()

	if len(activity.ReactionsAdded) > 0 && h.ReactionsAdded != nil {
		if err := h.ReactionsAdded(tc, activity.ReactionsAdded); err != nil {
			return err
		}
	}
	if len(activity.ReactionsRemoved) > 0 && h.ReactionsRemoved != nil {
		if err := h.ReactionsRemoved(tc, activity.ReactionsRemoved); err != nil {
			return err
		}
	}
	return nil
}

func (h *ActivityHandler) onEvent(tc *core.TurnContext) error {
	if tc.Activity().Name == schema.TokenResponseEventName {
		return call(h.TokenResponseEvent, tc)
	}
	return call(h.Event, tc)
}

func (h *ActivityHandler) onInstallationUpdate(tc *core.TurnContext) error {
	switch tc.Activity().Action {
	case schema.InstallationUpdateAdd, schema.InstallationUpdateAddUpgrade:
		return call(h.InstallationUpdateAdd, tc)
	case schema.InstallationUpdateRemove, schema.InstallationUpdateRemoveUpgrade:
		return call(h.InstallationUpdateRemove, tc)
	default:
		return nil
	}
}

// onInvoke dispatches by invoke name, converts InvokeError results into the
// response, and sends the invoke response through the context so the
// adapter can capture it.
func (h *ActivityHandler) onInvoke(tc *core.TurnContext) error {
	response, err := h.dispatchInvoke(tc)

	var invokeErr *InvokeError
	if errors.As(err, &invokeErr) {
		response, err = invokeErr.Response(), nil
	}
	if err != nil {
		return err
	}
	if response == nil {
		response = &schema.InvokeResponse{Status: http.StatusOK}
	}

	_, err = tc.SendActivity(schema.NewInvokeResponseActivity(response))
	return err
}

func (h *ActivityHandler) dispatchInvoke(tc *core.TurnContext) (*schema.InvokeResponse, error) {
	activity := tc.Activity()

	switch activity.Name {
	case schema.SearchInvokeName:
		return h.onSearchInvoke(tc)

	case schema.AdaptiveCardActionName:
		return h.onAdaptiveCardAction(tc)

	case schema.SignInVerifyStateOperation, schema.SignInTokenExchangeOperation:
		if h.SignInInvoke == nil {
			return nil, notImplementedError(activity.Name)
		}
		if err := h.SignInInvoke(tc); err != nil {
			return nil, err
		}
		// Sign-in invokes are auto-acknowledged once the hook succeeds.
		return &schema.InvokeResponse{Status: http.StatusOK}, nil

	default:
		if h.Invoke != nil {
			return h.Invoke(tc)
		}
		return nil, notImplementedError(activity.Name)
	}
}

func (h *ActivityHandler) onSearchInvoke(tc *core.TurnContext) (*schema.InvokeResponse, error) {
	value, err := decodeValue[schema.SearchInvokeValue](tc.Activity().Value)
	if err != nil {
		return nil, badRequestError("missing or malformed value for search invoke")
	}
	if value.QueryText == "" && value.Kind == "" {
		return nil, badRequestError("search invoke value requires a queryText or kind")
	}
	if h.SearchInvoke == nil {
		return nil, notImplementedError(schema.SearchInvokeName)
	}

	result, err := h.SearchInvoke(tc, value)
	if err != nil {
		return nil, err
	}
	return &schema.InvokeResponse{Status: result.StatusCode, Body: result}, nil
}

func (h *ActivityHandler) onAdaptiveCardAction(tc *core.TurnContext) (*schema.InvokeResponse, error) {
	value, err := decodeValue[schema.AdaptiveCardInvokeValue](tc.Activity().Value)
	if err != nil {
		return nil, badRequestError("missing or malformed value for adaptiveCard/action invoke")
	}
	if value.Action == nil {
		return nil, badRequestError("adaptiveCard/action invoke value requires an action")
	}
	if value.Action.Type != "Action.Execute" {
		return nil, NewInvokeError(http.StatusBadRequest, "NotSupported",
			fmt.Sprintf("action type %q is not supported", value.Action.Type))
	}
	if h.AdaptiveCardAction == nil {
		return nil, notImplementedError(schema.AdaptiveCardActionName)
	}

	result, err := h.AdaptiveCardAction(tc, value)
	if err != nil {
		return nil, err
	}
	return &schema.InvokeResponse{Status: result.StatusCode, Body: result}, nil
}

// decodeValue coerces an activity's polymorphic value into its expected
// shape. Channel-parsed values arrive as generic JSON maps, so decoding
// goes through a JSON round trip unless the value is already typed.
func decodeValue[T any](value any) (*T, error) {
	if value == nil {
		return nil, fmt.Errorf("value is nil")
	}
	if typed, ok := value.(*T); ok {
		return typed, nil
	}
	if typed, ok := value.(T); ok {
		return &typed, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	typed := new(T)
	if err := json.Unmarshal(raw, typed); err != nil {
		return nil, err
	}
	return typed, nil
}
