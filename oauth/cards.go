package oauth

import (
	"encoding/json"

	"github.com/hupe1980/botmesh/schema"
)

// FindOAuthCard returns the first OAuth card attached to the activity, or
// nil. Attachments built in-process are matched directly; attachments that
// crossed a JSON boundary are re-decoded from their generic map shape.
func FindOAuthCard(activity *schema.Activity) *schema.OAuthCard {
	if activity == nil {
		return nil
	}
	for _, attachment := range activity.Attachments {
		if attachment.ContentType != schema.OAuthCardContentType {
			continue
		}
		switch content := attachment.Content.(type) {
		case *schema.OAuthCard:
			return content
		case schema.OAuthCard:
			card := content
			return &card
		default:
			raw, err := json.Marshal(content)
			if err != nil {
				continue
			}
			card := &schema.OAuthCard{}
			if err := json.Unmarshal(raw, card); err != nil {
				continue
			}
			return card
		}
	}
	return nil
}

// IsOAuthResponseActivity reports whether the activity is a token-service
// response to an OAuth card: a tokens/response event, or a sign-in
// verify-state / token-exchange invoke.
func IsOAuthResponseActivity(activity *schema.Activity) bool {
	if activity == nil {
		return false
	}
	switch {
	case activity.IsType(schema.ActivityEvent):
		return activity.Name == schema.TokenResponseEventName
	case activity.IsType(schema.ActivityInvoke):
		return activity.Name == schema.SignInVerifyStateOperation ||
			activity.Name == schema.SignInTokenExchangeOperation
	default:
		return false
	}
}
