package schema

// Attachment content types the core recognizes.
const (
	OAuthCardContentType  = "application/vnd.microsoft.card.oauth"
	SignInCardContentType = "application/vnd.microsoft.card.signin"
)

// Card action types.
const (
	ActionTypeSignIn  = "signin"
	ActionTypeOpenURL = "openUrl"
)

// Attachment carries rich content alongside an activity. Content is left
// polymorphic; consumers switch on ContentType.
type Attachment struct {
	ContentType string `json:"contentType,omitempty"`
	ContentURL  string `json:"contentUrl,omitempty"`
	Content     any    `json:"content,omitempty"`
	Name        string `json:"name,omitempty"`
}

// CardAction is a clickable element on a card.
type CardAction struct {
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
	Value any    `json:"value,omitempty"`
	Text  string `json:"text,omitempty"`
}

// OAuthCard asks the user to sign in against a named token-service
// connection. Detecting one on an outbound activity is what arms the
// token-exchange poller.
type OAuthCard struct {
	Text           string       `json:"text,omitempty"`
	ConnectionName string       `json:"connectionName,omitempty"`
	Buttons        []CardAction `json:"buttons,omitempty"`
}

// SignInCard is the fallback sign-in card for channels without OAuth card
// support.
type SignInCard struct {
	Text    string       `json:"text,omitempty"`
	Buttons []CardAction `json:"buttons,omitempty"`
}
