package schema

import "net/http"

// ResourceResponse is the channel's acknowledgement for a sent, updated or
// deleted activity. ID names the activity resource the channel created.
type ResourceResponse struct {
	ID string `json:"id"`
}

// InvokeResponse is the synchronous result of processing an invoke activity
// (or of a whole expectReplies turn). Status is an HTTP status code; Body is
// an optional JSON-serializable payload.
type InvokeResponse struct {
	Status int `json:"status"`
	Body   any `json:"body,omitempty"`
}

// IsSuccess reports whether Status is in the 2xx range.
func (r *InvokeResponse) IsSuccess() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// ExpectedReplies is the body returned for a turn whose inbound activity
// requested expectReplies delivery: every activity the bot sent during the
// turn, in send order, none of which reached the connector individually.
type ExpectedReplies struct {
	Activities []*Activity `json:"activities"`
}

// ErrorResponse is the standard error body carried by failed invoke
// responses.
type ErrorResponse struct {
	Error Error `json:"error"`
}

// Error holds a machine-readable code plus a human-readable message.
type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// TokenResponse is the token service's answer to a user-token request.
// Properties may carry service-specific hints such as polling overrides.
type TokenResponse struct {
	ChannelID      string         `json:"channelId,omitempty"`
	ConnectionName string         `json:"connectionName,omitempty"`
	Token          string         `json:"token,omitempty"`
	Expiration     string         `json:"expiration,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// TokenExchangeInvokeRequest is the payload of a signin/tokenExchange
// invoke: the channel offers a token to exchange against the named
// connection.
type TokenExchangeInvokeRequest struct {
	ID             string `json:"id,omitempty"`
	ConnectionName string `json:"connectionName,omitempty"`
	Token          string `json:"token,omitempty"`
}

// SearchInvokeValue is the payload of an application/search invoke.
type SearchInvokeValue struct {
	Kind         string         `json:"kind,omitempty"`
	QueryText    string         `json:"queryText,omitempty"`
	QueryOptions map[string]any `json:"queryOptions,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
}

// SearchInvokeResponse is the structured result a search hook returns.
type SearchInvokeResponse struct {
	StatusCode int    `json:"statusCode"`
	Type       string `json:"type,omitempty"`
	Value      any    `json:"value,omitempty"`
}

// AdaptiveCardInvokeAction describes the action element of an
// adaptiveCard/action invoke payload.
type AdaptiveCardInvokeAction struct {
	Type string         `json:"type,omitempty"`
	ID   string         `json:"id,omitempty"`
	Verb string         `json:"verb,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// AdaptiveCardInvokeValue is the payload of an adaptiveCard/action invoke.
type AdaptiveCardInvokeValue struct {
	Action *AdaptiveCardInvokeAction `json:"action,omitempty"`
}

// AdaptiveCardInvokeResponse is the structured result of an adaptive-card
// action hook.
type AdaptiveCardInvokeResponse struct {
	StatusCode int    `json:"statusCode"`
	Type       string `json:"type,omitempty"`
	Value      any    `json:"value,omitempty"`
}
