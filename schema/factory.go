package schema

import "time"

// NewMessageActivity creates a plain text message activity.
func NewMessageActivity(text string) *Activity {
	return &Activity{Type: ActivityMessage, Text: text, Timestamp: time.Now().UTC()}
}

// NewTypingActivity creates a typing indicator activity.
func NewTypingActivity() *Activity {
	return &Activity{Type: ActivityTyping, Timestamp: time.Now().UTC()}
}

// NewEventActivity creates a named event activity carrying an optional value.
func NewEventActivity(name string, value any) *Activity {
	return &Activity{Type: ActivityEvent, Name: name, Value: value, Timestamp: time.Now().UTC()}
}

// NewTraceActivity creates a trace activity. Traces are only ever delivered
// to the emulator channel; everywhere else the adapter drops them silently.
func NewTraceActivity(name, label, valueType string, value any) *Activity {
	return &Activity{
		Type:      ActivityTrace,
		Name:      name,
		Label:     label,
		ValueType: valueType,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
}

// NewDelayActivity creates the synthetic activity that suspends the current
// turn for d when sent.
func NewDelayActivity(d time.Duration) *Activity {
	return &Activity{Type: ActivityDelay, Value: d}
}

// NewInvokeResponseActivity wraps an InvokeResponse so it can travel through
// the send interceptor chain; the adapter captures it into turn state
// instead of forwarding it to the connector.
func NewInvokeResponseActivity(response *InvokeResponse) *Activity {
	return &Activity{Type: ActivityInvokeResponse, Value: response}
}

// NewOAuthCardAttachment wraps an OAuthCard as an activity attachment.
func NewOAuthCardAttachment(card *OAuthCard) Attachment {
	return Attachment{ContentType: OAuthCardContentType, Content: card}
}
