// Package schema defines the wire-level data model exchanged between a bot
// and a channel: the Activity envelope, the ConversationReference routing
// address, resource / invoke responses and the card payloads used by sign-in
// flows. Types mirror the channel protocol JSON shapes and carry no behavior
// beyond construction and reference plumbing, so they can be shared freely
// between the core, adapters and user code.
package schema
