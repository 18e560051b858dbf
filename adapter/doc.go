// Package adapter implements the orchestrator that drives turns: it
// authenticates inbound activities, constructs the TurnContext, runs the
// middleware pipeline into the bot callback, performs terminal outbound
// delivery through the connector capability, and extracts the turn's
// result. The same machinery serves proactive (bot-initiated) turns via
// ContinueConversation and re-injected token-response turns from the OAuth
// poller. It is the only place a TurnContext is constructed and the only
// place the pipeline is run.
package adapter
