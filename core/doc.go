// Package core provides the foundational types and contracts of the turn
// engine. It defines the core abstractions for:
//
//   - TurnContext (per-turn outbound interception, buffering and state)
//   - TurnState (the typed per-turn capability registry)
//   - Middleware / MiddlewareSet (ordered turn interceptors)
//   - Bot and HandlerFunc (the pipeline terminus supplied by applications)
//   - Adapter, ConnectorClient, ConnectorFactory, UserTokenClient and Auth
//     (the capability contracts the engine consumes)
//
// The package intentionally keeps implementation concerns (channel
// transports, credential acquisition, persistence, orchestration) out of
// scope, exposing small interfaces so custom backends can be plugged in.
package core
