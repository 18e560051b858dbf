// Package state implements keyed, cached, hash-diffed persistence of bot
// state with ETag-based optimistic concurrency. Storage is the pluggable
// store contract; MemoryStorage is the reference in-memory implementation.
// BotState layers a per-turn cache with dirty tracking on top of Storage,
// and ConversationState / UserState bind BotState to the standard scope
// keys. AutoSaveMiddleware flushes every registered scope at turn end.
package state
