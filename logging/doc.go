// Package logging provides a minimal logging interface and adapters for the
// turn engine.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the adapter, state layer and background workers use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - TurnLogger with contextual cloning helpers for per-turn attributes
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	a := adapter.New(auth, func(o *adapter.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
