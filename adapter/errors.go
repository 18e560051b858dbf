package adapter

import "fmt"

var (
	// ErrUnauthorized wraps authentication failures during inbound
	// processing. It is raised before a TurnContext exists, so it never
	// reaches the turn error handler.
	ErrUnauthorized = fmt.Errorf("unauthorized")

	// ErrMissingInvokeResponse signals that a bot accepted an invoke
	// activity but never produced a response; fatal for that turn.
	ErrMissingInvokeResponse = fmt.Errorf("bot produced no invoke response")

	// ErrMissingConnector signals that terminal delivery found no connector
	// client in turn state.
	ErrMissingConnector = fmt.Errorf("no connector client in turn state")
)
