package core

import "fmt"

var (
	// ErrContextClosed is returned when an operation is attempted on a
	// TurnContext after its turn has ended.
	ErrContextClosed = fmt.Errorf("turn context is closed")

	// ErrEmptyBatch is returned when SendActivities is called with no
	// activities.
	ErrEmptyBatch = fmt.Errorf("expecting one or more activities, but the batch was empty")

	// ErrMissingActivity is returned when a nil activity enters the
	// pipeline or an outbound operation.
	ErrMissingActivity = fmt.Errorf("activity must not be nil")

	// ErrMissingType is returned for an activity without a type tag.
	ErrMissingType = fmt.Errorf("activity is missing a type")
)
