package state

import "fmt"

var (
	// ErrETagConflict is returned when a write carries a concrete ETag that
	// no longer matches the stored value. The whole write fails; the core
	// never retries on behalf of the caller.
	ErrETagConflict = fmt.Errorf("etag conflict")

	// ErrPropertyNotFound is returned by PropertyAccessor.Get when the
	// property is absent and no default factory was supplied.
	ErrPropertyNotFound = fmt.Errorf("state property not found")
)
