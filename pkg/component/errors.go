package component

import "errors"

var (
	// ErrInvalidProps wraps a failed Props.Validate
	ErrInvalidProps = errors.New("invalid props")

	// ErrNotFound is returned by Registry lookups for unknown names
	ErrNotFound = errors.New("component not found")
)
