package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine. Callers match them with errors.Is; most are
// wrapped with context at the point of failure.
var (
	// ErrInvalidIdentifier is returned when an identifier string violates the
	// length or character constraints. Raised at construction, never at use.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrIndexRequired is returned by presence/value predicates on a property
	// name that has not been indexed. There is no slow-scan fallback.
	ErrIndexRequired = errors.New("index required")

	// ErrInvalidQuery is returned when a query tree fails validation, e.g.
	// piping on top of a count.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrMalformedValue is returned when a property value is not valid JSON.
	ErrMalformedValue = errors.New("malformed value")

	// ErrPluginNotFound is returned when no plugin is registered under the
	// requested name.
	ErrPluginNotFound = errors.New("plugin not found")
)

// IndexRequiredError wraps ErrIndexRequired with the offending name.
func IndexRequiredError(name Identifier) error {
	return fmt.Errorf("%w: property %q is not indexed", ErrIndexRequired, string(name))
}
