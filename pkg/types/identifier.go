// Package types defines the shared data model of GrafDB: identifiers,
// identities, property values, vertices, edges, bulk insert items, the query
// tree, and query output values.
package types

import (
	"encoding/json"
	"fmt"
)

// maxIdentifierLen is the maximum number of bytes in an identifier.
const maxIdentifierLen = 255

// Identifier is a constrained string naming a vertex type, an edge type or a
// property. It is at most 255 bytes of letters, digits, dashes and
// underscores. Invalid identifiers are rejected at construction, so an
// Identifier in hand can be trusted everywhere else.
type Identifier string

// NewIdentifier validates s and returns it as an Identifier.
func NewIdentifier(s string) (Identifier, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if len(s) > maxIdentifierLen {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidIdentifier, maxIdentifierLen)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return "", fmt.Errorf("%w: byte %q at position %d", ErrInvalidIdentifier, c, i)
		}
	}
	return Identifier(s), nil
}

// MustIdentifier is NewIdentifier that panics on error. For constants and tests.
func MustIdentifier(s string) Identifier {
	id, err := NewIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (i Identifier) String() string { return string(i) }

// UnmarshalJSON validates identifiers arriving over the wire, so malformed
// identifiers are rejected while decoding rather than deep inside the engine.
func (i *Identifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := NewIdentifier(s)
	if err != nil {
		return err
	}
	*i = id
	return nil
}
