package types

import (
	"fmt"

	"github.com/google/uuid"
)

// Direction selects which end of an edge a traversal follows.
type Direction string

const (
	// DirectionOutbound follows edges leaving a vertex, or resolves the
	// outbound endpoint of an edge.
	DirectionOutbound Direction = "outbound"
	// DirectionInbound follows edges arriving at a vertex, or resolves the
	// inbound endpoint of an edge.
	DirectionInbound Direction = "inbound"
)

// Query is one node of the recursive query tree. The set of implementations
// is closed; the evaluator does an explicit type switch over it so that
// evaluation order and error propagation stay auditable.
//
// Leaf queries produce entities from the store. Pipe queries wrap exactly one
// inner query and transform its output. Query values are treated as immutable
// once submitted for evaluation.
type Query interface {
	queryNode()
}

// --- Vertex leaf queries ---

// AllVertexQuery matches every vertex, in identity order.
type AllVertexQuery struct{}

// RangeVertexQuery matches vertices in identity order, optionally filtered by
// type, starting strictly after StartID (making it a pagination cursor), and
// capped at Limit. Limit 0 means no cap.
type RangeVertexQuery struct {
	StartID *uuid.UUID
	T       *Identifier
	Limit   uint32
}

// SpecificVertexQuery matches the listed identities, preserving input order.
// Identities that do not exist are skipped, not errors.
type SpecificVertexQuery struct {
	IDs []uuid.UUID
}

// VertexWithPropertyPresenceQuery matches vertices that have the named
// property set, whatever its value. The name must be indexed.
type VertexWithPropertyPresenceQuery struct {
	Name Identifier
}

// VertexWithPropertyValueQuery matches vertices whose named property equals
// the given value exactly. The name must be indexed.
type VertexWithPropertyValueQuery struct {
	Name  Identifier
	Value Value
}

// --- Edge leaf queries ---

// AllEdgeQuery matches every edge, ordered by (outbound, type, inbound).
type AllEdgeQuery struct{}

// SpecificEdgeQuery matches the listed triples, preserving input order.
type SpecificEdgeQuery struct {
	Edges []Edge
}

// EdgeWithPropertyPresenceQuery matches edges that have the named property
// set. The name must be indexed.
type EdgeWithPropertyPresenceQuery struct {
	Name Identifier
}

// EdgeWithPropertyValueQuery matches edges whose named property equals the
// given value exactly. The name must be indexed.
type EdgeWithPropertyValueQuery struct {
	Name  Identifier
	Value Value
}

// --- Pipe queries ---

// PipeQuery traverses from the inner result. For inner vertices it follows
// incident edges in Direction (optionally restricted to type T, capped at
// Limit per inner vertex) and emits the vertices at the opposite end. For
// inner edges it resolves the endpoint named by Direction. Limit 0 means no
// cap. The relative order of the inner stream is preserved.
type PipeQuery struct {
	Inner     Query
	Direction Direction
	Limit     uint32
	T         *Identifier
}

// PipePropertyQuery attaches properties to each inner entity. With Name nil,
// every entity is emitted with all of its properties (possibly an empty
// list). With Name set, only entities that have that property are emitted,
// each carrying exactly that one property.
type PipePropertyQuery struct {
	Inner Query
	Name  *Identifier
}

// PipeWithPropertyPresenceQuery keeps inner entities that have the named
// property set. The name must be indexed.
type PipeWithPropertyPresenceQuery struct {
	Inner Query
	Name  Identifier
}

// PipeWithPropertyValueQuery keeps inner entities whose named property equals
// (Equal true) or does not equal (Equal false) the given value. With Equal
// false, entities lacking the property are kept. The name must be indexed.
type PipeWithPropertyValueQuery struct {
	Inner Query
	Name  Identifier
	Value Value
	Equal bool
}

// IncludeQuery marks the inner stage's result for inclusion in the final
// output, in addition to whatever wraps it.
type IncludeQuery struct {
	Inner Query
}

// CountQuery reduces the inner stream to a single scalar. A count is
// terminal: wrapping it in any further pipe fails validation.
type CountQuery struct {
	Inner Query
}

func (AllVertexQuery) queryNode()                  {}
func (RangeVertexQuery) queryNode()                {}
func (SpecificVertexQuery) queryNode()             {}
func (VertexWithPropertyPresenceQuery) queryNode() {}
func (VertexWithPropertyValueQuery) queryNode()    {}
func (AllEdgeQuery) queryNode()                    {}
func (SpecificEdgeQuery) queryNode()               {}
func (EdgeWithPropertyPresenceQuery) queryNode()   {}
func (EdgeWithPropertyValueQuery) queryNode()      {}
func (PipeQuery) queryNode()                       {}
func (PipePropertyQuery) queryNode()               {}
func (PipeWithPropertyPresenceQuery) queryNode()   {}
func (PipeWithPropertyValueQuery) queryNode()      {}
func (IncludeQuery) queryNode()                    {}
func (CountQuery) queryNode()                      {}

// InnerQuery returns the wrapped query of a pipe node, or nil for leaves.
func InnerQuery(q Query) Query {
	switch t := q.(type) {
	case PipeQuery:
		return t.Inner
	case PipePropertyQuery:
		return t.Inner
	case PipeWithPropertyPresenceQuery:
		return t.Inner
	case PipeWithPropertyValueQuery:
		return t.Inner
	case IncludeQuery:
		return t.Inner
	case CountQuery:
		return t.Inner
	default:
		return nil
	}
}

func isPipe(q Query) bool {
	switch q.(type) {
	case PipeQuery, PipePropertyQuery, PipeWithPropertyPresenceQuery,
		PipeWithPropertyValueQuery, IncludeQuery, CountQuery:
		return true
	default:
		return false
	}
}

// ValidateQuery checks structural rules that hold for every evaluation:
// pipe nodes must have an inner query, directions must be known, and nothing
// may be piped on top of a count (count-of-count included).
func ValidateQuery(q Query) error {
	if q == nil {
		return fmt.Errorf("%w: nil query", ErrInvalidQuery)
	}
	for node := q; node != nil; node = InnerQuery(node) {
		if pipe, ok := node.(PipeQuery); ok {
			if pipe.Direction != DirectionOutbound && pipe.Direction != DirectionInbound {
				return fmt.Errorf("%w: unknown direction %q", ErrInvalidQuery, pipe.Direction)
			}
		}
		inner := InnerQuery(node)
		if inner == nil {
			if isPipe(node) {
				return fmt.Errorf("%w: pipe node %T has no inner query", ErrInvalidQuery, node)
			}
			break
		}
		if _, isCount := inner.(CountQuery); isCount {
			return fmt.Errorf("%w: cannot pipe on top of a count", ErrInvalidQuery)
		}
	}
	return nil
}
