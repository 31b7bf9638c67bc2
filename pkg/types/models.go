package types

import (
	"fmt"

	"github.com/google/uuid"
)

// Domain selects between the two entity kinds an index can cover.
type Domain string

const (
	DomainVertex Domain = "vertex"
	DomainEdge   Domain = "edge"
)

// ValidateDomain rejects unknown domain strings at the boundary.
func ValidateDomain(d Domain) error {
	if d != DomainVertex && d != DomainEdge {
		return fmt.Errorf("%w: unknown domain %q", ErrInvalidQuery, d)
	}
	return nil
}

// Vertex is a typed node. The identity is the primary key; the type is fixed
// at creation.
type Vertex struct {
	ID uuid.UUID  `json:"id"`
	T  Identifier `json:"type"`
}

// NewVertex allocates a vertex of the given type with a fresh identity.
// UUIDv7 identities are time-ordered, so allocation is monotonic and
// identities are never reused within a store lifetime.
func NewVertex(t Identifier) Vertex {
	return Vertex{ID: uuid.Must(uuid.NewV7()), T: t}
}

// Edge is a typed, directed connection between two vertices. The triple
// (outbound, type, inbound) is the edge's whole identity: there is at most
// one edge per triple, while distinct types between the same pair are
// distinct edges.
type Edge struct {
	Outbound uuid.UUID  `json:"outbound_id"`
	T        Identifier `json:"type"`
	Inbound  uuid.UUID  `json:"inbound_id"`
}

// NewEdge builds the edge triple (outbound, t, inbound).
func NewEdge(outbound uuid.UUID, t Identifier, inbound uuid.UUID) Edge {
	return Edge{Outbound: outbound, T: t, Inbound: inbound}
}

// Reversed returns the same triple with the endpoints swapped.
func (e Edge) Reversed() Edge {
	return Edge{Outbound: e.Inbound, T: e.T, Inbound: e.Outbound}
}

// NamedProperty is a property name paired with its value.
type NamedProperty struct {
	Name  Identifier `json:"name"`
	Value Value      `json:"value"`
}

// VertexProperties is a vertex together with a set of its properties.
type VertexProperties struct {
	Vertex Vertex          `json:"vertex"`
	Props  []NamedProperty `json:"props"`
}

// EdgeProperties is an edge together with a set of its properties.
type EdgeProperties struct {
	Edge  Edge            `json:"edge"`
	Props []NamedProperty `json:"props"`
}
