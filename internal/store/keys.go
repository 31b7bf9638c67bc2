// Package store holds the in-memory state of a GrafDB instance: the vertex
// and edge tables, the property tables, and the property indexes. All tables
// are ordered B-trees so point lookups, identity-ordered ranges and prefix
// scans share one access path.
//
// The Store itself is the single coordination boundary: every public method
// takes the store-wide reader-writer lock, so a write (including a cascading
// vertex delete) is atomic with respect to all readers.
package store

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/types"
)

// uuidLess orders identities by their byte representation, which for UUIDv7
// is also creation order.
func uuidLess(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// edgeLess orders edges by (outbound, type, inbound). This is the forward
// table order; prefix scans over one outbound identity enumerate its outgoing
// edges grouped by type.
func edgeLess(a, b types.Edge) bool {
	if c := bytes.Compare(a.Outbound[:], b.Outbound[:]); c != 0 {
		return c < 0
	}
	if a.T != b.T {
		return a.T < b.T
	}
	return bytes.Compare(a.Inbound[:], b.Inbound[:]) < 0
}

// reversedEdgeLess orders edges by (inbound, type, outbound) for the reversed
// table, serving inbound traversals.
func reversedEdgeLess(a, b types.Edge) bool {
	if c := bytes.Compare(a.Inbound[:], b.Inbound[:]); c != 0 {
		return c < 0
	}
	if a.T != b.T {
		return a.T < b.T
	}
	return bytes.Compare(a.Outbound[:], b.Outbound[:]) < 0
}

type vertexItem struct {
	id uuid.UUID
	t  types.Identifier
}

func vertexItemLess(a, b vertexItem) bool {
	return uuidLess(a.id, b.id)
}

type vertexPropItem struct {
	id    uuid.UUID
	name  types.Identifier
	value types.Value
}

func vertexPropLess(a, b vertexPropItem) bool {
	if c := bytes.Compare(a.id[:], b.id[:]); c != 0 {
		return c < 0
	}
	return a.name < b.name
}

type edgePropItem struct {
	edge  types.Edge
	name  types.Identifier
	value types.Value
}

func edgePropLess(a, b edgePropItem) bool {
	if a.edge != b.edge {
		return edgeLess(a.edge, b.edge)
	}
	return a.name < b.name
}
