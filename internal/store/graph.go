package store

import (
	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/sanonone/grafdb/pkg/types"
)

// graphTables owns the vertex table and the twin edge tables. Methods here
// assume the caller (Store) holds the appropriate lock.
type graphTables struct {
	vertices *btree.BTreeG[vertexItem]
	// edges is ordered (outbound, type, inbound); reversed is the same edge
	// set ordered (inbound, type, outbound). Every edge write touches both,
	// under the store write lock, so the two are never observed out of step.
	edges    *btree.BTreeG[types.Edge]
	reversed *btree.BTreeG[types.Edge]
}

func newGraphTables() *graphTables {
	return &graphTables{
		vertices: btree.NewBTreeG(vertexItemLess),
		edges:    btree.NewBTreeG(edgeLess),
		reversed: btree.NewBTreeG(reversedEdgeLess),
	}
}

func (g *graphTables) vertexCount() uint64 { return uint64(g.vertices.Len()) }
func (g *graphTables) edgeCount() uint64   { return uint64(g.edges.Len()) }

func (g *graphTables) getVertex(id uuid.UUID) (types.Vertex, bool) {
	item, ok := g.vertices.Get(vertexItem{id: id})
	if !ok {
		return types.Vertex{}, false
	}
	return types.Vertex{ID: item.id, T: item.t}, true
}

func (g *graphTables) vertexExists(id uuid.UUID) bool {
	_, ok := g.vertices.Get(vertexItem{id: id})
	return ok
}

// createVertex inserts v and reports whether it was created. An existing
// identity is left untouched.
func (g *graphTables) createVertex(v types.Vertex) bool {
	if g.vertexExists(v.ID) {
		return false
	}
	g.vertices.Set(vertexItem{id: v.ID, t: v.T})
	return true
}

// scanVertices walks vertices in identity order, starting strictly after
// start when it is non-nil, filtered by type t when it is non-nil, stopping
// after limit entries (limit 0 means unbounded) or when yield returns false.
func (g *graphTables) scanVertices(start *uuid.UUID, t *types.Identifier, limit uint32, yield func(types.Vertex) bool) {
	var emitted uint32
	iter := func(item vertexItem) bool {
		if start != nil && item.id == *start {
			return true
		}
		if t != nil && item.t != *t {
			return true
		}
		if !yield(types.Vertex{ID: item.id, T: item.t}) {
			return false
		}
		emitted++
		return limit == 0 || emitted < limit
	}
	if start != nil {
		g.vertices.Ascend(vertexItem{id: *start}, iter)
	} else {
		g.vertices.Scan(iter)
	}
}

func (g *graphTables) edgeExists(e types.Edge) bool {
	_, ok := g.edges.Get(e)
	return ok
}

// createEdge inserts e into both tables and reports whether it was created.
func (g *graphTables) createEdge(e types.Edge) bool {
	if g.edgeExists(e) {
		return false
	}
	g.edges.Set(e)
	g.reversed.Set(e)
	return true
}

func (g *graphTables) deleteEdge(e types.Edge) bool {
	if _, ok := g.edges.Delete(e); !ok {
		return false
	}
	g.reversed.Delete(e)
	return true
}

func (g *graphTables) deleteVertex(id uuid.UUID) bool {
	_, ok := g.vertices.Delete(vertexItem{id: id})
	return ok
}

// scanEdges walks every edge in (outbound, type, inbound) order.
func (g *graphTables) scanEdges(yield func(types.Edge) bool) {
	g.edges.Scan(yield)
}

// outboundEdges returns edges leaving id, in stored order, optionally
// restricted to type t and capped at limit (0 = no cap).
func (g *graphTables) outboundEdges(id uuid.UUID, t *types.Identifier, limit uint32) []types.Edge {
	var out []types.Edge
	pivot := types.Edge{Outbound: id}
	if t != nil {
		pivot.T = *t
	}
	g.edges.Ascend(pivot, func(e types.Edge) bool {
		if e.Outbound != id {
			return false
		}
		if t != nil && e.T != *t {
			return false
		}
		out = append(out, e)
		return limit == 0 || uint32(len(out)) < limit
	})
	return out
}

// inboundEdges returns edges arriving at id, via the reversed table.
func (g *graphTables) inboundEdges(id uuid.UUID, t *types.Identifier, limit uint32) []types.Edge {
	var out []types.Edge
	pivot := types.Edge{Inbound: id}
	if t != nil {
		pivot.T = *t
	}
	g.reversed.Ascend(pivot, func(e types.Edge) bool {
		if e.Inbound != id {
			return false
		}
		if t != nil && e.T != *t {
			return false
		}
		out = append(out, e)
		return limit == 0 || uint32(len(out)) < limit
	})
	return out
}

// incidentEdges returns every edge touching id in either direction.
func (g *graphTables) incidentEdges(id uuid.UUID) []types.Edge {
	out := g.outboundEdges(id, nil, 0)
	out = append(out, g.inboundEdges(id, nil, 0)...)
	return out
}
