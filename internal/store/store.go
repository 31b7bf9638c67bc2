package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/types"
)

// Store is the in-memory state of one GrafDB instance. All access goes
// through its reader-writer lock: reads run fully in parallel, each write is
// atomic with respect to every reader, and cross-table operations (cascading
// deletes, index maintenance) happen inside one critical section instead of
// juggling per-table lock order.
//
// Stores are plain values with no process-wide state; tests open as many
// independent ones as they like.
type Store struct {
	mu    sync.RWMutex
	graph *graphTables
	props *propertyTables

	vertexIndexes *indexSet[uuid.UUID]
	edgeIndexes   *indexSet[types.Edge]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		graph:         newGraphTables(),
		props:         newPropertyTables(),
		vertexIndexes: newIndexSet(uuidLess),
		edgeIndexes:   newIndexSet(edgeLess),
	}
}

// --- Vertices ---

// CreateVertex inserts v and reports whether it was created. A duplicate
// identity is "not created", never a hard failure.
func (s *Store) CreateVertex(v types.Vertex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.createVertex(v)
}

// GetVertices resolves identities in input order, skipping those that do not
// exist.
func (s *Store) GetVertices(ids []uuid.UUID) []types.Vertex {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Vertex, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.graph.getVertex(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// VertexExists reports whether the identity names a live vertex.
func (s *Store) VertexExists(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.vertexExists(id)
}

// ScanVertices walks vertices in identity order under the read lock,
// honoring the optional start cursor (exclusive), type filter, and limit
// (0 = no cap). The walk stops early when yield returns false, which is how
// the evaluator threads cancellation through long scans.
func (s *Store) ScanVertices(start *uuid.UUID, t *types.Identifier, limit uint32, yield func(types.Vertex) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.graph.scanVertices(start, t, limit, yield)
}

// CountVertices returns the vertex count without enumeration.
func (s *Store) CountVertices() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.vertexCount()
}

// DeleteVertex removes the vertex, all of its properties, and every edge
// where it is either endpoint (with their properties), in one critical
// section. Reports whether the vertex existed.
func (s *Store) DeleteVertex(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.deleteVertex(id) {
		return false
	}
	for _, name := range s.props.vertexPropertyNames(id) {
		old, _ := s.props.deleteVertexProperty(id, name)
		s.vertexIndexes.update(name, id, canonicalOf(old), nil)
	}
	for _, e := range s.graph.incidentEdges(id) {
		s.deleteEdgeLocked(e)
	}
	return true
}

// --- Edges ---

// CreateEdge inserts the triple and reports whether it was created. With
// enforceEndpoints set, a missing endpoint vertex makes the edge "not
// created"; the bulk ingest path passes false and accepts dangling edges.
func (s *Store) CreateEdge(e types.Edge, enforceEndpoints bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enforceEndpoints {
		if !s.graph.vertexExists(e.Outbound) || !s.graph.vertexExists(e.Inbound) {
			return false
		}
	}
	return s.graph.createEdge(e)
}

// GetEdges filters the given triples down to those that exist, preserving
// input order.
func (s *Store) GetEdges(edges []types.Edge) []types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Edge, 0, len(edges))
	for _, e := range edges {
		if s.graph.edgeExists(e) {
			out = append(out, e)
		}
	}
	return out
}

// EdgeExists reports whether the triple names a live edge.
func (s *Store) EdgeExists(e types.Edge) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.edgeExists(e)
}

// ScanEdges walks every edge in (outbound, type, inbound) order.
func (s *Store) ScanEdges(yield func(types.Edge) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.graph.scanEdges(yield)
}

// CountEdges returns the edge count without enumeration.
func (s *Store) CountEdges() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.edgeCount()
}

// OutboundEdges returns edges leaving id in stored order, optionally
// restricted to type t, capped at limit (0 = no cap).
func (s *Store) OutboundEdges(id uuid.UUID, t *types.Identifier, limit uint32) []types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.outboundEdges(id, t, limit)
}

// InboundEdges returns edges arriving at id, via the reversed table.
func (s *Store) InboundEdges(id uuid.UUID, t *types.Identifier, limit uint32) []types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.inboundEdges(id, t, limit)
}

// DeleteEdge removes the edge and its properties. Reports whether it existed.
func (s *Store) DeleteEdge(e types.Edge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteEdgeLocked(e)
}

func (s *Store) deleteEdgeLocked(e types.Edge) bool {
	if !s.graph.deleteEdge(e) {
		return false
	}
	for _, name := range s.props.edgePropertyNames(e) {
		old, _ := s.props.deleteEdgeProperty(e, name)
		s.edgeIndexes.update(name, e, canonicalOf(old), nil)
	}
	return true
}

// --- Properties ---

// SetVertexProperty validates the value, stores it, and keeps any index on
// the name in step, all under one write lock.
func (s *Store) SetVertexProperty(id uuid.UUID, name types.Identifier, value types.Value) error {
	canon, err := value.Canonical()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, _ := s.props.setVertexProperty(id, name, value)
	s.vertexIndexes.update(name, id, canonicalOf(old), &canon)
	return nil
}

// DeleteVertexProperty removes the named property if present.
func (s *Store) DeleteVertexProperty(id uuid.UUID, name types.Identifier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, existed := s.props.deleteVertexProperty(id, name)
	if !existed {
		return false
	}
	s.vertexIndexes.update(name, id, canonicalOf(old), nil)
	return true
}

// GetVertexProperty returns the named property value, if set.
func (s *Store) GetVertexProperty(id uuid.UUID, name types.Identifier) (types.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props.getVertexProperty(id, name)
}

// AllVertexProperties lists the vertex's properties in name order.
func (s *Store) AllVertexProperties(id uuid.UUID) []types.NamedProperty {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props.allVertexProperties(id)
}

// SetEdgeProperty is the edge-domain counterpart of SetVertexProperty.
func (s *Store) SetEdgeProperty(e types.Edge, name types.Identifier, value types.Value) error {
	canon, err := value.Canonical()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, _ := s.props.setEdgeProperty(e, name, value)
	s.edgeIndexes.update(name, e, canonicalOf(old), &canon)
	return nil
}

// DeleteEdgeProperty removes the named property if present.
func (s *Store) DeleteEdgeProperty(e types.Edge, name types.Identifier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, existed := s.props.deleteEdgeProperty(e, name)
	if !existed {
		return false
	}
	s.edgeIndexes.update(name, e, canonicalOf(old), nil)
	return true
}

// GetEdgeProperty returns the named property value, if set.
func (s *Store) GetEdgeProperty(e types.Edge, name types.Identifier) (types.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props.getEdgeProperty(e, name)
}

// AllEdgeProperties lists the edge's properties in name order.
func (s *Store) AllEdgeProperties(e types.Edge) []types.NamedProperty {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props.allEdgeProperties(e)
}

// IterateVertexProperties walks the whole vertex property table under the
// read lock. Used by log compaction.
func (s *Store) IterateVertexProperties(yield func(id uuid.UUID, name types.Identifier, value types.Value) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.props.scanVertexProperties(yield)
}

// IterateEdgeProperties walks the whole edge property table.
func (s *Store) IterateEdgeProperties(yield func(e types.Edge, name types.Identifier, value types.Value) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.props.scanEdgeProperties(yield)
}

// --- Indexing ---

// IndexVertexProperty runs the unindexed → indexing → indexed transition for
// the vertex domain. The seed scan holds only the read lock, so queries stay
// fully concurrent; writers serialize against the scan through the lock and
// dual-write into the in-construction index, so the final flip to indexed
// (a single flag update under the write lock) exposes a complete index.
// Indexing an already-indexed name is a no-op.
func (s *Store) IndexVertexProperty(name types.Identifier) {
	s.mu.Lock()
	idx, created := s.vertexIndexes.begin(name)
	s.mu.Unlock()
	if !created {
		return
	}

	s.mu.RLock()
	s.props.scanVertexProperties(func(id uuid.UUID, n types.Identifier, v types.Value) bool {
		if n == name {
			if canon, err := v.Canonical(); err == nil {
				idx.insert(id, canon)
			}
		}
		return true
	})
	s.mu.RUnlock()

	s.mu.Lock()
	s.vertexIndexes.finish(name)
	s.mu.Unlock()
}

// IndexEdgeProperty is the edge-domain counterpart of IndexVertexProperty.
func (s *Store) IndexEdgeProperty(name types.Identifier) {
	s.mu.Lock()
	idx, created := s.edgeIndexes.begin(name)
	s.mu.Unlock()
	if !created {
		return
	}

	s.mu.RLock()
	s.props.scanEdgeProperties(func(e types.Edge, n types.Identifier, v types.Value) bool {
		if n == name {
			if canon, err := v.Canonical(); err == nil {
				idx.insert(e, canon)
			}
		}
		return true
	})
	s.mu.RUnlock()

	s.mu.Lock()
	s.edgeIndexes.finish(name)
	s.mu.Unlock()
}

// VertexPropertyIndexed reports whether the name is fully indexed.
func (s *Store) VertexPropertyIndexed(name types.Identifier) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vertexIndexes.isIndexed(name)
}

// EdgePropertyIndexed reports whether the name is fully indexed.
func (s *Store) EdgePropertyIndexed(name types.Identifier) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgeIndexes.isIndexed(name)
}

// IndexedVertexPropertyNames lists fully indexed vertex property names.
func (s *Store) IndexedVertexPropertyNames() []types.Identifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vertexIndexes.names()
}

// IndexedEdgePropertyNames lists fully indexed edge property names.
func (s *Store) IndexedEdgePropertyNames() []types.Identifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgeIndexes.names()
}

// VerticesWithProperty returns identities with the named property set, in
// identity order. Fails with ErrIndexRequired for unindexed names.
func (s *Store) VerticesWithProperty(name types.Identifier) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vertexIndexes.members(name)
}

// VerticesWithPropertyValue returns identities whose named property equals
// value, in identity order.
func (s *Store) VerticesWithPropertyValue(name types.Identifier, value types.Value) ([]uuid.UUID, error) {
	canon, err := value.Canonical()
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vertexIndexes.membersByValue(name, canon)
}

// EdgesWithProperty returns triples with the named property set.
func (s *Store) EdgesWithProperty(name types.Identifier) ([]types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgeIndexes.members(name)
}

// EdgesWithPropertyValue returns triples whose named property equals value.
func (s *Store) EdgesWithPropertyValue(name types.Identifier, value types.Value) ([]types.Edge, error) {
	canon, err := value.Canonical()
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgeIndexes.membersByValue(name, canon)
}

// canonicalOf converts a possibly-absent previous value into the index
// update form: nil when there was no previous value or it does not
// canonicalize (which cannot happen for values that passed SetProperty).
func canonicalOf(v types.Value) *string {
	if v.IsZero() {
		return nil
	}
	canon, err := v.Canonical()
	if err != nil {
		return nil
	}
	return &canon
}
