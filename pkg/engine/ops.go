package engine

// The operational surface of the Engine: store mutations wrapped with
// append-only-log persistence. Every change is applied to memory and appended
// to the log before the call returns.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/metrics"
	"github.com/sanonone/grafdb/pkg/types"
)

// CreateVertex inserts v and reports whether it was created. An existing
// identity yields (false, nil): duplicates are "not created", not failures.
func (e *Engine) CreateVertex(v types.Vertex) (bool, error) {
	if !e.store.CreateVertex(v) {
		return false, nil
	}
	if err := e.appendAndFlush(encodeCreateVertex(v)); err != nil {
		return true, err
	}
	metrics.VerticesTotal.Inc()
	return true, nil
}

// CreateVertexFromType allocates a fresh identity for a vertex of type t,
// inserts it, and returns the identity.
func (e *Engine) CreateVertexFromType(t types.Identifier) (uuid.UUID, error) {
	v := types.NewVertex(t)
	if _, err := e.CreateVertex(v); err != nil {
		return uuid.Nil, err
	}
	return v.ID, nil
}

// CreateEdge inserts the triple and reports whether it was created. Both
// endpoint vertices must exist on this path; a missing endpoint or an
// existing triple yields (false, nil). The bulk ingest path is the one that
// skips the endpoint check.
func (e *Engine) CreateEdge(edge types.Edge) (bool, error) {
	if !e.store.CreateEdge(edge, true) {
		return false, nil
	}
	if err := e.appendAndFlush(encodeCreateEdge(edge)); err != nil {
		return true, err
	}
	metrics.EdgesTotal.Inc()
	return true, nil
}

// Delete removes every entity matched by q. Vertex deletion cascades to the
// vertex's properties and to every edge where it is an endpoint; edge
// deletion cascades to the edge's properties. A query whose final stage is a
// property fetch deletes exactly those named properties; deleting a count is
// invalid.
func (e *Engine) Delete(ctx context.Context, q types.Query) error {
	final, err := e.evaluateFinal(ctx, q)
	if err != nil {
		return err
	}

	switch matched := final.(type) {
	case types.VertexResults:
		for _, v := range matched {
			if e.store.DeleteVertex(v.ID) {
				if err := e.AOF.Write(encodeDeleteVertex(v.ID)); err != nil {
					return fmt.Errorf("persistence error: %w", err)
				}
			}
		}
	case types.EdgeResults:
		for _, edge := range matched {
			if e.store.DeleteEdge(edge) {
				if err := e.AOF.Write(encodeDeleteEdge(edge)); err != nil {
					return fmt.Errorf("persistence error: %w", err)
				}
			}
		}
	case types.VertexPropertyResults:
		for _, vp := range matched {
			for _, prop := range vp.Props {
				if e.store.DeleteVertexProperty(vp.Vertex.ID, prop.Name) {
					if err := e.AOF.Write(encodeDelVertexProperty(vp.Vertex.ID, prop.Name)); err != nil {
						return fmt.Errorf("persistence error: %w", err)
					}
				}
			}
		}
	case types.EdgePropertyResults:
		for _, ep := range matched {
			for _, prop := range ep.Props {
				if e.store.DeleteEdgeProperty(ep.Edge, prop.Name) {
					if err := e.AOF.Write(encodeDelEdgeProperty(ep.Edge, prop.Name)); err != nil {
						return fmt.Errorf("persistence error: %w", err)
					}
				}
			}
		}
	case types.CountResult:
		return fmt.Errorf("%w: cannot delete a count", types.ErrInvalidQuery)
	}

	// Vertex deletion cascades to incident edges inside the store, so the
	// gauges are reset from the store rather than decremented per item.
	metrics.VerticesTotal.Set(float64(e.store.CountVertices()))
	metrics.EdgesTotal.Set(float64(e.store.CountEdges()))

	return e.AOF.Flush()
}

// SetProperties sets name=value on every entity matched by q. The query's
// final stage must produce vertices or edges.
func (e *Engine) SetProperties(ctx context.Context, q types.Query, name types.Identifier, value types.Value) error {
	if _, err := value.Canonical(); err != nil {
		return err
	}

	final, err := e.evaluateFinal(ctx, q)
	if err != nil {
		return err
	}

	switch matched := final.(type) {
	case types.VertexResults:
		for _, v := range matched {
			if err := e.store.SetVertexProperty(v.ID, name, value); err != nil {
				return err
			}
			if err := e.AOF.Write(encodeSetVertexProperty(v.ID, name, value)); err != nil {
				return fmt.Errorf("persistence error: %w", err)
			}
		}
	case types.EdgeResults:
		for _, edge := range matched {
			if err := e.store.SetEdgeProperty(edge, name, value); err != nil {
				return err
			}
			if err := e.AOF.Write(encodeSetEdgeProperty(edge, name, value)); err != nil {
				return fmt.Errorf("persistence error: %w", err)
			}
		}
	default:
		return fmt.Errorf("%w: set-properties query must match vertices or edges", types.ErrInvalidQuery)
	}

	return e.AOF.Flush()
}

// BulkInsert applies a stream of mixed items in order. Policy, applied
// uniformly: items are independent; referential integrity is not checked
// (edges may dangle, properties may target absent entities); an item that
// does not apply (duplicate vertex or edge) is skipped and counted, and the
// remainder of the stream proceeds. The log is flushed once at the end
// rather than per item.
func (e *Engine) BulkInsert(items []types.BulkInsertItem) error {
	for _, item := range items {
		var applied bool
		var payload []byte

		switch it := item.(type) {
		case types.BulkVertex:
			applied = e.store.CreateVertex(it.Vertex)
			if applied {
				payload = encodeCreateVertex(it.Vertex)
				metrics.VerticesTotal.Inc()
			}
		case types.BulkEdge:
			applied = e.store.CreateEdge(it.Edge, false)
			if applied {
				payload = encodeCreateEdge(it.Edge)
				metrics.EdgesTotal.Inc()
			}
		case types.BulkVertexProperty:
			if err := e.store.SetVertexProperty(it.ID, it.Name, it.Value); err != nil {
				slog.Debug("bulk insert: skipping malformed vertex property", "id", it.ID, "name", it.Name, "error", err)
			} else {
				applied = true
				payload = encodeSetVertexProperty(it.ID, it.Name, it.Value)
			}
		case types.BulkEdgeProperty:
			if err := e.store.SetEdgeProperty(it.Edge, it.Name, it.Value); err != nil {
				slog.Debug("bulk insert: skipping malformed edge property", "edge", it.Edge, "name", it.Name, "error", err)
			} else {
				applied = true
				payload = encodeSetEdgeProperty(it.Edge, it.Name, it.Value)
			}
		default:
			slog.Debug("bulk insert: skipping unknown item", "item", fmt.Sprintf("%T", item))
		}

		if !applied {
			metrics.BulkItemsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if err := e.AOF.Write(payload); err != nil {
			return fmt.Errorf("bulk persistence partial failure: %w", err)
		}
		metrics.BulkItemsTotal.WithLabelValues("applied").Inc()
	}

	return e.AOF.Flush()
}

// IndexProperty builds the property index for (domain, name): existing
// entities are scanned into the index without blocking concurrent reads, and
// every later write to that name maintains the index synchronously. Indexing
// an already-indexed name is a no-op. There is no way back to unindexed.
func (e *Engine) IndexProperty(domain types.Domain, name types.Identifier) error {
	if err := types.ValidateDomain(domain); err != nil {
		return err
	}

	switch domain {
	case types.DomainVertex:
		e.store.IndexVertexProperty(name)
	case types.DomainEdge:
		e.store.IndexEdgeProperty(name)
	}
	return e.appendAndFlush(encodeIndexProperty(domain, name))
}

// IndexedVertexProperties lists vertex property names that are fully indexed.
func (e *Engine) IndexedVertexProperties() []types.Identifier {
	return e.store.IndexedVertexPropertyNames()
}

// IndexedEdgeProperties lists edge property names that are fully indexed.
func (e *Engine) IndexedEdgeProperties() []types.Identifier {
	return e.store.IndexedEdgePropertyNames()
}

// Sync is a hard durability point: all log writes so far are fsynced.
func (e *Engine) Sync() error {
	return e.AOF.Sync()
}

// Ping reports liveness.
func (e *Engine) Ping() error {
	return nil
}

func (e *Engine) appendAndFlush(payload []byte) error {
	if err := e.AOF.Write(payload); err != nil {
		return fmt.Errorf("persistence error: %w", err)
	}
	if err := e.AOF.Flush(); err != nil {
		return fmt.Errorf("persistence flush failed: %w", err)
	}
	return nil
}
