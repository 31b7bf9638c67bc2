package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/metrics"
	"github.com/sanonone/grafdb/pkg/types"
)

// Get evaluates a query tree and returns its outputs. The final stage's
// result is always included; earlier stages contribute one output each where
// an include marks them, ordered innermost first. Evaluation is recursive and
// each stage materializes before the next consumes it, so every pipe sees its
// complete inner result.
func (e *Engine) Get(ctx context.Context, q types.Query) ([]types.QueryOutputValue, error) {
	start := time.Now()
	outputs, err := e.getOutputs(ctx, q)
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues("ok").Inc()
	return outputs, nil
}

func (e *Engine) getOutputs(ctx context.Context, q types.Query) ([]types.QueryOutputValue, error) {
	if err := types.ValidateQuery(q); err != nil {
		return nil, err
	}

	var outputs []types.QueryOutputValue
	final, err := e.evaluate(ctx, q, &outputs)
	if err != nil {
		return nil, err
	}

	// The outermost stage is included implicitly. When the caller already
	// wrapped it in an include, evaluate has appended it; appending again
	// would duplicate the result.
	if _, explicit := q.(types.IncludeQuery); !explicit {
		outputs = append(outputs, final)
	}
	return outputs, nil
}

// evaluateFinal runs a query for its final stage only, discarding include
// outputs. Delete and SetProperties use it to resolve their target set.
func (e *Engine) evaluateFinal(ctx context.Context, q types.Query) (types.QueryOutputValue, error) {
	if err := types.ValidateQuery(q); err != nil {
		return nil, err
	}
	var discard []types.QueryOutputValue
	return e.evaluate(ctx, q, &discard)
}

// evaluate dispatches over the closed query node set. Leaves read the store;
// pipes evaluate their inner query first, then transform. Cancellation is
// checked per stage and between entities inside long scans.
func (e *Engine) evaluate(ctx context.Context, q types.Query, outputs *[]types.QueryOutputValue) (types.QueryOutputValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch node := q.(type) {
	case types.AllVertexQuery:
		return e.scanVertices(ctx, nil, nil, 0)
	case types.RangeVertexQuery:
		return e.scanVertices(ctx, node.StartID, node.T, node.Limit)
	case types.SpecificVertexQuery:
		return types.VertexResults(e.store.GetVertices(node.IDs)), nil
	case types.VertexWithPropertyPresenceQuery:
		ids, err := e.store.VerticesWithProperty(node.Name)
		if err != nil {
			return nil, err
		}
		return types.VertexResults(e.store.GetVertices(ids)), nil
	case types.VertexWithPropertyValueQuery:
		ids, err := e.store.VerticesWithPropertyValue(node.Name, node.Value)
		if err != nil {
			return nil, err
		}
		return types.VertexResults(e.store.GetVertices(ids)), nil

	case types.AllEdgeQuery:
		return e.scanEdges(ctx)
	case types.SpecificEdgeQuery:
		return types.EdgeResults(e.store.GetEdges(node.Edges)), nil
	case types.EdgeWithPropertyPresenceQuery:
		edges, err := e.store.EdgesWithProperty(node.Name)
		if err != nil {
			return nil, err
		}
		return types.EdgeResults(edges), nil
	case types.EdgeWithPropertyValueQuery:
		edges, err := e.store.EdgesWithPropertyValue(node.Name, node.Value)
		if err != nil {
			return nil, err
		}
		return types.EdgeResults(edges), nil

	case types.PipeQuery:
		inner, err := e.evaluate(ctx, node.Inner, outputs)
		if err != nil {
			return nil, err
		}
		return e.traverse(inner, node.Direction, node.T, node.Limit)

	case types.PipePropertyQuery:
		inner, err := e.evaluate(ctx, node.Inner, outputs)
		if err != nil {
			return nil, err
		}
		return e.attachProperties(inner, node.Name)

	case types.PipeWithPropertyPresenceQuery:
		inner, err := e.evaluate(ctx, node.Inner, outputs)
		if err != nil {
			return nil, err
		}
		return e.filterByPresence(inner, node.Name)

	case types.PipeWithPropertyValueQuery:
		inner, err := e.evaluate(ctx, node.Inner, outputs)
		if err != nil {
			return nil, err
		}
		return e.filterByValue(inner, node.Name, node.Value, node.Equal)

	case types.IncludeQuery:
		inner, err := e.evaluate(ctx, node.Inner, outputs)
		if err != nil {
			return nil, err
		}
		*outputs = append(*outputs, inner)
		return inner, nil

	case types.CountQuery:
		return e.count(ctx, node.Inner, outputs)

	default:
		return nil, fmt.Errorf("%w: unknown query node %T", types.ErrInvalidQuery, q)
	}
}

func (e *Engine) scanVertices(ctx context.Context, start *uuid.UUID, t *types.Identifier, limit uint32) (types.VertexResults, error) {
	out := make(types.VertexResults, 0)
	var scanErr error
	e.store.ScanVertices(start, t, limit, func(v types.Vertex) bool {
		if err := ctx.Err(); err != nil {
			scanErr = err
			return false
		}
		out = append(out, v)
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}
	return out, nil
}

func (e *Engine) scanEdges(ctx context.Context) (types.EdgeResults, error) {
	out := make(types.EdgeResults, 0)
	var scanErr error
	e.store.ScanEdges(func(edge types.Edge) bool {
		if err := ctx.Err(); err != nil {
			scanErr = err
			return false
		}
		out = append(out, edge)
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}
	return out, nil
}

// traverse implements the pipe stage. From vertices it follows incident edges
// in the given direction and emits the vertex set at the opposite end; from
// edges it resolves the endpoint the direction names. Emitted vertices are
// deduplicated on first appearance, preserving the inner stream's order. The
// limit caps edges followed per inner vertex (or endpoints resolved overall,
// for inner edges); 0 means no cap.
func (e *Engine) traverse(inner types.QueryOutputValue, dir types.Direction, t *types.Identifier, limit uint32) (types.QueryOutputValue, error) {
	seen := make(map[uuid.UUID]struct{})
	out := make(types.VertexResults, 0)

	emit := func(id uuid.UUID) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		if v := e.store.GetVertices([]uuid.UUID{id}); len(v) == 1 {
			out = append(out, v[0])
		}
	}

	switch entities := inner.(type) {
	case types.VertexResults:
		for _, v := range entities {
			var edges []types.Edge
			if dir == types.DirectionOutbound {
				edges = e.store.OutboundEdges(v.ID, t, limit)
			} else {
				edges = e.store.InboundEdges(v.ID, t, limit)
			}
			for _, edge := range edges {
				if dir == types.DirectionOutbound {
					emit(edge.Inbound)
				} else {
					emit(edge.Outbound)
				}
			}
		}
	case types.EdgeResults:
		for _, edge := range entities {
			if t != nil && edge.T != *t {
				continue
			}
			if dir == types.DirectionOutbound {
				emit(edge.Outbound)
			} else {
				emit(edge.Inbound)
			}
			if limit > 0 && uint32(len(out)) >= limit {
				break
			}
		}
	default:
		return nil, fmt.Errorf("%w: cannot traverse from %s", types.ErrInvalidQuery, outputKind(inner))
	}

	return out, nil
}

// attachProperties implements the pipe-property stage. A nil name emits every
// inner entity with all of its properties; a set name emits only entities
// carrying that property, each with exactly that one.
func (e *Engine) attachProperties(inner types.QueryOutputValue, name *types.Identifier) (types.QueryOutputValue, error) {
	switch entities := inner.(type) {
	case types.VertexResults:
		out := make(types.VertexPropertyResults, 0, len(entities))
		for _, v := range entities {
			if name == nil {
				out = append(out, types.VertexProperties{Vertex: v, Props: e.store.AllVertexProperties(v.ID)})
				continue
			}
			if val, ok := e.store.GetVertexProperty(v.ID, *name); ok {
				out = append(out, types.VertexProperties{
					Vertex: v,
					Props:  []types.NamedProperty{{Name: *name, Value: val}},
				})
			}
		}
		return out, nil
	case types.EdgeResults:
		out := make(types.EdgePropertyResults, 0, len(entities))
		for _, edge := range entities {
			if name == nil {
				out = append(out, types.EdgeProperties{Edge: edge, Props: e.store.AllEdgeProperties(edge)})
				continue
			}
			if val, ok := e.store.GetEdgeProperty(edge, *name); ok {
				out = append(out, types.EdgeProperties{
					Edge:  edge,
					Props: []types.NamedProperty{{Name: *name, Value: val}},
				})
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot fetch properties of %s", types.ErrInvalidQuery, outputKind(inner))
	}
}

// filterByPresence keeps inner entities that carry the named property. The
// membership test goes through the property index, so unindexed names fail.
func (e *Engine) filterByPresence(inner types.QueryOutputValue, name types.Identifier) (types.QueryOutputValue, error) {
	switch entities := inner.(type) {
	case types.VertexResults:
		ids, err := e.store.VerticesWithProperty(name)
		if err != nil {
			return nil, err
		}
		member := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			member[id] = struct{}{}
		}
		out := make(types.VertexResults, 0)
		for _, v := range entities {
			if _, ok := member[v.ID]; ok {
				out = append(out, v)
			}
		}
		return out, nil
	case types.EdgeResults:
		withProp, err := e.store.EdgesWithProperty(name)
		if err != nil {
			return nil, err
		}
		member := make(map[types.Edge]struct{}, len(withProp))
		for _, edge := range withProp {
			member[edge] = struct{}{}
		}
		out := make(types.EdgeResults, 0)
		for _, edge := range entities {
			if _, ok := member[edge]; ok {
				out = append(out, edge)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot filter %s by property presence", types.ErrInvalidQuery, outputKind(inner))
	}
}

// filterByValue keeps inner entities whose named property equals (or, with
// equal false, does not equal) the value. Inequality keeps entities that lack
// the property entirely. Requires the name to be indexed.
func (e *Engine) filterByValue(inner types.QueryOutputValue, name types.Identifier, value types.Value, equal bool) (types.QueryOutputValue, error) {
	switch entities := inner.(type) {
	case types.VertexResults:
		ids, err := e.store.VerticesWithPropertyValue(name, value)
		if err != nil {
			return nil, err
		}
		member := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			member[id] = struct{}{}
		}
		out := make(types.VertexResults, 0)
		for _, v := range entities {
			if _, ok := member[v.ID]; ok == equal {
				out = append(out, v)
			}
		}
		return out, nil
	case types.EdgeResults:
		withValue, err := e.store.EdgesWithPropertyValue(name, value)
		if err != nil {
			return nil, err
		}
		member := make(map[types.Edge]struct{}, len(withValue))
		for _, edge := range withValue {
			member[edge] = struct{}{}
		}
		out := make(types.EdgeResults, 0)
		for _, edge := range entities {
			if _, ok := member[edge]; ok == equal {
				out = append(out, edge)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot filter %s by property value", types.ErrInvalidQuery, outputKind(inner))
	}
}

// count reduces the inner stream to its cardinality. Counting everything hits
// the table length instead of enumerating.
func (e *Engine) count(ctx context.Context, inner types.Query, outputs *[]types.QueryOutputValue) (types.QueryOutputValue, error) {
	switch inner.(type) {
	case types.AllVertexQuery:
		return types.CountResult(e.store.CountVertices()), nil
	case types.AllEdgeQuery:
		return types.CountResult(e.store.CountEdges()), nil
	}

	result, err := e.evaluate(ctx, inner, outputs)
	if err != nil {
		return nil, err
	}
	return types.CountResult(types.OutputLen(result)), nil
}

func outputKind(v types.QueryOutputValue) string {
	switch v.(type) {
	case types.VertexResults:
		return "vertices"
	case types.EdgeResults:
		return "edges"
	case types.VertexPropertyResults:
		return "vertex properties"
	case types.EdgePropertyResults:
		return "edge properties"
	case types.CountResult:
		return "a count"
	default:
		return "unknown output"
	}
}
