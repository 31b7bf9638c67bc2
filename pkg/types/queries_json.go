package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Wire encoding for query trees: a tagged envelope per node, with pipe nodes
// nesting their inner query recursively. This is what crosses the HTTP
// boundary; the engine itself only ever sees decoded Query values.

type queryEnvelope struct {
	Type string `json:"type"`

	StartID   *uuid.UUID      `json:"start_id,omitempty"`
	T         *Identifier     `json:"t,omitempty"`
	Limit     uint32          `json:"limit,omitempty"`
	IDs       []uuid.UUID     `json:"ids,omitempty"`
	Edges     []Edge          `json:"edges,omitempty"`
	Name      *Identifier     `json:"name,omitempty"`
	Value     Value           `json:"value,omitempty"`
	Equal     *bool           `json:"equal,omitempty"`
	Direction Direction       `json:"direction,omitempty"`
	Inner     json.RawMessage `json:"inner,omitempty"`
}

const (
	queryTagAllVertices            = "all_vertices"
	queryTagRangeVertices          = "range_vertices"
	queryTagSpecificVertices       = "specific_vertices"
	queryTagVertexPropertyPresence = "vertices_with_property"
	queryTagVertexPropertyValue    = "vertices_with_property_value"
	queryTagAllEdges               = "all_edges"
	queryTagSpecificEdges          = "specific_edges"
	queryTagEdgePropertyPresence   = "edges_with_property"
	queryTagEdgePropertyValue      = "edges_with_property_value"
	queryTagPipe                   = "pipe"
	queryTagPipeProperty           = "pipe_property"
	queryTagPipePropertyPresence   = "pipe_with_property"
	queryTagPipePropertyValue      = "pipe_with_property_value"
	queryTagInclude                = "include"
	queryTagCount                  = "count"
)

// MarshalQuery encodes a query tree as tagged JSON.
func MarshalQuery(q Query) ([]byte, error) {
	env, err := queryToEnvelope(q)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func queryToEnvelope(q Query) (*queryEnvelope, error) {
	env := &queryEnvelope{}
	switch t := q.(type) {
	case AllVertexQuery:
		env.Type = queryTagAllVertices
	case RangeVertexQuery:
		env.Type = queryTagRangeVertices
		env.StartID = t.StartID
		env.T = t.T
		env.Limit = t.Limit
	case SpecificVertexQuery:
		env.Type = queryTagSpecificVertices
		env.IDs = t.IDs
	case VertexWithPropertyPresenceQuery:
		env.Type = queryTagVertexPropertyPresence
		env.Name = &t.Name
	case VertexWithPropertyValueQuery:
		env.Type = queryTagVertexPropertyValue
		env.Name = &t.Name
		env.Value = t.Value
	case AllEdgeQuery:
		env.Type = queryTagAllEdges
	case SpecificEdgeQuery:
		env.Type = queryTagSpecificEdges
		env.Edges = t.Edges
	case EdgeWithPropertyPresenceQuery:
		env.Type = queryTagEdgePropertyPresence
		env.Name = &t.Name
	case EdgeWithPropertyValueQuery:
		env.Type = queryTagEdgePropertyValue
		env.Name = &t.Name
		env.Value = t.Value
	case PipeQuery:
		env.Type = queryTagPipe
		env.Direction = t.Direction
		env.Limit = t.Limit
		env.T = t.T
		inner, err := MarshalQuery(t.Inner)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	case PipePropertyQuery:
		env.Type = queryTagPipeProperty
		env.Name = t.Name
		inner, err := MarshalQuery(t.Inner)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	case PipeWithPropertyPresenceQuery:
		env.Type = queryTagPipePropertyPresence
		env.Name = &t.Name
		inner, err := MarshalQuery(t.Inner)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	case PipeWithPropertyValueQuery:
		env.Type = queryTagPipePropertyValue
		env.Name = &t.Name
		env.Value = t.Value
		equal := t.Equal
		env.Equal = &equal
		inner, err := MarshalQuery(t.Inner)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	case IncludeQuery:
		env.Type = queryTagInclude
		inner, err := MarshalQuery(t.Inner)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	case CountQuery:
		env.Type = queryTagCount
		inner, err := MarshalQuery(t.Inner)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	default:
		return nil, fmt.Errorf("unknown query node %T", q)
	}
	return env, nil
}

// UnmarshalQuery decodes a query tree produced by MarshalQuery.
func UnmarshalQuery(data []byte) (Query, error) {
	var env queryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	inner := func() (Query, error) {
		if len(env.Inner) == 0 {
			return nil, fmt.Errorf("%w: %s node missing inner query", ErrInvalidQuery, env.Type)
		}
		return UnmarshalQuery(env.Inner)
	}
	name := func() (Identifier, error) {
		if env.Name == nil {
			return "", fmt.Errorf("%w: %s node missing property name", ErrInvalidQuery, env.Type)
		}
		return *env.Name, nil
	}

	switch env.Type {
	case queryTagAllVertices:
		return AllVertexQuery{}, nil
	case queryTagRangeVertices:
		return RangeVertexQuery{StartID: env.StartID, T: env.T, Limit: env.Limit}, nil
	case queryTagSpecificVertices:
		return SpecificVertexQuery{IDs: env.IDs}, nil
	case queryTagVertexPropertyPresence:
		n, err := name()
		if err != nil {
			return nil, err
		}
		return VertexWithPropertyPresenceQuery{Name: n}, nil
	case queryTagVertexPropertyValue:
		n, err := name()
		if err != nil {
			return nil, err
		}
		return VertexWithPropertyValueQuery{Name: n, Value: env.Value}, nil
	case queryTagAllEdges:
		return AllEdgeQuery{}, nil
	case queryTagSpecificEdges:
		return SpecificEdgeQuery{Edges: env.Edges}, nil
	case queryTagEdgePropertyPresence:
		n, err := name()
		if err != nil {
			return nil, err
		}
		return EdgeWithPropertyPresenceQuery{Name: n}, nil
	case queryTagEdgePropertyValue:
		n, err := name()
		if err != nil {
			return nil, err
		}
		return EdgeWithPropertyValueQuery{Name: n, Value: env.Value}, nil
	case queryTagPipe:
		in, err := inner()
		if err != nil {
			return nil, err
		}
		return PipeQuery{Inner: in, Direction: env.Direction, Limit: env.Limit, T: env.T}, nil
	case queryTagPipeProperty:
		in, err := inner()
		if err != nil {
			return nil, err
		}
		return PipePropertyQuery{Inner: in, Name: env.Name}, nil
	case queryTagPipePropertyPresence:
		in, err := inner()
		if err != nil {
			return nil, err
		}
		n, err := name()
		if err != nil {
			return nil, err
		}
		return PipeWithPropertyPresenceQuery{Inner: in, Name: n}, nil
	case queryTagPipePropertyValue:
		in, err := inner()
		if err != nil {
			return nil, err
		}
		n, err := name()
		if err != nil {
			return nil, err
		}
		equal := true
		if env.Equal != nil {
			equal = *env.Equal
		}
		return PipeWithPropertyValueQuery{Inner: in, Name: n, Value: env.Value, Equal: equal}, nil
	case queryTagInclude:
		in, err := inner()
		if err != nil {
			return nil, err
		}
		return IncludeQuery{Inner: in}, nil
	case queryTagCount:
		in, err := inner()
		if err != nil {
			return nil, err
		}
		return CountQuery{Inner: in}, nil
	default:
		return nil, fmt.Errorf("%w: unknown query type %q", ErrInvalidQuery, env.Type)
	}
}
