package types

import (
	"encoding/json"
	"fmt"
)

// QueryOutputValue is one labeled output stage of an evaluated query: the
// entities (or scalar) produced by a query node that was marked for
// inclusion, plus the implicit outermost stage.
type QueryOutputValue interface {
	queryOutputValue()
}

// VertexResults is a stage that produced vertices.
type VertexResults []Vertex

// EdgeResults is a stage that produced edges.
type EdgeResults []Edge

// VertexPropertyResults is a stage that produced vertices with properties.
type VertexPropertyResults []VertexProperties

// EdgePropertyResults is a stage that produced edges with properties.
type EdgePropertyResults []EdgeProperties

// CountResult is a stage reduced to a single scalar.
type CountResult uint64

func (VertexResults) queryOutputValue()         {}
func (EdgeResults) queryOutputValue()           {}
func (VertexPropertyResults) queryOutputValue() {}
func (EdgePropertyResults) queryOutputValue()   {}
func (CountResult) queryOutputValue()           {}

// OutputLen returns the number of entities in a stage; a count stage has length 1.
func OutputLen(v QueryOutputValue) int {
	switch t := v.(type) {
	case VertexResults:
		return len(t)
	case EdgeResults:
		return len(t)
	case VertexPropertyResults:
		return len(t)
	case EdgePropertyResults:
		return len(t)
	default:
		return 1
	}
}

type outputEnvelope struct {
	Type             string             `json:"type"`
	Vertices         []Vertex           `json:"vertices,omitempty"`
	Edges            []Edge             `json:"edges,omitempty"`
	VertexProperties []VertexProperties `json:"vertex_properties,omitempty"`
	EdgeProperties   []EdgeProperties   `json:"edge_properties,omitempty"`
	Count            *uint64            `json:"count,omitempty"`
}

const (
	outputTagVertices         = "vertices"
	outputTagEdges            = "edges"
	outputTagVertexProperties = "vertex_properties"
	outputTagEdgeProperties   = "edge_properties"
	outputTagCount            = "count"
)

// MarshalOutput encodes a stage as tagged JSON.
func MarshalOutput(v QueryOutputValue) ([]byte, error) {
	env := outputEnvelope{}
	switch t := v.(type) {
	case VertexResults:
		env.Type = outputTagVertices
		env.Vertices = t
	case EdgeResults:
		env.Type = outputTagEdges
		env.Edges = t
	case VertexPropertyResults:
		env.Type = outputTagVertexProperties
		env.VertexProperties = t
	case EdgePropertyResults:
		env.Type = outputTagEdgeProperties
		env.EdgeProperties = t
	case CountResult:
		env.Type = outputTagCount
		count := uint64(t)
		env.Count = &count
	default:
		return nil, fmt.Errorf("unknown output value %T", v)
	}
	return json.Marshal(env)
}

// UnmarshalOutput decodes a stage produced by MarshalOutput.
func UnmarshalOutput(data []byte) (QueryOutputValue, error) {
	var env outputEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case outputTagVertices:
		return VertexResults(env.Vertices), nil
	case outputTagEdges:
		return EdgeResults(env.Edges), nil
	case outputTagVertexProperties:
		return VertexPropertyResults(env.VertexProperties), nil
	case outputTagEdgeProperties:
		return EdgePropertyResults(env.EdgeProperties), nil
	case outputTagCount:
		if env.Count == nil {
			return nil, fmt.Errorf("count output missing count field")
		}
		return CountResult(*env.Count), nil
	default:
		return nil, fmt.Errorf("unknown output type %q", env.Type)
	}
}
