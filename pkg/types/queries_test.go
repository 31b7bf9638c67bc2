package types

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestValidateQuery(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	name := MustIdentifier("name")

	valid := []Query{
		AllVertexQuery{},
		RangeVertexQuery{Limit: 10},
		SpecificVertexQuery{IDs: []uuid.UUID{id}},
		CountQuery{Inner: AllEdgeQuery{}},
		PipeQuery{Inner: AllVertexQuery{}, Direction: DirectionOutbound},
		IncludeQuery{Inner: PipePropertyQuery{Inner: AllVertexQuery{}, Name: &name}},
	}
	for _, q := range valid {
		if err := ValidateQuery(q); err != nil {
			t.Errorf("ValidateQuery(%T) unexpectedly failed: %v", q, err)
		}
	}

	invalid := []Query{
		nil,
		PipeQuery{Inner: AllVertexQuery{}, Direction: "sideways"},
		PipeQuery{Direction: DirectionOutbound},
		CountQuery{},
		// Counts are terminal.
		CountQuery{Inner: CountQuery{Inner: AllVertexQuery{}}},
		PipePropertyQuery{Inner: CountQuery{Inner: AllVertexQuery{}}},
		IncludeQuery{Inner: CountQuery{Inner: AllVertexQuery{}}},
	}
	for _, q := range invalid {
		err := ValidateQuery(q)
		if err == nil {
			t.Errorf("ValidateQuery(%T) unexpectedly succeeded: %#v", q, q)
			continue
		}
		if !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("ValidateQuery(%T) error should wrap ErrInvalidQuery, got %v", q, err)
		}
	}
}

func TestQueryJSONRoundTrip(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	name := MustIdentifier("score")
	typ := MustIdentifier("person")

	queries := []Query{
		AllVertexQuery{},
		RangeVertexQuery{StartID: &id, T: &typ, Limit: 50},
		SpecificVertexQuery{IDs: []uuid.UUID{id}},
		VertexWithPropertyValueQuery{Name: name, Value: MustValue(10)},
		SpecificEdgeQuery{Edges: []Edge{NewEdge(id, typ, id)}},
		PipeQuery{
			Inner:     SpecificVertexQuery{IDs: []uuid.UUID{id}},
			Direction: DirectionInbound,
			Limit:     3,
			T:         &typ,
		},
		PipeWithPropertyValueQuery{
			Inner: AllEdgeQuery{},
			Name:  name,
			Value: MustValue("x"),
			Equal: false,
		},
		IncludeQuery{Inner: AllEdgeQuery{}},
		CountQuery{Inner: AllVertexQuery{}},
	}

	for _, q := range queries {
		data, err := MarshalQuery(q)
		if err != nil {
			t.Fatalf("MarshalQuery(%T) failed: %v", q, err)
		}
		decoded, err := UnmarshalQuery(data)
		if err != nil {
			t.Fatalf("UnmarshalQuery(%T) failed: %v (wire: %s)", q, err, data)
		}
		if !reflect.DeepEqual(q, decoded) {
			t.Errorf("round trip changed %T:\n  sent %#v\n  got  %#v", q, q, decoded)
		}
	}
}

func TestUnmarshalQueryDefaultsEqualToTrue(t *testing.T) {
	data := []byte(`{"type":"pipe_with_property_value","name":"score","value":5,"inner":{"type":"all_vertices"}}`)
	q, err := UnmarshalQuery(data)
	if err != nil {
		t.Fatal(err)
	}
	pipe, ok := q.(PipeWithPropertyValueQuery)
	if !ok {
		t.Fatalf("expected PipeWithPropertyValueQuery, got %T", q)
	}
	if !pipe.Equal {
		t.Error("equal should default to true when omitted")
	}
}
