package client

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/types"
)

// NOTE: This is an INTEGRATION test suite.
// It requires a running GrafDB server at localhost:9091.
func TestClientIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}

	client := New("localhost", 9091, "")

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping failed, is the server running? %v", err)
	}

	// Unique type per run to keep reruns against the same server readable.
	vertexType := types.Identifier(fmt.Sprintf("e2e-%d", time.Now().UnixNano()))

	var src, dst uuid.UUID

	t.Run("A - Vertices and Edges", func(t *testing.T) {
		var err error
		src, err = client.CreateVertex(vertexType)
		if err != nil {
			t.Fatalf("CreateVertex failed: %v", err)
		}
		dst, err = client.CreateVertex(vertexType)
		if err != nil {
			t.Fatalf("CreateVertex failed: %v", err)
		}

		created, err := client.CreateEdge(types.NewEdge(src, "linked", dst))
		if err != nil {
			t.Fatalf("CreateEdge failed: %v", err)
		}
		if !created {
			t.Error("expected edge to be created")
		}

		// Duplicate triple is "not created".
		created, err = client.CreateEdge(types.NewEdge(src, "linked", dst))
		if err != nil {
			t.Fatalf("CreateEdge (duplicate) failed: %v", err)
		}
		if created {
			t.Error("expected duplicate edge to report created=false")
		}
	})

	t.Run("B - Traversal Query", func(t *testing.T) {
		outputs, err := client.Query(types.PipeQuery{
			Inner:     types.SpecificVertexQuery{IDs: []uuid.UUID{src}},
			Direction: types.DirectionOutbound,
		})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(outputs) != 1 {
			t.Fatalf("expected 1 output stage, got %d", len(outputs))
		}
		vertices, ok := outputs[0].(types.VertexResults)
		if !ok {
			t.Fatalf("expected vertices, got %T", outputs[0])
		}
		if len(vertices) != 1 || vertices[0].ID != dst {
			t.Errorf("expected traversal to reach %s, got %v", dst, vertices)
		}
	})

	t.Run("C - Properties and Cleanup", func(t *testing.T) {
		target := types.SpecificVertexQuery{IDs: []uuid.UUID{src, dst}}

		err := client.SetProperties(target, "weight", types.MustValue(42))
		if err != nil {
			t.Fatalf("SetProperties failed: %v", err)
		}

		outputs, err := client.Query(types.PipePropertyQuery{Inner: target})
		if err != nil {
			t.Fatalf("property query failed: %v", err)
		}
		props, ok := outputs[0].(types.VertexPropertyResults)
		if !ok {
			t.Fatalf("expected vertex properties, got %T", outputs[0])
		}
		if len(props) != 2 {
			t.Errorf("expected properties for 2 vertices, got %d", len(props))
		}

		if err := client.Delete(target); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	})
}
