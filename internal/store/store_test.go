package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/types"
)

func newVertex(t types.Identifier) types.Vertex {
	return types.NewVertex(t)
}

func TestCreateVertexDuplicate(t *testing.T) {
	s := NewStore()
	v := newVertex("person")

	if !s.CreateVertex(v) {
		t.Fatal("first create should succeed")
	}
	if s.CreateVertex(v) {
		t.Error("duplicate identity should not be created")
	}
	// Same identity, different type: still a duplicate.
	if s.CreateVertex(types.Vertex{ID: v.ID, T: "robot"}) {
		t.Error("duplicate identity with different type should not be created")
	}
	if got := s.CountVertices(); got != 1 {
		t.Errorf("expected 1 vertex, got %d", got)
	}
}

func TestCreateEdgeEndpointEnforcement(t *testing.T) {
	s := NewStore()
	a, b := newVertex("person"), newVertex("person")
	s.CreateVertex(a)

	missing := types.NewEdge(a.ID, "knows", b.ID)
	if s.CreateEdge(missing, true) {
		t.Error("edge to a missing endpoint should not be created when enforced")
	}
	// Bulk path accepts dangling edges.
	if !s.CreateEdge(missing, false) {
		t.Error("unenforced create should accept a dangling edge")
	}

	s.CreateVertex(b)
	if s.CreateEdge(missing, true) {
		t.Error("duplicate triple should not be created")
	}
	if got := s.CountEdges(); got != 1 {
		t.Errorf("expected 1 edge, got %d", got)
	}
}

func TestScanVerticesOrderCursorTypeLimit(t *testing.T) {
	s := NewStore()
	// UUIDv7 allocation is time-ordered, so creation order is scan order.
	var people, robots []types.Vertex
	for i := 0; i < 3; i++ {
		p, r := newVertex("person"), newVertex("robot")
		s.CreateVertex(p)
		s.CreateVertex(r)
		people = append(people, p)
		robots = append(robots, r)
	}

	collect := func(start *uuid.UUID, typ *types.Identifier, limit uint32) []types.Vertex {
		var out []types.Vertex
		s.ScanVertices(start, typ, limit, func(v types.Vertex) bool {
			out = append(out, v)
			return true
		})
		return out
	}

	all := collect(nil, nil, 0)
	if len(all) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if uuidLess(all[i].ID, all[i-1].ID) {
			t.Fatal("scan must be in identity order")
		}
	}

	// The cursor is exclusive.
	after := collect(&all[2].ID, nil, 0)
	if len(after) != 3 || after[0].ID == all[2].ID {
		t.Errorf("cursor scan should start strictly after the cursor, got %d entries", len(after))
	}

	typ := types.MustIdentifier("robot")
	onlyRobots := collect(nil, &typ, 0)
	if len(onlyRobots) != 3 {
		t.Fatalf("expected 3 robots, got %d", len(onlyRobots))
	}
	for _, v := range onlyRobots {
		if v.T != "robot" {
			t.Errorf("type filter leaked a %q", v.T)
		}
	}

	limited := collect(nil, &typ, 2)
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d", len(limited))
	}
	if got := collect(&robots[0].ID, &typ, 1); len(got) != 1 || got[0].ID != robots[1].ID {
		t.Error("cursor, type filter and limit should compose")
	}
}

func TestDeleteVertexCascades(t *testing.T) {
	s := NewStore()
	a, b, c := newVertex("person"), newVertex("person"), newVertex("person")
	for _, v := range []types.Vertex{a, b, c} {
		s.CreateVertex(v)
	}
	ab := types.NewEdge(a.ID, "knows", b.ID)
	cb := types.NewEdge(c.ID, "knows", b.ID)
	bc := types.NewEdge(b.ID, "knows", c.ID)
	for _, e := range []types.Edge{ab, cb, bc} {
		s.CreateEdge(e, true)
	}
	if err := s.SetVertexProperty(b.ID, "name", types.MustValue("bee")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEdgeProperty(ab, "weight", types.MustValue(1)); err != nil {
		t.Fatal(err)
	}

	if !s.DeleteVertex(b.ID) {
		t.Fatal("delete should report the vertex existed")
	}
	if s.DeleteVertex(b.ID) {
		t.Error("second delete should report missing")
	}

	if s.VertexExists(b.ID) {
		t.Error("vertex survived delete")
	}
	// Every incident edge goes, in both directions.
	if got := s.CountEdges(); got != 0 {
		t.Errorf("expected all incident edges deleted, %d remain", got)
	}
	if _, ok := s.GetVertexProperty(b.ID, "name"); ok {
		t.Error("vertex property survived delete")
	}
	if _, ok := s.GetEdgeProperty(ab, "weight"); ok {
		t.Error("edge property survived cascade")
	}
	// Untouched vertices remain.
	if !s.VertexExists(a.ID) || !s.VertexExists(c.ID) {
		t.Error("unrelated vertices must survive")
	}
}

func TestOutboundInboundEdges(t *testing.T) {
	s := NewStore()
	hub, x, y := newVertex("n"), newVertex("n"), newVertex("n")
	for _, v := range []types.Vertex{hub, x, y} {
		s.CreateVertex(v)
	}
	s.CreateEdge(types.NewEdge(hub.ID, "a", x.ID), true)
	s.CreateEdge(types.NewEdge(hub.ID, "b", x.ID), true)
	s.CreateEdge(types.NewEdge(hub.ID, "b", y.ID), true)
	s.CreateEdge(types.NewEdge(y.ID, "a", hub.ID), true)

	if got := s.OutboundEdges(hub.ID, nil, 0); len(got) != 3 {
		t.Errorf("expected 3 outbound edges, got %d", len(got))
	}
	typ := types.MustIdentifier("b")
	if got := s.OutboundEdges(hub.ID, &typ, 0); len(got) != 2 {
		t.Errorf("expected 2 outbound b edges, got %d", len(got))
	}
	if got := s.OutboundEdges(hub.ID, &typ, 1); len(got) != 1 {
		t.Errorf("limit 1 returned %d", len(got))
	}
	if got := s.InboundEdges(hub.ID, nil, 0); len(got) != 1 || got[0].Outbound != y.ID {
		t.Errorf("expected 1 inbound edge from y, got %v", got)
	}
	if got := s.InboundEdges(x.ID, nil, 0); len(got) != 2 {
		t.Errorf("expected 2 inbound edges at x, got %d", len(got))
	}
}

func TestPropertySetGetDelete(t *testing.T) {
	s := NewStore()
	v := newVertex("n")
	s.CreateVertex(v)

	if err := s.SetVertexProperty(v.ID, "score", types.MustValue(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetVertexProperty(v.ID, "score", types.MustValue(2)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetVertexProperty(v.ID, "zz", types.MustValue("last")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetVertexProperty(v.ID, "aa", types.MustValue("first")); err != nil {
		t.Fatal(err)
	}

	got, ok := s.GetVertexProperty(v.ID, "score")
	if !ok {
		t.Fatal("score should be set")
	}
	if canon, _ := got.Canonical(); canon != "2" {
		t.Errorf("last write should win, got %s", canon)
	}

	all := s.AllVertexProperties(v.ID)
	if len(all) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(all))
	}
	if all[0].Name != "aa" || all[1].Name != "score" || all[2].Name != "zz" {
		t.Errorf("properties must come back in name order, got %v", all)
	}

	if !s.DeleteVertexProperty(v.ID, "score") {
		t.Error("delete of a set property should report true")
	}
	if s.DeleteVertexProperty(v.ID, "score") {
		t.Error("delete of an absent property should report false")
	}

	if err := s.SetVertexProperty(v.ID, "bad", types.Value("{not json")); !errors.Is(err, types.ErrMalformedValue) {
		t.Errorf("malformed value should be rejected, got %v", err)
	}
}

func TestIndexLifecycle(t *testing.T) {
	s := NewStore()
	a, b, c := newVertex("n"), newVertex("n"), newVertex("n")
	for _, v := range []types.Vertex{a, b, c} {
		s.CreateVertex(v)
	}
	if err := s.SetVertexProperty(a.ID, "color", types.MustValue("red")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetVertexProperty(b.ID, "color", types.MustValue("blue")); err != nil {
		t.Fatal(err)
	}

	// Unindexed lookups fail.
	if _, err := s.VerticesWithProperty("color"); !errors.Is(err, types.ErrIndexRequired) {
		t.Fatalf("expected ErrIndexRequired before indexing, got %v", err)
	}
	if s.VertexPropertyIndexed("color") {
		t.Error("color should not report indexed yet")
	}

	// Index picks up pre-existing values.
	s.IndexVertexProperty("color")
	if !s.VertexPropertyIndexed("color") {
		t.Fatal("color should report indexed")
	}
	ids, err := s.VerticesWithProperty("color")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 members, got %d", len(ids))
	}
	// Members come back in identity order.
	if uuidLess(ids[1], ids[0]) {
		t.Error("index members must be in identity order")
	}

	// Writes after indexing maintain it.
	if err := s.SetVertexProperty(c.ID, "color", types.MustValue("red")); err != nil {
		t.Fatal(err)
	}
	reds, err := s.VerticesWithPropertyValue("color", types.MustValue("red"))
	if err != nil {
		t.Fatal(err)
	}
	if len(reds) != 2 {
		t.Fatalf("expected 2 red vertices, got %d", len(reds))
	}

	// Value change moves the entry between value buckets.
	if err := s.SetVertexProperty(a.ID, "color", types.MustValue("blue")); err != nil {
		t.Fatal(err)
	}
	reds, _ = s.VerticesWithPropertyValue("color", types.MustValue("red"))
	blues, _ := s.VerticesWithPropertyValue("color", types.MustValue("blue"))
	if len(reds) != 1 || len(blues) != 2 {
		t.Errorf("expected 1 red and 2 blue, got %d and %d", len(reds), len(blues))
	}

	// Deletes drop the entry.
	s.DeleteVertexProperty(b.ID, "color")
	ids, _ = s.VerticesWithProperty("color")
	if len(ids) != 2 {
		t.Errorf("expected 2 members after property delete, got %d", len(ids))
	}
	s.DeleteVertex(c.ID)
	ids, _ = s.VerticesWithProperty("color")
	if len(ids) != 1 || ids[0] != a.ID {
		t.Errorf("expected only a after vertex delete, got %v", ids)
	}

	// Redundant indexing is a no-op.
	s.IndexVertexProperty("color")
	if names := s.IndexedVertexPropertyNames(); len(names) != 1 {
		t.Errorf("expected exactly one indexed name, got %v", names)
	}
}

func TestEdgeIndexLifecycle(t *testing.T) {
	s := NewStore()
	a, b := newVertex("n"), newVertex("n")
	s.CreateVertex(a)
	s.CreateVertex(b)
	ab := types.NewEdge(a.ID, "rel", b.ID)
	ba := types.NewEdge(b.ID, "rel", a.ID)
	s.CreateEdge(ab, true)
	s.CreateEdge(ba, true)

	if err := s.SetEdgeProperty(ab, "weight", types.MustValue(5)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.EdgesWithProperty("weight"); !errors.Is(err, types.ErrIndexRequired) {
		t.Fatalf("expected ErrIndexRequired, got %v", err)
	}

	s.IndexEdgeProperty("weight")
	edges, err := s.EdgesWithPropertyValue("weight", types.MustValue(5))
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 1 || edges[0] != ab {
		t.Errorf("expected [ab], got %v", edges)
	}

	// Edge delete cascades out of the index.
	s.DeleteEdge(ab)
	edges, _ = s.EdgesWithProperty("weight")
	if len(edges) != 0 {
		t.Errorf("expected empty index after edge delete, got %v", edges)
	}
}
