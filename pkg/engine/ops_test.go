package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/grafdb/pkg/types"
)

func TestCreateEdgeRequiresEndpoints(t *testing.T) {
	eng := openTestEngine(t)

	a, err := eng.CreateVertexFromType("n")
	require.NoError(t, err)
	ghost := uuid.Must(uuid.NewV7())

	created, err := eng.CreateEdge(types.NewEdge(a, "rel", ghost))
	require.NoError(t, err)
	require.False(t, created, "edge to a missing endpoint must not be created")

	b, err := eng.CreateVertexFromType("n")
	require.NoError(t, err)
	created, err = eng.CreateEdge(types.NewEdge(a, "rel", b))
	require.NoError(t, err)
	require.True(t, created)
}

func TestBulkInsertPolicy(t *testing.T) {
	eng := openTestEngine(t)

	existing, err := eng.CreateVertexFromType("n")
	require.NoError(t, err)

	fresh := types.NewVertex("n")
	ghost := uuid.Must(uuid.NewV7())

	items := []types.BulkInsertItem{
		types.BulkVertex{Vertex: fresh},
		// Duplicate: skipped, stream continues.
		types.BulkVertex{Vertex: types.Vertex{ID: existing, T: "n"}},
		// Dangling edge: accepted on the bulk path.
		types.BulkEdge{Edge: types.NewEdge(fresh.ID, "rel", ghost)},
		// Property on an absent vertex: accepted, integrity is not checked.
		types.BulkVertexProperty{ID: ghost, Name: "orphaned", Value: types.MustValue(1)},
		types.BulkVertexProperty{ID: fresh.ID, Name: "score", Value: types.MustValue(10)},
		// Malformed value: skipped.
		types.BulkVertexProperty{ID: fresh.ID, Name: "bad", Value: types.Value("{oops")},
		types.BulkEdgeProperty{Edge: types.NewEdge(fresh.ID, "rel", ghost), Name: "w", Value: types.MustValue(2)},
	}
	require.NoError(t, eng.BulkInsert(items))

	ctx := context.Background()
	out, err := eng.Get(ctx, types.CountQuery{Inner: types.AllVertexQuery{}})
	require.NoError(t, err)
	require.Equal(t, types.CountResult(2), out[0])

	out, err = eng.Get(ctx, types.CountQuery{Inner: types.AllEdgeQuery{}})
	require.NoError(t, err)
	require.Equal(t, types.CountResult(1), out[0])

	name := types.MustIdentifier("score")
	out, err = eng.Get(ctx, types.PipePropertyQuery{
		Inner: types.SpecificVertexQuery{IDs: []uuid.UUID{fresh.ID}},
		Name:  &name,
	})
	require.NoError(t, err)
	require.Len(t, out[0].(types.VertexPropertyResults), 1)
}

func TestDeleteByQuery(t *testing.T) {
	eng := openTestEngine(t)
	ctx := context.Background()

	a, err := eng.CreateVertexFromType("n")
	require.NoError(t, err)
	b, err := eng.CreateVertexFromType("n")
	require.NoError(t, err)
	_, err = eng.CreateEdge(types.NewEdge(a, "rel", b))
	require.NoError(t, err)

	both := types.SpecificVertexQuery{IDs: []uuid.UUID{a, b}}
	require.NoError(t, eng.SetProperties(ctx, both, "keep", types.MustValue(1)))
	require.NoError(t, eng.SetProperties(ctx, both, "drop", types.MustValue(2)))

	// A property-stage delete removes exactly those named properties.
	dropName := types.MustIdentifier("drop")
	require.NoError(t, eng.Delete(ctx, types.PipePropertyQuery{Inner: both, Name: &dropName}))

	out, err := eng.Get(ctx, types.PipePropertyQuery{Inner: both})
	require.NoError(t, err)
	for _, vp := range out[0].(types.VertexPropertyResults) {
		require.Len(t, vp.Props, 1)
		require.Equal(t, types.MustIdentifier("keep"), vp.Props[0].Name)
	}

	// A vertex-stage delete cascades.
	require.NoError(t, eng.Delete(ctx, types.SpecificVertexQuery{IDs: []uuid.UUID{a}}))
	out, err = eng.Get(ctx, types.CountQuery{Inner: types.AllEdgeQuery{}})
	require.NoError(t, err)
	require.Equal(t, types.CountResult(0), out[0])

	// Deleting a count is invalid.
	err = eng.Delete(ctx, types.CountQuery{Inner: types.AllVertexQuery{}})
	require.ErrorIs(t, err, types.ErrInvalidQuery)
}

func TestSetPropertiesByQuery(t *testing.T) {
	eng := openTestEngine(t)
	ctx := context.Background()

	a, err := eng.CreateVertexFromType("person")
	require.NoError(t, err)
	b, err := eng.CreateVertexFromType("robot")
	require.NoError(t, err)
	_ = b

	personType := types.MustIdentifier("person")
	require.NoError(t, eng.SetProperties(ctx,
		types.RangeVertexQuery{T: &personType},
		"kind", types.MustValue("human")))

	out, err := eng.Get(ctx, types.PipePropertyQuery{Inner: types.AllVertexQuery{}})
	require.NoError(t, err)
	props := out[0].(types.VertexPropertyResults)
	require.Len(t, props, 2)
	for _, vp := range props {
		if vp.Vertex.ID == a {
			require.Len(t, vp.Props, 1)
		} else {
			require.Empty(t, vp.Props)
		}
	}

	// Malformed values are rejected before anything is written.
	err = eng.SetProperties(ctx, types.AllVertexQuery{}, "bad", types.Value("nope"))
	require.ErrorIs(t, err, types.ErrMalformedValue)

	// Edge-domain updates by query.
	_, err = eng.CreateEdge(types.NewEdge(a, "made", b))
	require.NoError(t, err)
	require.NoError(t, eng.SetProperties(ctx, types.AllEdgeQuery{}, "since", types.MustValue(2020)))
	sinceName := types.MustIdentifier("since")
	out, err = eng.Get(ctx, types.PipePropertyQuery{Inner: types.AllEdgeQuery{}, Name: &sinceName})
	require.NoError(t, err)
	require.Len(t, out[0].(types.EdgePropertyResults), 1)

	// Property stages are not valid set-properties targets.
	err = eng.SetProperties(ctx, types.PipePropertyQuery{Inner: types.AllVertexQuery{}}, "x", types.MustValue(1))
	require.ErrorIs(t, err, types.ErrInvalidQuery)
}
