package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/grafdb/pkg/types"
)

func TestReplayAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)

	eng, err := Open(opts)
	require.NoError(t, err)

	alice, err := eng.CreateVertexFromType("person")
	require.NoError(t, err)
	bob, err := eng.CreateVertexFromType("person")
	require.NoError(t, err)
	gone, err := eng.CreateVertexFromType("person")
	require.NoError(t, err)

	created, err := eng.CreateEdge(types.NewEdge(alice, "follows", bob))
	require.NoError(t, err)
	require.True(t, created)

	target := types.SpecificVertexQuery{IDs: []uuid.UUID{alice}}
	require.NoError(t, eng.SetProperties(context.Background(), target, "name", types.MustValue("alice")))
	require.NoError(t, eng.IndexProperty(types.DomainVertex, "name"))

	require.NoError(t, eng.Delete(context.Background(), types.SpecificVertexQuery{IDs: []uuid.UUID{gone}}))
	require.NoError(t, eng.Close())

	// Reopen: replay must reconstruct exactly the surviving state.
	eng, err = Open(opts)
	require.NoError(t, err)
	defer eng.Close()

	out, err := eng.Get(context.Background(), types.CountQuery{Inner: types.AllVertexQuery{}})
	require.NoError(t, err)
	require.Equal(t, types.CountResult(2), out[0])

	out, err = eng.Get(context.Background(), types.SpecificEdgeQuery{Edges: []types.Edge{types.NewEdge(alice, "follows", bob)}})
	require.NoError(t, err)
	require.Len(t, out[0].(types.EdgeResults), 1)

	// The index declaration replays too.
	out, err = eng.Get(context.Background(), types.VertexWithPropertyValueQuery{Name: "name", Value: types.MustValue("alice")})
	require.NoError(t, err)
	ids := out[0].(types.VertexResults)
	require.Len(t, ids, 1)
	require.Equal(t, alice, ids[0].ID)
}

func TestRewriteAOFPreservesState(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)

	eng, err := Open(opts)
	require.NoError(t, err)

	// Generate history with churn: the rewrite should shed the dead weight.
	var keep []uuid.UUID
	for i := 0; i < 10; i++ {
		id, err := eng.CreateVertexFromType("node")
		require.NoError(t, err)
		if i%2 == 0 {
			keep = append(keep, id)
		} else {
			require.NoError(t, eng.Delete(context.Background(), types.SpecificVertexQuery{IDs: []uuid.UUID{id}}))
		}
	}
	created, err := eng.CreateEdge(types.NewEdge(keep[0], "linked", keep[1]))
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, eng.SetProperties(context.Background(),
		types.SpecificVertexQuery{IDs: keep}, "alive", types.MustValue(true)))
	require.NoError(t, eng.IndexProperty(types.DomainVertex, "alive"))

	require.NoError(t, eng.RewriteAOF())

	// Writes after the rewrite land in the new log.
	last, err := eng.CreateVertexFromType("node")
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	eng, err = Open(opts)
	require.NoError(t, err)
	defer eng.Close()

	out, err := eng.Get(context.Background(), types.CountQuery{Inner: types.AllVertexQuery{}})
	require.NoError(t, err)
	require.Equal(t, types.CountResult(6), out[0])

	out, err = eng.Get(context.Background(), types.SpecificVertexQuery{IDs: []uuid.UUID{last}})
	require.NoError(t, err)
	require.Len(t, out[0].(types.VertexResults), 1)

	out, err = eng.Get(context.Background(), types.VertexWithPropertyPresenceQuery{Name: "alive"})
	require.NoError(t, err)
	require.Len(t, out[0].(types.VertexResults), 5)
}

func TestOpenCreatesDataDir(t *testing.T) {
	dir := t.TempDir() + "/nested/deeper"
	eng, err := Open(DefaultOptions(dir))
	require.NoError(t, err)
	require.NoError(t, eng.Ping())
	require.NoError(t, eng.Sync())
	require.NoError(t, eng.Close())
	// Close is idempotent.
	require.NoError(t, eng.Close())
}
