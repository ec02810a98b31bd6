package corpus

import (
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

func mustReq(t *testing.T, u string) *request.Request {
	t.Helper()
	r, err := request.New(types.GET, u, nil, nil, false)
	require.NoError(t, err)
	return r
}

func TestAddAdmitsNewLabel(t *testing.T) {
	c := New(types.PolicyEdge, 100, 100)
	r := mustReq(t, "http://t/")

	admitted := c.Add(r, types.CFGTuple{XorCFG: types.CFG{1: 2}})
	require.True(t, admitted)
	require.Equal(t, 1, c.Size())
	require.True(t, c.RefCountInvariantHolds())
}

func TestAddRejectsNonRaisingRequest(t *testing.T) {
	c := New(types.PolicyEdge, 100, 100)
	r1 := mustReq(t, "http://t/a")
	require.True(t, c.Add(r1, types.CFGTuple{XorCFG: types.CFG{1: 3}}))

	r2 := mustReq(t, "http://t/b")
	// r2's bucket at label 1 is strictly lower than the union's: not
	// interesting, and the union/corpus must be unchanged (admission
	// soundness, §8).
	admitted := c.Add(r2, types.CFGTuple{XorCFG: types.CFG{1: 1}})
	require.False(t, admitted)
	require.Equal(t, 1, c.Size())
}

func TestReplacementByLightness(t *testing.T) {
	c := New(types.PolicyEdge, 100, 100)

	r1 := mustReq(t, "http://t/r1")
	r1.ExecTime = 0.5
	require.True(t, c.Add(r1, types.CFGTuple{XorCFG: types.CFG{1: 2}}))
	require.Equal(t, 1, c.Size())

	r2 := mustReq(t, "http://t/r2")
	r2.ExecTime = 0.2
	require.True(t, c.Add(r2, types.CFGTuple{XorCFG: types.CFG{1: 2}}))

	require.Equal(t, 1, c.Size())
	require.Same(t, r2, c.Snapshot()[0])
}

func TestNextIncrementsPickedScoreAndReinserts(t *testing.T) {
	c := New(types.PolicyEdge, 100, 100)
	r := mustReq(t, "http://t/")
	c.Add(r, types.CFGTuple{XorCFG: types.CFG{1: 2}})

	picked, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, 1, picked.PickedScore)
	require.Equal(t, 1, c.Size())
}

func TestCorpusNeverHoldsDuplicateIdentity(t *testing.T) {
	c := New(types.PolicyEdge, 100, 100)
	r := mustReq(t, "http://t/")
	c.Add(r, types.CFGTuple{XorCFG: types.CFG{1: 2}})
	// re-admitting the same identity with a further raise must not create a
	// second heap entry.
	c.Add(r, types.CFGTuple{XorCFG: types.CFG{1: 2, 2: 1}})
	require.Equal(t, 1, c.Size())
}

func TestTotalCoverScore(t *testing.T) {
	c := New(types.PolicyEdge, 10, 10)
	r := mustReq(t, "http://t/")
	c.Add(r, types.CFGTuple{XorCFG: types.CFG{1: 2}})
	require.InDelta(t, 10.0, c.TotalCoverScore(), 0.0001)
}
