package coverage

import (
	"net/http"
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestParseHeadersExtractsLabelPrefix(t *testing.T) {
	h := http.Header{}
	h.Set("I-1", "3")
	h.Set("I-42", "10")
	h.Set("Content-Type", "text/html")

	raw := ParseHeaders(h)
	require.Equal(t, "3", raw[1])
	require.Equal(t, "10", raw[42])
	require.Len(t, raw, 2)
}

func TestParseInstrumentationEdgePolicy(t *testing.T) {
	raw := map[types.Label]string{1: "3", 2: "300"}
	tuple := ParseInstrumentation(raw, types.PolicyEdge)
	require.Len(t, tuple.XorCFG, 2)
	require.Len(t, tuple.SingleCFG, 0)
	require.Equal(t, types.Bucket(2), tuple.XorCFG[1])
	require.Equal(t, types.Bucket(8), tuple.XorCFG[2])
}

func TestParseInstrumentationNodeEdgeDropsZero(t *testing.T) {
	raw := map[types.Label]string{1: "3-0", 2: "0-5"}
	tuple := ParseInstrumentation(raw, types.PolicyNodeEdge)
	require.Len(t, tuple.XorCFG, 1)
	require.Len(t, tuple.SingleCFG, 1)
	_, hasXor := tuple.XorCFG[1]
	require.True(t, hasXor)
	_, hasSingle := tuple.SingleCFG[2]
	require.True(t, hasSingle)
}

func TestUnionRaisesAndTracksContributor(t *testing.T) {
	u := NewUnion()
	r, err := request.New(types.GET, "http://t/", nil, nil, false)
	require.NoError(t, err)

	u.Raise(1, 2, r)
	b, ok := u.Bucket(1)
	require.True(t, ok)
	require.Equal(t, types.Bucket(2), b)
	require.Same(t, r, u.Contributor(1))
	require.Equal(t, 1, u.Len())
}

func TestTotalCoverScore(t *testing.T) {
	u := NewUnion()
	r, _ := request.New(types.GET, "http://t/", nil, nil, false)
	u.Raise(1, 2, r)
	u.Raise(2, 3, r)
	require.InDelta(t, 20.0, u.TotalCoverScore(10), 0.0001)
}
