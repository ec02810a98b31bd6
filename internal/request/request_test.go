package request

import (
	"strings"
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, method types.HTTPMethod, u string, params Params) *Request {
	t.Helper()
	r, err := New(method, u, params, nil, false)
	require.NoError(t, err)
	return r
}

func TestNewRejectsPostParamsOnGet(t *testing.T) {
	_, err := New(types.GET, "http://t/", Params{
		types.POST: {"a": {"1"}},
	}, nil, false)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestURLCanonicalisationStripsFragment(t *testing.T) {
	r := mustNew(t, types.GET, "http://t/path#frag", nil)
	require.Equal(t, "http://t/path", r.URL())

	r2, err := New(types.GET, "http://t/path#frag", nil, nil, true)
	require.NoError(t, err)
	require.Equal(t, "http://t/path#frag", r2.URL())
}

func TestParamClamp(t *testing.T) {
	long := strings.Repeat("a", MaxParamSize*2)
	r := mustNew(t, types.GET, "http://t/", Params{
		types.GET: {"q": {long}},
	})
	for _, v := range r.Params()[types.GET]["q"] {
		require.LessOrEqual(t, len(v), MaxParamSize)
	}
}

func TestHashStableAcrossNonIdentityMutation(t *testing.T) {
	r := mustNew(t, types.GET, "http://t/", Params{types.GET: {"a": {"1"}}})
	h1 := r.Hash()

	r.PickedScore++
	r.ExecTime = 1.23
	r.Sinks["x"] = struct{}{}
	r.CoverXor = 5

	require.Equal(t, h1, r.Hash())
}

func TestEqualityByIdentity(t *testing.T) {
	a := mustNew(t, types.GET, "http://t/x?q=1", Params{types.GET: {"q": {"1"}}})
	b := mustNew(t, types.GET, "http://t/x?q=1", Params{types.GET: {"q": {"1"}}})
	require.True(t, a.Equal(b))

	c := mustNew(t, types.GET, "http://t/x?q=2", Params{types.GET: {"q": {"2"}}})
	require.False(t, a.Equal(c))
}

func TestBucketMonotonicityAndCeiling(t *testing.T) {
	prev := types.Bucket(0)
	for n := 1; n < 260; n++ {
		b := ToBucket(n)
		require.GreaterOrEqual(t, int(b), int(prev))
		prev = b
	}
	require.Equal(t, types.Bucket(8), ToBucket(256))
	require.Equal(t, types.Bucket(8), ToBucket(1000))
	require.Equal(t, types.Bucket(0), ToBucket(1))
	require.Equal(t, types.Bucket(1), ToBucket(2))
	require.Equal(t, types.Bucket(2), ToBucket(3))
	require.Equal(t, types.Bucket(2), ToBucket(4))
}

func TestMutatedScoreZeroWithoutParent(t *testing.T) {
	r := mustNew(t, types.GET, "http://t/", nil)
	require.Equal(t, 0, r.MutatedScore(types.PolicyEdge))
}

func TestMutatedScoreDiffsAgainstParent(t *testing.T) {
	parent := mustNew(t, types.GET, "http://t/", nil)
	parent.CoverXor = 3

	child, err := New(types.GET, "http://t/", nil, parent, false)
	require.NoError(t, err)
	child.CoverXor = 7

	require.Equal(t, 4, child.MutatedScore(types.PolicyEdge))
}

func TestIsLighterThanGuardsAgainstNoise(t *testing.T) {
	heavy := mustNew(t, types.GET, "http://t/a", nil)
	heavy.ExecTime = 0.5
	light := mustNew(t, types.GET, "http://t/b", nil)
	light.ExecTime = 0.2

	require.True(t, light.IsLighterThan(heavy))
	require.False(t, heavy.IsLighterThan(light))

	// Nearly identical requests should not be considered lighter: the
	// relative difference falls inside UNCERTAINTY_THRESH.
	a := mustNew(t, types.GET, "http://t/a", nil)
	a.ExecTime = 0.50
	b := mustNew(t, types.GET, "http://t/b", nil)
	b.ExecTime = 0.51
	require.False(t, a.IsLighterThan(b))
}

func TestSummaryOmitsInternalFields(t *testing.T) {
	r := mustNew(t, types.GET, "http://t/", Params{types.GET: {"a": {"1"}}})
	out, err := r.Summary(types.PolicyEdge, 10, 10)
	require.NoError(t, err)
	s := string(out)
	require.Contains(t, s, `"method"`)
	require.Contains(t, s, `"hash"`)
	require.NotContains(t, s, "picked_score")
	require.NotContains(t, s, "ref_count")
}
