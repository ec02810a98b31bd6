package crawler

import (
	"strconv"
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

func TestAddIsIdempotentAcrossDuplicateSets(t *testing.T) {
	c := New(nil)
	a := mustReq(t, "http://t/a")

	c.Add([]*request.Request{a, a})
	require.Equal(t, 1, c.PendingRequests())

	c.Add([]*request.Request{a, a})
	require.Equal(t, 1, c.PendingRequests())
}

func TestAddSkipsAlreadySeen(t *testing.T) {
	c := New(nil)
	a := mustReq(t, "http://t/a")
	c.Add([]*request.Request{a})

	_, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, 0, c.PendingRequests())

	// re-adding the same link after it has been yielded must not re-queue it
	c.Add([]*request.Request{a})
	require.Equal(t, 0, c.PendingRequests())
}

func TestPerBaseURLCap(t *testing.T) {
	// 201 distinct query-string variants of the same base URL: each has a
	// different identity hash (different "n" value) so Add queues all of
	// them, but they share the same canonical URL for the base-cap test.
	warnings := 0
	c := New(nil)
	c.OnBaseCapWarning(func(types.HTTPMethod, string) { warnings++ })

	for i := 0; i < PerBaseLimit+1; i++ {
		r, err := request.New(types.GET, "http://t/x", map[types.HTTPMethod]map[string][]string{
			types.GET: {"n": {strconv.Itoa(i)}},
		}, nil, false)
		require.NoError(t, err)
		c.Add([]*request.Request{r})
	}

	yielded := 0
	for {
		_, ok := c.Next()
		if !ok {
			break
		}
		yielded++
	}
	require.Equal(t, PerBaseLimit, yielded)
	require.Equal(t, 1, warnings)
}

func TestBlocklistConjunctiveSemantics(t *testing.T) {
	urlRule, err := CompileRule(types.BlockedLink{URL: "blocked", Key: "id", Val: "secret"})
	require.NoError(t, err)

	c := New([]Rule{urlRule})

	blocked, err := request.New(types.GET, "http://t/blocked", map[types.HTTPMethod]map[string][]string{
		types.GET: {"id": {"secret"}},
	}, nil, false)
	require.NoError(t, err)
	require.False(t, c.blocklistAllows(blocked))

	allowedDifferentValue, err := request.New(types.GET, "http://t/blocked", map[types.HTTPMethod]map[string][]string{
		types.GET: {"id": {"public"}},
	}, nil, false)
	require.NoError(t, err)
	require.True(t, c.blocklistAllows(allowedDifferentValue))

	allowedDifferentURL, err := request.New(types.GET, "http://t/fine", map[types.HTTPMethod]map[string][]string{
		types.GET: {"id": {"secret"}},
	}, nil, false)
	require.NoError(t, err)
	require.True(t, c.blocklistAllows(allowedDifferentURL))
}

func TestBlocklistEmptyKeyBlocksWholeURL(t *testing.T) {
	rule, err := CompileRule(types.BlockedLink{URL: "admin"})
	require.NoError(t, err)
	c := New([]Rule{rule})

	r := mustReq(t, "http://t/admin")
	require.False(t, c.blocklistAllows(r))
}

func TestParseBlockSpec(t *testing.T) {
	b, ok := ParseBlockSpec("http://t/x|id|secret")
	require.True(t, ok)
	require.Equal(t, types.BlockedLink{URL: "http://t/x", Key: "id", Val: "secret"}, b)

	_, ok = ParseBlockSpec("not-enough-parts")
	require.False(t, ok)
}
