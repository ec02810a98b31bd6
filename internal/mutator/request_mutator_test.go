package mutator

import (
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

func mustReq(t *testing.T, params request.Params) *request.Request {
	t.Helper()
	r, err := request.New(types.GET, "http://t/x", params, nil, false)
	require.NoError(t, err)
	return r
}

func TestMutatePreservesMethodAndURL(t *testing.T) {
	parent := mustReq(t, request.Params{types.GET: {"q": {"1"}}})
	m := NewRequestMutator(nil, 3, []string{"<script>"})

	child, err := m.Mutate(parent, nil)
	require.NoError(t, err)
	require.Equal(t, parent.Method(), child.Method())
	require.Equal(t, parent.URL(), child.URL())
}

func TestMutateDiffersFromParent(t *testing.T) {
	parent := mustReq(t, request.Params{types.GET: {"q": {"1"}}})
	m := NewRequestMutator(nil, 3, []string{"<script>"})

	child, err := m.Mutate(parent, nil)
	require.NoError(t, err)
	require.False(t, child.Equal(parent))
	require.Same(t, parent, child.Parent())
}

func TestMutateRespectsParamSizeClamp(t *testing.T) {
	parent := mustReq(t, request.Params{types.GET: {"q": {"seed"}}})
	m := NewRequestMutator(nil, 0, nil)

	for i := 0; i < 20; i++ {
		child, err := m.Mutate(parent, nil)
		require.NoError(t, err)
		for _, v := range child.Params()[types.GET]["q"] {
			require.LessOrEqual(t, len(v), request.MaxParamSize)
		}
	}
}

func TestMutateHandlesParentWithNoParams(t *testing.T) {
	parent := mustReq(t, nil)
	m := NewRequestMutator(nil, 0, nil)

	child, err := m.Mutate(parent, nil)
	require.NoError(t, err)
	require.False(t, child.Equal(parent))
}
