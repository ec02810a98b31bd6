package scheduler

import (
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	items []*request.Request
	i     int
}

func (s *sliceSource) Next() (*request.Request, bool) {
	if s.i >= len(s.items) {
		return nil, false
	}
	r := s.items[s.i]
	s.i++
	return r, true
}

func mustReq(t *testing.T) *request.Request {
	t.Helper()
	r, err := request.New(types.GET, "http://t/", nil, nil, false)
	require.NoError(t, err)
	return r
}

func TestIterJoinPrefersPrimaryThenSecondary(t *testing.T) {
	primary := &sliceSource{items: []*request.Request{mustReq(t)}}
	secondary := &sliceSource{items: []*request.Request{mustReq(t), mustReq(t)}}
	done := make(chan struct{})
	defer close(done)

	ch := IterJoin(primary, secondary, nil, 0, done)

	first := <-ch
	require.Equal(t, SourcePrimary, first.Source)

	second := <-ch
	require.Equal(t, SourceSecondary, second.Source)

	third := <-ch
	require.Equal(t, SourceSecondary, third.Source)

	_, ok := <-ch
	require.False(t, ok)
}

func TestIterJoinProbeFiresOncePerInterval(t *testing.T) {
	primary := &sliceSource{}
	secondary := &infiniteSource{}
	probe := mustReq(t)
	done := make(chan struct{})
	defer close(done)

	ch := IterJoin(primary, secondary, probe, 50, done)

	probeCount := 0
	for i := 0; i < 150; i++ {
		item := <-ch
		if item.Source == SourcePeriodic {
			probeCount++
			require.Same(t, probe, item.Candidate)
		}
	}
	require.Equal(t, 3, probeCount)
}

type infiniteSource struct{}

func (infiniteSource) Next() (*request.Request, bool) {
	r, _ := request.New(types.GET, "http://t/inf", nil, nil, false)
	return r, true
}
