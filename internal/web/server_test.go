package web

import (
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestPublishCopiesLiveStatistics(t *testing.T) {
	s := NewServer()
	defer s.app.Shutdown()

	s.Publish(types.Statistics{
		TotalRequests:      42,
		TotalCoverScore:    12.5,
		CrawlerPendingURLs: 3,
		TotalXSS:           1,
		CurrentNodeSummary: "GET http://target.test/",
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.EqualValues(t, 42, s.stats.TotalRequests)
	require.Equal(t, 12.5, s.stats.TotalCoverScore)
	require.Equal(t, 3, s.stats.CrawlerPendingURLs)
	require.EqualValues(t, 1, s.stats.AnomaliesFound)
	require.Equal(t, "GET http://target.test/", s.stats.CurrentNode)
}
