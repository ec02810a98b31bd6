package worker

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/internal/corpus"
	"github.com/fluxfuzzer/fluxfuzzer/internal/crawler"
	"github.com/fluxfuzzer/fluxfuzzer/internal/detector"
	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/internal/transport"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWorker(t *testing.T) (*Worker, *crawler.Crawler, *corpus.Corpus) {
	t.Helper()

	cr := crawler.New(nil)
	co := corpus.New(types.PolicyEdge, 64, 64)

	w := &Worker{
		ID:       "w1",
		crawler:  cr,
		corpus:   co,
		detector: detector.New(nil),
		stats:    NewStats(""),
		logger:   discardLogger(),
		opts: Options{
			Policy:      types.PolicyEdge,
			EdgeCount:   64,
			BasicBlocks: 64,
		},
	}
	return w, cr, co
}

func TestHasCatchphrase(t *testing.T) {
	require.True(t, hasCatchphrase([]byte("anything"), ""))
	require.True(t, hasCatchphrase([]byte("Welcome back, admin"), "Welcome back"))
	require.False(t, hasCatchphrase([]byte("login page"), "Welcome back"))
}

func TestProcessResponseAdmitsInterestingRequestAndHarvestsLinks(t *testing.T) {
	w, cr, co := newWorker(t)

	r, err := request.New(types.GET, "http://target.test/", nil, nil, false)
	require.NoError(t, err)

	body := []byte(`<html><body><a href="/next?x=1">next</a></body></html>`)
	resp := &transport.Response{
		StatusCode:  200,
		ContentType: "text/html",
		Body:        body,
		Headers:     http.Header{"I-1": {"3"}},
	}

	status := w.processResponse(r, resp, false)
	require.Equal(t, types.SuccessInteresting, status)
	require.Equal(t, 1, co.Size())
	require.Equal(t, 1, cr.PendingRequests())
}

func TestProcessResponseProbeChecksCatchphrase(t *testing.T) {
	w, _, _ := newWorker(t)
	w.opts.CatchPhrase = "Welcome back"

	r, err := request.New(types.GET, "http://target.test/session", nil, nil, false)
	require.NoError(t, err)

	resp := &transport.Response{StatusCode: 200, ContentType: "text/html", Body: []byte("Welcome back, admin")}
	status := w.processResponse(r, resp, true)
	require.Equal(t, types.SuccessFoundPhrase, status)
}

func TestProcessResponseFlagsReflectedXSS(t *testing.T) {
	w, _, _ := newWorker(t)

	params := request.Params{
		types.GET: {"q": []string{`<script>alert(1)</script>`}},
	}
	r, err := request.New(types.GET, "http://target.test/search", params, nil, false)
	require.NoError(t, err)

	body := []byte(`<html><body>results for <script>alert(1)</script></body></html>`)
	resp := &transport.Response{StatusCode: 200, ContentType: "text/html", Body: body}

	w.processResponse(r, resp, false)
	require.Equal(t, types.XSSMedium, r.XSSConf)
}
