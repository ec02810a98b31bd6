// Package worker implements the per-goroutine fuzzing loop: pick a
// candidate via the scheduler, dispatch it, feed the response back into
// the corpus and crawler, and report a shutdown reason when it runs dry or
// detects a lost session. It is adapted from the original project's
// worker.py (run_worker/handle_request/process_response).
package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fluxfuzzer/fluxfuzzer/internal/corpus"
	"github.com/fluxfuzzer/fluxfuzzer/internal/coverage"
	"github.com/fluxfuzzer/fluxfuzzer/internal/crawler"
	"github.com/fluxfuzzer/fluxfuzzer/internal/detector"
	"github.com/fluxfuzzer/fluxfuzzer/internal/htmlanalysis"
	"github.com/fluxfuzzer/fluxfuzzer/internal/mutator"
	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/internal/scheduler"
	"github.com/fluxfuzzer/fluxfuzzer/internal/transport"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"

	"log/slog"
)

// Stats is a concurrency-safe holder for the live run statistics every
// worker contributes to and the UI/web/report layers read from.
type Stats struct {
	mu   sync.Mutex
	data types.Statistics
}

// NewStats creates an empty stats holder seeded with the crawler's initial
// node as the current-node summary.
func NewStats(initialSummary string) *Stats {
	return &Stats{data: types.Statistics{CurrentNodeSummary: initialSummary}}
}

func (s *Stats) update(fn func(*types.Statistics)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

// Snapshot returns a copy of the current statistics.
func (s *Stats) Snapshot() types.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Options bundles the run-wide, immutable-after-startup configuration a
// worker needs beyond its collaborators.
type Options struct {
	Policy        types.Policy
	EdgeCount     int
	BasicBlocks   int
	OutputMethod  types.OutputMethod
	Ignore404     bool
	Ignore4xx     bool
	UniqueAnchors bool
	CatchPhrase   string
}

// Worker owns one goroutine's worth of the fuzzing loop. All collaborators
// (crawler, corpus, client) are shared across every worker in the run;
// only id and sessionProbe are worker-specific.
type Worker struct {
	ID string

	client   *transport.Client
	crawler  *crawler.Crawler
	corpus   *corpus.Corpus
	mutator  *mutator.RequestMutator
	detector *detector.Detector
	stats    *Stats
	logger   *slog.Logger

	opts         Options
	sessionProbe *request.Request
}

// New builds a worker bound to the run's shared collaborators. sessionProbe
// is the request re-sent every LoggedInCheckInterval iterations to confirm
// the session is still authenticated; pass nil when no catch-phrase was
// configured.
func New(id string, client *transport.Client, crawlerQ *crawler.Crawler, corpusQ *corpus.Corpus,
	mut *mutator.RequestMutator, det *detector.Detector, stats *Stats, logger *slog.Logger,
	opts Options, sessionProbe *request.Request) *Worker {
	return &Worker{
		ID:           id,
		client:       client,
		crawler:      crawlerQ,
		corpus:       corpusQ,
		mutator:      mut,
		detector:     det,
		stats:        stats,
		logger:       logger,
		opts:         opts,
		sessionProbe: sessionProbe,
	}
}

// Run drives the iter_join loop until the shared shutdown signal fires, the
// crawler and corpus both run dry, or a session probe fails.
func (w *Worker) Run(ctx context.Context, shutdown *types.ShutdownSignal) types.ExitCode {
	w.logger.Info("worker reporting active")

	var probe *request.Request
	interval := 0
	if w.opts.CatchPhrase != "" && w.sessionProbe != nil {
		probe = w.sessionProbe
		interval = scheduler.LoggedInCheckInterval
	}

	items := scheduler.IterJoin(w.crawler, w.corpus, probe, interval, ctx.Done())

	for item := range items {
		candidate := item.Candidate
		isProbe := item.Source == scheduler.SourcePeriodic

		switch item.Source {
		case scheduler.SourcePrimary:
			w.logger.Debug("chosen an unvisited node", "url", candidate.URL())
		case scheduler.SourceSecondary:
			mutated, err := w.mutator.Mutate(candidate, w.corpus.Snapshot())
			if err != nil {
				w.logger.Warn("mutation failed, reusing parent", "err", err)
			} else {
				candidate = mutated
			}
			w.logger.Debug("chosen a mutated node", "url", candidate.URL())
		}

		status, err := w.handleRequest(ctx, candidate, isProbe)
		if err != nil {
			w.logger.Error("request failed", "err", err)
		}

		if isProbe && status != types.SuccessFoundPhrase {
			w.logger.Warn("fuzzer appears to have been logged out")
			return types.ExitLoggedOut
		}

		if code := shutdown.Load(); code != types.ExitNone {
			return code
		}
	}

	if code := shutdown.Load(); code != types.ExitNone {
		return code
	}

	w.logger.Error("aborting due to lack of paths")
	return types.ExitEmptyQueue
}

// handleRequest dispatches r and returns the resulting status, mirroring
// handle_request's early-exit rules for 4xx responses and non-HTML bodies.
func (w *Worker) handleRequest(ctx context.Context, r *request.Request, isProbe bool) (types.RequestStatus, error) {
	w.logger.Debug("sending request", "url", r.URL())

	resp, err := w.client.Do(ctx, r, w.ID)
	if err != nil {
		return types.UnsuccessfulRequest, err
	}

	w.stats.update(func(s *types.Statistics) { s.TotalRequests++ })

	if resp.StatusCode >= 400 {
		w.logger.Warn("got non-2xx response", "status", resp.StatusCode, "url", r.URL())
		if (w.opts.Ignore404 && resp.StatusCode == 404) || w.opts.Ignore4xx {
			return types.InvalidResponse, nil
		}
	}

	if resp.ContentType != "" && !strings.HasPrefix(resp.ContentType, "text/html") {
		w.logger.Debug("got non-html payload", "contentType", resp.ContentType)
		return types.InvalidResponse, nil
	}

	status := w.processResponse(r, resp, isProbe)
	w.updateStats(r)

	return status, nil
}

// hasCatchphrase reports whether body contains the configured catch phrase.
// An empty phrase always passes, matching Worker.has_catchphrase's "no
// phrase configured means never log out" behaviour.
func hasCatchphrase(body []byte, phrase string) bool {
	if phrase == "" {
		return true
	}
	return strings.Contains(string(body), phrase)
}

// processResponse runs the XSS precheck/scan, parses instrumentation
// feedback, offers the request to the corpus, and on admission extracts
// and enqueues its outbound links.
func (w *Worker) processResponse(r *request.Request, resp *transport.Response, isProbe bool) types.RequestStatus {
	if isProbe {
		if hasCatchphrase(resp.Body, w.opts.CatchPhrase) {
			w.logger.Info("still logged in")
			return types.SuccessFoundPhrase
		}
	}

	if w.detector.Precheck(r, resp.Body) {
		w.detector.Scan(r, resp.Body, nil)
	}

	raw := coverage.ParseHeaders(resp.Headers)
	if w.opts.OutputMethod == types.OutputFile {
		if fileRaw, err := coverage.ParseFile(coverage.WorkerMapPath(w.ID)); err == nil {
			raw = fileRaw
		} else {
			w.logger.Error("reading instrumentation file", "err", err)
		}
	}

	tuple := coverage.ParseInstrumentation(raw, w.opts.Policy)

	if !w.corpus.Add(r, tuple) {
		w.logger.Debug("not interesting")
		return types.SuccessNotInteresting
	}

	links := htmlanalysis.Extract(r.URL(), resp.Body, w.opts.UniqueAnchors)
	w.crawler.Add(links)

	return types.SuccessInteresting
}

// updateStats mirrors update_stats: publishes the collaborators' latest
// aggregate figures plus this request's own score as the current node.
func (w *Worker) updateStats(r *request.Request) {
	total := w.corpus.TotalCoverScore()
	current := r.CoverScore(w.opts.Policy, w.opts.EdgeCount, w.opts.BasicBlocks)
	pending := w.crawler.PendingRequests()
	xss := w.detector.XSSCount()

	w.stats.update(func(s *types.Statistics) {
		s.TotalCoverScore = total
		s.CurrentCoverScore = current
		s.CrawlerPendingURLs = pending
		s.TotalXSS = xss
		s.CurrentNodeSummary = fmt.Sprintf("%s %s", r.Method(), r.URL())
	})
}
