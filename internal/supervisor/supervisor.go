// Package supervisor owns the worker pool's lifecycle: staggered startup,
// the wall-clock run timeout, and aggregating every worker's exit reason
// into the single shutdown signal the CLI reports on exit. Adapted from
// the original project's fuzzer.py (create_workers/fuzzer_loop) and the
// teacher's internal/requester worker-pool wrapper around ants.Pool.
package supervisor

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fluxfuzzer/fluxfuzzer/internal/corpus"
	"github.com/fluxfuzzer/fluxfuzzer/internal/crawler"
	"github.com/fluxfuzzer/fluxfuzzer/internal/detector"
	"github.com/fluxfuzzer/fluxfuzzer/internal/fuzzlog"
	"github.com/fluxfuzzer/fluxfuzzer/internal/mutator"
	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/internal/transport"
	"github.com/fluxfuzzer/fluxfuzzer/internal/worker"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"

	"log/slog"
)

// staggerDelay is how long create_workers waits after spawning the first
// worker, giving the crawler queue a chance to gain entries before the rest
// start competing for them.
const staggerDelay = 8 * time.Second

// Options mirrors the run-wide Arguments fields the supervisor itself
// consults, independent of what it forwards to each worker.
type Options struct {
	WorkerCount int
	Timeout     time.Duration
	Worker      worker.Options

	// StaggerDelay overrides staggerDelay; zero means "use the default",
	// not "no stagger" (tests set this to shrink the wait).
	StaggerDelay time.Duration
}

func (o Options) stagger() time.Duration {
	if o.StaggerDelay > 0 {
		return o.StaggerDelay
	}
	return staggerDelay
}

// Supervisor owns the shared collaborators and the pool of worker
// goroutines operating on them.
type Supervisor struct {
	opts Options

	client   *transport.Client
	crawler  *crawler.Crawler
	corpus   *corpus.Corpus
	mutator  *mutator.RequestMutator
	detector *detector.Detector
	stats    *worker.Stats
	logger   *slog.Logger

	sessionProbe *request.Request
}

// New builds a supervisor bound to the run's shared collaborators.
// sessionProbe may be nil when no catch-phrase was configured.
func New(opts Options, client *transport.Client, crawlerQ *crawler.Crawler, corpusQ *corpus.Corpus,
	mut *mutator.RequestMutator, det *detector.Detector, stats *worker.Stats, logger *slog.Logger,
	sessionProbe *request.Request) *Supervisor {
	return &Supervisor{
		opts:         opts,
		client:       client,
		crawler:      crawlerQ,
		corpus:       corpusQ,
		mutator:      mut,
		detector:     det,
		stats:        stats,
		logger:       logger,
		sessionProbe: sessionProbe,
	}
}

// Run spawns opts.WorkerCount workers, staggering the first by
// staggerDelay, waits for them all to finish or the wall-clock timeout to
// elapse, and returns the shutdown reason the group agreed on.
func (s *Supervisor) Run(ctx context.Context) (types.ExitCode, error) {
	pool, err := ants.NewPool(s.opts.WorkerCount, ants.WithPreAlloc(true))
	if err != nil {
		return types.ExitNone, fmt.Errorf("supervisor: creating worker pool: %w", err)
	}
	defer pool.Release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdown := &types.ShutdownSignal{}

	if s.opts.Timeout > 0 {
		timer := time.AfterFunc(s.opts.Timeout, func() {
			s.logger.Warn("run timeout elapsed")
			shutdown.Set(types.ExitTimeout)
			cancel()
		})
		defer timer.Stop()
	}

	var wg sync.WaitGroup

	for i := 0; i < s.opts.WorkerCount; i++ {
		if shutdown.Load() != types.ExitNone {
			break
		}

		id := fmt.Sprintf("%d", rand.Intn(990000)+10000)
		w := worker.New(id, s.client, s.crawler, s.corpus, s.mutator, s.detector,
			s.stats, fuzzlog.ForWorker(s.loggerOrRoot(), id), s.opts.Worker, s.sessionProbe)

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			code := w.Run(runCtx, shutdown)
			shutdown.Set(code)
		})
		if submitErr != nil {
			wg.Done()
			s.logger.Error("submitting worker to pool", "err", submitErr)
			continue
		}

		if i == 0 {
			// give the first worker a head start so the crawler queue isn't
			// empty the instant the rest spin up (§5 supplement).
			select {
			case <-time.After(s.opts.stagger()):
			case <-runCtx.Done():
			}
		}
	}

	wg.Wait()

	if code := shutdown.Load(); code != types.ExitNone {
		return code, nil
	}
	return types.ExitEmptyQueue, nil
}

func (s *Supervisor) loggerOrRoot() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
