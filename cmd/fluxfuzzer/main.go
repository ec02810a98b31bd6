// FluxFuzzer is a grey-box fuzzer for web applications: it drives a target
// with HTTP requests, reads coverage feedback from an instrumented target,
// and evolves its request corpus to maximise coverage while opportunistically
// flagging reflected XSS. This is the entry point: it parses the CLI surface
// (§6), wires the collaborators together, and hands off to the supervisor.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxfuzzer/fluxfuzzer/internal/config"
	"github.com/fluxfuzzer/fluxfuzzer/internal/corpus"
	"github.com/fluxfuzzer/fluxfuzzer/internal/crawler"
	"github.com/fluxfuzzer/fluxfuzzer/internal/detector"
	"github.com/fluxfuzzer/fluxfuzzer/internal/fuzzlog"
	"github.com/fluxfuzzer/fluxfuzzer/internal/mutator"
	"github.com/fluxfuzzer/fluxfuzzer/internal/report"
	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/internal/session"
	"github.com/fluxfuzzer/fluxfuzzer/internal/supervisor"
	"github.com/fluxfuzzer/fluxfuzzer/internal/transport"
	"github.com/fluxfuzzer/fluxfuzzer/internal/ui"
	"github.com/fluxfuzzer/fluxfuzzer/internal/web"
	"github.com/fluxfuzzer/fluxfuzzer/internal/worker"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"

	"log/slog"
)

var version = "1.1.0"

// flags mirrors §6's CLI surface one field per named flag; cobra binds
// directly into it, config.Default()/EngineOverrides fill the rest.
var flags struct {
	runMode        string
	worker         int
	timeout        int
	requestTimeout int
	metaFile       string
	session        bool
	driverFile     string
	block          []string
	ignore404      bool
	ignore4xx      bool
	uniqueAnchors  bool
	maxXSS         int
	verbose        int
	rate           float64
	catchPhrase    string
	configFile     string
	reportDir      string
	webAddr        string
	tui            bool
}

func main() {
	root := &cobra.Command{
		Use:     "fluxfuzzer URL",
		Short:   "FluxFuzzer - coverage-guided grey-box fuzzer for web applications",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runFuzzer,
	}

	root.Flags().StringVarP(&flags.runMode, "runMode", "r", "simple", "run mode: simple, file, auto, manual")
	root.Flags().IntVarP(&flags.worker, "worker", "w", 1, "number of concurrent workers")
	root.Flags().IntVarP(&flags.timeout, "timeout", "t", 0, "session wall-clock timeout in seconds (0 = none)")
	root.Flags().IntVar(&flags.requestTimeout, "request-timeout", 35, "per-request timeout in seconds")
	root.Flags().StringVarP(&flags.metaFile, "metaFile", "m", "./instr.meta", "path to instrumentation metadata JSON")
	root.Flags().BoolVarP(&flags.session, "session", "s", false, "acquire session cookies via the browser driver")
	root.Flags().StringVar(&flags.driverFile, "driverFile", "./drivers/chromedriver", "path to the external cookie-capture driver binary")
	root.Flags().StringArrayVarP(&flags.block, "block", "b", nil, "blocklist entry 'url|key|val' (repeatable)")
	root.Flags().BoolVar(&flags.ignore404, "ignore-404", false, "treat 404 responses as non-fatal dead ends")
	root.Flags().BoolVar(&flags.ignore4xx, "ignore-4xx", false, "treat any 4xx response as a non-fatal dead end")
	root.Flags().BoolVar(&flags.uniqueAnchors, "unique-anchors", false, "treat #fragments as distinct request identities")
	root.Flags().IntVar(&flags.maxXSS, "maxXss", 3, "max XSS payload injections per parameter")
	root.Flags().CountVarP(&flags.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	root.Flags().Float64Var(&flags.rate, "rate", 0, "requests/sec limit, shared across workers (0 = unlimited)")
	root.Flags().StringVar(&flags.catchPhrase, "catch-phrase", "", "substring confirming the session is still logged in")
	root.Flags().StringVarP(&flags.configFile, "config", "c", "", "optional YAML file overriding engine knobs")
	root.Flags().StringVar(&flags.reportDir, "report-dir", "./report", "directory to write the end-of-run report into")
	root.Flags().StringVar(&flags.webAddr, "web", "", "serve a live dashboard at this address (e.g. :9090); empty disables it")
	root.Flags().BoolVar(&flags.tui, "tui", false, "render a terminal stats dashboard instead of plain log lines")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(types.ExitNone) + 1)
	}
}

func runFuzzer(cmd *cobra.Command, args []string) error {
	runMode := strings.ToLower(flags.runMode)
	if runMode == "auto" || runMode == "manual" {
		// §9: these modes are explicitly not implemented upstream; return
		// cleanly rather than fake a result.
		fmt.Printf("run mode %q is not implemented; nothing to do\n", runMode)
		return nil
	}
	if runMode != "simple" && runMode != "file" {
		return fmt.Errorf("invalid run mode %q: want simple, file, auto or manual", flags.runMode)
	}

	if len(args) == 0 {
		return fmt.Errorf("a target URL is required")
	}
	targetURL := args[0]

	argv := config.Default()
	overrides, err := config.LoadEngineOverrides(flags.configFile)
	if err != nil {
		return err // configuration error: fatal at startup, §7
	}
	overrides.Apply(&argv)

	argv.RunMode = runMode
	if cmd.Flags().Changed("worker") {
		argv.Worker = flags.worker
	}
	if cmd.Flags().Changed("timeout") {
		argv.Timeout = time.Duration(flags.timeout) * time.Second
	}
	if cmd.Flags().Changed("request-timeout") {
		argv.RequestTimeout = time.Duration(flags.requestTimeout) * time.Second
	}
	argv.MetaFile = flags.metaFile
	argv.Session = flags.session
	argv.DriverFile = flags.driverFile
	argv.Block = flags.block
	argv.Ignore404 = flags.ignore404
	argv.Ignore4xx = flags.ignore4xx
	argv.UniqueAnchors = flags.uniqueAnchors
	argv.MaxXSS = flags.maxXSS
	argv.Verbose = flags.verbose
	if flags.rate > 0 {
		argv.Rate = flags.rate
	}
	argv.CatchPhrase = flags.catchPhrase
	argv.URL = targetURL

	meta, err := config.LoadInstrumentMeta(argv.MetaFile)
	if err != nil {
		return err // configuration error: fatal at startup, §7
	}

	rules, err := config.ParseBlockSpecs(argv.Block)
	if err != nil {
		return err
	}

	var cookies map[string]string
	if argv.Session {
		provider, err := session.NewDriverProvider(argv.DriverFile, nil)
		if err != nil {
			return fmt.Errorf("session capture: %w", err)
		}
		cookies, err = provider.Cookies()
		if err != nil {
			return fmt.Errorf("session capture: %w", err)
		}
	} else {
		cookies, _ = session.NullProvider{}.Cookies()
	}

	logFile, err := fuzzlog.InitFileHandler()
	if err != nil {
		return fmt.Errorf("logging setup: %w", err)
	}
	defer logFile.Close()
	logger := fuzzlog.New(logFile, argv.Verbose)
	slog.SetDefault(logger)

	if !flags.tui {
		fmt.Println(ui.GetBannerStyled())
	}

	seed, err := request.New(types.GET, argv.URL, nil, nil, argv.UniqueAnchors)
	if err != nil {
		return fmt.Errorf("seed URL: %w", err)
	}

	crawlerQ := crawler.New(rules)
	crawlerQ.OnBaseCapWarning(func(method types.HTTPMethod, url string) {
		logger.Warn("per-base crawler cap reached", "method", method, "url", url)
	})
	crawlerQ.Add([]*request.Request{seed})

	corpusQ := corpus.New(meta.Policy, meta.Edges, meta.BasicBlocks)

	mut := mutator.NewRequestMutator(nil, argv.MaxXSS, detector.Payloads)
	det := detector.New(nil)
	stats := worker.NewStats(seed.URL())

	transportOpts := transport.DefaultOptions(argv.Worker)
	transportOpts.RequestTimeout = argv.RequestTimeout
	client := transport.NewClient(transportOpts, cookies)
	client.SetLimiter(transport.NewRateLimiter(argv.Rate))

	var sessionProbe *request.Request
	if argv.CatchPhrase != "" {
		sessionProbe = seed
	}

	// SIGTERM cancels immediately; SIGINT instead goes through §7's
	// blocking confirmation prompt before it is allowed to cancel.
	ctx, cancelTerm := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancelTerm()
	ctx = installInterruptPrompt(ctx, logger)

	sup := supervisor.New(supervisor.Options{
		WorkerCount: argv.Worker,
		Timeout:     argv.Timeout,
		Worker: worker.Options{
			Policy:        meta.Policy,
			EdgeCount:     meta.Edges,
			BasicBlocks:   meta.BasicBlocks,
			OutputMethod:  meta.OutputMethod,
			Ignore404:     argv.Ignore404,
			Ignore4xx:     argv.Ignore4xx,
			UniqueAnchors: argv.UniqueAnchors,
			CatchPhrase:   argv.CatchPhrase,
		},
	}, client, crawlerQ, corpusQ, mut, det, stats, logger, sessionProbe)

	stopStats := startStatsLoop(runMode, argv.URL, stats, crawlerQ, corpusQ, det)
	defer stopStats()

	if flags.webAddr != "" {
		srv := web.NewServer()
		go func() {
			if err := srv.Start(flags.webAddr); err != nil {
				logger.Error("web dashboard exited", "err", err)
			}
		}()
		defer srv.Stop()
		go publishLoop(ctx, srv, stats, crawlerQ, corpusQ, det)
	}

	if flags.tui {
		dash := ui.NewDashboard()
		dash.SetStatsSource(func() types.Statistics { return liveStats(stats, crawlerQ, corpusQ, det) })
		go ui.Run(dash)
	}

	code, err := sup.Run(ctx)
	if err != nil {
		return err
	}
	// ctx is only cancelled by a confirmed SIGINT prompt or by SIGTERM; the
	// workers then drain with EMPTY_QUEUE, which is reported as USER instead.
	if ctx.Err() != nil && code == types.ExitEmptyQueue {
		code = types.ExitUser
	}

	writeReport(flags.reportDir, argv.URL, stats, corpusQ, det)

	logger.Info("fuzzing run finished", "exit", code.String())
	os.Exit(int(code))
	return nil
}

// installInterruptPrompt replaces the default signal-cancel behaviour with
// §7's blocking confirmation prompt: on SIGINT, ask the operator whether to
// actually stop ("yes") or resume (any other answer). Only a "yes" answer
// cancels the run, which then exits with USER. The "debug" and "info" answers are logged
// and fuzzing resumes; the console log level stays as set at startup.
func installInterruptPrompt(ctx context.Context, logger *slog.Logger) context.Context {
	promptCtx, cancel := context.WithCancel(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)

	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				fmt.Fprint(os.Stderr, "\nfuzzing interrupted - stop? [yes/debug/info/no]: ")
				line, _ := reader.ReadString('\n')
				switch strings.TrimSpace(strings.ToLower(line)) {
				case "yes":
					logger.Warn("user confirmed shutdown")
					cancel()
					return
				case "debug":
					logger.Info("resuming; console log level unchanged")
				case "info":
					logger.Info("resuming; console log level unchanged")
				default:
					logger.Info("resuming")
				}
			}
		}
	}()

	return promptCtx
}

// liveStats composes the worker-contributed counters with a fresh read of
// the crawler/corpus/detector, since those three own their own locks rather
// than feeding through Stats on every single mutation.
func liveStats(stats *worker.Stats, crawlerQ *crawler.Crawler, corpusQ *corpus.Corpus, det *detector.Detector) types.Statistics {
	snap := stats.Snapshot()
	snap.CrawlerPendingURLs = crawlerQ.PendingRequests()
	snap.TotalCoverScore = corpusQ.TotalCoverScore()
	snap.TotalXSS = det.XSSCount()
	return snap
}

// startStatsLoop refreshes /tmp/fuzzer_stats under `file` run mode,
// truncating and flushing on every tick (§6 Persisted state); `simple`
// mode logs the same snapshot instead of persisting it.
func startStatsLoop(runMode, targetURL string, stats *worker.Stats, crawlerQ *crawler.Crawler, corpusQ *corpus.Corpus, det *detector.Detector) func() {
	ticker := time.NewTicker(2 * time.Second)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				snap := liveStats(stats, crawlerQ, corpusQ, det)
				if runMode == "file" {
					writeStatsFile(snap)
				} else {
					slog.Info("stats",
						"requests", snap.TotalRequests,
						"cover_score", snap.TotalCoverScore,
						"pending", snap.CrawlerPendingURLs,
						"xss", snap.TotalXSS)
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

func writeStatsFile(snap types.Statistics) {
	f, err := os.Create("/tmp/fuzzer_stats")
	if err != nil {
		return
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	_ = enc.Encode(snap)
	f.Sync()
}

func publishLoop(ctx context.Context, srv *web.Server, stats *worker.Stats, crawlerQ *crawler.Crawler, corpusQ *corpus.Corpus, det *detector.Detector) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.Publish(liveStats(stats, crawlerQ, corpusQ, det))
		}
	}
}

// writeReport emits the end-of-run JSON, HTML and Markdown reports (§6): one finding per
// corpus entry carrying a non-NONE XSSConfidence, plus the run statistics.
func writeReport(dir, targetURL string, stats *worker.Stats, corpusQ *corpus.Corpus, det *detector.Detector) {
	r := report.NewReport("FluxFuzzer run", targetURL)
	snap := stats.Snapshot()
	r.SetStatistics(report.Statistics{
		TotalRequests:     snap.TotalRequests,
		CurrentCoverScore: snap.CurrentCoverScore,
		TotalCoverScore:   snap.TotalCoverScore,
	})

	for _, req := range corpusQ.Snapshot() {
		if req.XSSConf == types.XSSNone {
			continue
		}
		sinks := make([]string, 0, len(req.Sinks))
		for s := range req.Sinks {
			sinks = append(sinks, s)
		}
		r.AddAnomaly(report.Anomaly{
			ID:          req.HashHex(),
			Type:        report.AnomalyXSS,
			Severity:    severityFor(req.XSSConf),
			URL:         req.URL(),
			Method:      req.Method().String(),
			Description: fmt.Sprintf("reflected XSS, confidence %s, %d sink(s)", req.XSSConf, len(req.Sinks)),
			Sinks:       sinks,
		})
	}

	mgr := report.NewManager(dir)
	if _, err := mgr.GenerateAll(r); err != nil {
		slog.Warn("report generation failed", "err", err)
	}
}

func severityFor(c types.XSSConfidence) report.Severity {
	switch c {
	case types.XSSHigh:
		return report.SeverityHigh
	case types.XSSMedium:
		return report.SeverityMedium
	default:
		return report.SeverityLow
	}
}
