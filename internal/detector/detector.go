// Package detector implements the reflected-XSS payload synthesis and
// detection capability the core treats as two opaque operations, `Precheck`
// and `Scan` (§4.1, §4.7 step 10). It is adapted from the teacher's
// `internal/owasp` payload tables, narrowed to XSS, plus the teacher's
// `internal/analyzer` TLSH similarity analyzer repurposed as the confidence
// signal the spec's XSSConfidence field otherwise has no source for.
package detector

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fluxfuzzer/fluxfuzzer/internal/analyzer"
	"github.com/fluxfuzzer/fluxfuzzer/internal/cache"
	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
)

// Payloads is the XSS payload table, adapted from the teacher's
// internal/owasp.XSSPayloads (values only; this package has no use for the
// teacher's generic multi-class Finding/Severity/CWE metadata).
var Payloads = []string{
	`<script>alert(1)</script>`,
	`"><img src=x onerror=alert(1)>`,
	`<svg onload=alert(1)>`,
	`'"><script>alert(String.fromCharCode(88,83,83))</script>`,
	`<body onload=alert(1)>`,
	`<iframe src="javascript:alert(1)">`,
}

// Detector scans a request/response pair for reflected XSS, using the
// request's own (possibly mutator-injected) parameter values as the
// candidate markers and an optional unfuzzed baseline body for a
// similarity-based confidence boost.
type Detector struct {
	payloads []string
	tlsh     *analyzer.TLSHAnalyzer
	xssCount atomic.Int64

	// seen dedupes (url, body) pairs already run through Precheck/Scan, so
	// a worker that keeps re-fetching an identical page (e.g. a static
	// 404 template) doesn't pay the scan cost every time.
	seen *cache.MemoryCache
}

// XSSCount is the running total of requests that crossed from no-confidence
// to some confidence of reflected XSS, the counter the stats panel reports.
func (d *Detector) XSSCount() int64 {
	return d.xssCount.Load()
}

// New builds a Detector over the given payload table (Payloads if nil).
func New(payloads []string) *Detector {
	if payloads == nil {
		payloads = Payloads
	}
	return &Detector{
		payloads: payloads,
		tlsh:     analyzer.NewTLSHAnalyzer(nil),
		seen:     cache.NewMemoryCache(&cache.MemoryCacheConfig{Capacity: 16 * 1024 * 1024, TTL: 10 * time.Minute}),
	}
}

// bodyKey identifies a (url, body) pair for the dedup cache.
func bodyKey(url string, body []byte) string {
	sum := sha256.Sum256(body)
	return url + "|" + hex.EncodeToString(sum[:])
}

// Precheck is the cheap raw-body test run on every response (§4.7 step 10):
// true iff any of the request's own parameter values — which may carry a
// mutator-injected payload — appears verbatim in the body. Only a positive
// Precheck triggers the more expensive Scan. A body already scanned
// verbatim for this URL short-circuits to false without re-reading it.
func (d *Detector) Precheck(r *request.Request, body []byte) bool {
	key := bodyKey(r.URL(), body)
	if _, ok := d.seen.Get(key); ok {
		return false
	}
	d.seen.Set(key, []byte{1})

	text := string(body)
	for _, marker := range candidateMarkers(r) {
		if len(marker) >= 4 && strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// candidateMarkers collects every parameter value long enough to be a
// meaningful reflection marker (both GET and POST).
func candidateMarkers(r *request.Request) []string {
	var out []string
	for _, kv := range r.Params() {
		for _, values := range kv {
			out = append(out, values...)
		}
	}
	return out
}

// sinkID derives a stable, opaque identifier for one (param, marker)
// reflection, matching §3's "set of opaque sink identifiers".
func sinkID(param, marker string) string {
	sum := sha256.Sum256([]byte(param + "|" + marker))
	return hex.EncodeToString(sum[:6])
}

// Scan re-examines a request whose Precheck fired: it records every
// parameter whose value reflects into the body, and derives an
// XSSConfidence from how many distinct sinks fired and how executable their
// reflection context looks. baseline, if non-nil, is the unfuzzed page body
// for the same URL; a large TLSH distance from it pushes confidence up,
// since the payload visibly perturbed the page rather than landing in inert
// static markup.
func (d *Detector) Scan(r *request.Request, body []byte, baseline []byte) {
	text := string(body)

	newSinks := 0
	executable := false

	for method, kv := range r.Params() {
		for param, values := range kv {
			for _, v := range values {
				if len(v) < 4 || !strings.Contains(text, v) {
					continue
				}
				id := sinkID(paramLabel(method, param), v)
				if _, already := r.Sinks[id]; !already {
					r.Sinks[id] = struct{}{}
					newSinks++
				}
				if looksExecutable(text, v) {
					executable = true
				}
			}
		}
	}

	if newSinks == 0 {
		return
	}

	wasNone := r.XSSConf == types.XSSNone
	r.XSSConf = confidenceFor(newSinks, executable, d.similarityBoost(body, baseline))
	if wasNone && r.XSSConf != types.XSSNone {
		d.xssCount.Add(1)
	}
}

func paramLabel(method types.HTTPMethod, param string) string {
	return method.String() + ":" + param
}

// looksExecutable is a best-effort check that the reflected marker landed
// somewhere a browser would actually run it, rather than inside
// HTML-escaped text.
func looksExecutable(body, marker string) bool {
	quoted := regexp.QuoteMeta(marker)
	re := regexp.MustCompile(`(?is)<script[^>]*>[^<]*` + quoted + `|on\w+\s*=\s*["']?[^"'>]*` + quoted + `|javascript:[^"'>]*` + quoted)
	if re.MatchString(body) {
		return true
	}
	// A marker that is itself script markup runs wherever it is reflected
	// verbatim.
	return strings.Contains(body, marker) && regexp.MustCompile(`(?i)<script[^>]*>|\bon\w+\s*=|javascript:`).MatchString(marker)
}

// similarityBoost reports whether the response diverges enough from an
// unfuzzed baseline (by TLSH distance) to suggest the payload had a visible
// effect on the page, rather than landing in content that never renders.
func (d *Detector) similarityBoost(body, baseline []byte) bool {
	if baseline == nil {
		return false
	}
	result, err := d.tlsh.CompareContents(baseline, body)
	if err != nil {
		return false
	}
	return !result.IsHighlySimilar
}

// confidenceFor maps sink count + context signals onto the spec's four-way
// XSSConfidence scale.
func confidenceFor(sinkCount int, executable, similarityBoost bool) types.XSSConfidence {
	switch {
	case executable && sinkCount > 1:
		return types.XSSHigh
	case executable:
		return types.XSSMedium
	case similarityBoost:
		return types.XSSMedium
	default:
		return types.XSSLow
	}
}
