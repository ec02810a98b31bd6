// Package coverage parses per-request instrumentation feedback into CFG
// maps and maintains the process-wide coverage union used to decide
// whether a request is "interesting".
package coverage

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
)

// ParseHeaders extracts (label, hitCount) pairs from response headers whose
// name starts with "I-".
func ParseHeaders(h http.Header) map[types.Label]string {
	out := make(map[types.Label]string)
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		upper := strings.ToUpper(name)
		if !strings.HasPrefix(upper, "I-") {
			continue
		}
		labelStr := name[2:]
		label, err := strconv.Atoi(labelStr)
		if err != nil {
			continue
		}
		out[types.Label(label)] = values[0]
	}
	return out
}

// ParseFile extracts (label, hitCount) pairs from the per-worker
// instrumentation file, one "label-value" line per entry.
func ParseFile(path string) (map[types.Label]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[types.Label]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		label, value, _ := strings.Cut(line, "-")
		l, err := strconv.Atoi(label)
		if err != nil {
			continue
		}
		out[types.Label(l)] = value
	}
	return out, scanner.Err()
}

// WorkerMapPath is the per-worker instrumentation file path under file
// output mode.
func WorkerMapPath(workerID string) string {
	return fmt.Sprintf("/var/instr/map.%s", workerID)
}

// ParseInstrumentation turns the raw (label -> value-string) entries into
// the two CFG maps per §4.2's policy semantics. Under NODE_EDGE the value is
// "xor-single"; entries with value 0 are dropped from the corresponding map.
func ParseInstrumentation(raw map[types.Label]string, policy types.Policy) types.CFGTuple {
	xor := types.CFG{}
	single := types.CFG{}

	switch policy {
	case types.PolicyEdge, types.PolicyNode:
		cfg := types.CFG{}
		for label, valueStr := range raw {
			hit, err := strconv.Atoi(valueStr)
			if err != nil {
				continue
			}
			cfg[label] = request.ToBucket(hit)
		}
		if policy == types.PolicyEdge {
			xor = cfg
		} else {
			single = cfg
		}

	case types.PolicyNodeEdge:
		for label, valueStr := range raw {
			parts := strings.SplitN(valueStr, "-", 2)
			if len(parts) != 2 {
				continue
			}
			xorHit, err1 := strconv.Atoi(parts[0])
			singleHit, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				continue
			}
			if xorHit > 0 {
				xor[label] = request.ToBucket(xorHit)
			}
			if singleHit > 0 {
				single[label] = request.ToBucket(singleHit)
			}
		}
	}

	return types.CFGTuple{XorCFG: xor, SingleCFG: single}
}

// Union is the global per-label maximum bucket ever observed, plus a record
// of which corpus request is the sole contributor for each label.
type Union struct {
	mu           sync.RWMutex
	buckets      map[types.Label]types.Bucket
	contributors map[types.Label]*request.Request
}

// NewUnion creates an empty coverage union.
func NewUnion() *Union {
	return &Union{
		buckets:      make(map[types.Label]types.Bucket),
		contributors: make(map[types.Label]*request.Request),
	}
}

// Bucket returns the union's current bucket for label, and whether the
// label has been observed at all.
func (u *Union) Bucket(label types.Label) (types.Bucket, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	b, ok := u.buckets[label]
	return b, ok
}

// Contributor returns the current sole contributor for label, if any.
func (u *Union) Contributor(label types.Label) *request.Request {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.contributors[label]
}

// Raise updates the union's bucket for label and assigns r as the sole
// contributor. Caller must already hold whatever corpus-level lock
// linearises admission (§5); Raise itself is additionally safe to call
// concurrently with readers.
func (u *Union) Raise(label types.Label, bucket types.Bucket, r *request.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.buckets[label] = bucket
	u.contributors[label] = r
}

// Len is the number of distinct labels in the union.
func (u *Union) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.buckets)
}

// TotalCoverScore is 100 * |Union| / denominator.
func (u *Union) TotalCoverScore(denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return 100 * float64(u.Len()) / float64(denominator)
}
