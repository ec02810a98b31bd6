// Package request implements the fuzzer's Request type: an identity-stable
// descriptor of one HTTP request plus the feedback metrics the corpus ranks
// it by. See MaxParamSize and the weighted-difference scoring functions
// for the two places where the original project's exact constants matter.
package request

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"sync"

	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
)

// MaxParamSize is the per-value character clamp applied at construction and
// on every parameter mutation.
const MaxParamSize = 1000

// Scoring weights, §4.4.
const (
	coverScoreRWeight   = 0.40
	mutatedScoreRWeight = 0.10
	sinkScoreRWeight    = 0.30
	execTimeRWeight     = -0.30
	nodeSizeRWeight     = -0.10
	pickedScoreRWeight  = -0.40

	execTimeLWeight    = -0.60
	nodeSizeLWeight    = -0.30
	uncertaintyThresh  = 0.1
)

// ErrInvalidRequest is returned when a GET request is constructed with POST
// parameters.
var ErrInvalidRequest = fmt.Errorf("request: GET request cannot carry POST parameters")

// Params is the method -> key -> ordered values parameter multimap.
type Params map[types.HTTPMethod]map[string][]string

func emptyParams() Params {
	return Params{
		types.GET:  {},
		types.POST: {},
	}
}

// Request is the identity-stable descriptor of one HTTP request plus its
// accumulated feedback metrics. Identity fields (method, url, params) never
// change after construction; everything else may be mutated by the worker
// or corpus as feedback arrives.
type Request struct {
	mu sync.Mutex

	method     types.HTTPMethod
	rawURL     string
	uniqueAnch bool
	params     Params

	size int

	parent *Request

	ExecTime float64

	CoverXor    int
	CoverSingle int
	PickedScore int
	RefCount    int
	Sinks       map[string]struct{}
	XSSConf     types.XSSConfidence

	cachedURL  string
	cachedHash uint64
	hashOnce   sync.Once
}

// New validates, canonicalises the URL, clamps params and computes size. It
// fails with ErrInvalidRequest if a GET request carries POST parameters.
func New(method types.HTTPMethod, rawURL string, params Params, parent *Request, uniqueAnchors bool) (*Request, error) {
	if params == nil {
		params = emptyParams()
	}
	if params[types.GET] == nil {
		params[types.GET] = map[string][]string{}
	}
	if params[types.POST] == nil {
		params[types.POST] = map[string][]string{}
	}

	if method == types.GET && len(params[types.POST]) > 0 {
		return nil, ErrInvalidRequest
	}

	r := &Request{
		method:     method,
		rawURL:     rawURL,
		uniqueAnch: uniqueAnchors,
		parent:     parent,
		Sinks:      make(map[string]struct{}),
		XSSConf:    types.XSSNone,
	}
	r.params = clampParams(params)
	r.size = paramsSize(r.params)
	return r, nil
}

// clampParams truncates every parameter value to MaxParamSize characters.
func clampParams(p Params) Params {
	out := Params{}
	for method, kv := range p {
		out[method] = map[string][]string{}
		for k, values := range kv {
			clamped := make([]string, len(values))
			for i, v := range values {
				if len(v) > MaxParamSize {
					v = v[:MaxParamSize]
				}
				clamped[i] = v
			}
			out[method][k] = clamped
		}
	}
	return out
}

func paramsSize(p Params) int {
	total := 0
	for _, kv := range p {
		for _, values := range kv {
			psize := len(fmt.Sprint(values))
			if psize > MaxParamSize {
				psize = MaxParamSize
			}
			total += psize
		}
	}
	return total
}

// Method returns the request's HTTP method.
func (r *Request) Method() types.HTTPMethod { return r.method }

// Params returns the request's parameter multimap. Callers must not mutate
// the returned map; use Clone+mutation helpers in the mutator package.
func (r *Request) Params() Params { return r.params }

// Size is the clamped total parameter character length.
func (r *Request) Size() int { return r.size }

// Parent is the request this one was mutated from, or nil.
func (r *Request) Parent() *Request { return r.parent }

// IsMutated reports whether this request has a parent.
func (r *Request) IsMutated() bool { return r.parent != nil }

// SinkScore is the number of distinct sinks observed in this request's
// response.
func (r *Request) SinkScore() int { return len(r.Sinks) }

// URL returns the canonical URL: fragment is stripped unless unique_anchors
// was set at construction.
func (r *Request) URL() string {
	if r.cachedURL != "" {
		return r.cachedURL
	}
	if r.uniqueAnch {
		r.cachedURL = r.rawURL
		return r.cachedURL
	}
	u, err := url.Parse(r.rawURL)
	if err != nil {
		r.cachedURL = r.rawURL
		return r.cachedURL
	}
	u.Fragment = ""
	r.cachedURL = u.String()
	return r.cachedURL
}

// CoverScoreRaw is cover_xor if policy is EDGE or NODE_EDGE, else
// cover_single.
func (r *Request) CoverScoreRaw(policy types.Policy) int {
	if policy == types.PolicyNode {
		return r.CoverSingle
	}
	return r.CoverXor
}

// CoverScore is the percentage of raw coverage over the policy's
// denominator (edge_count for EDGE, basic_block_count otherwise).
func (r *Request) CoverScore(policy types.Policy, edgeCount, basicBlocks int) float64 {
	count := basicBlocks
	if policy == types.PolicyEdge {
		count = edgeCount
	}
	if count == 0 {
		return 0
	}
	return 100 * float64(r.CoverScoreRaw(policy)) / float64(count)
}

// MutatedScore is the raw-coverage delta against the parent, or 0 with no
// parent.
func (r *Request) MutatedScore(policy types.Policy) int {
	if r.parent == nil {
		return 0
	}
	return r.CoverScoreRaw(policy) - r.parent.CoverScoreRaw(policy)
}

// ToBucket quantises a hit count into one of 9 buckets: ceil(log2(hit))
// clamped to 8 for hit >= 256.
func ToBucket(hitCount int) types.Bucket {
	if hitCount >= 256 {
		return 8
	}
	if hitCount <= 0 {
		return 0
	}
	return types.Bucket(math.Ceil(math.Log2(float64(hitCount))))
}

// SetCoverage records the sizes of the two parsed coverage maps.
func (r *Request) SetCoverage(xorCFG, singleCFG types.CFG) {
	r.CoverXor = len(xorCFG)
	r.CoverSingle = len(singleCFG)
}

// calcWeightedDifference implements the formula
//   weight * (value1 - value2) / (|value1 + value2| / 2)
// returning 0 when the pair sum is zero.
func calcWeightedDifference(value1, value2, weight float64) float64 {
	theirSum := math.Abs(value1+value2) / 2
	if theirSum <= 0 {
		return 0
	}
	return weight * (value1 - value2) / theirSum
}

// Cmp defines the corpus priority ordering: negative means r sorts before
// other (r has higher pick preference) in the min-heap.
func (r *Request) Cmp(other *Request, policy types.Policy) float64 {
	return calcWeightedDifference(other.CoverScoreRawF(policy), r.CoverScoreRawF(policy), coverScoreRWeight) +
		calcWeightedDifference(other.ExecTime, r.ExecTime, execTimeRWeight) +
		calcWeightedDifference(float64(other.size), float64(r.size), nodeSizeRWeight) +
		calcWeightedDifference(float64(other.PickedScore), float64(r.PickedScore), pickedScoreRWeight) +
		calcWeightedDifference(float64(other.MutatedScore(policy)), float64(r.MutatedScore(policy)), mutatedScoreRWeight) +
		calcWeightedDifference(float64(other.SinkScore()), float64(r.SinkScore()), sinkScoreRWeight)
}

// CoverScoreRawF is CoverScoreRaw widened to float64 for the weighted-diff
// arithmetic.
func (r *Request) CoverScoreRawF(policy types.Policy) float64 {
	return float64(r.CoverScoreRaw(policy))
}

// Less reports whether r has strictly higher pick preference than other.
func (r *Request) Less(other *Request, policy types.Policy) bool {
	return r.Cmp(other, policy) < 0
}

// IsLighterThan is the replacement test: true when r is significantly
// cheaper than other by execution time and size, guarded against noise by
// UNCERTAINTY_THRESH.
func (r *Request) IsLighterThan(other *Request) bool {
	weightedDiff := calcWeightedDifference(other.ExecTime, r.ExecTime, execTimeLWeight) +
		calcWeightedDifference(float64(other.size), float64(r.size), nodeSizeLWeight)

	isLighter := weightedDiff < 0
	if isLighter && math.Abs(weightedDiff) < uncertaintyThresh {
		return false
	}
	return isLighter
}

// objectToTuple produces a stable, order-independent representation of a
// params multimap for hashing, mirroring object_to_tuple's list/dict
// sorting.
func objectToTuple(p Params) string {
	methods := make([]int, 0, len(p))
	for m := range p {
		methods = append(methods, int(m))
	}
	sort.Ints(methods)

	var b []byte
	for _, m := range methods {
		keys := make([]string, 0, len(p[types.HTTPMethod(m)]))
		for k := range p[types.HTTPMethod(m)] {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			values := append([]string(nil), p[types.HTTPMethod(m)][k]...)
			sort.Strings(values)
			b = fmt.Appendf(b, "%d|%s|%v;", m, k, values)
		}
	}
	return string(b)
}

// Hash returns the identity hash: stable across the request's lifetime,
// based only on method, canonical URL and parameters. Memoised on first
// call since identity fields never mutate.
func (r *Request) Hash() uint64 {
	r.hashOnce.Do(func() {
		h := sha256.New()
		h.Write([]byte(r.URL()))
		h.Write([]byte{byte(r.method)})
		h.Write([]byte(objectToTuple(r.params)))
		sum := h.Sum(nil)
		r.cachedHash = uint64(sum[0])<<56 | uint64(sum[1])<<48 | uint64(sum[2])<<40 | uint64(sum[3])<<32 |
			uint64(sum[4])<<24 | uint64(sum[5])<<16 | uint64(sum[6])<<8 | uint64(sum[7])
	})
	return r.cachedHash
}

// HashHex is the hex-encoded identity hash, convenient for set keys and
// logs.
func (r *Request) HashHex() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", r.URL(), r.method, objectToTuple(r.params))))
	return hex.EncodeToString(sum[:8])
}

// Equal compares two requests by identity hash.
func (r *Request) Equal(other *Request) bool {
	if other == nil {
		return false
	}
	return r.Hash() == other.Hash()
}

// summary is the JSON wire shape for stats/logs (§6): internal scoring
// fields are never serialised.
type summary struct {
	Method        string   `json:"method"`
	URL           string   `json:"url"`
	Params        Params   `json:"params"`
	ExecTime      float64  `json:"exec_time"`
	Size          int      `json:"size"`
	CoverScore    float64  `json:"cover_score"`
	MutatedScore  int      `json:"mutated_score"`
	XSSConfidence string   `json:"xss_confidence"`
	Hash          string   `json:"hash"`
}

// MarshalJSON emits only the attributes documented in §6; picked_score,
// ref_count, cover_score_xor/single and parent are intentionally omitted.
func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(summary{
		Method:        r.method.String(),
		URL:           r.URL(),
		Params:        r.params,
		ExecTime:      r.ExecTime,
		Size:          r.size,
		CoverScore:    0, // needs policy context; Summary fills it in
		MutatedScore:  0,
		XSSConfidence: r.XSSConf.String(),
		Hash:          r.HashHex(),
	})
}

// Summary builds the §6 JSON wire shape with policy-dependent scores filled
// in, since Request itself does not retain the run's InstrumentArgs.
func (r *Request) Summary(policy types.Policy, edgeCount, basicBlocks int) ([]byte, error) {
	return json.Marshal(summary{
		Method:        r.method.String(),
		URL:           r.URL(),
		Params:        r.params,
		ExecTime:      r.ExecTime,
		Size:          r.size,
		CoverScore:    r.CoverScore(policy, edgeCount, basicBlocks),
		MutatedScore:  r.MutatedScore(policy),
		XSSConfidence: r.XSSConf.String(),
		Hash:          r.HashHex(),
	})
}

// String renders the request for logging.
func (r *Request) String() string {
	return fmt.Sprintf("%s %s (size=%d exec_time=%.3f)", r.method, r.URL(), r.size, r.ExecTime)
}

// Lock/Unlock expose the request's own mutex so the corpus and worker can
// serialise mutation of non-identity fields (ExecTime, Sinks, PickedScore,
// RefCount) without a package-wide lock.
func (r *Request) Lock()   { r.mu.Lock() }
func (r *Request) Unlock() { r.mu.Unlock() }
