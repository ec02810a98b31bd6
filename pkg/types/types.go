// Package types defines common data structures shared across FluxFuzzer
// components: HTTP methods, instrumentation policy, exit/status codes and
// the statistics snapshot exported to the stats renderers.
package types

import (
	"fmt"
	"sync/atomic"
)

// HTTPMethod is one of the two methods the core understands.
type HTTPMethod int

const (
	GET HTTPMethod = iota
	POST
)

func (m HTTPMethod) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	default:
		return "UNKNOWN"
	}
}

// RequestStatus is the result sum type replacing exception-based control
// flow around request dispatch (§9 design notes).
type RequestStatus int

const (
	SuccessInteresting RequestStatus = iota
	SuccessNotInteresting
	SuccessFoundPhrase
	UnsuccessfulRequest
	InvalidResponse
	UnimplementedMethod
)

func (s RequestStatus) String() string {
	switch s {
	case SuccessInteresting:
		return "SUCCESS_INTERESTING"
	case SuccessNotInteresting:
		return "SUCCESS_NOT_INTERESTING"
	case SuccessFoundPhrase:
		return "SUCCESS_FOUND_PHRASE"
	case UnsuccessfulRequest:
		return "UNSUCCESSFUL_REQUEST"
	case InvalidResponse:
		return "INVALID_RESPONSE"
	case UnimplementedMethod:
		return "UNIMPLEMENTED_METHOD"
	default:
		return "UNKNOWN"
	}
}

// ExitCode is the shared shutdown signal consulted after every worker cycle.
type ExitCode int32

const (
	ExitNone ExitCode = iota
	ExitUser
	ExitEmptyQueue
	ExitTimeout
	ExitLoggedOut
)

// ShutdownSignal is the single atomic "env.shutdown_signal" consulted after
// every worker cycle (§5, §9): whichever of USER/EMPTY_QUEUE/TIMEOUT/
// LOGGED_OUT is set first wins; subsequent sets are no-ops.
type ShutdownSignal struct {
	v atomic.Int32
}

// Set records code as the shutdown reason, unless one was already set.
func (s *ShutdownSignal) Set(code ExitCode) {
	s.v.CompareAndSwap(int32(ExitNone), int32(code))
}

// Load returns the current shutdown reason (ExitNone if none yet).
func (s *ShutdownSignal) Load() ExitCode {
	return ExitCode(s.v.Load())
}

func (c ExitCode) String() string {
	switch c {
	case ExitNone:
		return "NONE"
	case ExitUser:
		return "USER"
	case ExitEmptyQueue:
		return "EMPTY_QUEUE"
	case ExitTimeout:
		return "TIMEOUT"
	case ExitLoggedOut:
		return "LOGGED_OUT"
	default:
		return "UNKNOWN"
	}
}

// XSSConfidence expresses how confident the detector is that a reflected
// marker is a genuine effect of an injected payload.
type XSSConfidence int

const (
	XSSNone XSSConfidence = iota
	XSSLow
	XSSMedium
	XSSHigh
)

func (c XSSConfidence) String() string {
	switch c {
	case XSSNone:
		return "NONE"
	case XSSLow:
		return "LOW"
	case XSSMedium:
		return "MEDIUM"
	case XSSHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// MutationType classifies the mutators registered with internal/mutator's
// MutatorEngine.
type MutationType int

const (
	BitFlip MutationType = iota
	ArithmeticAdd
	InterestingValues
	ByteSwap
	StructureAware
)

// OutputMethod is how the target emits instrumentation feedback.
type OutputMethod int

const (
	OutputFile OutputMethod = iota
	OutputHTTP
)

// Policy is the target's instrumentation granularity.
type Policy int

const (
	PolicyNode Policy = iota
	PolicyEdge
	PolicyNodeEdge
)

// ParsePolicy parses the instr.meta "instrument-policy" string.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "node":
		return PolicyNode, nil
	case "edge":
		return PolicyEdge, nil
	case "node-edge":
		return PolicyNodeEdge, nil
	default:
		return 0, fmt.Errorf("types: unknown instrument-policy %q", s)
	}
}

// ParseOutputMethod parses the instr.meta "output-method" string.
func ParseOutputMethod(s string) (OutputMethod, error) {
	switch s {
	case "file":
		return OutputFile, nil
	case "http":
		return OutputHTTP, nil
	default:
		return 0, fmt.Errorf("types: unknown output-method %q", s)
	}
}

// Label identifies a basic block or edge in the target's CFG.
type Label int

// Bucket is a log-quantised hit count, see CFG bucket scheme.
type Bucket int

// CFG maps a label to its observed bucket for one request.
type CFG map[Label]Bucket

// CFGTuple is the pair of coverage maps a request's response yields.
type CFGTuple struct {
	XorCFG    CFG
	SingleCFG CFG
}

// BlockedLink is one crawler blocklist rule: (url-regex, key-regex, value-regex).
type BlockedLink struct {
	URL string
	Key string
	Val string
}

// XssEntry records one confirmed-or-suspected sink: which parameter and
// which payload index triggered it.
type XssEntry struct {
	Param   string
	XSSCode int
}

// XssParams groups XssEntry sightings by HTTP method.
type XssParams map[HTTPMethod]map[XssEntry]struct{}

// InstrumentArgs is the parsed, validated instr.meta.
type InstrumentArgs struct {
	BasicBlocks  int
	Edges        int
	OutputMethod OutputMethod
	Policy       Policy
}

// Statistics is the live snapshot exported to the stats renderers (TUI,
// file mode, web dashboard). CurrentNode is an opaque summary, not the full
// request, to keep this package free of a dependency on internal/request.
type Statistics struct {
	CurrentCoverScore  float64
	TotalCoverScore    float64
	CrawlerPendingURLs int
	TotalRequests      int64
	TotalXSS           int64
	CurrentNodeSummary string
}
