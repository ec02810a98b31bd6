// Package corpus implements the NodeIterator: a priority queue of
// interesting requests with admission, replacement and eviction policy
// driven by the coverage union (§4.4).
package corpus

import (
	"container/heap"
	"sync"

	"github.com/fluxfuzzer/fluxfuzzer/internal/coverage"
	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
)

// entry wraps a request with its heap index so the heap can be re-scored in
// place after PickedScore changes.
type entry struct {
	req   *request.Request
	index int
}

type priorityHeap struct {
	entries []*entry
	policy  types.Policy
}

func (h priorityHeap) Len() int { return len(h.entries) }
func (h priorityHeap) Less(i, j int) bool {
	return h.entries[i].req.Less(h.entries[j].req, h.policy)
}
func (h priorityHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}
func (h *priorityHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(h.entries)
	h.entries = append(h.entries, e)
}
func (h *priorityHeap) Pop() any {
	old := h.entries
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	h.entries = old[:n-1]
	return e
}

// Corpus is the prioritised collection of admitted requests plus the
// process-wide coverage union.
type Corpus struct {
	mu sync.Mutex

	heap      priorityHeap
	byHash    map[uint64]*entry
	union     *coverage.Union
	policy    types.Policy
	edgeCount int
	basicBlks int
}

// New creates an empty corpus bound to policy and the instrumentation
// denominators used for TotalCoverScore.
func New(policy types.Policy, edgeCount, basicBlocks int) *Corpus {
	c := &Corpus{
		byHash:    make(map[uint64]*entry),
		union:     coverage.NewUnion(),
		policy:    policy,
		edgeCount: edgeCount,
		basicBlks: basicBlocks,
	}
	c.heap.policy = policy
	heap.Init(&c.heap)
	return c
}

// Size is the number of requests currently in the corpus.
func (c *Corpus) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byHash)
}

// TotalCoverScore is 100 * |Union| / denominator.
func (c *Corpus) TotalCoverScore() float64 {
	denom := c.edgeCount
	if c.policy != types.PolicyEdge {
		denom = c.basicBlks
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.union.TotalCoverScore(denom)
}

// relevantCFG picks the coverage map the corpus's policy cares about.
func (c *Corpus) relevantCFG(tuple types.CFGTuple) types.CFG {
	if c.policy == types.PolicyNode {
		return tuple.SingleCFG
	}
	return tuple.XorCFG
}

// Add is the admission decision of §4.4: returns true and takes ownership
// of r if it raises the union or replaces a heavier sole contributor.
func (c *Corpus) Add(r *request.Request, tuple types.CFGTuple) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	r.SetCoverage(tuple.XorCFG, tuple.SingleCFG)
	cfg := c.relevantCFG(tuple)

	newLabels := make([]types.Label, 0)
	replaceable := make(map[types.Label]*request.Request)

	for label, bucket := range cfg {
		unionBucket, ok := c.union.Bucket(label)
		switch {
		case !ok || bucket > unionBucket:
			newLabels = append(newLabels, label)
		case bucket == unionBucket:
			if contributor := c.union.Contributor(label); contributor != nil && contributor != r && r.IsLighterThan(contributor) {
				replaceable[label] = contributor
			}
		}
	}

	if len(newLabels) == 0 && len(replaceable) == 0 {
		return false
	}

	for _, label := range newLabels {
		c.union.Raise(label, cfg[label], r)
		r.RefCount++
	}

	for label, incumbent := range replaceable {
		c.union.Raise(label, cfg[label], r)
		r.RefCount++
		incumbent.RefCount--
		if incumbent.RefCount <= 0 {
			c.evictLocked(incumbent)
		}
	}

	if _, already := c.byHash[r.Hash()]; !already {
		c.insertLocked(r)
	}
	return true
}

func (c *Corpus) insertLocked(r *request.Request) {
	e := &entry{req: r}
	c.byHash[r.Hash()] = e
	heap.Push(&c.heap, e)
}

func (c *Corpus) evictLocked(r *request.Request) {
	e, ok := c.byHash[r.Hash()]
	if !ok {
		return
	}
	delete(c.byHash, r.Hash())
	heap.Remove(&c.heap, e.index)
}

// Next pops the minimum-priority (highest preference) request, increments
// its PickedScore (future priority degrades, AFL-style energy cooling) and
// reinserts it. Returns false if the corpus is empty.
func (c *Corpus) Next() (*request.Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.heap.Len() == 0 {
		return nil, false
	}

	e := heap.Pop(&c.heap).(*entry)
	e.req.PickedScore++
	heap.Push(&c.heap, e)

	return e.req, true
}

// Snapshot returns the current corpus members for mutator sampling. The
// returned slice is a shallow copy; callers must not mutate identity
// fields of the contained requests.
func (c *Corpus) Snapshot() []*request.Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*request.Request, 0, len(c.heap.entries))
	for _, e := range c.heap.entries {
		out = append(out, e.req)
	}
	return out
}

// RefCountInvariantHolds checks Σref_count == |Union|, exposed for tests.
func (c *Corpus) RefCountInvariantHolds() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, e := range c.heap.entries {
		total += e.req.RefCount
	}
	return total == c.union.Len()
}
