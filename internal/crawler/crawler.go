// Package crawler implements the deduplicating source of never-visited
// requests: the blocklist and per-base-URL caps that keep nonce/CSRF
// parameters from exploding the queue, and the hash-set union used to admit
// newly harvested links only once.
package crawler

import (
	"regexp"
	"strings"
	"sync"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
)

// PerBaseLimit caps the number of yields sharing a (method, url) pair.
const PerBaseLimit = 200

// Rule is a compiled blocklist entry: (url-regex, key-regex, value-regex),
// all matched case-insensitively.
type Rule struct {
	URL *regexp.Regexp
	Key *regexp.Regexp
	Val *regexp.Regexp
}

// CompileRule compiles a types.BlockedLink into a Rule. Empty patterns are
// left nil and treated as "don't care" rather than "never matches".
func CompileRule(b types.BlockedLink) (Rule, error) {
	var r Rule
	var err error
	if b.URL != "" {
		if r.URL, err = regexp.Compile("(?i)" + b.URL); err != nil {
			return Rule{}, err
		}
	}
	if b.Key != "" {
		if r.Key, err = regexp.Compile("(?i)" + b.Key); err != nil {
			return Rule{}, err
		}
	}
	if b.Val != "" {
		if r.Val, err = regexp.Compile("(?i)" + b.Val); err != nil {
			return Rule{}, err
		}
	}
	return r, nil
}

// Crawler is a restartable source that yields each admissible request at
// most once per process.
type Crawler struct {
	mu sync.Mutex

	unseen    map[uint64]*request.Request
	seenFull  map[uint64]struct{}
	baseCount map[types.HTTPMethod]map[string]int
	warned    map[types.HTTPMethod]map[string]bool

	blocklist []Rule

	onWarning func(method types.HTTPMethod, url string)
}

// New creates an empty Crawler with the given compiled blocklist.
func New(blocklist []Rule) *Crawler {
	return &Crawler{
		unseen:    make(map[uint64]*request.Request),
		seenFull:  make(map[uint64]struct{}),
		baseCount: map[types.HTTPMethod]map[string]int{types.GET: {}, types.POST: {}},
		warned:    map[types.HTTPMethod]map[string]bool{types.GET: {}, types.POST: {}},
		blocklist: blocklist,
	}
}

// OnBaseCapWarning registers a callback invoked exactly once per
// (method, url) when the per-base cap is first reached.
func (c *Crawler) OnBaseCapWarning(f func(method types.HTTPMethod, url string)) {
	c.onWarning = f
}

// PendingRequests is the number of requests currently queued.
func (c *Crawler) PendingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.unseen)
}

// Add unions in only those links whose hash has never been enqueued before,
// matching set-union semantics rather than ordering.
func (c *Crawler) Add(links []*request.Request) {
	if len(links) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, link := range links {
		h := link.Hash()
		if _, seen := c.seenFull[h]; seen {
			continue
		}
		if _, queued := c.unseen[h]; queued {
			continue
		}
		c.unseen[h] = link
	}
}

// blocklistAllows implements §4.3.1: a request is blocked if some entry's
// url-regex matches the request URL AND (key-regex is empty OR every
// matching parameter key's values also match value-regex in at least one
// list position). Empty sub-patterns are "don't care", never an automatic
// non-match; this resolves the None/False ambiguity documented in
// DESIGN.md.
func (c *Crawler) blocklistAllows(r *request.Request) bool {
	for _, rule := range c.blocklist {
		if rule.URL != nil && !rule.URL.MatchString(r.URL()) {
			continue
		}

		if rule.Key == nil {
			// URL matched and there is no key constraint: block outright.
			return false
		}

		if checkInParams(rule, r.Params()[types.GET]) || checkInParams(rule, r.Params()[types.POST]) {
			return false
		}
	}
	return true
}

// checkInParams reports whether every parameter key matching rule.Key has
// at least one value matching rule.Val.
func checkInParams(rule Rule, params map[string][]string) bool {
	matchedAny := false
	for key, values := range params {
		if !rule.Key.MatchString(key) {
			continue
		}
		matchedAny = true

		if rule.Val == nil {
			continue
		}
		found := false
		for _, v := range values {
			if rule.Val.MatchString(v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return matchedAny
}

// baseURLAllows enforces the per-(method,url) cap, warning exactly once
// when the cap is first reached.
func (c *Crawler) baseURLAllows(r *request.Request) bool {
	counts := c.baseCount[r.Method()]
	url := r.URL()

	counts[url]++
	n := counts[url]

	if n == PerBaseLimit+1 {
		if !c.warned[r.Method()][url] {
			c.warned[r.Method()][url] = true
			if c.onWarning != nil {
				c.onWarning(r.Method(), url)
			}
		}
	}
	return n <= PerBaseLimit
}

// Next pops an arbitrary admissible request, or returns false at
// end-of-stream (no pending requests satisfy the blocklist/cap tests).
func (c *Crawler) Next() (*request.Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.unseen) > 0 {
		var h uint64
		var r *request.Request
		for h, r = range c.unseen {
			break
		}
		delete(c.unseen, h)
		c.seenFull[h] = struct{}{}

		if !c.blocklistAllows(r) {
			continue
		}
		if !c.baseURLAllows(r) {
			continue
		}
		return r, true
	}
	return nil, false
}

// ParseBlockSpec parses the CLI '-b' flag's pipe-delimited "url|key|val"
// form into a types.BlockedLink.
func ParseBlockSpec(spec string) (types.BlockedLink, bool) {
	parts := strings.SplitN(spec, "|", 3)
	if len(parts) != 3 {
		return types.BlockedLink{}, false
	}
	return types.BlockedLink{URL: parts[0], Key: parts[1], Val: parts[2]}, true
}
