package mutator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
)

// RequestMutator produces derived requests from a corpus parent by
// perturbing one parameter (§4.5). It wraps a byte-level MutatorEngine for
// the structural perturbation and optionally splices values sampled from
// other corpus entries or injects XSS payloads.
type RequestMutator struct {
	engine      *MutatorEngine
	maxXSS      int
	xssPayloads []string
}

// NewRequestMutator builds a RequestMutator. A nil engine gets
// NewMutatorEngine's default: every built-in AFL-style and type-aware
// strategy pre-registered, so engineMutate below always has something to
// apply.
func NewRequestMutator(engine *MutatorEngine, maxXSS int, xssPayloads []string) *RequestMutator {
	if engine == nil {
		engine = NewMutatorEngine()
	}
	return &RequestMutator{engine: engine, maxXSS: maxXSS, xssPayloads: xssPayloads}
}

// pickParam selects one (method, key) pair to mutate, preferring the
// parent's own parameters; returns ok=false if the parent has none.
func pickParam(r *request.Request) (types.HTTPMethod, string, bool) {
	type candidate struct {
		method types.HTTPMethod
		key    string
	}
	var candidates []candidate
	for method, kv := range r.Params() {
		for key := range kv {
			candidates = append(candidates, candidate{method, key})
		}
	}
	if len(candidates) == 0 {
		return 0, "", false
	}
	c := candidates[rand.Intn(len(candidates))]
	return c.method, c.key, true
}

// spliceFromSnapshot returns a value for `key` borrowed from another corpus
// entry that happens to carry the same parameter key, or "" if none do.
func spliceFromSnapshot(snapshot []*request.Request, method types.HTTPMethod, key string) (string, bool) {
	var candidates []string
	for _, r := range snapshot {
		if values, ok := r.Params()[method][key]; ok && len(values) > 0 {
			candidates = append(candidates, values[rand.Intn(len(values))])
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// Mutate produces a fresh Request whose parent is `parent`, with at least
// one parameter perturbed; method and URL are preserved and the output
// never exceeds request.MaxParamSize per value.
func (m *RequestMutator) Mutate(parent *request.Request, snapshot []*request.Request) (*request.Request, error) {
	method, key, ok := pickParam(parent)

	newParams := cloneParams(parent.Params())

	if !ok {
		// parentless parameter set: synthesize one GET parameter so the
		// mutator always has somewhere to perturb.
		key = "fz"
		method = types.GET
		newParams[types.GET][key] = []string{"seed"}
	}

	strategy := m.pickStrategy()
	current := newParams[method][key]
	if len(current) == 0 {
		current = []string{""}
	}
	idx := rand.Intn(len(current))

	var mutated string
	switch strategy {
	case strategySplice:
		if v, ok := spliceFromSnapshot(snapshot, method, key); ok {
			mutated = v
		} else {
			mutated = m.engineMutate(current[idx])
		}
	case strategyXSS:
		mutated = m.xssPayload(current[idx])
	default:
		mutated = m.engineMutate(current[idx])
	}

	if len(mutated) > request.MaxParamSize {
		mutated = mutated[:request.MaxParamSize]
	}
	current[idx] = mutated
	newParams[method][key] = current

	child, err := request.New(parent.Method(), rawURLOf(parent), newParams, parent, false)
	if err != nil {
		return nil, err
	}
	if child.Equal(parent) {
		// guarantee identity differs from parent per §4.5: append an extra
		// throwaway query perturbation.
		newParams[method][key] = append(append([]string{}, current...), fmt.Sprintf("_m%d", rand.Int()))
		child, err = request.New(parent.Method(), rawURLOf(parent), newParams, parent, false)
		if err != nil {
			return nil, err
		}
	}
	return child, nil
}

type strategy int

const (
	strategyByte strategy = iota
	strategySplice
	strategyXSS
)

func (m *RequestMutator) pickStrategy() strategy {
	if len(m.xssPayloads) > 0 && m.maxXSS > 0 && rand.Intn(3) == 0 {
		return strategyXSS
	}
	if rand.Intn(2) == 0 {
		return strategySplice
	}
	return strategyByte
}

func (m *RequestMutator) engineMutate(value string) string {
	result := m.engine.Mutate([]byte(value))
	if result.Error != nil || len(result.Mutated) == 0 {
		return value
	}
	return string(result.Mutated)
}

func (m *RequestMutator) xssPayload(value string) string {
	if len(m.xssPayloads) == 0 {
		return value
	}
	injected := 0
	for _, p := range m.xssPayloads {
		injected += strings.Count(value, p)
	}
	if injected >= m.maxXSS {
		return m.engineMutate(value)
	}
	payload := m.xssPayloads[rand.Intn(len(m.xssPayloads))]
	return value + payload
}

func cloneParams(p request.Params) request.Params {
	out := request.Params{types.GET: {}, types.POST: {}}
	for method, kv := range p {
		for k, values := range kv {
			out[method][k] = append([]string(nil), values...)
		}
	}
	return out
}

// rawURLOf reads back the request's canonical URL for reuse as the child's
// URL (method/URL must be preserved per §4.5).
func rawURLOf(r *request.Request) string {
	return r.URL()
}
