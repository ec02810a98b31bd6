// Package mutator implements C5, the fuzzer's parameter mutator (§4.5): it
// perturbs a single parameter value on a Request drawn from the corpus,
// producing a derived candidate that re-enters the crawl/dispatch/admit
// cycle. The byte-level perturbation itself is driven by a small pluggable
// engine — AFL-style bit/byte/arithmetic flips (afl.go) and type-aware
// payload/structure mutators (smart.go) — selected at random per call; the
// engine has no notion of HTTP requests, parameters or the corpus, so
// request_mutator.go is the piece that actually implements §4.5's contract
// (parameter selection, splicing across corpus entries, XSS injection,
// MAX_PARAM_SIZE clamping, identity-differs-from-parent).
package mutator

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
)

// Mutator defines the interface for all mutation implementations
type Mutator interface {
	// Name returns the human-readable name of the mutator
	Name() string

	// Description returns a brief description of what this mutator does
	Description() string

	// Mutate applies the mutation strategy to the input
	Mutate(input []byte) ([]byte, error)

	// MutateWithType applies mutation based on inferred type
	MutateWithType(input []byte, inputType InputType) ([]byte, error)

	// Type returns the MutationType constant for this mutator
	Type() types.MutationType
}

// MutationStrategy defines how mutations are selected and applied
type MutationStrategy interface {
	// SelectMutator chooses a mutator from the available pool
	SelectMutator(mutators []Mutator) Mutator

	// ShouldMutate decides whether to apply mutation
	ShouldMutate(probability float64) bool

	// Reset resets any internal state
	Reset()
}

// InputType represents the detected type of input data
type InputType int

const (
	TypeUnknown InputType = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeJSON
	TypeXML
	TypeHTML
	TypeURL
	TypeEmail
	TypeUUID
	TypeJWT
	TypeBase64
	TypeHex
)

// String returns the string representation of InputType
func (t InputType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeJSON:
		return "json"
	case TypeXML:
		return "xml"
	case TypeHTML:
		return "html"
	case TypeURL:
		return "url"
	case TypeEmail:
		return "email"
	case TypeUUID:
		return "uuid"
	case TypeJWT:
		return "jwt"
	case TypeBase64:
		return "base64"
	case TypeHex:
		return "hex"
	default:
		return "unknown"
	}
}

// MutationResult wraps the result of a mutation operation
type MutationResult struct {
	Original    []byte
	Mutated     []byte
	MutatorName string
	InputType   InputType
	Success     bool
	Error       error
}

// --- Registry: Manages available mutators ---

// Registry stores and manages available mutators
type Registry struct {
	mu       sync.RWMutex
	mutators map[string]Mutator
	order    []string // maintains insertion order
}

// NewRegistry creates a new mutator registry
func NewRegistry() *Registry {
	return &Registry{
		mutators: make(map[string]Mutator),
		order:    make([]string, 0),
	}
}

// Register adds a mutator to the registry
func (r *Registry) Register(m Mutator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.mutators[name]; !exists {
		r.order = append(r.order, name)
	}
	r.mutators[name] = m
}

// Get retrieves a mutator by name
func (r *Registry) Get(name string) (Mutator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.mutators[name]
	return m, exists
}

// All returns all registered mutators in insertion order
func (r *Registry) All() []Mutator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Mutator, 0, len(r.order))
	for _, name := range r.order {
		if m, exists := r.mutators[name]; exists {
			result = append(result, m)
		}
	}
	return result
}

// Names returns the names of all registered mutators
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Count returns the number of registered mutators
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mutators)
}

// Remove removes a mutator from the registry
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mutators[name]; !exists {
		return false
	}

	delete(r.mutators, name)

	// Remove from order slice
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return true
}

// --- RandomSelector: Random mutation selection strategy ---

// RandomSelector implements random mutator selection
type RandomSelector struct {
	mu sync.Mutex
}

// NewRandomSelector creates a new RandomSelector
func NewRandomSelector() *RandomSelector {
	return &RandomSelector{}
}

// SelectMutator randomly selects a mutator from the pool
func (s *RandomSelector) SelectMutator(mutators []Mutator) Mutator {
	if len(mutators) == 0 {
		return nil
	}

	idx := secureRandomInt(len(mutators))
	return mutators[idx]
}

// ShouldMutate decides whether to apply mutation based on probability
func (s *RandomSelector) ShouldMutate(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1.0 {
		return true
	}

	// Generate random float between 0 and 1
	randFloat := float64(secureRandomInt(10000)) / 10000.0
	return randFloat < probability
}

// Reset resets any internal state (no-op for RandomSelector)
func (s *RandomSelector) Reset() {
	// No internal state to reset
}

// --- MutatorEngine: request_mutator.go's byte-perturbation backend ---

// MutatorEngine holds the registered byte-level strategies and applies one
// at random to a parameter value on each call. It is deliberately ignorant
// of HTTP requests; RequestMutator.Mutate (request_mutator.go) is what turns
// one engine call into a §4.5-compliant derived Request.
type MutatorEngine struct {
	mu            sync.RWMutex
	registry      *Registry
	strategy      MutationStrategy
	probability   float64
	typeDetectors []TypeDetector
}

// TypeDetector detects the type of input
type TypeDetector func(input []byte) (InputType, bool)

// NewMutatorEngine creates a MutatorEngine with every built-in AFL-style and
// type-aware strategy registered (RegisterAFLMutators, RegisterSmartMutators)
// and a random selection policy, ready for RequestMutator to call directly.
func NewMutatorEngine() *MutatorEngine {
	engine := &MutatorEngine{
		registry:      NewRegistry(),
		strategy:      NewRandomSelector(),
		probability:   1.0,
		typeDetectors: make([]TypeDetector, 0),
	}

	engine.registerBuiltInDetectors()
	RegisterAFLMutators(engine)
	RegisterSmartMutators(engine)

	return engine
}

// registerBuiltInDetectors adds default type detection functions
func (e *MutatorEngine) registerBuiltInDetectors() {
	// JSON detector
	e.AddTypeDetector(func(input []byte) (InputType, bool) {
		if len(input) < 2 {
			return TypeUnknown, false
		}
		// Simple check for JSON object or array
		first := input[0]
		if first == '{' || first == '[' {
			return TypeJSON, true
		}
		return TypeUnknown, false
	})

	// XML detector
	e.AddTypeDetector(func(input []byte) (InputType, bool) {
		if len(input) < 1 {
			return TypeUnknown, false
		}
		if input[0] == '<' {
			return TypeXML, true
		}
		return TypeUnknown, false
	})

	// Integer detector
	e.AddTypeDetector(func(input []byte) (InputType, bool) {
		if len(input) == 0 {
			return TypeUnknown, false
		}
		for i, b := range input {
			if b == '-' && i == 0 {
				continue
			}
			if b < '0' || b > '9' {
				return TypeUnknown, false
			}
		}
		return TypeInteger, true
	})

	// UUID detector
	e.AddTypeDetector(func(input []byte) (InputType, bool) {
		if len(input) != 36 {
			return TypeUnknown, false
		}
		// Check format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
		s := string(input)
		if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
			return TypeUnknown, false
		}
		return TypeUUID, true
	})
}

// Register adds a mutator to the engine
func (e *MutatorEngine) Register(m Mutator) {
	e.registry.Register(m)
}

// AddTypeDetector adds a custom type detector
func (e *MutatorEngine) AddTypeDetector(detector TypeDetector) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typeDetectors = append(e.typeDetectors, detector)
}

// SetStrategy sets the mutation selection strategy
func (e *MutatorEngine) SetStrategy(strategy MutationStrategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategy = strategy
}

// SetProbability sets the mutation probability
func (e *MutatorEngine) SetProbability(p float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	e.probability = p
}

// DetectType attempts to detect the input type
func (e *MutatorEngine) DetectType(input []byte) InputType {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, detector := range e.typeDetectors {
		if t, detected := detector(input); detected {
			return t
		}
	}
	return TypeUnknown
}

// Mutate applies a single random mutation to the input
func (e *MutatorEngine) Mutate(input []byte) *MutationResult {
	e.mu.RLock()
	probability := e.probability
	strategy := e.strategy
	e.mu.RUnlock()

	result := &MutationResult{
		Original:  input,
		Mutated:   input,
		InputType: e.DetectType(input),
	}

	// Check if we should mutate
	if !strategy.ShouldMutate(probability) {
		result.Success = true
		return result
	}

	// Get available mutators
	mutators := e.getActiveMutators()
	if len(mutators) == 0 {
		result.Success = true
		return result
	}

	// Select and apply mutator
	mutator := strategy.SelectMutator(mutators)
	if mutator == nil {
		result.Success = true
		return result
	}

	mutated, err := mutator.MutateWithType(input, result.InputType)
	if err != nil {
		result.Error = err
		result.Success = false
		return result
	}

	result.Mutated = mutated
	result.MutatorName = mutator.Name()
	result.Success = true

	return result
}

// getActiveMutators returns every registered strategy; request_mutator.go
// calls Mutate once per perturbed value, so there is no notion of a
// restricted subset here.
func (e *MutatorEngine) getActiveMutators() []Mutator {
	return e.registry.All()
}

// Registry returns the underlying registry
func (e *MutatorEngine) Registry() *Registry {
	return e.registry
}

// --- Helper functions ---

// secureRandomInt generates a cryptographically secure random number in [0, max)
func secureRandomInt(max int) int {
	if max <= 0 {
		return 0
	}

	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}

	n := binary.BigEndian.Uint64(b[:])
	return int(n % uint64(max))
}

// secureRandomBytes generates cryptographically secure random bytes
func secureRandomBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}
