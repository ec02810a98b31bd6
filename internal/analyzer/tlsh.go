// Package analyzer wraps glaslos/tlsh's fuzzy hash, which internal/detector
// repurposes as the confidence signal for reflected-XSS findings: a mutated
// response's TLSH distance from the request's unfuzzed baseline body stands
// in for "did the payload visibly change the page", since detector has no
// other way to score how much a response moved.
package analyzer

import (
	"errors"

	"github.com/glaslos/tlsh"
)

// TLSHHash represents a TLSH hash value
type TLSHHash struct {
	hash *tlsh.TLSH
	raw  string
}

// TLSHConfig holds configuration for TLSH analysis
type TLSHConfig struct {
	// MinDataSize is the minimum content size required for TLSH computation
	// TLSH requires at least 50 bytes for meaningful hash
	MinDataSize int

	// SimilarityThreshold is the maximum distance for content to be considered similar
	// Lower values = more similar required (typical: 30-100)
	SimilarityThreshold int

	// HighSimilarityThreshold for very similar content (typical: 10-30)
	HighSimilarityThreshold int
}

// DefaultTLSHConfig returns sensible default configuration
func DefaultTLSHConfig() *TLSHConfig {
	return &TLSHConfig{
		MinDataSize:             50,
		SimilarityThreshold:     100,
		HighSimilarityThreshold: 30,
	}
}

// TLSHAnalyzer provides TLSH-based similarity analysis
type TLSHAnalyzer struct {
	config *TLSHConfig
}

// NewTLSHAnalyzer creates a new TLSH analyzer
func NewTLSHAnalyzer(config *TLSHConfig) *TLSHAnalyzer {
	if config == nil {
		config = DefaultTLSHConfig()
	}
	return &TLSHAnalyzer{
		config: config,
	}
}

// ComputeHash computes the TLSH hash for the given content
func (a *TLSHAnalyzer) ComputeHash(content []byte) (*TLSHHash, error) {
	if len(content) < a.config.MinDataSize {
		return nil, errors.New("content too small for TLSH computation")
	}

	hash, err := tlsh.HashBytes(content)
	if err != nil {
		return nil, err
	}

	return &TLSHHash{
		hash: hash,
		raw:  hash.String(),
	}, nil
}

// ComputeHashString computes TLSH hash from a string
func (a *TLSHAnalyzer) ComputeHashString(content string) (*TLSHHash, error) {
	return a.ComputeHash([]byte(content))
}

// TLSHResult represents the result of TLSH comparison
type TLSHResult struct {
	// Distance is the TLSH distance (0 = identical, higher = more different)
	Distance int

	// Similarity is the similarity percentage (100 = identical, 0 = completely different)
	Similarity float64

	// IsSimilar indicates if content is within similarity threshold
	IsSimilar bool

	// IsHighlySimilar indicates if content is within high similarity threshold
	IsHighlySimilar bool

	// BaselineHash is the baseline hash string
	BaselineHash string

	// CurrentHash is the current content hash string
	CurrentHash string
}

// CompareHashes compares two TLSH hashes directly
func (a *TLSHAnalyzer) CompareHashes(hash1, hash2 *TLSHHash) *TLSHResult {
	distance := hash1.hash.Diff(hash2.hash)

	// Calculate similarity percentage
	// TLSH distance typically ranges from 0 to ~300+
	// We normalize to a percentage (inverse relationship)
	maxDistance := 300.0
	similarity := (1.0 - float64(distance)/maxDistance) * 100.0
	if similarity < 0 {
		similarity = 0
	}

	return &TLSHResult{
		Distance:        distance,
		Similarity:      similarity,
		IsSimilar:       distance <= a.config.SimilarityThreshold,
		IsHighlySimilar: distance <= a.config.HighSimilarityThreshold,
		BaselineHash:    hash1.raw,
		CurrentHash:     hash2.raw,
	}
}

// CompareContents compares two content byte slices directly
func (a *TLSHAnalyzer) CompareContents(content1, content2 []byte) (*TLSHResult, error) {
	hash1, err := a.ComputeHash(content1)
	if err != nil {
		return nil, err
	}

	hash2, err := a.ComputeHash(content2)
	if err != nil {
		return nil, err
	}

	return a.CompareHashes(hash1, hash2), nil
}

// String returns the hash string representation
func (h *TLSHHash) String() string {
	if h == nil || h.hash == nil {
		return ""
	}
	return h.raw
}
