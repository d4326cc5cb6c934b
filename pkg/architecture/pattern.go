// Package architecture detects architecture and style patterns from a
// project's layout, its declared dependencies, its source text and the
// configuration files in its root. Every detector is a heuristic: matches
// are plausible, not exhaustive, and false positives are expected.
package architecture

import "math"

// Signals a pattern can be derived from.
const (
	SignalStructure  = "structure"
	SignalDependency = "dependency"
	SignalCode       = "code"
	SignalConfig     = "config"
)

// Pattern is one detected architecture pattern candidate.
type Pattern struct {
	Name       string         `json:"name" yaml:"name"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Signal     string         `json:"signal" yaml:"signal"`
	Indicators []string       `json:"indicators" yaml:"indicators"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewPattern builds a pattern with its confidence clamped into [0, 1].
func NewPattern(name string, confidence float64, signal string, indicators ...string) Pattern {
	if indicators == nil {
		indicators = []string{}
	}
	return Pattern{
		Name:       name,
		Confidence: ClampConfidence(confidence),
		Signal:     signal,
		Indicators: indicators,
	}
}

// ClampConfidence bounds c to [0, 1]. NaN becomes 0.
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Max(0, math.Min(1, c))
}

// Names returns the distinct pattern names in first-seen order.
func Names(patterns []Pattern) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p.Name] {
			seen[p.Name] = true
			out = append(out, p.Name)
		}
	}
	return out
}
