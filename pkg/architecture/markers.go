package architecture

import (
	"fmt"
	"regexp"

	"github.com/simonhull/firebird-suite/kite/pkg/dependency"
	"github.com/simonhull/firebird-suite/kite/pkg/rules"
	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

// detectDependencies runs the manifest-marker pass. Each marker matches at
// its fixed confidence once, listing every declared package that hit it.
func detectDependencies(markers []rules.DependencyMarker, deps []dependency.Record) []Pattern {
	declared := make(map[string]bool, len(deps))
	for _, d := range deps {
		declared[d.Name] = true
	}

	var out []Pattern
	for _, m := range markers {
		var indicators []string
		for _, pkg := range m.Packages {
			if declared[pkg] {
				indicators = append(indicators, fmt.Sprintf("depends on %s", pkg))
			}
		}
		if len(indicators) == 0 {
			continue
		}
		p := NewPattern(m.Pattern, m.Confidence, SignalDependency, indicators...)
		if m.Kind != "" {
			p.Metadata = map[string]any{"kind": m.Kind}
		}
		out = append(out, p)
	}
	return out
}

// detectConfig runs the configuration-file pass over root-level files.
func detectConfig(markers []rules.ConfigMarker, inv *scanner.Inventory) []Pattern {
	if inv == nil {
		return nil
	}

	present := make(map[string]bool)
	for _, f := range inv.Files {
		present[f.Path] = true
	}

	var out []Pattern
	for _, m := range markers {
		if !present[m.File] {
			continue
		}
		indicator := fmt.Sprintf("%s present", m.File)
		if m.Description != "" {
			indicator = fmt.Sprintf("%s present (%s)", m.File, m.Description)
		}
		out = append(out, NewPattern(m.Pattern, m.Confidence, SignalConfig, indicator))
	}
	return out
}

// codeMarker is a source-text idiom. Matching is per file; a file counts
// once however often the idiom appears in it.
type codeMarker struct {
	pattern string
	re      *regexp.Regexp
}

var codeMarkers = []codeMarker{
	{"mvvm", regexp.MustCompile(`\b(?:class|type)\s+\w+ViewModel\b`)},
	{"repository", regexp.MustCompile(`\b(?:class|type|interface)\s+\w*Repository\b`)},
	{"factory", regexp.MustCompile(`(?m)^\s*factory\s+\w+(?:\.\w+)?\s*\(|\bfunc\s+New\w*Factory\b|\b(?:class|type)\s+\w+Factory\b`)},
	{"singleton", regexp.MustCompile(`\bstatic\s+(?:final\s+)?\w+\??\s+_instance\b|\bsync\.Once\b`)},
}

const (
	codeBaseConfidence = 0.5
	codeFileStep       = 0.1
	codeMaxConfidence  = 0.9
	maxIndicatorFiles  = 5
)

// codeHits records which markers matched one file.
type codeHits struct {
	path    string
	matched []bool
}

func matchCode(path string, src []byte) codeHits {
	hits := codeHits{path: path, matched: make([]bool, len(codeMarkers))}
	for i, m := range codeMarkers {
		hits.matched[i] = m.re.Match(src)
	}
	return hits
}

// codePatterns folds per-file hits into one pattern per matched marker.
// Confidence grows with the number of files showing the idiom.
func codePatterns(files []codeHits) []Pattern {
	var out []Pattern
	for i, m := range codeMarkers {
		var paths []string
		for _, f := range files {
			if f.matched[i] {
				paths = append(paths, f.path)
			}
		}
		if len(paths) == 0 {
			continue
		}

		confidence := codeBaseConfidence + codeFileStep*float64(len(paths))
		if confidence > codeMaxConfidence {
			confidence = codeMaxConfidence
		}

		var indicators []string
		for j, p := range paths {
			if j == maxIndicatorFiles {
				indicators = append(indicators, fmt.Sprintf("and %d more files", len(paths)-maxIndicatorFiles))
				break
			}
			indicators = append(indicators, fmt.Sprintf("idiom found in %s", p))
		}

		pat := NewPattern(m.pattern, confidence, SignalCode, indicators...)
		pat.Metadata = map[string]any{"files": len(paths)}
		out = append(out, pat)
	}
	return out
}
