package metrics

import (
	"fmt"

	"github.com/simonhull/firebird-suite/kite/pkg/syntax"
)

// Complexity returns the cyclomatic and cognitive complexity of a unit.
//
// Cyclomatic starts at 1 and adds one per branch, loop, catch, ternary and
// non-default case arm. Cognitive counts the same constructs, each weighted
// by 1 + the nesting depth it appears at.
func Complexity(unit *syntax.Node) (cyclomatic, cognitive int) {
	cyclomatic = 1

	var walk func(nodes []*syntax.Node, depth int)
	walk = func(nodes []*syntax.Node, depth int) {
		for _, n := range nodes {
			switch n.Kind {
			case syntax.KindBranch, syntax.KindLoop, syntax.KindCatch, syntax.KindTernary:
				cyclomatic++
				cognitive += 1 + depth
				walk(n.Children, depth+1)
			case syntax.KindSwitch:
				walk(n.Children, depth)
			case syntax.KindCase:
				if !n.Default {
					cyclomatic++
					cognitive += 1 + depth
				}
				walk(n.Children, depth+1)
			default:
				walk(n.Children, depth)
			}
		}
	}
	walk(unit.Children, 0)

	return cyclomatic, cognitive
}

// MaintainabilityIndex computes the bounded 0..100 maintainability score.
func MaintainabilityIndex(lines, cyclomatic, cognitive, commentLines int) float64 {
	l := float64(lines)
	mi := 171 -
		5.2*(l*0.75) -
		0.23*(float64(cyclomatic)*0.5) -
		16.2*(float64(cognitive)*0.3) +
		50*(float64(commentLines)/(l+1))
	return clamp(mi, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Measure builds the complexity record of a parsed file and the
// high-complexity issues of its units.
func Measure(f *syntax.File, threshold int) (ComplexityRecord, []QualityIssue) {
	rec := ComplexityRecord{
		Path:         f.Path,
		Language:     f.Language,
		Lines:        f.Lines,
		CommentLines: f.CommentLines,
	}

	var issues []QualityIssue
	for _, u := range f.Units() {
		cyc, cog := Complexity(u)
		rec.Units = append(rec.Units, UnitComplexity{Name: u.Name, Line: u.Line, Cyclomatic: cyc, Cognitive: cog})
		rec.Cyclomatic += cyc
		rec.Cognitive += cog

		if cyc > threshold {
			severity := SeverityMedium
			if cyc > 2*threshold {
				severity = SeverityHigh
			}
			issues = append(issues, QualityIssue{
				Type:     IssueHighComplexity,
				Message:  fmt.Sprintf("%s has cyclomatic complexity %d (threshold %d)", u.Name, cyc, threshold),
				Severity: severity,
				Location: Location{File: f.Path, Line: u.Line},
			})
		}
	}
	if rec.Cyclomatic < 1 {
		rec.Cyclomatic = 1
	}

	rec.MaintainabilityIndex = MaintainabilityIndex(rec.Lines, rec.Cyclomatic, rec.Cognitive, rec.CommentLines)
	return rec, issues
}

// Unparsable returns the record for a file that could not be parsed: base
// complexity, no cognitive load and a maintainability index of 100.
func Unparsable(path, language string, lines int, err error) (ComplexityRecord, QualityIssue) {
	rec := ComplexityRecord{
		Path:                 path,
		Language:             language,
		Lines:                lines,
		Cyclomatic:           1,
		MaintainabilityIndex: 100,
		ParseError:           err.Error(),
	}
	issue := QualityIssue{
		Type:     IssueParseFailure,
		Message:  fmt.Sprintf("could not parse %s; metrics assume a harmless file", path),
		Severity: SeverityInfo,
		Location: Location{File: path, Line: 1},
	}
	return rec, issue
}
