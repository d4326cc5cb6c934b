package report

import (
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/kite/pkg/health"
	"github.com/simonhull/firebird-suite/kite/pkg/manifest"
	"github.com/simonhull/firebird-suite/kite/pkg/metrics"
)

const (
	minTestRatio         = 0.2
	minMaintainability   = 65.0
	unhealthyScore       = 40
	maxNamesInSuggestion = 5
	largeProjectSources  = 20
)

// suggestionRule inspects the aggregated report and returns at most one
// suggestion. An empty string means the rule does not apply.
type suggestionRule struct {
	name  string
	check func(r *Report) string
}

// suggestionRules run in order; the order is the emission order.
var suggestionRules = []suggestionRule{
	{"dependency-conflicts", suggestConflicts},
	{"missing-test-framework", suggestTestFramework},
	{"no-tests", suggestTests},
	{"thin-tests", suggestMoreTests},
	{"high-complexity", suggestComplexity},
	{"low-maintainability", suggestMaintainability},
	{"duplicates", suggestDuplicates},
	{"dead-code", suggestDeadCode},
	{"dependency-warnings", suggestDependencyWarnings},
	{"security-advisories", suggestAdvisories},
	{"unhealthy-packages", suggestUnhealthy},
	{"no-architecture", suggestArchitecture},
}

// Suggest runs every suggestion rule against r.
func Suggest(r *Report) []string {
	out := []string{}
	for _, rule := range suggestionRules {
		if s := rule.check(r); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func suggestConflicts(r *Report) string {
	if len(r.Dependencies.Conflicts) == 0 {
		return ""
	}
	return fmt.Sprintf("Consolidate on one library per concern: %s", strings.Join(r.Dependencies.Conflicts, "; "))
}

func suggestTestFramework(r *Report) string {
	if r.Dependencies.Status != StatusOK || r.Dependencies.HasTestFramework {
		return ""
	}
	if r.Project.Kind != string(manifest.KindPubspec) {
		return ""
	}
	return "Add a test framework such as flutter_test or mocktail to dev_dependencies"
}

func suggestTests(r *Report) string {
	s := r.Structure
	if s.Status != StatusOK || s.SourceFiles == 0 || s.TestFiles > 0 {
		return ""
	}
	return "No test files found; add unit and widget tests under test/"
}

func suggestMoreTests(r *Report) string {
	s := r.Structure
	if s.Status != StatusOK || s.TestFiles == 0 || s.SourceFiles == 0 {
		return ""
	}
	ratio := float64(s.TestFiles) / float64(s.SourceFiles)
	if ratio >= minTestRatio {
		return ""
	}
	return fmt.Sprintf("Test coverage looks thin: %d test files for %d source files", s.TestFiles, s.SourceFiles)
}

func suggestComplexity(r *Report) string {
	var worst []string
	for _, issue := range metrics.HighComplexityIssues(r.Code.Issues) {
		worst = append(worst, issue.Location.File)
	}
	if len(worst) == 0 {
		return ""
	}
	return fmt.Sprintf("Refactor %d high-complexity functions, starting with %s",
		len(worst), strings.Join(unique(worst, maxNamesInSuggestion), ", "))
}

func suggestMaintainability(r *Report) string {
	sum := r.Code.Summary
	if r.Code.Status != StatusOK || sum.FilesAnalyzed == 0 || sum.AverageMaintainability >= minMaintainability {
		return ""
	}
	return fmt.Sprintf("Average maintainability index is %.1f; split large files and reduce nesting", sum.AverageMaintainability)
}

func suggestDuplicates(r *Report) string {
	if len(r.Code.Duplicates) == 0 {
		return ""
	}
	return fmt.Sprintf("Extract %d duplicated code blocks into shared helpers", len(r.Code.Duplicates))
}

func suggestDeadCode(r *Report) string {
	if len(r.Code.DeadCode) == 0 {
		return ""
	}
	names := make([]string, 0, len(r.Code.DeadCode))
	for _, d := range r.Code.DeadCode {
		names = append(names, d.Name)
	}
	return fmt.Sprintf("Remove %d unused private functions: %s",
		len(names), strings.Join(unique(names, maxNamesInSuggestion), ", "))
}

func suggestDependencyWarnings(r *Report) string {
	n := len(r.Dependencies.Warnings)
	if n == 0 {
		return ""
	}
	if n == 1 {
		return "Review 1 dependency warning: " + r.Dependencies.Warnings[0]
	}
	return fmt.Sprintf("Review %d dependency warnings about pre-1.0 or deprecated packages", n)
}

func suggestAdvisories(r *Report) string {
	var names []string
	for _, h := range r.DependencyHealth.Packages {
		if len(h.Vulnerabilities) > 0 {
			names = append(names, h.Package)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("Upgrade packages with known security advisories: %s", strings.Join(unique(names, maxNamesInSuggestion), ", "))
}

func suggestUnhealthy(r *Report) string {
	var names []string
	for _, h := range r.DependencyHealth.Packages {
		// Default records only mean the registry was unreachable.
		if h.Source == health.SourceRegistry && h.Score < unhealthyScore {
			names = append(names, h.Package)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("Replace or update poorly maintained packages: %s", strings.Join(unique(names, maxNamesInSuggestion), ", "))
}

func suggestArchitecture(r *Report) string {
	if r.Architecture.Status != StatusOK || r.Architecture.Primary != UnknownPattern {
		return ""
	}
	if r.Structure.SourceFiles < largeProjectSources {
		return ""
	}
	return "No clear architecture detected; consider a feature-first layout under lib/features/"
}

// unique returns the distinct values of list in order, at most max of them.
func unique(list []string, max int) []string {
	seen := make(map[string]bool, len(list))
	var out []string
	for _, s := range list {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}
