// Package dependency categorizes a manifest's declared dependencies and
// reports version warnings and mutually exclusive library conflicts.
package dependency

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/manifest"
	"github.com/simonhull/firebird-suite/kite/pkg/rules"
)

// oldVersion matches constraints anchored below 1.0 (^0.4.1, >=0.2.0, v0.3.0).
var oldVersion = regexp.MustCompile(`^[\^~>=<\s]*v?0\.`)

// Record is a categorized dependency.
type Record struct {
	Name       string `json:"name" yaml:"name"`
	Constraint string `json:"version" yaml:"version"`
	Category   string `json:"category" yaml:"category"`
	FirstParty bool   `json:"first_party" yaml:"first_party"`
	Platform   bool   `json:"platform" yaml:"platform"`
	Dev        bool   `json:"dev" yaml:"dev"`
	Source     string `json:"source" yaml:"source"`
}

// Result is the output of the dependency analyzer.
type Result struct {
	Dependencies     []Record            `json:"dependencies" yaml:"dependencies"`
	DevDependencies  []Record            `json:"dev_dependencies" yaml:"dev_dependencies"`
	Categories       map[string][]string `json:"categories" yaml:"categories"`
	Warnings         []string            `json:"warnings" yaml:"warnings"`
	Conflicts        []string            `json:"conflicts" yaml:"conflicts"`
	HasTestFramework bool                `json:"has_test_framework" yaml:"has_test_framework"`
	Total            int                 `json:"total" yaml:"total"`
}

// All returns runtime then development records.
func (r *Result) All() []Record {
	out := make([]Record, 0, len(r.Dependencies)+len(r.DevDependencies))
	out = append(out, r.Dependencies...)
	return append(out, r.DevDependencies...)
}

// HasCategory reports whether any runtime dependency is in category.
func (r *Result) HasCategory(category string) bool {
	for _, d := range r.Dependencies {
		if d.Category == category {
			return true
		}
	}
	return false
}

// Analyzer classifies dependencies using the rule tables.
type Analyzer struct {
	rules    *rules.Rules
	prefixes []string
	logger   logger.Logger
}

// NewAnalyzer creates an Analyzer. prefixes identify first-party packages
// in addition to those the manifest itself declares.
func NewAnalyzer(r *rules.Rules, prefixes []string) *Analyzer {
	return &Analyzer{rules: r, prefixes: prefixes, logger: logger.NewSilentLogger()}
}

// WithLogger returns a new Analyzer with the specified logger
func (a *Analyzer) WithLogger(log logger.Logger) *Analyzer {
	return &Analyzer{rules: a.rules, prefixes: a.prefixes, logger: logger.OrSilent(log)}
}

// Analyze classifies every dependency of m.
func (a *Analyzer) Analyze(m *manifest.Manifest) *Result {
	prefixes := append(append([]string{}, a.prefixes...), m.FirstPartyPrefixes...)

	res := &Result{
		Dependencies:    a.records(m.Dependencies, prefixes),
		DevDependencies: a.records(m.DevDependencies, prefixes),
		Categories:      make(map[string][]string),
		Warnings:        []string{},
		Conflicts:       []string{},
	}
	res.Total = len(res.Dependencies) + len(res.DevDependencies)

	for _, d := range res.All() {
		res.Categories[d.Category] = append(res.Categories[d.Category], d.Name)
		if w := a.versionWarning(d); w != "" {
			res.Warnings = append(res.Warnings, w)
		}
	}
	for _, names := range res.Categories {
		sort.Strings(names)
	}

	// Go has a built-in test runner, so a missing framework is only a
	// finding for pubspec projects.
	candidates := res.DevDependencies
	if m.Kind == manifest.KindGoMod {
		candidates = res.All()
	}
	for _, d := range candidates {
		if a.rules.IsTestFramework(d.Name) {
			res.HasTestFramework = true
			break
		}
	}
	if !res.HasTestFramework && m.Kind == manifest.KindPubspec {
		res.Warnings = append(res.Warnings, "No test framework found in dev_dependencies")
	}

	res.Conflicts = a.conflicts(res.Dependencies)

	a.logger.Debug("Dependencies analyzed",
		logger.F("total", res.Total),
		logger.F("warnings", len(res.Warnings)),
		logger.F("conflicts", len(res.Conflicts)))

	return res
}

func (a *Analyzer) records(deps []manifest.Dependency, prefixes []string) []Record {
	out := make([]Record, 0, len(deps))
	for _, d := range deps {
		out = append(out, Record{
			Name:       d.Name,
			Constraint: d.Constraint,
			Category:   a.rules.CategoryOf(d.Name),
			FirstParty: hasPrefix(d.Name, prefixes),
			Platform:   a.rules.IsPlatform(d.Name) || d.Source == "sdk",
			Dev:        d.Dev,
			Source:     d.Source,
		})
	}
	return out
}

// versionWarning returns at most one warning for a dependency.
func (a *Analyzer) versionWarning(d Record) string {
	if a.rules.IsDeprecated(d.Name) {
		return fmt.Sprintf("%s is deprecated or known to be problematic; consider a maintained alternative", d.Name)
	}
	if d.Source != "hosted" && d.Source != "module" {
		return ""
	}
	if oldVersion.MatchString(d.Constraint) {
		return fmt.Sprintf("%s %s is a pre-1.0 version and may have an unstable API", d.Name, d.Constraint)
	}
	return ""
}

// conflicts returns one message per family with packages declared from
// more than one of its library groups.
func (a *Analyzer) conflicts(deps []Record) []string {
	declared := make(map[string]bool, len(deps))
	for _, d := range deps {
		declared[d.Name] = true
	}

	out := []string{}
	for _, family := range a.rules.ConflictFamilies {
		var names []string
		groups := 0
		for _, group := range family.Groups {
			matched := false
			for _, pkg := range group {
				if declared[pkg] {
					names = append(names, pkg)
					matched = true
				}
			}
			if matched {
				groups++
			}
		}
		if groups > 1 {
			sort.Strings(names)
			out = append(out, fmt.Sprintf("Multiple %s libraries declared: %s", family.Name, strings.Join(names, ", ")))
		}
	}
	return out
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
