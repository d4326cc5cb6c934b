// Package report assembles analyzer results into one structurally complete
// report, derives suggestions from it, and renders it as JSON, YAML or a
// Markdown context document.
package report

import (
	"time"

	"github.com/simonhull/firebird-suite/kite/pkg/architecture"
	"github.com/simonhull/firebird-suite/kite/pkg/dependency"
	"github.com/simonhull/firebird-suite/kite/pkg/engine"
	"github.com/simonhull/firebird-suite/kite/pkg/health"
	"github.com/simonhull/firebird-suite/kite/pkg/metrics"
	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

// Section statuses. A skipped section was not requested; an unavailable
// one was requested but its analyzer failed.
const (
	StatusOK          = engine.StatusOK
	StatusUnavailable = engine.StatusUnavailable
	StatusSkipped     = "skipped"
)

// UnknownPattern is the primary pattern when nothing was detected.
const UnknownPattern = "unknown"

// Report is the aggregated analysis of one project. Every section is always
// present; sections whose analyzer did not run carry defaults.
type Report struct {
	Project          ProjectSection      `json:"project" yaml:"project"`
	Structure        StructureSection    `json:"structure" yaml:"structure"`
	Commands         []Command           `json:"commands" yaml:"commands"`
	Dependencies     DependencySection   `json:"dependencies" yaml:"dependencies"`
	DependencyHealth HealthSection       `json:"dependency_health" yaml:"dependency_health"`
	Code             CodeSection         `json:"code" yaml:"code"`
	Architecture     ArchitectureSection `json:"architecture" yaml:"architecture"`
	Suggestions      []string            `json:"suggestions" yaml:"suggestions"`
	Performance      PerformanceSection  `json:"performance" yaml:"performance"`
	ExportedAt       time.Time           `json:"exported_at" yaml:"exported_at"`
	CLIVersion       string              `json:"cli_version" yaml:"cli_version"`
}

// ProjectSection describes the project from its manifest.
type ProjectSection struct {
	Status      string   `json:"status" yaml:"status"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Version     string   `json:"version" yaml:"version"`
	SDK         string   `json:"sdk" yaml:"sdk"`
	Kind        string   `json:"kind" yaml:"kind"`
	Manifest    string   `json:"manifest" yaml:"manifest"`
	Platforms   []string `json:"platforms" yaml:"platforms"`
}

// StructureSection summarizes the file inventory.
type StructureSection struct {
	Status      string                     `json:"status" yaml:"status"`
	TotalFiles  int                        `json:"total_files" yaml:"total_files"`
	SourceFiles int                        `json:"source_files" yaml:"source_files"`
	TestFiles   int                        `json:"test_files" yaml:"test_files"`
	TotalLines  int                        `json:"total_lines" yaml:"total_lines"`
	TotalSize   int64                      `json:"total_size" yaml:"total_size"`
	Errors      int                        `json:"errors" yaml:"errors"`
	FilesByType map[scanner.FileType]int   `json:"files_by_type" yaml:"files_by_type"`
	KeyFiles    []scanner.FileRecord       `json:"key_files" yaml:"key_files"`
	Directories []scanner.DirectorySummary `json:"directories" yaml:"directories"`
}

// DependencySection is the categorized manifest.
type DependencySection struct {
	Status           string              `json:"status" yaml:"status"`
	Total            int                 `json:"total" yaml:"total"`
	Dependencies     []dependency.Record `json:"dependencies" yaml:"dependencies"`
	DevDependencies  []dependency.Record `json:"dev_dependencies" yaml:"dev_dependencies"`
	Categories       map[string][]string `json:"categories" yaml:"categories"`
	Warnings         []string            `json:"warnings" yaml:"warnings"`
	Conflicts        []string            `json:"conflicts" yaml:"conflicts"`
	HasTestFramework bool                `json:"has_test_framework" yaml:"has_test_framework"`
}

// HealthSection holds one health record per dependency.
type HealthSection struct {
	Status       string          `json:"status" yaml:"status"`
	AverageScore float64         `json:"average_score" yaml:"average_score"`
	Packages     []health.Health `json:"packages" yaml:"packages"`
}

// CodeSection holds the code metrics.
type CodeSection struct {
	Status     string                     `json:"status" yaml:"status"`
	Summary    metrics.Summary            `json:"summary" yaml:"summary"`
	Files      []metrics.ComplexityRecord `json:"files" yaml:"files"`
	Issues     []metrics.QualityIssue     `json:"issues" yaml:"issues"`
	Duplicates []metrics.Duplicate        `json:"duplicates" yaml:"duplicates"`
	DeadCode   []metrics.DeadCode         `json:"dead_code" yaml:"dead_code"`
	Patterns   []string                   `json:"patterns" yaml:"patterns"`
}

// ArchitectureSection holds the ranked pattern candidates.
type ArchitectureSection struct {
	Status   string                 `json:"status" yaml:"status"`
	Primary  string                 `json:"primary" yaml:"primary"`
	Patterns []architecture.Pattern `json:"patterns" yaml:"patterns"`

	// Detected is the union of architecture and code-text pattern names.
	Detected []string `json:"detected_patterns" yaml:"detected_patterns"`
}

// PerformanceSection records how the run went.
type PerformanceSection struct {
	TotalMS   int64                  `json:"total_ms" yaml:"total_ms"`
	Analyzers []engine.AnalyzerStats `json:"analyzers" yaml:"analyzers"`
	Cache     health.CacheStats      `json:"cache" yaml:"cache"`
}

// Command describes one CLI command for the commands section.
type Command struct {
	Path    string   `json:"path" yaml:"path"`
	Short   string   `json:"short" yaml:"short"`
	Usage   string   `json:"usage" yaml:"usage"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Flags   []Flag   `json:"flags" yaml:"flags"`
}

// Flag describes one command flag.
type Flag struct {
	Name      string `json:"name" yaml:"name"`
	Shorthand string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Type      string `json:"type" yaml:"type"`
	Default   string `json:"default" yaml:"default"`
	Usage     string `json:"usage" yaml:"usage"`
}

// New returns a report with every section set to its default.
func New() *Report {
	return &Report{
		Project: ProjectSection{
			Status:    StatusSkipped,
			Platforms: []string{},
		},
		Structure: StructureSection{
			Status:      StatusSkipped,
			FilesByType: map[scanner.FileType]int{},
			KeyFiles:    []scanner.FileRecord{},
			Directories: []scanner.DirectorySummary{},
		},
		Commands: []Command{},
		Dependencies: DependencySection{
			Status:          StatusSkipped,
			Dependencies:    []dependency.Record{},
			DevDependencies: []dependency.Record{},
			Categories:      map[string][]string{},
			Warnings:        []string{},
			Conflicts:       []string{},
		},
		DependencyHealth: HealthSection{
			Status:   StatusSkipped,
			Packages: []health.Health{},
		},
		Code: CodeSection{
			Status:     StatusSkipped,
			Files:      []metrics.ComplexityRecord{},
			Issues:     []metrics.QualityIssue{},
			Duplicates: []metrics.Duplicate{},
			DeadCode:   []metrics.DeadCode{},
			Patterns:   []string{},
		},
		Architecture: ArchitectureSection{
			Status:   StatusSkipped,
			Primary:  UnknownPattern,
			Patterns: []architecture.Pattern{},
			Detected: []string{},
		},
		Suggestions: []string{},
		Performance: PerformanceSection{
			Analyzers: []engine.AnalyzerStats{},
		},
	}
}
