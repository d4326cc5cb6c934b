package report

import (
	"math"
	"path/filepath"
	"time"

	"github.com/simonhull/firebird-suite/kite/pkg/architecture"
	"github.com/simonhull/firebird-suite/kite/pkg/engine"
	"github.com/simonhull/firebird-suite/kite/pkg/health"
	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

// DefaultMaxKeyFiles bounds the key_files list of the structure section.
const DefaultMaxKeyFiles = 50

// Options configures an Aggregator.
type Options struct {
	// PriorityPatterns win over raw confidence when choosing the primary
	// architecture pattern, in list order.
	PriorityPatterns   []string
	IncludeSuggestions bool
	Version            string
	MaxKeyFiles        int
	Now                func() time.Time
}

// Aggregator builds reports from orchestrator runs.
type Aggregator struct {
	opts   Options
	logger logger.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(opts Options) *Aggregator {
	if opts.MaxKeyFiles <= 0 {
		opts.MaxKeyFiles = DefaultMaxKeyFiles
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Aggregator{opts: opts, logger: logger.NewSilentLogger()}
}

// WithLogger returns a new Aggregator with the specified logger
func (a *Aggregator) WithLogger(log logger.Logger) *Aggregator {
	return &Aggregator{opts: a.opts, logger: logger.OrSilent(log)}
}

// Build merges the results of run into a new report. commands comes from
// the embedding CLI and is copied verbatim.
func (a *Aggregator) Build(run *engine.Run, commands []Command) *Report {
	r := New()
	r.CLIVersion = a.opts.Version
	r.ExportedAt = a.opts.Now().UTC()
	if commands != nil {
		r.Commands = commands
	}

	if run != nil {
		for _, res := range run.Results {
			a.Apply(r, res)
		}
		for _, s := range run.Stats {
			if s.Status == engine.StatusUnavailable {
				markUnavailable(r, s.Section)
			}
		}
		r.Performance = PerformanceSection{
			TotalMS:   run.Duration.Milliseconds(),
			Analyzers: run.Stats,
		}
		if res, ok := run.Result(engine.SectionDependencyHealth); ok {
			if h, ok := res.(*engine.HealthResult); ok && h != nil {
				r.Performance.Cache = h.Cache
			}
		}
		if r.Performance.Analyzers == nil {
			r.Performance.Analyzers = []engine.AnalyzerStats{}
		}
	}

	a.finalize(r)
	if a.opts.IncludeSuggestions {
		r.Suggestions = Suggest(r)
	}

	a.logger.Debug("Report assembled",
		logger.F("primary_pattern", r.Architecture.Primary),
		logger.F("suggestions", len(r.Suggestions)))

	return r
}

// Apply merges one analyzer result into r. Absent results (nil, or a
// result without a payload) leave r untouched, so a failed analyzer can
// never clear a section that another result already populated.
func (a *Aggregator) Apply(r *Report, res engine.Result) {
	switch v := res.(type) {
	case *engine.ProjectResult:
		if v == nil || v.Manifest == nil {
			return
		}
		m := v.Manifest
		r.Project = ProjectSection{
			Status:      StatusOK,
			Name:        m.Name,
			Description: m.Description,
			Version:     m.Version,
			SDK:         m.SDK,
			Kind:        string(m.Kind),
			Manifest:    filepath.Base(m.File),
			Platforms:   nonNil(m.Platforms),
		}

	case *engine.StructureResult:
		if v == nil || v.Inventory == nil {
			return
		}
		r.Structure = a.structure(v.Inventory)

	case *engine.DependencyResult:
		if v == nil || v.Dependencies == nil {
			return
		}
		d := v.Dependencies
		r.Dependencies = DependencySection{
			Status:           StatusOK,
			Total:            d.Total,
			Dependencies:     nonNil(d.Dependencies),
			DevDependencies:  nonNil(d.DevDependencies),
			Categories:       d.Categories,
			Warnings:         nonNil(d.Warnings),
			Conflicts:        nonNil(d.Conflicts),
			HasTestFramework: d.HasTestFramework,
		}
		if r.Dependencies.Categories == nil {
			r.Dependencies.Categories = map[string][]string{}
		}

	case *engine.HealthResult:
		if v == nil || v.Health == nil {
			return
		}
		r.DependencyHealth = HealthSection{
			Status:       StatusOK,
			AverageScore: averageScore(v.Health),
			Packages:     v.Health,
		}

	case *engine.CodeResult:
		if v == nil || v.Metrics == nil {
			return
		}
		m := v.Metrics
		r.Code = CodeSection{
			Status:     StatusOK,
			Summary:    m.Summary,
			Files:      nonNil(m.Files),
			Issues:     nonNil(m.Issues),
			Duplicates: nonNil(m.Duplicates),
			DeadCode:   nonNil(m.DeadCode),
			Patterns:   nonNil(m.Patterns),
		}

	case *engine.ArchitectureResult:
		if v == nil || v.Patterns == nil {
			return
		}
		r.Architecture.Status = StatusOK
		r.Architecture.Patterns = v.Patterns
	}
}

func (a *Aggregator) structure(inv *scanner.Inventory) StructureSection {
	s := StructureSection{
		Status:      StatusOK,
		TotalFiles:  len(inv.Files),
		SourceFiles: len(inv.SourceFiles()),
		TestFiles:   inv.TestFiles(),
		TotalLines:  inv.TotalLines,
		TotalSize:   inv.TotalSize,
		Errors:      inv.Errors,
		FilesByType: inv.CountByType(),
		KeyFiles:    []scanner.FileRecord{},
		Directories: nonNil(inv.Directories),
	}
	for _, f := range inv.Files {
		if f.Importance != scanner.ImportanceHigh || f.Generated {
			continue
		}
		if len(s.KeyFiles) == a.opts.MaxKeyFiles {
			break
		}
		s.KeyFiles = append(s.KeyFiles, f)
	}
	return s
}

// finalize derives the fields that combine several sections.
func (a *Aggregator) finalize(r *Report) {
	r.Architecture.Detected = MergePatterns(architecture.Names(r.Architecture.Patterns), r.Code.Patterns)
	if p, ok := SelectPrimary(r.Architecture.Patterns, a.opts.PriorityPatterns); ok {
		r.Architecture.Primary = p.Name
	} else {
		r.Architecture.Primary = UnknownPattern
	}
}

func markUnavailable(r *Report, section engine.Section) {
	var status *string
	switch section {
	case engine.SectionProject:
		status = &r.Project.Status
	case engine.SectionStructure:
		status = &r.Structure.Status
	case engine.SectionDependencies:
		status = &r.Dependencies.Status
	case engine.SectionDependencyHealth:
		status = &r.DependencyHealth.Status
	case engine.SectionCode:
		status = &r.Code.Status
	case engine.SectionArchitecture:
		status = &r.Architecture.Status
	default:
		return
	}
	if *status != StatusOK {
		*status = StatusUnavailable
	}
}

// MergePatterns unions pattern name lists, keeping first-seen order and
// dropping duplicates.
func MergePatterns(sources ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, src := range sources {
		for _, name := range src {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// SelectPrimary chooses the primary pattern. The first priority name
// present among the candidates wins; otherwise the candidate with strictly
// the highest confidence wins. Ties keep the first-seen candidate.
func SelectPrimary(candidates []architecture.Pattern, priority []string) (architecture.Pattern, bool) {
	if len(candidates) == 0 {
		return architecture.Pattern{}, false
	}

	for _, name := range priority {
		best := -1
		for i, c := range candidates {
			if c.Name == name && (best < 0 || c.Confidence > candidates[best].Confidence) {
				best = i
			}
		}
		if best >= 0 {
			return candidates[best], true
		}
	}

	best := 0
	for i, c := range candidates[1:] {
		if c.Confidence > candidates[best].Confidence {
			best = i + 1
		}
	}
	return candidates[best], true
}

func averageScore(records []health.Health) float64 {
	if len(records) == 0 {
		return 0
	}
	total := 0
	for _, h := range records {
		total += h.Score
	}
	return math.Round(float64(total)/float64(len(records))*100) / 100
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
