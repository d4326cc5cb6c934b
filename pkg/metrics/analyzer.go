// Package metrics computes per-file complexity and maintainability, flags
// high-complexity units and runs best-effort duplicate, dead-code and
// framework-marker detection.
package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sourcegraph/conc/iter"

	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
	"github.com/simonhull/firebird-suite/kite/pkg/syntax"
)

// DefaultComplexityThreshold is the unit cyclomatic complexity above which
// a high-complexity issue is reported.
const DefaultComplexityThreshold = 10

// Options bounds the analysis.
type Options struct {
	ComplexityThreshold int
	MaxFiles            int
	MaxFileSize         int64
	Concurrency         int
}

// Analyzer computes code metrics for the source files of an inventory.
type Analyzer struct {
	opts   Options
	logger logger.Logger
}

// NewAnalyzer creates an Analyzer, filling unset options with defaults.
func NewAnalyzer(opts Options) *Analyzer {
	if opts.ComplexityThreshold <= 0 {
		opts.ComplexityThreshold = DefaultComplexityThreshold
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	return &Analyzer{opts: opts, logger: logger.NewSilentLogger()}
}

// WithLogger returns a new Analyzer with the specified logger
func (a *Analyzer) WithLogger(log logger.Logger) *Analyzer {
	return &Analyzer{opts: a.opts, logger: logger.OrSilent(log)}
}

type fileOutcome struct {
	skipped bool
	record  ComplexityRecord
	issues  []QualityIssue
	parsed  *syntax.File
	text    sourceText
}

// Analyze measures the hand-written source files among files. Files that
// cannot be read or exceed the size ceiling are skipped; files that cannot
// be parsed get default metrics. Only context cancellation is an error.
func (a *Analyzer) Analyze(ctx context.Context, root string, files []scanner.FileRecord) (*Result, error) {
	var sources []scanner.FileRecord
	skipped := 0
	for _, f := range files {
		if !f.IsSource() {
			continue
		}
		if a.opts.MaxFiles > 0 && len(sources) >= a.opts.MaxFiles {
			skipped++
			continue
		}
		sources = append(sources, f)
	}

	mapper := iter.Mapper[scanner.FileRecord, fileOutcome]{MaxGoroutines: a.opts.Concurrency}
	outcomes := mapper.Map(sources, func(f *scanner.FileRecord) fileOutcome {
		return a.measureFile(ctx, root, *f)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Files:      []ComplexityRecord{},
		Issues:     []QualityIssue{},
		Duplicates: []Duplicate{},
		DeadCode:   []DeadCode{},
	}
	parsed := make(map[string]*syntax.File)
	var texts []sourceText
	var contents []string

	for _, o := range outcomes {
		if o.skipped {
			skipped++
			continue
		}
		result.Files = append(result.Files, o.record)
		result.Issues = append(result.Issues, o.issues...)
		if o.parsed != nil {
			parsed[o.record.Path] = o.parsed
		}
		texts = append(texts, o.text)
		contents = append(contents, o.text.content)
	}

	if dups := findDuplicates(texts); dups != nil {
		result.Duplicates = dups
	}
	if dead := findDeadCode(texts, parsed); dead != nil {
		result.DeadCode = dead
	}
	result.Patterns = DetectPatterns(contents...)
	result.Summary = summarize(result.Files, skipped)

	a.logger.Debug("Code metrics complete",
		logger.F("files", result.Summary.FilesAnalyzed),
		logger.F("skipped", skipped),
		logger.F("issues", len(result.Issues)),
		logger.F("high_complexity", len(HighComplexityIssues(result.Issues))))

	return result, nil
}

func (a *Analyzer) measureFile(ctx context.Context, root string, f scanner.FileRecord) fileOutcome {
	if ctx.Err() != nil {
		return fileOutcome{skipped: true}
	}
	if a.opts.MaxFileSize > 0 && f.Size > a.opts.MaxFileSize {
		a.logger.Debug("Skipping oversized file", logger.F("path", f.Path), logger.F("size", f.Size))
		return fileOutcome{skipped: true}
	}

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
	if err != nil {
		a.logger.Warn("Skipping unreadable file", logger.F("path", f.Path), logger.F("error", err))
		return fileOutcome{skipped: true}
	}

	text := sourceText{path: f.Path, language: f.Language, content: string(content)}

	parsed, err := syntax.Parse(f.Path, content)
	if err != nil {
		if errors.Is(err, syntax.ErrUnsupported) {
			return fileOutcome{skipped: true}
		}
		a.logger.Debug("Parse failed", logger.F("path", f.Path), logger.F("error", err))
		rec, issue := Unparsable(f.Path, f.Language, f.Lines, err)
		return fileOutcome{record: rec, issues: []QualityIssue{issue}, text: text}
	}

	rec, issues := Measure(parsed, a.opts.ComplexityThreshold)
	return fileOutcome{record: rec, issues: issues, parsed: parsed, text: text}
}

func summarize(files []ComplexityRecord, skipped int) Summary {
	s := Summary{FilesAnalyzed: len(files), FilesSkipped: skipped}
	if len(files) == 0 {
		return s
	}

	var cyc, cog int
	var mi float64
	for _, f := range files {
		if f.ParseError != "" {
			s.ParseFailures++
		}
		s.Units += len(f.Units)
		s.TotalLines += f.Lines
		cyc += f.Cyclomatic
		cog += f.Cognitive
		mi += f.MaintainabilityIndex
		if f.Cyclomatic > s.MaxCyclomatic {
			s.MaxCyclomatic = f.Cyclomatic
		}
	}

	n := float64(len(files))
	s.AverageCyclomatic = round2(float64(cyc) / n)
	s.AverageCognitive = round2(float64(cog) / n)
	s.AverageMaintainability = round2(mi / n)
	return s
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
