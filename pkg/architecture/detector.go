package architecture

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/iter"

	"github.com/simonhull/firebird-suite/kite/pkg/dependency"
	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/rules"
	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

// Input carries the facts the detector reads.
type Input struct {
	Root         string
	Inventory    *scanner.Inventory
	Dependencies []dependency.Record
}

// Options bounds the code-text pass.
type Options struct {
	MaxFileSize int64
	Concurrency int
}

// Detector runs the four signal passes.
type Detector struct {
	rules  *rules.Rules
	opts   Options
	logger logger.Logger
}

// NewDetector creates a Detector using r for dependency and config markers.
func NewDetector(r *rules.Rules, opts Options) *Detector {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 1 << 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	return &Detector{rules: r, opts: opts, logger: logger.NewSilentLogger()}
}

// WithLogger returns a new Detector with the specified logger
func (d *Detector) WithLogger(log logger.Logger) *Detector {
	return &Detector{rules: d.rules, opts: d.opts, logger: logger.OrSilent(log)}
}

// Detect runs every pass and returns all matched patterns. Passes run
// concurrently; the result is ordered structure, dependency, code, config.
func (d *Detector) Detect(ctx context.Context, in Input) ([]Pattern, error) {
	var results [4][]Pattern

	var wg conc.WaitGroup
	wg.Go(func() { results[0] = detectStructure(in.Inventory) })
	wg.Go(func() { results[1] = detectDependencies(d.rules.DependencyMarkers, in.Dependencies) })
	wg.Go(func() { results[2] = d.detectCode(ctx, in) })
	wg.Go(func() { results[3] = detectConfig(d.rules.ConfigMarkers, in.Inventory) })
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []Pattern{}
	for _, r := range results {
		out = append(out, r...)
	}

	d.logger.Debug("Architecture patterns detected",
		logger.F("patterns", len(out)),
		logger.F("names", Names(out)))

	return out, nil
}

func (d *Detector) detectCode(ctx context.Context, in Input) []Pattern {
	if in.Inventory == nil {
		return nil
	}

	var files []scanner.FileRecord
	for _, f := range in.Inventory.SourceFiles() {
		if f.Test || f.Size > d.opts.MaxFileSize {
			continue
		}
		files = append(files, f)
	}

	mapper := iter.Mapper[scanner.FileRecord, *codeHits]{MaxGoroutines: d.opts.Concurrency}
	hits := mapper.Map(files, func(f *scanner.FileRecord) *codeHits {
		if ctx.Err() != nil {
			return nil
		}
		src, err := os.ReadFile(filepath.Join(in.Root, filepath.FromSlash(f.Path)))
		if err != nil {
			d.logger.Debug("Skipping unreadable file", logger.F("path", f.Path), logger.F("error", err))
			return nil
		}
		h := matchCode(f.Path, src)
		return &h
	})

	matched := make([]codeHits, 0, len(hits))
	for _, h := range hits {
		if h != nil {
			matched = append(matched, *h)
		}
	}
	return codePatterns(matched)
}
