// Package engine runs the registered analyzers of a report concurrently.
// Each analyzer is wrapped in a bounded retry; one that still fails leaves
// its section unavailable instead of failing the run.
package engine

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/retry"
)

// Analyzer statuses.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// AnalyzerStats records how one analyzer run went.
type AnalyzerStats struct {
	Name       string  `json:"name" yaml:"name"`
	Section    Section `json:"section" yaml:"section"`
	Status     string  `json:"status" yaml:"status"`
	Attempts   int     `json:"attempts" yaml:"attempts"`
	DurationMS int64   `json:"duration_ms" yaml:"duration_ms"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run is the settled state of every selected analyzer.
type Run struct {
	Results  map[Section]Result
	Stats    []AnalyzerStats
	Started  time.Time
	Duration time.Duration
}

// Result returns the result for section, if its analyzer succeeded.
func (r *Run) Result(section Section) (Result, bool) {
	res, ok := r.Results[section]
	return res, ok
}

// Orchestrator runs analyzers from a registry.
type Orchestrator struct {
	registry *Registry
	retry    retry.Config
	logger   logger.Logger
}

// NewOrchestrator creates an Orchestrator retrying each analyzer per cfg.
func NewOrchestrator(registry *Registry, cfg retry.Config) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg = retry.DefaultConfig()
	}
	return &Orchestrator{registry: registry, retry: cfg, logger: logger.NewSilentLogger()}
}

// WithLogger returns a new Orchestrator with the specified logger
func (o *Orchestrator) WithLogger(log logger.Logger) *Orchestrator {
	return &Orchestrator{registry: o.registry, retry: o.retry, logger: logger.OrSilent(log)}
}

// Run launches every analyzer whose section is requested and waits for all
// of them to settle. It never fails: an analyzer that exhausts its retries
// is reported unavailable and its section is left out of Results.
func (o *Orchestrator) Run(ctx context.Context, in *Input, sections Sections) *Run {
	analyzers := o.registry.Select(sections)
	run := &Run{
		Results: make(map[Section]Result, len(analyzers)),
		Stats:   make([]AnalyzerStats, len(analyzers)),
		Started: time.Now(),
	}
	results := make([]Result, len(analyzers))

	var wg conc.WaitGroup
	for i, a := range analyzers {
		wg.Go(func() {
			results[i], run.Stats[i] = o.runOne(ctx, in, a)
		})
	}
	wg.Wait()

	for _, res := range results {
		if res != nil {
			run.Results[res.Section()] = res
		}
	}
	run.Duration = time.Since(run.Started)

	o.logger.Info("Analysis complete",
		logger.F("analyzers", len(analyzers)),
		logger.F("available", len(run.Results)),
		logger.F("duration", run.Duration.Round(time.Millisecond)))

	return run
}

func (o *Orchestrator) runOne(ctx context.Context, in *Input, a Analyzer) (Result, AnalyzerStats) {
	log := o.logger.WithFields(logger.Component(a.Name()))

	cfg := o.retry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn("Analyzer failed, retrying",
			logger.F("attempt", attempt),
			logger.F("delay", delay),
			logger.F("error", err))
	}

	start := time.Now()
	out := retry.Do(ctx, cfg, func(ctx context.Context) (Result, error) {
		res, err := a.Analyze(ctx, in)
		if err == nil && res == nil {
			err = errNoResult
		}
		return res, err
	})

	stats := AnalyzerStats{
		Name:       a.Name(),
		Section:    a.Section(),
		Status:     StatusOK,
		Attempts:   out.Attempts,
		DurationMS: durationMS(time.Since(start)),
	}

	if !out.OK {
		stats.Status = StatusUnavailable
		if out.Err != nil {
			stats.Error = out.Err.Error()
		}
		log.Error("Analyzer unavailable",
			logger.F("attempts", out.Attempts),
			logger.F("error", out.Err))
		return nil, stats
	}

	// A result filed under another section would overwrite a sibling.
	if out.Value.Section() != a.Section() {
		stats.Status = StatusUnavailable
		stats.Error = errWrongSection.Error()
		log.Error("Analyzer returned a result for the wrong section",
			logger.F("section", out.Value.Section()))
		return nil, stats
	}

	log.Debug("Analyzer finished",
		logger.F("attempts", out.Attempts),
		logger.F("duration_ms", stats.DurationMS))
	return out.Value, stats
}
