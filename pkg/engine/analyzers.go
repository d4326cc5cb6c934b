package engine

import (
	"context"
	"errors"
	"time"

	"github.com/simonhull/firebird-suite/kite/pkg/architecture"
	"github.com/simonhull/firebird-suite/kite/pkg/config"
	"github.com/simonhull/firebird-suite/kite/pkg/health"
	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/metrics"
	"github.com/simonhull/firebird-suite/kite/pkg/retry"
	"github.com/simonhull/firebird-suite/kite/pkg/rules"
)

var (
	errNoManifest   = errors.New("no manifest loaded")
	errNoResult     = errors.New("analyzer returned no result")
	errWrongSection = errors.New("analyzer returned a result for another section")
)

// Components are the collaborators of the default analyzers.
type Components struct {
	Config *config.Config
	Rules  *rules.Rules

	// HealthRegistry defaults to the HTTP registry at Config.Registry.URL.
	HealthRegistry health.Registry
	// HealthCache is shared across runs of the same process; nil creates
	// one sized from Config.Registry.
	HealthCache *health.Cache[health.Health]

	Logger logger.Logger
}

// DefaultRegistry registers the six built-in analyzers.
func DefaultRegistry(c Components) *Registry {
	cfg := c.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := logger.OrSilent(c.Logger)

	reg := c.HealthRegistry
	if reg == nil {
		reg = health.NewHTTPRegistry(cfg.Registry.URL, cfg.Registry.Timeout)
	}
	cache := c.HealthCache
	if cache == nil {
		cache = health.NewCache[health.Health](cfg.Registry.CacheSize, cfg.Registry.CacheTTL)
	}

	enricher := health.NewEnricher(reg, cache, health.Options{
		Timeout:     cfg.Registry.Timeout,
		Retry:       RetryFrom(cfg),
		Concurrency: cfg.Registry.Concurrency,
	}).WithLogger(log.WithFields(logger.Component("health")))

	codeMetrics := metrics.NewAnalyzer(metrics.Options{
		ComplexityThreshold: cfg.Metrics.ComplexityThreshold,
		MaxFiles:            cfg.Report.MaxFiles,
		MaxFileSize:         cfg.Report.MaxFileSize,
	}).WithLogger(log.WithFields(logger.Component("metrics")))

	detector := architecture.NewDetector(c.Rules, architecture.Options{
		MaxFileSize: cfg.Report.MaxFileSize,
	}).WithLogger(log.WithFields(logger.Component("architecture")))

	return NewRegistry().MustRegister(
		ProjectAnalyzer{},
		StructureAnalyzer{},
		DependencyAnalyzer{},
		&HealthAnalyzer{enricher: enricher},
		&CodeAnalyzer{metrics: codeMetrics},
		&ArchitectureAnalyzer{detector: detector},
	)
}

// RetryFrom converts the configured retry bounds.
func RetryFrom(cfg *config.Config) retry.Config {
	return retry.Config{MaxAttempts: cfg.Retry.MaxAttempts, BaseDelay: cfg.Retry.BaseDelay}
}

// ProjectAnalyzer reports the manifest metadata.
type ProjectAnalyzer struct{}

func (ProjectAnalyzer) Name() string     { return "project" }
func (ProjectAnalyzer) Section() Section { return SectionProject }

func (ProjectAnalyzer) Analyze(_ context.Context, in *Input) (Result, error) {
	if in.Manifest == nil {
		return nil, errNoManifest
	}
	return &ProjectResult{Manifest: in.Manifest}, nil
}

// StructureAnalyzer scans the project tree.
type StructureAnalyzer struct{}

func (StructureAnalyzer) Name() string     { return "structure" }
func (StructureAnalyzer) Section() Section { return SectionStructure }

func (StructureAnalyzer) Analyze(ctx context.Context, in *Input) (Result, error) {
	inv, err := in.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	return &StructureResult{Inventory: inv}, nil
}

// DependencyAnalyzer categorizes the manifest dependencies.
type DependencyAnalyzer struct{}

func (DependencyAnalyzer) Name() string     { return "dependencies" }
func (DependencyAnalyzer) Section() Section { return SectionDependencies }

func (DependencyAnalyzer) Analyze(_ context.Context, in *Input) (Result, error) {
	if in.Manifest == nil {
		return nil, errNoManifest
	}
	return &DependencyResult{Dependencies: in.Dependencies()}, nil
}

// HealthAnalyzer scores every dependency against the package registry.
type HealthAnalyzer struct {
	enricher *health.Enricher
}

func (*HealthAnalyzer) Name() string     { return "dependency-health" }
func (*HealthAnalyzer) Section() Section { return SectionDependencyHealth }

func (a *HealthAnalyzer) Analyze(ctx context.Context, in *Input) (Result, error) {
	if in.Manifest == nil {
		return nil, errNoManifest
	}
	records := a.enricher.Enrich(ctx, in.Dependencies().All())
	return &HealthResult{Health: records, Cache: a.enricher.CacheStats()}, nil
}

// CodeAnalyzer computes code metrics over the inventory's source files.
type CodeAnalyzer struct {
	metrics *metrics.Analyzer
}

func (*CodeAnalyzer) Name() string     { return "code-metrics" }
func (*CodeAnalyzer) Section() Section { return SectionCode }

func (a *CodeAnalyzer) Analyze(ctx context.Context, in *Input) (Result, error) {
	inv, err := in.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	res, err := a.metrics.Analyze(ctx, in.Root, inv.Files)
	if err != nil {
		return nil, err
	}
	return &CodeResult{Metrics: res}, nil
}

// ArchitectureAnalyzer runs the architecture pattern passes.
type ArchitectureAnalyzer struct {
	detector *architecture.Detector
}

func (*ArchitectureAnalyzer) Name() string     { return "architecture" }
func (*ArchitectureAnalyzer) Section() Section { return SectionArchitecture }

func (a *ArchitectureAnalyzer) Analyze(ctx context.Context, in *Input) (Result, error) {
	inv, err := in.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	archIn := architecture.Input{Root: in.Root, Inventory: inv}
	if in.Manifest != nil {
		archIn.Dependencies = in.Dependencies().All()
	}
	patterns, err := a.detector.Detect(ctx, archIn)
	if err != nil {
		return nil, err
	}
	return &ArchitectureResult{Patterns: patterns}, nil
}

// durationMS reports d in whole milliseconds.
func durationMS(d time.Duration) int64 {
	return d.Milliseconds()
}
