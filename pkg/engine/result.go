package engine

import (
	"github.com/simonhull/firebird-suite/kite/pkg/architecture"
	"github.com/simonhull/firebird-suite/kite/pkg/dependency"
	"github.com/simonhull/firebird-suite/kite/pkg/health"
	"github.com/simonhull/firebird-suite/kite/pkg/manifest"
	"github.com/simonhull/firebird-suite/kite/pkg/metrics"
	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

// Result is the typed output of one analyzer. The concrete types below are
// the only implementations.
type Result interface {
	Section() Section
	isResult()
}

// ProjectResult carries the parsed manifest.
type ProjectResult struct {
	Manifest *manifest.Manifest
}

// StructureResult carries the file inventory.
type StructureResult struct {
	Inventory *scanner.Inventory
}

// DependencyResult carries the categorized dependencies.
type DependencyResult struct {
	Dependencies *dependency.Result
}

// HealthResult carries one health record per dependency.
type HealthResult struct {
	Health []health.Health
	Cache  health.CacheStats
}

// CodeResult carries the code metrics.
type CodeResult struct {
	Metrics *metrics.Result
}

// ArchitectureResult carries every detected pattern candidate.
type ArchitectureResult struct {
	Patterns []architecture.Pattern
}

func (*ProjectResult) Section() Section      { return SectionProject }
func (*StructureResult) Section() Section    { return SectionStructure }
func (*DependencyResult) Section() Section   { return SectionDependencies }
func (*HealthResult) Section() Section       { return SectionDependencyHealth }
func (*CodeResult) Section() Section         { return SectionCode }
func (*ArchitectureResult) Section() Section { return SectionArchitecture }

func (*ProjectResult) isResult()      {}
func (*StructureResult) isResult()    {}
func (*DependencyResult) isResult()   {}
func (*HealthResult) isResult()       {}
func (*CodeResult) isResult()         {}
func (*ArchitectureResult) isResult() {}
