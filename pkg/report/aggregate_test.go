package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/kite/pkg/architecture"
	"github.com/simonhull/firebird-suite/kite/pkg/dependency"
	"github.com/simonhull/firebird-suite/kite/pkg/engine"
	"github.com/simonhull/firebird-suite/kite/pkg/health"
	"github.com/simonhull/firebird-suite/kite/pkg/manifest"
	"github.com/simonhull/firebird-suite/kite/pkg/metrics"
	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newAggregator() *Aggregator {
	return NewAggregator(Options{
		PriorityPatterns:   []string{"riverpod", "bloc", "provider"},
		IncludeSuggestions: true,
		Version:            "1.2.3",
		Now:                func() time.Time { return fixedNow },
	})
}

func demoManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Kind:      manifest.KindPubspec,
		File:      "/tmp/demo/pubspec.yaml",
		Name:      "demo",
		Version:   "1.0.0",
		Platforms: []string{"android", "ios"},
	}
}

func TestBuild_NilRunIsStructurallyComplete(t *testing.T) {
	r := newAggregator().Build(nil, nil)

	assert.Equal(t, "1.2.3", r.CLIVersion)
	assert.Equal(t, fixedNow, r.ExportedAt)
	assert.Equal(t, StatusSkipped, r.Project.Status)
	assert.Equal(t, StatusSkipped, r.Code.Status)
	assert.Equal(t, UnknownPattern, r.Architecture.Primary)
	assert.NotNil(t, r.Commands)
	assert.NotNil(t, r.DependencyHealth.Packages)
	assert.NotNil(t, r.Architecture.Detected)
	assert.NotNil(t, r.Performance.Analyzers)
	assert.Empty(t, r.Suggestions)
}

func TestApply_AbsentResultNeverOverwrites(t *testing.T) {
	a := newAggregator()
	r := New()

	a.Apply(r, &engine.ProjectResult{Manifest: demoManifest()})
	a.Apply(r, nil)
	a.Apply(r, &engine.ProjectResult{})
	a.Apply(r, (*engine.ProjectResult)(nil))

	assert.Equal(t, StatusOK, r.Project.Status)
	assert.Equal(t, "demo", r.Project.Name)
	assert.Equal(t, "pubspec.yaml", r.Project.Manifest)

	a.Apply(r, &engine.CodeResult{Metrics: &metrics.Result{Patterns: []string{"bloc"}}})
	a.Apply(r, &engine.CodeResult{})
	assert.Equal(t, []string{"bloc"}, r.Code.Patterns)
	assert.NotNil(t, r.Code.Issues)
}

func TestBuild_UnavailableSections(t *testing.T) {
	run := &engine.Run{
		Results: map[engine.Section]engine.Result{
			engine.SectionProject: &engine.ProjectResult{Manifest: demoManifest()},
		},
		Stats: []engine.AnalyzerStats{
			{Name: "project", Section: engine.SectionProject, Status: engine.StatusOK, Attempts: 1},
			{Name: "code-metrics", Section: engine.SectionCode, Status: engine.StatusUnavailable, Attempts: 3, Error: "boom"},
		},
		Duration: 1500 * time.Millisecond,
	}

	r := newAggregator().Build(run, []Command{{Path: "kite version"}})

	assert.Equal(t, StatusOK, r.Project.Status)
	assert.Equal(t, StatusUnavailable, r.Code.Status)
	assert.NotNil(t, r.Code.Files)
	assert.Equal(t, StatusSkipped, r.Structure.Status)
	assert.Equal(t, int64(1500), r.Performance.TotalMS)
	assert.Len(t, r.Performance.Analyzers, 2)
	assert.Len(t, r.Commands, 1)
}

func TestMarkUnavailable_KeepsPopulatedSection(t *testing.T) {
	r := New()
	newAggregator().Apply(r, &engine.ProjectResult{Manifest: demoManifest()})

	markUnavailable(r, engine.SectionProject)
	assert.Equal(t, StatusOK, r.Project.Status)
}

func TestMergePatterns(t *testing.T) {
	assert.Equal(t, []string{"riverpod", "mvvm"}, MergePatterns([]string{"riverpod"}, []string{"riverpod", "mvvm"}))
	assert.Equal(t, []string{}, MergePatterns(nil, nil))
	assert.Equal(t, []string{"a", "b"}, MergePatterns([]string{"a", "", "a"}, []string{"b"}))
}

func TestBuild_MergesArchitectureAndCodePatterns(t *testing.T) {
	patterns := []architecture.Pattern{
		architecture.NewPattern("riverpod", 0.9, architecture.SignalDependency),
	}
	run := &engine.Run{
		Results: map[engine.Section]engine.Result{
			engine.SectionArchitecture: &engine.ArchitectureResult{Patterns: patterns},
			engine.SectionCode:         &engine.CodeResult{Metrics: &metrics.Result{Patterns: []string{"riverpod", "mvvm"}}},
		},
	}

	r := newAggregator().Build(run, nil)

	assert.Equal(t, []string{"riverpod", "mvvm"}, r.Architecture.Detected)
	assert.Equal(t, "riverpod", r.Architecture.Primary)
}

func TestSelectPrimary(t *testing.T) {
	candidates := []architecture.Pattern{
		architecture.NewPattern("clean-architecture", 0.9, architecture.SignalStructure),
		architecture.NewPattern("provider", 0.8, architecture.SignalDependency),
		architecture.NewPattern("feature-first", 0.85, architecture.SignalStructure),
		architecture.NewPattern("bloc", 0.9, architecture.SignalDependency),
	}

	p, ok := SelectPrimary(candidates, []string{"riverpod", "bloc", "provider"})
	require.True(t, ok)
	assert.Equal(t, "bloc", p.Name, "first priority name present wins")

	p, _ = SelectPrimary(candidates, nil)
	assert.Equal(t, "clean-architecture", p.Name, "ties keep the first-seen candidate")

	p, _ = SelectPrimary(candidates, []string{"getx"})
	assert.Equal(t, "clean-architecture", p.Name)

	dupes := []architecture.Pattern{
		architecture.NewPattern("mvvm", 0.6, architecture.SignalCode),
		architecture.NewPattern("mvvm", 0.8, architecture.SignalCode),
	}
	p, _ = SelectPrimary(dupes, []string{"mvvm"})
	assert.Equal(t, 0.8, p.Confidence)

	_, ok = SelectPrimary(nil, []string{"bloc"})
	assert.False(t, ok)
}

func TestBuild_FullRun(t *testing.T) {
	inv := &scanner.Inventory{
		Files: []scanner.FileRecord{
			{Path: "lib/main.dart", Type: scanner.TypeEntryPoint, Importance: scanner.ImportanceHigh, Language: "dart", Lines: 10},
			{Path: "lib/util.dart", Type: scanner.TypeUtil, Importance: scanner.ImportanceLow, Language: "dart", Lines: 5},
			{Path: "test/main_test.dart", Type: scanner.TypeTest, Importance: scanner.ImportanceMedium, Language: "dart", Test: true},
		},
		TotalLines: 15,
	}
	deps := &dependency.Result{
		Dependencies: []dependency.Record{{Name: "dio", Category: "networking"}},
		Total:        1,
		Conflicts:    []string{},
	}
	healthRes := &engine.HealthResult{
		Health: []health.Health{{Package: "dio", Score: 80}, {Package: "http", Score: 45}},
		Cache:  health.CacheStats{Hits: 1, Misses: 1, Size: 1, HitRate: 0.5},
	}
	run := &engine.Run{
		Results: map[engine.Section]engine.Result{
			engine.SectionProject:          &engine.ProjectResult{Manifest: demoManifest()},
			engine.SectionStructure:        &engine.StructureResult{Inventory: inv},
			engine.SectionDependencies:     &engine.DependencyResult{Dependencies: deps},
			engine.SectionDependencyHealth: healthRes,
		},
	}

	r := newAggregator().Build(run, nil)

	assert.Equal(t, 3, r.Structure.TotalFiles)
	assert.Equal(t, 3, r.Structure.SourceFiles)
	assert.Equal(t, 1, r.Structure.TestFiles)
	require.Len(t, r.Structure.KeyFiles, 1)
	assert.Equal(t, "lib/main.dart", r.Structure.KeyFiles[0].Path)
	assert.Equal(t, 1, r.Structure.FilesByType[scanner.TypeUtil])

	assert.Equal(t, StatusOK, r.Dependencies.Status)
	assert.NotNil(t, r.Dependencies.Warnings)
	assert.NotNil(t, r.Dependencies.Categories)

	assert.Equal(t, 62.5, r.DependencyHealth.AverageScore)
	assert.Equal(t, 0.5, r.Performance.Cache.HitRate)

	assert.Contains(t, r.Suggestions, "Add a test framework such as flutter_test or mocktail to dev_dependencies")
}
