package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/simonhull/firebird-suite/kite/pkg/config"
	"github.com/simonhull/firebird-suite/kite/pkg/dependency"
	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/manifest"
	"github.com/simonhull/firebird-suite/kite/pkg/rules"
	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

// Input is the shared, read-mostly state of one run. Analyzers that need
// the inventory or the categorized dependencies ask for them here; the
// first caller computes them and concurrent callers wait for that result,
// so no analyzer depends on another having run.
type Input struct {
	Root     string
	Manifest *manifest.Manifest
	Config   *config.Config
	Rules    *rules.Rules

	scanner *scanner.Scanner

	invMu     sync.Mutex
	inventory *scanner.Inventory

	depsOnce sync.Once
	deps     *dependency.Result
}

// NewInput builds the run input for an already loaded manifest.
func NewInput(root string, m *manifest.Manifest, cfg *config.Config, r *rules.Rules, log logger.Logger) *Input {
	return &Input{
		Root:     root,
		Manifest: m,
		Config:   cfg,
		Rules:    r,
		scanner:  scanner.New().WithLogger(logger.OrSilent(log).WithFields(logger.Component("scanner"))),
	}
}

// LoadInput loads the manifest in root and builds the run input. A missing
// or invalid manifest fails the whole run.
func LoadInput(root string, cfg *config.Config, r *rules.Rules, log logger.Logger) (*Input, error) {
	m, err := manifest.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load project manifest: %w", err)
	}
	return NewInput(root, m, cfg, r, log), nil
}

// Inventory returns the project inventory, scanning on first use. A failed
// scan is not remembered so a retry scans again.
func (in *Input) Inventory(ctx context.Context) (*scanner.Inventory, error) {
	in.invMu.Lock()
	defer in.invMu.Unlock()

	if in.inventory != nil {
		return in.inventory, nil
	}
	inv, err := in.scanner.Scan(ctx, in.Root)
	if err != nil {
		return nil, err
	}
	in.inventory = inv
	return inv, nil
}

// Dependencies returns the categorized manifest dependencies.
func (in *Input) Dependencies() *dependency.Result {
	in.depsOnce.Do(func() {
		var prefixes []string
		if in.Config != nil {
			prefixes = in.Config.Dependencies.FirstPartyPrefixes
		}
		in.deps = dependency.NewAnalyzer(in.Rules, prefixes).Analyze(in.Manifest)
	})
	return in.deps
}
