// Package health scores declared dependencies against package registry
// metadata. Lookups are cached, retried, and never fail: an unreachable
// registry yields a default record.
package health

import (
	"context"
	"math"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/simonhull/firebird-suite/kite/pkg/dependency"
	"github.com/simonhull/firebird-suite/kite/pkg/logger"
	"github.com/simonhull/firebird-suite/kite/pkg/retry"
)

// Record sources.
const (
	SourceRegistry   = "registry"
	SourcePlatform   = "platform"
	SourceFirstParty = "first-party"
	SourceDefault    = "default"
)

const (
	// DefaultScore is assigned when the registry cannot be reached.
	DefaultScore = 50
	// UnknownLicense is reported when no license is known.
	UnknownLicense = "unknown"

	trustedScore  = 100
	maintainedAge = 365 * 24 * time.Hour
	agingAge      = 180 * 24 * time.Hour
)

// Health is the scored state of one dependency.
type Health struct {
	Package         string     `json:"package" yaml:"package"`
	Score           int        `json:"health_score" yaml:"health_score"`
	Vulnerabilities []string   `json:"vulnerabilities" yaml:"vulnerabilities"`
	License         string     `json:"license" yaml:"license"`
	Maintained      bool       `json:"maintained" yaml:"maintained"`
	Popularity      float64    `json:"popularity" yaml:"popularity"`
	LastUpdated     *time.Time `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
	Source          string     `json:"source" yaml:"source"`
}

// Default returns the record used when the registry lookup failed.
func Default(name string) Health {
	return Health{
		Package:         name,
		Score:           DefaultScore,
		Vulnerabilities: []string{},
		License:         UnknownLicense,
		Maintained:      false,
		Source:          SourceDefault,
	}
}

func trusted(name, source string) Health {
	return Health{
		Package:         name,
		Score:           trustedScore,
		Vulnerabilities: []string{},
		License:         UnknownLicense,
		Maintained:      true,
		Popularity:      100,
		Source:          source,
	}
}

// Score computes a health record from registry metadata as of now.
func Score(info *PackageInfo, now time.Time) Health {
	h := Health{
		Package:         info.Name,
		Vulnerabilities: []string{},
		License:         info.License,
		Source:          SourceRegistry,
	}
	if h.License == "" {
		h.License = UnknownLicense
	}

	score := 100

	if info.Updated.IsZero() {
		score -= 30
	} else {
		updated := info.Updated
		h.LastUpdated = &updated
		age := now.Sub(info.Updated)
		h.Maintained = age < maintainedAge
		switch {
		case age > maintainedAge:
			score -= 30 + 20
		case age > agingAge:
			score -= 10
		}
	}

	h.Popularity = popularity(info)
	switch {
	case h.Popularity < 30:
		score -= 15
	case h.Popularity < 60:
		score -= 5
	}

	if !present(info.Documentation) {
		score -= 10
	}
	if !present(info.Example) {
		score -= 5
	}

	for _, raw := range info.SecurityAdvisories {
		h.Vulnerabilities = append(h.Vulnerabilities, advisorySummary(raw))
		score -= 20
	}

	h.Score = clamp(score, 0, 100)
	return h
}

// popularity returns a 0..100 popularity. The registry reports 0..1; when
// absent it is derived from likes, saturating at 1000.
func popularity(info *PackageInfo) float64 {
	var p float64
	if info.Popularity != nil {
		p = *info.Popularity * 100
	} else {
		p = float64(info.Likes) / 10
	}
	p = math.Max(0, math.Min(100, p))
	return math.Round(p*100) / 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Options configures an Enricher.
type Options struct {
	Timeout     time.Duration // per registry call
	Retry       retry.Config
	Concurrency int
	Now         func() time.Time
}

// Enricher scores dependencies using a Registry and a shared Cache.
type Enricher struct {
	registry Registry
	cache    *Cache[Health]
	opts     Options
	logger   logger.Logger
}

// NewEnricher creates an Enricher. A nil cache disables caching.
func NewEnricher(registry Registry, cache *Cache[Health], opts Options) *Enricher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Enricher{
		registry: registry,
		cache:    cache,
		opts:     opts,
		logger:   logger.NewSilentLogger(),
	}
}

// WithLogger returns a new Enricher with the specified logger
func (e *Enricher) WithLogger(log logger.Logger) *Enricher {
	return &Enricher{
		registry: e.registry,
		cache:    e.cache,
		opts:     e.opts,
		logger:   logger.OrSilent(log),
	}
}

// Enrich returns one record per dependency, in input order.
func (e *Enricher) Enrich(ctx context.Context, deps []dependency.Record) []Health {
	mapper := iter.Mapper[dependency.Record, Health]{MaxGoroutines: e.opts.Concurrency}
	return mapper.Map(deps, func(d *dependency.Record) Health {
		switch {
		case d.Platform:
			return trusted(d.Name, SourcePlatform)
		case d.FirstParty:
			return trusted(d.Name, SourceFirstParty)
		}
		return e.Lookup(ctx, d.Name)
	})
}

// Lookup returns the cached record for name or queries the registry. Failed
// lookups are cached as the default record.
func (e *Enricher) Lookup(ctx context.Context, name string) Health {
	if e.cache != nil {
		if h, ok := e.cache.Get(name); ok {
			return h
		}
	}

	cfg := e.opts.Retry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		e.logger.Debug("Registry lookup failed, retrying",
			logger.F("package", name),
			logger.F("attempt", attempt),
			logger.F("delay", delay),
			logger.F("error", err))
	}

	out := retry.Do(ctx, cfg, func(ctx context.Context) (*PackageInfo, error) {
		callCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
		return e.registry.Fetch(callCtx, name)
	})

	var h Health
	if out.OK && out.Value != nil {
		out.Value.Name = name
		h = Score(out.Value, e.opts.Now())
	} else {
		e.logger.Warn("Registry lookup unavailable, using default health",
			logger.F("package", name),
			logger.F("attempts", out.Attempts),
			logger.F("error", out.Err))
		h = Default(name)
	}

	if e.cache != nil {
		e.cache.Set(name, h)
	}
	return h
}

// CacheStats returns the statistics of the shared cache.
func (e *Enricher) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}
