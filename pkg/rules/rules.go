// Package rules holds the static product tables used to classify manifest
// dependencies and to recognise architecture markers. The defaults are
// embedded; a project may ship its own table.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed rules.toml
var embeddedRules []byte

// Rules are the product classification tables.
type Rules struct {
	PlatformPackages   []string           `toml:"platform_packages"`
	TestFrameworks     []string           `toml:"test_frameworks"`
	DeprecatedPackages []string           `toml:"deprecated_packages"`
	Categories         []Category         `toml:"categories"`
	ConflictFamilies   []ConflictFamily   `toml:"conflict_families"`
	DependencyMarkers  []DependencyMarker `toml:"dependency_markers"`
	ConfigMarkers      []ConfigMarker     `toml:"config_markers"`
}

// Category is an ordered membership set; the first category containing a
// package decides its category.
type Category struct {
	Name     string   `toml:"name"`
	Packages []string `toml:"packages"`
}

// ConflictFamily groups mutually exclusive libraries. Packages in the same
// group belong to one library (flutter_bloc and bloc) and never conflict
// with each other.
type ConflictFamily struct {
	Name   string     `toml:"name"`
	Groups [][]string `toml:"groups"`
}

// DependencyMarker maps declared packages to an architecture pattern.
type DependencyMarker struct {
	Pattern    string   `toml:"pattern"`
	Kind       string   `toml:"kind"`
	Confidence float64  `toml:"confidence"`
	Packages   []string `toml:"packages"`
}

// ConfigMarker maps a root-level file to an architecture pattern.
type ConfigMarker struct {
	Pattern     string  `toml:"pattern"`
	File        string  `toml:"file"`
	Confidence  float64 `toml:"confidence"`
	Description string  `toml:"description"`
}

// Default returns the embedded rule tables.
func Default() (*Rules, error) {
	var r Rules
	if err := toml.Unmarshal(embeddedRules, &r); err != nil {
		return nil, fmt.Errorf("failed to parse embedded rules: %w", err)
	}
	return &r, nil
}

// MustDefault is Default for package initialisation paths; the embedded
// table is validated by tests so a failure here is a build defect.
func MustDefault() *Rules {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Load returns the embedded rules, replaced by path when that file exists.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default()
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default()
		}
		return nil, fmt.Errorf("failed to stat rules %s: %w", path, err)
	}

	var r Rules
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return &r, nil
}

// CategoryOf returns the first category whose set contains name, or "other".
func (r *Rules) CategoryOf(name string) string {
	for _, c := range r.Categories {
		for _, pkg := range c.Packages {
			if pkg == name {
				return c.Name
			}
		}
	}
	return "other"
}

// IsPlatform reports whether name ships with the SDK.
func (r *Rules) IsPlatform(name string) bool {
	return contains(r.PlatformPackages, name)
}

// IsTestFramework reports whether name is a test framework.
func (r *Rules) IsTestFramework(name string) bool {
	return contains(r.TestFrameworks, name)
}

// IsDeprecated reports whether name is on the known-problematic list.
func (r *Rules) IsDeprecated(name string) bool {
	return contains(r.DeprecatedPackages, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
