// Package manifest loads a project's dependency manifest: pubspec.yaml for
// Flutter/Dart projects, go.mod for Go modules.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Kind identifies the manifest format.
type Kind string

const (
	KindPubspec Kind = "pubspec"
	KindGoMod   Kind = "gomod"
)

// File names looked up in the project root, in order.
const (
	PubspecFile = "pubspec.yaml"
	GoModFile   = "go.mod"
)

var (
	// ErrNotFound means the project root holds no supported manifest.
	ErrNotFound = errors.New("no manifest found")
	// ErrInvalid means the manifest exists but cannot be parsed.
	ErrInvalid = errors.New("invalid manifest")
)

// platformDirs are the Flutter platform folders detected next to pubspec.yaml.
var platformDirs = []string{"android", "ios", "web", "macos", "linux", "windows"}

// Dependency is one declared package.
type Dependency struct {
	Name       string `json:"name" yaml:"name"`
	Constraint string `json:"constraint" yaml:"constraint"`
	Source     string `json:"source" yaml:"source"` // hosted, sdk, path, git, module
	Dev        bool   `json:"dev" yaml:"dev"`
}

// Manifest is the parsed project manifest.
type Manifest struct {
	Kind            Kind         `json:"kind" yaml:"kind"`
	File            string       `json:"file" yaml:"file"`
	Name            string       `json:"name" yaml:"name"`
	Description     string       `json:"description,omitempty" yaml:"description,omitempty"`
	Version         string       `json:"version,omitempty" yaml:"version,omitempty"`
	SDK             string       `json:"sdk,omitempty" yaml:"sdk,omitempty"`
	Platforms       []string     `json:"platforms" yaml:"platforms"`
	Dependencies    []Dependency `json:"dependencies" yaml:"dependencies"`
	DevDependencies []Dependency `json:"dev_dependencies" yaml:"dev_dependencies"`

	// FirstPartyPrefixes are name prefixes that identify the project's own
	// packages (the module path for go.mod).
	FirstPartyPrefixes []string `json:"-" yaml:"-"`
}

// All returns runtime then development dependencies.
func (m *Manifest) All() []Dependency {
	out := make([]Dependency, 0, len(m.Dependencies)+len(m.DevDependencies))
	out = append(out, m.Dependencies...)
	return append(out, m.DevDependencies...)
}

// Load finds and parses the manifest in root. It returns an error wrapping
// ErrNotFound or ErrInvalid when no usable manifest exists.
func Load(root string) (*Manifest, error) {
	for _, name := range []string{PubspecFile, GoModFile} {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalid, name, err)
		}

		var m *Manifest
		if name == PubspecFile {
			m, err = ParsePubspec(data)
		} else {
			m, err = ParseGoMod(path, data)
		}
		if err != nil {
			return nil, err
		}
		if m.Kind == KindPubspec {
			m.Platforms = detectPlatforms(root)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w in %s (looked for %s, %s)", ErrNotFound, root, PubspecFile, GoModFile)
}

func detectPlatforms(root string) []string {
	platforms := []string{}
	for _, dir := range platformDirs {
		if info, err := os.Stat(filepath.Join(root, dir)); err == nil && info.IsDir() {
			platforms = append(platforms, dir)
		}
	}
	return platforms
}

func sortDeps(deps []Dependency) {
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
}
