package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type pubspecFile struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Version         string         `yaml:"version"`
	Environment     map[string]any `yaml:"environment"`
	Dependencies    map[string]any `yaml:"dependencies"`
	DevDependencies map[string]any `yaml:"dev_dependencies"`
}

// ParsePubspec parses pubspec.yaml content. Dependency values may be a
// version string, empty (any version), or a map describing an sdk, path,
// git or hosted source.
func ParsePubspec(data []byte) (*Manifest, error) {
	var spec pubspecFile
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, PubspecFile, err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: %s has no name", ErrInvalid, PubspecFile)
	}

	m := &Manifest{
		Kind:            KindPubspec,
		File:            PubspecFile,
		Name:            spec.Name,
		Description:     spec.Description,
		Version:         spec.Version,
		Platforms:       []string{},
		Dependencies:    pubspecDeps(spec.Dependencies, false),
		DevDependencies: pubspecDeps(spec.DevDependencies, true),
	}
	if sdk, ok := spec.Environment["sdk"].(string); ok {
		m.SDK = sdk
	}
	return m, nil
}

func pubspecDeps(raw map[string]any, dev bool) []Dependency {
	deps := make([]Dependency, 0, len(raw))
	for name, value := range raw {
		constraint, source := describe(value)
		deps = append(deps, Dependency{Name: name, Constraint: constraint, Source: source, Dev: dev})
	}
	sortDeps(deps)
	return deps
}

// describe turns a pubspec dependency value into a constraint and source.
func describe(value any) (string, string) {
	switch v := value.(type) {
	case nil:
		return "any", "hosted"
	case string:
		return v, "hosted"
	case map[string]any:
		if sdk, ok := v["sdk"].(string); ok {
			return "sdk:" + sdk, "sdk"
		}
		if _, ok := v["path"]; ok {
			return "path", "path"
		}
		if _, ok := v["git"]; ok {
			return "git", "git"
		}
		if version, ok := v["version"].(string); ok {
			return version, "hosted"
		}
		return "any", "hosted"
	default:
		return fmt.Sprint(v), "hosted"
	}
}
