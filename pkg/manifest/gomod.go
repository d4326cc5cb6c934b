package manifest

import (
	"fmt"

	"golang.org/x/mod/modfile"
)

// ParseGoMod parses go.mod content. Direct requirements become runtime
// dependencies; indirect ones are left out. The module path is the
// first-party prefix.
func ParseGoMod(path string, data []byte) (*Manifest, error) {
	mf, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, GoModFile, err)
	}
	if mf.Module == nil {
		return nil, fmt.Errorf("%w: %s has no module directive", ErrInvalid, GoModFile)
	}

	m := &Manifest{
		Kind:               KindGoMod,
		File:               GoModFile,
		Name:               mf.Module.Mod.Path,
		Platforms:          []string{},
		Dependencies:       []Dependency{},
		DevDependencies:    []Dependency{},
		FirstPartyPrefixes: []string{mf.Module.Mod.Path},
	}
	if mf.Go != nil {
		m.SDK = mf.Go.Version
	}

	for _, req := range mf.Require {
		if req.Indirect {
			continue
		}
		m.Dependencies = append(m.Dependencies, Dependency{
			Name:       req.Mod.Path,
			Constraint: req.Mod.Version,
			Source:     "module",
		})
	}
	sortDeps(m.Dependencies)
	return m, nil
}
