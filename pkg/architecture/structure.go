package architecture

import (
	"fmt"
	"path"
	"strings"

	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

const (
	cleanConfidence        = 0.9
	featureFirstConfidence = 0.85
	layerFirstConfidence   = 0.75
	goLayoutConfidence     = 0.8

	minCleanLayers = 3
	minLayerDirs   = 2
	minGoLayout    = 2
)

var (
	cleanLayers  = []string{"domain", "data", "presentation", "core"}
	featureRoots = []string{"features", "feature", "modules"}
	layerDirs    = []string{"screens", "pages", "widgets", "services", "models", "providers", "controllers", "repositories", "views"}
	goLayoutDirs = []string{"cmd", "internal", "pkg"}
)

// sourceRoot is lib/ for Flutter and Dart packages, the project root
// otherwise.
func sourceRoot(inv *scanner.Inventory) string {
	if _, ok := inv.Directory("lib"); ok {
		return "lib"
	}
	return "."
}

// detectStructure runs the directory-naming pass.
func detectStructure(inv *scanner.Inventory) []Pattern {
	if inv == nil {
		return nil
	}

	root := sourceRoot(inv)
	top, _ := inv.Directory(root)
	direct := toSet(top.Subdirectories)
	nested := nestedNames(inv, root)

	var out []Pattern

	var layers []string
	for _, l := range cleanLayers {
		if nested[l] {
			layers = append(layers, l)
		}
	}
	if len(layers) >= minCleanLayers {
		p := NewPattern("clean-architecture", cleanConfidence, SignalStructure,
			fmt.Sprintf("layer directories present: %s", strings.Join(layers, ", ")))
		p.Metadata = map[string]any{"layers": layers}
		out = append(out, p)
	}

	for _, name := range featureRoots {
		if !direct[name] {
			continue
		}
		dir := joinRel(root, name)
		p := NewPattern("feature-first", featureFirstConfidence, SignalStructure,
			fmt.Sprintf("%s/ groups code by feature", dir))
		if d, ok := inv.Directory(dir); ok {
			p.Metadata = map[string]any{"features": d.Subdirectories}
		}
		out = append(out, p)
		break
	}

	var found []string
	for _, name := range layerDirs {
		if direct[name] {
			found = append(found, name)
		}
	}
	if len(found) >= minLayerDirs {
		indicators := make([]string, 0, len(found))
		for _, name := range found {
			indicators = append(indicators, fmt.Sprintf("%s/ directory", joinRel(root, name)))
		}
		out = append(out, NewPattern("layer-first", layerFirstConfidence, SignalStructure, indicators...))
	}

	if rootDir, ok := inv.Directory("."); ok {
		rootSet := toSet(rootDir.Subdirectories)
		var goDirs []string
		for _, name := range goLayoutDirs {
			if rootSet[name] {
				goDirs = append(goDirs, name+"/")
			}
		}
		if len(goDirs) >= minGoLayout {
			out = append(out, NewPattern("go-standard-layout", goLayoutConfidence, SignalStructure,
				fmt.Sprintf("top-level %s directories", strings.Join(goDirs, ", "))))
		}
	}

	return out
}

// nestedNames collects the base names of every directory below root.
func nestedNames(inv *scanner.Inventory, root string) map[string]bool {
	names := make(map[string]bool)
	prefix := root + "/"
	for _, d := range inv.Directories {
		if d.Path == "." || d.Path == root {
			continue
		}
		if root != "." && !strings.HasPrefix(d.Path, prefix) {
			continue
		}
		names[path.Base(d.Path)] = true
	}
	return names
}

func joinRel(root, name string) string {
	if root == "." {
		return name
	}
	return root + "/" + name
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}
