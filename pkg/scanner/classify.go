package scanner

import (
	"path"
	"strings"
)

// rule classifies a file when its name carries one of Suffixes, equals one of
// Names, or (for source files) sits below a directory named in Dirs.
type rule struct {
	Type     FileType
	Names    []string
	Suffixes []string
	Dirs     []string
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		Type:     TypeTest,
		Suffixes: []string{"_test.dart", "_test.go"},
		Dirs:     []string{"test", "integration_test", "test_driver", "testdata"},
	},
	{
		Type: TypeEntryPoint,
		Names: []string{
			"main.dart", "main.go",
			"main_dev.dart", "main_development.dart", "main_staging.dart",
			"main_prod.dart", "main_production.dart",
		},
	},
	{
		Type:     TypeRouting,
		Suffixes: []string{"router.dart", "routes.dart", "route.dart", "router.go", "routes.go"},
		Dirs:     []string{"router", "routes", "routing", "navigation"},
	},
	{
		Type:     TypeScreen,
		Suffixes: []string{"_screen.dart", "_page.dart"},
		Dirs:     []string{"screens", "pages"},
	},
	{
		Type: TypeViewModel,
		Suffixes: []string{
			"_view_model.dart", "_viewmodel.dart", "_controller.dart",
			"_bloc.dart", "_cubit.dart", "_notifier.dart", "_store.dart",
		},
		Dirs: []string{"viewmodels", "view_models", "controllers", "blocs", "cubits"},
	},
	{
		Type: TypeService,
		Suffixes: []string{
			"_service.dart", "_repository.dart", "_api.dart", "_client.dart", "_datasource.dart",
			"_service.go", "_repository.go", "_client.go", "handler.go",
		},
		Dirs: []string{"services", "repositories", "api", "datasources", "handlers"},
	},
	{
		Type:     TypeModel,
		Suffixes: []string{"_model.dart", "_entity.dart", "_dto.dart", "_state.dart", "_model.go"},
		Dirs:     []string{"models", "entities", "dto", "domain"},
	},
	{
		Type:     TypeProvider,
		Suffixes: []string{"_provider.dart", "_providers.dart"},
		Dirs:     []string{"providers"},
	},
	{
		Type:     TypeWidget,
		Suffixes: []string{"_widget.dart", "_view.dart", "_card.dart", "_button.dart", "_dialog.dart", "_tile.dart"},
		Dirs:     []string{"widgets", "components", "views"},
	},
	{
		Type:     TypeUtil,
		Suffixes: []string{"_utils.dart", "_util.dart", "_helper.dart", "_helpers.dart", "_extension.dart", "_extensions.dart", "util.go", "utils.go"},
		Dirs:     []string{"utils", "util", "helpers", "extensions"},
	},
	{
		Type:     TypeConstant,
		Names:    []string{"constants.dart", "constants.go"},
		Suffixes: []string{"_constants.dart", "_colors.dart", "_strings.dart", "_theme.dart"},
		Dirs:     []string{"constants", "theme"},
	},
	{
		Type:  TypeConfig,
		Names: []string{"go.mod", "go.sum", "Makefile", "Dockerfile", "Podfile", "Gemfile"},
		Suffixes: []string{
			"_config.dart", ".yaml", ".yml", ".json", ".toml", ".gradle", ".kts",
			".plist", ".xml", ".properties", ".xcconfig", ".arb", ".lock",
		},
		Dirs: []string{"config", "configs"},
	},
	{
		Type:     TypeDocumentation,
		Suffixes: []string{".md", ".txt", ".rst", ".adoc"},
		Dirs:     []string{"doc", "docs"},
	},
}

var descriptions = map[FileType]string{
	TypeEntryPoint:    "Application entry point",
	TypeRouting:       "Navigation and route definitions",
	TypeScreen:        "Screen or page",
	TypeViewModel:     "View model, controller or state holder",
	TypeService:       "Service, repository or API client",
	TypeModel:         "Data model",
	TypeProvider:      "State provider",
	TypeWidget:        "Reusable UI component",
	TypeUtil:          "Utility helpers",
	TypeConstant:      "Constants and theme values",
	TypeTest:          "Test",
	TypeConfig:        "Configuration",
	TypeDocumentation: "Documentation",
	TypeOther:         "Other file",
}

// generatedSuffixes are the output names of known code generators.
var generatedSuffixes = []string{
	".g.dart", ".freezed.dart", ".gr.dart", ".config.dart", ".mocks.dart",
	".gen.dart", ".pb.dart", ".pbenum.dart", ".pbjson.dart", ".pbserver.dart", ".pbgrpc.dart",
	".pb.go", "_gen.go", "_string.go",
}

// generatedDirs hold generator output.
var generatedDirs = []string{"generated", ".generated", "gen"}

// generatedBanners mark generated files on their first line.
var generatedBanners = []string{
	"GENERATED CODE - DO NOT MODIFY BY HAND",
	"Code generated",
	"@generated",
}

// Classify returns the file type for a slash-separated relative path.
func Classify(rel string) FileType {
	name := path.Base(rel)
	dirs := dirSegments(rel)
	source := LanguageOf(name) != ""

	for _, r := range rules {
		if r.matches(name, dirs, source) {
			return r.Type
		}
	}
	return TypeOther
}

func (r rule) matches(name string, dirs []string, source bool) bool {
	for _, n := range r.Names {
		if name == n {
			return true
		}
	}
	for _, s := range r.Suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	if !source {
		return false
	}
	for _, d := range r.Dirs {
		for _, seg := range dirs {
			if seg == d {
				return true
			}
		}
	}
	return false
}

// LanguageOf returns "dart" or "go" for analyzable sources, "" otherwise.
func LanguageOf(name string) string {
	switch {
	case strings.HasSuffix(name, ".dart"):
		return "dart"
	case strings.HasSuffix(name, ".go"):
		return "go"
	default:
		return ""
	}
}

// IsGenerated reports whether a path names generator output. firstLine is
// the file's first line and may be empty.
func IsGenerated(rel, firstLine string) bool {
	name := path.Base(rel)
	for _, s := range generatedSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	for _, seg := range dirSegments(rel) {
		for _, d := range generatedDirs {
			if seg == d {
				return true
			}
		}
	}
	if strings.HasPrefix(strings.TrimSpace(firstLine), "//") {
		for _, b := range generatedBanners {
			if strings.Contains(firstLine, b) {
				return true
			}
		}
	}
	return false
}

// Describe returns a human-readable description for a record.
func Describe(t FileType, generated bool) string {
	desc := descriptions[t]
	if desc == "" {
		desc = descriptions[TypeOther]
	}
	if generated {
		desc += " (generated)"
	}
	return desc
}

func dirSegments(rel string) []string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return nil
	}
	return strings.Split(dir, "/")
}
