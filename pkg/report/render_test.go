package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/kite/pkg/architecture"
	"github.com/simonhull/firebird-suite/kite/pkg/dependency"
	"github.com/simonhull/firebird-suite/kite/pkg/health"
)

var topLevelKeys = []string{
	"project", "structure", "commands", "dependencies", "dependency_health",
	"code", "architecture", "suggestions", "performance", "exported_at", "cli_version",
}

func sampleReport() *Report {
	r := New()
	r.CLIVersion = "1.2.3"
	r.ExportedAt = fixedNow
	r.Project = ProjectSection{Status: StatusOK, Name: "demo", Kind: "pubspec", Manifest: "pubspec.yaml", Platforms: []string{"ios"}}
	r.Dependencies.Status = StatusOK
	r.Dependencies.Dependencies = []dependency.Record{{Name: "dio", Constraint: "^5.0.0", Category: "networking"}}
	r.Dependencies.Conflicts = []string{"Multiple HTTP client libraries declared: dio, http"}
	r.DependencyHealth.Status = StatusOK
	r.DependencyHealth.Packages = []health.Health{{Package: "dio", Score: 95, License: "MIT", Maintained: true, Vulnerabilities: []string{}}}
	r.Architecture.Status = StatusOK
	r.Architecture.Primary = "feature-first"
	r.Architecture.Patterns = []architecture.Pattern{
		architecture.NewPattern("feature-first", 0.85, architecture.SignalStructure, "lib/features/ groups code by feature"),
	}
	r.Commands = []Command{{Path: "kite version", Short: "Print the version", Usage: "kite version"}}
	r.Suggestions = []string{"Write more tests"}
	return r
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML, "md": FormatMarkdown, "markdown": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, "md", FormatMarkdown.Extension())
	assert.Equal(t, "yaml", FormatYAML.Extension())
	assert.Equal(t, "json", FormatJSON.Extension())
}

func TestRender_JSONHasEveryTopLevelKey(t *testing.T) {
	for _, r := range []*Report{New(), sampleReport()} {
		data, err := NewRenderer().Render(r, FormatJSON)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		for _, key := range topLevelKeys {
			assert.Contains(t, decoded, key)
		}
		assert.Len(t, decoded, len(topLevelKeys))
	}
}

func TestRender_JSONShapes(t *testing.T) {
	data, err := NewRenderer().Render(New(), FormatJSON)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Defaults are empty collections, never null.
	assert.Equal(t, []any{}, decoded["suggestions"])
	assert.Equal(t, []any{}, decoded["commands"])
	dh := decoded["dependency_health"].(map[string]any)
	assert.Equal(t, []any{}, dh["packages"])
	arch := decoded["architecture"].(map[string]any)
	assert.Equal(t, "unknown", arch["primary"])
}

func TestRender_YAML(t *testing.T) {
	data, err := NewRenderer().Render(sampleReport(), FormatYAML)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	for _, key := range topLevelKeys {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "1.2.3", decoded["cli_version"])
}

func TestRender_Markdown(t *testing.T) {
	data, err := NewRenderer().Render(sampleReport(), FormatMarkdown)
	require.NoError(t, err)
	md := string(data)

	assert.Contains(t, md, "# demo: Project Context")
	assert.Contains(t, md, "**Primary pattern:** feature-first")
	assert.Contains(t, md, "**feature-first** (85%, structure)")
	assert.Contains(t, md, "| dio | ^5.0.0 | networking | |")
	assert.Contains(t, md, "Multiple HTTP client libraries declared: dio, http")
	assert.Contains(t, md, "| dio | 95 | yes | MIT | 0 |")
	assert.Contains(t, md, "_Code analysis skipped._")
	assert.Contains(t, md, "`kite version`: Print the version")
	assert.Contains(t, md, "1. Write more tests")
}

func TestRender_MarkdownDefaults(t *testing.T) {
	data, err := NewRenderer().Render(New(), FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, string(data), "# Project: Project Context")
	assert.Contains(t, string(data), "_Project information skipped._")
}

func TestRenderFile_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ .Project.Name | upper }} {{ len .Suggestions }}`), 0644))

	rd := NewRenderer()
	data, err := rd.RenderFile(path, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "DEMO 1", string(data))

	// Cached: the file is not read again.
	require.NoError(t, os.Remove(path))
	_, err = rd.RenderFile(path, sampleReport())
	assert.NoError(t, err)
}

func TestRenderFile_Errors(t *testing.T) {
	rd := NewRenderer()

	_, err := rd.RenderFile(filepath.Join(t.TempDir(), "missing.tmpl"), New())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ .Nope `), 0644))
	_, err = rd.RenderFile(path, New())
	assert.ErrorContains(t, err, "failed to parse template")
}
