package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/kite"
	"github.com/simonhull/firebird-suite/kite/pkg/config"
	"github.com/simonhull/firebird-suite/kite/pkg/manifest"
	"github.com/simonhull/firebird-suite/kite/pkg/output"
)

func TestMain(m *testing.M) {
	output.SetWriter(io.Discard)
	os.Exit(m.Run())
}

const pubspec = `name: demo_app
description: A demo app
version: 1.0.0
environment:
  sdk: ">=3.0.0 <4.0.0"
dependencies:
  flutter:
    sdk: flutter
  flutter_riverpod: ^2.4.0
  dio: ^5.0.0
dev_dependencies:
  flutter_test:
    sdk: flutter
`

// registry answers 404 for every package so health falls back to defaults.
func registry(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func demoProject(t *testing.T, registryURL string) string {
	kiteYAML := fmt.Sprintf("registry:\n  url: %s\n  timeout: 1s\nretry:\n  base_delay: 1ms\n", registryURL)
	return writeProject(t, map[string]string{
		"pubspec.yaml":                       pubspec,
		"kite.yaml":                          kiteYAML,
		"lib/main.dart":                      "void main() {\n  runApp();\n}\n",
		"lib/features/home/home_screen.dart": "class HomeScreen {}\n",
		"lib/features/auth/auth_screen.dart": "class AuthScreen {}\n",
		"test/home_test.dart":                "void main() {}\n",
	})
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCLI()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func decode(t *testing.T, data string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &out))
	return out
}

func section(t *testing.T, r map[string]any, key string) map[string]any {
	t.Helper()
	s, ok := r[key].(map[string]any)
	require.True(t, ok, "missing section %s", key)
	return s
}

func TestContextExport_Stdout(t *testing.T) {
	srv, hits := registry(t)
	root := demoProject(t, srv.URL)

	out, err := execute(t, "", "context", "export", root, "-o", "-")
	require.NoError(t, err)

	r := decode(t, out)
	assert.Equal(t, kite.Version, r["cli_version"])

	project := section(t, r, "project")
	assert.Equal(t, "ok", project["status"])
	assert.Equal(t, "demo_app", project["name"])

	structure := section(t, r, "structure")
	assert.Equal(t, "ok", structure["status"])
	assert.EqualValues(t, 1, structure["test_files"])

	deps := section(t, r, "dependencies")
	assert.Equal(t, "ok", deps["status"])
	assert.EqualValues(t, 4, deps["total"])

	health := section(t, r, "dependency_health")
	assert.Equal(t, "ok", health["status"])
	assert.Positive(t, hits.Load())

	arch := section(t, r, "architecture")
	assert.Equal(t, "riverpod", arch["primary"])
	assert.Contains(t, arch["detected_patterns"], "feature-first")

	perf := section(t, r, "performance")
	assert.Len(t, perf["analyzers"], 6)

	var paths []string
	for _, c := range r["commands"].([]any) {
		paths = append(paths, c.(map[string]any)["path"].(string))
	}
	assert.Contains(t, paths, "kite context export")

	// Nothing was written to the default location.
	assert.NoFileExists(t, filepath.Join(root, ".ai", "project_context.json"))
}

func TestContextExport_IncludeFlagsOverrideConfig(t *testing.T) {
	srv, hits := registry(t)
	root := demoProject(t, srv.URL)

	out, err := execute(t, "", "context", "export", root, "-o", "-",
		"--include-code=false", "--include-dependencies=false", "--include-suggestions=false")
	require.NoError(t, err)

	r := decode(t, out)
	assert.Equal(t, "skipped", section(t, r, "code")["status"])
	assert.Equal(t, "skipped", section(t, r, "dependencies")["status"])
	assert.Equal(t, "skipped", section(t, r, "dependency_health")["status"])
	assert.Equal(t, "ok", section(t, r, "structure")["status"])
	assert.Equal(t, []any{}, r["suggestions"])
	assert.Zero(t, hits.Load())
}

func TestContextExport_DefaultPathAndConflicts(t *testing.T) {
	srv, _ := registry(t)
	root := demoProject(t, srv.URL)
	path := filepath.Join(root, ".ai", "project_context.json")

	_, err := execute(t, "", "context", "export", root)
	require.NoError(t, err)
	require.FileExists(t, path)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// Declining the prompt keeps the file and is not an error.
	_, err = execute(t, "n\n", "context", "export", root)
	require.NoError(t, err)
	kept, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, kept)

	_, err = execute(t, "", "context", "export", root, "--skip")
	require.NoError(t, err)
	kept, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, kept)

	_, err = execute(t, "", "context", "export", root, "--force")
	require.NoError(t, err)
	decode(t, string(mustRead(t, path)))
}

func TestContextExport_Markdown(t *testing.T) {
	srv, _ := registry(t)
	root := demoProject(t, srv.URL)

	_, err := execute(t, "", "context", "export", root, "--format", "md")
	require.NoError(t, err)

	md := string(mustRead(t, filepath.Join(root, ".ai", "project_context.md")))
	assert.Contains(t, md, "# demo_app: Project Context")
	assert.Contains(t, md, "**Primary pattern:** riverpod")
	assert.Contains(t, md, "## Commands")
}

func TestContextExport_CustomTemplate(t *testing.T) {
	srv, _ := registry(t)
	root := demoProject(t, srv.URL)
	tmpl := filepath.Join(t.TempDir(), "brief.tmpl")
	require.NoError(t, os.WriteFile(tmpl, []byte("{{ .Project.Name }} uses {{ .Architecture.Primary }}\n"), 0644))

	out, err := execute(t, "", "context", "export", root, "--template", tmpl, "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "demo_app uses riverpod\n", out)
}

func TestContextExport_Errors(t *testing.T) {
	srv, _ := registry(t)
	root := demoProject(t, srv.URL)

	_, err := execute(t, "", "context", "export", t.TempDir(), "-o", "-")
	assert.ErrorIs(t, err, manifest.ErrNotFound)

	_, err = execute(t, "", "context", "export", root, "--force", "--skip")
	assert.ErrorContains(t, err, "--force cannot be combined with --skip")

	_, err = execute(t, "", "context", "export", root, "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = execute(t, "", "context", "export", root, "--max-files", "0")
	assert.ErrorContains(t, err, "report.max_files must be positive")

	_, err = execute(t, "", "context", "export", filepath.Join(root, "pubspec.yaml"))
	assert.ErrorContains(t, err, "is not a directory")
}

func TestSchemaExport(t *testing.T) {
	out, err := execute(t, "", "schema", "export")
	require.NoError(t, err)

	var all []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	var paths []string
	for _, c := range all {
		paths = append(paths, c["path"].(string))
	}
	for _, want := range []string{"kite", "kite context export", "kite schema export", "kite config init", "kite doctor", "kite version"} {
		assert.Contains(t, paths, want)
	}
	assert.NotContains(t, paths, "kite help")
	assert.NotContains(t, paths, "kite completion")

	out, err = execute(t, "", "schema", "export", "--command", "kite context export")
	require.NoError(t, err)
	one := decode(t, out)
	assert.Equal(t, "kite context export [path] [flags]", one["usage"])

	flags := map[string]map[string]any{}
	for _, f := range one["flags"].([]any) {
		flag := f.(map[string]any)
		flags[flag["name"].(string)] = flag
	}
	assert.Equal(t, "o", flags["output"]["shorthand"])
	assert.Equal(t, "json", flags["format"]["default"])
	assert.Equal(t, "bool", flags["include-code"]["type"])
	assert.NotContains(t, flags, "verbose")

	out, err = execute(t, "", "schema", "export", "--command", "kite version", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "path: kite version")

	_, err = execute(t, "", "schema", "export", "--command", "kite nope")
	assert.ErrorContains(t, err, `unknown command "kite nope"`)

	_, err = execute(t, "", "schema", "export", "--format", "markdown")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, config.FileName)

	_, err := execute(t, "", "config", "init", root)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	want := config.DefaultConfig()
	assert.Equal(t, want.Report, cfg.Report)
	assert.Equal(t, want.Registry, cfg.Registry)
	assert.Equal(t, want.Architecture.PriorityPatterns, cfg.Architecture.PriorityPatterns)

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0644))

	_, err = execute(t, "n\n", "config", "init", root)
	require.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(mustRead(t, path)))

	_, err = execute(t, "y\n", "config", "init", root)
	require.NoError(t, err)
	assert.NotEqual(t, "log_level: debug\n", string(mustRead(t, path)))

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0644))
	_, err = execute(t, "", "config", "init", root, "--force")
	require.NoError(t, err)
	assert.NotEqual(t, "log_level: debug\n", string(mustRead(t, path)))
}

func TestDoctor(t *testing.T) {
	srv, _ := registry(t)

	_, err := execute(t, "", "doctor", demoProject(t, srv.URL))
	assert.NoError(t, err)

	noManifest := writeProject(t, map[string]string{
		"kite.yaml": fmt.Sprintf("registry:\n  url: %s\n", srv.URL),
	})
	_, err = execute(t, "", "doctor", noManifest)
	assert.ErrorIs(t, err, errDoctorFailed)

	broken := writeProject(t, map[string]string{
		"go.mod":    "module example.com/svc\n\ngo 1.22\n",
		"kite.yaml": "report:\n  max_files: -1\n",
	})
	_, err = execute(t, "", "doctor", broken)
	assert.ErrorIs(t, err, errDoctorFailed)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "kite v"+kite.Version+"\n", out)
}

func TestCollectCommands_SkipsHidden(t *testing.T) {
	root := NewCLI()
	hidden := VersionCmd()
	hidden.Use = "secret"
	hidden.Hidden = true
	root.AddCommand(hidden)

	commands := CollectCommands(root)
	_, ok := FindCommand(commands, "kite secret")
	assert.False(t, ok)

	export, ok := FindCommand(commands, "kite context export")
	require.True(t, ok)
	assert.Equal(t, "Analyze a project and export its context report", export.Short)
	assert.NotEmpty(t, export.Flags)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
