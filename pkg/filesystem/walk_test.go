package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
	}
}

func collectFiles(t *testing.T, root string, opts WalkOptions) []string {
	t.Helper()
	var visited []string
	err := Walk(root, opts, func(path string, info os.FileInfo) error {
		if !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			visited = append(visited, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(visited)
	return visited
}

func TestWalk_BasicTraversal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "pubspec.yaml", "lib/main.dart", "lib/src/app.dart")

	assert.Equal(t, []string{"lib/main.dart", "lib/src/app.dart", "pubspec.yaml"}, collectFiles(t, root, WalkOptions{}))
}

func TestWalk_IgnoreDefaults(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"lib/main.dart",
		".dart_tool/package_config.json",
		"build/app/output.txt",
		"ios/Pods/Manifest.lock",
		".git/HEAD",
	)

	assert.Equal(t, []string{"lib/main.dart"}, collectFiles(t, root, WalkOptions{}))
}

func TestWalk_EmptyIgnoreListKeepsEverything(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "build/out.txt", "lib/main.dart")

	assert.Equal(t, []string{"build/out.txt", "lib/main.dart"}, collectFiles(t, root, WalkOptions{IgnoreDirs: []string{}}))
}

func TestWalk_IgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "app.iml", "lib/main.dart")

	got := collectFiles(t, root, WalkOptions{IgnorePatterns: []string{"*.iml"}})
	assert.Equal(t, []string{"lib/main.dart"}, got)
}

func TestWalk_HiddenFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, ".metadata", "lib/main.dart")

	assert.Equal(t, []string{"lib/main.dart"}, collectFiles(t, root, WalkOptions{}))
	assert.Equal(t, []string{".metadata", "lib/main.dart"}, collectFiles(t, root, WalkOptions{IncludeHidden: true}))
}

func TestWalk_VisitorErrorAborts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt")

	boom := errors.New("boom")
	err := Walk(root, WalkOptions{}, func(path string, info os.FileInfo) error {
		if !info.IsDir() {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestWalk_MissingRootFails(t *testing.T) {
	calls := 0
	err := Walk(filepath.Join(t.TempDir(), "missing"), WalkOptions{
		OnError: func(string, error) { calls++ },
	}, func(string, os.FileInfo) error { return nil })

	assert.Error(t, err)
	assert.Zero(t, calls)
}
