package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/kite/pkg/scanner"
)

const sharedBlock = `  final a = compute(1);
  final b = compute(2);
  final c = compute(3);
  final d = compute(4);
  final e = compute(5);
  final f = compute(6);
  print(a + b + c + d + e + f);
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func scan(t *testing.T, root string) []scanner.FileRecord {
	t.Helper()
	inv, err := scanner.New().Scan(context.Background(), root)
	require.NoError(t, err)
	return inv.Files
}

func TestAnalyze_Project(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"lib/main.dart":            "import 'package:flutter_riverpod/flutter_riverpod.dart';\n\nvoid main() {\n" + sharedBlock + "}\n\nvoid _unused() {}\n\nvoid _used() {}\n\nvoid caller() => _used();\n",
		"lib/other.dart":           "void other() {\n" + sharedBlock + "}\n",
		"lib/broken.dart":          "void broken( {\n",
		"lib/model.g.dart":         "// GENERATED CODE - DO NOT MODIFY BY HAND\nvoid _gen() {}\n",
		"lib/home_view_model.dart": "class HomeViewModel {}\n",
		"README.md":                "# docs\n",
	})

	result, err := NewAnalyzer(Options{MaxFileSize: 1 << 20}).Analyze(context.Background(), root, scan(t, root))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Summary.FilesAnalyzed, "generated and non-source files are excluded")
	assert.Equal(t, 1, result.Summary.ParseFailures)

	var broken *ComplexityRecord
	for i := range result.Files {
		assert.GreaterOrEqual(t, result.Files[i].Cyclomatic, 1)
		if result.Files[i].Path == "lib/broken.dart" {
			broken = &result.Files[i]
		}
	}
	require.NotNil(t, broken)
	assert.Equal(t, 100.0, broken.MaintainabilityIndex)

	require.Len(t, result.Duplicates, 1)
	assert.Len(t, result.Duplicates[0].Locations, 2)

	require.Len(t, result.DeadCode, 1)
	assert.Equal(t, "_unused", result.DeadCode[0].Name)

	assert.Equal(t, []string{"riverpod", "mvvm"}, result.Patterns)

	var parseIssues int
	for _, issue := range result.Issues {
		if issue.Type == IssueParseFailure {
			parseIssues++
		}
	}
	assert.Equal(t, 1, parseIssues)
}

func TestAnalyze_Limits(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"lib/a.dart":   "void a() {}\n",
		"lib/b.dart":   "void b() {}\n",
		"lib/big.dart": "void big() {}\n" + strings.Repeat("// padding\n", 200),
	})
	files := scan(t, root)

	result, err := NewAnalyzer(Options{MaxFiles: 2}).Analyze(context.Background(), root, files)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.FilesAnalyzed)
	assert.Equal(t, 1, result.Summary.FilesSkipped)

	result, err = NewAnalyzer(Options{MaxFileSize: 100}).Analyze(context.Background(), root, files)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.FilesAnalyzed)
	assert.Equal(t, 1, result.Summary.FilesSkipped)
}

func TestAnalyze_Empty(t *testing.T) {
	result, err := NewAnalyzer(Options{}).Analyze(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Files)
	assert.NotNil(t, result.Duplicates)
	assert.Empty(t, result.Patterns)
	assert.Zero(t, result.Summary.AverageMaintainability)
}

func TestAnalyze_Cancelled(t *testing.T) {
	root := writeFiles(t, map[string]string{"lib/a.dart": "void a() {}\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(Options{}).Analyze(ctx, root, scan(t, root))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectPatterns_Union(t *testing.T) {
	tags := DetectPatterns(
		"import 'package:flutter_bloc/flutter_bloc.dart';",
		"class CartCubit extends Cubit<int> {}",
		"final repo = UserRepository();",
	)
	assert.Equal(t, []string{"bloc", "repository"}, tags)
	assert.Empty(t, DetectPatterns("void main() {}"))
}

func TestHighComplexityIssues(t *testing.T) {
	issues := []QualityIssue{
		{Type: IssueParseFailure, Location: Location{File: "lib/a.dart"}},
		{Type: IssueHighComplexity, Location: Location{File: "lib/b.dart", Line: 3}},
		{Type: IssueHighComplexity, Location: Location{File: "lib/c.dart", Line: 9}},
	}

	got := HighComplexityIssues(issues)
	require.Len(t, got, 2)
	assert.Equal(t, "lib/b.dart", got[0].Location.File)
	assert.Equal(t, "lib/c.dart", got[1].Location.File)

	assert.Empty(t, HighComplexityIssues(nil))
}
