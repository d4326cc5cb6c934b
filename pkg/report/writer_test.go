package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ai", "project_context.json")

	written, err := WriteFile(path, []byte("{}"), SkipStrategy{})
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestWriteFile_Conflicts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	written, err := WriteFile(path, []byte("new"), SkipStrategy{})
	require.NoError(t, err)
	assert.False(t, written)
	assertContent(t, path, "old")

	var prompt bytes.Buffer
	_, err = WriteFile(path, []byte("new"), PromptStrategy{In: strings.NewReader("n\n"), Out: &prompt})
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Contains(t, prompt.String(), "Overwrite?")
	assertContent(t, path, "old")

	written, err = WriteFile(path, []byte("new"), PromptStrategy{In: strings.NewReader("y\n"), Out: &prompt})
	require.NoError(t, err)
	assert.True(t, written)
	assertContent(t, path, "new")

	written, err = WriteFile(path, []byte("newer"), ForceStrategy{})
	require.NoError(t, err)
	assert.True(t, written)
	assertContent(t, path, "newer")
}

func TestWriteFile_IdenticalContentSkipsPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0644))

	var prompt bytes.Buffer
	written, err := WriteFile(path, []byte("same"), PromptStrategy{In: strings.NewReader(""), Out: &prompt})
	require.NoError(t, err)
	assert.True(t, written)
	assert.Empty(t, prompt.String())
}

func TestNewStrategy(t *testing.T) {
	_, err := NewStrategy(true, true, nil, nil)
	assert.Error(t, err)

	s, err := NewStrategy(true, false, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, ForceStrategy{}, s)

	s, err = NewStrategy(false, true, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, SkipStrategy{}, s)

	s, err = NewStrategy(false, false, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.IsType(t, PromptStrategy{}, s)
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}
