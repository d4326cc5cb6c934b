package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/kite/pkg/input"
)

// ErrCancelled is returned when the user declines to overwrite a report.
var ErrCancelled = errors.New("export cancelled")

// Resolution is what to do with an existing output file.
type Resolution int

const (
	Skip Resolution = iota
	Overwrite
	Cancel
)

// ConflictStrategy decides whether an existing file is replaced.
type ConflictStrategy interface {
	Resolve(path string, existing, newer []byte) (Resolution, error)
}

// NewStrategy picks a strategy for the --force and --skip flags. Without
// either flag the user is prompted on in/out.
func NewStrategy(force, skip bool, in io.Reader, out io.Writer) (ConflictStrategy, error) {
	switch {
	case force && skip:
		return nil, fmt.Errorf("--force cannot be combined with --skip")
	case force:
		return ForceStrategy{}, nil
	case skip:
		return SkipStrategy{}, nil
	}
	return PromptStrategy{In: in, Out: out}, nil
}

// ForceStrategy always overwrites.
type ForceStrategy struct{}

// Resolve always returns Overwrite for force mode
func (ForceStrategy) Resolve(string, []byte, []byte) (Resolution, error) {
	return Overwrite, nil
}

// SkipStrategy always keeps the existing file.
type SkipStrategy struct{}

// Resolve always returns Skip for skip mode
func (SkipStrategy) Resolve(string, []byte, []byte) (Resolution, error) {
	return Skip, nil
}

// PromptStrategy asks before overwriting.
type PromptStrategy struct {
	In  io.Reader
	Out io.Writer
}

// Resolve asks whether to overwrite path. Declining cancels the export.
func (s PromptStrategy) Resolve(path string, _, _ []byte) (Resolution, error) {
	if input.ConfirmFrom(s.In, s.Out, fmt.Sprintf("%s already exists. Overwrite?", path), false) {
		return Overwrite, nil
	}
	return Cancel, nil
}

// WriteFile writes data to path, creating parent directories. An existing
// file with different content is handled by strategy; identical content is
// left alone. It reports whether the file now holds data.
func WriteFile(path string, data []byte, strategy ConflictStrategy) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(existing, data) {
			return true, nil
		}
		res, err := strategy.Resolve(path, existing, data)
		if err != nil {
			return false, err
		}
		switch res {
		case Skip:
			return false, nil
		case Cancel:
			return false, ErrCancelled
		}
	case !os.IsNotExist(err):
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
