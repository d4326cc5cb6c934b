// Package scanner builds the structural inventory of a project in a single
// traversal: one FileRecord per regular file plus per-directory summaries.
package scanner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/simonhull/firebird-suite/kite/pkg/filesystem"
	"github.com/simonhull/firebird-suite/kite/pkg/logger"
)

// Scanner walks a project tree and classifies every file it finds.
type Scanner struct {
	logger logger.Logger
}

// New creates a Scanner with a silent logger.
func New() *Scanner {
	return &Scanner{logger: logger.NewSilentLogger()}
}

// WithLogger returns a new Scanner with the specified logger
func (s *Scanner) WithLogger(log logger.Logger) *Scanner {
	return &Scanner{logger: logger.OrSilent(log)}
}

// Scan traverses root once. Unreadable entries are skipped and counted in
// Inventory.Errors; only an unusable root is returned as an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Inventory, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	inv := &Inventory{Root: root}
	dirs := make(map[string]*DirectorySummary)

	walkOpts := filesystem.WalkOptions{
		OnError: func(path string, err error) {
			inv.Errors++
			s.logger.Warn("Skipping unreadable entry", logger.F("path", path), logger.F("error", err))
		},
	}

	err = filesystem.Walk(root, walkOpts, func(path string, info os.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			dirs[rel] = &DirectorySummary{Path: rel, Subdirectories: []string{}}
			if rel != "." {
				if parent, ok := dirs[parentOf(rel)]; ok {
					parent.Subdirectories = append(parent.Subdirectories, info.Name())
				}
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		record, err := s.inspect(path, rel, info)
		if err != nil {
			inv.Errors++
			s.logger.Warn("Skipping unreadable file", logger.F("path", rel), logger.F("error", err))
			return nil
		}

		inv.Files = append(inv.Files, record)
		inv.TotalLines += record.Lines
		inv.TotalSize += record.Size

		if parent, ok := dirs[parentOf(rel)]; ok {
			parent.FileCount++
			if record.Language != "" {
				parent.SourceFiles++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(inv.Files, func(i, j int) bool { return inv.Files[i].Path < inv.Files[j].Path })

	inv.Directories = make([]DirectorySummary, 0, len(dirs))
	for _, d := range dirs {
		sort.Strings(d.Subdirectories)
		inv.Directories = append(inv.Directories, *d)
	}
	sort.Slice(inv.Directories, func(i, j int) bool { return inv.Directories[i].Path < inv.Directories[j].Path })

	s.logger.Debug("Scan complete",
		logger.F("files", len(inv.Files)),
		logger.F("directories", len(inv.Directories)),
		logger.F("errors", inv.Errors))

	return inv, nil
}

func (s *Scanner) inspect(path, rel string, info os.FileInfo) (FileRecord, error) {
	lines, firstLine, err := countLines(path)
	if err != nil {
		return FileRecord{}, err
	}

	typ := Classify(rel)
	generated := IsGenerated(rel, firstLine)

	return FileRecord{
		Path:        rel,
		Name:        info.Name(),
		Type:        typ,
		Importance:  ImportanceOf(typ),
		Language:    LanguageOf(info.Name()),
		Lines:       lines,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Generated:   generated,
		Test:        typ == TypeTest,
		Description: Describe(typ, generated),
	}, nil
}

// countLines streams the file, returning its line count and first line.
func countLines(path string) (int, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	buf := make([]byte, 32*1024)
	var (
		lines     int
		firstLine []byte
		haveFirst bool
		last      byte
		total     int
	)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if !haveFirst {
				if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
					firstLine = append(firstLine, chunk[:i]...)
					haveFirst = true
				} else if len(firstLine) < 512 {
					firstLine = append(firstLine, chunk...)
				}
			}
			lines += bytes.Count(chunk, []byte{'\n'})
			last = chunk[n-1]
			total += n
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, "", err
		}
	}

	if total > 0 && last != '\n' {
		lines++
	}
	return lines, string(bytes.TrimRight(firstLine, "\r")), nil
}

func parentOf(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "" {
		return "."
	}
	return dir
}
