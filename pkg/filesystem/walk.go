package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnoreDirs are tool output and dependency directories skipped during traversal
var DefaultIgnoreDirs = []string{
	".dart_tool", ".pub-cache", ".fvm", "build", "Pods",
	"node_modules", "vendor", ".git", ".svn", ".hg",
	".idea", ".vscode", ".gradle",
}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs     []string // Directories to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File patterns to skip (e.g., "*.iml")
	IncludeHidden  bool     // Include hidden files/dirs (default: false)

	// OnError receives entries that could not be read. When set, the entry is
	// skipped and the walk continues; when nil the error aborts the walk.
	OnError func(path string, err error)
}

// Walk traverses a directory tree with configurable ignore patterns.
// The visitor function is called for each file and directory.
// Return filepath.SkipDir from visitor to skip a directory.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, info os.FileInfo) error) error {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if opts.OnError == nil || path == rootPath {
				return err
			}
			opts.OnError(path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip hidden files/directories unless explicitly included
		if !opts.IncludeHidden && strings.HasPrefix(info.Name(), ".") && path != rootPath {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path != rootPath && isIgnored(info.Name(), ignoreDirs) {
				return filepath.SkipDir
			}
			return visitor(path, info)
		}

		for _, pattern := range opts.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, info.Name()); matched {
				return nil
			}
		}

		return visitor(path, info)
	})
}

func isIgnored(name string, dirs []string) bool {
	for _, ignore := range dirs {
		if name == ignore {
			return true
		}
	}
	return false
}
