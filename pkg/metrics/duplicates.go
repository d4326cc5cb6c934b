package metrics

import (
	"hash/fnv"
	"regexp"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/kite/pkg/syntax"
)

// DuplicateWindow is the number of significant lines compared as one block.
const DuplicateWindow = 6

const maxDuplicates = 50

// sourceText is the raw text of an analyzed file.
type sourceText struct {
	path     string
	language string
	content  string
}

type window struct {
	hash uint64
	line int
}

// significantLines returns trimmed lines with blank, comment-only and
// brace-only lines removed, together with their 1-based line numbers.
func significantLines(content string) ([]string, []int) {
	var lines []string
	var numbers []int
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*") {
			continue
		}
		if strings.Trim(line, "{}()[];,") == "" {
			continue
		}
		lines = append(lines, line)
		numbers = append(numbers, i+1)
	}
	return lines, numbers
}

func windows(content string) []window {
	lines, numbers := significantLines(content)
	if len(lines) < DuplicateWindow {
		return nil
	}
	out := make([]window, 0, len(lines)-DuplicateWindow+1)
	for i := 0; i+DuplicateWindow <= len(lines); i++ {
		h := fnv.New64a()
		for _, l := range lines[i : i+DuplicateWindow] {
			h.Write([]byte(l))
			h.Write([]byte{'\n'})
		}
		out = append(out, window{hash: h.Sum64(), line: numbers[i]})
	}
	return out
}

// findDuplicates hashes sliding windows of significant lines across files.
// Overlapping windows of one longer copy are reported once, at the window
// where the copy starts.
func findDuplicates(sources []sourceText) []Duplicate {
	perFile := make([][]window, len(sources))
	seen := make(map[uint64][]Location)
	for i, src := range sources {
		perFile[i] = windows(src.content)
		for _, w := range perFile[i] {
			seen[w.hash] = append(seen[w.hash], Location{File: src.path, Line: w.line})
		}
	}

	reported := make(map[uint64]bool)
	var dups []Duplicate
	for i, src := range sources {
		for j, w := range perFile[i] {
			if len(seen[w.hash]) < 2 || reported[w.hash] {
				continue
			}
			if j > 0 && len(seen[perFile[i][j-1].hash]) >= 2 {
				continue
			}
			if seen[w.hash][0].File != src.path || seen[w.hash][0].Line != w.line {
				continue
			}
			reported[w.hash] = true
			dups = append(dups, Duplicate{Lines: DuplicateWindow, Locations: seen[w.hash]})
			if len(dups) >= maxDuplicates {
				return dups
			}
		}
	}
	return dups
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// findDeadCode reports private top-level functions whose name appears only
// once (at the declaration) across all analyzed files of the same language.
func findDeadCode(sources []sourceText, files map[string]*syntax.File) []DeadCode {
	counts := make(map[string]map[string]int)
	for _, src := range sources {
		if counts[src.language] == nil {
			counts[src.language] = make(map[string]int)
		}
		for _, ident := range identifierPattern.FindAllString(src.content, -1) {
			counts[src.language][ident]++
		}
	}

	var dead []DeadCode
	for _, src := range sources {
		f, ok := files[src.path]
		if !ok {
			continue
		}
		for _, u := range f.PrivateTopLevel() {
			if counts[src.language][u.Name] == 1 {
				dead = append(dead, DeadCode{Name: u.Name, Location: Location{File: src.path, Line: u.Line}})
			}
		}
	}

	sort.SliceStable(dead, func(i, j int) bool {
		if dead[i].Location.File != dead[j].Location.File {
			return dead[i].Location.File < dead[j].Location.File
		}
		return dead[i].Location.Line < dead[j].Location.Line
	})
	return dead
}
