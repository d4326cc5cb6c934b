// Package syntax parses source files into a small control-flow tree.
//
// The tree only keeps what complexity counting needs: function units and
// the branching, looping, case, catch and ternary constructs nested inside
// them. Dart is read by a hand-written lexer and block parser; Go is read
// through go/parser and mapped onto the same node kinds.
package syntax

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

// Kind identifies a node in the control-flow tree.
type Kind int

const (
	KindFile Kind = iota
	KindUnit
	KindBranch
	KindLoop
	KindSwitch
	KindCase
	KindCatch
	KindTernary
	KindBlock
)

var kindNames = map[Kind]string{
	KindFile:    "file",
	KindUnit:    "unit",
	KindBranch:  "branch",
	KindLoop:    "loop",
	KindSwitch:  "switch",
	KindCase:    "case",
	KindCatch:   "catch",
	KindTernary: "ternary",
	KindBlock:   "block",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Node is one construct in the tree.
type Node struct {
	Kind     Kind
	Name     string // units only
	Line     int
	TopLevel bool // units declared outside any type
	Default  bool // default/wildcard case arms
	Children []*Node
}

// File is a parsed source file.
type File struct {
	Path         string
	Language     string
	Root         *Node
	Lines        int
	CommentLines int
}

// ErrUnsupported is returned for files in a language without a parser.
var ErrUnsupported = errors.New("unsupported language")

// Parse dispatches on the file extension.
func Parse(path string, src []byte) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dart":
		return ParseDart(path, src)
	case ".go":
		return ParseGo(path, src)
	default:
		return nil, ErrUnsupported
	}
}

// Units returns the function units of the file in source order.
func (f *File) Units() []*Node {
	if f == nil || f.Root == nil {
		return nil
	}
	var units []*Node
	for _, n := range f.Root.Children {
		if n.Kind == KindUnit {
			units = append(units, n)
		}
	}
	return units
}

// PrivateTopLevel returns top-level units that are not visible outside the
// file's library (Dart) or package (Go).
func (f *File) PrivateTopLevel() []*Node {
	var out []*Node
	for _, u := range f.Units() {
		if u.TopLevel && IsPrivateName(f.Language, u.Name) {
			out = append(out, u)
		}
	}
	return out
}

// IsPrivateName applies the language's visibility rule to a declared name.
func IsPrivateName(language, name string) bool {
	if name == "" {
		return false
	}
	switch language {
	case "dart":
		return strings.HasPrefix(name, "_")
	case "go":
		if name == "main" || name == "init" || name == "_" {
			return false
		}
		r := []rune(name)[0]
		return !unicode.IsUpper(r)
	default:
		return false
	}
}

func countSourceLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := strings.Count(string(src), "\n")
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
