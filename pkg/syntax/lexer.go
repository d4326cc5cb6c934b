package syntax

import (
	"fmt"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) is(text string) bool {
	return (t.kind == tokPunct || t.kind == tokIdent) && t.text == text
}

// multi-character operators, longest first
var operators = []string{
	"...?", "?..", "??=", "~/=",
	"...", "=>", "??", "?.", "==", "!=", "&&", "||", "..",
	"++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<=", "~/",
}

// lexer tokenizes Dart source. Strings (including interpolations) become a
// single token; comments are dropped but the lines they touch are recorded.
type lexer struct {
	src          []byte
	pos          int
	line         int
	tokens       []token
	commentLines map[int]bool
}

func lexDart(src []byte) ([]token, int, error) {
	lx := &lexer{src: src, line: 1, commentLines: make(map[int]bool)}
	if err := lx.run(); err != nil {
		return nil, 0, err
	}
	lx.tokens = append(lx.tokens, token{kind: tokEOF, line: lx.line})
	return lx.tokens, len(lx.commentLines), nil
}

func (lx *lexer) peek(offset int) byte {
	if lx.pos+offset < len(lx.src) {
		return lx.src[lx.pos+offset]
	}
	return 0
}

func (lx *lexer) run() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.line++
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			lx.pos++
		case c == '/' && lx.peek(1) == '/':
			lx.lineComment()
		case c == '/' && lx.peek(1) == '*':
			if err := lx.blockComment(); err != nil {
				return err
			}
		case c == 'r' && (lx.peek(1) == '\'' || lx.peek(1) == '"'):
			line := lx.line
			lx.pos++
			if err := lx.stringLiteral(true); err != nil {
				return err
			}
			lx.emit(tokString, "", line)
		case c == '\'' || c == '"':
			line := lx.line
			if err := lx.stringLiteral(false); err != nil {
				return err
			}
			lx.emit(tokString, "", line)
		case isIdentStart(c):
			start := lx.pos
			for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
				lx.pos++
			}
			lx.emit(tokIdent, string(lx.src[start:lx.pos]), lx.line)
		case isDigit(c):
			start := lx.pos
			for lx.pos < len(lx.src) {
				d := lx.src[lx.pos]
				if isIdentPart(d) || (d == '.' && isDigit(lx.peek(1))) {
					lx.pos++
					continue
				}
				break
			}
			lx.emit(tokNumber, string(lx.src[start:lx.pos]), lx.line)
		default:
			lx.punct()
		}
	}
	return nil
}

func (lx *lexer) emit(kind tokenKind, text string, line int) {
	lx.tokens = append(lx.tokens, token{kind: kind, text: text, line: line})
}

func (lx *lexer) punct() {
	for _, op := range operators {
		if lx.pos+len(op) <= len(lx.src) && string(lx.src[lx.pos:lx.pos+len(op)]) == op {
			lx.emit(tokPunct, op, lx.line)
			lx.pos += len(op)
			return
		}
	}
	lx.emit(tokPunct, string(lx.src[lx.pos]), lx.line)
	lx.pos++
}

func (lx *lexer) lineComment() {
	lx.commentLines[lx.line] = true
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
}

// blockComment consumes a /* */ comment; Dart block comments nest.
func (lx *lexer) blockComment() error {
	start := lx.line
	depth := 0
	for lx.pos < len(lx.src) {
		lx.commentLines[lx.line] = true
		switch {
		case lx.src[lx.pos] == '/' && lx.peek(1) == '*':
			depth++
			lx.pos += 2
		case lx.src[lx.pos] == '*' && lx.peek(1) == '/':
			depth--
			lx.pos += 2
			if depth == 0 {
				return nil
			}
		case lx.src[lx.pos] == '\n':
			lx.line++
			lx.pos++
		default:
			lx.pos++
		}
	}
	return fmt.Errorf("line %d: unterminated block comment", start)
}

// stringLiteral consumes a quoted literal starting at the opening quote.
func (lx *lexer) stringLiteral(raw bool) error {
	start := lx.line
	quote := lx.src[lx.pos]
	triple := lx.peek(1) == quote && lx.peek(2) == quote
	if triple {
		lx.pos += 3
	} else {
		lx.pos++
	}

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == quote && (!triple || (lx.peek(1) == quote && lx.peek(2) == quote)):
			if triple {
				lx.pos += 3
			} else {
				lx.pos++
			}
			return nil
		case c == '\n':
			if !triple {
				return fmt.Errorf("line %d: unterminated string", start)
			}
			lx.line++
			lx.pos++
		case c == '\\' && !raw:
			if lx.peek(1) == '\n' {
				lx.line++
			}
			lx.pos += 2
		case c == '$' && !raw && lx.peek(1) == '{':
			lx.pos += 2
			if err := lx.interpolation(); err != nil {
				return err
			}
		default:
			lx.pos++
		}
	}
	return fmt.Errorf("line %d: unterminated string", start)
}

// interpolation skips a ${...} expression, including nested strings.
func (lx *lexer) interpolation() error {
	start := lx.line
	depth := 1
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '{':
			depth++
			lx.pos++
		case c == '}':
			depth--
			lx.pos++
			if depth == 0 {
				return nil
			}
		case c == '\'' || c == '"':
			if err := lx.stringLiteral(false); err != nil {
				return err
			}
		case c == '\n':
			lx.line++
			lx.pos++
		default:
			lx.pos++
		}
	}
	return fmt.Errorf("line %d: unterminated interpolation", start)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
