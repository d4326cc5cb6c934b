package syntax

import (
	"fmt"
	"strings"
)

// notUnitNames are identifiers that may be followed by '(' without
// declaring a function.
var notUnitNames = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"assert": true, "return": true, "super": true, "this": true, "new": true,
	"throw": true, "await": true, "yield": true, "do": true, "try": true,
	"else": true, "on": true, "const": true, "late": true,
}

var typeKeywords = map[string]bool{
	"class": true, "mixin": true, "enum": true, "extension": true,
}

var openers = map[string]string{"{": "}", "(": ")", "[": "]"}

// ParseDart parses Dart source into a control-flow tree. It recognises
// declarations and control constructs only; expressions are skimmed.
func ParseDart(path string, src []byte) (*File, error) {
	toks, comments, err := lexDart(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p := &dartParser{toks: toks}
	root := &Node{Kind: KindFile, Line: 1}
	p.decls(root, "", false)
	if p.err != nil {
		return nil, fmt.Errorf("%s: %w", path, p.err)
	}

	return &File{
		Path:         path,
		Language:     "dart",
		Root:         root,
		Lines:        countSourceLines(src),
		CommentLines: comments,
	}, nil
}

type dartParser struct {
	toks []token
	pos  int
	err  error
}

func (p *dartParser) cur() token { return p.at(0) }

func (p *dartParser) at(offset int) token {
	i := p.pos + offset
	if i < 0 {
		return token{}
	}
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *dartParser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *dartParser) eof() bool { return p.cur().kind == tokEOF }

func (p *dartParser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("line %d: %s", p.cur().line, fmt.Sprintf(format, args...))
	}
}

func isOpener(t token) bool {
	_, ok := openers[t.text]
	return t.kind == tokPunct && ok
}

func isCloser(t token) bool {
	return t.kind == tokPunct && (t.text == "}" || t.text == ")" || t.text == "]")
}

// decls reads declarations until EOF or, when nested, the closing brace.
func (p *dartParser) decls(parent *Node, owner string, nested bool) {
	for p.err == nil {
		t := p.cur()
		switch {
		case t.kind == tokEOF:
			if nested {
				p.fail("unexpected end of file")
			}
			return
		case isCloser(t):
			if nested && t.text == "}" {
				p.advance()
				return
			}
			p.fail("unexpected %q", t.text)
			return
		case t.kind == tokIdent && typeKeywords[t.text]:
			p.typeDecl(parent)
		case t.is("="):
			p.advance()
			p.skipUntil(func(t token) bool { return t.is(";") })
			if p.cur().is(";") {
				p.advance()
			}
		case isOpener(t):
			p.skipGroup()
		case t.is("get") && p.at(1).kind == tokIdent && (p.at(2).is("{") || p.at(2).is("=>") || p.at(2).is("async")):
			name := p.at(1).text
			line := t.line
			p.advance()
			p.advance()
			p.unitBody(parent, qualify(owner, name), owner == "", line)
		case t.is("operator"):
			line := t.line
			p.advance()
			name := "operator"
			for !p.eof() && !p.cur().is("(") && !p.cur().is(";") {
				name += p.cur().text
				p.advance()
			}
			if p.cur().is("(") {
				p.skipGroup()
				p.unitBody(parent, qualify(owner, name), owner == "", line)
			}
		case t.kind == tokIdent && !notUnitNames[t.text] && p.at(1).is("("):
			p.function(parent, owner)
		case t.kind == tokIdent && !notUnitNames[t.text] && p.at(1).is("<") && p.genericFunction():
			p.function(parent, owner)
		default:
			p.advance()
		}
	}
}

// genericFunction reports whether the identifier at the cursor is followed
// by a type parameter list and a parameter list.
func (p *dartParser) genericFunction() bool {
	depth := 0
	for i := 1; ; i++ {
		t := p.at(i)
		switch {
		case t.kind == tokEOF, t.is(";"), t.is("{"), t.is("="):
			return false
		case t.is("<"):
			depth++
		case t.is(">"):
			depth--
			if depth == 0 {
				return p.at(i + 1).is("(")
			}
		}
	}
}

// function handles "name(...)" at declaration level, which is a unit when a
// body follows the parameter list.
func (p *dartParser) function(parent *Node, owner string) {
	t := p.cur()
	name := qualify(owner, t.text)
	if p.at(-1).is(".") && p.at(-2).kind == tokIdent {
		// named constructor or factory: Type.name
		name = qualify(owner, p.at(-2).text+"."+t.text)
		if p.at(-2).text == owner {
			name = owner + "." + t.text
		}
	}
	p.advance()
	if p.cur().is("<") {
		for !p.eof() && !p.cur().is("(") {
			p.advance()
		}
	}
	p.skipGroup()

	if p.cur().is(":") {
		// constructor initializer list
		p.advance()
		p.skipUntil(func(t token) bool { return t.is("{") || t.is(";") || t.is("=>") })
	}
	p.unitBody(parent, name, owner == "", t.line)
}

// unitBody parses an optional function body at the cursor. Without a body
// (abstract members, redirecting constructors) nothing is recorded.
func (p *dartParser) unitBody(parent *Node, name string, topLevel bool, line int) {
	for p.cur().is("async") || p.cur().is("sync") || p.cur().is("*") {
		p.advance()
	}

	unit := &Node{Kind: KindUnit, Name: name, Line: line, TopLevel: topLevel}

	switch {
	case p.cur().is("{"):
		unit.Children = p.group()
	case p.cur().is("=>"):
		p.advance()
		unit.Children = p.until(func(t token) bool { return t.is(";") })
		if p.cur().is(";") {
			p.advance()
		}
	default:
		return
	}
	parent.Children = append(parent.Children, unit)
}

func qualify(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "." + name
}

// unnamedExtension owns the members of an extension without a name.
const unnamedExtension = "<extension>"

// typeDecl handles class, mixin, enum and extension declarations.
func (p *dartParser) typeDecl(parent *Node) {
	for p.cur().kind == tokIdent && typeKeywords[p.cur().text] {
		p.advance()
	}
	name := ""
	switch {
	case p.cur().is("on"):
		// extension on String { ... }
		name = unnamedExtension
	case p.cur().kind == tokIdent:
		name = p.cur().text
	}

	p.skipUntil(func(t token) bool { return t.is("{") || t.is(";") })
	if p.cur().is("{") {
		p.advance()
		p.decls(parent, name, true)
	} else if p.cur().is(";") {
		p.advance()
	}
}

// skipUntil advances to the first token matching stop outside any group.
func (p *dartParser) skipUntil(stop func(token) bool) {
	for p.err == nil && !p.eof() {
		t := p.cur()
		if stop(t) || isCloser(t) {
			return
		}
		if isOpener(t) {
			p.skipGroup()
			continue
		}
		p.advance()
	}
}

// skipGroup consumes a balanced group without building nodes.
func (p *dartParser) skipGroup() {
	p.group()
}

// group consumes a balanced (), [] or {} group starting at the cursor and
// returns the constructs found inside.
func (p *dartParser) group() []*Node {
	open := p.cur()
	want, ok := openers[open.text]
	if !ok || open.kind != tokPunct {
		return nil
	}
	p.advance()
	nodes := p.until(nil)
	switch {
	case p.eof():
		p.fail("unexpected end of file, %q opened on line %d is not closed", open.text, open.line)
	case p.cur().text != want:
		p.fail("expected %q, found %q", want, p.cur().text)
	default:
		p.advance()
	}
	return nodes
}

// until parses a statement or expression sequence, stopping before a token
// matching stop, before any unmatched closer, or at EOF.
func (p *dartParser) until(stop func(token) bool) []*Node {
	var nodes []*Node
	for p.err == nil && !p.eof() {
		t := p.cur()
		if stop != nil && stop(t) {
			return nodes
		}
		if isCloser(t) {
			return nodes
		}
		if found, ok := p.construct(); ok {
			nodes = append(nodes, found...)
			continue
		}
		switch {
		case isOpener(t):
			nodes = append(nodes, p.group()...)
		case t.is("?"):
			if p.isTernary() {
				nodes = append(nodes, &Node{Kind: KindTernary, Line: t.line})
			}
			p.advance()
		default:
			p.advance()
		}
	}
	return nodes
}

// construct parses a control construct at the cursor, if there is one.
func (p *dartParser) construct() ([]*Node, bool) {
	t := p.cur()
	if t.kind != tokIdent {
		return nil, false
	}
	next := p.at(1)
	switch {
	case t.text == "if" && next.is("("):
		return p.ifChain(), true
	case (t.text == "for" || t.text == "while") && next.is("("):
		p.advance()
		header := p.group()
		loop := &Node{Kind: KindLoop, Line: t.line, Children: p.body()}
		return append(header, loop), true
	case t.text == "do" && !next.is("("):
		p.advance()
		loop := &Node{Kind: KindLoop, Line: t.line, Children: p.body()}
		nodes := []*Node{loop}
		if p.cur().is("while") && p.at(1).is("(") {
			p.advance()
			nodes = append(nodes, p.group()...)
		}
		if p.cur().is(";") {
			p.advance()
		}
		return nodes, true
	case t.text == "switch" && next.is("("):
		return p.switchConstruct(), true
	case t.text == "try" && next.is("{"):
		return p.tryConstruct(), true
	}
	return nil, false
}

// body parses the body of a control construct: a block, a nested
// construct, or a single statement or collection element.
func (p *dartParser) body() []*Node {
	if p.cur().is("{") {
		return p.group()
	}
	if nodes, ok := p.construct(); ok {
		return nodes
	}
	nodes := p.until(func(t token) bool {
		return t.is(";") || t.is(",") || t.is("else")
	})
	if p.cur().is(";") {
		p.advance()
	}
	return nodes
}

// ifChain parses if/else-if/else. Each else-if becomes a sibling branch so
// a chain does not nest deeper with every arm.
func (p *dartParser) ifChain() []*Node {
	var out []*Node
	var last *Node
	for {
		line := p.cur().line
		p.advance() // if
		out = append(out, p.group()...)
		last = &Node{Kind: KindBranch, Line: line, Children: p.body()}
		out = append(out, last)

		if !p.cur().is("else") {
			return out
		}
		p.advance()
		if p.cur().is("if") && p.at(1).is("(") {
			continue
		}
		last.Children = append(last.Children, &Node{Kind: KindBlock, Line: p.cur().line, Children: p.body()})
		return out
	}
}

func (p *dartParser) switchConstruct() []*Node {
	line := p.cur().line
	p.advance() // switch
	out := p.group()
	if !p.cur().is("{") {
		return out
	}
	sw := &Node{Kind: KindSwitch, Line: line}
	open := p.cur()
	p.advance()

	if p.cur().is("case") || p.cur().is("default") || p.cur().is("}") {
		p.caseClauses(sw)
	} else {
		p.switchArms(sw)
	}

	switch {
	case p.eof():
		p.fail("unexpected end of file, switch opened on line %d is not closed", open.line)
	case p.cur().is("}"):
		p.advance()
	default:
		p.fail("expected \"}\", found %q", p.cur().text)
	}
	return append(out, sw)
}

func isCaseLabel(t token) bool {
	return t.is("case") || t.is("default")
}

// caseClauses parses the statement form: case pattern: statements.
func (p *dartParser) caseClauses(sw *Node) {
	for p.err == nil && !p.eof() {
		t := p.cur()
		if isCloser(t) {
			return
		}
		if !isCaseLabel(t) {
			sw.Children = append(sw.Children, p.until(isCaseLabel)...)
			continue
		}
		p.advance()
		c := &Node{Kind: KindCase, Line: t.line, Default: t.text == "default"}
		p.skipUntil(func(t token) bool { return t.is(":") })
		if p.cur().is(":") {
			p.advance()
		}
		c.Children = p.until(isCaseLabel)
		sw.Children = append(sw.Children, c)
	}
}

// switchArms parses the expression form: pattern => expression, ...
func (p *dartParser) switchArms(sw *Node) {
	for p.err == nil && !p.eof() && !p.cur().is("}") {
		line := p.cur().line
		var pattern []string
		for p.err == nil && !p.eof() && !p.cur().is("=>") && !isCloser(p.cur()) {
			if isOpener(p.cur()) {
				pattern = append(pattern, p.cur().text)
				p.skipGroup()
				continue
			}
			pattern = append(pattern, p.cur().text)
			p.advance()
		}
		if !p.cur().is("=>") {
			return
		}
		p.advance()
		c := &Node{Kind: KindCase, Line: line, Default: strings.Join(pattern, " ") == "_"}
		c.Children = p.until(func(t token) bool { return t.is(",") })
		if p.cur().is(",") {
			p.advance()
		}
		sw.Children = append(sw.Children, c)
	}
}

// tryConstruct parses try/on/catch/finally. The try and finally blocks do
// not nest; each handler is a catch node.
func (p *dartParser) tryConstruct() []*Node {
	p.advance() // try
	out := p.group()
	for p.err == nil {
		t := p.cur()
		switch {
		case t.is("on"):
			p.advance()
			p.skipUntil(func(t token) bool { return t.is("catch") || t.is("{") })
			if p.cur().is("catch") {
				p.advance()
				p.skipGroup()
			}
			out = append(out, &Node{Kind: KindCatch, Line: t.line, Children: p.group()})
		case t.is("catch") && p.at(1).is("("):
			p.advance()
			p.skipGroup()
			out = append(out, &Node{Kind: KindCatch, Line: t.line, Children: p.group()})
		case t.is("finally") && p.at(1).is("{"):
			p.advance()
			out = append(out, p.group()...)
		default:
			return out
		}
	}
	return out
}

// isTernary decides whether the '?' at the cursor starts a conditional
// expression rather than a nullable type annotation. It is a conditional
// when a ':' follows before the enclosing statement or element ends.
func (p *dartParser) isTernary() bool {
	next := p.at(1)
	if next.kind == tokEOF {
		return false
	}
	if next.kind == tokPunct {
		switch next.text {
		case ">", ",", ")", ";", "]", "}", "=":
			return false
		}
	}

	prev := p.at(-1)
	if (prev.kind == tokIdent || prev.is(">") || prev.is(")")) && next.kind == tokIdent {
		after := p.at(2)
		switch {
		case after.is("="), after.is(";"), after.is(","), after.is(")"), after.is("}"), after.is("in"):
			return false
		}
	}

	depth := 0
	for i := 1; ; i++ {
		t := p.at(i)
		switch {
		case t.kind == tokEOF:
			return false
		case isOpener(t):
			depth++
		case isCloser(t):
			if depth == 0 {
				return false
			}
			depth--
		case depth == 0 && t.is(":"):
			return true
		case depth == 0 && (t.is(";") || t.is(",")):
			return false
		}
	}
}
