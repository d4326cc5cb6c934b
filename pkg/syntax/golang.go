package syntax

import (
	"go/ast"
	"go/parser"
	gotoken "go/token"
)

// ParseGo parses Go source with go/parser and maps it onto the tree.
// Function literals belong to the function that contains them.
func ParseGo(path string, src []byte) (*File, error) {
	fset := gotoken.NewFileSet()
	f, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	root := &Node{Kind: KindFile, Line: 1}
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		root.Children = append(root.Children, &Node{
			Kind:     KindUnit,
			Name:     funcName(fn),
			Line:     fset.Position(fn.Pos()).Line,
			TopLevel: fn.Recv == nil,
			Children: goStmts(fset, fn.Body.List),
		})
	}

	commentLines := make(map[int]bool)
	for _, group := range f.Comments {
		start := fset.Position(group.Pos()).Line
		end := fset.Position(group.End()).Line
		for line := start; line <= end; line++ {
			commentLines[line] = true
		}
	}

	return &File{
		Path:         path,
		Language:     "go",
		Root:         root,
		Lines:        countSourceLines(src),
		CommentLines: len(commentLines),
	}, nil
}

// funcName returns "Recv.Name" for methods and "Name" for functions.
func funcName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.IndexExpr:
		expr = t.X
	case *ast.IndexListExpr:
		expr = t.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name + "." + fn.Name.Name
	}
	return fn.Name.Name
}

func goStmts(fset *gotoken.FileSet, list []ast.Stmt) []*Node {
	var nodes []*Node
	for _, s := range list {
		nodes = append(nodes, goStmt(fset, s)...)
	}
	return nodes
}

func goStmt(fset *gotoken.FileSet, s ast.Stmt) []*Node {
	line := fset.Position(s.Pos()).Line

	switch s := s.(type) {
	case *ast.IfStmt:
		return goIf(fset, s)
	case *ast.ForStmt:
		loop := &Node{Kind: KindLoop, Line: line, Children: goStmts(fset, s.Body.List)}
		return append(funcLits(fset, s.Init, s.Cond, s.Post), loop)
	case *ast.RangeStmt:
		loop := &Node{Kind: KindLoop, Line: line, Children: goStmts(fset, s.Body.List)}
		return append(funcLits(fset, s.X), loop)
	case *ast.SwitchStmt:
		return append(funcLits(fset, s.Init, s.Tag), goSwitch(fset, line, s.Body))
	case *ast.TypeSwitchStmt:
		return append(funcLits(fset, s.Init, s.Assign), goSwitch(fset, line, s.Body))
	case *ast.SelectStmt:
		sw := &Node{Kind: KindSwitch, Line: line}
		for _, stmt := range s.Body.List {
			cc, ok := stmt.(*ast.CommClause)
			if !ok {
				continue
			}
			sw.Children = append(sw.Children, &Node{
				Kind:     KindCase,
				Line:     fset.Position(cc.Pos()).Line,
				Default:  cc.Comm == nil,
				Children: goStmts(fset, cc.Body),
			})
		}
		return []*Node{sw}
	case *ast.BlockStmt:
		return goStmts(fset, s.List)
	case *ast.LabeledStmt:
		return goStmt(fset, s.Stmt)
	default:
		return funcLits(fset, s)
	}
}

// goIf flattens an if/else-if chain into sibling branches; a final else
// block nests under the last branch. Closures in a header come before the
// branch they guard.
func goIf(fset *gotoken.FileSet, s *ast.IfStmt) []*Node {
	var out []*Node
	for cur := s; cur != nil; {
		out = append(out, funcLits(fset, cur.Init, cur.Cond)...)
		b := &Node{Kind: KindBranch, Line: fset.Position(cur.Pos()).Line, Children: goStmts(fset, cur.Body.List)}
		out = append(out, b)

		switch e := cur.Else.(type) {
		case *ast.IfStmt:
			cur = e
		case *ast.BlockStmt:
			b.Children = append(b.Children, &Node{Kind: KindBlock, Line: fset.Position(e.Pos()).Line, Children: goStmts(fset, e.List)})
			cur = nil
		default:
			cur = nil
		}
	}
	return out
}

func goSwitch(fset *gotoken.FileSet, line int, body *ast.BlockStmt) *Node {
	sw := &Node{Kind: KindSwitch, Line: line}
	for _, stmt := range body.List {
		cc, ok := stmt.(*ast.CaseClause)
		if !ok {
			continue
		}
		sw.Children = append(sw.Children, &Node{
			Kind:     KindCase,
			Line:     fset.Position(cc.Pos()).Line,
			Default:  cc.List == nil,
			Children: goStmts(fset, cc.Body),
		})
	}
	return sw
}

// funcLits collects the constructs inside function literals of simple
// statements and statement headers (go func() {...}(), callbacks, deferred
// closures). Absent clauses are nil and skipped.
func funcLits(fset *gotoken.FileSet, roots ...ast.Node) []*Node {
	var nodes []*Node
	for _, root := range roots {
		if root == nil {
			continue
		}
		ast.Inspect(root, func(n ast.Node) bool {
			if lit, ok := n.(*ast.FuncLit); ok {
				nodes = append(nodes, goStmts(fset, lit.Body.List)...)
				return false
			}
			return true
		})
	}
	return nodes
}
