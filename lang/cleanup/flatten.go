package cleanup

import "github.com/modestralts/flw0dec/lang/ast"

// FlattenConditionals turns "if c1: ... else: (if c2: ... else: ...)"
// into "if c1: ... elif c2: ... else: ..." wherever an if's else branch
// is a block containing nothing but another if, to a fixed point.
func FlattenConditionals(a *ast.ABST) {
	flattenBlock := func(block *ast.Block) bool {
		changed := false
		for _, c := range block.Children {
			stmt := a.Node(c)
			if stmt.Tag != "if" {
				continue
			}
			for iter := 0; iter < 1000; iter++ {
				if len(stmt.Vals) <= len(stmt.Children) {
					break
				}
				elseBlockID := ast.BlockID(stmt.Vals[len(stmt.Vals)-1])
				elseBlock := a.Block(elseBlockID)
				if len(elseBlock.Children) != 1 {
					break
				}
				elseStmt := a.Node(elseBlock.Children[0])
				if elseStmt.Tag != "if" {
					break
				}
				a.DeleteBlock(elseBlockID)
				stmt.Children = append(stmt.Children, elseStmt.Children...)
				stmt.Vals = append(stmt.Vals[:len(stmt.Vals)-1], elseStmt.Vals...)
				changed = true
			}
		}
		return changed
	}
	fixedPointBlockLoop(a, flattenBlock)
}
