package structure

import "github.com/modestralts/flw0dec/lang/ast"

// ClearSingleGotos removes every block whose only statement is a goto,
// redirecting any if/goto/loop branch that targeted it straight to its
// destination.
func ClearSingleGotos(a *ast.ABST) {
	removeSingleGoto := func(comesFrom, goesTo int) {
		for idx := 0; idx < a.NumBlocks(); idx++ {
			if !a.BlockUsed(ast.BlockID(idx)) {
				continue
			}
			block := a.Block(ast.BlockID(idx))
			if len(block.Children) == 0 {
				continue
			}
			stmt := a.Node(block.Children[len(block.Children)-1])
			if stmt.Tag != "if" && stmt.Tag != "goto" && stmt.Tag != "loop" {
				continue
			}
			for i, v := range stmt.Vals {
				if int(v) == comesFrom {
					stmt.Vals[i] = int64(goesTo)
				}
			}
		}
		a.DeleteBlock(ast.BlockID(comesFrom))
	}

	for idx := 0; idx < a.NumBlocks(); idx++ {
		if !a.BlockUsed(ast.BlockID(idx)) {
			continue
		}
		block := a.Block(ast.BlockID(idx))
		if len(block.Children) != 1 {
			continue
		}
		stmt := a.Node(block.Children[0])
		if stmt.Tag == "goto" {
			removeSingleGoto(idx, int(stmt.Vals[0]))
		}
	}
}
