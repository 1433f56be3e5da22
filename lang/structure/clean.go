package structure

import "github.com/modestralts/flw0dec/lang/ast"

// CleanLoops moves continues that can safely escape a conditional down
// past it, drops now-redundant continues that already end a loop body,
// and — for loops with no remaining continue — folds the update block
// into the end of the body, since nothing needs to jump back to it
// separately anymore.
func CleanLoops(a *ast.ABST) {
	chainEnd := func(idx int) int {
		end := idx
		for {
			block := a.Block(ast.BlockID(end))
			if len(block.Children) == 0 {
				return end
			}
			last := a.Node(block.Children[len(block.Children)-1])
			if last.Tag != "goto" {
				return end
			}
			end = int(last.Vals[0])
		}
	}

	var moveSafeContinues func(block *ast.Block)
	moveSafeContinues = func(block *ast.Block) {
		for idx := 0; idx < len(block.Children); idx++ {
			child := a.Node(block.Children[idx])
			if child.Tag != "if" {
				continue
			}
			for _, v := range child.Vals {
				moveSafeContinues(a.Block(ast.BlockID(v)))
			}

			chainEnds := make([]int, len(child.Vals))
			for i, v := range child.Vals {
				chainEnds[i] = chainEnd(int(v))
			}

			allBroken := true
			for _, ce := range chainEnds {
				branch := a.Block(ast.BlockID(ce))
				if len(branch.Children) == 0 {
					allBroken = false
					break
				}
				last := a.Node(branch.Children[len(branch.Children)-1])
				switch last.Tag {
				case "return", "break", "continue", "reallygoto":
				default:
					allBroken = false
				}
				if !allBroken {
					break
				}
			}
			if !allBroken {
				continue
			}

			for _, ce := range chainEnds {
				branch := a.Block(ast.BlockID(ce))
				if len(branch.Children) == 0 {
					continue
				}
				lastID := branch.Children[len(branch.Children)-1]
				if a.Node(lastID).Tag == "continue" {
					a.DeleteNode(lastID)
					branch.Children = branch.Children[:len(branch.Children)-1]
				}
			}

			for _, ptr := range block.Children[idx+1:] {
				a.DeleteNode(ptr)
			}
			continueStmt := a.NewNode("continue", nil, nil)
			block.Children = append(block.Children[:idx+1], continueStmt)
		}
	}

	forEachLoop := func(visit func(stmt *ast.Node)) {
		for i := 0; i < a.NumBlocks(); i++ {
			if !a.BlockUsed(ast.BlockID(i)) {
				continue
			}
			block := a.Block(ast.BlockID(i))
			for _, c := range block.Children {
				stmt := a.Node(c)
				if stmt.Tag == "loop" {
					visit(stmt)
				}
			}
		}
	}

	forEachLoop(func(stmt *ast.Node) {
		moveSafeContinues(a.Block(ast.BlockID(stmt.Vals[0])))
	})

	forEachLoop(func(stmt *ast.Node) {
		inner := a.Block(ast.BlockID(stmt.Vals[0]))
		if len(inner.Children) == 0 {
			return
		}
		lastID := inner.Children[len(inner.Children)-1]
		if a.Node(lastID).Tag == "continue" {
			inner.Children = inner.Children[:len(inner.Children)-1]
		}
	})

	var blockHasContinues func(block *ast.Block) bool
	stmtHasContinues := func(stmt *ast.Node) bool {
		switch stmt.Tag {
		case "continue":
			return true
		case "goto", "if":
			for _, v := range stmt.Vals {
				if blockHasContinues(a.Block(ast.BlockID(v))) {
					return true
				}
			}
		}
		return false
	}
	blockHasContinues = func(block *ast.Block) bool {
		for _, c := range block.Children {
			if stmtHasContinues(a.Node(c)) {
				return true
			}
		}
		return false
	}

	forEachLoop(func(stmt *ast.Node) {
		if len(stmt.Vals) != 3 {
			return
		}
		inner := a.Block(ast.BlockID(stmt.Vals[0]))
		if blockHasContinues(inner) {
			return
		}
		goCont := a.NewNode("goto", []int64{stmt.Vals[2]}, nil)
		inner.Children = append(inner.Children, goCont)
		stmt.Vals = stmt.Vals[:2]
	})
}

// CleanEmptyBlocks removes gotos/if-branches that target an empty block
// and drops a loop's update step if it turned out empty, to a fixed
// point (earlier removals can empty out a block that only existed to
// hold them).
func CleanEmptyBlocks(a *ast.ABST) {
	isEmpty := func(blockNum int) bool {
		return len(a.Block(ast.BlockID(blockNum)).Children) == 0
	}

	for {
		changed := false
		for i := 0; i < a.NumBlocks(); i++ {
			if !a.BlockUsed(ast.BlockID(i)) {
				continue
			}
			block := a.Block(ast.BlockID(i))
			for idx := 0; idx < len(block.Children); idx++ {
				stmt := a.Node(block.Children[idx])
				switch stmt.Tag {
				case "goto":
					dest := int(stmt.Vals[0])
					if isEmpty(dest) {
						block.Children = append(block.Children[:idx], block.Children[idx+1:]...)
						a.DeleteBlock(ast.BlockID(dest))
						changed = true
						idx--
					}
				case "if":
					if len(stmt.Vals) == 1 {
						dest := int(stmt.Vals[0])
						if isEmpty(dest) {
							block.Children = append(block.Children[:idx], block.Children[idx+1:]...)
							a.DeleteBlock(ast.BlockID(dest))
							changed = true
							idx--
						}
						continue
					}
					tBlock, fBlock := int(stmt.Vals[0]), int(stmt.Vals[1])
					if isEmpty(fBlock) {
						stmt.Vals = stmt.Vals[:1]
						a.DeleteBlock(ast.BlockID(fBlock))
						changed = true
					} else if isEmpty(tBlock) {
						stmt.Children[0] = a.NegateBool(stmt.Children[0])
						stmt.Vals = stmt.Vals[1:]
						a.DeleteBlock(ast.BlockID(tBlock))
						changed = true
					}
				case "loop":
					if len(stmt.Vals) == 3 {
						uBlock := int(stmt.Vals[2])
						if isEmpty(uBlock) {
							stmt.Vals = stmt.Vals[:2]
							a.DeleteBlock(ast.BlockID(uBlock))
							changed = true
						}
					}
				}
			}
		}
		if !changed {
			break
		}
	}
}
