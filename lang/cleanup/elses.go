package cleanup

import "github.com/modestralts/flw0dec/lang/ast"

// checkAlwaysReturns reports whether every path through blockID leaves
// it by return, reallygoto, break or continue rather than falling out of
// it. A trailing "goto" is followed into its target block and a trailing
// "if" counts only when it has an else and every one of its branches
// does; decompile_ai.py's check_always_returns never actually recurses
// (it tests the function value instead of calling it), which this check
// does not reproduce.
func checkAlwaysReturns(a *ast.ABST, blockID ast.BlockID) bool {
	block := a.Block(blockID)
	if len(block.Children) == 0 {
		return false
	}
	last := a.Node(block.Children[len(block.Children)-1])
	switch last.Tag {
	case "return", "reallygoto", "break", "continue":
		return true
	case "goto":
		return checkAlwaysReturns(a, ast.BlockID(last.Vals[0]))
	case "if":
		if len(last.Vals) <= len(last.Children) {
			return false
		}
		for _, v := range last.Vals {
			if !checkAlwaysReturns(a, ast.BlockID(v)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// EliminateUselessElses hoists an else branch's statements up into its
// enclosing block whenever every branch before the else always returns,
// since control can never actually fall through to the else's successor
// in that case.
func EliminateUselessElses(a *ast.ABST) {
	eliminateBlockElses := func(block *ast.Block) bool {
		for idx, childID := range block.Children {
			child := a.Node(childID)
			if child.Tag != "if" || len(child.Vals) <= len(child.Children) {
				continue
			}
			allReturn := true
			for _, v := range child.Vals[:len(child.Vals)-1] {
				if !checkAlwaysReturns(a, ast.BlockID(v)) {
					allReturn = false
					break
				}
			}
			if !allReturn {
				continue
			}

			elseBlockID := ast.BlockID(child.Vals[len(child.Vals)-1])
			child.Vals = child.Vals[:len(child.Vals)-1]

			insertPos := idx + 1
			elseChildren := a.Block(elseBlockID).Children
			merged := make([]ast.NodeID, 0, len(block.Children)+len(elseChildren))
			merged = append(merged, block.Children[:insertPos]...)
			merged = append(merged, elseChildren...)
			merged = append(merged, block.Children[insertPos:]...)
			block.Children = merged

			a.DeleteBlock(elseBlockID)
			return true
		}
		return false
	}
	fixedPointBlockLoop(a, eliminateBlockElses)
}
