package structure

import "github.com/modestralts/flw0dec/lang/ast"

// HandleUndirectedCycles merges every block with more than one
// predecessor into the predecessors' lowest common ancestor, in reverse
// topological order so a block already merged away is never merged
// into. This resolves cycles in the underlying undirected graph that
// HandleDirectedCycles leaves behind (two structured branches rejoining
// at the same block looks, to an undirected walk, like a cycle even
// though there is no back edge). It must run after HandleDirectedCycles
// and before any conditional-flattening pass, and is skipped entirely
// for handwritten sources (Build's handwritten flag).
func HandleUndirectedCycles(a *ast.ABST) {
	preds := make(map[int][]int, a.NumBlocks())
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
		for _, v := range stmt.Vals {
			preds[int(v)] = append(preds[int(v)], idx)
		}
	}

	// lca2 walks each block towards the root (its procedure's entry,
	// picking an arbitrary predecessor at each step) until the two paths
	// meet, matching decompile_ai.py's lca2 exactly: this is a property
	// of the loop-free, if-else-shaped graph HandleDirectedCycles leaves
	// behind, not a general dominator-tree LCA.
	lca2 := func(b1, b2 int) int {
		path := []int{b1}
		cur := b1
		for {
			if _, isEntry := a.ProcedureInfo[cur]; isEntry {
				break
			}
			cur = preds[cur][0]
			path = append(path, cur)
		}
		cur = b2
		for !containsVal64(path, cur) {
			cur = preds[cur][0]
		}
		return cur
	}

	var lca func(blocks []int) int
	lca = func(blocks []int) int {
		if len(blocks) == 1 {
			return blocks[0]
		}
		var reduced []int
		i := 0
		for ; i+1 < len(blocks); i += 2 {
			reduced = append(reduced, lca2(blocks[i], blocks[i+1]))
		}
		if i < len(blocks) {
			reduced = append(reduced, blocks[len(blocks)-1])
		}
		return lca(reduced)
	}

	// Reverse topological sort via DFS (Tarjan's insert-at-front scheme);
	// this relies on the graph being acyclic at this point (directed
	// cycles have already been turned into loop constructs), exactly as
	// decompile_ai.py's comment notes.
	var revTopSort []int
	marked := map[int]bool{}
	var visit func(b int)
	visit = func(b int) {
		if marked[b] {
			return
		}
		for _, p := range preds[b] {
			visit(p)
		}
		marked[b] = true
		revTopSort = append([]int{b}, revTopSort...)
	}
	for idx := 0; idx < a.NumBlocks(); idx++ {
		if a.BlockUsed(ast.BlockID(idx)) && !marked[idx] {
			visit(idx)
		}
	}

	mergeInto := func(inner, outer int) {
		for _, pred := range preds[inner] {
			node := a.Block(ast.BlockID(pred))
			stmtID := node.Children[len(node.Children)-1]
			stmt := a.Node(stmtID)
			switch stmt.Tag {
			case "goto":
				node.Children = node.Children[:len(node.Children)-1]
			case "if":
				if int(stmt.Vals[1]) == inner {
					stmt.Vals = stmt.Vals[:1]
				} else {
					stmt.Children[0] = a.NegateBool(stmt.Children[0])
					stmt.Vals = stmt.Vals[1:]
				}
			}
		}
		outerBlock := a.Block(ast.BlockID(outer))
		innerBlock := a.Block(ast.BlockID(inner))
		outerBlock.Children = append(outerBlock.Children, innerBlock.Children...)
		a.DeleteBlock(ast.BlockID(inner))
	}

	for _, b := range revTopSort {
		if len(preds[b]) > 1 {
			mergeInto(b, lca(preds[b]))
		}
	}
}

func containsVal64(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
