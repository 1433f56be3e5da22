package flow

import (
	"github.com/modestralts/flw0dec/lang/container"
)

// ProcedureGraph holds the per-procedure reachability result
// (unpack_ai.py's Flow_Block_Graph): which jump-labeled blocks are
// reachable from the procedure's entry block, and whether the block
// graph contains a directed cycle.
type ProcedureGraph struct {
	StartOuts map[int]struct{}   // jump label indices reachable directly from the entry block
	OtherOuts map[int]map[int]struct{} // jump label index -> the jump label indices it can reach in one step
	Reachable map[int]bool             // jump label index -> reachable from the entry block
	HasCycles bool
}

// outEdges collects the set of jump-label-indexed targets a block's
// jumper instructions (GOTO/IF) can reach.
func outEdges(b RawBlock) map[int]struct{} {
	outs := make(map[int]struct{})
	for _, in := range b.Instructions {
		if in.Opcode.Jumper() {
			outs[int(in.Operand)] = struct{}{}
		}
	}
	return outs
}

// BuildProcedureGraph computes reachability and cycle detection for a
// single procedure's blocks, by label index (not position in the
// procedure's block slice), matching unpack_ai.py's
// Flow_Block_Graph.__init__.
func BuildProcedureGraph(proc RawProcedure) ProcedureGraph {
	g := ProcedureGraph{
		OtherOuts: make(map[int]map[int]struct{}),
		Reachable: make(map[int]bool),
	}
	if len(proc.Blocks) == 0 {
		return g
	}
	if len(proc.Blocks) == 1 {
		g.StartOuts = map[int]struct{}{}
		return g
	}

	g.StartOuts = outEdges(proc.Blocks[0])
	for _, b := range proc.Blocks[1:] {
		g.OtherOuts[b.Label.Index] = outEdges(b)
		g.Reachable[b.Label.Index] = false
	}

	preds := make(map[int][]int, len(g.OtherOuts))
	for idx := range g.OtherOuts {
		preds[idx] = nil
	}

	var queue []int
	pushNewReachables := func(outs map[int]struct{}, pre []int) {
		for blockIndex := range outs {
			if g.Reachable[blockIndex] {
				if containsInt(pre, blockIndex) {
					g.HasCycles = true
				}
				continue
			}
			g.Reachable[blockIndex] = true
			np := append(append([]int{}, pre...), blockIndex)
			preds[blockIndex] = np
			queue = append(queue, blockIndex)
		}
	}

	pushNewReachables(g.StartOuts, nil)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		pushNewReachables(g.OtherOuts[cur], preds[cur])
	}
	return g
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// BlockReachable reports whether the block starting at label b is
// reachable in procedure graph g; the procedure's entry label
// (LabelProc) is always reachable.
func (g ProcedureGraph) BlockReachable(b container.Label) bool {
	if b.Kind == container.LabelProc {
		return true
	}
	return g.Reachable[b.Index]
}
