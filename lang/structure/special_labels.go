// Package structure recovers structured control flow from the abstracted
// block graph an ast.ABST starts out as: every block still ends in a
// goto/if naming a raw block id, the way Lift leaves it. The passes in
// this package run in a fixed order (see Build) to turn that graph into
// loop/if/label/break/continue constructs, following decompile_ai.py's
// ABST.__init__ pipeline (handle_special_labels, handle_directed_cycles,
// clear_single_gotos, handle_undirected_cycles, clean_loops,
// clean_empty_blocks).
package structure

import (
	"sort"

	"github.com/modestralts/flw0dec/lang/ast"
)

// Diagnostics receives structuring warnings: malformed loop shapes, two
// if-statements branching to the same special label, and similar
// best-effort anomalies the original implementation reports but never
// treats as fatal.
type Diagnostics = ast.Diagnostics

// HandleSpecialLabels finds, for each special (name-carrying) label, the
// block its label statement actually belongs in — collapsing a goto
// chain of single-statement blocks down to the chain's end — and
// rewrites every other edge that targeted the label's original block
// into an explicit "reallygoto", since at most one edge can survive as a
// structured branch to it.
func HandleSpecialLabels(a *ast.ABST, diags Diagnostics) {
	blockNums := make([]int, 0, len(a.SpecialLabels))
	for b := range a.SpecialLabels {
		blockNums = append(blockNums, b)
	}
	sort.Ints(blockNums)

	for _, blockNum := range blockNums {
		chainEnd := blockNum
		special := a.Block(ast.BlockID(chainEnd))
		for len(special.Children) == 1 {
			stmt := a.Node(special.Children[0])
			if stmt.Tag != "goto" {
				break
			}
			a.DeleteBlock(ast.BlockID(chainEnd))
			chainEnd = int(stmt.Vals[0])
			special = a.Block(ast.BlockID(chainEnd))
		}

		labelNode := a.NewNode("label", []int64{int64(blockNum)}, nil)
		special.Children = append([]ast.NodeID{labelNode}, special.Children...)
		a.SpecialBlocks[chainEnd] = true

		var ifReaches, gotoReaches []int
		for idx := 0; idx < a.NumBlocks(); idx++ {
			if !a.BlockUsed(ast.BlockID(idx)) {
				continue
			}
			block := a.Block(ast.BlockID(idx))
			if len(block.Children) == 0 {
				continue
			}
			last := a.Node(block.Children[len(block.Children)-1])
			switch {
			case last.Tag == "goto" && containsVal(last.Vals, blockNum):
				gotoReaches = append(gotoReaches, idx)
			case last.Tag == "if" && containsVal(last.Vals, blockNum):
				ifReaches = append(ifReaches, idx)
			}
		}
		if len(ifReaches) > 1 {
			diags.Warnf("2 or more if statements have branches to the same label")
		}

		reaches := append(append([]int{}, ifReaches...), gotoReaches...)

		chainHasPreds := false
		for idx := 0; idx < a.NumBlocks(); idx++ {
			if !a.BlockUsed(ast.BlockID(idx)) {
				continue
			}
			block := a.Block(ast.BlockID(idx))
			if len(block.Children) == 0 {
				continue
			}
			last := a.Node(block.Children[len(block.Children)-1])
			if (last.Tag == "goto" || last.Tag == "if") && containsVal(last.Vals, chainEnd) {
				chainHasPreds = true
			}
		}

		if !(chainHasPreds && chainEnd != blockNum) && len(reaches) > 0 {
			first := reaches[0]
			reaches = reaches[1:]
			firstBlock := a.Block(ast.BlockID(first))
			stmt := a.Node(firstBlock.Children[len(firstBlock.Children)-1])
			if len(ifReaches) > 0 {
				for i := range stmt.Vals {
					if int(stmt.Vals[i]) == blockNum {
						stmt.Vals[i] = int64(chainEnd)
					}
				}
			} else {
				stmt.Vals[0] = int64(chainEnd)
			}
		}

		for _, idx := range reaches {
			block := a.Block(ast.BlockID(idx))
			reallyGoto := a.NewNode("reallygoto", []int64{int64(blockNum)}, nil)
			block.Children[len(block.Children)-1] = reallyGoto
			a.SpecialGotos[idx] = true
		}
	}
}

func containsVal(vals []int64, want int) bool {
	for _, v := range vals {
		if int(v) == want {
			return true
		}
	}
	return false
}
