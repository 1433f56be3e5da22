package structure_test

import (
	"testing"

	"github.com/modestralts/flw0dec/lang/ast"
	"github.com/modestralts/flw0dec/lang/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCleanEmptyBlocksDropsEmptyLoopUpdateBlock exercises the
// loop-with-empty-update-block boundary: a "loop" node carries a 3rd Val
// (the update block) only when there's something to run between iterations;
// once that block turns out empty, CleanEmptyBlocks must trim the loop back
// to a 2-value node and free the now-unreachable update block.
func TestCleanEmptyBlocksDropsEmptyLoopUpdateBlock(t *testing.T) {
	a := ast.New()

	updateBlock := a.NewBlock(nil)
	loopStmt := a.NewNode("loop", []int64{0, 1, int64(updateBlock)}, nil)
	a.NewBlock([]ast.NodeID{loopStmt})

	structure.CleanEmptyBlocks(a)

	got := a.Node(loopStmt)
	assert.Equal(t, []int64{0, 1}, got.Vals, "empty update block must be trimmed off the loop node")
	assert.False(t, a.BlockUsed(updateBlock), "the emptied update block must be freed")
}

// TestCleanLoopsMovesTrailingContinueWhenBothBranchesAreBroken exercises
// moveSafeContinues's fixed-point step: when every branch of an if inside a
// loop body already ends in a terminal statement (here, both arms
// "continue"), the if's own continuation collapses to a single trailing
// continue and the duplicated per-branch continues are dropped, so the loop
// body never carries more than one continue per control path.
func TestCleanLoopsMovesTrailingContinueWhenBothBranchesAreBroken(t *testing.T) {
	a := ast.New()

	cond := a.NewNode("var", []int64{0}, nil)
	thenCont := a.NewNode("continue", nil, nil)
	thenBlock := a.NewBlock([]ast.NodeID{thenCont})
	elseCont := a.NewNode("continue", nil, nil)
	elseBlock := a.NewBlock([]ast.NodeID{elseCont})

	ifStmt := a.NewNode("if", []int64{int64(thenBlock), int64(elseBlock)}, []ast.NodeID{cond})
	trailingCont := a.NewNode("continue", nil, nil)
	body := a.NewBlock([]ast.NodeID{ifStmt, trailingCont})
	loopStmt := a.NewNode("loop", []int64{int64(body), 0}, nil)
	a.NewBlock([]ast.NodeID{loopStmt})

	structure.CleanLoops(a)

	bodyBlock := a.Block(body)
	require.Len(t, bodyBlock.Children, 1, "the collapsed continue is itself dropped as the loop's implicit back edge")
	assert.Equal(t, "if", a.Node(bodyBlock.Children[0]).Tag)

	assert.Empty(t, a.Block(thenBlock).Children, "the redundant continue inside the then-branch is dropped")
	assert.Empty(t, a.Block(elseBlock).Children, "the redundant continue inside the else-branch is dropped")
}
