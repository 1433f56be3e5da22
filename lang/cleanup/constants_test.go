package cleanup_test

import (
	"testing"

	"github.com/modestralts/flw0dec/lang/ast"
	"github.com/modestralts/flw0dec/lang/cleanup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFoldConstantsBottomUpFoldsNestedLiterals mirrors the bytecode sequence
// PUSHIS 1; PUSHIS 2; ADD; PUSHIS 3; MUL; POPLIX 0, which a fully-literal
// lift produces as assign(r0, mul(3, add(2, 1))); the tree below lists each
// operator's operands in the opposite order, which does not change the
// folded value. Folding must work bottom-up so the inner add folds to a lit
// before mul is considered.
func TestFoldConstantsBottomUpFoldsNestedLiterals(t *testing.T) {
	a := ast.New()

	one := a.NewNode("lit", []int64{1}, nil)
	two := a.NewNode("lit", []int64{2}, nil)
	add := a.NewNode("add", nil, []ast.NodeID{one, two})
	three := a.NewNode("lit", []int64{3}, nil)
	mul := a.NewNode("mul", nil, []ast.NodeID{add, three})
	assign := a.NewNode("assign", []int64{0}, []ast.NodeID{mul})
	a.NewBlock([]ast.NodeID{assign})

	cleanup.FoldConstants(a)

	got := a.Node(mul)
	require.Equal(t, "lit", got.Tag)
	assert.Equal(t, []int64{9}, got.Vals)
	assert.Empty(t, got.Children)
}

// TestFoldConstantsDivByZeroReturnsDividend mirrors decompile_ai.py's fold
// table, which defines div-by-zero as the dividend rather than raising, so a
// literal zero divisor never panics or produces a sentinel error value.
func TestFoldConstantsDivByZeroReturnsDividend(t *testing.T) {
	a := ast.New()

	dividend := a.NewNode("lit", []int64{5}, nil)
	zero := a.NewNode("lit", []int64{0}, nil)
	div := a.NewNode("div", nil, []ast.NodeID{dividend, zero})
	a.NewBlock([]ast.NodeID{div})

	cleanup.FoldConstants(a)

	got := a.Node(div)
	assert.Equal(t, "lit", got.Tag)
	assert.Equal(t, []int64{5}, got.Vals)
}

// TestFoldConstantsIsIdempotent runs FoldConstants twice over an
// already-folded tree and checks the second pass is a no-op, since a "lit"
// node has no entry in the foldable table and a node with a non-literal
// operand is left untouched.
func TestFoldConstantsIsIdempotent(t *testing.T) {
	a := ast.New()

	v := a.NewNode("var", []int64{0}, nil)
	one := a.NewNode("lit", []int64{1}, nil)
	add := a.NewNode("add", nil, []ast.NodeID{v, one})
	a.NewBlock([]ast.NodeID{add})

	cleanup.FoldConstants(a)
	firstPass := *a.Node(add)

	cleanup.FoldConstants(a)
	secondPass := *a.Node(add)

	assert.Equal(t, firstPass, secondPass, "a node with a non-literal operand must survive a repeated fold unchanged")
}
