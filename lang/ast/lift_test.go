package ast_test

import (
	"testing"

	"github.com/modestralts/flw0dec/lang/ast"
	"github.com/modestralts/flw0dec/lang/flow"
	"github.com/modestralts/flw0dec/lang/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int { return &v }

// buildProgram assembles a one-block, one-procedure flow.Program computing
// r0 = 4 + 3; return, with every operation's arity already resolved, as if
// flow.Abstract had already run.
func buildProgram() *flow.Program {
	return &flow.Program{
		Blocks: []flow.Block{
			{ID: 0, Operations: []flow.Operation{
				{Opcode: isa.PUSHI, Args: []int64{3}, Pushes: ip(1), Pops: ip(0)},
				{Opcode: isa.PUSHI, Args: []int64{4}, Pushes: ip(1), Pops: ip(0)},
				{Opcode: isa.ADD, Pushes: ip(1), Pops: ip(2)},
				{Opcode: isa.POPLIX, Args: []int64{0}, Pushes: ip(0), Pops: ip(1)},
				{Opcode: isa.END, Pushes: ip(0), Pops: ip(0)},
			}},
		},
		Procedures:    []flow.ProcedureInfo{{BlockNum: 0, Name: "main", Pops: 0}},
		SpecialLabels: map[int]string{},
	}
}

func TestLiftBuildsStackOrderedExpressionTree(t *testing.T) {
	a := ast.Lift(buildProgram(), nil)
	dumpOnFailure(t, a)

	require.Equal(t, 1, a.NumBlocks())
	block := a.Block(0)
	require.Len(t, block.Children, 2, "assign then return")

	assign := a.Node(block.Children[0])
	require.Equal(t, "assign", assign.Tag)
	assert.Equal(t, []int64{0}, assign.Vals)
	require.Len(t, assign.Children, 1)

	add := a.Node(assign.Children[0])
	require.Equal(t, "add", add.Tag)
	require.Len(t, add.Children, 2)

	// The top-of-stack operand (pushed last: 4) is ADD's first child.
	lhs := a.Node(add.Children[0])
	rhs := a.Node(add.Children[1])
	assert.Equal(t, "lit", lhs.Tag)
	assert.Equal(t, int64(4), lhs.Vals[0])
	assert.Equal(t, "lit", rhs.Tag)
	assert.Equal(t, int64(3), rhs.Vals[0])

	ret := a.Node(block.Children[1])
	assert.Equal(t, "return", ret.Tag)
}

func TestLiftProcedureParametersBecomeVarNodes(t *testing.T) {
	prog := &flow.Program{
		Blocks: []flow.Block{
			{ID: 0, Operations: []flow.Operation{
				{Opcode: isa.PROC},
				{Opcode: isa.END, Pushes: ip(0), Pops: ip(0)},
			}},
		},
		Procedures:    []flow.ProcedureInfo{{BlockNum: 0, Name: "main", Pops: 2}},
		SpecialLabels: map[int]string{},
	}

	a := ast.Lift(prog, nil)
	dumpOnFailure(t, a)
	block := a.Block(0)
	require.Len(t, block.Children, 3, "two param vars then return")

	// Neither parameter is consumed by anything in this synthetic block, so
	// both surface as bare statements; each create_node call prepends, so
	// they appear in the reverse of declaration order (argnum 1, then 0).
	p1 := a.Node(block.Children[0])
	assert.Equal(t, "var", p1.Tag)
	assert.Equal(t, int64(-2), p1.Vals[0])

	p0 := a.Node(block.Children[1])
	assert.Equal(t, "var", p0.Tag)
	assert.Equal(t, int64(-1), p0.Vals[0])

	ret := a.Node(block.Children[2])
	assert.Equal(t, "return", ret.Tag)
}
