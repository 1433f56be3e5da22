package ast_test

import (
	"testing"

	"github.com/modestralts/flw0dec/lang/ast"
	"github.com/stretchr/testify/assert"
)

func TestDisplayRendersAssignAndReturn(t *testing.T) {
	a := ast.New()
	dumpOnFailure(t, a)

	lit4 := a.NewNode("lit", []int64{4}, nil)
	lit3 := a.NewNode("lit", []int64{3}, nil)
	add := a.NewNode("add", nil, []ast.NodeID{lit4, lit3})
	assign := a.NewNode("assign", []int64{0}, []ast.NodeID{add})
	ret := a.NewNode("return", nil, nil)

	block := a.NewBlock([]ast.NodeID{assign, ret})
	a.ProcedureInfo[int(block)] = ast.ProcedureMeta{Name: "main", Pops: 0}

	got := a.Display(nil, nil)
	want := "main():\n    r0 = (4 + 3)\n    return"
	assert.Equal(t, want, got)
}

func TestDisplayIfElseIndentsBranches(t *testing.T) {
	a := ast.New()
	dumpOnFailure(t, a)

	cond := a.NewNode("var", []int64{0}, nil)
	thenRet := a.NewNode("return", nil, nil)
	thenBlock := a.NewBlock([]ast.NodeID{thenRet})
	elseRet := a.NewNode("break", nil, nil)
	elseBlock := a.NewBlock([]ast.NodeID{elseRet})

	ifStmt := a.NewNode("if", []int64{int64(thenBlock), int64(elseBlock)}, []ast.NodeID{cond})
	root := a.NewBlock([]ast.NodeID{ifStmt})
	a.ProcedureInfo[int(root)] = ast.ProcedureMeta{Name: "check", Pops: 1}

	got := a.Display(nil, nil)
	want := "check(p0):\n    if r0:\n        return\n    else:\n        break"
	assert.Equal(t, want, got)
}

type fakeNamer struct{}

func (fakeNamer) Name(index int64) (string, bool) {
	if index == 0x80 {
		return "_rand", true
	}
	return "", false
}

// TestDisplayGotoTerminatedBlockInlinesTargetWithNoStructuring exercises the
// round-trip law that lifting then immediately pretty-printing, without
// running structure.Build, still produces valid pseudocode: a block that
// ends in an unconverted "goto" (as flow.Abstract/ast.Lift leave behind
// whenever structuring hasn't merged it into an if/loop yet) prints as its
// own statements followed transparently by the target block's, per
// displayStmtNode's "goto" case.
func TestDisplayGotoTerminatedBlockInlinesTargetWithNoStructuring(t *testing.T) {
	a := ast.New()
	dumpOnFailure(t, a)

	ret := a.NewNode("return", nil, nil)
	target := a.NewBlock([]ast.NodeID{ret})

	lit := a.NewNode("lit", []int64{5}, nil)
	assign := a.NewNode("assign", []int64{0}, []ast.NodeID{lit})
	gotoStmt := a.NewNode("goto", []int64{int64(target)}, nil)
	entry := a.NewBlock([]ast.NodeID{assign, gotoStmt})
	a.ProcedureInfo[int(entry)] = ast.ProcedureMeta{Name: "main", Pops: 0}

	got := a.Display(nil, nil)
	want := "main():\n    r0 = 5\n    return"
	assert.Equal(t, want, got)
}

func TestDisplayNativeCallStripsLeadingUnderscore(t *testing.T) {
	a := ast.New()
	dumpOnFailure(t, a)

	arg := a.NewNode("lit", []int64{6}, nil)
	call := a.NewNode("func", []int64{0x80}, []ast.NodeID{arg})
	assign := a.NewNode("assign", []int64{0}, []ast.NodeID{call})
	root := a.NewBlock([]ast.NodeID{assign})
	a.ProcedureInfo[int(root)] = ast.ProcedureMeta{Name: "main", Pops: 0}

	got := a.Display(nil, fakeNamer{})
	assert.Equal(t, "main():\n    r0 = rand(6)", got)
}
