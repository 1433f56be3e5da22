package ast

import (
	"github.com/modestralts/flw0dec/lang/flow"
	"github.com/modestralts/flw0dec/lang/isa"
)

// Diagnostics receives lifting warnings (an opcode with no AST tag, an
// unknown label reference, and similar soft anomalies).
type Diagnostics interface {
	Warnf(format string, args ...any)
}

type nopDiags struct{}

func (nopDiags) Warnf(string, ...any) {}

// opTag maps an abstracted opcode to the AST tag used to represent it,
// following decompile_ai.py's node_name_lookup table.
func opTag(op isa.Opcode) (string, bool) {
	switch {
	case isa.IsLiteral(op):
		return "lit", true
	case isa.IsVarRef(op):
		return "var", true
	case isa.IsVarAssign(op):
		return "assign", true
	}
	if name, ok := isa.BinOpName[op]; ok {
		return name, true
	}
	if name, ok := isa.UnOpName[op]; ok {
		return name, true
	}
	switch op {
	case isa.FUNC:
		return "func", true
	case isa.CALL:
		return "call", true
	case isa.END:
		return "return", true
	case isa.GOTO:
		return "goto", true
	case isa.COND:
		return "if", true
	case isa.SEND:
		return "send", true
	default:
		return "", false
	}
}

// Lift builds an ABST from a fully abstracted flow.Program: each block's
// operations are walked in reverse so that, by the time a consumer
// operation is visited, its operand "holes" already exist as pending
// placeholders on a stack-discipline work list; each producer fills the
// most recently pushed waiting hole (§4.6's "pending consumer id"
// technique).
func Lift(prog *flow.Program, diags Diagnostics) *ABST {
	if diags == nil {
		diags = nopDiags{}
	}

	a := New()
	for _, p := range prog.Procedures {
		a.ProcedureInfo[p.BlockNum] = ProcedureMeta{Name: p.Name, Pops: p.Pops}
	}
	a.SpecialLabels = prog.SpecialLabels
	for id := range prog.SpecialLabels {
		a.SpecialBlocks[id] = false // filled true once handle_special_labels locates the chain end
	}

	for blockNum, block := range prog.Blocks {
		a.NewBlock(liftOperations(a, blockNum, block.Operations, diags))
	}
	return a
}

func liftOperations(a *ABST, blockNum int, ops []flow.Operation, diags Diagnostics) []NodeID {
	var stmts []NodeID
	var varStack []NodeID

	createNode := func(tag string, vals []int64, pushes, pops int) {
		var loc NodeID
		if pushes > 0 && len(varStack) > 0 {
			loc = varStack[len(varStack)-1]
			varStack = varStack[:len(varStack)-1]
		} else {
			loc = a.newPlaceholder()
			stmts = append([]NodeID{loc}, stmts...)
		}

		freshVars := make([]NodeID, pops)
		for i := 0; i < pops; i++ {
			freshVars[i] = a.newPlaceholder()
		}
		for i := pops - 1; i >= 0; i-- {
			varStack = append(varStack, freshVars[i])
		}

		a.fill(loc, tag, vals, freshVars)
	}

	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]

		if tag, ok := opTag(op.Opcode); ok {
			pushes, pops := derefOr(op.Pushes, 0), derefOr(op.Pops, 0)
			createNode(tag, op.Args, pushes, pops)
			continue
		}

		if op.Opcode == isa.PROC {
			if meta, ok := a.ProcedureInfo[blockNum]; ok {
				for argNum := 0; argNum < meta.Pops; argNum++ {
					createNode("var", []int64{int64(-1 - argNum)}, 1, 0)
				}
			}
			continue
		}

		diags.Warnf("operation %s in block %d could not be added to the ABST", op.Opcode, blockNum)
	}

	return stmts
}

func derefOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// newPlaceholder allocates an empty node slot to be filled in once its
// producer (earlier in program order, visited later in the reverse walk)
// is reached.
func (a *ABST) newPlaceholder() NodeID {
	a.nodes = append(a.nodes, Node{used: true})
	return NodeID(len(a.nodes) - 1)
}

func (a *ABST) fill(id NodeID, tag string, vals []int64, children []NodeID) {
	n := &a.nodes[id]
	n.Tag, n.Vals, n.Children = tag, vals, children
}
