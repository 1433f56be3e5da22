// Package ast implements the Abstract Block Syntax Tree (ABST): the
// tagged-variant expression/statement node arena the stack-to-AST lifter
// builds (§4.6), the control-flow structuring and cleanup passes mutate
// in place (§4.7-§4.8), and the pretty-printer renders (§4.9).
//
// Nodes and blocks are never physically deleted once created: both
// arenas are append-only, and removal is a soft tombstone flip (Used =
// false) so that ids handed out earlier in the pipeline remain valid
// indices even after a later pass retires the node they pointed to.
package ast

import "fmt"

// NodeID is a handle into the inner-node arena. The zero value is never
// a valid id (arena indices start at 1), so NodeID(0) can serve as a
// "no node" sentinel where needed.
type NodeID int

// BlockID is a handle into the block arena.
type BlockID int

// ExprType is the shallow type lattice infer_types assigns to
// expressions (§4.8): most nodes stay Unknown, only opcodes and
// constructs with an unambiguous type get classified.
type ExprType uint8

const (
	TypeUnknown ExprType = iota
	TypeInt
	TypeBool
	TypeStmt
)

func (t ExprType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeStmt:
		return "stmt"
	default:
		return "unknown"
	}
}

// Node is a single statement or expression in the ABST. Tags are seq,
// assign, send, call, return, label, goto, reallygoto, if, loop,
// continue, break, lit, var, func, and the binop/monop tags.
type Node struct {
	Tag      string
	Vals     []int64
	Children []NodeID
	Type     ExprType

	used bool
}

func (n *Node) String() string {
	return fmt.Sprintf("tag: %s, type: %s, vals: %v, children: %v", n.Tag, n.Type, n.Vals, n.Children)
}

// Block is a block-level node: a "seq" of statement ids, in order.
type Block struct {
	ID       BlockID
	Children []NodeID

	used bool
}

// ABST is the full tree: an arena of blocks (one per abstracted flow
// block, block 0 is the root) plus an arena of inner nodes referenced by
// NodeID, plus a monotonic counter used for naming compiler-introduced
// temporaries ("v1", "v2", ...); new arena slots are appended by NewNode,
// NewBlock and StmtFromNode.
type ABST struct {
	nodes  []Node
	blocks []Block

	varCount int

	ProcedureInfo map[int]ProcedureMeta
	SpecialLabels map[int]string
	SpecialBlocks map[int]bool
	SpecialGotos  map[int]bool
}

// ProcedureMeta is the subset of flow.ProcedureInfo the ABST needs once
// lifting is done: the display name and inferred parameter count.
type ProcedureMeta struct {
	Name string
	Pops int
}

// New creates an empty ABST. Use Lift (lift.go) to populate it from an
// abstracted flow.Program.
func New() *ABST {
	return &ABST{
		nodes:         []Node{{}}, // index 0 reserved as "no node"
		ProcedureInfo: map[int]ProcedureMeta{},
		SpecialLabels: map[int]string{},
		SpecialBlocks: map[int]bool{},
		SpecialGotos:  map[int]bool{},
	}
}

// FreshVar returns a new unique temporary name, "v<n>", matching
// decompile_ai.py's ABST.fresh_var. It does not allocate a node.
func (a *ABST) FreshVar() string {
	a.varCount++
	return fmt.Sprintf("v%d", a.varCount)
}

// NewNode allocates and stores a new inner node, returning its id.
func (a *ABST) NewNode(tag string, vals []int64, children []NodeID) NodeID {
	a.nodes = append(a.nodes, Node{Tag: tag, Vals: vals, Children: children, used: true})
	return NodeID(len(a.nodes) - 1)
}

// Node dereferences a NodeID. It panics on an out-of-range id, since
// every id handed out by this package refers to a real arena slot for
// the lifetime of the ABST (only Used changes, never the slot's
// existence).
func (a *ABST) Node(id NodeID) *Node { return &a.nodes[id] }

// NodeUsed reports whether id's node is still live.
func (a *ABST) NodeUsed(id NodeID) bool { return a.nodes[id].used }

// DeleteNode tombstones a node without freeing its slot.
func (a *ABST) DeleteNode(id NodeID) { a.nodes[id].used = false }

// NewBlock allocates a new "seq" block, used both for the initial
// per-flow-block seq nodes and for synthetic blocks structuring passes
// introduce (e.g. handle_directed_cycles's break/continue stub blocks).
func (a *ABST) NewBlock(children []NodeID) BlockID {
	a.blocks = append(a.blocks, Block{ID: BlockID(len(a.blocks)), Children: children, used: true})
	return a.blocks[len(a.blocks)-1].ID
}

// Block dereferences a BlockID.
func (a *ABST) Block(id BlockID) *Block { return &a.blocks[id] }

// BlockUsed reports whether id's block is still live.
func (a *ABST) BlockUsed(id BlockID) bool { return a.blocks[id].used }

// DeleteBlock tombstones a block.
func (a *ABST) DeleteBlock(id BlockID) { a.blocks[id].used = false }

// NumBlocks returns the current size of the block arena (including
// tombstoned entries), for callers that need to range over every block
// id, live or not.
func (a *ABST) NumBlocks() int { return len(a.blocks) }

// NegateBool wraps exp in a fresh "boolnot" node and returns its id,
// collapsing a double negation back to the original expression instead
// of nesting (decompile_ai.py's negate_bool has no such collapse, but
// simplify_boolean_expressions immediately undoes a double boolnot
// anyway; folding it here avoids the useless intermediate in the
// meantime).
func (a *ABST) NegateBool(exp NodeID) NodeID {
	if n := a.Node(exp); n.Tag == "boolnot" && len(n.Children) == 1 {
		return n.Children[0]
	}
	return a.NewNode("boolnot", nil, []NodeID{exp})
}

// StmtFromNode stores a copy of an already-built node in a new arena
// slot, marked live, and returns its NodeID for use in a block's
// Children list.
func (a *ABST) StmtFromNode(n Node) NodeID {
	n.used = true
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}
