package structure

import (
	"github.com/modestralts/flw0dec/lang/ast"
	"github.com/modestralts/flw0dec/lang/graph"
)

// HandleDirectedCycles discovers natural loops in the block graph and
// replaces each one's entry-block if-branch with a "loop" construct,
// breaking the explicit back edge and retargeting any goto/if inside the
// loop body that pointed at the continue or break block into an actual
// continue/break statement. Loops are processed innermost-first so a
// nested loop's own entry if-branch is rewritten before its enclosing
// loop's.
func HandleDirectedCycles(a *ast.ABST, diags Diagnostics) {
	g := buildBlockGraph(a)
	domF := g.Dominators(graph.Forward)
	domB := g.Dominators(graph.Backward)
	dfs := g.DFS()
	loops := g.BuildLoops(dfs, domF, domB, diags.Warnf)

	for _, loop := range loops {
		entryBlock := a.Block(ast.BlockID(loop.Entry))
		ifID := entryBlock.Children[len(entryBlock.Children)-1]
		ifStmt := a.Node(ifID)

		innerBlock := int(ifStmt.Vals[0])
		breakBlock := int(ifStmt.Vals[1])
		condExp := ifStmt.Children[0]
		if breakBlock != loop.Break {
			innerBlock, breakBlock = int(ifStmt.Vals[1]), int(ifStmt.Vals[0])
			condExp = a.NegateBool(condExp)
		}

		ifStmt.Tag = "loop"
		ifStmt.Vals = []int64{int64(innerBlock), int64(breakBlock), int64(loop.Continue)}
		ifStmt.Children = []ast.NodeID{condExp}
		ifStmt.Type = ast.TypeUnknown

		continueBlock := a.Block(ast.BlockID(loop.Continue))
		continueBlock.Children = continueBlock.Children[:len(continueBlock.Children)-1]

		for other := range loop.Other {
			block := a.Block(ast.BlockID(other))
			if len(block.Children) == 0 {
				continue
			}
			lastID := block.Children[len(block.Children)-1]
			last := a.Node(lastID)

			switch last.Tag {
			case "goto":
				tag := loopExitTag(int(last.Vals[0]), loop)
				if tag == "" {
					continue
				}
				a.DeleteNode(lastID)
				block.Children[len(block.Children)-1] = newSingleStmt(a, tag)

			case "if":
				for idx, dest := range last.Vals {
					tag := loopExitTag(int(dest), loop)
					if tag == "" {
						continue
					}
					last.Vals[idx] = int64(newSingleBlock(a, tag))
				}
			}
		}
	}
}

func loopExitTag(dest int, loop graph.Loop) string {
	switch dest {
	case loop.Continue:
		return "continue"
	case loop.Break:
		return "break"
	default:
		return ""
	}
}

func newSingleStmt(a *ast.ABST, tag string) ast.NodeID {
	return a.NewNode(tag, nil, nil)
}

func newSingleBlock(a *ast.ABST, tag string) ast.BlockID {
	stmt := newSingleStmt(a, tag)
	return a.NewBlock([]ast.NodeID{stmt})
}

// buildBlockGraph constructs a graph.Graph over the ABST's live blocks:
// sources are procedure entry blocks, sinks are blocks ending a
// reallygoto or a return, and every edge comes from a block's final
// if/goto statement (by construction no block is empty and no jump
// occurs before a block's last statement).
func buildBlockGraph(a *ast.ABST) *graph.Graph {
	vertices := graph.NewVertexSet()
	for i := 0; i < a.NumBlocks(); i++ {
		if a.BlockUsed(ast.BlockID(i)) {
			vertices.Add(i)
		}
	}

	g := graph.New(vertices)
	for proc := range a.ProcedureInfo {
		g.Sources.Add(proc)
	}
	for idx := range a.SpecialGotos {
		g.Sinks.Add(idx)
	}

	for v := range vertices {
		block := a.Block(ast.BlockID(v))
		if len(block.Children) == 0 {
			continue
		}
		last := a.Node(block.Children[len(block.Children)-1])
		if last.Tag == "return" {
			g.Sinks.Add(v)
		}
		if last.Tag == "if" || last.Tag == "goto" {
			for _, dest := range last.Vals {
				g.AddEdge(v, int(dest))
			}
		}
	}
	return g
}
