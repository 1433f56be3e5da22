// Package cleanup implements the ABST optimization passes that run after
// control-flow structuring: else-if flattening, useless-else
// elimination, constant folding, shallow type inference, and boolean
// expression simplification (decompile_ai.py's flatten_abst_conds,
// eliminate_useless_elses, fold_constants, infer_types,
// simplify_boolean_expressions, chained by optimize_abst). Every pass is
// semantics-preserving and independently toggleable from the CLI.
package cleanup

import "github.com/modestralts/flw0dec/lang/ast"

// fixedPointBlockLoop runs funcs over every live block, repeating until
// a full pass makes no further change (decompile_ai.py's
// fixed_point_block_loop), capped the same way the original caps it.
func fixedPointBlockLoop(a *ast.ABST, funcs ...func(*ast.Block) bool) {
	const timeout = 1000
	for try := 0; try < timeout; try++ {
		changed := false
		for i := 0; i < a.NumBlocks(); i++ {
			if !a.BlockUsed(ast.BlockID(i)) {
				continue
			}
			block := a.Block(ast.BlockID(i))
			for _, f := range funcs {
				if f(block) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}

// blockLoop runs f once over every top-level statement of every live
// block (decompile_ai.py's block_loop, called with each block's "seq"
// node; since a seq node is never itself foldable/typeable, we skip
// straight to its statement children).
func blockLoop(a *ast.ABST, f func(ast.NodeID)) {
	for i := 0; i < a.NumBlocks(); i++ {
		if !a.BlockUsed(ast.BlockID(i)) {
			continue
		}
		for _, c := range a.Block(ast.BlockID(i)).Children {
			f(c)
		}
	}
}

// Options selects which optimization passes Optimize runs, mirroring
// decompile_ai.py's optimize_abst flags.
type Options struct {
	FlattenConditionals bool
	FlattenElses        bool
	ConstantFolding     bool
	SimplifyConditions  bool
	Natives             NativeTypes
}

// Optimize runs the requested passes in decompile_ai.py's fixed order:
// flatten, then drop useless elses, then fold constants, then (type
// inference followed by) boolean simplification.
func Optimize(a *ast.ABST, opts Options) {
	if opts.FlattenConditionals {
		FlattenConditionals(a)
	}
	if opts.FlattenElses {
		EliminateUselessElses(a)
	}
	if opts.ConstantFolding {
		FoldConstants(a)
	}
	if opts.SimplifyConditions {
		InferTypes(a, opts.Natives)
		SimplifyBooleanExpressions(a)
	}
}
