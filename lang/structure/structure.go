package structure

import "github.com/modestralts/flw0dec/lang/ast"

// Build runs every structuring pass over a freshly lifted ABST, in the
// fixed order decompile_ai.py's ABST.__init__ does once lifting itself
// is done: special labels first (they can otherwise force an awkward
// graph shape), then directed cycles (loops), then single-goto chain
// compression, then undirected cycles (skipped for handwritten sources,
// since hand-authored control flow does not produce the rejoin pattern
// this pass targets), then the two loop/block cleanups.
func Build(a *ast.ABST, diags Diagnostics, handwritten bool) {
	HandleSpecialLabels(a, diags)
	HandleDirectedCycles(a, diags)
	ClearSingleGotos(a)
	if !handwritten {
		HandleUndirectedCycles(a)
	}
	CleanLoops(a)
	CleanEmptyBlocks(a)
}
