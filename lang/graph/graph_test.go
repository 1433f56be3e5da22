package graph_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/modestralts/flw0dec/lang/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWhileLoop builds: 0 -> 1 (entry) -> 2 (body) -> 1 (back edge), 1 -> 3 (break).
func buildWhileLoop() *graph.Graph {
	g := graph.New(graph.NewVertexSet(0, 1, 2, 3))
	g.Sources = graph.NewVertexSet(0)
	g.Sinks = graph.NewVertexSet(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)
	g.AddEdge(1, 3)
	return g
}

func TestDominators(t *testing.T) {
	g := buildWhileLoop()
	doms := g.Dominators(graph.Forward)
	assert.True(t, doms[2].Has(1), "block 1 should dominate block 2")
	assert.True(t, doms[3].Has(1), "block 1 should dominate block 3")
	assert.True(t, doms[3].Has(0), "block 0 should dominate block 3")
}

func TestDFSAndLoop(t *testing.T) {
	g := buildWhileLoop()
	dfs := g.DFS()
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("graph dump:\n%s\nDFS dump:\n%s", spew.Sdump(g), spew.Sdump(dfs))
		}
	})
	assert.True(t, dfs.HasCycles)
	assert.Equal(t, graph.BackEdge, dfs.EdgeLabels[graph.Edge{Tail: 2, Head: 1}])

	doms := g.Dominators(graph.Forward)
	postDoms := g.Dominators(graph.Backward)

	var warnings []string
	loops := g.BuildLoops(dfs, doms, postDoms, func(f string, a ...any) {
		warnings = append(warnings, f)
	})
	require.Len(t, loops, 1)
	assert.Equal(t, 1, loops[0].Entry)
	assert.Equal(t, 2, loops[0].Continue)
	assert.Equal(t, 3, loops[0].Break)
	assert.Empty(t, warnings)
}

func TestLCA(t *testing.T) {
	g := buildWhileLoop()
	doms := g.Dominators(graph.Forward)
	lca, err := graph.LCA(2, 3, doms)
	require.NoError(t, err)
	assert.Equal(t, 1, lca)
}
