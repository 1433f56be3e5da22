// Package graph implements the generic directed-graph analyses the
// control-flow structurer needs: dominators/post-dominators via the
// naive fixed-point algorithm, DFS edge classification
// (tree/forward/back/cross), and natural-loop discovery from back edges.
// It is grounded on decompile_ai.py's Control_Flow_Graph, generalized
// here to operate on any vertex set; lang/structure uses it for loop
// recovery over the abstracted AST's block ids (lang/flow does its own
// reachability walk and does not use this package).
package graph

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
)

// VertexSet is a set of graph vertices, keyed by their integer id.
type VertexSet map[int]struct{}

func NewVertexSet(vs ...int) VertexSet {
	s := make(VertexSet, len(vs))
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

func (s VertexSet) Add(v int)         { s[v] = struct{}{} }
func (s VertexSet) Has(v int) bool    { _, ok := s[v]; return ok }
func (s VertexSet) Sorted() []int {
	out := maps.Keys(map[int]struct{}(s))
	sort.Ints(out)
	return out
}

func (s VertexSet) Union(o VertexSet) VertexSet {
	out := make(VertexSet, len(s)+len(o))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range o {
		out[v] = struct{}{}
	}
	return out
}

func (s VertexSet) Intersect(o VertexSet) VertexSet {
	out := make(VertexSet)
	for v := range s {
		if o.Has(v) {
			out[v] = struct{}{}
		}
	}
	return out
}

func (s VertexSet) Equal(o VertexSet) bool {
	if len(s) != len(o) {
		return false
	}
	for v := range s {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

// Graph is a directed graph over a fixed vertex set, with the
// source/sink designation that dominator/post-dominator computation
// needs: Sources seed forward-dominator roots (procedure entry blocks),
// Sinks seed post-dominator roots (returns and special gotos).
type Graph struct {
	Vertices VertexSet
	Succs    map[int]VertexSet
	Preds    map[int]VertexSet
	Sources  VertexSet
	Sinks    VertexSet
}

// New builds an empty graph over the given vertex set.
func New(vertices VertexSet) *Graph {
	g := &Graph{
		Vertices: vertices,
		Succs:    make(map[int]VertexSet, len(vertices)),
		Preds:    make(map[int]VertexSet, len(vertices)),
		Sources:  NewVertexSet(),
		Sinks:    NewVertexSet(),
	}
	for v := range vertices {
		g.Succs[v] = NewVertexSet()
		g.Preds[v] = NewVertexSet()
	}
	return g
}

// AddEdge records a directed edge; both endpoints must already be in the
// vertex set.
func (g *Graph) AddEdge(tail, head int) {
	g.Succs[tail].Add(head)
	g.Preds[head].Add(tail)
}

// direction selects which adjacency relation and root set to walk:
// forward dominators walk predecessors from the procedure's sources,
// backward post-dominators walk successors from the sinks.
type direction int

const (
	Forward direction = iota
	Backward
)

// Dominators computes, for every vertex, the set of vertices that
// dominate it (Forward) or post-dominate it (Backward), using the naive
// fixed-point intersection algorithm (deliberately not an optimized
// Lengauer-Tarjan pass: the scripts this tool decompiles have at most a
// few hundred blocks per procedure, and the naive algorithm is what the
// original implementation used, so its quirks - e.g. requiring every
// non-root vertex to have at least one predecessor/successor - are part
// of the ported behavior).
func (g *Graph) Dominators(dir direction) map[int]VertexSet {
	var adjacency map[int]VertexSet
	var roots VertexSet
	if dir == Forward {
		adjacency, roots = g.Preds, g.Sources
	} else {
		adjacency, roots = g.Succs, g.Sinks
	}

	doms := make(map[int]VertexSet, len(g.Vertices))
	for v := range roots {
		doms[v] = NewVertexSet(v)
	}
	others := g.Vertices
	if len(roots) > 0 {
		others = make(VertexSet, len(g.Vertices))
		for v := range g.Vertices {
			if !roots.Has(v) {
				others[v] = struct{}{}
			}
		}
	}
	for v := range others {
		doms[v] = g.Vertices
	}

	const maxIterations = 1000
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for _, v := range others.Sorted() {
			var predDoms VertexSet
			for p := range adjacency[v] {
				if predDoms == nil {
					predDoms = doms[p]
				} else {
					predDoms = predDoms.Intersect(doms[p])
				}
			}
			if predDoms == nil {
				predDoms = NewVertexSet()
			}
			newDom := predDoms.Union(NewVertexSet(v))
			if !newDom.Equal(doms[v]) {
				changed = true
			}
			doms[v] = newDom
		}
		if !changed {
			break
		}
	}
	return doms
}

// EdgeLabel classifies an edge discovered by a DFS walk.
type EdgeLabel uint8

const (
	TreeEdge EdgeLabel = iota
	ForwardEdge
	BackEdge
	CrossEdge
)

type Edge struct{ Tail, Head int }

// DFSInfo is the result of classifying every edge reachable from the
// graph's source vertices via a depth-first search.
type DFSInfo struct {
	EdgeLabels map[Edge]EdgeLabel
	// Paths maps a vertex to the tree-edge path (root..v) along which it
	// was first discovered, used to tell a loop's break block apart from
	// its other reachable blocks (build_loops's filtered_children step).
	Paths     map[int][]int
	HasCycles bool
}

// DFS performs an iterative depth-first search from every source vertex,
// classifying each edge as tree/forward/back/cross (decompile_ai.py's
// dfs_info). It is implemented with an explicit work stack, not
// recursion, since decompiled procedures can have deep straight-line
// chains of blocks that would otherwise risk a deep native call stack.
func (g *Graph) DFS() DFSInfo {
	info := DFSInfo{
		EdgeLabels: make(map[Edge]EdgeLabel),
		Paths:      make(map[int][]int),
	}

	type frame struct {
		v        int
		path     []int
		children []int
		idx      int
	}

	for _, src := range g.Sources.Sorted() {
		if _, seen := info.Paths[src]; seen {
			continue
		}
		info.Paths[src] = []int{src}
		stack := []*frame{{v: src, path: []int{src}, children: g.Succs[src].Sorted()}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.idx >= len(top.children) {
				stack = stack[:len(stack)-1]
				continue
			}
			u := top.children[top.idx]
			top.idx++

			if _, discovered := info.Paths[u]; !discovered {
				info.EdgeLabels[Edge{top.v, u}] = TreeEdge
				info.Paths[u] = append(append([]int{}, top.path...), u)
				stack = append(stack, &frame{v: u, path: info.Paths[u], children: g.Succs[u].Sorted()})
				continue
			}

			switch {
			case containsInt(top.path, u):
				info.EdgeLabels[Edge{top.v, u}] = BackEdge
				info.HasCycles = true
			case containsInt(info.Paths[u], top.v):
				info.EdgeLabels[Edge{top.v, u}] = ForwardEdge
			default:
				info.EdgeLabels[Edge{top.v, u}] = CrossEdge
			}
		}
	}
	return info
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Loop is a natural loop recovered from a single back edge: entry is the
// loop header, Continue is the back edge's tail (the loop's "continue"
// target), Break is the successor of Entry that falls outside the loop
// body.
type Loop struct {
	Entry, Continue, Break int
	Other                  VertexSet
	All                    VertexSet
}

// BuildLoops discovers natural loops from the back edges found by a
// prior DFS call, validating the structural assumptions
// decompile_ai.py's build_loops checks (entry has exactly two
// successors, continue has exactly one, entry dominates both children
// and the continue block, entry is post-dominated by continue). Any
// violation is reported through warn rather than aborting, mirroring
// the original's eprint calls - malformed input still produces a
// best-effort loop recovery.
func (g *Graph) BuildLoops(dfs DFSInfo, dominators, postDominators map[int]VertexSet, warn func(string, ...any)) []Loop {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	var edges []Edge
	for e, label := range dfs.EdgeLabels {
		if label == BackEdge {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Tail != edges[j].Tail {
			return edges[i].Tail < edges[j].Tail
		}
		return edges[i].Head < edges[j].Head
	})

	var loops []Loop
	for _, e := range edges {
		entry, cont := e.Head, e.Tail

		if len(g.Succs[entry]) != 2 {
			warn("entry block %d does not have 2 children", entry)
		}
		if len(g.Succs[cont]) != 1 {
			warn("continue block %d does not have 1 child", cont)
		}
		shouldBeDominated := g.Succs[entry].Union(NewVertexSet(cont))
		for b := range shouldBeDominated {
			if !dominators[b].Has(entry) {
				warn("entry block %d does not dominate block %d", entry, b)
			}
		}
		if !postDominators[cont].Has(entry) {
			warn("entry block %d is not post-dominated by continue block %d", entry, cont)
		}

		var breakBlock int
		var found int
		for c := range g.Succs[entry] {
			if !containsInt(dfs.Paths[cont], c) {
				breakBlock = c
				found++
			}
		}
		if found != 1 {
			warn("continue block %d is reached from %d children", cont, found)
		}

		other := NewVertexSet()
		named := NewVertexSet(entry, cont, breakBlock)
		stack := []int{entry}
		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for succ := range g.Succs[next] {
				if named.Has(succ) || other.Has(succ) {
					continue
				}
				other.Add(succ)
				stack = append(stack, succ)
			}
		}

		loops = append(loops, Loop{
			Entry:    entry,
			Continue: cont,
			Break:    breakBlock,
			Other:    other,
			All:      other.Union(named),
		})
	}

	// Innermost loops first: a loop nested inside another has a strictly
	// smaller block set, so sorting by (size, sorted vertex list) puts it
	// before its enclosing loop.
	sort.Slice(loops, func(i, j int) bool {
		ai, aj := loops[i].All.Sorted(), loops[j].All.Sorted()
		if len(ai) != len(aj) {
			return len(ai) < len(aj)
		}
		for k := range ai {
			if ai[k] != aj[k] {
				return ai[k] < aj[k]
			}
		}
		return false
	})
	return loops
}

// LCA returns the lowest common ancestor of a and b in the dominator
// tree built from doms (vertex -> set of dominators), by walking each
// vertex's dominator chain and picking the common dominator with the
// largest dominator set (i.e. the closest one), following the pairwise
// lca/lca2 reduction decompile_ai.py uses for undirected-cycle merging.
func LCA(a, b int, doms map[int]VertexSet) (int, error) {
	common := doms[a].Intersect(doms[b])
	if len(common) == 0 {
		return 0, fmt.Errorf("graph: no common dominator between %d and %d", a, b)
	}
	best := -1
	bestSize := -1
	for _, v := range common.Sorted() {
		if len(doms[v]) > bestSize {
			best, bestSize = v, len(doms[v])
		}
	}
	return best, nil
}

// LCAAll reduces LCA pairwise over a non-empty set of vertices.
func LCAAll(vs []int, doms map[int]VertexSet) (int, error) {
	if len(vs) == 0 {
		return 0, fmt.Errorf("graph: LCAAll of empty set")
	}
	acc := vs[0]
	for _, v := range vs[1:] {
		next, err := LCA(acc, v, doms)
		if err != nil {
			return 0, err
		}
		acc = next
	}
	return acc, nil
}
