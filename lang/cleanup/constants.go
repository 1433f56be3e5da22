package cleanup

import "github.com/modestralts/flw0dec/lang/ast"

var foldable = map[string]func(v []int64) int64{
	"add": func(v []int64) int64 { return v[0] + v[1] },
	"sub": func(v []int64) int64 { return v[0] - v[1] },
	"mul": func(v []int64) int64 { return v[0] * v[1] },
	"div": func(v []int64) int64 {
		if v[1] == 0 {
			return v[0]
		}
		return v[0] / v[1]
	},
	"neg":    func(v []int64) int64 { return -v[0] },
	"bitnot": func(v []int64) int64 { return ^v[0] },
	"boolnot": func(v []int64) int64 {
		if v[0] == 1 {
			return 0
		}
		return 1
	},
	"or":  func(v []int64) int64 { return v[0] | v[1] },
	"and": func(v []int64) int64 { return v[0] & v[1] },
	"eq":  func(v []int64) int64 { return boolInt(v[0] == v[1]) },
	"neq": func(v []int64) int64 { return boolInt(v[0] != v[1]) },
	"lt":  func(v []int64) int64 { return boolInt(v[0] < v[1]) },
	"gt":  func(v []int64) int64 { return boolInt(v[0] > v[1]) },
	"lte": func(v []int64) int64 { return boolInt(v[0] <= v[1]) },
	"gte": func(v []int64) int64 { return boolInt(v[0] >= v[1]) },
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// FoldConstants replaces any expression whose operands are all already
// literals with a single "lit" node. It is idempotent: a node with no
// foldable tag, or with a non-literal operand, is left untouched, and
// folding is applied bottom-up so a parent becomes foldable in the same
// pass its children just were.
func FoldConstants(a *ast.ABST) {
	var foldNode func(id ast.NodeID)
	foldNode = func(id ast.NodeID) {
		n := a.Node(id)
		for _, c := range n.Children {
			foldNode(c)
		}
		fn, ok := foldable[n.Tag]
		if !ok {
			return
		}
		vals := make([]int64, 0, len(n.Children))
		for _, c := range n.Children {
			child := a.Node(c)
			if child.Tag != "lit" {
				return
			}
			vals = append(vals, child.Vals[0])
		}
		result := fn(vals)
		for _, c := range n.Children {
			a.DeleteNode(c)
		}
		n.Tag = "lit"
		n.Vals = []int64{result}
		n.Children = nil
	}
	blockLoop(a, foldNode)
}
