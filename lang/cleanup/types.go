package cleanup

import "github.com/modestralts/flw0dec/lang/ast"

// NativeTypes supplies a native function's declared return type so
// InferTypes can propagate it onto the "func" nodes that call it.
type NativeTypes interface {
	ReturnType(index int64) (ast.ExprType, bool)
}

var stmtTags = map[string]bool{"seq": true, "assign": true, "send": true, "return": true, "if": true, "goto": true}
var boolTags = map[string]bool{"eq": true, "neq": true, "lt": true, "gt": true, "lte": true, "gte": true, "boolnot": true}
var intTags = map[string]bool{"add": true, "sub": true, "mul": true, "div": true, "neg": true, "bitnot": true}

// InferTypes assigns the shallow int/bool/stmt type lattice
// SimplifyBooleanExpressions relies on: most nodes stay Unknown, and
// "and"/"or" only get classified bool when both operands already are.
func InferTypes(a *ast.ABST, natives NativeTypes) {
	var infer func(id ast.NodeID)
	infer = func(id ast.NodeID) {
		n := a.Node(id)
		for _, c := range n.Children {
			infer(c)
		}
		switch {
		case stmtTags[n.Tag]:
			n.Type = ast.TypeStmt
		case boolTags[n.Tag]:
			n.Type = ast.TypeBool
		case intTags[n.Tag]:
			n.Type = ast.TypeInt
		case n.Tag == "and" || n.Tag == "or":
			allBool := len(n.Children) > 0
			for _, c := range n.Children {
				if a.Node(c).Type != ast.TypeBool {
					allBool = false
				}
			}
			if allBool {
				n.Type = ast.TypeBool
			}
		case n.Tag == "lit":
			if len(n.Vals) > 0 && n.Vals[0] != 0 && n.Vals[0] != 1 {
				n.Type = ast.TypeInt
			}
		case n.Tag == "func":
			if natives != nil && len(n.Vals) > 0 {
				if t, ok := natives.ReturnType(n.Vals[0]); ok {
					n.Type = t
				}
			}
		}
	}
	blockLoop(a, infer)
}
