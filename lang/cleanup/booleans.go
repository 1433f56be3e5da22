package cleanup

import "github.com/modestralts/flw0dec/lang/ast"

// SimplifyBooleanExpressions rewrites and/or/eq/neq nodes with one
// already-literal, already-bool-typed operand into the simpler
// equivalent expression (x && true -> x, x || false -> x, x == true ->
// x, x == false -> !x, x != false -> x, x != true -> !x, and so on), to
// a fixed point since a
// simplification can make an enclosing expression simplifiable in turn.
// Must run after InferTypes.
func SimplifyBooleanExpressions(a *ast.ABST) {
	const timeout = 1000
	for try := 0; try < timeout; try++ {
		changed := false
		for i := 0; i < a.NumBlocks(); i++ {
			if !a.BlockUsed(ast.BlockID(i)) {
				continue
			}
			for _, c := range a.Block(ast.BlockID(i)).Children {
				if simplifyBoolNode(a, c) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}

func simplifyBoolNode(a *ast.ABST, id ast.NodeID) bool {
	n := a.Node(id)
	changed := false
	for _, c := range n.Children {
		if simplifyBoolNode(a, c) {
			changed = true
		}
	}

	switch n.Tag {
	case "and", "or":
		if len(n.Children) != 2 {
			break
		}
		setVal := int64(0)
		if n.Tag == "or" {
			setVal = 1
		}
		otherVal := int64(1) - setVal

		rhsID, lhsID := n.Children[0], n.Children[1]
		rhs, lhs := a.Node(rhsID), a.Node(lhsID)
		if (rhs.Tag == "lit" && lhs.Type == ast.TypeBool) || (rhs.Type == ast.TypeBool && lhs.Tag == "lit") {
			boolSide, litSide := rhs, lhs
			if rhs.Tag == "lit" {
				boolSide, litSide = lhs, rhs
			}
			switch litSide.Vals[0] {
			case otherVal:
				a.DeleteNode(rhsID)
				a.DeleteNode(lhsID)
				n.Tag, n.Vals, n.Children, n.Type = boolSide.Tag, boolSide.Vals, boolSide.Children, boolSide.Type
				changed = true
			case setVal:
				a.DeleteNode(rhsID)
				a.DeleteNode(lhsID)
				n.Tag, n.Vals, n.Children, n.Type = "lit", []int64{setVal}, nil, ast.TypeBool
				changed = true
			}
		}

	case "eq", "neq":
		if len(n.Children) != 2 {
			break
		}
		rhsID, lhsID := n.Children[0], n.Children[1]
		rhs, lhs := a.Node(rhsID), a.Node(lhsID)
		if (rhs.Tag == "lit" && lhs.Type == ast.TypeBool) || (rhs.Type == ast.TypeBool && lhs.Tag == "lit") {
			boolSide, boolSideID, litSide := rhs, rhsID, lhs
			if rhs.Tag == "lit" {
				boolSide, boolSideID = lhs, lhsID
			}
			keepVal := int64(1)
			if n.Tag == "neq" {
				keepVal = 0
			}
			switch litSide.Vals[0] {
			case keepVal:
				a.DeleteNode(rhsID)
				a.DeleteNode(lhsID)
				n.Tag, n.Vals, n.Children, n.Type = boolSide.Tag, boolSide.Vals, boolSide.Children, boolSide.Type
				changed = true
			case 1 - keepVal:
				litSideID := rhsID
				if litSideID == boolSideID {
					litSideID = lhsID
				}
				a.DeleteNode(litSideID)
				n.Tag, n.Vals, n.Children, n.Type = "boolnot", nil, []ast.NodeID{boolSideID}, ast.TypeBool
				changed = true
			}
		}
	}
	return changed
}
