package ast_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/modestralts/flw0dec/lang/ast"
)

// dumpOnFailure logs a full structural dump of a once the calling test
// fails, so a broken lift/structure/cleanup assertion doesn't require a
// rerun under a debugger just to see what the ABST actually looked like.
func dumpOnFailure(t *testing.T, a *ast.ABST) {
	t.Helper()
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("ABST dump:\n%s", spew.Sdump(a))
		}
	})
}
