package registry_test

import (
	"testing"

	"github.com/modestralts/flw0dec/lang/ast"
	"github.com/modestralts/flw0dec/lang/registry"
	"github.com/stretchr/testify/assert"
)

func TestLoadEO3Lookup(t *testing.T) {
	table, ok := registry.Load("EO3")
	assert.True(t, ok)

	n, ok := table.Lookup(0x80)
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = table.Lookup(0xFFFF)
	assert.False(t, ok)
}

func TestLoadUnknownGame(t *testing.T) {
	table, ok := registry.Load("EO5")
	assert.False(t, ok)
	assert.Nil(t, table)
}

func TestReturnTypeMapsDeclaredTypes(t *testing.T) {
	table, _ := registry.Load("EO3")

	typ, ok := table.ReturnType(0x80) // rand: int
	assert.True(t, ok)
	assert.Equal(t, ast.TypeInt, typ)

	typ, ok = table.ReturnType(0xC0) // hp_check: bool
	assert.True(t, ok)
	assert.Equal(t, ast.TypeBool, typ)

	// store has no return value.
	_, ok = table.ReturnType(0x86)
	assert.False(t, ok)

	_, ok = table.ReturnType(0xFFFF)
	assert.False(t, ok)
}

func TestNameStripsLeadingUnderscore(t *testing.T) {
	table, _ := registry.Load("EO3")

	name, ok := table.Name(0x81) // registered as "_set_flag"
	assert.True(t, ok)
	assert.Equal(t, "set_flag", name)

	name, ok = table.Name(0x80) // registered as "rand", no prefix to strip
	assert.True(t, ok)
	assert.Equal(t, "rand", name)

	_, ok = table.Name(0xFFFF)
	assert.False(t, ok)
}

func TestNewTableBuildsFromFunctionList(t *testing.T) {
	table := registry.NewTable("custom", []registry.Function{
		{Index: 1, NumParams: 3, HasRetval: true, ReturnType: "int", Name: "foo"},
	})

	n, ok := table.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, "custom", table.Game)
}
