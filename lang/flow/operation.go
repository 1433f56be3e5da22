package flow

import (
	"fmt"
	"strings"

	"github.com/modestralts/flw0dec/lang/isa"
)

// Operation is one abstracted instruction: an opcode plus its resolved
// arguments, with Pushes/Pops filled in once the arity of every call site
// is known (§3's "Operation"). Pushes/Pops are nil until arity inference
// completes for opcodes whose stack effect is not statically fixed
// (CALL, and FUNC/SEND against an unknown native).
type Operation struct {
	Opcode isa.Opcode
	Args   []int64
	Pushes *int
	Pops   *int
}

func (o Operation) String() string {
	args := ""
	if len(o.Args) > 0 {
		parts := make([]string, len(o.Args))
		for i, a := range o.Args {
			parts[i] = fmt.Sprintf("%d", a)
		}
		args = "[" + strings.Join(parts, " ") + "]"
	}
	push, pop := "?", "?"
	if o.Pushes != nil {
		push = fmt.Sprintf("%d", *o.Pushes)
	}
	if o.Pops != nil {
		pop = fmt.Sprintf("%d", *o.Pops)
	}
	return fmt.Sprintf("%s\t%s\t(+%s -%s)", o.Opcode, args, push, pop)
}

// Block is an abstracted basic block: a sequence of Operations identified
// by its renumbered block id.
type Block struct {
	ID         int
	Operations []Operation
}

// ProcedureInfo records a procedure's entry block id, name, and (once
// inferred) its calling arity, following decompile_ai.py's
// Procedure_Info.
type ProcedureInfo struct {
	BlockNum int
	Name     string
	Pushes   int
	Pops     int
}

// Program is the complete abstracted flow: every renumbered block, the
// procedure table, and the set of special-label block ids recognized by
// name (author-named jump labels, kept as explicit labels and gotos).
type Program struct {
	Blocks        []Block
	Procedures    []ProcedureInfo
	SpecialLabels map[int]string
}

func intp(v int) *int { return &v }
