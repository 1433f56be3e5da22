// Package flow builds basic blocks from a parsed FLW0 container, performs
// per-procedure reachability and directed-cycle detection, and abstracts
// the raw instruction stream into procedure calls, native calls and
// two-way conditionals ready for AST lifting (§4.3-§4.5).
package flow

import (
	"fmt"

	"github.com/modestralts/flw0dec/lang/container"
	"github.com/modestralts/flw0dec/lang/isa"
)

// Diagnostics receives non-fatal warnings, mirroring container.Diagnostics.
type Diagnostics = container.Diagnostics

// RawBlock is a basic block still in its original instruction form: a
// contiguous slice of the decoded instruction stream starting at a label
// and ending at the first block-ending instruction (§4.3).
type RawBlock struct {
	Label          container.Label
	Instructions   []isa.Instruction
	ProcedureIndex int
}

// RawProcedure groups the blocks belonging to a single procedure, in
// label order with the entry block first.
type RawProcedure struct {
	Entry  container.Label
	Blocks []RawBlock
}

const (
	blockEnderEnd  = isa.END
	blockEnderJump = isa.JUMP
	blockEnderGoto = isa.GOTO
)

// BuildBlocks splits a parsed container's instruction stream into basic
// blocks at label boundaries, synthesizes explicit fallthrough GOTOs for
// blocks that don't end in END/JUMP/GOTO/IF, and eliminates dead
// instructions (anything after the first block-ender), following
// unpack_ai.py's Flow_Block construction.
func BuildBlocks(f *container.File, diags Diagnostics) ([]RawProcedure, error) {
	if diags == nil {
		diags = container.NopDiagnostics{}
	}

	labels := f.SortedLabels()
	if len(labels) == 0 {
		return nil, fmt.Errorf("flw0: container has no labels")
	}

	var procs []RawProcedure
	curProc := -1
	for i, label := range labels {
		var end int32
		if i+1 < len(labels) {
			end = int32(labels[i+1].TargetLocation)
		} else if n := len(f.Instructions); n > 0 {
			end = f.Instructions[n-1].Loc + 1
		}

		if label.Kind == container.LabelProc {
			procs = append(procs, RawProcedure{Entry: label})
			curProc = len(procs) - 1
		}
		if curProc < 0 {
			return nil, fmt.Errorf("flw0: instructions before first procedure label")
		}

		instrs := sliceByLoc(f.Instructions, int32(label.TargetLocation), end)
		instrs = eliminateDeadInstructions(instrs)

		var nextLabel *container.Label
		if i+1 < len(labels) {
			nextLabel = &labels[i+1]
		}
		instrs = synthesizeFallthrough(instrs, nextLabel, diags)

		procs[curProc].Blocks = append(procs[curProc].Blocks, RawBlock{
			Label:          label,
			Instructions:   instrs,
			ProcedureIndex: curProc,
		})
	}
	return procs, nil
}

func sliceByLoc(instrs []isa.Instruction, start, end int32) []isa.Instruction {
	var out []isa.Instruction
	for _, in := range instrs {
		if in.Loc >= start && in.Loc < end {
			out = append(out, in)
		}
	}
	return out
}

// eliminateDeadInstructions truncates a block's instruction list right
// after its first block-ending instruction (END/JUMP/GOTO), discarding
// any unreachable trailer.
func eliminateDeadInstructions(instrs []isa.Instruction) []isa.Instruction {
	for i, in := range instrs {
		if in.Opcode.BlockEnder() {
			return instrs[:i+1]
		}
	}
	return instrs
}

// synthesizeFallthrough appends an explicit GOTO to the next label when a
// block does not already end in GOTO, IF, JUMP or END, so later passes never
// need to reason about implicit fallthrough.
func synthesizeFallthrough(instrs []isa.Instruction, next *container.Label, diags Diagnostics) []isa.Instruction {
	noFallthrough := len(instrs) == 0
	if !noFallthrough {
		last := instrs[len(instrs)-1].Opcode
		noFallthrough = !(last.Jumper() || last == isa.END || last == isa.JUMP)
	}
	if !noFallthrough {
		return instrs
	}
	if next == nil {
		diags.Warnf("final block does not end in an IF, JUMP, GOTO, or END, or is empty")
		return instrs
	}
	return append(instrs, isa.Instruction{
		Opcode:  isa.GOTO,
		Operand: uint32(next.Index),
		Loc:     -1,
	})
}
