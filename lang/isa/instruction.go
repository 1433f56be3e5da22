package isa

import (
	"fmt"
	"math"
)

func floatFromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// Instruction is a single decoded FLW0 bytecode instruction (§3, §4.2).
type Instruction struct {
	Opcode  Opcode
	Operand uint32
	Wide    bool
	Float   bool

	// Loc is the instruction's position in the (slot-indexed, not
	// byte-indexed) instruction stream. Synthetic instructions injected by
	// the block builder (e.g. fallthrough GOTOs) carry Loc == -1.
	Loc int32
}

// OperandFloat interprets Operand as the bit pattern of an IEEE-754
// float32, valid only when i.Float is true.
func (i Instruction) OperandFloat() float32 {
	return floatFromBits(i.Operand)
}

// FormatRaw renders the instruction the way unpack_ai.py's
// Flow_Instruction.display does: location, raw hex bytes (little-endian
// byte-swapped halves, matching the original's byte-order juggling), then
// a readable "# MNEMONIC operand" comment. resolve is called for jumper
// and caller opcodes to turn the raw operand into a label name; it may be
// nil, in which case the raw operand is shown.
func (i Instruction) FormatRaw(resolve func(op Opcode, operand uint32) string) string {
	var raw string
	if !i.Wide {
		raw = fmt.Sprintf("%02x00 %04x", uint8(i.Opcode), i.Operand)
	} else {
		raw = fmt.Sprintf("%08x\n\t%08x", uint32(i.Opcode), i.Operand)
	}

	operandName := fmt.Sprintf("%#x", i.Operand)
	if i.Wide && i.Float {
		operandName = fmt.Sprintf("%v", i.OperandFloat())
	}
	if resolve != nil && (i.Opcode.Jumper() || i.Opcode.Caller()) {
		operandName = resolve(i.Opcode, i.Operand)
	}
	if i.Opcode.NoOperand() {
		operandName = ""
	}

	return fmt.Sprintf("%d\t%s\t# %s %s", i.Loc, raw, i.Opcode, operandName)
}
