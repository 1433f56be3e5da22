package container

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/modestralts/flw0dec/lang/isa"
)

// File is a fully parsed FLW0 container: its header, its procedure and
// jump label tables (sorted by target location, ready for the block
// builder in lang/flow), and its decoded instruction stream.
type File struct {
	Header       Header
	ProcLabels   []Label
	JumpLabels   []Label
	Instructions []isa.Instruction
}

// Parse decodes a complete FLW0 container from data, following
// unpack_ai.py's Flow_File.__init__: header, five section headers,
// section 0 (procedure labels), section 1 (jump labels), section 2
// (instructions, honoring wide/float encoding), and warns (never fails)
// on unexpected section 3/4 contents.
func Parse(data []byte, diags Diagnostics) (*File, error) {
	if diags == nil {
		diags = NopDiagnostics{}
	}

	hdr, err := ParseHeader(data, diags)
	if err != nil {
		return nil, err
	}

	sections, err := ParseSectionHeaders(data)
	if err != nil {
		return nil, err
	}

	procEntries, err := Entries(data, sections[0])
	if err != nil {
		return nil, err
	}
	procLabels, err := ParseLabels(procEntries, LabelProc)
	if err != nil {
		return nil, err
	}

	jumpEntries, err := Entries(data, sections[1])
	if err != nil {
		return nil, err
	}
	jumpLabels, err := ParseLabels(jumpEntries, LabelJump)
	if err != nil {
		return nil, err
	}

	instrEntries, err := Entries(data, sections[2])
	if err != nil {
		return nil, err
	}
	instrs, err := decodeInstructions(instrEntries)
	if err != nil {
		return nil, err
	}

	if sections[3].NumEntries > 0 {
		diags.Warnf("section 3 is not empty (%d entries)", sections[3].NumEntries)
	}
	sec4, err := Entries(data, sections[4])
	if err == nil {
		for _, pad := range sec4 {
			for _, b := range pad {
				if b != 0 {
					diags.Warnf("section 4 has non-zero padding: %#02x", b)
					break
				}
			}
		}
	}

	return &File{
		Header:       hdr,
		ProcLabels:   procLabels,
		JumpLabels:   jumpLabels,
		Instructions: instrs,
	}, nil
}

// decodeInstructions walks section 2's 4-byte slots, consuming a second
// slot for wide opcodes (0x00-0x03) and interpreting their operand as a
// float for PUSHF/PUSHIF, per unpack_ai.py's decode loop. Each returned
// instruction records its slot position in Loc; slots consumed as the
// second half of a wide instruction are omitted entirely (they have no
// standalone meaning), where the original pads with
// "instrs.append(None)". After a wide instruction, an element's slice
// index is therefore smaller than its Loc.
func decodeInstructions(entries [][]byte) ([]isa.Instruction, error) {
	out := make([]isa.Instruction, 0, len(entries))
	for idx := 0; idx < len(entries); idx++ {
		if len(entries[idx]) != 4 {
			return nil, fmt.Errorf("%w: instruction slot %d", ErrTruncated, idx)
		}
		opcodeWord := binary.LittleEndian.Uint32(entries[idx])
		op := isa.Opcode(opcodeWord)

		if op.Wide() {
			if idx+1 >= len(entries) {
				return nil, fmt.Errorf("%w: wide instruction at slot %d missing operand slot", ErrTruncated, idx)
			}
			operandWord := binary.LittleEndian.Uint32(entries[idx+1])
			out = append(out, isa.Instruction{
				Opcode:  op,
				Operand: operandWord,
				Wide:    true,
				Float:   op.Float(),
				Loc:     int32(idx),
			})
			idx++
			continue
		}

		// Narrow instructions pack a 16-bit opcode and 16-bit operand into
		// the same 4-byte slot ("<2h" in the original).
		narrowOpcode := uint16(opcodeWord)
		narrowOperand := uint16(opcodeWord >> 16)
		out = append(out, isa.Instruction{
			Opcode:  isa.Opcode(narrowOpcode),
			Operand: uint32(narrowOperand),
			Wide:    false,
			Loc:     int32(idx),
		})
	}
	return out, nil
}

// SortedLabels returns the combined procedure and jump label tables,
// sorted by target location, as unpack_ai.py's Flow_File does before
// splitting the instruction stream into blocks.
func (f *File) SortedLabels() []Label {
	all := make([]Label, 0, len(f.ProcLabels)+len(f.JumpLabels))
	all = append(all, f.ProcLabels...)
	all = append(all, f.JumpLabels...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TargetLocation < all[j].TargetLocation
	})
	return all
}

// ResolveOperand returns a human-readable name for a jumper's or caller's
// operand, used by disassembly rendering.
func (f *File) ResolveOperand(op isa.Opcode, operand uint32) string {
	switch {
	case op.Caller():
		if int(operand) < len(f.ProcLabels) {
			l := f.ProcLabels[operand]
			return fmt.Sprintf("%s (loc %d)", l.Name, l.TargetLocation)
		}
	case op.Jumper():
		if int(operand) < len(f.JumpLabels) {
			l := f.JumpLabels[operand]
			return fmt.Sprintf("%s (loc %d)", l.Name, l.TargetLocation)
		}
	}
	return fmt.Sprintf("%#x", operand)
}

// FormatDisassembly renders every instruction in order, one per line,
// resolving jumper/caller operands to label names (§8 "raw disassembly
// rendering" supplement).
func (f *File) FormatDisassembly() string {
	out := fmt.Sprintf("Number of allocated storage spaces: %d\n\n", f.Header.StorageSpace)
	for _, instr := range f.Instructions {
		out += instr.FormatRaw(f.ResolveOperand) + "\n"
	}
	return out
}
