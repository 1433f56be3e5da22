package container

import (
	"encoding/binary"
	"fmt"
)

// LabelKind classifies a label by the section it came from and, for jump
// labels, a name-based heuristic (§4.1, §4.3): a jump label whose name
// does not start with "_" is treated as a "special" label (a label the
// script author named, kept in the output as an explicit label and
// goto) rather than an ordinary compiler-generated jump target.
type LabelKind uint8

const (
	LabelProc LabelKind = iota
	LabelJump
	LabelSpecial
)

func (k LabelKind) String() string {
	switch k {
	case LabelProc:
		return "proc"
	case LabelJump:
		return "jump"
	case LabelSpecial:
		return "special"
	default:
		return "unknown"
	}
}

const labelRecordSize = 0x20

// Label is a named entry in either the procedure or jump label table
// (unpack_ai.py's Flow_Label, struct format "<24B2I"): a NUL-padded
// 24-byte name, a u32 target location (an index into the instruction
// slot stream) and a reserved u32 pad.
type Label struct {
	Name           string
	TargetLocation uint32
	Pad            uint32
	Index          int
	Kind           LabelKind
}

// ParseLabels decodes a label section's entries (each labelRecordSize
// bytes) into Labels, assigning Index in table order and Kind per kind.
// A jump label whose name does not start with "_" is reclassified as
// LabelSpecial.
func ParseLabels(entries [][]byte, kind LabelKind) ([]Label, error) {
	out := make([]Label, 0, len(entries))
	for i, e := range entries {
		if len(e) < labelRecordSize {
			return nil, fmt.Errorf("%w: label record %d", ErrTruncated, i)
		}
		name := nulString(e[:24])
		l := Label{
			Name:           name,
			TargetLocation: binary.LittleEndian.Uint32(e[24:28]),
			Pad:            binary.LittleEndian.Uint32(e[28:32]),
			Index:          i,
			Kind:           kind,
		}
		if kind == LabelJump && (len(name) == 0 || name[0] != '_') {
			l.Kind = LabelSpecial
		}
		out = append(out, l)
	}
	return out, nil
}

func nulString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
