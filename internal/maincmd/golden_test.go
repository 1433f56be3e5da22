package maincmd_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/modestralts/flw0dec/internal/filetest"
	"github.com/modestralts/flw0dec/internal/maincmd"
	"github.com/modestralts/flw0dec/lang/container"
	"github.com/modestralts/flw0dec/lang/isa"
	"github.com/stretchr/testify/require"
)

var testUpdateGoldenTests = flag.Bool("test.update-golden-tests", false, "If set, replace expected pipeline golden results with actual results.")

const (
	headerSize  = 0x20
	secHdrSize  = 0x10
	numSections = 5
	labelSize   = 0x20
)

func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }
func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }

// buildAddFixture assembles a one-procedure FLW0 container ("main", no
// parameters) computing r0 = 4 + 3; return, the same instruction sequence
// lang/ast/lift_test.go's buildProgram exercises directly against the
// lifter, here run through the full container-parse-through-print
// pipeline instead.
func buildAddFixture() []byte {
	procLabelsOff := headerSize + secHdrSize*numSections
	jumpLabelsOff := procLabelsOff + labelSize*1
	instrOff := jumpLabelsOff // no jump labels
	const numInstrSlots = 7  // PUSHI,operand, PUSHI,operand, ADD, POPLIX, END
	instrSize := 4 * numInstrSlots
	sec3Off := instrOff + instrSize
	sec4Off := sec3Off
	total := sec4Off

	buf := make([]byte, total)

	// header
	putU16(buf, 2, 0)
	putU32(buf, 4, uint32(total))
	putU32(buf, 8, container.Tag)
	putU32(buf, 12, 0)
	putU32(buf, 16, numSections)
	putU16(buf, 20, 0) // storage_space
	// buf[22:32] (pad) stays zero

	putSecHdr := func(idx int, id, entrySize, numEntries, offset uint32) {
		base := headerSize + secHdrSize*idx
		putU32(buf, base, id)
		putU32(buf, base+4, entrySize)
		putU32(buf, base+8, numEntries)
		putU32(buf, base+12, offset)
	}
	putSecHdr(0, 0, labelSize, 1, uint32(procLabelsOff))
	putSecHdr(1, 1, labelSize, 0, uint32(jumpLabelsOff))
	putSecHdr(2, 2, 4, numInstrSlots, uint32(instrOff))
	putSecHdr(3, 3, 0, 0, uint32(sec3Off))
	putSecHdr(4, 4, 1, 0, uint32(sec4Off))

	// proc label "main" at loc 0
	copy(buf[procLabelsOff:], "main")
	putU32(buf, procLabelsOff+24, 0) // loc

	// PUSHI 3 (wide: opcode word, then operand word)
	putU32(buf, instrOff, uint32(isa.PUSHI))
	putU32(buf, instrOff+4, 3)
	// PUSHI 4
	putU32(buf, instrOff+8, uint32(isa.PUSHI))
	putU32(buf, instrOff+12, 4)
	// ADD (narrow: opcode in low 16 bits, operand 0 in high 16 bits)
	putU32(buf, instrOff+16, uint32(isa.ADD))
	// POPLIX 0 (narrow, register 0)
	putU32(buf, instrOff+20, uint32(isa.POPLIX))
	// END (narrow)
	putU32(buf, instrOff+24, uint32(isa.END))

	return buf
}

func TestDecompileGoldenFixture(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "add_two_literals.bf")
	require.NoError(t, os.WriteFile(inPath, buildAddFixture(), 0600))
	fi, err := os.Stat(inPath)
	require.NoError(t, err)

	var out, errs bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errs}

	c := &maincmd.Cmd{}
	require.NoError(t, c.Decompile(context.Background(), stdio, []string{inPath}))

	resultDir := filepath.Join("testdata", "out")
	filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateGoldenTests)
	require.Empty(t, errs.String())
}
