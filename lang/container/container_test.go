package container_test

import (
	"encoding/binary"
	"testing"

	"github.com/modestralts/flw0dec/lang/container"
	"github.com/modestralts/flw0dec/lang/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectDiags struct{ msgs []string }

func (c *collectDiags) Warnf(format string, args ...any) {
	c.msgs = append(c.msgs, format)
}

func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }
func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }

// buildMinimalContainer builds a header-only-plus-one-END-instruction
// FLW0 container: one procedure label "main" at loc 0, no jump labels,
// and a single END instruction.
func buildMinimalContainer(t *testing.T) []byte {
	t.Helper()

	const (
		headerSize  = 0x20
		secHdrSize  = 0x10
		numSections = 5
		labelSize   = 0x20
	)

	procLabelsOff := headerSize + secHdrSize*numSections
	jumpLabelsOff := procLabelsOff + labelSize*1
	instrOff := jumpLabelsOff + 0
	sec3Off := instrOff + 4*1
	sec4Off := sec3Off
	total := sec4Off

	buf := make([]byte, total)

	// header
	buf[0] = 0 // file_type
	buf[1] = 0 // compression_flag
	putU16(buf, 2, 0)
	putU32(buf, 4, uint32(total))
	putU32(buf, 8, container.Tag)
	putU32(buf, 12, 0)
	putU32(buf, 16, numSections)
	putU16(buf, 20, 0) // storage_space
	// buf[22:32] (pad) stays zero from make([]byte, total)

	// section headers
	putSecHdr := func(idx int, id, entrySize, numEntries, offset uint32) {
		base := headerSize + secHdrSize*idx
		putU32(buf, base, id)
		putU32(buf, base+4, entrySize)
		putU32(buf, base+8, numEntries)
		putU32(buf, base+12, offset)
	}
	putSecHdr(0, 0, labelSize, 1, uint32(procLabelsOff))
	putSecHdr(1, 1, labelSize, 0, uint32(jumpLabelsOff))
	putSecHdr(2, 2, 4, 1, uint32(instrOff))
	putSecHdr(3, 3, 0, 0, uint32(sec3Off))
	putSecHdr(4, 4, 1, 0, uint32(sec4Off))

	// proc label "main"
	copy(buf[procLabelsOff:], "main")
	putU32(buf, procLabelsOff+24, 0) // loc

	// single END instruction, narrow, operand 0
	putU16(buf, instrOff, uint16(isa.END))
	putU16(buf, instrOff+2, 0)

	return buf
}

func TestParseMinimalContainer(t *testing.T) {
	data := buildMinimalContainer(t)

	diags := &collectDiags{}
	f, err := container.Parse(data, diags)
	require.NoError(t, err)

	assert.Len(t, f.ProcLabels, 1)
	assert.Equal(t, "main", f.ProcLabels[0].Name)
	assert.Empty(t, f.JumpLabels)
	require.Len(t, f.Instructions, 1)
	assert.Equal(t, isa.END, f.Instructions[0].Opcode)
	assert.Empty(t, diags.msgs)
}

func TestParseHeaderMismatch(t *testing.T) {
	data := buildMinimalContainer(t)
	// corrupt the tag
	putU32(data, 8, 0xDEADBEEF)

	_, err := container.ParseHeader(data, container.NopDiagnostics{})
	assert.ErrorIs(t, err, container.ErrHeaderMismatch)
}

func TestParseTruncated(t *testing.T) {
	_, err := container.ParseHeader([]byte{1, 2, 3}, container.NopDiagnostics{})
	assert.ErrorIs(t, err, container.ErrTruncated)
}

func TestParseHeaderNonZeroStorageSpaceDoesNotOverrunIntoSectionHeaders(t *testing.T) {
	data := buildMinimalContainer(t)
	putU16(data, 20, 0x1234) // storage_space

	diags := &collectDiags{}
	h, err := container.ParseHeader(data, diags)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x1234), h.StorageSpace)
	for _, p := range h.Pad {
		assert.Equal(t, uint8(0), p)
	}
	assert.Empty(t, diags.msgs, "a non-zero storage_space must not be mistaken for non-zero padding")

	f, err := container.Parse(data, diags)
	require.NoError(t, err)
	require.Len(t, f.ProcLabels, 1)
	assert.Equal(t, "main", f.ProcLabels[0].Name, "first section header must parse correctly, not be overrun by storage_space")
}

func TestParseWarnsOnNonZeroFileType(t *testing.T) {
	data := buildMinimalContainer(t)
	data[0] = 1 // file_type

	diags := &collectDiags{}
	_, err := container.Parse(data, diags)
	require.NoError(t, err)
	assert.NotEmpty(t, diags.msgs)
}
