// Package container parses the FLW0 binary container: the file header,
// the five fixed section headers, and the procedure/jump label tables
// (§4.1, §6). It does not interpret instruction semantics; that is
// lang/isa and lang/flow's job.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Tag is the magic 4-byte ASCII "FLW0" tag, read little-endian as a u32.
const Tag uint32 = 0x30574C46

const (
	headerSize        = 0x20
	sectionHeaderSize = 0x10
	numSections       = 5
)

// Sentinel errors for the fatal conditions of §7. Non-fatal header
// anomalies (unexpected but non-zero-pad values) are reported through a
// diag.Sink instead of returned as errors.
var (
	ErrTruncated      = errors.New("flw0: truncated container")
	ErrHeaderMismatch = errors.New("flw0: header tag mismatch")
)

// Diagnostics receives warnings that do not abort parsing (§7's "warning"
// severity): non-zero reserved fields, unexpected header values, and the
// like. It mirrors unpack_ai.py's show_alerts-gated eprint calls.
type Diagnostics interface {
	Warnf(format string, args ...any)
}

// NopDiagnostics discards every warning, equivalent to running with
// --hide_alerts.
type NopDiagnostics struct{}

func (NopDiagnostics) Warnf(string, ...any) {}

// Header is the FLW0 container header (unpack_ai.py's Flow_Header),
// unpacked from the struct format "<BBH4IH10B".
type Header struct {
	FileType        uint8
	CompressionFlag uint8
	UserID          uint16
	Size            uint32
	Tag             uint32
	MemSize         uint32
	NumSections     uint32
	StorageSpace    uint16
	Pad             [10]uint8
}

// ParseHeader decodes the first 32 bytes of data as a Header and reports
// any anomaly on diags. It returns ErrTruncated if data is shorter than
// the header, and ErrHeaderMismatch if the magic tag does not match.
func ParseHeader(data []byte, diags Diagnostics) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncated, headerSize, len(data))
	}

	var h Header
	h.FileType = data[0]
	h.CompressionFlag = data[1]
	h.UserID = binary.LittleEndian.Uint16(data[2:4])
	h.Size = binary.LittleEndian.Uint32(data[4:8])
	h.Tag = binary.LittleEndian.Uint32(data[8:12])
	h.MemSize = binary.LittleEndian.Uint32(data[12:16])
	h.NumSections = binary.LittleEndian.Uint32(data[16:20])
	h.StorageSpace = binary.LittleEndian.Uint16(data[20:22])
	copy(h.Pad[:], data[22:32])

	if h.Tag != Tag {
		return h, fmt.Errorf("%w: want %#x, got %#x", ErrHeaderMismatch, Tag, h.Tag)
	}

	if diags == nil {
		diags = NopDiagnostics{}
	}
	if h.FileType != 0 {
		diags.Warnf("file_type is not 0x00! It is: %#02x", h.FileType)
	}
	if h.CompressionFlag != 0 {
		diags.Warnf("compresion_flag is not 0x00! It is: %#02x", h.CompressionFlag)
	}
	if h.UserID != 0 {
		diags.Warnf("user_id is not 0x00! It is: %#04x", h.UserID)
	}
	if h.NumSections != numSections {
		diags.Warnf("num_sections is not %d! It is: %d", numSections, h.NumSections)
	}
	for _, p := range h.Pad {
		if p != 0 {
			diags.Warnf("found non-zero padding: %#02x", p)
		}
	}

	return h, nil
}

// SectionHeader is one of the five 16-byte section descriptors that
// follow the file header (unpack_ai.py's Flow_Section_Header, struct
// format "<4I").
type SectionHeader struct {
	ID        uint32
	EntrySize uint32
	NumEntries uint32
	Offset    uint32
}

// ParseSectionHeaders reads the numSections fixed section headers that
// immediately follow the 32-byte file header.
func ParseSectionHeaders(data []byte) ([numSections]SectionHeader, error) {
	var out [numSections]SectionHeader
	for i := 0; i < numSections; i++ {
		base := headerSize + sectionHeaderSize*i
		if len(data) < base+sectionHeaderSize {
			return out, fmt.Errorf("%w: section header %d", ErrTruncated, i)
		}
		out[i] = SectionHeader{
			ID:         binary.LittleEndian.Uint32(data[base : base+4]),
			EntrySize:  binary.LittleEndian.Uint32(data[base+4 : base+8]),
			NumEntries: binary.LittleEndian.Uint32(data[base+8 : base+12]),
			Offset:     binary.LittleEndian.Uint32(data[base+12 : base+16]),
		}
	}
	return out, nil
}

// Entries slices out the raw per-entry byte ranges described by sh,
// mirroring unpack_ai.py's Flow_Section.
func Entries(data []byte, sh SectionHeader) ([][]byte, error) {
	out := make([][]byte, 0, sh.NumEntries)
	for idx := uint32(0); idx < sh.NumEntries; idx++ {
		base := sh.Offset + sh.EntrySize*idx
		end := base + sh.EntrySize
		if uint64(end) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: section id %d entry %d", ErrTruncated, sh.ID, idx)
		}
		out = append(out, data[base:end])
	}
	return out, nil
}
