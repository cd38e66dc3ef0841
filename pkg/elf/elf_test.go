package elf

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newTestHeader builds the smallest valid ELF32 little-endian file header.
func newTestHeader() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf, elfMagic)
	buf[EI_CLASS] = ELFCLASS32
	buf[EI_DATA] = ELFDATA2LSB
	buf[EI_VERSION] = 1
	return buf
}

func TestNewHeaderValid(t *testing.T) {
	_, err := NewHeader(newTestHeader())
	assert.NoError(t, err)
}

func TestNewHeaderTruncated(t *testing.T) {
	_, err := NewHeader(newTestHeader()[:HeaderSize-1])
	assert.ErrorIs(t, err, TruncatedHeaderErr)
}

func TestValidateBadMagic(t *testing.T) {
	buf := newTestHeader()
	buf[EI_MAG0] = 0x7e

	_, err := NewHeader(buf)
	assert.ErrorIs(t, err, BadMagicErr)
}

func TestValidateUnsupportedClass(t *testing.T) {
	buf := newTestHeader()
	buf[EI_CLASS] = ELFCLASS64

	_, err := NewHeader(buf)
	assert.ErrorIs(t, err, UnsupportedClassErr)
}

func TestValidateUnsupportedEndianness(t *testing.T) {
	buf := newTestHeader()
	buf[EI_DATA] = ELFDATA2MSB

	_, err := NewHeader(buf)
	assert.ErrorIs(t, err, UnsupportedEndiannessErr)
}

func TestHeaderFieldAccess(t *testing.T) {
	buf := newTestHeader()
	binary.LittleEndian.PutUint32(buf[28:], 0x34)
	binary.LittleEndian.PutUint32(buf[32:], 0x600)
	binary.LittleEndian.PutUint16(buf[42:], 32)
	binary.LittleEndian.PutUint16(buf[44:], 3)
	binary.LittleEndian.PutUint16(buf[46:], 40)
	binary.LittleEndian.PutUint16(buf[48:], 7)

	h, err := NewHeader(buf)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x34), h.PhOff())
	assert.Equal(t, uint32(0x600), h.ShOff())
	assert.Equal(t, uint32(32), h.PhEntSize())
	assert.Equal(t, uint32(3), h.PhNum())
	assert.Equal(t, uint32(40), h.ShEntSize())
	assert.Equal(t, uint32(7), h.ShNum())

	h.SetPhOff(0x640)
	h.SetShOff(0x5a0)
	h.SetPhNum(2)

	assert.Equal(t, uint32(0x640), binary.LittleEndian.Uint32(buf[28:]))
	assert.Equal(t, uint32(0x5a0), binary.LittleEndian.Uint32(buf[32:]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(buf[44:]))

	// A two-byte write must not spill into the neighbouring field.
	assert.Equal(t, uint32(40), h.ShEntSize())
}

func TestPhdrEncodeDecode(t *testing.T) {
	ref := ELF32Phdr{
		Type:   PT_LOAD,
		Offset: 0x200,
		Vaddr:  0x1000,
		Paddr:  0x1000,
		FileSz: 0x100,
		MemSz:  0x180,
		Flags:  PF_R | PF_X,
		Align:  0x1000,
	}

	b := make([]byte, PhdrEntrySize)
	ref.Encode(b)

	got, err := ParsePhdr(b)
	assert.NoError(t, err)
	assert.Equal(t, ref, got)
}

func TestParsePhdrTruncated(t *testing.T) {
	_, err := ParsePhdr(make([]byte, PhdrEntrySize-1))
	assert.ErrorIs(t, err, TruncatedPhdrTableErr)
}

func TestParsePhdrTable(t *testing.T) {
	const phOff = 0x34
	refs := []ELF32Phdr{
		{Type: PT_LOAD, Offset: 0x94, FileSz: 0x40, MemSz: 0x40, Flags: PF_R, Align: 4},
		{Type: PT_LOAD, Offset: 0x200, Vaddr: 0x1000, Paddr: 0x1000, FileSz: 0x100, MemSz: 0x100, Flags: PF_R | PF_X, Align: 0x1000},
	}

	buf := make([]byte, phOff+len(refs)*PhdrEntrySize)
	for i, ref := range refs {
		ref.Encode(buf[phOff+i*PhdrEntrySize:])
	}

	entries, err := ParsePhdrTable(buf, phOff, PhdrEntrySize, uint32(len(refs)))
	assert.NoError(t, err)
	assert.Equal(t, refs, entries)
}

func TestParsePhdrTablePastEnd(t *testing.T) {
	buf := make([]byte, 64)

	_, err := ParsePhdrTable(buf, 0x34, PhdrEntrySize, 3)
	assert.ErrorIs(t, err, TruncatedPhdrTableErr)
}

func TestSectionDataOff(t *testing.T) {
	const entryOff = 40
	buf := make([]byte, 2*40)
	binary.LittleEndian.PutUint32(buf[entryOff+ShOffField:], 0x94)

	assert.Equal(t, uint32(0x94), SectionDataOff(buf, entryOff))

	SetSectionDataOff(buf, entryOff, 0x34)
	assert.Equal(t, uint32(0x34), SectionDataOff(buf, entryOff))
}
