package elf

import (
	"bytes"
	"encoding/binary"
	"errors"
)

/*
   ELF32 structures and constants follow the TIS ELF-32 specification.
   Only the fields this tool reads or rewrites are modeled; everything
   else in the image is treated as opaque bytes.
*/

const (
	EI_MAG0    = 0
	EI_MAG1    = 1
	EI_MAG2    = 2
	EI_MAG3    = 3
	EI_CLASS   = 4
	EI_DATA    = 5
	EI_VERSION = 6
	EI_NIDENT  = 16
)

const (
	ELFCLASS32 = 1
	ELFCLASS64 = 2
)

const (
	ELFDATA2LSB = 1
	ELFDATA2MSB = 2
)

// Program header types
const (
	PT_NULL    = 0
	PT_LOAD    = 1
	PT_DYNAMIC = 2
	PT_INTERP  = 3
	PT_NOTE    = 4
	PT_SHLIB   = 5
	PT_PHDR    = 6
)

// Program header flags
const (
	PF_X = 0x1
	PF_W = 0x2
	PF_R = 0x4
)

var (
	BadMagicErr              = errors.New("Invalid magic in ELF file.")
	UnsupportedClassErr      = errors.New("Only 32-bit ELF files are supported.")
	UnsupportedEndiannessErr = errors.New("Only little-endian ELF files are supported.")
	TruncatedHeaderErr       = errors.New("ELF header is bigger than the data provided.")
	TruncatedPhdrTableErr    = errors.New("Program header table runs past the end of file.")
)

// HeaderSize is the size of an ELF32 file header.
const HeaderSize = 52

var elfMagic = []byte{'\x7f', 'E', 'L', 'F'}

// headerField locates one fixed-width little-endian field inside the ELF32
// file header. A single table of fields drives both reads and writes so the
// two cannot drift apart.
type headerField struct {
	off   int
	width int
}

var (
	fieldPhOff     = headerField{28, 4}
	fieldShOff     = headerField{32, 4}
	fieldPhEntSize = headerField{42, 2}
	fieldPhNum     = headerField{44, 2}
	fieldShEntSize = headerField{46, 2}
	fieldShNum     = headerField{48, 2}
)

// Header is a typed view over the file-header bytes at the start of a raw
// ELF image. Getters decode straight out of the underlying buffer and
// setters write straight back into it.
type Header []byte

// NewHeader wraps the start of buf and validates the identification bytes.
func NewHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return nil, TruncatedHeaderErr
	}
	h := Header(buf)
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the magic, class and endianness identification bytes
// against the only format this tool handles: 32-bit little-endian.
func (h Header) Validate() error {
	if !bytes.Equal(h[EI_MAG0:EI_CLASS], elfMagic) {
		return BadMagicErr
	}
	if h[EI_CLASS] != ELFCLASS32 {
		return UnsupportedClassErr
	}
	if h[EI_DATA] != ELFDATA2LSB {
		return UnsupportedEndiannessErr
	}
	return nil
}

func (h Header) read(f headerField) uint32 {
	if f.width == 2 {
		return uint32(binary.LittleEndian.Uint16(h[f.off:]))
	}
	return binary.LittleEndian.Uint32(h[f.off:])
}

func (h Header) write(f headerField, v uint32) {
	if f.width == 2 {
		binary.LittleEndian.PutUint16(h[f.off:], uint16(v))
		return
	}
	binary.LittleEndian.PutUint32(h[f.off:], v)
}

func (h Header) PhOff() uint32     { return h.read(fieldPhOff) }
func (h Header) ShOff() uint32     { return h.read(fieldShOff) }
func (h Header) PhEntSize() uint32 { return h.read(fieldPhEntSize) }
func (h Header) PhNum() uint32     { return h.read(fieldPhNum) }
func (h Header) ShEntSize() uint32 { return h.read(fieldShEntSize) }
func (h Header) ShNum() uint32     { return h.read(fieldShNum) }

func (h Header) SetPhOff(v uint32) { h.write(fieldPhOff, v) }
func (h Header) SetShOff(v uint32) { h.write(fieldShOff, v) }
func (h Header) SetPhNum(v uint32) { h.write(fieldPhNum, v) }
