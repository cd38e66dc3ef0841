package elf

import "encoding/binary"

// PhdrEntrySize is the size of an ELF32 program header record.
const PhdrEntrySize = 32

// ELF32Phdr is one program header table entry: eight little-endian 32-bit
// fields in fixed wire order.
type ELF32Phdr struct {
	Type   uint32
	Offset uint32
	Vaddr  uint32
	Paddr  uint32
	FileSz uint32
	MemSz  uint32
	Flags  uint32
	Align  uint32
}

// PhdrOffsetField is the byte offset of the Offset field inside a program
// header record.
const PhdrOffsetField = 4

// wireFields returns pointers to the fields in wire order. Decode and encode
// both walk this list, so the two stay symmetric.
func (p *ELF32Phdr) wireFields() [8]*uint32 {
	return [8]*uint32{
		&p.Type, &p.Offset, &p.Vaddr, &p.Paddr,
		&p.FileSz, &p.MemSz, &p.Flags, &p.Align,
	}
}

// ParsePhdr decodes one program header record from the start of b.
func ParsePhdr(b []byte) (ELF32Phdr, error) {
	if len(b) < PhdrEntrySize {
		return ELF32Phdr{}, TruncatedPhdrTableErr
	}
	var p ELF32Phdr
	for i, f := range p.wireFields() {
		*f = binary.LittleEndian.Uint32(b[i*4:])
	}
	return p, nil
}

// Encode serializes the entry into the first PhdrEntrySize bytes of b.
func (p ELF32Phdr) Encode(b []byte) {
	for i, f := range p.wireFields() {
		binary.LittleEndian.PutUint32(b[i*4:], *f)
	}
}

// ParsePhdrTable decodes phNum consecutive records of phEntSize bytes each,
// starting at phOff. Entries keep their table order.
func ParsePhdrTable(buf []byte, phOff, phEntSize, phNum uint32) ([]ELF32Phdr, error) {
	end := uint64(phOff) + uint64(phEntSize)*uint64(phNum)
	if phEntSize < PhdrEntrySize || end > uint64(len(buf)) {
		return nil, TruncatedPhdrTableErr
	}
	entries := make([]ELF32Phdr, 0, phNum)
	for i := uint32(0); i < phNum; i++ {
		p, err := ParsePhdr(buf[phOff+i*phEntSize:])
		if err != nil {
			return nil, err
		}
		entries = append(entries, p)
	}
	return entries, nil
}
