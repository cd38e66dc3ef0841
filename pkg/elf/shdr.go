package elf

import "encoding/binary"

// Section headers are opaque to this tool except for their data-offset
// field, which has to be patched when earlier regions of the file shift.

// ShOffField is the byte offset of the data-offset field inside an ELF32
// section header record.
const ShOffField = 16

// NoDataSentinel marks a section that carries no file data; its offset
// field must never be rewritten.
const NoDataSentinel = 0xFFFFFFFF

// SectionDataOff reads the data-offset field of the section header record
// starting at entryOff.
func SectionDataOff(buf []byte, entryOff uint32) uint32 {
	return binary.LittleEndian.Uint32(buf[entryOff+ShOffField:])
}

// SetSectionDataOff writes the data-offset field of the section header
// record starting at entryOff.
func SetSectionDataOff(buf []byte, entryOff, v uint32) {
	binary.LittleEndian.PutUint32(buf[entryOff+ShOffField:], v)
}
