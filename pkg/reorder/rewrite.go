package reorder

import (
	"encoding/binary"

	"github.com/LQM2015/stm32/pkg/elf"
	"github.com/LQM2015/stm32/pkg/helpers"
	"github.com/LQM2015/stm32/pkg/log"
)

// geometry is the original table layout, captured before any buffer edit.
// Every offset comparison during patching is made against these values, not
// against the mutated header.
type geometry struct {
	phOff     uint32
	phEntSize uint32
	phNum     uint32
	tableSize uint32
	shOff     uint32
	shEntSize uint32
	shNum     uint32
}

func captureGeometry(h elf.Header) geometry {
	g := geometry{
		phOff:     h.PhOff(),
		phEntSize: h.PhEntSize(),
		phNum:     h.PhNum(),
		shOff:     h.ShOff(),
		shEntSize: h.ShEntSize(),
		shNum:     h.ShNum(),
	}
	g.tableSize = g.phEntSize * g.phNum
	return g
}

// relocateTable excises the original program header table from the buffer,
// appends the merged entries at the new end of file and patches phoff/phnum
// in the file header. phentsize is kept, so entries are laid out with the
// original stride. Returns the edited buffer and the new table offset.
func relocateTable(buf []byte, g geometry, merged []elf.ELF32Phdr) ([]byte, uint32) {
	buf = helpers.Remove(buf, int(g.phOff), int(g.tableSize))

	newPhOff := uint32(len(buf))
	table := make([]byte, uint32(len(merged))*g.phEntSize)
	for i, e := range merged {
		e.Encode(table[uint32(i)*g.phEntSize:])
	}
	buf = append(buf, table...)

	h := elf.Header(buf)
	h.SetPhOff(newPhOff)
	h.SetPhNum(uint32(len(merged)))
	return buf, newPhOff
}

// patchOffsets re-derives every absolute file offset the excision
// invalidated: data that sat past the original table physically moved
// tableSize bytes towards the start of the file, so any offset strictly
// greater than the original phoff must shrink by tableSize.
func patchOffsets(buf []byte, g geometry, newPhOff, newPhNum uint32) {
	h := elf.Header(buf)

	shOff := g.shOff
	if shOff > g.phOff {
		shOff -= g.tableSize
		h.SetShOff(shOff)
		log.Debugf("section header table moved: %#x -> %#x", g.shOff, shOff)
	}

	// Section data offsets. The table itself is located through the
	// already-patched shOff because the buffer has shrunk by now.
	for i := uint32(0); i < g.shNum; i++ {
		entryOff := shOff + i*g.shEntSize
		off := elf.SectionDataOff(buf, entryOff)
		if off > g.phOff && off != elf.NoDataSentinel {
			elf.SetSectionDataOff(buf, entryOff, off-g.tableSize)
		}
	}

	// File offsets inside the freshly appended program header entries.
	for i := uint32(0); i < newPhNum; i++ {
		fieldOff := newPhOff + i*g.phEntSize + elf.PhdrOffsetField
		off := binary.LittleEndian.Uint32(buf[fieldOff:])
		if off > g.phOff {
			binary.LittleEndian.PutUint32(buf[fieldOff:], off-g.tableSize)
			log.Debugf("segment %d offset moved: %#x -> %#x", i, off, off-g.tableSize)
		}
	}
}
