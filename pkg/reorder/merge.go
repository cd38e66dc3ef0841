package reorder

import (
	"errors"

	"github.com/LQM2015/stm32/pkg/elf"
	"github.com/LQM2015/stm32/pkg/log"
)

var (
	MissingStorageSegmentErr = errors.New("No storage segment (loadable with vaddr 0) found.")
	MissingCodeSegmentsErr   = errors.New("No code segments found.")
)

// MergedAlign replaces the per-segment alignment of the merged code segment.
// The flash loader maps the single merged segment itself, so the original
// alignment values carry no information for it.
const MergedAlign = 4

// StoragePolicy decides whether a loadable entry is the storage segment,
// i.e. the one carrying the device-info block that must stay addressable at
// a known low offset. The flash-loader convention marks it with vaddr 0,
// but the rule is a convention, not an ELF property, so it is swappable.
type StoragePolicy func(elf.ELF32Phdr) bool

// VaddrZeroStorage is the flash-loader convention: the loadable entry at
// virtual address 0 carries the StorageInfo block.
func VaddrZeroStorage(p elf.ELF32Phdr) bool {
	return p.Vaddr == 0
}

// mergeSegments classifies the parsed program headers and collapses all
// code segments into one. The result is [storage, mergedCode], followed by
// the non-loadable entries when the preserve policy is on; by default
// non-loadable entries (NOTE, DYNAMIC, ...) are dropped, which is what the
// flash loader expects but would lose information on a richer binary.
func mergeSegments(entries []elf.ELF32Phdr, opts Options) ([]elf.ELF32Phdr, error) {
	var storage *elf.ELF32Phdr
	var code, other []elf.ELF32Phdr

	for i := range entries {
		e := entries[i]
		if e.Type != elf.PT_LOAD {
			other = append(other, e)
			continue
		}
		if storage == nil && opts.IsStorage(e) {
			storage = &entries[i]
			continue
		}
		code = append(code, e)
	}

	if storage == nil {
		return nil, MissingStorageSegmentErr
	}
	if len(code) == 0 {
		return nil, MissingCodeSegmentsErr
	}

	if len(code) > 1 {
		log.Infof("merging %d code segments into one", len(code))
	}
	merged := mergeCode(code)
	log.Debugf("merged code segment: offset=%#x vaddr=%#x filesz=%#x memsz=%#x",
		merged.Offset, merged.Vaddr, merged.FileSz, merged.MemSz)

	out := []elf.ELF32Phdr{*storage, merged}
	if opts.PreserveNonLoad {
		out = append(out, other...)
	} else if len(other) > 0 {
		log.Debugf("dropping %d non-LOAD program headers", len(other))
	}
	return out, nil
}

// mergeCode folds all code segments into a single loadable entry spanning
// the union of their file ranges and of their memory ranges. The fold runs
// even for a single segment so one code path normalizes every input.
func mergeCode(code []elf.ELF32Phdr) elf.ELF32Phdr {
	merged := elf.ELF32Phdr{
		Type:   elf.PT_LOAD,
		Offset: code[0].Offset,
		Vaddr:  code[0].Vaddr,
		Align:  MergedAlign,
	}
	var fileEnd, memEnd uint32
	for _, s := range code {
		if s.Offset < merged.Offset {
			merged.Offset = s.Offset
		}
		if s.Vaddr < merged.Vaddr {
			merged.Vaddr = s.Vaddr
		}
		if end := s.Offset + s.FileSz; end > fileEnd {
			fileEnd = end
		}
		if end := s.Vaddr + s.MemSz; end > memEnd {
			memEnd = end
		}
		merged.Flags |= s.Flags
	}
	merged.Paddr = merged.Vaddr
	merged.FileSz = fileEnd - merged.Offset
	merged.MemSz = memEnd - merged.Vaddr
	return merged
}
