// Package reorder rewrites a 32-bit little-endian firmware ELF into the
// layout the STM32CubeProgrammer flash loader expects: the program header
// table is moved to the end of the file and collapsed to two entries
// (storage segment first, merged code segment second), so the device-info
// block can start right after the ELF file header.
package reorder

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/LQM2015/stm32/pkg/elf"
	"github.com/LQM2015/stm32/pkg/log"
)

// Options control segment classification and what happens to program
// headers the flash loader does not use.
type Options struct {
	// IsStorage picks the storage segment among the loadable entries.
	IsStorage StoragePolicy

	// PreserveNonLoad keeps non-LOAD entries in the relocated table
	// instead of dropping them.
	PreserveNonLoad bool
}

type Option func(*Options)

func WithStoragePolicy(p StoragePolicy) Option {
	return func(o *Options) { o.IsStorage = p }
}

func PreserveNonLoad() Option {
	return func(o *Options) { o.PreserveNonLoad = true }
}

func defaultOptions() Options {
	return Options{IsStorage: VaddrZeroStorage}
}

// Reorder runs the whole pipeline over one in-memory image and returns the
// transformed image. The input buffer is left untouched; any validation or
// classification failure returns before a single byte is produced.
func Reorder(buf []byte, options ...Option) ([]byte, error) {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}

	hdr, err := elf.NewHeader(buf)
	if err != nil {
		return nil, err
	}

	g := captureGeometry(hdr)
	log.Debugf("input geometry: phoff=%#x phnum=%d phentsize=%d shoff=%#x shnum=%d",
		g.phOff, g.phNum, g.phEntSize, g.shOff, g.shNum)

	entries, err := elf.ParsePhdrTable(buf, g.phOff, g.phEntSize, g.phNum)
	if err != nil {
		return nil, err
	}

	merged, err := mergeSegments(entries, opts)
	if err != nil {
		return nil, err
	}
	log.Infof("program headers: %d -> %d", g.phNum, len(merged))

	out := make([]byte, len(buf))
	copy(out, buf)
	out, newPhOff := relocateTable(out, g, merged)
	patchOffsets(out, g, newPhOff, uint32(len(merged)))

	log.Infof("program header table relocated: %#x -> %#x", g.phOff, newPhOff)
	return out, nil
}

// ReorderFile reads the whole input file, transforms it and writes the
// whole result to output. Nothing is written when the transform fails.
func ReorderFile(input, output string, options ...Option) error {
	buf, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrapf(err, "read %s", input)
	}

	out, err := Reorder(buf, options...)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, out, 0644); err != nil {
		return errors.Wrapf(err, "write %s", output)
	}
	log.Infof("wrote %s: %s -> %s", output,
		humanize.Bytes(uint64(len(buf))), humanize.Bytes(uint64(len(out))))
	return nil
}
