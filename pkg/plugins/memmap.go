package plugins

import (
	"context"

	"github.com/arthur-debert/memscope/pkg/image"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui"
)

type memmap struct{}

func (memmap) Name() string    { return "memmap" }
func (memmap) Summary() string { return "Show the memory ranges mapped by each process" }
func (memmap) Flags() []Flag   { return []Flag{FlagCoalesce} }

var memmapHeader = []types.Column{
	ui.MustColumn("Virtual", "virtual", types.FormatAddressPad),
	ui.MustColumn("Physical", "physical", types.FormatAddressPad),
	ui.MustColumn("Size", "size", types.FormatAddress),
	ui.MustColumn("DumpFileOffset", "dump_file_offset", types.FormatAddress),
}

func (memmap) Run(ctx context.Context, s *session.Session, out *ui.Output, opts Options) error {
	procs, err := opts.Filter.Processes(ctx, s.Image)
	if err != nil {
		return err
	}

	coalesce := opts.Coalesce || s.Config.Memmap.Coalesce
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return err
		}
		ranges := processRanges(s.Image, p, coalesce)
		if err := emitMap(out, p, ranges); err != nil {
			return err
		}
	}
	return nil
}

func processRanges(img *image.Image, p image.Process, coalesce bool) []image.Range {
	space, ok := img.AddressSpace(p.ProcessID())
	if !ok {
		return nil
	}
	if coalesce {
		return Coalesce(space.Ranges)
	}
	return space.Ranges
}

// emitMap writes the section and range table of one process. Dump file
// offsets assume the ranges are written back to back.
func emitMap(out *ui.Output, p image.Process, ranges []image.Range) error {
	if err := out.EmitSection(p.ImageName()); err != nil {
		return err
	}
	if err := out.EmitFreeText("%s pid: %6d", p.ImageName(), p.ProcessID()); err != nil {
		return err
	}
	if len(ranges) == 0 {
		return out.EmitFreeText("No memory ranges mapped.")
	}

	if err := out.DeclareHeader(memmapHeader); err != nil {
		return err
	}
	var offset uint64
	for _, r := range ranges {
		err := out.EmitRow(objects.Address(r.Virtual), objects.Address(r.Physical), r.Size, offset)
		if err != nil {
			return err
		}
		offset += r.Size
	}
	return nil
}

// Coalesce merges neighbouring ranges that are contiguous in both virtual
// and physical memory. ranges must be sorted by virtual address.
func Coalesce(ranges []image.Range) []image.Range {
	var out []image.Range
	for _, r := range ranges {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Virtual+last.Size == r.Virtual && last.Physical+last.Size == r.Physical {
				last.Data = joinData(*last, r)
				last.Size += r.Size
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// joinData concatenates the hex content of two adjacent ranges, padding the
// first to its full size so the second keeps its position.
func joinData(a, b image.Range) string {
	if b.Data == "" {
		return a.Data
	}
	pad := int(a.Size)*2 - len(a.Data)
	data := make([]byte, 0, int(a.Size)*2+len(b.Data))
	data = append(data, a.Data...)
	for i := 0; i < pad; i++ {
		data = append(data, '0')
	}
	return string(append(data, b.Data...))
}
