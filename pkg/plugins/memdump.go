package plugins

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/image"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/arthur-debert/memscope/pkg/ui"
)

type memdump struct{}

func (memdump) Name() string    { return "memdump" }
func (memdump) Summary() string { return "Dump the addressable memory of each process" }
func (memdump) Flags() []Flag   { return []Flag{FlagDumpDir, FlagCoalesce} }

// DumpFileName is the name of the dump written for p.
func DumpFileName(p image.Process) string {
	return fmt.Sprintf("%s_%d.dmp", p.ImageName(), p.ProcessID())
}

func (memdump) Run(ctx context.Context, s *session.Session, out *ui.Output, opts Options) error {
	dir := opts.DumpDir
	if dir == "" {
		dir = s.Config.Dump.Dir
	}
	if err := s.FS.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDumpWrite, "cannot create dump directory %s", dir)
	}

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
		if len(ranges) == 0 {
			continue
		}

		path := filepath.Join(dir, DumpFileName(p))
		if err := writeDump(s, path, ranges); err != nil {
			return err
		}
		if err := out.EmitFreeText("Writing %s to %s", p.ImageName(), path); err != nil {
			return err
		}
		if err := emitMap(out, p, ranges); err != nil {
			return err
		}
	}
	return nil
}

func writeDump(s *session.Session, path string, ranges []image.Range) (err error) {
	w, err := s.FS.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDumpWrite, "cannot create %s", path)
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, errors.ErrDumpWrite, "cannot close %s", path)
		}
	}()

	var written uint64
	for _, r := range ranges {
		data, err := r.Bytes()
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return errors.Wrapf(err, errors.ErrDumpWrite, "cannot write %s", path).
				WithDetail("offset", written)
		}
		written += r.Size
	}
	s.Logger().Debug().Str("path", path).Uint64("bytes", written).Msg("Wrote process dump")
	return nil
}
