package plugins

import (
	"context"

	"github.com/arthur-debert/memscope/pkg/codec"
	"github.com/arthur-debert/memscope/pkg/image"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/processctx"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui"
)

type threads struct{}

func (threads) Name() string    { return "threads" }
func (threads) Summary() string { return "List threads with their start symbols" }
func (threads) Flags() []Flag   { return nil }

var threadsHeader = []types.Column{
	{Name: image.ThreadType, CName: "offset", Type: image.ThreadType},
	ui.MustColumn("PID", "pid", ">6"),
	ui.MustColumn("TID", "tid", ">6"),
	ui.MustColumn("Start Address", "start", types.FormatAddressPad),
	ui.MustColumn("Start Symbol", "start_symbol", "30"),
	ui.MustColumn("Process", "name", "16"),
	ui.MustColumn("Win32 Start", "win32_start", types.FormatAddressPad),
	ui.MustColumn("Win32 Symbol", "win32_symbol", ""),
}

func (threads) Run(ctx context.Context, s *session.Session, out *ui.Output, opts Options) error {
	procs, err := opts.Filter.Processes(ctx, s.Image)
	if err != nil {
		return err
	}
	if err := out.DeclareHeader(threadsHeader); err != nil {
		return err
	}

	maxDistance := s.Config.Resolver.MaxDistance
	symbol := func(v any) string {
		addr, err := codec.AsUint64(addressOf(v))
		if err != nil {
			return ""
		}
		return s.Resolver.FormatAddress(addr, maxDistance)
	}

	// Symbols resolve in the context of the thread's process.
	return s.Context.Do(nil, func(scope *processctx.Scope) error {
		for _, p := range procs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := scope.Switch(p); err != nil {
				return err
			}

			list, err := s.Image.Threads(p.Struct)
			if err != nil {
				s.Logger().Warn().Err(err).Uint64("pid", p.ProcessID()).Msg("Cannot walk thread list")
				continue
			}
			for _, t := range list {
				start := t.Member("StartAddress")
				win32 := t.Member("Win32StartAddress")
				err := out.EmitRow(
					t,
					t.Member("Cid.UniqueProcess"),
					t.Member("Cid.UniqueThread"),
					start,
					symbol(start),
					p.ImageName(),
					win32,
					symbol(win32),
				)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// addressOf unwraps address-like objects to their integer value.
func addressOf(v any) any {
	switch t := v.(type) {
	case objects.Address:
		return uint64(t)
	case objects.Pointer:
		return t.Addr
	default:
		return v
	}
}
