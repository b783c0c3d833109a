package plugins

import (
	"context"

	"github.com/arthur-debert/memscope/pkg/image"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui"
)

type pslist struct{}

func (pslist) Name() string    { return "pslist" }
func (pslist) Summary() string { return "List processes from the active process list" }
func (pslist) Flags() []Flag   { return nil }

var pslistHeader = []types.Column{
	{Name: image.ProcessType, CName: image.ProcessType, Type: image.ProcessType},
	ui.MustColumn("PPID", "ppid", ">6"),
	ui.MustColumn("Thds", "thread_count", ">6"),
	ui.MustColumn("Hnds", "handle_count", ">8"),
	ui.MustColumn("Sess", "session_id", ">6"),
	ui.MustColumn("Wow64", "wow64", "6"),
	ui.MustColumn("Start", "process_create_time", "24"),
	ui.MustColumn("Exit", "process_exit_time", "24"),
}

func (pslist) Run(ctx context.Context, s *session.Session, out *ui.Output, opts Options) error {
	procs, err := opts.Filter.Processes(ctx, s.Image)
	if err != nil {
		return err
	}

	if err := out.DeclareHeader(pslistHeader); err != nil {
		return err
	}
	for _, p := range procs {
		err := out.EmitRow(
			p.Struct,
			p.Member("InheritedFromUniqueProcessId"),
			p.Member("ActiveThreads"),
			p.Member("ObjectTable.HandleCount"),
			p.Member("SessionId"),
			p.Member("IsWow64"),
			p.Member("CreateTime"),
			p.Member("ExitTime"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
