package plugins

import (
	"context"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui"
)

type dlllist struct{}

func (dlllist) Name() string    { return "dlllist" }
func (dlllist) Summary() string { return "List the modules loaded into each process" }
func (dlllist) Flags() []Flag   { return nil }

var dlllistHeader = []types.Column{
	ui.MustColumn("Base", "module_base", types.FormatAddressPad),
	ui.MustColumn("Size", "module_size", types.FormatAddress),
	ui.MustColumn("Load Reason/Count", "reason", "30"),
	ui.MustColumn("Path", "loaded_dll_path", ""),
}

func (dlllist) Run(ctx context.Context, s *session.Session, out *ui.Output, opts Options) error {
	procs, err := opts.Filter.Processes(ctx, s.Image)
	if err != nil {
		return err
	}

	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := out.EmitSection(""); err != nil {
			return err
		}
		if err := out.EmitFreeText("%s pid: %6d", p.ImageName(), p.ProcessID()); err != nil {
			return err
		}

		modules, err := s.Image.LoadedModules(p.Struct)
		if errors.IsRecoverable(err) {
			if err := out.EmitFreeText("Unable to read PEB for task."); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if cmd, err := p.Field("Peb.ProcessParameters.CommandLine"); err == nil {
			if err := out.EmitFreeText("Command line : %v", cmd); err != nil {
				return err
			}
		}
		if wow, _ := p.Member("IsWow64").(bool); wow {
			if err := out.EmitFreeText("Note: use ldrmodules for listing DLLs in Wow64 processes"); err != nil {
				return err
			}
		}
		if csd, err := p.Field("Peb.CSDVersion"); err == nil {
			if err := out.EmitFreeText("%v", csd); err != nil {
				return err
			}
		}

		if err := out.DeclareHeader(dlllistHeader); err != nil {
			return err
		}
		for _, m := range modules {
			err := out.EmitRow(m.Member("DllBase"), m.Member("SizeOfImage"), loadReason(m), m.Member("FullDllName"))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// loadReason prefers the load reason and falls back to the load count of
// older profiles.
func loadReason(m *objects.Struct) any {
	if v, err := m.Field("LoadReason"); err == nil {
		return v
	}
	return m.Member("LoadCount")
}
