package memscope

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/memscope/internal/version"
	"github.com/arthur-debert/memscope/pkg/cobrax/topics"
	"github.com/arthur-debert/memscope/pkg/config"
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/plugins"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/renderers"
	"github.com/arthur-debert/memscope/pkg/replay"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newPluginCmd(p plugins.Plugin, g *globalOptions) *cobra.Command {
	var (
		pids     []uint
		name     string
		coalesce bool
		dumpDir  string
	)

	cmd := &cobra.Command{
		Use:     p.Name(),
		Short:   p.Summary(),
		Long:    p.Summary() + ".\n\n" + fmt.Sprintf(MsgPluginMore, p.Name()),
		Example: fmt.Sprintf(MsgPluginExample, p.Name()),
		GroupID: "plugins",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.PluginLogger(p.Name(), g.imagePath)
			logger.Info().
				Uints("pids", pids).
				Str("name", name).
				Msg("Starting plugin command")

			filter, err := plugins.NewFilter(toUint64(pids), name)
			if err != nil {
				return err
			}
			s, err := g.newSession()
			if err != nil {
				return err
			}
			w, closeWriter, err := g.writer(cmd, s.Config)
			if err != nil {
				return err
			}

			opts := plugins.Options{Filter: filter, Coalesce: coalesce, DumpDir: dumpDir}
			if err := plugins.Execute(cmd.Context(), s, p, w, opts); err != nil {
				_ = closeWriter()
				return err
			}
			return closeWriter()
		},
	}

	cmd.Flags().UintSliceVar(&pids, "pid", nil, MsgFlagPid)
	cmd.Flags().StringVar(&name, "name", "", MsgFlagName)
	for _, f := range p.Flags() {
		switch f {
		case plugins.FlagCoalesce:
			cmd.Flags().BoolVar(&coalesce, string(f), false, MsgFlagCoalesce)
		case plugins.FlagDumpDir:
			cmd.Flags().StringVarP(&dumpDir, string(f), "D", "", MsgFlagDumpDir)
		}
	}
	return cmd
}

func toUint64(in []uint) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "describe [plugin or topic]",
		Short:   MsgDescribeShort,
		GroupID: "misc",
		Args:    cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return plugins.Builtins().List(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tm := topics.NewWithOptions(topics.Options{Renderer: topics.NewGlamourRenderer()}, helpSources()...)
			if err := tm.Load(); err != nil {
				return err
			}
			if len(args) == 0 {
				tm.WriteList(cmd.OutOrStdout(), cmd.Root().Name())
				return nil
			}

			rendered, err := tm.Render(args[0])
			if err != nil {
				// Point at the plugin the name was probably meant to be
				if _, lerr := plugins.Lookup(args[0]); errors.GetErrorDetails(lerr)["suggestion"] != nil {
					return lerr
				}
				return errors.Newf(errors.ErrNotFound, MsgUnknownDescribe, args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}

// newRegistry returns the sealed built-in renderer registry for commands
// that work without an image.
func newRegistry() (*registry.Renderers, error) {
	reg, err := renderers.NewRegistry()
	if err != nil {
		return nil, err
	}
	reg.Seal()
	return reg, nil
}

// openOutput opens an output for a command that has no session.
func (g *globalOptions) openOutput(cmd *cobra.Command, cfg *config.Config, reg *registry.Renderers, name string) (*ui.Output, func() error, error) {
	formats, err := ui.ParseFormats(cfg.Output.Formats)
	if err != nil {
		return nil, nil, err
	}
	w, closeWriter, err := g.writer(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	out, err := ui.Open(reg, formats, ui.BackendConfig{
		Writer:      w,
		Path:        cfg.Output.File,
		Meta:        map[string]any{"plugin": name},
		Unavailable: cfg.Output.Unavailable,
		StylesPath:  cfg.Styles.Path,
	})
	if err != nil {
		_ = closeWriter()
		return nil, nil, err
	}
	return out, func() error {
		err := out.Close()
		if cerr := closeWriter(); err == nil {
			err = cerr
		}
		return err
	}, nil
}

func newDecodeCmd(g *globalOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "decode <export.jsonl>",
		Short:   MsgDecodeShort,
		Long:    MsgDecodeLong,
		Example: MsgDecodeExample,
		GroupID: "misc",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			data, err := g.fs.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, errors.ErrNotFound, "cannot read %s", args[0])
			}
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			out, closeOutput, err := g.openOutput(cmd, cfg, reg, "decode")
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeOutput(); err == nil {
					err = cerr
				}
			}()

			stats, err := replay.Replay(cmd.Context(), reg, bytes.NewReader(data), out, replay.Options{Strict: strict})
			if err != nil {
				return err
			}
			if stats.Undecodable > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), MsgDecodeSkipped, stats.Undecodable)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, MsgFlagStrict)
	return cmd
}

var renderersHeader = []types.Column{
	ui.MustColumn("Backend", "backend", "20"),
	ui.MustColumn("Type", "type", "24"),
	ui.MustColumn("Renderer", "renderer", "32"),
	ui.MustColumn("Seq", "seq", ">4"),
}

func newRenderersCmd(g *globalOptions) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:     "renderers",
		Short:   MsgRenderersShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			out, closeOutput, err := g.openOutput(cmd, cfg, reg, "renderers")
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeOutput(); err == nil {
					err = cerr
				}
			}()

			if err := out.DeclareHeader(renderersHeader); err != nil {
				return err
			}
			for _, b := range reg.Bindings() {
				if backend != "" && b.Backend != backend {
					continue
				}
				if err := out.EmitRow(b.Backend, b.Type, b.Renderer, b.Seq); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Only list bindings of this backend")
	return cmd
}

func newGenConfigCmd(g *globalOptions) *cobra.Command {
	var write, commented bool

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			content, err := config.Generate(cfg, commented)
			if err != nil {
				return err
			}
			if !write {
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}

			path := g.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := writeConfig(g, path, content); err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("Configuration written")
			fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	cmd.Flags().BoolVar(&commented, "commented", false, MsgFlagCommented)
	return cmd
}

func writeConfig(g *globalOptions, path, content string) error {
	if err := g.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "cannot create directory for %s", path)
	}
	if err := g.fs.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "cannot write %s", path)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}
}
