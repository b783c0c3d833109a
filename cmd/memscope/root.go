package memscope

import (
	"embed"
	"io"
	"io/fs"
	"slices"

	"github.com/arthur-debert/memscope/internal/version"
	"github.com/arthur-debert/memscope/pkg/cobrax/topics"
	"github.com/arthur-debert/memscope/pkg/config"
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/filesystem"
	"github.com/arthur-debert/memscope/pkg/image"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/plugins"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/arthur-debert/memscope/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbosity  int
	configPath string
	imagePath  string
	formats    []string
	outputFile string

	// fs backs image reads, dump writes and output files.
	fs filesystem.FS
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(filesystem.NewOS())
}

func newRootCmd(fsys filesystem.FS) *cobra.Command {
	initTemplateFormatting()

	g := &globalOptions{fs: fsys}

	rootCmd := &cobra.Command{
		Use:     "memscope",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			logging.LogInvocation(cmd.CommandPath(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&g.imagePath, "image", "i", "", MsgFlagImage)
	rootCmd.PersistentFlags().StringSliceVarP(&g.formats, "format", "f", nil, MsgFlagFormat)
	rootCmd.PersistentFlags().StringVarP(&g.outputFile, "output", "o", "", MsgFlagOutput)

	rootCmd.AddGroup(&cobra.Group{ID: "plugins", Title: "PLUGINS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	reg := plugins.Builtins()
	for _, name := range reg.List() {
		p, _ := reg.Get(name)
		rootCmd.AddCommand(newPluginCmd(p, g))
	}

	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newDecodeCmd(g))
	rootCmd.AddCommand(newRenderersCmd(g))
	rootCmd.AddCommand(newGenConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Plugin descriptions double as help topics
	opts := topics.Options{
		Extensions: []string{".txt", ".md"},
		Renderer:   topics.NewGlamourRenderer(),
	}
	if _, err := topics.InitializeWithOptions(rootCmd, opts, helpSources()...); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// helpSources returns the file systems help topics are read from.
func helpSources() []fs.FS {
	sub, err := fs.Sub(topicFiles, "topics")
	logging.MustEmbedded(err, "help topics")
	return []fs.FS{sub, plugins.Descriptions()}
}

// loadConfig builds the configuration, applying the persistent flags last.
func (g *globalOptions) loadConfig() (*config.Config, error) {
	overrides := map[string]interface{}{}
	if len(g.formats) > 0 {
		overrides["output.formats"] = g.formats
	}
	if g.outputFile != "" {
		overrides["output.file"] = g.outputFile
	}
	return config.Load(config.LoadOptions{Path: g.configPath, Overrides: overrides})
}

// newSession loads the configuration and the image and builds a session.
func (g *globalOptions) newSession() (*session.Session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if g.imagePath == "" {
		return nil, errors.New(errors.ErrInvalidInput, MsgNoImage)
	}

	img, err := image.Load(g.fs, g.imagePath, image.Options{MaxNodes: cfg.Traversal.MaxNodes})
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{Config: cfg, Image: img, FS: g.fs})
}

// writer returns where stream output goes: the output file unless it is the
// sqlite database, stdout otherwise.
func (g *globalOptions) writer(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.Output.File == "" || writesDatabase(cfg.Output.Formats) {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := g.fs.Create(cfg.Output.File)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrBackendIO, "cannot create %s", cfg.Output.File)
	}
	return f, f.Close, nil
}

// writesDatabase reports whether any requested format, aliases and comma
// lists included, is the sqlite backend. Unparsable formats are reported later
// by the session.
func writesDatabase(formats []string) bool {
	parsed, err := ui.ParseFormats(formats)
	if err != nil {
		return false
	}
	return slices.Contains(parsed, ui.FormatSQLite)
}
