package plugins

import (
	"context"
	"embed"
	"io"
	"io/fs"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/arthur-debert/memscope/pkg/ui"
)

//go:embed descriptions/*.md
var descriptions embed.FS

// Options are the command line options shared by plugins. A plugin ignores
// the ones it has no use for.
type Options struct {
	Filter Filter
	// Coalesce merges contiguous ranges in memory maps.
	Coalesce bool
	// DumpDir is where memdump writes process dumps.
	DumpDir string
}

// Flag names a plugin-specific command line option.
type Flag string

const (
	FlagCoalesce Flag = "coalesce"
	FlagDumpDir  Flag = "dump-dir"
)

// Plugin is one analysis command.
type Plugin interface {
	Name() string
	// Summary is the one line help text.
	Summary() string
	// Flags lists the plugin-specific options beyond the process filter.
	Flags() []Flag
	Run(ctx context.Context, s *session.Session, out *ui.Output, opts Options) error
}

// Builtins returns every built-in plugin, keyed by name.
func Builtins() registry.Registry[Plugin] {
	reg := registry.New[Plugin]()
	for _, p := range []Plugin{pslist{}, dlllist{}, threads{}, memmap{}, memdump{}} {
		registry.MustRegister(reg, p.Name(), p)
	}
	return reg
}

// Lookup returns the built-in plugin called name.
func Lookup(name string) (Plugin, error) {
	reg := Builtins()
	p, err := reg.Get(name)
	if err == nil {
		return p, nil
	}
	if suggestion, ok := reg.Suggest(name); ok {
		return nil, errors.Newf(errors.ErrNotFound, "unknown plugin %s, did you mean %q?", name, suggestion).
			WithDetail("suggestion", suggestion)
	}
	return nil, errors.Wrapf(err, errors.ErrNotFound, "unknown plugin %s", name)
}

// Descriptions exposes the markdown descriptions, one <plugin>.md per plugin.
func Descriptions() fs.FS {
	sub, err := fs.Sub(descriptions, "descriptions")
	if err != nil {
		panic(err.Error())
	}
	return sub
}

// Description returns the markdown description of the plugin called name.
func Description(name string) (string, error) {
	data, err := fs.ReadFile(Descriptions(), name+".md")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotFound, "no description for %s", name)
	}
	return string(data), nil
}

// Execute runs p, opening an output on the session and closing it when the
// plugin returns.
func Execute(ctx context.Context, s *session.Session, p Plugin, w io.Writer, opts Options) (err error) {
	logger := s.Logger()
	logger.Info().Str("plugin", p.Name()).Msg("Running plugin")
	done := logging.LogOperationStart(*logger, p.Name())
	defer done()

	out, err := s.NewOutput(w, p.Name())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if err := p.Run(ctx, s, out, opts); err != nil {
		logger.Error().Err(err).Str("plugin", p.Name()).Msg("Plugin failed")
		return err
	}
	logger.Debug().Str("plugin", p.Name()).Msg("Plugin finished")
	return nil
}
