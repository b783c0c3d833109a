// Package session ties together everything one memscope invocation works
// with: the loaded image, the sealed renderer registry, the process context
// stack, the address resolver and the configuration.
package session

import (
	"io"

	"github.com/arthur-debert/memscope/pkg/config"
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/filesystem"
	"github.com/arthur-debert/memscope/pkg/image"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/processctx"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/renderers"
	"github.com/arthur-debert/memscope/pkg/resolver"
	"github.com/arthur-debert/memscope/pkg/ui"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	Config *config.Config
	Image  *image.Image
	// FS is where dumps are written. Defaults to the OS filesystem.
	FS filesystem.FS
	// Register adds renderer bindings on top of the built-ins before the
	// registry is sealed.
	Register func(*registry.Renderers) error
}

// Session is the state shared by the plugins of one invocation.
type Session struct {
	ID        string
	Config    *config.Config
	Image     *image.Image
	Renderers *registry.Renderers
	Context   *processctx.Stack
	Resolver  *resolver.AddressResolver
	FS        filesystem.FS

	logger zerolog.Logger
}

// New builds a session. The renderer registry is sealed on return.
func New(opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.New(errors.ErrInvalidInput, "session needs a configuration")
	}
	if opts.Image == nil {
		return nil, errors.New(errors.ErrInvalidInput, "session needs an image")
	}

	reg, err := renderers.NewRegistry()
	if err != nil {
		return nil, err
	}
	if opts.Register != nil {
		if err := opts.Register(reg); err != nil {
			return nil, err
		}
	}
	reg.Seal()

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	stack := processctx.NewStack()
	id := uuid.NewString()
	s := &Session{
		ID:        id,
		Config:    opts.Config,
		Image:     opts.Image,
		Renderers: reg,
		Context:   stack,
		Resolver:  resolver.New(opts.Image, stack),
		FS:        fsys,
		logger:    logging.GetLogger("session").With().Str("session", id).Logger(),
	}

	s.logger.Debug().
		Str("profile", opts.Image.Profile()).
		Int("bindings", len(reg.Bindings())).
		Msg("Session ready")
	return s, nil
}

// Logger returns a logger tagged with the session id.
func (s *Session) Logger() *zerolog.Logger {
	return &s.logger
}

// NewOutput opens an output writing to w through the configured formats.
// plugin is recorded by backends that keep stream metadata.
func (s *Session) NewOutput(w io.Writer, plugin string) (*ui.Output, error) {
	formats, err := ui.ParseFormats(s.Config.Output.Formats)
	if err != nil {
		return nil, err
	}

	return ui.Open(s.Renderers, formats, ui.BackendConfig{
		Writer: w,
		Path:   s.Config.Output.File,
		Meta: map[string]any{
			"session": s.ID,
			"plugin":  plugin,
			"profile": s.Image.Profile(),
		},
		Unavailable: s.Config.Output.Unavailable,
		StylesPath:  s.Config.Styles.Path,
	})
}
