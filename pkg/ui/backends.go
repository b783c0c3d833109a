package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/ui/json"
	"github.com/arthur-debert/memscope/pkg/ui/sqlite"
	"github.com/arthur-debert/memscope/pkg/ui/terminal"
	"github.com/arthur-debert/memscope/pkg/ui/text"
	"github.com/arthur-debert/memscope/pkg/ui/xml"
	"github.com/arthur-debert/memscope/pkg/ui/yaml"
)

// BackendConfig carries what backend factories may need.
type BackendConfig struct {
	// Writer receives stream output.
	Writer io.Writer
	// Path is the output file, required by backends that write databases.
	Path string
	// Meta is written by backends that record stream metadata.
	Meta map[string]any
	// Unavailable is the text marker for unreadable values.
	Unavailable string
	// StylesPath optionally overrides the terminal styles.
	StylesPath string
}

// BackendFactory creates a backend.
type BackendFactory func(cfg BackendConfig) (Backend, error)

// NewBackendCatalogue returns the factories of every concrete format.
func NewBackendCatalogue() registry.Registry[BackendFactory] {
	cat := registry.New[BackendFactory]()
	registry.MustRegister(cat, FormatTerminal.String(), func(cfg BackendConfig) (Backend, error) {
		return terminal.New(cfg.Writer, terminal.Options{StylesPath: cfg.StylesPath, Unavailable: cfg.Unavailable})
	})
	registry.MustRegister(cat, FormatText.String(), func(cfg BackendConfig) (Backend, error) {
		return text.New(cfg.Writer, text.ModePlain), nil
	})
	registry.MustRegister(cat, FormatTest.String(), func(cfg BackendConfig) (Backend, error) {
		return text.New(cfg.Writer, text.ModeTest), nil
	})
	registry.MustRegister(cat, FormatWide.String(), func(cfg BackendConfig) (Backend, error) {
		return text.New(cfg.Writer, text.ModeWide), nil
	})
	registry.MustRegister(cat, FormatJSON.String(), func(cfg BackendConfig) (Backend, error) {
		return json.New(cfg.Writer, json.ModeStatements, cfg.Meta), nil
	})
	registry.MustRegister(cat, FormatExport.String(), func(cfg BackendConfig) (Backend, error) {
		return json.New(cfg.Writer, json.ModeExport, nil), nil
	})
	registry.MustRegister(cat, FormatYAML.String(), func(cfg BackendConfig) (Backend, error) {
		return yaml.New(cfg.Writer), nil
	})
	registry.MustRegister(cat, FormatXML.String(), func(cfg BackendConfig) (Backend, error) {
		return xml.New(cfg.Writer), nil
	})
	registry.MustRegister(cat, FormatSQLite.String(), func(cfg BackendConfig) (Backend, error) {
		if cfg.Path == "" {
			return nil, errors.New(errors.ErrInvalidInput, "sqlite output needs an output file")
		}
		return sqlite.Open(cfg.Path)
	})
	return cat
}

// NewBackend creates the backend for format. FormatAuto detects terminal
// capabilities when the writer is a file.
func NewBackend(format Format, cfg BackendConfig) (Backend, error) {
	if format == FormatAuto {
		format = FormatTerminal
		if file, ok := cfg.Writer.(*os.File); ok {
			format = DetectFormat(file)
		}
	}

	factory, err := NewBackendCatalogue().Get(format.String())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "no backend for format %s", format)
	}
	return factory(cfg)
}

// NewBackends creates one backend per format, closing those already created
// if one fails.
func NewBackends(formats []Format, cfg BackendConfig) ([]Backend, error) {
	backends := make([]Backend, 0, len(formats))
	for _, f := range formats {
		b, err := NewBackend(f, cfg)
		if err != nil {
			for _, created := range backends {
				_ = created.Close()
			}
			return nil, err
		}
		backends = append(backends, b)
	}
	return backends, nil
}
