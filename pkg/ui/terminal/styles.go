package terminal

import (
	_ "embed"
	"os"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color definition.
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition.
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	MarginTop    int    `yaml:"marginTop,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
}

// StylesConfig is the styles file layout.
type StylesConfig struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

// Styles maps semantic names to lipgloss styles bound to one renderer.
type Styles struct {
	renderer *lipgloss.Renderer
	styles   map[string]lipgloss.Style
}

// DefaultStyles returns the embedded styles.
func DefaultStyles(r *lipgloss.Renderer) (*Styles, error) {
	return ParseStyles(r, embeddedStyles)
}

// LoadStyles reads styles from a YAML file. Styles missing from the file
// keep their embedded definition.
func LoadStyles(r *lipgloss.Renderer, path string) (*Styles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read styles file %s", path)
	}
	base, err := DefaultStyles(r)
	if err != nil {
		return nil, err
	}
	custom, err := ParseStyles(r, data)
	if err != nil {
		return nil, err
	}
	for name, style := range custom.styles {
		base.styles[name] = style
	}
	return base, nil
}

// ParseStyles builds styles from YAML data.
func ParseStyles(r *lipgloss.Renderer, data []byte) (*Styles, error) {
	var config StylesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse styles data")
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(config.Colors))
	for name, def := range config.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	s := &Styles{renderer: r, styles: make(map[string]lipgloss.Style, len(config.Styles))}
	for name, def := range config.Styles {
		s.styles[name] = buildStyle(r.NewStyle(), def, colors)
	}
	return s, nil
}

// buildStyle constructs a lipgloss style from a style definition.
func buildStyle(style lipgloss.Style, def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}

	if def.Foreground != "" {
		if color, ok := colors[def.Foreground]; ok {
			style = style.Foreground(color)
		}
	}
	if def.Background != "" {
		if color, ok := colors[def.Background]; ok {
			style = style.Background(color)
		}
	}

	if def.MarginTop > 0 {
		style = style.MarginTop(def.MarginTop)
	}
	if def.MarginBottom > 0 {
		style = style.MarginBottom(def.MarginBottom)
	}
	return style
}

// Get returns the named style, or a plain one.
func (s *Styles) Get(name string) lipgloss.Style {
	if style, ok := s.styles[name]; ok {
		return style
	}
	return s.renderer.NewStyle()
}

// Has reports whether name is defined.
func (s *Styles) Has(name string) bool {
	_, ok := s.styles[name]
	return ok
}
