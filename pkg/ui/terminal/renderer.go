// Package terminal provides rich terminal table output with colors and styling.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/memscope/pkg/render"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui/text"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

// Options configures the terminal renderer.
type Options struct {
	// StylesPath optionally overrides the embedded styles.
	StylesPath string
	// Unavailable is the marker text to style as unavailable.
	Unavailable string
}

// Renderer writes styled tables. It lays tables out like the plain text
// renderer and styles each padded cell.
type Renderer struct {
	output      io.Writer
	styles      *Styles
	unavailable string
	columns     []types.Column
	widths      []int
}

// New creates a terminal renderer writing to w.
func New(w io.Writer, opts Options) (*Renderer, error) {
	lr := lipgloss.NewRenderer(w)

	var (
		styles *Styles
		err    error
	)
	if opts.StylesPath != "" {
		styles, err = LoadStyles(lr, opts.StylesPath)
	} else {
		styles, err = DefaultStyles(lr)
	}
	if err != nil {
		return nil, err
	}

	unavailable := opts.Unavailable
	if unavailable == "" {
		unavailable = render.DefaultUnavailable
	}
	return &Renderer{output: w, styles: styles, unavailable: unavailable}, nil
}

// Name implements ui.Backend.
func (r *Renderer) Name() string { return types.TerminalBackend }

// BeginTable writes the styled header.
func (r *Renderer) BeginTable(columns []types.Column) error {
	r.columns = columns
	r.widths = text.ColumnWidths(columns)

	header := make([]string, len(columns))
	rules := make([]string, len(columns))
	for i, c := range columns {
		header[i] = r.styles.Get("TableHeader").Render(render.Pad(c.Title(), r.widths[i], c.Align))
		rules[i] = strings.Repeat("─", r.widths[i])
	}
	if _, err := fmt.Fprintln(r.output, strings.Join(header, " ")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(r.output, r.styles.Get("TableSeparator").Render(strings.Join(rules, " ")))
	return err
}

// WriteCells writes one styled row.
func (r *Renderer) WriteCells(cells []types.Cell) error {
	parts := make([]string, len(cells))
	for i, c := range cells {
		width := c.Width()
		if i < len(r.widths) && r.widths[i] > width {
			width = r.widths[i]
		}
		padded := render.Pad(c.Text(), width, c.Align())
		style := "TableCell"
		if c.Text() == r.unavailable {
			style = "Unavailable"
		}
		parts[i] = r.styles.Get(style).Render(padded)
	}
	_, err := fmt.Fprintln(r.output, strings.Join(parts, " "))
	return err
}

// EndTable implements ui.Backend.
func (r *Renderer) EndTable() error {
	r.columns, r.widths = nil, nil
	return nil
}

// FreeText writes text on its own line.
func (r *Renderer) FreeText(s string) error {
	_, err := fmt.Fprintln(r.output, r.styles.Get("FreeText").Render(s))
	return err
}

// Section writes a banner with the label in bold.
func (r *Renderer) Section(label string) error {
	banner := text.SectionBanner(label, text.SectionWidth)
	if label != "" {
		banner = strings.Replace(banner, " "+label+" ", " "+pterm.Bold.Sprint(label)+" ", 1)
	}
	_, err := fmt.Fprintln(r.output, r.styles.Get("Section").Render(banner))
	return err
}

// Close implements ui.Backend.
func (r *Renderer) Close() error {
	return nil
}
