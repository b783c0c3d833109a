// Package text provides plain text table output without any styling.
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/memscope/pkg/render"
	"github.com/arthur-debert/memscope/pkg/types"
)

// Mode selects the text layout.
type Mode int

const (
	// ModePlain writes aligned columns under a header and separator line.
	ModePlain Mode = iota
	// ModeTest writes the plain layout without trailing padding so output
	// compares stably.
	ModeTest
	// ModeWide writes one "name: value" line per column.
	ModeWide
)

// SectionWidth is the width of a section banner.
const SectionWidth = 50

// Renderer writes tables as plain text.
type Renderer struct {
	output    io.Writer
	mode      Mode
	columns   []types.Column
	widths    []int
	nameWidth int
	rows      int
}

// New creates a text renderer.
func New(output io.Writer, mode Mode) *Renderer {
	return &Renderer{output: output, mode: mode}
}

// Name implements ui.Backend.
func (r *Renderer) Name() string {
	switch r.mode {
	case ModeTest:
		return types.TestBackend
	case ModeWide:
		return types.WideTextBackend
	default:
		return types.TextBackend
	}
}

// BeginTable writes the header.
func (r *Renderer) BeginTable(columns []types.Column) error {
	r.columns = columns
	r.widths = ColumnWidths(columns)
	r.rows = 0
	r.nameWidth = 0
	for _, c := range columns {
		if w := render.Width(c.Title()); w > r.nameWidth {
			r.nameWidth = w
		}
	}

	if r.mode == ModeWide {
		return nil
	}

	titles := make([]types.Cell, len(columns))
	rules := make([]types.Cell, len(columns))
	for i, c := range columns {
		titles[i] = types.NewCell(c.Title()).WithAlign(c.Align)
		rules[i] = types.NewCell(strings.Repeat("-", r.widths[i]))
	}
	if err := r.line(titles); err != nil {
		return err
	}
	return r.line(rules)
}

// WriteCells writes one row.
func (r *Renderer) WriteCells(cells []types.Cell) error {
	r.rows++
	if r.mode != ModeWide {
		return r.line(cells)
	}

	if r.rows > 1 {
		if _, err := fmt.Fprintln(r.output); err != nil {
			return err
		}
	}
	for i, c := range cells {
		name := render.Pad(r.columns[i].Title(), r.nameWidth, types.AlignLeft)
		if _, err := fmt.Fprintf(r.output, "%s: %s\n", name, c.Text()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) line(cells []types.Cell) error {
	_, err := fmt.Fprintln(r.output, JoinCells(cells, r.widths, r.mode == ModeTest))
	return err
}

// EndTable implements ui.Backend.
func (r *Renderer) EndTable() error {
	return nil
}

// FreeText writes text on its own line.
func (r *Renderer) FreeText(text string) error {
	_, err := fmt.Fprintln(r.output, text)
	return err
}

// Section writes a banner of stars around label.
func (r *Renderer) Section(label string) error {
	_, err := fmt.Fprintln(r.output, SectionBanner(label, SectionWidth))
	return err
}

// Close implements ui.Backend.
func (r *Renderer) Close() error {
	return nil
}

// ColumnWidths returns the display width of each column: its declared width,
// widened to fit its title.
func ColumnWidths(columns []types.Column) []int {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = c.Width
		if w := render.Width(c.Title()); w > widths[i] {
			widths[i] = w
		}
	}
	return widths
}

// JoinCells pads each cell to its column width and joins them with a space.
// A cell's own width hint widens its column for this row only.
func JoinCells(cells []types.Cell, widths []int, trim bool) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		width := c.Width()
		if i < len(widths) && widths[i] > width {
			width = widths[i]
		}
		parts[i] = render.Pad(c.Text(), width, c.Align())
	}
	line := strings.Join(parts, " ")
	if trim {
		line = strings.TrimRight(line, " ")
	}
	return line
}

// SectionBanner centers label in a line of stars of the given width.
func SectionBanner(label string, width int) string {
	if label == "" {
		return strings.Repeat("*", width)
	}
	pad := width - render.Width(label) - 2
	if pad < 2 {
		pad = 2
	}
	left := pad / 2
	return strings.Repeat("*", left) + " " + label + " " + strings.Repeat("*", pad-left)
}
