package types

// Cell is an immutable display unit produced by a text renderer.
type Cell struct {
	text  string
	align Align
	width int
}

// NewCell creates a cell holding text with default alignment.
func NewCell(text string) Cell {
	return Cell{text: text}
}

// WithAlign returns a copy of the cell with the given alignment.
func (c Cell) WithAlign(a Align) Cell {
	c.align = a
	return c
}

// WithWidth returns a copy of the cell with the given width hint.
func (c Cell) WithWidth(w int) Cell {
	c.width = w
	return c
}

// Text returns the cell content.
func (c Cell) Text() string { return c.text }

// Align returns the alignment hint.
func (c Cell) Align() Align { return c.align }

// Width returns the width hint, 0 when unset.
func (c Cell) Width() int { return c.width }
