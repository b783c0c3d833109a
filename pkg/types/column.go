package types

import "strings"

// Align is the horizontal alignment of a column or cell.
type Align int

const (
	// AlignDefault lets the backend decide (left for text).
	AlignDefault Align = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// String returns the short name used in configuration and column specs.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return "default"
	}
}

// Column formats understood by the text renderers.
const (
	// FormatAddressPad renders integers as zero padded hex addresses.
	FormatAddressPad = "[addrpad]"
	// FormatAddress renders integers as hex addresses.
	FormatAddress = "[addr]"
)

// Column declares one column of a table header.
type Column struct {
	// Name is the display name.
	Name string
	// CName is the internal name used as the key in structured output.
	CName string
	// Width is the preferred display width; 0 means size to content.
	Width int
	// Align is the alignment of the column's cells.
	Align Align
	// Type is an optional semantic type hint that takes precedence over the
	// value's own type during renderer resolution.
	Type string
	// Format is an optional display format such as FormatAddressPad.
	Format string
}

// Key returns the name used to key this column's values in structured output.
func (c Column) Key() string {
	if c.CName != "" {
		return c.CName
	}
	if c.Name != "" {
		return strings.ToLower(strings.ReplaceAll(c.Name, " ", "_"))
	}
	return c.Type
}

// Title returns the header text for the column.
func (c Column) Title() string {
	if c.Name != "" {
		return c.Name
	}
	if c.CName != "" {
		return c.CName
	}
	return c.Type
}

// RenderOptions carries per-value rendering context to object renderers.
type RenderOptions struct {
	// Column is the column the value belongs to; zero for free-standing values.
	Column Column
	// Unavailable is the text marker used for unreadable values.
	Unavailable string
}

// ParseAlign parses the name returned by Align.String.
func ParseAlign(s string) Align {
	switch s {
	case "left":
		return AlignLeft
	case "right":
		return AlignRight
	case "center":
		return AlignCenter
	default:
		return AlignDefault
	}
}
