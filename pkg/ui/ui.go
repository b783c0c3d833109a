// Package ui implements the table/row output protocol plugins write to.
//
// A plugin declares a header, emits rows of typed values and interleaves free
// text and section markers. Output fans every call out to its backends: text
// backends receive display cells, structured backends receive safe encoded
// values. Per-column renderers are resolved from the renderer registry using
// the column's type hint followed by the value's own type chain.
package ui

import (
	"github.com/arthur-debert/memscope/pkg/types"
)

// Backend is one output destination.
type Backend interface {
	// Name is the backend name renderers are resolved for.
	Name() string
	// BeginTable starts a table with the given columns.
	BeginTable(columns []types.Column) error
	// EndTable finishes the current table.
	EndTable() error
	// FreeText writes a line of text outside any table.
	FreeText(text string) error
	// Section writes a section marker.
	Section(label string) error
	// Close flushes and releases the backend.
	Close() error
}

// CellWriter is a text-family backend.
type CellWriter interface {
	Backend
	WriteCells(cells []types.Cell) error
}

// ValueWriter is a structured-family backend.
type ValueWriter interface {
	Backend
	WriteValues(values []types.SafeValue) error
}

// FamilyOf reports the family of b.
func FamilyOf(b Backend) types.Family {
	if _, ok := b.(ValueWriter); ok {
		return types.FamilyStructured
	}
	return types.FamilyText
}
