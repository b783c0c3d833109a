// Package json provides machine-readable JSON output.
//
// The JsonRenderer writes a JSON Lines stream of statements (meta, table,
// row, text, section) that can be read back with ReadStatements. The
// DataExportRenderer writes only rows, one object per line keyed by the
// column's cname.
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/memscope/pkg/types"
)

// Mode selects the stream layout.
type Mode int

const (
	// ModeStatements writes every statement.
	ModeStatements Mode = iota
	// ModeExport writes rows only.
	ModeExport
)

// Renderer writes JSON Lines.
type Renderer struct {
	output   io.Writer
	encoder  *json.Encoder
	mode     Mode
	meta     map[string]any
	metaSent bool
	columns  []types.Column
}

// New creates a JSON renderer. meta is written as the first statement in
// statement mode.
func New(output io.Writer, mode Mode, meta map[string]any) *Renderer {
	encoder := json.NewEncoder(output)
	encoder.SetEscapeHTML(false)
	return &Renderer{output: output, encoder: encoder, mode: mode, meta: meta}
}

// Name implements ui.Backend.
func (r *Renderer) Name() string {
	if r.mode == ModeExport {
		return types.DataExportBackend
	}
	return types.JSONBackend
}

func (r *Renderer) statement(st Statement) error {
	if r.mode == ModeExport {
		return nil
	}
	if !r.metaSent {
		r.metaSent = true
		if err := r.encoder.Encode(Statement{Type: KindMeta, Meta: r.meta}); err != nil {
			return err
		}
	}
	return r.encoder.Encode(st)
}

// BeginTable writes a table statement.
func (r *Renderer) BeginTable(columns []types.Column) error {
	r.columns = columns
	cols := make([]Column, len(columns))
	for i, c := range columns {
		cols[i] = FromColumn(c)
	}
	return r.statement(Statement{Type: KindTable, Columns: cols})
}

// WriteValues writes a row.
func (r *Renderer) WriteValues(values []types.SafeValue) error {
	if r.mode == ModeExport {
		row := make(map[string]any, len(values))
		for i, v := range values {
			row[r.columns[i].Key()] = v
		}
		return r.encoder.Encode(row)
	}
	return r.statement(Statement{Type: KindRow, Values: values})
}

// EndTable implements ui.Backend.
func (r *Renderer) EndTable() error {
	r.columns = nil
	return nil
}

// FreeText writes a text statement.
func (r *Renderer) FreeText(text string) error {
	return r.statement(Statement{Type: KindText, Text: text})
}

// Section writes a section statement.
func (r *Renderer) Section(label string) error {
	return r.statement(Statement{Type: KindSection, Label: label})
}

// Close writes the meta statement if nothing else was written.
func (r *Renderer) Close() error {
	if r.mode == ModeExport || r.metaSent {
		return nil
	}
	r.metaSent = true
	return r.encoder.Encode(Statement{Type: KindMeta, Meta: r.meta})
}
