// Package yaml writes tables as YAML documents, one per table.
package yaml

import (
	"io"

	"github.com/arthur-debert/memscope/pkg/types"
	"gopkg.in/yaml.v3"
)

// Document is the YAML layout of one table.
type Document struct {
	Section string           `yaml:"section,omitempty"`
	Notes   []string         `yaml:"notes,omitempty"`
	Columns []string         `yaml:"columns"`
	Rows    []map[string]any `yaml:"rows"`
}

// Renderer buffers tables and writes them on Close.
type Renderer struct {
	output  io.Writer
	docs    []*Document
	current *Document
	section string
	notes   []string
	columns []types.Column
}

// New creates a YAML renderer.
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// Name implements ui.Backend.
func (r *Renderer) Name() string { return types.YAMLBackend }

// BeginTable starts a document. Pending section and notes are attached to it.
func (r *Renderer) BeginTable(columns []types.Column) error {
	r.columns = columns
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = c.Key()
	}
	r.current = &Document{Section: r.section, Notes: r.notes, Columns: keys, Rows: []map[string]any{}}
	r.notes = nil
	r.docs = append(r.docs, r.current)
	return nil
}

// WriteValues appends a row keyed by column cname.
func (r *Renderer) WriteValues(values []types.SafeValue) error {
	row := make(map[string]any, len(values))
	for i, v := range values {
		row[r.columns[i].Key()] = v
	}
	r.current.Rows = append(r.current.Rows, row)
	return nil
}

// EndTable implements ui.Backend.
func (r *Renderer) EndTable() error {
	r.current = nil
	return nil
}

// FreeText records a note for the next table.
func (r *Renderer) FreeText(text string) error {
	r.notes = append(r.notes, text)
	return nil
}

// Section sets the section of the following tables.
func (r *Renderer) Section(label string) error {
	r.section = label
	return nil
}

// Close writes every document. Notes after the last table get a document of
// their own.
func (r *Renderer) Close() error {
	if len(r.notes) > 0 {
		r.docs = append(r.docs, &Document{Section: r.section, Notes: r.notes})
		r.notes = nil
	}

	enc := yaml.NewEncoder(r.output)
	enc.SetIndent(2)
	for _, doc := range r.docs {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	r.docs = nil
	return enc.Close()
}
