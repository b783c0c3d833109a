package json

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/types"
)

// Statement kinds written by the JSON Lines renderer.
const (
	KindMeta    = "meta"
	KindTable   = "table"
	KindRow     = "row"
	KindText    = "text"
	KindSection = "section"
)

// Column is the serialized form of a table column.
type Column struct {
	Name   string `json:"name"`
	CName  string `json:"cname,omitempty"`
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Align  string `json:"align,omitempty"`
}

// FromColumn converts a header column.
func FromColumn(c types.Column) Column {
	out := Column{Name: c.Title(), CName: c.Key(), Type: c.Type, Format: c.Format, Width: c.Width}
	if c.Align != types.AlignDefault {
		out.Align = c.Align.String()
	}
	return out
}

// ToColumn converts back to a header column.
func (c Column) ToColumn() types.Column {
	return types.Column{
		Name:   c.Name,
		CName:  c.CName,
		Type:   c.Type,
		Format: c.Format,
		Width:  c.Width,
		Align:  types.ParseAlign(c.Align),
	}
}

// Statement is one line of a JSON Lines stream.
type Statement struct {
	Type    string         `json:"type"`
	Meta    map[string]any `json:"meta,omitempty"`
	Columns []Column       `json:"columns,omitempty"`
	Values  []any          `json:"values,omitempty"`
	Text    string         `json:"text,omitempty"`
	Label   string         `json:"label,omitempty"`
}

// Header returns the statement's columns as header columns.
func (s Statement) Header() []types.Column {
	out := make([]types.Column, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.ToColumn()
	}
	return out
}

// maxLine bounds a single statement; rows holding large maps can be long.
const maxLine = 64 * 1024 * 1024

// ReadStatements reads a JSON Lines stream. Numbers keep their exact value
// as json.Number. Blank lines are skipped.
func ReadStatements(r io.Reader) ([]Statement, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	var out []Statement
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var st Statement
		if err := dec.Decode(&st); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid statement on line %d", line)
		}
		if st.Type == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "statement on line %d has no type", line)
		}
		out = append(out, st)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrBackendIO, "failed to read statements")
	}
	return out, nil
}
