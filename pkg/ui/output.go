package ui

import (
	"fmt"
	"sync"

	"github.com/arthur-debert/memscope/pkg/codec"
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/render"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/rs/zerolog"
)

// Options configures an Output.
type Options struct {
	// Unavailable is the text marker for unreadable values.
	Unavailable string
}

// Output fans the table/row protocol out to a set of backends.
//
// A header is a commitment for one table: rows must match its arity until
// the next DeclareHeader, free text or section, each of which ends the open
// table.
type Output struct {
	mu          sync.Mutex
	reg         *registry.Renderers
	backends    []Backend
	columns     []types.Column
	inTable     bool
	closed      bool
	rows        int
	unavailable string
	logger      zerolog.Logger
}

// New creates an Output writing to backends. Every backend must be one of
// CellWriter or ValueWriter.
func New(reg *registry.Renderers, opts Options, backends ...Backend) (*Output, error) {
	if reg == nil {
		return nil, errors.New(errors.ErrInvalidInput, "output needs a renderer registry")
	}
	if len(backends) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "output needs at least one backend")
	}
	for _, b := range backends {
		_, cells := b.(CellWriter)
		_, values := b.(ValueWriter)
		if !cells && !values {
			return nil, errors.Newf(errors.ErrConfiguration, "backend %T writes neither cells nor values", b)
		}
	}
	if opts.Unavailable == "" {
		opts.Unavailable = render.DefaultUnavailable
	}
	return &Output{
		reg:         reg,
		backends:    backends,
		unavailable: opts.Unavailable,
		logger:      logging.GetLogger("ui.Output"),
	}, nil
}

// Backends returns the backend names in fan-out order.
func (o *Output) Backends() []string {
	names := make([]string, len(o.backends))
	for i, b := range o.backends {
		names[i] = b.Name()
	}
	return names
}

// DeclareHeader starts a new table. An open table is ended first.
func (o *Output) DeclareHeader(columns []types.Column) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkOpen(); err != nil {
		return err
	}
	if len(columns) == 0 {
		return errors.New(errors.ErrInvalidInput, "table header needs at least one column")
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		key := c.Key()
		if key == "" {
			return errors.New(errors.ErrInvalidInput, "column needs a name, cname or type")
		}
		if seen[key] {
			return errors.Newf(errors.ErrInvalidInput, "duplicate column %q", key)
		}
		seen[key] = true
	}

	if err := o.endTableLocked(); err != nil {
		return err
	}

	o.columns = append([]types.Column(nil), columns...)
	o.inTable = true
	o.rows = 0
	o.logger.Debug().Int("columns", len(columns)).Msg("Table header declared")

	return o.each(func(b Backend) error { return b.BeginTable(o.columns) })
}

// EmitRow renders values against the declared header and writes the row to
// every backend. Unreadable values become the unavailable marker without
// affecting the other columns.
func (o *Output) EmitRow(values ...any) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkOpen(); err != nil {
		return err
	}
	if !o.inTable {
		return errors.New(errors.ErrOutputState, "row emitted before a table header")
	}
	if len(values) != len(o.columns) {
		return errors.Newf(errors.ErrInvalidInput, "row has %d values, header has %d columns",
			len(values), len(o.columns))
	}

	for _, b := range o.backends {
		var err error
		switch w := b.(type) {
		case ValueWriter:
			err = o.writeValues(w, values)
		case CellWriter:
			err = o.writeCells(w, values)
		}
		if err != nil {
			return err
		}
	}
	o.rows++
	return nil
}

func (o *Output) writeCells(w CellWriter, values []any) error {
	cells := make([]types.Cell, len(values))
	for i, v := range values {
		cell, err := render.Cell(o.reg, w.Name(), v, types.RenderOptions{
			Column:      o.columns[i],
			Unavailable: o.unavailable,
		})
		if err != nil {
			return err
		}
		cells[i] = cell
	}
	return wrapIO(w.WriteCells(cells), w)
}

func (o *Output) writeValues(w ValueWriter, values []any) error {
	safe := make([]types.SafeValue, len(values))
	for i, v := range values {
		encoded, err := codec.Encode(o.reg, w.Name(), v, codec.Options{Column: o.columns[i]})
		if err != nil {
			return err
		}
		safe[i] = encoded
	}
	return wrapIO(w.WriteValues(safe), w)
}

// EmitFreeText writes formatted text. An open table is ended first.
func (o *Output) EmitFreeText(format string, args ...any) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkOpen(); err != nil {
		return err
	}
	if err := o.endTableLocked(); err != nil {
		return err
	}
	text := fmt.Sprintf(format, args...)
	return o.each(func(b Backend) error { return b.FreeText(text) })
}

// EmitSection writes a section marker. An open table is ended first.
func (o *Output) EmitSection(label string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkOpen(); err != nil {
		return err
	}
	if err := o.endTableLocked(); err != nil {
		return err
	}
	return o.each(func(b Backend) error { return b.Section(label) })
}

// Close ends any open table and closes every backend. All backends are
// closed even when one fails; the first failure is returned.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	first := o.endTableLocked()
	o.closed = true
	for _, b := range o.backends {
		if err := wrapIO(b.Close(), b); err != nil {
			o.logger.Warn().Err(err).Str("backend", b.Name()).Msg("Failed to close backend")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (o *Output) endTableLocked() error {
	if !o.inTable {
		return nil
	}
	o.inTable = false
	o.logger.Debug().Int("rows", o.rows).Msg("Table ended")
	return o.each(func(b Backend) error { return b.EndTable() })
}

func (o *Output) checkOpen() error {
	if o.closed {
		return errors.New(errors.ErrOutputState, "output is closed")
	}
	return nil
}

func (o *Output) each(fn func(Backend) error) error {
	for _, b := range o.backends {
		if err := wrapIO(fn(b), b); err != nil {
			return err
		}
	}
	return nil
}

func wrapIO(err error, b Backend) error {
	if err == nil {
		return nil
	}
	if errors.GetErrorCode(err) != errors.ErrUnknown {
		return err
	}
	return errors.Wrapf(err, errors.ErrBackendIO, "backend %s failed", b.Name())
}

// Open creates the backends for formats and an Output over them. The
// backends are closed again if the Output cannot be created.
func Open(reg *registry.Renderers, formats []Format, cfg BackendConfig) (*Output, error) {
	backends, err := NewBackends(formats, cfg)
	if err != nil {
		return nil, err
	}
	out, err := New(reg, Options{Unavailable: cfg.Unavailable}, backends...)
	if err != nil {
		for _, b := range backends {
			_ = b.Close()
		}
		return nil, err
	}
	return out, nil
}
