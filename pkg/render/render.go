// Package render resolves text-family renderers and turns values into
// display cells.
package render

import (
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/types"
)

// DefaultUnavailable is the text shown for values that could not be read.
const DefaultUnavailable = "-"

// CellRenderer renders a value as a display cell.
type CellRenderer interface {
	registry.Renderer
	RenderCell(v any, opts types.RenderOptions) (types.Cell, error)
}

// ResolveCell resolves chain for backend and checks the result renders cells.
func ResolveCell(reg *registry.Renderers, chain types.TypeChain, backend string) (CellRenderer, error) {
	r, err := reg.Resolve(chain, backend)
	if err != nil {
		return nil, err
	}
	cr, ok := r.(CellRenderer)
	if !ok {
		return nil, errors.Newf(errors.ErrConfiguration,
			"renderer %s bound for %s does not render cells", r.Name(), backend).
			WithDetail("chain", chain.String())
	}
	return cr, nil
}

// Cell renders v for backend. The column's type hint is tried before v's
// own chain, and the column's alignment and width fill in hints the renderer
// left unset. A recoverable renderer failure yields the unavailable marker.
func Cell(reg *registry.Renderers, backend string, v any, opts types.RenderOptions) (types.Cell, error) {
	if opts.Unavailable == "" {
		opts.Unavailable = DefaultUnavailable
	}

	cell, err := renderCell(reg, backend, v, opts)
	if err != nil {
		if !errors.IsRecoverable(err) {
			return types.Cell{}, err
		}
		logger := logging.GetLogger("render")
		logger.Debug().
			Err(err).
			Str("column", opts.Column.Key()).
			Msg("Value unavailable, rendering marker")
		if cell, err = renderCell(reg, backend, objects.None(err.Error()), opts); err != nil {
			return types.Cell{}, err
		}
	}

	if cell.Align() == types.AlignDefault {
		cell = cell.WithAlign(opts.Column.Align)
	}
	if cell.Width() == 0 {
		cell = cell.WithWidth(opts.Column.Width)
	}
	return cell, nil
}

func renderCell(reg *registry.Renderers, backend string, v any, opts types.RenderOptions) (types.Cell, error) {
	r, err := ResolveCell(reg, objects.ResolutionChain(v, opts.Column.Type), backend)
	if err != nil {
		return types.Cell{}, err
	}
	return r.RenderCell(v, opts)
}
