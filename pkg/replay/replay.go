// Package replay re-renders a JSON Lines export through any output, decoding
// every row value back into a typed object first.
package replay

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/memscope/pkg/codec"
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui"
	"github.com/arthur-debert/memscope/pkg/ui/json"
)

// Options configures Replay.
type Options struct {
	// Strict fails on the first value that cannot be decoded. Otherwise
	// such values are shown as a Summary.
	Strict bool
}

// Stats counts what a replay went through.
type Stats struct {
	Tables      int
	Rows        int
	Undecodable int
	Meta        map[string]any
}

// Summary stands in for a value whose encoding cannot be decoded, such as a
// display-only struct summary.
type Summary struct {
	Chain  types.TypeChain
	Fields map[string]any
}

func (s Summary) String() string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{s.Chain.MostSpecific()}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, s.Fields[k]))
	}
	return "<" + strings.Join(parts, " ") + ">"
}

// Replay reads statements from r, decodes them with the bindings of the
// JSON backend and emits them on out.
func Replay(ctx context.Context, reg *registry.Renderers, r io.Reader, out *ui.Output, opts Options) (Stats, error) {
	logger := logging.GetLogger("replay")
	var stats Stats

	stmts, err := json.ReadStatements(r)
	if err != nil {
		return stats, err
	}

	for i, st := range stmts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		switch st.Type {
		case json.KindMeta:
			stats.Meta = st.Meta
			logger.Debug().Interface("meta", st.Meta).Msg("Replaying export")
		case json.KindTable:
			stats.Tables++
			err = out.DeclareHeader(st.Header())
		case json.KindRow:
			var values []any
			values, err = decodeRow(reg, st.Values, opts, &stats)
			if err == nil {
				stats.Rows++
				err = out.EmitRow(values...)
			}
		case json.KindText:
			err = out.EmitFreeText("%s", st.Text)
		case json.KindSection:
			err = out.EmitSection(st.Label)
		default:
			logger.Warn().Str("type", st.Type).Int("statement", i+1).Msg("Skipping unknown statement")
		}
		if err != nil {
			return stats, err
		}
	}

	logger.Debug().
		Int("tables", stats.Tables).
		Int("rows", stats.Rows).
		Int("undecodable", stats.Undecodable).
		Msg("Replay finished")
	return stats, nil
}

func decodeRow(reg *registry.Renderers, raw []any, opts Options, stats *Stats) ([]any, error) {
	values := make([]any, len(raw))
	for i, v := range raw {
		decoded, err := codec.Decode(reg, types.JSONBackend, v)
		if err == nil {
			values[i] = decoded
			continue
		}
		if opts.Strict || !errors.IsErrorCode(err, errors.ErrReconstruction) {
			return nil, err
		}

		stats.Undecodable++
		values[i] = summarize(v)
	}
	return values, nil
}

func summarize(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	chain, _ := codec.MRO(m)
	fields := make(map[string]any, len(m))
	for k, item := range m {
		if k != types.MROKey {
			fields[k] = item
		}
	}
	return Summary{Chain: chain, Fields: fields}
}
