package renderers

import (
	"fmt"
	"strconv"

	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/render"
	"github.com/arthur-debert/memscope/pkg/types"
)

// TextValue formats v as plain text for a column. It is the fallback used by
// every text renderer for values it has no special handling for.
func TextValue(v any, opts types.RenderOptions) string {
	if _, ok := objects.Unavailable(v); ok {
		return unavailable(opts)
	}

	switch t := v.(type) {
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	case *objects.Struct:
		return fmt.Sprintf("%s @ %#x", t.TypeName(), t.Offset())
	case fmt.Stringer:
		return t.String()
	}
	if s, ok := render.FormatInteger(v, opts.Column.Format); ok {
		return s
	}
	return fmt.Sprint(v)
}

func unavailable(opts types.RenderOptions) string {
	if opts.Unavailable == "" {
		return render.DefaultUnavailable
	}
	return opts.Unavailable
}

// baseText renders any value.
type baseText struct{}

func (baseText) Name() string { return "BaseObjectTextRenderer" }

func (baseText) RenderCell(v any, opts types.RenderOptions) (types.Cell, error) {
	return types.NewCell(TextValue(v, opts)), nil
}

// noneText renders the unavailable marker.
type noneText struct{}

func (noneText) Name() string { return "NoneObjectTextRenderer" }

func (noneText) RenderCell(_ any, opts types.RenderOptions) (types.Cell, error) {
	return types.NewCell(unavailable(opts)), nil
}

// idText renders kernel uid/gid wrappers as their decimal value.
type idText struct{}

func (idText) Name() string { return "KernelIDTextRenderer" }

func (idText) RenderCell(v any, opts types.RenderOptions) (types.Cell, error) {
	switch t := v.(type) {
	case objects.Kuid:
		return types.NewCell(strconv.FormatUint(uint64(t), 10)).WithAlign(types.AlignRight), nil
	case objects.Kgid:
		return types.NewCell(strconv.FormatUint(uint64(t), 10)).WithAlign(types.AlignRight), nil
	}
	return baseText{}.RenderCell(v, opts)
}

// addressText renders pointers and addresses in hex, honouring the column's
// address format.
type addressText struct{}

func (addressText) Name() string { return "AddressTextRenderer" }

func (addressText) RenderCell(v any, opts types.RenderOptions) (types.Cell, error) {
	format := opts.Column.Format
	if format == "" {
		format = types.FormatAddress
	}
	switch t := v.(type) {
	case objects.Pointer:
		return types.NewCell(render.FormatUint(t.Addr, format)), nil
	case objects.Address:
		return types.NewCell(render.FormatUint(uint64(t), format)), nil
	}
	if s, ok := render.FormatInteger(v, format); ok {
		return types.NewCell(s), nil
	}
	return baseText{}.RenderCell(v, opts)
}

// TimestampLayout is the text layout of timestamps.
const TimestampLayout = "2006-01-02 15:04:05Z"

// timestampText renders timestamps in UTC. Unset timestamps are unavailable.
type timestampText struct{}

func (timestampText) Name() string { return "UnixTimestampTextRenderer" }

func (timestampText) RenderCell(v any, opts types.RenderOptions) (types.Cell, error) {
	ts, ok := v.(objects.Timestamp)
	if !ok {
		return baseText{}.RenderCell(v, opts)
	}
	if ts.IsZero() {
		return types.NewCell(unavailable(opts)), nil
	}
	return types.NewCell(ts.Time().Format(TimestampLayout)), nil
}

// processText renders an _EPROCESS as "offset name pid".
type processText struct{}

func (processText) Name() string { return "EPROCESSTextRenderer" }

func (processText) RenderCell(v any, opts types.RenderOptions) (types.Cell, error) {
	s, ok := v.(*objects.Struct)
	if !ok {
		return baseText{}.RenderCell(v, opts)
	}
	plain := types.RenderOptions{Unavailable: opts.Unavailable}
	return types.NewCell(fmt.Sprintf("%s %s %s",
		render.FormatUint(s.Offset(), types.FormatAddressPad),
		TextValue(s.Member("ImageFileName"), plain),
		TextValue(s.Member("UniqueProcessId"), plain),
	)).WithAlign(types.AlignLeft), nil
}

// threadText renders an _ETHREAD as "offset TID tid".
type threadText struct{}

func (threadText) Name() string { return "ETHREADTextRenderer" }

func (threadText) RenderCell(v any, opts types.RenderOptions) (types.Cell, error) {
	s, ok := v.(*objects.Struct)
	if !ok {
		return baseText{}.RenderCell(v, opts)
	}
	plain := types.RenderOptions{Unavailable: opts.Unavailable}
	return types.NewCell(fmt.Sprintf("%s TID %s",
		render.FormatUint(s.Offset(), types.FormatAddressPad),
		TextValue(s.Member("Cid.UniqueThread"), plain),
	)).WithAlign(types.AlignLeft), nil
}

// mapperText summarises an m2p map.
type mapperText struct{}

func (mapperText) Name() string { return "XenM2PMapperTextRenderer" }

func (mapperText) RenderCell(v any, opts types.RenderOptions) (types.Cell, error) {
	m, ok := v.(*objects.XenM2PMapper)
	if !ok {
		return baseText{}.RenderCell(v, opts)
	}
	return types.NewCell(fmt.Sprintf("(%d entries)", m.Len())), nil
}
