package renderers

import (
	"fmt"
	"strconv"

	"github.com/arthur-debert/memscope/pkg/codec"
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/types"
)

// baseJSON passes scalars through and summarises everything else with its
// type chain. Structs encode their type and offset.
type baseJSON struct{}

func (baseJSON) Name() string     { return "BaseObjectJsonRenderer" }
func (baseJSON) Kind() codec.Kind { return codec.KindDisplayOnly }

func (baseJSON) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	if s, ok := v.(*objects.Struct); ok {
		return map[string]any{
			types.MROKey: s.Ancestry().String(),
			"offset":     s.Offset(),
			"type_name":  s.TypeName(),
		}, nil
	}

	safe, err := codec.Normalize(v)
	if err == nil {
		return safe, nil
	}
	if !errors.IsErrorCode(err, errors.ErrNotSafe) {
		return nil, err
	}
	return map[string]any{
		types.MROKey: objects.ChainOf(v).String(),
		"repr":       fmt.Sprint(v),
	}, nil
}

// noneJSON encodes the unavailable marker. It decodes back to a NoneObject.
type noneJSON struct{}

func (noneJSON) Name() string     { return "NoneObjectJsonRenderer" }
func (noneJSON) Kind() codec.Kind { return codec.KindMapping }

func (noneJSON) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	reason, _ := objects.Unavailable(v)
	return map[string]any{
		types.MROKey: objects.None("").Ancestry().String(),
		"reason":     reason,
	}, nil
}

func (noneJSON) DecodeFromSafe(v types.SafeValue, _ codec.Options) (any, error) {
	m, err := asMapping(v)
	if err != nil {
		return nil, err
	}
	reason, _ := m["reason"].(string)
	return objects.None(reason), nil
}

// idJSON encodes kernel uid/gid wrappers as their integer value.
type idJSON struct{}

func (idJSON) Name() string     { return "KernelIDJsonRenderer" }
func (idJSON) Kind() codec.Kind { return codec.KindScalar }

func (idJSON) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	switch t := v.(type) {
	case objects.Kuid:
		return uint64(t), nil
	case objects.Kgid:
		return uint64(t), nil
	}
	return codec.Normalize(v)
}

// addressJSON encodes pointers and addresses as their integer value.
type addressJSON struct{}

func (addressJSON) Name() string     { return "AddressJsonRenderer" }
func (addressJSON) Kind() codec.Kind { return codec.KindScalar }

func (addressJSON) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	switch t := v.(type) {
	case objects.Pointer:
		return t.Addr, nil
	case objects.Address:
		return uint64(t), nil
	}
	return codec.Normalize(v)
}

// timestampJSON encodes timestamps with their epoch and type chain.
type timestampJSON struct{}

func (timestampJSON) Name() string     { return "UnixTimestampJsonRenderer" }
func (timestampJSON) Kind() codec.Kind { return codec.KindMapping }

func (timestampJSON) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	ts, ok := v.(objects.Timestamp)
	if !ok {
		return nil, errors.Newf(errors.ErrInternal, "timestamp encoder got %T", v)
	}
	return map[string]any{
		"epoch":      ts.Epoch,
		types.MROKey: ts.Ancestry().String(),
	}, nil
}

func (timestampJSON) DecodeFromSafe(v types.SafeValue, _ codec.Options) (any, error) {
	m, err := asMapping(v)
	if err != nil {
		return nil, err
	}
	epoch, err := codec.AsInt64(m["epoch"])
	if err != nil {
		return nil, err
	}
	chain, _ := codec.MRO(m)
	return objects.Timestamp{Epoch: epoch, Kind: chain.MostSpecific()}, nil
}

// mapperJSON encodes the m2p map under "m2p_map" with decimal keys.
type mapperJSON struct{}

func (mapperJSON) Name() string     { return "XenM2PMapperJsonRenderer" }
func (mapperJSON) Kind() codec.Kind { return codec.KindMapping }

func (mapperJSON) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	m, ok := v.(*objects.XenM2PMapper)
	if !ok {
		return nil, errors.Newf(errors.ErrInternal, "m2p encoder got %T", v)
	}
	entries := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		pfn, _ := m.Get(k)
		entries[strconv.FormatUint(k, 10)] = pfn
	}
	return map[string]any{
		"m2p_map":    entries,
		types.MROKey: m.Ancestry().String(),
	}, nil
}

func (mapperJSON) DecodeFromSafe(v types.SafeValue, _ codec.Options) (any, error) {
	m, err := asMapping(v)
	if err != nil {
		return nil, err
	}
	raw, ok := m["m2p_map"].(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrReconstruction, "m2p_map missing or not a mapping")
	}
	entries := make(map[uint64]uint64, len(raw))
	for k, item := range raw {
		mfn, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrReconstruction, "invalid machine frame %q", k)
		}
		pfn, err := codec.AsUint64(item)
		if err != nil {
			return nil, err
		}
		entries[mfn] = pfn
	}
	chain, _ := codec.MRO(m)
	return objects.NewXenM2PMapper(entries, chain), nil
}

// processJSON summarises an _EPROCESS. The summary cannot be decoded.
type processJSON struct{}

func (processJSON) Name() string     { return "EPROCESSJsonRenderer" }
func (processJSON) Kind() codec.Kind { return codec.KindDisplayOnly }

func (processJSON) EncodeToSafe(v any, opts codec.Options) (types.SafeValue, error) {
	s, ok := v.(*objects.Struct)
	if !ok {
		return baseJSON{}.EncodeToSafe(v, opts)
	}
	return map[string]any{
		types.MROKey: s.Ancestry().String(),
		"offset":     s.Offset(),
		"name":       member(s, "ImageFileName"),
		"pid":        member(s, "UniqueProcessId"),
	}, nil
}

// threadJSON summarises an _ETHREAD. The summary cannot be decoded.
type threadJSON struct{}

func (threadJSON) Name() string     { return "ETHREADJsonRenderer" }
func (threadJSON) Kind() codec.Kind { return codec.KindDisplayOnly }

func (threadJSON) EncodeToSafe(v any, opts codec.Options) (types.SafeValue, error) {
	s, ok := v.(*objects.Struct)
	if !ok {
		return baseJSON{}.EncodeToSafe(v, opts)
	}
	return map[string]any{
		types.MROKey: s.Ancestry().String(),
		"offset":     s.Offset(),
		"pid":        member(s, "Cid.UniqueProcess"),
		"tid":        member(s, "Cid.UniqueThread"),
	}, nil
}

// member returns a safe scalar for a struct field, nil when unreadable.
func member(s *objects.Struct, path string) any {
	v, err := s.Field(path)
	if err != nil {
		return nil
	}
	safe, err := codec.Normalize(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return safe
}

func asMapping(v types.SafeValue) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.ErrReconstruction, "expected a mapping, got %T", v)
	}
	return m, nil
}
