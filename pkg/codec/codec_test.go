package codec_test

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/arthur-debert/memscope/pkg/codec"
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scalarEncoder struct{}

func (scalarEncoder) Name() string     { return "scalar" }
func (scalarEncoder) Kind() codec.Kind { return codec.KindScalar }
func (scalarEncoder) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	return v, nil
}

type mapperCodec struct{}

func (mapperCodec) Name() string     { return "mapper" }
func (mapperCodec) Kind() codec.Kind { return codec.KindMapping }
func (mapperCodec) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	m := v.(*objects.XenM2PMapper)
	return map[string]any{
		"m2p_map":     m.Entries(),
		types.MROKey: m.Ancestry().String(),
	}, nil
}
func (mapperCodec) DecodeFromSafe(v types.SafeValue, _ codec.Options) (any, error) {
	m := v.(map[string]any)
	entries := map[uint64]uint64{}
	for k, raw := range m["m2p_map"].(map[string]any) {
		key, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return nil, err
		}
		val, err := codec.AsUint64(raw)
		if err != nil {
			return nil, err
		}
		entries[key] = val
	}
	chain, _ := codec.MRO(m)
	return objects.NewXenM2PMapper(entries, chain), nil
}

type failingEncoder struct{ code errors.ErrorCode }

func (failingEncoder) Name() string     { return "failing" }
func (failingEncoder) Kind() codec.Kind { return codec.KindScalar }
func (f failingEncoder) EncodeToSafe(any, codec.Options) (types.SafeValue, error) {
	return nil, errors.New(f.code, "cannot read")
}

type noneEncoder struct{}

func (noneEncoder) Name() string     { return "none" }
func (noneEncoder) Kind() codec.Kind { return codec.KindMapping }
func (noneEncoder) EncodeToSafe(v any, _ codec.Options) (types.SafeValue, error) {
	reason, _ := objects.Unavailable(v)
	return map[string]any{types.MROKey: "NoneObject:BaseObject", "reason": reason}, nil
}

type textOnly struct{}

func (textOnly) Name() string { return "text-only" }

func newRegistry(t *testing.T) *registry.Renderers {
	t.Helper()
	reg := registry.NewRenderers()
	reg.MustRegister([]string{types.BaseType, objects.KuidType}, []string{"JsonRenderer"}, func() registry.Renderer { return scalarEncoder{} })
	reg.MustRegister([]string{objects.XenM2PType}, []string{"JsonRenderer"}, func() registry.Renderer { return mapperCodec{} })
	reg.MustRegister([]string{objects.NoneType}, []string{"JsonRenderer"}, func() registry.Renderer { return noneEncoder{} })
	reg.MustRegister([]string{types.BaseType}, []string{"TextRenderer"}, func() registry.Renderer { return textOnly{} })
	return reg
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "scalar", codec.KindScalar.String())
	assert.Equal(t, "mapping", codec.KindMapping.String())
	assert.Equal(t, "display-only", codec.KindDisplayOnly.String())
	assert.Equal(t, "unknown", codec.Kind(0).String())
}

func TestEncodeScalarIdentifier(t *testing.T) {
	reg := newRegistry(t)

	out, err := codec.Encode(reg, "JsonRenderer", objects.Kuid(1000), codec.Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), out)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, "1000", string(data))
}

func TestMappingRoundTrip(t *testing.T) {
	reg := newRegistry(t)
	m := objects.NewXenM2PMapper(map[uint64]uint64{5: 10, 7: 14},
		types.TypeChain{"XenM2PMapper", "JsonObjectRenderer-base"})

	encoded, err := codec.Encode(reg, "JsonRenderer", m, codec.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"m2p_map": map[string]any{"5": uint64(10), "7": uint64(14)},
		"mro":     "XenM2PMapper:JsonObjectRenderer-base",
	}, encoded)

	decoded, err := codec.Decode(reg, "JsonRenderer", encoded)
	require.NoError(t, err)
	got, ok := decoded.(*objects.XenM2PMapper)
	require.True(t, ok, "decoded %T", decoded)
	assert.Equal(t, map[uint64]uint64{5: 10, 7: 14}, got.Entries())
	assert.Equal(t, m.Ancestry(), got.Ancestry())

	// The same value survives a trip through JSON text.
	data, err := json.Marshal(encoded)
	require.NoError(t, err)
	var generic any
	require.NoError(t, json.Unmarshal(data, &generic))
	decoded, err = codec.Decode(reg, "JsonRenderer", generic)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]uint64{5: 10, 7: 14}, decoded.(*objects.XenM2PMapper).Entries())
}

func TestEncodeDoesNotAliasSource(t *testing.T) {
	reg := newRegistry(t)
	src := map[string]any{"nested": []any{int64(1)}}

	out, err := codec.Encode(reg, "JsonRenderer", src, codec.Options{})
	require.NoError(t, err)
	src["nested"].([]any)[0] = int64(99)
	assert.Equal(t, map[string]any{"nested": []any{int64(1)}}, out)
}

func TestEncodeRecoverableFailureBecomesMarker(t *testing.T) {
	reg := newRegistry(t)
	reg.MustRegister([]string{"Broken"}, []string{"JsonRenderer"}, func() registry.Renderer {
		return failingEncoder{code: errors.ErrFieldUnavailable}
	})
	reg.MustRegister([]string{"Misconfigured"}, []string{"JsonRenderer"}, func() registry.Renderer {
		return failingEncoder{code: errors.ErrInternal}
	})

	out, err := codec.Encode(reg, "JsonRenderer", 1, codec.Options{Column: types.Column{Name: "x", Type: "Broken"}})
	require.NoError(t, err)
	chain, ok := codec.MRO(out)
	require.True(t, ok)
	assert.Equal(t, "NoneObject", chain.MostSpecific())

	_, err = codec.Encode(reg, "JsonRenderer", 1, codec.Options{Column: types.Column{Type: "Misconfigured"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestResolveEncoderRejectsNonEncoder(t *testing.T) {
	reg := newRegistry(t)

	_, err := codec.ResolveEncoder(reg, types.TypeChain{"int"}, "TextRenderer")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))

	_, err = codec.ResolveEncoder(reg, types.TypeChain{"int"}, "XmlRenderer")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
}

func TestDecode(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		name  string
		input any
		want  any
	}{
		{"scalar", int64(7), int64(7)},
		{"string", "smss.exe", "smss.exe"},
		{"nil", nil, nil},
		{"sequence", []any{int64(1), "a"}, []any{int64(1), "a"}},
		{"untagged mapping", map[string]any{"a": []any{true}}, map[string]any{"a": []any{true}}},
		{"json number", json.Number("18446744073709551615"), uint64(18446744073709551615)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Decode(reg, "JsonRenderer", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeUnknownTypeFails(t *testing.T) {
	reg := newRegistry(t)

	_, err := codec.Decode(reg, "JsonRenderer", map[string]any{"mro": "FooBar:BaseObject"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrReconstruction))
	assert.Equal(t, "FooBar:BaseObject", errors.GetErrorDetails(err)["mro"])

	// noneEncoder has no decoder.
	_, err = codec.Decode(reg, "JsonRenderer", map[string]any{"mro": "NoneObject:BaseObject", "reason": "x"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrReconstruction))

	// Nested failures fail the whole decode.
	_, err = codec.Decode(reg, "JsonRenderer", []any{int64(1), map[string]any{"mro": "FooBar"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrReconstruction))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any
	}{
		{"int", 5, int64(5)},
		{"uint32", uint32(5), uint64(5)},
		{"float32", float32(1.5), float64(1.5)},
		{"named scalar", objects.Kuid(1000), uint64(1000)},
		{"integer keys", map[uint64]uint64{5: 10}, map[string]any{"5": uint64(10)}},
		{"negative keys", map[int]string{-1: "a"}, map[string]any{"-1": "a"}},
		{"string slice", []string{"a", "b"}, []any{"a", "b"}},
		{"nil slice", []int(nil), []any{}},
		{"nil pointer", (*int)(nil), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := codec.Normalize(struct{ A int }{1})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotSafe))

	_, err = codec.Normalize(map[float64]int{1.5: 1})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotSafe))

	_, err = codec.Normalize(make(chan int))
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotSafe))
}

func TestAsIntegers(t *testing.T) {
	u, err := codec.AsUint64(float64(14))
	require.NoError(t, err)
	assert.Equal(t, uint64(14), u)

	u, err = codec.AsUint64("0x10")
	require.NoError(t, err)
	assert.Equal(t, uint64(16), u)

	_, err = codec.AsUint64(int64(-1))
	assert.True(t, errors.IsErrorCode(err, errors.ErrReconstruction))

	i, err := codec.AsInt64(json.Number("-3"))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), i)

	_, err = codec.AsInt64(1.5)
	assert.Error(t, err)
}
