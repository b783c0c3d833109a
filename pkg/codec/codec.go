package codec

import (
	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/types"
)

// Kind is the shape an encoder produces.
type Kind int

const (
	// KindScalar encodes to a bare scalar.
	KindScalar Kind = iota + 1
	// KindMapping encodes to a mapping tagged with its type chain.
	KindMapping
	// KindDisplayOnly encodes to a lossy summary that cannot be decoded.
	KindDisplayOnly
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindDisplayOnly:
		return "display-only"
	default:
		return "unknown"
	}
}

// Options carries encoding context.
type Options struct {
	// Column is the column the value is emitted in, if any.
	Column types.Column
	// Backend is the backend the value is encoded for.
	Backend string
}

// Encoder turns a value into its safe form.
type Encoder interface {
	registry.Renderer
	Kind() Kind
	EncodeToSafe(v any, opts Options) (types.SafeValue, error)
}

// Decoder rebuilds a value from its safe form. Encoders that do not
// implement it are encode-only.
type Decoder interface {
	DecodeFromSafe(v types.SafeValue, opts Options) (any, error)
}

// ResolveEncoder resolves chain for backend and checks the result encodes.
func ResolveEncoder(reg *registry.Renderers, chain types.TypeChain, backend string) (Encoder, error) {
	r, err := reg.Resolve(chain, backend)
	if err != nil {
		return nil, err
	}
	enc, ok := r.(Encoder)
	if !ok {
		return nil, errors.Newf(errors.ErrConfiguration,
			"renderer %s bound for %s is not an encoder", r.Name(), backend).
			WithDetail("chain", chain.String())
	}
	return enc, nil
}

// Encode resolves the encoder for v and returns its normalized safe form.
// The column's type hint takes precedence over v's own chain. A recoverable
// encoder failure is replaced by the encoding of a NoneObject carrying the
// reason; every other failure propagates.
func Encode(reg *registry.Renderers, backend string, v any, opts Options) (types.SafeValue, error) {
	opts.Backend = backend
	out, err := encode(reg, backend, v, opts)
	if err == nil || !errors.IsRecoverable(err) {
		return out, err
	}

	logger := logging.GetLogger("codec")
	logger.Debug().
		Err(err).
		Str("column", opts.Column.Key()).
		Msg("Value unavailable, encoding marker")
	return encode(reg, backend, objects.None(err.Error()), opts)
}

func encode(reg *registry.Renderers, backend string, v any, opts Options) (types.SafeValue, error) {
	enc, err := ResolveEncoder(reg, objects.ResolutionChain(v, opts.Column.Type), backend)
	if err != nil {
		return nil, err
	}
	raw, err := enc.EncodeToSafe(v, opts)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}

// Decode rebuilds the value encoded as v for backend. Scalars decode to
// themselves and sequences decode element-wise. A mapping with an "mro" key
// is handed to the decoder bound to exactly the most specific name of its
// chain; no supertype is tried. Anything else is a reconstruction error.
func Decode(reg *registry.Renderers, backend string, v types.SafeValue) (any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			d, err := Decode(reg, backend, item)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil

	case map[string]any:
		chain, ok := MRO(t)
		if !ok {
			out := make(map[string]any, len(t))
			for k, item := range t {
				d, err := Decode(reg, backend, item)
				if err != nil {
					return nil, err
				}
				out[k] = d
			}
			return out, nil
		}
		return decodeTagged(reg, backend, chain, t)

	default:
		return Normalize(t)
	}
}

func decodeTagged(reg *registry.Renderers, backend string, chain types.TypeChain, v map[string]any) (any, error) {
	name := chain.MostSpecific()
	r, ok := reg.Lookup(name, backend)
	if !ok {
		return nil, errors.Newf(errors.ErrReconstruction, "no decoder registered for %s", name).
			WithDetail("mro", chain.String()).
			WithDetail("backend", backend)
	}
	dec, ok := r.(Decoder)
	if !ok {
		return nil, errors.Newf(errors.ErrReconstruction, "%s is encode-only for %s", name, backend).
			WithDetail("mro", chain.String()).
			WithDetail("renderer", r.Name())
	}
	out, err := dec.DecodeFromSafe(v, Options{Backend: backend})
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrReconstruction) {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrReconstruction, "cannot decode %s", name).
			WithDetail("mro", chain.String())
	}
	return out, nil
}

// MRO returns the type chain recorded in a tagged mapping.
func MRO(v types.SafeValue) (types.TypeChain, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	s, ok := m[types.MROKey].(string)
	if !ok || s == "" {
		return nil, false
	}
	return types.ParseTypeChain(s), true
}
