package codec

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/types"
)

// Normalize returns a deep copy of v in canonical safe form: signed integers
// become int64, unsigned integers uint64, floats float64, sequences []any and
// mappings map[string]any. Integer mapping keys are written in decimal.
// Values with any other shape are rejected with ErrNotSafe.
func Normalize(v any) (types.SafeValue, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool, string, int64, uint64, float64:
		return t, nil
	case json.Number:
		return fromNumber(t)
	}
	return normalizeValue(reflect.ValueOf(v))
}

func normalizeValue(rv reflect.Value) (types.SafeValue, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		if n, ok := rv.Interface().(json.Number); ok {
			return fromNumber(n)
		}
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return normalizeValue(rv.Elem())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}, nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := normalizeValue(rv.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := mapKey(iter.Key())
			if err != nil {
				return nil, err
			}
			item, err := normalizeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			out[key] = item
		}
		return out, nil
	case reflect.Invalid:
		return nil, nil
	default:
		return nil, errors.Newf(errors.ErrNotSafe, "value of type %s is not safe", rv.Type()).
			WithDetail("kind", rv.Kind().String())
	}
}

func mapKey(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Interface:
		if k.IsNil() {
			break
		}
		return mapKey(k.Elem())
	}
	return "", errors.Newf(errors.ErrNotSafe, "mapping key of type %s is not safe", k.Type())
}

func fromNumber(n json.Number) (types.SafeValue, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return u, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotSafe, "invalid number %q", string(n))
	}
	return f, nil
}

// AsUint64 converts a decoded safe scalar to uint64. Integral floats are
// accepted because some readers produce them for every number.
func AsUint64(v any) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int64:
		if t >= 0 {
			return uint64(t), nil
		}
	case int:
		if t >= 0 {
			return uint64(t), nil
		}
	case uint32:
		return uint64(t), nil
	case float64:
		if t >= 0 && t == math.Trunc(t) && t <= math.MaxUint64 {
			return uint64(t), nil
		}
	case json.Number:
		return strconv.ParseUint(string(t), 10, 64)
	case string:
		u, err := strconv.ParseUint(t, 0, 64)
		if err == nil {
			return u, nil
		}
	}
	return 0, errors.Newf(errors.ErrReconstruction, "%v (%T) is not an unsigned integer", v, v)
}

// AsInt64 converts a decoded safe scalar to int64.
func AsInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t), nil
		}
	case float64:
		if t == math.Trunc(t) && t >= math.MinInt64 && t <= math.MaxInt64 {
			return int64(t), nil
		}
	case json.Number:
		return t.Int64()
	case string:
		i, err := strconv.ParseInt(t, 0, 64)
		if err == nil {
			return i, nil
		}
	}
	return 0, errors.Newf(errors.ErrReconstruction, "%v (%T) is not an integer", v, v)
}
