package objects

import (
	"fmt"

	"github.com/arthur-debert/memscope/pkg/types"
)

// Chains for plain Go values.
var (
	noneChain   = types.TypeChain{NoneType, types.BaseType}
	boolChain   = types.TypeChain{"bool", types.BaseType}
	intChain    = types.TypeChain{"int", types.BaseType}
	floatChain  = types.TypeChain{"float", types.BaseType}
	stringChain = types.TypeChain{"str", types.BaseType}
	listChain   = types.TypeChain{"list", types.BaseType}
	dictChain   = types.TypeChain{"dict", types.BaseType}
)

// ChainOf returns the type resolution chain of v. Objects report their own
// ancestry; unreadable values map to NoneObject.
func ChainOf(v any) types.TypeChain {
	if _, ok := Unavailable(v); ok {
		return append(types.TypeChain(nil), noneChain...)
	}

	var chain types.TypeChain
	switch t := v.(type) {
	case types.Object:
		chain = t.Ancestry()
	case bool:
		chain = boolChain
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		chain = intChain
	case float32, float64:
		chain = floatChain
	case string, fmt.Stringer:
		chain = stringChain
	case []any, []string, []uint64, []int64:
		chain = listChain
	case map[string]any:
		chain = dictChain
	default:
		chain = types.TypeChain{fmt.Sprintf("%T", v)}
	}
	return append(types.TypeChain(nil), chain...).WithBase()
}

// ResolutionChain returns the chain used to pick a renderer for v in a column
// with the given type hint. The hint goes first; it is ignored for unreadable
// values so they always reach the NoneObject renderer.
func ResolutionChain(v any, hint string) types.TypeChain {
	chain := ChainOf(v)
	if _, ok := Unavailable(v); ok {
		return chain
	}
	return chain.Prepend(hint).WithBase()
}
