package objects

import (
	"github.com/arthur-debert/memscope/pkg/types"
)

// NoneType is the type name of the unavailable marker.
const NoneType = "NoneObject"

// NoneObject marks a value that could not be read from the image.
type NoneObject struct {
	Reason string
}

// None returns a NoneObject carrying reason.
func None(reason string) NoneObject {
	return NoneObject{Reason: reason}
}

// TypeName implements types.Object.
func (NoneObject) TypeName() string { return NoneType }

// Ancestry implements types.Object.
func (NoneObject) Ancestry() types.TypeChain {
	return types.TypeChain{NoneType, types.BaseType}
}

func (n NoneObject) String() string {
	return n.Reason
}

// Unavailable reports whether v stands for a value that could not be read:
// nil, a NoneObject or an error. The second result is the reason.
func Unavailable(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "no value", true
	case NoneObject:
		return t.Reason, true
	case *NoneObject:
		if t == nil {
			return "no value", true
		}
		return t.Reason, true
	case error:
		return t.Error(), true
	default:
		return "", false
	}
}
