package types

// SafeValue is the interchange shape produced by codec encoders: nil, bool,
// int64, uint64, float64, string, []any and map[string]any, nested to any
// depth. It never references live image state.
type SafeValue = any

// Well-known keys of composite safe values.
const (
	// MROKey holds the serialized type chain of the encoded object.
	MROKey = "mro"
)
