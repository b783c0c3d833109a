// Package codec defines how objects become safe interchange values and back.
//
// Every encoder declares one Kind up front. Scalars encode to a bare value,
// mappings encode to a map carrying their type chain under "mro" and can be
// rebuilt by a Decoder bound to the chain's most specific name. Display-only
// encoders produce a readable summary and cannot be decoded.
package codec
