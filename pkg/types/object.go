package types

import "strings"

// BaseType is the universal base of every type resolution chain. Every
// backend family must bind a renderer for it.
const BaseType = "BaseObject"

// chainSeparator joins chain names in their serialized form ("A:B:BaseObject").
const chainSeparator = ":"

// Object is a typed value reconstructed from a memory image.
type Object interface {
	// TypeName returns the object's own declared type.
	TypeName() string
	// Ancestry returns the type names from most specific to most general.
	Ancestry() TypeChain
}

// TypeChain is an ordered sequence of semantic type names, most specific first.
type TypeChain []string

// ParseTypeChain parses the serialized "A:B:C" form.
func ParseTypeChain(s string) TypeChain {
	if s == "" {
		return nil
	}
	return TypeChain(strings.Split(s, chainSeparator))
}

// String returns the serialized form of the chain.
func (c TypeChain) String() string {
	return strings.Join(c, chainSeparator)
}

// MostSpecific returns the first name of the chain, or "" for an empty chain.
func (c TypeChain) MostSpecific() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Contains reports whether name appears anywhere in the chain.
func (c TypeChain) Contains(name string) bool {
	for _, n := range c {
		if n == name {
			return true
		}
	}
	return false
}

// WithBase returns the chain terminated by BaseType. Duplicate and empty
// names are dropped while keeping the first occurrence.
func (c TypeChain) WithBase() TypeChain {
	out := make(TypeChain, 0, len(c)+1)
	seen := make(map[string]bool, len(c)+1)
	for _, n := range c {
		if n == "" || seen[n] || n == BaseType {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return append(out, BaseType)
}

// Prepend returns a new chain with hint in front. An empty hint returns a copy.
func (c TypeChain) Prepend(hint string) TypeChain {
	out := make(TypeChain, 0, len(c)+1)
	if hint != "" {
		out = append(out, hint)
	}
	for _, n := range c {
		if n != hint {
			out = append(out, n)
		}
	}
	return out
}
