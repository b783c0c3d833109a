package objects

import (
	"sort"
	"strings"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/types"
)

// Dereferencer reads the struct of type typeName located at addr.
type Dereferencer interface {
	Deref(addr uint64, typeName string) (*Struct, error)
}

// Struct is a structure read from the image at a fixed offset. A field
// holding nil was present in the layout but could not be read.
type Struct struct {
	typeName string
	chain    types.TypeChain
	offset   uint64
	fields   map[string]any
	deref    Dereferencer
}

// NewStruct creates a struct of typeName at offset. ancestry lists the
// supertypes; Struct and BaseObject are appended when missing.
func NewStruct(typeName string, ancestry types.TypeChain, offset uint64, fields map[string]any, deref Dereferencer) *Struct {
	chain := ancestry.Prepend(typeName)
	if !chain.Contains(StructType) {
		chain = append(chain, StructType)
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Struct{
		typeName: typeName,
		chain:    chain.WithBase(),
		offset:   offset,
		fields:   copied,
		deref:    deref,
	}
}

func (s *Struct) TypeName() string { return s.typeName }

func (s *Struct) Ancestry() types.TypeChain {
	return append(types.TypeChain(nil), s.chain...)
}

// Offset returns the address the struct was read from.
func (s *Struct) Offset() uint64 { return s.offset }

// Identity is the key used to detect revisited nodes during traversal.
func (s *Struct) Identity() uint64 { return s.offset }

// FieldNames returns the declared field names in sorted order.
func (s *Struct) FieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field returns the value at a dotted path such as "Peb.Ldr". Pointers met
// along the path are dereferenced. An absent, unreadable or null value is an
// ErrFieldUnavailable error.
func (s *Struct) Field(path string) (any, error) {
	parts := strings.Split(path, ".")
	var cur any = s
	for i, part := range parts {
		st, err := s.asStruct(cur, strings.Join(parts[:i], "."))
		if err != nil {
			return nil, err
		}
		v, ok := st.fields[part]
		if !ok {
			return nil, errors.Newf(errors.ErrFieldUnavailable, "%s has no field %s", st.typeName, part).
				WithDetail("path", path)
		}
		if v == nil {
			return nil, errors.Newf(errors.ErrFieldUnavailable, "%s.%s is unreadable", st.typeName, part).
				WithDetail("path", path).
				WithDetail("offset", st.offset)
		}
		cur = v
	}
	return cur, nil
}

func (s *Struct) asStruct(v any, path string) (*Struct, error) {
	switch t := v.(type) {
	case *Struct:
		return t, nil
	case Pointer:
		if t.IsNull() {
			return nil, errors.Newf(errors.ErrFieldUnavailable, "%s is a null pointer", path)
		}
		if s.deref == nil {
			return nil, errors.Newf(errors.ErrFieldUnavailable, "cannot dereference %s: no image", path)
		}
		st, err := s.deref.Deref(t.Addr, t.Target)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFieldUnavailable, "cannot dereference %s", path)
		}
		return st, nil
	default:
		return nil, errors.Newf(errors.ErrFieldUnavailable, "%s is not a struct", path)
	}
}

// Member is Field with the error folded into a NoneObject.
func (s *Struct) Member(path string) any {
	v, err := s.Field(path)
	if err != nil {
		return None(err.Error())
	}
	return v
}

// Deref dereferences the pointer held in field.
func (s *Struct) Deref(field string) (*Struct, error) {
	v, err := s.Field(field)
	if err != nil {
		return nil, err
	}
	return s.asStruct(v, field)
}

// Follow implements the traversal link contract: it returns the struct the
// pointer in field points at, or a NoneObject for a null link.
func (s *Struct) Follow(field string) (types.Object, error) {
	v, err := s.Field(field)
	if err != nil {
		return nil, err
	}
	if p, ok := v.(Pointer); ok && p.IsNull() {
		return None("null link"), nil
	}
	return s.asStruct(v, field)
}
