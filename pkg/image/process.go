package image

import (
	"github.com/arthur-debert/memscope/pkg/codec"
	"github.com/arthur-debert/memscope/pkg/objects"
)

// Process adapts an _EPROCESS struct to processctx.Process.
type Process struct {
	*objects.Struct
}

// AsProcess wraps s.
func AsProcess(s *objects.Struct) Process {
	return Process{Struct: s}
}

// ProcessID returns UniqueProcessId, or 0 when it cannot be read.
func (p Process) ProcessID() uint64 {
	return p.uintField("UniqueProcessId")
}

// ParentID returns InheritedFromUniqueProcessId, or 0 when it cannot be read.
func (p Process) ParentID() uint64 {
	return p.uintField("InheritedFromUniqueProcessId")
}

// ImageName returns ImageFileName, or "" when it cannot be read.
func (p Process) ImageName() string {
	v, err := p.Field("ImageFileName")
	if err != nil {
		return ""
	}
	name, _ := v.(string)
	return name
}

func (p Process) uintField(name string) uint64 {
	v, err := p.Field(name)
	if err != nil {
		return 0
	}
	n, err := codec.AsUint64(v)
	if err != nil {
		return 0
	}
	return n
}
