package objects

import (
	"fmt"
	"time"

	"github.com/arthur-debert/memscope/pkg/types"
)

// Type names of the scalar wrappers.
const (
	KuidType          = "kuid_t"
	KgidType          = "kgid_t"
	PointerType       = "Pointer"
	AddressType       = "Address"
	UnixTimeStampType = "UnixTimeStamp"
	WinFileTimeType   = "WinFileTime"
	StructType        = "Struct"
	NativeType        = "NativeType"
)

// Kuid is a kernel user id.
type Kuid uint32

func (Kuid) TypeName() string { return KuidType }

func (Kuid) Ancestry() types.TypeChain {
	return types.TypeChain{KuidType, StructType, types.BaseType}
}

// Kgid is a kernel group id.
type Kgid uint32

func (Kgid) TypeName() string { return KgidType }

func (Kgid) Ancestry() types.TypeChain {
	return types.TypeChain{KgidType, StructType, types.BaseType}
}

// Address is a virtual address that is not tied to a target type.
type Address uint64

func (Address) TypeName() string { return AddressType }

func (Address) Ancestry() types.TypeChain {
	return types.TypeChain{AddressType, NativeType, types.BaseType}
}

// Pointer is an address typed by the struct it points at.
type Pointer struct {
	Target string
	Addr   uint64
}

func (Pointer) TypeName() string { return PointerType }

func (Pointer) Ancestry() types.TypeChain {
	return types.TypeChain{PointerType, NativeType, types.BaseType}
}

// IsNull reports whether the pointer is zero.
func (p Pointer) IsNull() bool { return p.Addr == 0 }

func (p Pointer) String() string {
	if p.Target == "" {
		return fmt.Sprintf("%#x", p.Addr)
	}
	return fmt.Sprintf("<%s Pointer to %#x>", p.Target, p.Addr)
}

// Timestamp is a point in time read from the image. A zero epoch means the
// field was never set.
type Timestamp struct {
	Epoch int64
	// Kind is UnixTimeStampType or WinFileTimeType.
	Kind string
}

// NewUnixTimeStamp creates a UnixTimeStamp.
func NewUnixTimeStamp(epoch int64) Timestamp {
	return Timestamp{Epoch: epoch, Kind: UnixTimeStampType}
}

// NewWinFileTime creates a WinFileTime from a unix epoch.
func NewWinFileTime(epoch int64) Timestamp {
	return Timestamp{Epoch: epoch, Kind: WinFileTimeType}
}

func (t Timestamp) TypeName() string {
	if t.Kind == "" {
		return UnixTimeStampType
	}
	return t.Kind
}

// Ancestry puts WinFileTime below UnixTimeStamp so it shares its renderers.
func (t Timestamp) Ancestry() types.TypeChain {
	if t.TypeName() == WinFileTimeType {
		return types.TypeChain{WinFileTimeType, UnixTimeStampType, NativeType, types.BaseType}
	}
	return types.TypeChain{UnixTimeStampType, NativeType, types.BaseType}
}

// IsZero reports whether the timestamp was never set.
func (t Timestamp) IsZero() bool { return t.Epoch == 0 }

// Time returns the timestamp in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Epoch, 0).UTC()
}
