package objects

import (
	"sort"

	"github.com/arthur-debert/memscope/pkg/types"
)

// XenM2PType is the type name of the Xen machine-to-physical map.
const XenM2PType = "XenM2PMapper"

// XenM2PMapper maps machine frame numbers to physical frame numbers.
type XenM2PMapper struct {
	entries map[uint64]uint64
	chain   types.TypeChain
}

// NewXenM2PMapper copies entries into a new mapper. chain is the recorded
// ancestry; when empty the mapper's default ancestry is used.
func NewXenM2PMapper(entries map[uint64]uint64, chain types.TypeChain) *XenM2PMapper {
	m := &XenM2PMapper{entries: make(map[uint64]uint64, len(entries))}
	for k, v := range entries {
		m.entries[k] = v
	}
	if len(chain) == 0 {
		chain = types.TypeChain{XenM2PType, "dict", types.BaseType}
	}
	m.chain = chain.Prepend(XenM2PType)
	return m
}

func (m *XenM2PMapper) TypeName() string { return XenM2PType }

func (m *XenM2PMapper) Ancestry() types.TypeChain {
	return append(types.TypeChain(nil), m.chain...)
}

// Entries returns a copy of the map.
func (m *XenM2PMapper) Entries() map[uint64]uint64 {
	out := make(map[uint64]uint64, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

// Get returns the physical frame for machine frame mfn.
func (m *XenM2PMapper) Get(mfn uint64) (uint64, bool) {
	v, ok := m.entries[mfn]
	return v, ok
}

// Len returns the number of entries.
func (m *XenM2PMapper) Len() int { return len(m.entries) }

// Keys returns the machine frames in ascending order.
func (m *XenM2PMapper) Keys() []uint64 {
	keys := make([]uint64, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
