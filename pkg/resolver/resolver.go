// Package resolver maps addresses to the nearest preceding symbol, looking
// in the active process's modules before the kernel's.
package resolver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/processctx"
	"github.com/rs/zerolog"
)

// Export is a named address inside a module.
type Export struct {
	Name    string `yaml:"name"`
	Address uint64 `yaml:"address"`
}

// Module is a loaded image region with its exported symbols.
type Module struct {
	Name    string   `yaml:"name"`
	Base    uint64   `yaml:"base"`
	Size    uint64   `yaml:"size"`
	Exports []Export `yaml:"exports"`
}

// Contains reports whether addr falls inside the module.
func (m Module) Contains(addr uint64) bool {
	return addr >= m.Base && addr-m.Base < m.Size
}

// Source supplies the modules to search.
type Source interface {
	KernelModules() []Module
	ProcessModules(pid uint64) []Module
}

// Symbol is the result of a successful lookup.
type Symbol struct {
	Module  string
	Name    string
	Address uint64
	// Distance is how far past Address the looked up address lies.
	Distance uint64
}

// String formats the symbol as module!name+0xoff. A symbol without a name
// is reported relative to its module base.
func (s Symbol) String() string {
	name := s.Module
	if s.Name != "" {
		name = s.Module + "!" + s.Name
	}
	if s.Distance == 0 {
		return name
	}
	return fmt.Sprintf("%s+%#x", name, s.Distance)
}

type entry struct {
	module  string
	name    string
	address uint64
}

type index struct {
	entries []entry
	modules []Module
}

func newIndex(modules []Module) *index {
	idx := &index{modules: append([]Module(nil), modules...)}
	for _, m := range modules {
		for _, e := range m.Exports {
			idx.entries = append(idx.entries, entry{module: m.Name, name: e.Name, address: e.Address})
		}
	}
	sort.SliceStable(idx.entries, func(i, k int) bool {
		return idx.entries[i].address < idx.entries[k].address
	})
	return idx
}

func (idx *index) lookup(addr, maxDistance uint64) (Symbol, bool) {
	// First export strictly above addr; the one before it is the nearest
	// preceding symbol.
	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].address > addr
	})
	if i > 0 {
		e := idx.entries[i-1]
		if d := addr - e.address; d <= maxDistance {
			return Symbol{Module: e.module, Name: e.name, Address: e.address, Distance: d}, true
		}
	}

	for _, m := range idx.modules {
		if m.Contains(addr) && addr-m.Base <= maxDistance {
			return Symbol{Module: m.Name, Address: m.Base, Distance: addr - m.Base}, true
		}
	}
	return Symbol{}, false
}

// AddressResolver resolves addresses against the process context that is
// active at lookup time.
type AddressResolver struct {
	source Source
	stack  *processctx.Stack
	logger zerolog.Logger

	mu      sync.Mutex
	kernel  *index
	process map[uint64]*index
}

// New creates a resolver reading modules from source. Lookups use the
// process currently active on stack.
func New(source Source, stack *processctx.Stack) *AddressResolver {
	return &AddressResolver{
		source:  source,
		stack:   stack,
		logger:  logging.GetLogger("resolver"),
		process: make(map[uint64]*index),
	}
}

// Lookup returns the nearest symbol at or below addr that is at most
// maxDistance bytes away. A miss is an ErrLookupMiss error; callers treat it
// as a per-value condition.
func (r *AddressResolver) Lookup(addr, maxDistance uint64) (Symbol, error) {
	if p, ok := r.stack.Current(); ok {
		if sym, found := r.processIndex(p.ProcessID()).lookup(addr, maxDistance); found {
			return sym, nil
		}
	}
	if sym, found := r.kernelIndex().lookup(addr, maxDistance); found {
		return sym, nil
	}

	r.logger.Trace().
		Str("address", fmt.Sprintf("%#x", addr)).
		Msg("No symbol for address")
	return Symbol{}, errors.Newf(errors.ErrLookupMiss, "no symbol within %#x of %#x", maxDistance, addr).
		WithDetail("address", addr)
}

// FormatAddress returns the symbol name for addr, or "" when there is none.
func (r *AddressResolver) FormatAddress(addr, maxDistance uint64) string {
	sym, err := r.Lookup(addr, maxDistance)
	if err != nil {
		return ""
	}
	return sym.String()
}

func (r *AddressResolver) kernelIndex() *index {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.kernel == nil {
		r.kernel = newIndex(r.source.KernelModules())
	}
	return r.kernel
}

func (r *AddressResolver) processIndex(pid uint64) *index {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.process[pid]
	if !ok {
		idx = newIndex(r.source.ProcessModules(pid))
		r.process[pid] = idx
	}
	return idx
}
