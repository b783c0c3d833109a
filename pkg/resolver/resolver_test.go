package resolver_test

import (
	"testing"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/processctx"
	"github.com/arthur-debert/memscope/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type proc uint64

func (p proc) ProcessID() uint64 { return uint64(p) }
func (p proc) ImageName() string { return "explorer.exe" }

type source struct {
	kernel  []resolver.Module
	process map[uint64][]resolver.Module
	calls   int
}

func (s *source) KernelModules() []resolver.Module { return s.kernel }

func (s *source) ProcessModules(pid uint64) []resolver.Module {
	s.calls++
	return s.process[pid]
}

func newSource() *source {
	return &source{
		kernel: []resolver.Module{
			{
				Name: "nt", Base: 0xf800_0000_0000, Size: 0x10_0000,
				Exports: []resolver.Export{
					{Name: "PspSystemThreadStartup", Address: 0xf800_0000_2000},
					{Name: "KiStartSystemThread", Address: 0xf800_0000_1000},
				},
			},
		},
		process: map[uint64][]resolver.Module{
			1800: {
				{
					Name: "ntdll", Base: 0x7ff0_0000, Size: 0x1_0000,
					Exports: []resolver.Export{
						{Name: "RtlUserThreadStart", Address: 0x7ff0_0100},
					},
				},
				{Name: "stripped", Base: 0x6000_0000, Size: 0x1000},
			},
		},
	}
}

func TestLookup(t *testing.T) {
	src := newSource()
	stack := processctx.NewStack()
	r := resolver.New(src, stack)

	tests := []struct {
		name        string
		pid         uint64
		addr        uint64
		maxDistance uint64
		want        string
		miss        bool
	}{
		{"exact kernel symbol", 0, 0xf800_0000_1000, 0, "nt!KiStartSystemThread", false},
		{"nearest preceding", 0, 0xf800_0000_2010, 0x100, "nt!PspSystemThreadStartup+0x10", false},
		{"too far", 0, 0xf800_0000_2010, 0x8, "", true},
		{"below every symbol", 0, 0x10, 0xffffffff, "", true},
		{"process module first", 1800, 0x7ff0_0104, 0xffffffff, "ntdll!RtlUserThreadStart+0x4", false},
		{"module without exports", 1800, 0x6000_0020, 0xffffffff, "stripped+0x20", false},
		{"process falls back to kernel", 1800, 0xf800_0000_1008, 0xffffffff, "nt!KiStartSystemThread+0x8", false},
		{"kernel context ignores process modules", 0, 0x7ff0_0104, 0x10, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p processctx.Process
			if tt.pid != 0 {
				p = proc(tt.pid)
			}

			err := stack.Do(p, func(*processctx.Scope) error {
				sym, err := r.Lookup(tt.addr, tt.maxDistance)
				if tt.miss {
					assert.True(t, errors.IsErrorCode(err, errors.ErrLookupMiss))
					assert.True(t, errors.IsRecoverable(err))
					assert.Empty(t, r.FormatAddress(tt.addr, tt.maxDistance))
					return nil
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, sym.String())
				assert.Equal(t, tt.want, r.FormatAddress(tt.addr, tt.maxDistance))
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestProcessModulesAreCached(t *testing.T) {
	src := newSource()
	stack := processctx.NewStack()
	r := resolver.New(src, stack)

	scope := stack.Enter(proc(1800))
	defer scope.Release()

	for i := 0; i < 3; i++ {
		r.FormatAddress(0x7ff0_0100, 0)
	}
	assert.Equal(t, 1, src.calls)
}

func TestModuleContains(t *testing.T) {
	m := resolver.Module{Base: 0x1000, Size: 0x100}
	assert.True(t, m.Contains(0x1000))
	assert.True(t, m.Contains(0x10ff))
	assert.False(t, m.Contains(0x1100))
	assert.False(t, m.Contains(0xfff))
}
