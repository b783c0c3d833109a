package processctx_test

import (
	"testing"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/processctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type proc struct {
	pid  uint64
	name string
}

func (p proc) ProcessID() uint64 { return p.pid }
func (p proc) ImageName() string { return p.name }

var (
	lsass = proc{pid: 512, name: "lsass.exe"}
	smss  = proc{pid: 256, name: "smss.exe"}
	csrss = proc{pid: 312, name: "csrss.exe"}
)

func current(t *testing.T, s *processctx.Stack) processctx.Process {
	t.Helper()
	p, ok := s.Current()
	if !ok {
		return nil
	}
	return p
}

func TestNoScopeMeansKernel(t *testing.T) {
	s := processctx.NewStack()
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Depth())
}

func TestDoRestoresOnSuccessAndError(t *testing.T) {
	s := processctx.NewStack()
	outer := s.Enter(lsass)
	defer outer.Release()

	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure", errors.New(errors.ErrInternal, "plugin failed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := current(t, s)

			err := s.Do(smss, func(scope *processctx.Scope) error {
				assert.Equal(t, smss, current(t, s))
				assert.Equal(t, smss, scope.Process())
				return tt.err
			})
			assert.Equal(t, tt.err, err)

			assert.Equal(t, before, current(t, s))
			assert.Equal(t, 1, s.Depth())
		})
	}
}

func TestDoRestoresOnPanic(t *testing.T) {
	s := processctx.NewStack()

	assert.Panics(t, func() {
		_ = s.Do(smss, func(*processctx.Scope) error {
			panic("corrupt list")
		})
	})

	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Depth())
}

func TestNestedScopes(t *testing.T) {
	s := processctx.NewStack()

	a := s.Enter(lsass)
	b := s.Enter(smss)
	kernel := s.Enter(nil)

	_, ok := s.Current()
	assert.False(t, ok, "nil process enters the kernel context")

	kernel.Release()
	assert.Equal(t, smss, current(t, s))
	b.Release()
	assert.Equal(t, lsass, current(t, s))
	a.Release()
	assert.Nil(t, current(t, s))
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := processctx.NewStack()
	a := s.Enter(lsass)
	b := s.Enter(smss)

	b.Release()
	b.Release()
	assert.Equal(t, lsass, current(t, s))
	assert.True(t, b.Released())
	assert.False(t, a.Released())
}

func TestOutOfOrderReleaseUnwinds(t *testing.T) {
	s := processctx.NewStack()
	a := s.Enter(lsass)
	b := s.Enter(smss)
	c := s.Enter(csrss)

	b.Release()
	assert.Equal(t, lsass, current(t, s))
	assert.True(t, c.Released())
	assert.Equal(t, 1, s.Depth())

	// Releasing an already unwound scope changes nothing.
	c.Release()
	assert.Equal(t, lsass, current(t, s))

	a.Release()
	assert.Equal(t, 0, s.Depth())
}

func TestSwitch(t *testing.T) {
	s := processctx.NewStack()
	outer := s.Enter(lsass)

	err := s.Do(nil, func(scope *processctx.Scope) error {
		for _, p := range []proc{smss, csrss} {
			require.NoError(t, scope.Switch(p))
			assert.Equal(t, p, current(t, s))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, lsass, current(t, s))

	outer.Release()
	err = outer.Switch(smss)
	assert.Error(t, err)
	assert.Nil(t, current(t, s))
}
