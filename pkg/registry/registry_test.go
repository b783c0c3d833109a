package registry

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestItem is a simple type for testing
type TestItem struct {
	ID    int
	Name  string
	Value string
}

func TestNew(t *testing.T) {
	reg := New[TestItem]()

	require.NotNil(t, reg)
	assert.Equal(t, 0, reg.Count())
}

func TestRegister(t *testing.T) {
	reg := New[TestItem]()

	t.Run("register valid item", func(t *testing.T) {
		err := reg.Register("item1", TestItem{ID: 1, Name: "test", Value: "value1"})
		require.NoError(t, err)
		assert.Equal(t, 1, reg.Count())
	})

	t.Run("register with empty name", func(t *testing.T) {
		err := reg.Register("", TestItem{ID: 2})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)
	})

	t.Run("register duplicate", func(t *testing.T) {
		err := reg.Register("item1", TestItem{ID: 3})
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists), "got %v", err)
	})
}

func TestGet(t *testing.T) {
	reg := New[TestItem]()
	MustRegister(reg, "pslist", TestItem{ID: 1, Name: "pslist"})

	item, err := reg.Get("pslist")
	require.NoError(t, err)
	assert.Equal(t, 1, item.ID)

	_, err = reg.Get("pslsit")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Equal(t, "pslist", errors.GetErrorDetails(err)["suggestion"])
}

func TestRemoveHasList(t *testing.T) {
	reg := New[TestItem]()
	for _, name := range []string{"threads", "dlllist", "pslist"} {
		MustRegister(reg, name, TestItem{Name: name})
	}

	assert.Equal(t, []string{"dlllist", "pslist", "threads"}, reg.List())
	assert.True(t, reg.Has("threads"))

	require.NoError(t, reg.Remove("threads"))
	assert.False(t, reg.Has("threads"))
	assert.True(t, errors.IsErrorCode(reg.Remove("threads"), errors.ErrNotFound))
}

func TestSuggest(t *testing.T) {
	reg := New[TestItem]()
	for _, name := range []string{"json", "text", "yaml", "sqlite"} {
		MustRegister(reg, name, TestItem{Name: name})
	}

	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"jsn", "json", true},
		{"txt", "text", true},
		{"sqlit", "sqlite", true},
		{"completely-unrelated", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := reg.Suggest(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMustHelpersPanic(t *testing.T) {
	reg := New[TestItem]()
	MustRegister(reg, "a", TestItem{})

	assert.Panics(t, func() { MustRegister(reg, "a", TestItem{}) })
	assert.Panics(t, func() { MustGet(reg, "missing") })
	assert.NotPanics(t, func() { MustGet(reg, "a") })
}

func TestConcurrentAccess(t *testing.T) {
	reg := New[TestItem]()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = reg.Register(fmt.Sprintf("item%02d", i), TestItem{ID: i})
			_ = reg.Has("item00")
			_ = reg.List()
		}(i)
	}
	wg.Wait()

	names := reg.List()
	assert.Len(t, names, 20)
	assert.True(t, sort.StringsAreSorted(names))
}
