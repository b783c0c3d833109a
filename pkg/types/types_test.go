package types_test

import (
	"testing"

	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestTypeChain(t *testing.T) {
	chain := types.ParseTypeChain("XenM2PMapper:dict:BaseObject")

	assert.Equal(t, types.TypeChain{"XenM2PMapper", "dict", "BaseObject"}, chain)
	assert.Equal(t, "XenM2PMapper", chain.MostSpecific())
	assert.Equal(t, "XenM2PMapper:dict:BaseObject", chain.String())
	assert.True(t, chain.Contains("dict"))
	assert.False(t, chain.Contains("kuid_t"))

	assert.Nil(t, types.ParseTypeChain(""))
	assert.Equal(t, "", types.TypeChain(nil).MostSpecific())
}

func TestTypeChainWithBase(t *testing.T) {
	tests := []struct {
		name  string
		chain types.TypeChain
		want  types.TypeChain
	}{
		{"appends base", types.TypeChain{"kuid_t", "Struct"}, types.TypeChain{"kuid_t", "Struct", "BaseObject"}},
		{"keeps base last", types.TypeChain{"BaseObject", "kuid_t"}, types.TypeChain{"kuid_t", "BaseObject"}},
		{"drops duplicates", types.TypeChain{"a", "b", "a", ""}, types.TypeChain{"a", "b", "BaseObject"}},
		{"empty", nil, types.TypeChain{"BaseObject"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chain.WithBase())
		})
	}
}

func TestTypeChainPrepend(t *testing.T) {
	chain := types.TypeChain{"int", "BaseObject"}

	assert.Equal(t, types.TypeChain{"kuid_t", "int", "BaseObject"}, chain.Prepend("kuid_t"))
	assert.Equal(t, types.TypeChain{"int", "BaseObject"}, chain.Prepend("int"))
	assert.Equal(t, chain, chain.Prepend(""))
}

func TestColumnKeyAndTitle(t *testing.T) {
	assert.Equal(t, "ppid", types.Column{Name: "PPID", CName: "ppid"}.Key())
	assert.Equal(t, "start_symbol", types.Column{Name: "Start Symbol"}.Key())
	assert.Equal(t, "_EPROCESS", types.Column{Type: "_EPROCESS"}.Key())

	assert.Equal(t, "PPID", types.Column{Name: "PPID", CName: "ppid"}.Title())
	assert.Equal(t, "ppid", types.Column{CName: "ppid"}.Title())
}

func TestCellIsImmutable(t *testing.T) {
	base := types.NewCell("1000")
	aligned := base.WithAlign(types.AlignRight).WithWidth(6)

	assert.Equal(t, types.AlignDefault, base.Align())
	assert.Equal(t, 0, base.Width())
	assert.Equal(t, types.AlignRight, aligned.Align())
	assert.Equal(t, 6, aligned.Width())
	assert.Equal(t, "1000", aligned.Text())
}
