package ui_test

import (
	"testing"

	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumnSpec(t *testing.T) {
	tests := []struct {
		spec string
		want types.Column
	}{
		{"", types.Column{Name: "N", CName: "n"}},
		{"[addrpad]", types.Column{Name: "N", CName: "n", Format: types.FormatAddressPad, Width: 14, Align: types.AlignRight}},
		{"[addr]", types.Column{Name: "N", CName: "n", Format: types.FormatAddress, Align: types.AlignRight}},
		{">6", types.Column{Name: "N", CName: "n", Width: 6, Align: types.AlignRight}},
		{"<30", types.Column{Name: "N", CName: "n", Width: 30, Align: types.AlignLeft}},
		{"^8", types.Column{Name: "N", CName: "n", Width: 8, Align: types.AlignCenter}},
		{"30", types.Column{Name: "N", CName: "n", Width: 30}},
		{">", types.Column{Name: "N", CName: "n", Align: types.AlignRight}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ui.ParseColumnSpec("N", "n", tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"wide", ">-1", "[hex]"} {
		_, err := ui.ParseColumnSpec("N", "n", bad)
		assert.Error(t, err, bad)
	}

	assert.Panics(t, func() { ui.MustColumn("N", "n", "bogus") })
}
