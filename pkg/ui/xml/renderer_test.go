package xml_test

import (
	"bytes"
	"testing"

	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui/xml"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLayout(t *testing.T) {
	var buf bytes.Buffer
	r := xml.New(&buf)
	assert.Equal(t, types.XMLBackend, r.Name())

	cols := []types.Column{{Name: "PID", CName: "pid"}, {Name: "Map", CName: "m2p", Type: "XenM2PMapper"}}
	composite := map[string]any{
		"m2p_map": map[string]any{"5": uint64(10), "7": uint64(14)},
		"mro":     "XenM2PMapper:BaseObject",
	}

	require.NoError(t, r.Section("xen"))
	require.NoError(t, r.FreeText("xen pid: 0 <dom0>"))
	require.NoError(t, r.BeginTable(cols))
	require.NoError(t, r.WriteValues([]types.SafeValue{uint64(0), composite}))
	require.NoError(t, r.WriteValues([]types.SafeValue{int64(-1), []any{true, 1.5, nil}}))
	require.NoError(t, r.EndTable())
	require.NoError(t, r.Close())

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	section := doc.FindElement("/memscope/section")
	require.NotNil(t, section)
	assert.Equal(t, "xen", section.SelectAttrValue("label", ""))
	assert.Equal(t, "xen pid: 0 <dom0>", section.FindElement("text").Text())

	columns := section.FindElements("table/column")
	require.Len(t, columns, 2)
	assert.Equal(t, "XenM2PMapper", columns[1].SelectAttrValue("type", ""))

	rows := section.FindElements("table/row")
	require.Len(t, rows, 2)

	values := rows[0].SelectElements("value")
	require.Len(t, values, 2)
	assert.Equal(t, "m2p", values[1].SelectAttrValue("column", ""))
	got, err := xml.ReadValue(values[1])
	require.NoError(t, err)
	assert.Equal(t, composite, got)

	got, err = xml.ReadValue(rows[1].SelectElements("value")[1])
	require.NoError(t, err)
	assert.Equal(t, []any{true, 1.5, nil}, got)

	got, err = xml.ReadValue(rows[1].SelectElements("value")[0])
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)
}

func TestUnsupportedValue(t *testing.T) {
	r := xml.New(&bytes.Buffer{})
	require.NoError(t, r.BeginTable([]types.Column{{Name: "x"}}))
	assert.Error(t, r.WriteValues([]types.SafeValue{struct{}{}}))
}
