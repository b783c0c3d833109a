package text_test

import (
	"bytes"
	"testing"

	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []types.Column{
	{Name: "PID", Width: 6, Align: types.AlignRight},
	{Name: "Name", Width: 10},
}

func row(pid, name string) []types.Cell {
	return []types.Cell{
		types.NewCell(pid).WithAlign(types.AlignRight),
		types.NewCell(name),
	}
}

func TestPlainTable(t *testing.T) {
	var buf bytes.Buffer
	r := text.New(&buf, text.ModePlain)
	assert.Equal(t, types.TextBackend, r.Name())

	require.NoError(t, r.BeginTable(columns))
	require.NoError(t, r.WriteCells(row("4", "System")))
	require.NoError(t, r.WriteCells(row("256", "smss.exe")))
	require.NoError(t, r.EndTable())

	expected := "" +
		"   PID Name      \n" +
		"------ ----------\n" +
		"     4 System    \n" +
		"   256 smss.exe  \n"
	assert.Equal(t, expected, buf.String())
}

func TestTestModeTrimsPadding(t *testing.T) {
	var buf bytes.Buffer
	r := text.New(&buf, text.ModeTest)
	assert.Equal(t, types.TestBackend, r.Name())

	require.NoError(t, r.BeginTable(columns))
	require.NoError(t, r.WriteCells(row("4", "System")))

	expected := "" +
		"   PID Name\n" +
		"------ ----------\n" +
		"     4 System\n"
	assert.Equal(t, expected, buf.String())
}

func TestWideMode(t *testing.T) {
	var buf bytes.Buffer
	r := text.New(&buf, text.ModeWide)
	assert.Equal(t, types.WideTextBackend, r.Name())

	require.NoError(t, r.BeginTable(columns))
	require.NoError(t, r.WriteCells(row("4", "System")))
	require.NoError(t, r.WriteCells(row("256", "smss.exe")))

	expected := "" +
		"PID : 4\n" +
		"Name: System\n" +
		"\n" +
		"PID : 256\n" +
		"Name: smss.exe\n"
	assert.Equal(t, expected, buf.String())
}

func TestFreeTextAndSection(t *testing.T) {
	var buf bytes.Buffer
	r := text.New(&buf, text.ModePlain)

	require.NoError(t, r.Section("smss.exe"))
	require.NoError(t, r.FreeText("smss.exe pid: 256"))
	require.NoError(t, r.Close())

	assert.Equal(t,
		"******************** smss.exe ********************\n"+
			"smss.exe pid: 256\n",
		buf.String())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, []int{3, 5}, text.ColumnWidths([]types.Column{{Name: "PID"}, {Name: "x", Width: 5}}))
	assert.Equal(t, "ab  ", text.JoinCells([]types.Cell{types.NewCell("ab").WithWidth(4)}, nil, false))
	assert.Equal(t, "**", text.SectionBanner("", 2))
	assert.Equal(t, "* averyverylonglabel *", text.SectionBanner("averyverylonglabel", 10))
}
