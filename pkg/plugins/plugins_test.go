package plugins_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/image"
	"github.com/arthur-debert/memscope/pkg/plugins"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/arthur-debert/memscope/pkg/testutil"
	uijson "github.com/arthur-debert/memscope/pkg/ui/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, s *session.Session, name string, opts plugins.Options) string {
	t.Helper()
	p, err := plugins.Lookup(name)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, plugins.Execute(context.Background(), s, p, &buf, opts))
	return buf.String()
}

func rows(t *testing.T, output string) [][]any {
	t.Helper()
	stmts, err := uijson.ReadStatements(strings.NewReader(output))
	require.NoError(t, err)

	var out [][]any
	for _, st := range stmts {
		if st.Type == uijson.KindRow {
			out = append(out, st.Values)
		}
	}
	return out
}

// line returns the whitespace separated fields of the first output line
// containing marker.
func line(t *testing.T, output, marker string) []string {
	t.Helper()
	for _, l := range strings.Split(output, "\n") {
		if strings.Contains(l, marker) {
			return strings.Fields(l)
		}
	}
	t.Fatalf("no line containing %q in:\n%s", marker, output)
	return nil
}

func isNone(v any) bool {
	m, ok := v.(map[string]any)
	return ok && m["mro"] == "NoneObject:BaseObject"
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"pslist", "dlllist", "threads", "memmap", "memdump"} {
		p, err := plugins.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
		assert.NotEmpty(t, p.Summary())

		desc, err := plugins.Description(name)
		require.NoError(t, err)
		assert.Contains(t, desc, "# "+name)
	}

	_, err := plugins.Lookup("pslst")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Equal(t, "pslist", errors.GetErrorDetails(err)["suggestion"])

	_, err = plugins.Description("nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestPslistText(t *testing.T) {
	s := testutil.NewSession(t, nil)
	out := run(t, s, "pslist", plugins.Options{})

	assert.Contains(t, out, "_EPROCESS")
	assert.Equal(t,
		[]string{"0xfffffa8001b45060", "lsass.exe", "512", "400", "1", "-", "0", "False", "2012-05-08", "08:41:30Z", "-"},
		line(t, out, "lsass.exe"))
	assert.Equal(t,
		[]string{"0xfffffa8001a3b060", "smss.exe", "256", "4", "2", "29", "-", "False", "2012-05-08", "08:41:20Z", "-"},
		line(t, out, "smss.exe"))
}

func TestPslistJSON(t *testing.T) {
	s := testutil.NewSession(t, testutil.Config("json"))
	got := rows(t, run(t, s, "pslist", plugins.Options{}))
	require.Len(t, got, 3)

	system := got[0]
	proc, ok := system[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "System", proc["name"])
	assert.Equal(t, json.Number("4"), proc["pid"])
	assert.Equal(t, json.Number("502"), system[3])

	// Unreadable values stay typed in structured output.
	assert.True(t, isNone(got[1][4]), "smss session id")
	assert.True(t, isNone(got[2][3]), "lsass handle count")
	assert.Equal(t, false, got[2][5])
}

func TestFilter(t *testing.T) {
	s := testutil.NewSession(t, testutil.Config("json"))

	tests := []struct {
		name    string
		pids    []uint64
		pattern string
		want    int
	}{
		{"all", nil, "", 3},
		{"by pid", []uint64{512}, "", 1},
		{"several pids", []uint64{4, 256, 9999}, "", 2},
		{"by name", nil, "(?i)^s", 2},
		{"pid and name", []uint64{4}, "smss", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := plugins.NewFilter(tt.pids, tt.pattern)
			require.NoError(t, err)
			assert.Len(t, rows(t, run(t, s, "pslist", plugins.Options{Filter: filter})), tt.want)
		})
	}

	_, err := plugins.NewFilter(nil, "[")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestDlllist(t *testing.T) {
	s := testutil.NewSession(t, nil)
	out := run(t, s, "dlllist", plugins.Options{})

	assert.Equal(t, 2, strings.Count(out, "Unable to read PEB for task."))
	assert.Contains(t, out, `Command line : \SystemRoot\System32\smss.exe`)
	assert.Contains(t, out, "Service Pack 1")
	assert.Less(t, strings.Index(out, "Command line"), strings.Index(out, "Service Pack 1"))
	assert.Contains(t, out, "smss.exe pid:    256")
	assert.NotContains(t, out, "Wow64")

	assert.Equal(t,
		[]string{"0x000048000000", "0x20000", "StaticDependency", `\SystemRoot\System32\smss.exe`},
		line(t, out, "StaticDependency"))
	assert.Equal(t,
		[]string{"0x000077c70000", "0x1a9000", "65535", `C:\Windows\SYSTEM32\ntdll.dll`},
		line(t, out, "ntdll.dll"))
}

func TestThreads(t *testing.T) {
	s := testutil.NewSession(t, testutil.Config("json"))
	got := rows(t, run(t, s, "threads", plugins.Options{}))
	require.Len(t, got, 4)

	symbols := make([][2]any, len(got))
	for i, row := range got {
		symbols[i] = [2]any{row[4], row[7]}
	}
	assert.Equal(t, [][2]any{
		{"nt!KiStartSystemThread+0x10", "nt!KiStartSystemThread+0x10"},
		{"ntdll!RtlUserThreadStart", "smss+0x1000"},
		{"", ""},
		{"ntdll!RtlUserThreadStart", ""},
	}, symbols)

	assert.Equal(t, "smss.exe", got[2][5])
	assert.True(t, isNone(got[2][6]), "unreadable win32 start")

	// The process context is restored once the plugin is done.
	assert.Equal(t, 0, s.Context.Depth())
}

func TestThreadsText(t *testing.T) {
	s := testutil.NewSession(t, nil)
	out := run(t, s, "threads", plugins.Options{})

	assert.Equal(t,
		[]string{"0xfffffa8001a3d060", "TID", "264", "256", "264", "0x000000000010", "smss.exe", "-"},
		line(t, out, "TID 264"))
}

func TestMemmap(t *testing.T) {
	s := testutil.NewSession(t, testutil.Config("json"))
	filter, err := plugins.NewFilter([]uint64{256}, "")
	require.NoError(t, err)

	got := rows(t, run(t, s, "memmap", plugins.Options{Filter: filter}))
	require.Len(t, got, 3)
	assert.Equal(t, json.Number("4096"), got[1][3])

	got = rows(t, run(t, s, "memmap", plugins.Options{Filter: filter, Coalesce: true}))
	require.Len(t, got, 2)
	assert.Equal(t, []any{json.Number("1207959552"), json.Number("436207616"), json.Number("4100"), json.Number("0")}, got[0])
	assert.Equal(t, json.Number("4100"), got[1][3])
}

func TestMemmapNoRanges(t *testing.T) {
	s := testutil.NewSession(t, nil)
	filter, err := plugins.NewFilter([]uint64{4}, "")
	require.NoError(t, err)

	out := run(t, s, "memmap", plugins.Options{Filter: filter})
	assert.Contains(t, out, "System pid:      4")
	assert.Contains(t, out, "No memory ranges mapped.")
}

func TestCoalesce(t *testing.T) {
	ranges := []image.Range{
		{Virtual: 0x1000, Physical: 0x8000, Size: 0x2, Data: "01"},
		{Virtual: 0x1002, Physical: 0x8002, Size: 0x2, Data: "0203"},
		{Virtual: 0x1004, Physical: 0x9000, Size: 0x1},
		{Virtual: 0x2000, Physical: 0x9001, Size: 0x1},
	}

	got := plugins.Coalesce(ranges)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(4), got[0].Size)

	data, err := got[0].Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00, 0x02, 0x03}, data)

	// The input is left untouched.
	assert.Equal(t, uint64(2), ranges[0].Size)
}

func TestMemdump(t *testing.T) {
	s := testutil.NewSession(t, nil)
	filter, err := plugins.NewFilter([]uint64{256}, "")
	require.NoError(t, err)

	out := run(t, s, "memdump", plugins.Options{Filter: filter, DumpDir: "/out"})
	assert.Contains(t, out, "Writing smss.exe to /out/smss.exe_256.dmp")
	assert.Contains(t, out, "DumpFileOffset")

	data, err := s.FS.ReadFile("/out/smss.exe_256.dmp")
	require.NoError(t, err)
	require.Len(t, data, 0x1000+4+2)
	assert.Equal(t, []byte{0x4d, 0x5a, 0x90, 0x00}, data[:4])
	assert.Equal(t, byte(0xc3), data[0x1000])
}

func TestMemdumpDefaultDir(t *testing.T) {
	s := testutil.NewSession(t, nil)
	run(t, s, "memdump", plugins.Options{})

	for _, name := range []string{"smss.exe_256.dmp", "lsass.exe_512.dmp"} {
		_, err := s.FS.Stat("/dumps/" + name)
		assert.NoError(t, err, name)
	}
	_, err := s.FS.Stat("/dumps/System_4.dmp")
	assert.Error(t, err)
}

func TestExecuteCancelled(t *testing.T) {
	s := testutil.NewSession(t, nil)
	p, err := plugins.Lookup("dlllist")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = plugins.Execute(ctx, s, p, &bytes.Buffer{}, plugins.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
