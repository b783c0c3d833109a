package ui_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/arthur-debert/memscope/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		format ui.Format
		name   string
		family types.Family
	}{
		{ui.FormatTerminal, types.TerminalBackend, types.FamilyText},
		{ui.FormatText, types.TextBackend, types.FamilyText},
		{ui.FormatTest, types.TestBackend, types.FamilyText},
		{ui.FormatWide, types.WideTextBackend, types.FamilyText},
		{ui.FormatJSON, types.JSONBackend, types.FamilyStructured},
		{ui.FormatExport, types.DataExportBackend, types.FamilyStructured},
		{ui.FormatYAML, types.YAMLBackend, types.FamilyStructured},
		{ui.FormatXML, types.XMLBackend, types.FamilyStructured},
		// Auto on a non-file writer falls back to the terminal renderer.
		{ui.FormatAuto, types.TerminalBackend, types.FamilyText},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			b, err := ui.NewBackend(tt.format, ui.BackendConfig{Writer: &bytes.Buffer{}})
			require.NoError(t, err)
			assert.Equal(t, tt.name, b.Name())
			assert.Equal(t, tt.family, ui.FamilyOf(b))
			require.NoError(t, b.Close())
		})
	}
}

func TestNewBackendSQLite(t *testing.T) {
	_, err := ui.NewBackend(ui.FormatSQLite, ui.BackendConfig{Writer: &bytes.Buffer{}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	b, err := ui.NewBackend(ui.FormatSQLite, ui.BackendConfig{Path: filepath.Join(t.TempDir(), "out.db")})
	require.NoError(t, err)
	assert.Equal(t, types.SQLiteBackend, b.Name())
	require.NoError(t, b.Close())
}

func TestNewBackends(t *testing.T) {
	backends, err := ui.NewBackends([]ui.Format{ui.FormatText, ui.FormatJSON}, ui.BackendConfig{Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	require.Len(t, backends, 2)

	_, err = ui.NewBackends([]ui.Format{ui.FormatText, ui.FormatSQLite}, ui.BackendConfig{Writer: &bytes.Buffer{}})
	assert.Error(t, err)

	_, err = ui.NewBackend(ui.Format(999), ui.BackendConfig{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
