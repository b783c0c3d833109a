package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "state", "memscope.log")
			t.Setenv("MEMSCOPE_LOG_FILE", logPath)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created at %s", logPath)
		})
	}
}

func TestLogFilePath(t *testing.T) {
	t.Run("explicit override", func(t *testing.T) {
		t.Setenv("MEMSCOPE_LOG_FILE", "/custom/memscope.log")
		assert.Equal(t, "/custom/memscope.log", LogFilePath())
	})

	t.Run("xdg state home", func(t *testing.T) {
		t.Setenv("MEMSCOPE_LOG_FILE", "")
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		xdg.Reload()
		t.Cleanup(xdg.Reload)

		got := LogFilePath()
		assert.True(t, strings.HasSuffix(filepath.ToSlash(got), "/custom/state/memscope/memscope.log"), got)
	})
}

func TestComponentLoggers(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = zerolog.New(&buf)

	tests := []struct {
		name   string
		logger zerolog.Logger
		want   []string
	}{
		{"component", GetLogger("registry.Renderers"), []string{`"component":"registry.Renderers"`}},
		{"plugin", PluginLogger("pslist", "/images/win7.yaml"), []string{`"component":"plugin.pslist"`, `"image":"/images/win7.yaml"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logger.Info().Msg("hello")
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
