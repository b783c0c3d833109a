package testutil

import (
	"testing"

	"github.com/arthur-debert/memscope/pkg/config"
	"github.com/arthur-debert/memscope/pkg/filesystem"
	"github.com/arthur-debert/memscope/pkg/session"
	"github.com/stretchr/testify/require"
)

// Config returns the built-in defaults writing to formats, "test" when
// none are given.
func Config(formats ...string) *config.Config {
	if len(formats) == 0 {
		formats = []string{"test"}
	}
	return &config.Config{
		Output:    config.Output{Formats: formats, Unavailable: "-"},
		Resolver:  config.Resolver{MaxDistance: 0xffffffff},
		Traversal: config.Traversal{MaxNodes: 100000},
		Dump:      config.Dump{Dir: "/dumps"},
	}
}

// NewSession returns a session over Snapshot using cfg, with dumps going
// to an in-memory filesystem.
func NewSession(t *testing.T, cfg *config.Config) *session.Session {
	t.Helper()
	if cfg == nil {
		cfg = Config()
	}
	s, err := session.New(session.Options{
		Config: cfg,
		Image:  LoadImage(t),
		FS:     filesystem.NewMemory(),
	})
	require.NoError(t, err)
	return s
}
