package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default().ServerAddr, cfg.ServerAddr)
	require.Equal(t, Default().LogLevel, cfg.LogLevel)
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_addr: ws://example:9090/channel\naerodromes:\n  - EGLL\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ws://example:9090/channel", cfg.ServerAddr)
	require.Equal(t, Default().LogLevel, cfg.LogLevel, "omitted field must keep its default")
	require.Equal(t, []string{"EGLL"}, cfg.Aerodromes)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_addr: ws://example:9090/channel\n"), 0o644))

	t.Setenv("BARS_SERVER_ADDR", "ws://override:1234/channel")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ws://override:1234/channel", cfg.ServerAddr)
}
