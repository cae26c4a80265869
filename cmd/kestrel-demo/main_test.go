package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/kestrel/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var got *config.Config
	cmd := newRootCmd(func(cfg *config.Config) error {
		got = cfg
		return nil
	})
	// A nil slice makes cobra fall back to os.Args.
	cmd.SetArgs(append([]string{}, args...))
	return got, cmd.Execute()
}

func TestRootCmdDefaults(t *testing.T) {
	cfg, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestRootCmdFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug_ui: true\ndemo:\n  sprites: 8\n"), 0o600))

	cfg, err := execute(t, "--config", path, "--sprites", "3")
	require.NoError(t, err)
	assert.True(t, cfg.DebugUI)
	assert.Equal(t, 3, cfg.Demo.Sprites)

	cfg, err = execute(t, "-c", path, "--debug-ui=false")
	require.NoError(t, err)
	assert.False(t, cfg.DebugUI)
	assert.Equal(t, 8, cfg.Demo.Sprites)
}

func TestRootCmdRejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, "--sprites=-1")
	assert.Error(t, err)

	_, err = execute(t, "--log-level", "loud")
	assert.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "extra")
	assert.Error(t, err)
}
