package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 100, cfg.ChatLogMax)
	assert.Equal(t, 1920.0, cfg.WorldWidth)
	assert.Equal(t, 1200.0, cfg.WorldHeight)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "addr: \":9090\"\nchat_log_max: 50\nworld_width: 800\nworld_height: 600\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 50, cfg.ChatLogMax)
	assert.Equal(t, 800.0, cfg.WorldWidth)
	// 未覆盖字段保持缺省
	assert.Equal(t, "app.log", cfg.LogFile)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chat_log_max: -1\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
