package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte("server:\n  port: 4100\nplayback:\n  default_room: lobby\n"), 0o600))
	t.Setenv("PLAYBACK_DEFAULT_ROOM", "cinema")

	v, err := Load(dir, "test")
	require.NoError(t, err)
	require.Equal(t, 4100, v.GetInt("server.port"))
	require.Equal(t, "cinema", v.GetString("playback.default_room"))
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	v, err := Load(t.TempDir(), "absent")
	require.NoError(t, err)
	require.False(t, v.IsSet("server.port"))
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("server: [port"), 0o600))

	_, err := Load(dir, "broken")
	require.Error(t, err)
}
