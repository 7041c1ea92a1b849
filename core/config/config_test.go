package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "worlds", cfg.Storage.Bucket)
	assert.Equal(t, "saves", cfg.Storage.Prefix)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "default", cfg.Sync.WorldID)
	assert.Equal(t, 3, cfg.Sync.MaxPublishAttempts)
	assert.True(t, cfg.Sync.PurgeQuicksaves)
	assert.True(t, cfg.Sync.RefreshAfterUpload)
	assert.Equal(t, "shared-save", cfg.Notify.ChannelPrefix)
	assert.Empty(t, cfg.Notify.RedisAddr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SYNC_WORLD_ID", "kerbin")
	t.Setenv("SYNC_PURGE_QUICKSAVES", "false")
	t.Setenv("STORAGE_BUCKET", "shared")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "kerbin", cfg.Sync.WorldID)
	assert.False(t, cfg.Sync.PurgeQuicksaves)
	assert.Equal(t, "shared", cfg.Storage.Bucket)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := "sync:\n  author: ana\n  max_publish_attempts: 5\nnotify:\n  redis_addr: localhost:6379\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SYNC_MAX_PUBLISH_ATTEMPTS", "7")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "ana", cfg.Sync.Author)
	assert.Equal(t, 7, cfg.Sync.MaxPublishAttempts)
	assert.Equal(t, "localhost:6379", cfg.Notify.RedisAddr)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SYNC_AUTHOR=bo\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SYNC_AUTHOR") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "bo", cfg.Sync.Author)
}
