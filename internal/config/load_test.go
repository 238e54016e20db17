package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Persist.CheckpointInterval)
	assert.Equal(t, int64(5), cfg.Shop.LowStockThreshold)
	assert.Equal(t, 5, cfg.Shop.TopN)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9090
store:
  backend: redis
persist:
  checkpoint_interval: 30s
shop:
  low_stock_threshold: 2
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("ADMIN_ID", "424242")
	t.Setenv("SHOP_REDIS_ADDR", "redis:6380")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Persist.CheckpointInterval)
	assert.Equal(t, int64(2), cfg.Shop.LowStockThreshold)
	assert.Equal(t, "424242", cfg.Shop.AdminID)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Port: 8080}.Addr())
	assert.Equal(t, "127.0.0.1:1", ServerConfig{Host: "127.0.0.1", Port: 1}.Addr())
}
