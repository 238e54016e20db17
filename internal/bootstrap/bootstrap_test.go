package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/shopbot/internal/config"
	"github.com/example/shopbot/internal/datamodels/snapshot"
	"github.com/example/shopbot/internal/persist"
	"github.com/example/shopbot/internal/seed"
)

func TestFileGatewayRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Dir = t.TempDir()

	gw, closer, err := OpenGateway(cfg, BackendFile)
	require.NoError(t, err)
	defer closer()

	stores := NewStores()
	seed.Apply(stores.Catalog, false)
	p := persist.New(gw, zap.NewNop(), persist.Options{})
	stores.Register(p)
	require.NoError(t, p.Checkpoint(context.Background()))

	for _, name := range snapshot.Names {
		_, err := gw.Load(context.Background(), name)
		assert.NoError(t, err, name)
	}

	reloaded := NewStores()
	p2 := persist.New(gw, zap.NewNop(), persist.Options{})
	reloaded.Register(p2)
	require.NoError(t, p2.LoadAll(context.Background()))
	assert.Len(t, reloaded.Catalog.ListProducts(), 5)
	assert.Len(t, reloaded.Catalog.ListCategories(), 4)
	assert.Equal(t, "prod_001", reloaded.Catalog.ListProducts()[0].ID)
}

func TestUnknownBackends(t *testing.T) {
	cfg := config.DefaultConfig()

	_, _, err := OpenGateway(cfg, "s3")
	assert.Error(t, err)

	cfg.Notify.Backend = "sms"
	_, _, err = OpenNotifier(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg.Notify.Backend = BackendLog
	n, closer, err := OpenNotifier(cfg, zap.NewNop())
	require.NoError(t, err)
	defer closer()
	assert.NoError(t, n.NotifyUser(context.Background(), "1", "hi"))
}
