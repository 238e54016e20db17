package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/shopbot/internal/datamodels/snapshot"
)

type fakeGateway struct {
	mu       sync.Mutex
	data     map[string][]byte
	loadErr  map[string]error
	failures int // Save 前 failures 次返回错误
	saves    int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{data: map[string][]byte{}, loadErr: map[string]error{}}
}

func (g *fakeGateway) Load(_ context.Context, name string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadErr[name]; err != nil {
		return nil, err
	}
	d, ok := g.data[name]
	if !ok {
		return nil, snapshot.ErrNotFound
	}
	return d, nil
}

func (g *fakeGateway) Save(_ context.Context, name string, payload []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves++
	if g.failures > 0 {
		g.failures--
		return errors.New("disk full")
	}
	g.data[name] = append([]byte(nil), payload...)
	return nil
}

func (g *fakeGateway) get(name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return string(g.data[name])
}

type fakeStore struct {
	mu    sync.Mutex
	value string
}

func (s *fakeStore) MarshalSnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []byte(s.value), nil
}

func (s *fakeStore) UnmarshalSnapshot(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if string(data) == "corrupt" {
		return errors.New("bad json")
	}
	s.value = string(data)
	return nil
}

func (s *fakeStore) set(v string) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
}

func (s *fakeStore) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func TestLoadAllFallsBackToEmpty(t *testing.T) {
	gw := newFakeGateway()
	gw.data["products"] = []byte(`{"p":1}`)
	gw.data["users"] = []byte("corrupt")
	gw.loadErr["orders"] = errors.New("permission denied")

	products, users, orders, stats := &fakeStore{}, &fakeStore{value: "stale"}, &fakeStore{}, &fakeStore{}
	p := New(gw, zap.NewNop(), Options{})
	p.Register("products", products)
	p.Register("users", users)
	p.Register("orders", orders)
	p.Register("stats", stats)

	require.NoError(t, p.LoadAll(context.Background()))
	assert.Equal(t, `{"p":1}`, products.get())
	assert.Equal(t, "", users.get())
	assert.Equal(t, "", orders.get())
	assert.Equal(t, "", stats.get())
}

func TestFlushSavesOnlyDirty(t *testing.T) {
	gw := newFakeGateway()
	a, b := &fakeStore{value: "a1"}, &fakeStore{value: "b1"}
	p := New(gw, zap.NewNop(), Options{})
	p.Register("a", a)
	p.Register("b", b)

	p.MarkDirty("b", "unknown")
	assert.Equal(t, []string{"b"}, p.Dirty())

	require.NoError(t, p.Flush(context.Background()))
	assert.Equal(t, "b1", gw.get("b"))
	assert.Equal(t, "", gw.get("a"))
	assert.Empty(t, p.Dirty())
}

func TestSaveRetriesWithBackoff(t *testing.T) {
	gw := newFakeGateway()
	gw.failures = 2
	s := &fakeStore{value: "v"}
	p := New(gw, zap.NewNop(), Options{MaxRetries: 3, RetryBackoff: time.Millisecond})
	p.Register("orders", s)

	p.MarkDirty("orders")
	require.NoError(t, p.Flush(context.Background()))
	assert.Equal(t, "v", gw.get("orders"))
	assert.Equal(t, 3, gw.saves)
}

func TestSaveFailureKeepsStoreDirty(t *testing.T) {
	gw := newFakeGateway()
	gw.failures = 10
	var failed []string
	p := New(gw, zap.NewNop(), Options{
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
		OnSaveError:  func(name string, _ error) { failed = append(failed, name) },
	})
	s := &fakeStore{value: "v"}
	p.Register("users", s)

	p.MarkDirty("users")
	err := p.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"users"}, failed)
	assert.Equal(t, []string{"users"}, p.Dirty())
	assert.Equal(t, "v", s.get(), "内存状态不回滚")

	gw.mu.Lock()
	gw.failures = 0
	gw.mu.Unlock()
	require.NoError(t, p.Checkpoint(context.Background()))
	assert.Equal(t, "v", gw.get("users"))
	assert.Empty(t, p.Dirty())
}

func TestRunWritesBehind(t *testing.T) {
	gw := newFakeGateway()
	s := &fakeStore{value: "first"}
	p := New(gw, zap.NewNop(), Options{CheckpointInterval: time.Hour})
	p.Register("stats", s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	s.set("second")
	p.MarkDirty("stats")
	assert.Eventually(t, func() bool { return gw.get("stats") == "second" }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestRunPeriodicCheckpoint(t *testing.T) {
	gw := newFakeGateway()
	s := &fakeStore{value: "snap"}
	p := New(gw, zap.NewNop(), Options{CheckpointInterval: 10 * time.Millisecond})
	p.Register("products", s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	assert.Eventually(t, func() bool { return gw.get("products") == "snap" }, time.Second, 5*time.Millisecond)
}
