package memory

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopbot/internal/datamodels/product"
)

func newCatalog(t *testing.T) *CatalogRepo {
	t.Helper()
	r := NewCatalogRepository()
	r.PutCategory(&product.Category{ID: "home", Name: "Home"})
	r.PutCategory(&product.Category{ID: "tech", Name: "Tech"})
	r.PutProduct(&product.Product{ID: "p3", Name: "Lamp", CategoryID: "home", Price: decimal.RequireFromString("19.90"), Stock: 10, Active: true})
	r.PutProduct(&product.Product{ID: "p1", Name: "Phone", CategoryID: "tech", Price: decimal.RequireFromString("599"), Stock: 3, Active: true})
	r.PutProduct(&product.Product{ID: "p2", Name: "Old phone", CategoryID: "tech", Price: decimal.RequireFromString("99"), Stock: 1, Active: false})
	r.PutProduct(&product.Product{ID: "p0", Name: "Cable", CategoryID: "tech", Price: decimal.RequireFromString("5"), Stock: 8, Active: true})
	return r
}

func TestCatalogListActiveByCategoryKeepsInsertionOrder(t *testing.T) {
	r := newCatalog(t)

	list := r.ListActiveByCategory("tech")
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ID)
	assert.Equal(t, "p0", list[1].ID)

	assert.Empty(t, r.ListActiveByCategory("missing"))
	assert.Equal(t, 0, r.Rank("p3"))
	assert.Equal(t, 3, r.Rank("p0"))
	assert.Equal(t, -1, r.Rank("nope"))
}

func TestCatalogGetReturnsCopy(t *testing.T) {
	r := newCatalog(t)

	p, err := r.GetProduct("p1")
	require.NoError(t, err)
	p.Stock = 0

	again, err := r.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), again.Stock)

	_, err = r.GetProduct("nope")
	assert.ErrorIs(t, err, product.ErrNotFound)
	_, err = r.GetCategory("nope")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestCatalogDecrementStock(t *testing.T) {
	r := newCatalog(t)

	left, err := r.DecrementStock("p1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), left)

	_, err = r.DecrementStock("p1", 2)
	var se *product.StockError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, product.ErrInsufficientStock)
	assert.Equal(t, int64(2), se.Requested)
	assert.Equal(t, int64(1), se.Available)

	p, _ := r.GetProduct("p1")
	assert.Equal(t, int64(1), p.Stock, "failed decrement must not change stock")

	_, err = r.DecrementStock("nope", 1)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestCatalogDecrementStocksIsAllOrNothing(t *testing.T) {
	r := newCatalog(t)

	_, err := r.DecrementStocks(map[string]int64{"p3": 4, "p1": 5})
	require.ErrorIs(t, err, product.ErrInsufficientStock)

	p3, _ := r.GetProduct("p3")
	p1, _ := r.GetProduct("p1")
	assert.Equal(t, int64(10), p3.Stock)
	assert.Equal(t, int64(3), p1.Stock)

	left, err := r.DecrementStocks(map[string]int64{"p3": 4, "p1": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"p3": 6, "p1": 0}, left)

	r.RestoreStocks(map[string]int64{"p3": 4, "p1": 3})
	p3, _ = r.GetProduct("p3")
	assert.Equal(t, int64(10), p3.Stock)
}

func TestCatalogConcurrentDecrementNeverNegative(t *testing.T) {
	r := newCatalog(t)

	var ok int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.DecrementStock("p3", 1); err == nil {
				atomic.AddInt64(&ok, 1)
			}
		}()
	}
	wg.Wait()

	p, _ := r.GetProduct("p3")
	assert.Equal(t, int64(10), ok)
	assert.Equal(t, int64(0), p.Stock)
}

func TestCatalogSnapshotRoundTripKeepsOrder(t *testing.T) {
	r := newCatalog(t)

	products, err := r.MarshalProducts()
	require.NoError(t, err)
	categories, err := r.MarshalCategories()
	require.NoError(t, err)

	loaded := NewCatalogRepository()
	require.NoError(t, loaded.UnmarshalProducts(products))
	require.NoError(t, loaded.UnmarshalCategories(categories))

	var ids []string
	for _, p := range loaded.ListProducts() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p3", "p1", "p2", "p0"}, ids)
	assert.Equal(t, "home", loaded.ListCategories()[0].ID)

	p, err := loaded.GetProduct("p3")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("19.9")))
}

func TestCatalogUnmarshalLegacyDocument(t *testing.T) {
	doc := []byte(`{
  "prod_002": {"name": "MacBook Air M2", "category": "electronics", "price": 1299.99, "image": "💻", "stock": 8, "active": true},
  "prod_001": {"name": "iPhone 15 Pro", "category": "electronics", "price": 1199.99, "image": "📱", "stock": 15, "active": true}
}`)

	r := NewCatalogRepository()
	require.NoError(t, r.UnmarshalProducts(doc))

	list := r.ListProducts()
	require.Len(t, list, 2)
	assert.Equal(t, "prod_002", list[0].ID)
	assert.Equal(t, "1199.99", list[1].Price.StringFixed(2))

	assert.Error(t, r.UnmarshalProducts([]byte(`[1,2]`)))
	assert.Error(t, r.UnmarshalProducts([]byte(`{not json`)))
	assert.NoError(t, r.UnmarshalProducts(nil))
	assert.Empty(t, r.ListProducts())
}
