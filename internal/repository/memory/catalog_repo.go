package memory

import (
	"sync"

	"github.com/example/shopbot/internal/datamodels/product"
)

// CatalogRepo 内存商品目录，保持插入顺序
type CatalogRepo struct {
	mu            sync.RWMutex
	products      map[string]*product.Product
	productOrder  []string
	categories    map[string]*product.Category
	categoryOrder []string
}

// NewCatalogRepository 创建空目录
func NewCatalogRepository() *CatalogRepo {
	return &CatalogRepo{
		products:   make(map[string]*product.Product),
		categories: make(map[string]*product.Category),
	}
}

var _ product.Repository = (*CatalogRepo)(nil)

func (r *CatalogRepo) GetProduct(id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *CatalogRepo) GetCategory(id string) (*product.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CatalogRepo) ListCategories() []*product.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*product.Category, 0, len(r.categoryOrder))
	for _, id := range r.categoryOrder {
		cp := *r.categories[id]
		out = append(out, &cp)
	}
	return out
}

func (r *CatalogRepo) ListProducts() []*product.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*product.Product, 0, len(r.productOrder))
	for _, id := range r.productOrder {
		out = append(out, r.products[id].Clone())
	}
	return out
}

func (r *CatalogRepo) ListActiveByCategory(categoryID string) []*product.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*product.Product
	for _, id := range r.productOrder {
		p := r.products[id]
		if p.Active && p.CategoryID == categoryID {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (r *CatalogRepo) DecrementStock(id string, qty int64) (int64, error) {
	left, err := r.DecrementStocks(map[string]int64{id: qty})
	if err != nil {
		return 0, err
	}
	return left[id], nil
}

func (r *CatalogRepo) DecrementStocks(lines map[string]int64) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 先全部校验，保证不会出现部分扣减
	for id, qty := range lines {
		p, ok := r.products[id]
		if !ok {
			return nil, product.ErrNotFound
		}
		if qty < 0 || qty > p.Stock {
			return nil, &product.StockError{ProductID: id, Requested: qty, Available: p.Stock}
		}
	}

	left := make(map[string]int64, len(lines))
	for id, qty := range lines {
		p := r.products[id]
		p.Stock -= qty
		left[id] = p.Stock
	}
	return left, nil
}

func (r *CatalogRepo) RestoreStocks(lines map[string]int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, qty := range lines {
		if p, ok := r.products[id]; ok && qty > 0 {
			p.Stock += qty
		}
	}
}

func (r *CatalogRepo) Rank(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, pid := range r.productOrder {
		if pid == id {
			return i
		}
	}
	return -1
}

// PutCategory 新增或替换分类，新增时追加到末尾
func (r *CatalogRepo) PutCategory(c *product.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putCategoryLocked(c)
}

func (r *CatalogRepo) putCategoryLocked(c *product.Category) {
	cp := *c
	if _, ok := r.categories[c.ID]; !ok {
		r.categoryOrder = append(r.categoryOrder, c.ID)
	}
	r.categories[c.ID] = &cp
}

// PutProduct 新增或替换商品，新增时追加到末尾
func (r *CatalogRepo) PutProduct(p *product.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putProductLocked(p)
}

func (r *CatalogRepo) putProductLocked(p *product.Product) {
	if _, ok := r.products[p.ID]; !ok {
		r.productOrder = append(r.productOrder, p.ID)
	}
	r.products[p.ID] = p.Clone()
}

// ---------------- 快照 ----------------

// MarshalProducts 以插入顺序序列化商品
func (r *CatalogRepo) MarshalProducts() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return encodeOrdered(r.productOrder, func(id string) *product.Product { return r.products[id] })
}

// UnmarshalProducts 用快照替换全部商品；快照中缺省的 id 取自键名
func (r *CatalogRepo) UnmarshalProducts(data []byte) error {
	products := make(map[string]*product.Product)
	var order []string
	err := decodeOrdered(data, func(key string, p *product.Product) {
		if p == nil {
			return
		}
		if p.ID == "" {
			p.ID = key
		}
		if _, ok := products[p.ID]; !ok {
			order = append(order, p.ID)
		}
		products[p.ID] = p
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
	r.productOrder = order
	return nil
}

// MarshalCategories 以插入顺序序列化分类
func (r *CatalogRepo) MarshalCategories() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return encodeOrdered(r.categoryOrder, func(id string) *product.Category { return r.categories[id] })
}

// UnmarshalCategories 用快照替换全部分类
func (r *CatalogRepo) UnmarshalCategories(data []byte) error {
	categories := make(map[string]*product.Category)
	var order []string
	err := decodeOrdered(data, func(key string, c *product.Category) {
		if c == nil {
			return
		}
		if c.ID == "" {
			c.ID = key
		}
		if _, ok := categories[c.ID]; !ok {
			order = append(order, c.ID)
		}
		categories[c.ID] = c
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = categories
	r.categoryOrder = order
	return nil
}

// ProductSnapshotter 商品 store 的快照读写
func (r *CatalogRepo) ProductSnapshotter() Snapshotter {
	return snapshotFuncs{marshal: r.MarshalProducts, unmarshal: r.UnmarshalProducts}
}

// CategorySnapshotter 分类 store 的快照读写
func (r *CatalogRepo) CategorySnapshotter() Snapshotter {
	return snapshotFuncs{marshal: r.MarshalCategories, unmarshal: r.UnmarshalCategories}
}
