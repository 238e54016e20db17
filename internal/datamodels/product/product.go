package product

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

// Product 商品模型
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CategoryID  string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"` // 展示用的 emoji
	Stock       int64           `json:"stock"`
	Active      bool            `json:"active"`
}

// Clone 返回副本，仓储对外只暴露副本
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// Category 商品分类，加载后不可变
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StockError 库存不足，Requested 为请求扣减数量，Available 为当前库存
type StockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("product %s: insufficient stock (requested %d, available %d)", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Repository 商品目录仓储接口。列表顺序均为目录插入顺序。
type Repository interface {
	GetProduct(id string) (*Product, error)
	GetCategory(id string) (*Category, error)
	ListCategories() []*Category
	ListProducts() []*Product
	ListActiveByCategory(categoryID string) []*Product

	// DecrementStock 扣减单个商品库存，返回剩余库存
	DecrementStock(id string, qty int64) (int64, error)
	// DecrementStocks 原子扣减一批商品库存：先全部校验，任一不足则不做任何修改
	DecrementStocks(lines map[string]int64) (map[string]int64, error)
	// RestoreStocks 回滚 DecrementStocks 扣减的库存
	RestoreStocks(lines map[string]int64)

	// Rank 返回商品在目录中的插入序号，不存在返回 -1
	Rank(id string) int

	PutCategory(c *Category)
	PutProduct(p *Product)
}
