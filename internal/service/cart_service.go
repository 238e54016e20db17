package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/example/shopbot/internal/datamodels/product"
	"github.com/example/shopbot/internal/datamodels/snapshot"
)

// CartLine 购物车中的一行，价格取当前目录价
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartSummary 购物车汇总
type CartSummary struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Items int64           `json:"items"`
}

// Empty 购物车是否为空
func (s *CartSummary) Empty() bool { return len(s.Lines) == 0 }

// CartService 购物车管理：数量始终 >= 1 且加购时不超过当前库存
type CartService struct {
	d     Deps
	users *UserService
}

func NewCartService(d Deps, users *UserService) *CartService {
	return &CartService{d: d.withDefaults(), users: users}
}

// Add 加购一件，返回加购后的数量
func (s *CartService) Add(ctx context.Context, userID, productID string) (int64, error) {
	userID = CanonicalUserID(userID)
	unlock := s.d.Locks.Lock(userID)
	defer unlock()

	u, err := s.users.Resolve(ctx, userID)
	if err != nil {
		return 0, err
	}
	p, err := s.d.Stores.Catalog.GetProduct(productID)
	if err != nil || !p.Active {
		return 0, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
	}
	if p.Stock <= 0 {
		return 0, ErrOutOfStock
	}
	qty := u.Cart[productID]
	if qty >= p.Stock {
		return qty, &QuantityLimitError{ProductID: productID, Limit: p.Stock}
	}

	u.Cart[productID] = qty + 1
	if err := s.d.Stores.Users.SetCart(userID, u.Cart); err != nil {
		return 0, err
	}
	s.d.Store.MarkDirty(snapshot.Users)
	s.d.Monitor.RecordCartUpdate()
	return qty + 1, nil
}

// Remove 减少一件，数量为 0 时移除；商品不在购物车中时返回 false
func (s *CartService) Remove(ctx context.Context, userID, productID string) (bool, error) {
	userID = CanonicalUserID(userID)
	unlock := s.d.Locks.Lock(userID)
	defer unlock()

	u, err := s.users.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	qty, ok := u.Cart[productID]
	if !ok {
		return false, nil
	}
	if qty <= 1 {
		delete(u.Cart, productID)
	} else {
		u.Cart[productID] = qty - 1
	}
	if err := s.d.Stores.Users.SetCart(userID, u.Cart); err != nil {
		return false, err
	}
	s.d.Store.MarkDirty(snapshot.Users)
	s.d.Monitor.RecordCartUpdate()
	return true, nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID string) error {
	userID = CanonicalUserID(userID)
	unlock := s.d.Locks.Lock(userID)
	defer unlock()

	if _, err := s.users.Resolve(ctx, userID); err != nil {
		return err
	}
	if err := s.d.Stores.Users.SetCart(userID, map[string]int64{}); err != nil {
		return err
	}
	s.d.Store.MarkDirty(snapshot.Users)
	s.d.Monitor.RecordCartUpdate()
	return nil
}

// Summarize 按目录顺序汇总购物车，已从目录消失的商品跳过
func (s *CartService) Summarize(ctx context.Context, userID string) (*CartSummary, error) {
	u, err := s.users.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(s.d.Stores.Catalog, u.Cart), nil
}

func summarize(catalog product.Repository, cart map[string]int64) *CartSummary {
	sum := &CartSummary{Lines: []CartLine{}, Total: decimal.Zero}
	for pid, qty := range cart {
		p, err := catalog.GetProduct(pid)
		if err != nil {
			continue
		}
		sub := p.Price.Mul(decimal.NewFromInt(qty))
		sum.Lines = append(sum.Lines, CartLine{
			ProductID: pid,
			Name:      p.Name,
			Image:     p.Image,
			Price:     p.Price,
			Quantity:  qty,
			Subtotal:  sub,
		})
		sum.Total = sum.Total.Add(sub)
		sum.Items += qty
	}
	sort.Slice(sum.Lines, func(i, j int) bool {
		return catalog.Rank(sum.Lines[i].ProductID) < catalog.Rank(sum.Lines[j].ProductID)
	})
	sum.Total = sum.Total.Round(2)
	return sum
}
