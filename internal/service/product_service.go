package service

import (
	"context"
	"fmt"

	"github.com/example/shopbot/internal/datamodels/product"
)

// CategoryView 分类及其在售商品
type CategoryView struct {
	Category *product.Category  `json:"category"`
	Products []*product.Product `json:"products"`
}

type ProductService struct {
	repo product.Repository
}

func NewProductService(repo product.Repository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) ListCategories(ctx context.Context) []*product.Category {
	return s.repo.ListCategories()
}

// ListByCategory 返回分类下的在售商品，按目录顺序
func (s *ProductService) ListByCategory(ctx context.Context, categoryID string) (*CategoryView, error) {
	c, err := s.repo.GetCategory(categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
	}
	return &CategoryView{Category: c, Products: s.repo.ListActiveByCategory(categoryID)}, nil
}

// GetByID 下架商品对浏览不可见
func (s *ProductService) GetByID(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.repo.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, id)
	}
	return p, nil
}
