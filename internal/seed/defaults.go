package seed

import (
	"github.com/shopspring/decimal"

	"github.com/example/shopbot/internal/datamodels/product"
)

// Categories 默认分类（按展示顺序）
func Categories() []*product.Category {
	return []*product.Category{
		{ID: "electronics", Name: "📱 Électronique", Description: "Smartphones, ordinateurs, accessoires tech"},
		{ID: "clothing", Name: "👕 Vêtements", Description: "Mode homme et femme"},
		{ID: "accessories", Name: "💎 Accessoires", Description: "Bijoux, montres, sacs"},
		{ID: "home", Name: "🏠 Maison", Description: "Décoration, meubles, électroménager"},
	}
}

// Products 默认商品（按展示顺序）
func Products() []*product.Product {
	return []*product.Product{
		{
			ID:          "prod_001",
			Name:        "iPhone 15 Pro",
			CategoryID:  "electronics",
			Price:       decimal.RequireFromString("1199.99"),
			Description: "Smartphone Apple dernière génération avec appareil photo professionnel",
			Image:       "📱",
			Stock:       15,
			Active:      true,
		},
		{
			ID:          "prod_002",
			Name:        "MacBook Air M2",
			CategoryID:  "electronics",
			Price:       decimal.RequireFromString("1299.99"),
			Description: "Ordinateur portable ultra-léger avec puce M2",
			Image:       "💻",
			Stock:       8,
			Active:      true,
		},
		{
			ID:          "prod_003",
			Name:        "T-shirt Premium",
			CategoryID:  "clothing",
			Price:       decimal.RequireFromString("29.99"),
			Description: "T-shirt 100% coton bio, coupe moderne",
			Image:       "👕",
			Stock:       50,
			Active:      true,
		},
		{
			ID:          "prod_004",
			Name:        "Montre Connectée",
			CategoryID:  "accessories",
			Price:       decimal.RequireFromString("299.99"),
			Description: "Montre intelligente avec GPS et suivi santé",
			Image:       "⌚",
			Stock:       25,
			Active:      true,
		},
		{
			ID:          "prod_005",
			Name:        "Aspirateur Robot",
			CategoryID:  "home",
			Price:       decimal.RequireFromString("399.99"),
			Description: "Aspirateur intelligent avec navigation laser",
			Image:       "🤖",
			Stock:       12,
			Active:      true,
		},
	}
}

// Apply 写入默认目录；force 为 false 时目录非空则跳过。返回是否写入。
func Apply(catalog product.Repository, force bool) bool {
	if !force && len(catalog.ListProducts()) > 0 {
		return false
	}
	for _, c := range Categories() {
		catalog.PutCategory(c)
	}
	for _, p := range Products() {
		catalog.PutProduct(p)
	}
	return true
}
