package service

import (
	"errors"
	"fmt"

	"github.com/example/shopbot/internal/datamodels/order"
	"github.com/example/shopbot/internal/datamodels/product"
)

var (
	ErrInvalidUser        = errors.New("service: empty user id")
	ErrEmptyCart          = errors.New("service: cart is empty")
	ErrOutOfStock         = errors.New("service: product out of stock")
	ErrQuantityLimit      = errors.New("service: cart quantity limited by stock")
	ErrProductUnavailable = fmt.Errorf("service: product unavailable: %w", product.ErrNotFound)
	ErrCategoryNotFound   = errors.New("service: category not found")
	ErrForbidden          = errors.New("service: caller is not the administrator")
	ErrEmptyMessage       = errors.New("service: empty message")
)

// QuantityLimitError 购物车数量已达到当前库存
type QuantityLimitError struct {
	ProductID string
	Limit     int64
}

func (e *QuantityLimitError) Error() string {
	return fmt.Sprintf("product %s: cart quantity limited to %d", e.ProductID, e.Limit)
}

func (e *QuantityLimitError) Unwrap() error { return ErrQuantityLimit }

// UserMessage 把错误映射成给终端用户看的文案
func UserMessage(err error) string {
	var (
		qe *QuantityLimitError
		se *product.StockError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &qe):
		return fmt.Sprintf("⚠️ Stock limité à %d unités", qe.Limit)
	case errors.Is(err, ErrOutOfStock):
		return "❌ Produit en rupture de stock"
	case errors.As(err, &se):
		return fmt.Sprintf("❌ Stock insuffisant pour finaliser la commande (%d disponible(s))", se.Available)
	case errors.Is(err, ErrEmptyCart):
		return "🛒 Votre panier est vide"
	case errors.Is(err, ErrProductUnavailable), errors.Is(err, product.ErrNotFound):
		return "❌ Produit introuvable"
	case errors.Is(err, ErrCategoryNotFound):
		return "❌ Catégorie introuvable"
	case errors.Is(err, order.ErrNotFound):
		return "❌ Commande introuvable"
	case errors.Is(err, ErrForbidden):
		return "⛔ Accès réservé à l'administrateur"
	case errors.Is(err, ErrEmptyMessage):
		return "✍️ Le message est vide"
	case errors.Is(err, ErrInvalidUser):
		return "❌ Utilisateur inconnu"
	}
	return "⚠️ Une erreur est survenue, veuillez réessayer."
}
