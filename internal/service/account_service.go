package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/shopbot/internal/datamodels/order"
)

// DefaultHistoryLimit 订单历史默认展示条数
const DefaultHistoryLimit = 5

// AccountSummary 账户概览
type AccountSummary struct {
	UserID      string          `json:"user_id"`
	MemberSince time.Time       `json:"member_since"`
	Orders      int             `json:"orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	CartItems   int64           `json:"cart_items"`
}

// AccountService 账户概览与订单历史
type AccountService struct {
	d            Deps
	users        *UserService
	historyLimit int
}

// NewAccountService 创建账户服务
func NewAccountService(d Deps, users *UserService, historyLimit int) *AccountService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &AccountService{d: d.withDefaults(), users: users, historyLimit: historyLimit}
}

// Summary 返回注册时间、已支付订单数、累计消费与购物车件数
func (s *AccountService) Summary(ctx context.Context, userID string) (*AccountSummary, error) {
	u, err := s.users.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	spent := decimal.Zero
	for _, o := range s.d.Stores.Orders.ListByIDs(u.Orders) {
		spent = spent.Add(o.Total)
	}
	return &AccountSummary{
		UserID:      u.ID,
		MemberSince: u.CreatedAt,
		Orders:      len(u.Orders),
		TotalSpent:  spent.Round(2),
		CartItems:   u.CartItems(),
	}, nil
}

// History 返回最近的订单（按下单先后）
func (s *AccountService) History(ctx context.Context, userID string) ([]*order.Order, error) {
	u, err := s.users.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := u.Orders
	if len(ids) > s.historyLimit {
		ids = ids[len(ids)-s.historyLimit:]
	}
	return s.d.Stores.Orders.ListByIDs(ids), nil
}
