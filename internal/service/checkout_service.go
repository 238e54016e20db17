package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/shopbot/internal/datamodels/order"
	"github.com/example/shopbot/internal/datamodels/snapshot"
)

// DefaultLowStockThreshold 剩余库存不高于该值时提醒管理员
const DefaultLowStockThreshold = 5

const maxOrderIDAttempts = 3

// LowStockAlert 支付后触发的库存预警
type LowStockAlert struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Remaining int64  `json:"remaining"`
}

// Receipt 支付确认结果；Duplicate 为 true 表示订单此前已支付，本次无任何副作用
type Receipt struct {
	Order     *order.Order    `json:"order"`
	Duplicate bool            `json:"duplicate"`
	LowStock  []LowStockAlert `json:"low_stock,omitempty"`
}

// CheckoutService 下单与支付确认。
// 支付确认在用户锁内作为一个整体完成：扣库存、置已支付、清空购物车、记入历史、更新统计。
type CheckoutService struct {
	d        Deps
	users    *UserService
	lowStock int64
	newID    func() string
}

func NewCheckoutService(d Deps, users *UserService, lowStockThreshold int64) *CheckoutService {
	d = d.withDefaults()
	s := &CheckoutService{d: d, users: users, lowStock: lowStockThreshold}
	s.newID = func() string {
		return fmt.Sprintf("order_%d_%s", s.d.Clock.Now().UnixMilli(), uuid.NewString())
	}
	return s
}

// Checkout 以当前购物车生成待支付订单，购物车保留到支付成功
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (*order.Order, error) {
	userID = CanonicalUserID(userID)
	unlock := s.d.Locks.Lock(userID)
	defer unlock()

	u, err := s.users.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make(map[string]order.Item, len(u.Cart))
	for pid, qty := range u.Cart {
		p, err := s.d.Stores.Catalog.GetProduct(pid)
		if err != nil {
			continue
		}
		items[pid] = order.Item{Name: p.Name, Price: p.Price, Quantity: qty}
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	now := s.d.Clock.Now()
	for attempt := 0; ; attempt++ {
		o := order.New(s.newID(), userID, items, now)
		err := s.d.Stores.Orders.Create(o)
		if err == nil {
			s.d.Store.MarkDirty(snapshot.Orders)
			s.d.Monitor.RecordOrderCreated()
			s.d.Logger.Info("order created",
				zap.String("order_id", o.ID),
				zap.String("user_id", userID),
				zap.String("total", o.Total.StringFixed(2)))
			return o.Clone(), nil
		}
		if !errors.Is(err, order.ErrDuplicate) || attempt+1 >= maxOrderIDAttempts {
			s.d.Monitor.RecordCheckoutError()
			return nil, err
		}
	}
}

// Confirm 确认支付（模拟）。
// 订单不存在或不属于该用户返回 order.ErrNotFound；已支付返回 Duplicate 回执；
// 库存不足返回 *product.StockError，订单保持待支付且不做任何修改。
func (s *CheckoutService) Confirm(ctx context.Context, userID, orderID string) (*Receipt, error) {
	receipt, err := s.confirm(ctx, userID, orderID)
	if err != nil || receipt.Duplicate {
		return receipt, err
	}
	s.notifyPaid(ctx, receipt)
	return receipt, nil
}

func (s *CheckoutService) confirm(ctx context.Context, userID, orderID string) (*Receipt, error) {
	userID = CanonicalUserID(userID)
	unlock := s.d.Locks.Lock(userID)
	defer unlock()

	if _, err := s.users.Resolve(ctx, userID); err != nil {
		return nil, err
	}
	o, err := s.d.Stores.Orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: %s", order.ErrNotFound, orderID)
	}
	if o.Paid() {
		return &Receipt{Order: o, Duplicate: true}, nil
	}

	// 已从目录移除的商品不扣库存
	lines := o.Quantities()
	for pid := range lines {
		if _, err := s.d.Stores.Catalog.GetProduct(pid); err != nil {
			delete(lines, pid)
		}
	}
	remaining, err := s.d.Stores.Catalog.DecrementStocks(lines)
	if err != nil {
		s.d.Monitor.RecordPaymentRejected()
		s.d.Logger.Warn("payment rejected",
			zap.String("order_id", orderID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	paid, err := s.d.Stores.Orders.MarkPaid(orderID, s.d.Clock.Now())
	if err != nil {
		s.d.Stores.Catalog.RestoreStocks(lines)
		if errors.Is(err, order.ErrAlreadyPaid) {
			return &Receipt{Order: paid, Duplicate: true}, nil
		}
		s.d.Monitor.RecordCheckoutError()
		return nil, err
	}

	if err := s.d.Stores.Users.SetCart(userID, map[string]int64{}); err != nil {
		s.d.Logger.Error("clear cart after payment", zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.d.Stores.Users.AppendOrder(userID, orderID); err != nil {
		s.d.Logger.Error("append order history", zap.String("user_id", userID), zap.Error(err))
	}
	s.d.Stores.Stats.RecordOrder(paid)
	s.d.Store.MarkDirty(snapshot.Orders, snapshot.Users, snapshot.Products, snapshot.Stats)
	s.d.Monitor.RecordPayment()
	s.d.Logger.Info("order paid",
		zap.String("order_id", orderID),
		zap.String("user_id", userID),
		zap.String("total", paid.Total.StringFixed(2)))

	receipt := &Receipt{Order: paid}
	for _, pid := range paid.ProductIDs() {
		left, ok := remaining[pid]
		if !ok || left > s.lowStock {
			continue
		}
		receipt.LowStock = append(receipt.LowStock, LowStockAlert{
			ProductID: pid,
			Name:      s.productName(pid, paid.Items[pid].Name),
			Remaining: left,
		})
	}
	return receipt, nil
}

// notifyPaid 锁外发送通知，失败只记录
func (s *CheckoutService) notifyPaid(ctx context.Context, r *Receipt) {
	for _, a := range r.LowStock {
		s.send("low stock", func() error {
			return s.d.Notifier.NotifyAdmin(ctx, s.d.Messages.LowStock(a.Name, a.Remaining))
		})
	}
	s.send("payment confirmation", func() error {
		return s.d.Notifier.NotifyUser(ctx, r.Order.UserID, s.d.Messages.PaymentConfirmed(r.Order))
	})
	s.send("new order", func() error {
		return s.d.Notifier.NotifyAdmin(ctx, s.d.Messages.AdminNewOrder(r.Order))
	})
}

func (s *CheckoutService) send(kind string, fn func() error) {
	if err := fn(); err != nil {
		s.d.Monitor.RecordNotifyError()
		s.d.Logger.Warn("notification failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (s *CheckoutService) productName(pid, fallback string) string {
	p, err := s.d.Stores.Catalog.GetProduct(pid)
	if err != nil {
		return fallback
	}
	return p.Name
}
