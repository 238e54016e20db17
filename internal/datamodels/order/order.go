package order

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("order: not found")
	ErrDuplicate   = errors.New("order: duplicate id")
	ErrAlreadyPaid = errors.New("order: already paid")
)

// Status 订单状态，只允许 pending -> paid
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Item 下单时的商品快照，不随目录后续修改而变化
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// Subtotal 单价 × 数量
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// Order 订单模型
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Items     map[string]Item `json:"items"` // productID -> 快照
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
}

// New 根据商品快照创建待支付订单，总价在创建时固定
func New(id, userID string, items map[string]Item, now time.Time) *Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return &Order{
		ID:        id,
		UserID:    userID,
		Items:     items,
		Total:     total.Round(2),
		Status:    StatusPending,
		CreatedAt: now,
	}
}

// Paid 是否已支付
func (o *Order) Paid() bool { return o.Status == StatusPaid }

// Quantities 返回 productID -> 数量，用于扣减库存
func (o *Order) Quantities() map[string]int64 {
	out := make(map[string]int64, len(o.Items))
	for pid, it := range o.Items {
		out[pid] = it.Quantity
	}
	return out
}

// ProductIDs 按 ID 排序返回订单中的商品
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for pid := range o.Items {
		ids = append(ids, pid)
	}
	sort.Strings(ids)
	return ids
}

// Clone 深拷贝
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = make(map[string]Item, len(o.Items))
	for k, v := range o.Items {
		cp.Items[k] = v
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		cp.PaidAt = &t
	}
	return &cp
}

// Repository 订单账本接口：只追加，状态只能 pending -> paid
type Repository interface {
	Create(o *Order) error
	Get(id string) (*Order, error)
	// MarkPaid 置为已支付，已支付时返回 ErrAlreadyPaid
	MarkPaid(id string, at time.Time) (*Order, error)
	ListByIDs(ids []string) []*Order
	ListAll() []*Order
}
