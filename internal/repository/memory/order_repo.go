package memory

import (
	"sync"
	"time"

	"github.com/example/shopbot/internal/datamodels/order"
)

// OrderRepo 内存订单账本
type OrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
	order  []string
}

// NewOrderRepository 创建订单账本
func NewOrderRepository() *OrderRepo {
	return &OrderRepo{orders: make(map[string]*order.Order)}
}

var _ order.Repository = (*OrderRepo)(nil)

func (r *OrderRepo) Create(o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return order.ErrDuplicate
	}
	r.orders[o.ID] = o.Clone()
	r.order = append(r.order, o.ID)
	return nil
}

func (r *OrderRepo) Get(id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepo) MarkPaid(id string, at time.Time) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Paid() {
		return o.Clone(), order.ErrAlreadyPaid
	}
	o.Status = order.StatusPaid
	o.PaidAt = &at
	return o.Clone(), nil
}

func (r *OrderRepo) ListByIDs(ids []string) []*order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.orders[id]; ok {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (r *OrderRepo) ListAll() []*order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*order.Order, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.orders[id].Clone())
	}
	return out
}

func (r *OrderRepo) MarshalSnapshot() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return encodeOrdered(r.order, func(id string) *order.Order { return r.orders[id] })
}

func (r *OrderRepo) UnmarshalSnapshot(data []byte) error {
	orders := make(map[string]*order.Order)
	var ids []string
	err := decodeOrdered(data, func(key string, o *order.Order) {
		if o == nil {
			return
		}
		if o.ID == "" {
			o.ID = key
		}
		if o.Items == nil {
			o.Items = map[string]order.Item{}
		}
		if _, ok := orders[o.ID]; !ok {
			ids = append(ids, o.ID)
		}
		orders[o.ID] = o
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = orders
	r.order = ids
	return nil
}
