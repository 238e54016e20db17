package memory

import (
	"sync"
	"time"

	"github.com/example/shopbot/internal/datamodels/user"
)

// UserRepo 内存用户仓储
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*user.User
	order []string
}

// NewUserRepository 创建用户仓储
func NewUserRepository() *UserRepo {
	return &UserRepo{users: make(map[string]*user.User)}
}

var _ user.Repository = (*UserRepo)(nil)

func (r *UserRepo) GetOrCreate(id string, now time.Time) (*user.User, bool) {
	r.mu.RLock()
	u, ok := r.users[id]
	r.mu.RUnlock()
	if ok {
		return u.Clone(), false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// 双重检查，避免并发重复创建
	if u, ok := r.users[id]; ok {
		return u.Clone(), false
	}
	u = user.New(id, now)
	r.users[id] = u
	r.order = append(r.order, id)
	return u.Clone(), true
}

func (r *UserRepo) Get(id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepo) SetCart(id string, cart map[string]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	next := make(map[string]int64, len(cart))
	for pid, q := range cart {
		if q > 0 {
			next[pid] = q
		}
	}
	u.Cart = next
	return nil
}

func (r *UserRepo) AppendOrder(id, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Orders = append(u.Orders, orderID)
	return nil
}

func (r *UserRepo) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *UserRepo) MarshalSnapshot() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return encodeOrdered(r.order, func(id string) *user.User { return r.users[id] })
}

func (r *UserRepo) UnmarshalSnapshot(data []byte) error {
	users := make(map[string]*user.User)
	var order []string
	err := decodeOrdered(data, func(key string, u *user.User) {
		if u == nil {
			return
		}
		if u.ID == "" {
			u.ID = key
		}
		if u.Cart == nil {
			u.Cart = map[string]int64{}
		}
		if u.Orders == nil {
			u.Orders = []string{}
		}
		if u.Language == "" {
			u.Language = user.DefaultLanguage
		}
		if _, ok := users[u.ID]; !ok {
			order = append(order, u.ID)
		}
		users[u.ID] = u
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = users
	r.order = order
	return nil
}
