package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user: not found")

// DefaultLanguage 新用户默认语言
const DefaultLanguage = "fr"

// User 用户模型：ID 即外部调用方标识，首次出现时创建，不会删除
type User struct {
	ID        string           `json:"id"`
	Cart      map[string]int64 `json:"cart"`   // productID -> 数量，数量为 0 时删除
	Orders    []string         `json:"orders"` // 已支付订单 ID，只追加
	CreatedAt time.Time        `json:"createdAt"`
	Language  string           `json:"language"`
}

// New 创建空购物车的用户
func New(id string, now time.Time) *User {
	return &User{
		ID:        id,
		Cart:      map[string]int64{},
		Orders:    []string{},
		CreatedAt: now,
		Language:  DefaultLanguage,
	}
}

// Clone 深拷贝
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Cart = make(map[string]int64, len(u.Cart))
	for k, v := range u.Cart {
		cp.Cart[k] = v
	}
	cp.Orders = append([]string(nil), u.Orders...)
	return &cp
}

// CartItems 购物车商品总件数
func (u *User) CartItems() int64 {
	var n int64
	for _, q := range u.Cart {
		n += q
	}
	return n
}

// Repository 用户仓储接口
type Repository interface {
	// GetOrCreate 返回用户，created 表示本次调用新建
	GetOrCreate(id string, now time.Time) (u *User, created bool)
	Get(id string) (*User, error)
	SetCart(id string, cart map[string]int64) error
	AppendOrder(id, orderID string) error
	// IDs 按创建顺序返回所有用户 ID
	IDs() []string
}
