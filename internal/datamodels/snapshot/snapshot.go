package snapshot

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("snapshot: not found")

// Store 名称，每个 store 独立整体覆盖保存
const (
	Products   = "products"
	Categories = "categories"
	Users      = "users"
	Orders     = "orders"
	Stats      = "stats"
)

// Names 全部 store，按加载顺序
var Names = []string{Products, Categories, Users, Orders, Stats}

// Snapshot 某个 store 的完整序列化内容（MySQL 后端的表结构）
type Snapshot struct {
	Name      string    `gorm:"primaryKey;size:32"`
	Payload   []byte    `gorm:"type:longblob;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// Gateway 持久化网关：按 store 名整体读写
type Gateway interface {
	// Load 读取快照，从未保存过时返回 ErrNotFound
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, payload []byte) error
}
