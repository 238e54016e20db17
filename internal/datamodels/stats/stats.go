package stats

import (
	"github.com/shopspring/decimal"

	"github.com/example/shopbot/internal/datamodels/order"
)

// Stats 派生统计：用户数随首次出现递增，其余三项只在订单变为已支付时递增
type Stats struct {
	TotalUsers   int64            `json:"totalUsers"`
	TotalOrders  int64            `json:"totalOrders"`
	TotalRevenue decimal.Decimal  `json:"totalRevenue"`
	TopProducts  map[string]int64 `json:"topProducts"` // productID -> 累计销量
}

// Clone 深拷贝
func (s *Stats) Clone() *Stats {
	cp := *s
	cp.TopProducts = make(map[string]int64, len(s.TopProducts))
	for k, v := range s.TopProducts {
		cp.TopProducts[k] = v
	}
	return &cp
}

// Ranked 销量排行中的一项
type Ranked struct {
	ProductID string
	Sold      int64
}

// Repository 统计聚合器接口
type Repository interface {
	RecordUser()
	RecordOrder(o *order.Order)
	Snapshot() *Stats
	// Top 按销量降序返回前 n 个，销量相同时按 rank（目录插入顺序）升序
	Top(n int, rank func(productID string) int) []Ranked
}
