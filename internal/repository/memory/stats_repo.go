package memory

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/example/shopbot/internal/datamodels/order"
	"github.com/example/shopbot/internal/datamodels/stats"
)

// StatsRepo 内存统计聚合器
type StatsRepo struct {
	mu sync.RWMutex
	s  stats.Stats
}

// NewStatsRepository 创建统计聚合器
func NewStatsRepository() *StatsRepo {
	return &StatsRepo{s: stats.Stats{TopProducts: map[string]int64{}}}
}

var _ stats.Repository = (*StatsRepo)(nil)

func (r *StatsRepo) RecordUser() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.TotalUsers++
}

func (r *StatsRepo) RecordOrder(o *order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.TotalOrders++
	r.s.TotalRevenue = r.s.TotalRevenue.Add(o.Total)
	for pid, it := range o.Items {
		r.s.TopProducts[pid] += it.Quantity
	}
}

func (r *StatsRepo) Snapshot() *stats.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.s.Clone()
}

func (r *StatsRepo) Top(n int, rank func(productID string) int) []stats.Ranked {
	r.mu.RLock()
	list := make([]stats.Ranked, 0, len(r.s.TopProducts))
	for pid, sold := range r.s.TopProducts {
		list = append(list, stats.Ranked{ProductID: pid, Sold: sold})
	}
	r.mu.RUnlock()

	pos := func(pid string) int {
		if rank == nil {
			return -1
		}
		return rank(pid)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Sold != list[j].Sold {
			return list[i].Sold > list[j].Sold
		}
		ri, rj := pos(list[i].ProductID), pos(list[j].ProductID)
		// 不在目录中的商品排在已知商品之后
		switch {
		case ri >= 0 && rj >= 0 && ri != rj:
			return ri < rj
		case ri >= 0 && rj < 0:
			return true
		case ri < 0 && rj >= 0:
			return false
		}
		return list[i].ProductID < list[j].ProductID
	})

	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}

func (r *StatsRepo) MarshalSnapshot() ([]byte, error) {
	r.mu.RLock()
	raw, err := marshalValue(&r.s)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return indent(raw)
}

func (r *StatsRepo) UnmarshalSnapshot(data []byte) error {
	next := stats.Stats{TopProducts: map[string]int64{}}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &next); err != nil {
			return err
		}
	}
	if next.TopProducts == nil {
		next.TopProducts = map[string]int64{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = next
	return nil
}
