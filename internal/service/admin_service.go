package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/shopbot/internal/datamodels/stats"
)

// DefaultTopN 统计报表中展示的热销商品数
const DefaultTopN = 5

// Pacer 广播限速（middleware.TokenBucket 实现）
type Pacer interface {
	Wait(ctx context.Context) error
}

// TopProduct 热销商品
type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Sold      int64  `json:"sold"`
}

// StatsReport 管理员统计报表
type StatsReport struct {
	Stats *stats.Stats `json:"stats"`
	Top   []TopProduct `json:"top"`
	Text  string       `json:"text"`
}

// BroadcastResult 广播结果
type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// AuditReport 从订单账本重新计算的统计与当前统计的对比
type AuditReport struct {
	Recorded   *stats.Stats `json:"recorded"`
	Expected   *stats.Stats `json:"expected"`
	Consistent bool         `json:"consistent"`
	Drift      []string     `json:"drift,omitempty"`
}

// AdminService 管理员能力，调用方 ID 必须等于配置的管理员 ID
type AdminService struct {
	d       Deps
	adminID string
	topN    int
	pacer   Pacer
}

func NewAdminService(d Deps, adminID string, topN int, pacer Pacer) *AdminService {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &AdminService{d: d.withDefaults(), adminID: adminID, topN: topN, pacer: pacer}
}

// IsAdmin 未配置管理员时任何人都不是管理员
func (s *AdminService) IsAdmin(callerID string) bool {
	return s.adminID != "" && callerID == s.adminID
}

func (s *AdminService) authorize(callerID string) error {
	if !s.IsAdmin(callerID) {
		s.d.Logger.Warn("admin access denied", zap.String("caller_id", callerID))
		return ErrForbidden
	}
	return nil
}

// StatsReport 统计快照与前 N 热销商品
func (s *AdminService) StatsReport(ctx context.Context, callerID string) (*StatsReport, error) {
	if err := s.authorize(callerID); err != nil {
		return nil, err
	}
	catalog := s.d.Stores.Catalog
	r := &StatsReport{Stats: s.d.Stores.Stats.Snapshot(), Top: []TopProduct{}}
	for _, t := range s.d.Stores.Stats.Top(s.topN, catalog.Rank) {
		name := t.ProductID
		if p, err := catalog.GetProduct(t.ProductID); err == nil {
			name = p.Name
		}
		r.Top = append(r.Top, TopProduct{ProductID: t.ProductID, Name: name, Sold: t.Sold})
	}
	r.Text = s.d.Messages.StatsReport(r)
	return r, nil
}

// ReplyToUser 管理员回复用户
func (s *AdminService) ReplyToUser(ctx context.Context, callerID, userID, text string) error {
	if err := s.authorize(callerID); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	userID = CanonicalUserID(userID)
	if userID == "" {
		return ErrInvalidUser
	}
	if err := s.d.Notifier.NotifyUser(ctx, userID, s.d.Messages.SupportReply(text)); err != nil {
		s.d.Monitor.RecordNotifyError()
		return fmt.Errorf("reply to %s: %w", userID, err)
	}
	return nil
}

// Broadcast 发送给所有已知用户，单个失败不影响后续发送
func (s *AdminService) Broadcast(ctx context.Context, callerID, text string) (*BroadcastResult, error) {
	if err := s.authorize(callerID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := s.d.Messages.Promotion(text)
	res := &BroadcastResult{}
	for _, uid := range s.d.Stores.Users.IDs() {
		if s.pacer != nil {
			if err := s.pacer.Wait(ctx); err != nil {
				return res, err
			}
		}
		if err := s.d.Notifier.NotifyUser(ctx, uid, msg); err != nil {
			res.Failed++
			s.d.Monitor.RecordNotifyError()
			s.d.Logger.Warn("broadcast to user failed", zap.String("user_id", uid), zap.Error(err))
			continue
		}
		res.Sent++
	}
	s.d.Monitor.RecordBroadcast()
	s.d.Logger.Info("broadcast done", zap.Int("sent", res.Sent), zap.Int("failed", res.Failed))
	return res, nil
}

// Audit 根据已支付订单重新计算统计，报告与当前统计的差异
func (s *AdminService) Audit(ctx context.Context, callerID string) (*AuditReport, error) {
	if err := s.authorize(callerID); err != nil {
		return nil, err
	}
	recorded := s.d.Stores.Stats.Snapshot()
	expected := &stats.Stats{
		TotalUsers:   int64(len(s.d.Stores.Users.IDs())),
		TotalRevenue: decimal.Zero,
		TopProducts:  map[string]int64{},
	}
	for _, o := range s.d.Stores.Orders.ListAll() {
		if !o.Paid() {
			continue
		}
		expected.TotalOrders++
		expected.TotalRevenue = expected.TotalRevenue.Add(o.Total)
		for pid, it := range o.Items {
			expected.TopProducts[pid] += it.Quantity
		}
	}

	r := &AuditReport{Recorded: recorded, Expected: expected}
	if recorded.TotalUsers != expected.TotalUsers {
		r.Drift = append(r.Drift, fmt.Sprintf("totalUsers: recorded %d, expected %d", recorded.TotalUsers, expected.TotalUsers))
	}
	if recorded.TotalOrders != expected.TotalOrders {
		r.Drift = append(r.Drift, fmt.Sprintf("totalOrders: recorded %d, expected %d", recorded.TotalOrders, expected.TotalOrders))
	}
	if !recorded.TotalRevenue.Equal(expected.TotalRevenue) {
		r.Drift = append(r.Drift, fmt.Sprintf("totalRevenue: recorded %s, expected %s",
			recorded.TotalRevenue.StringFixed(2), expected.TotalRevenue.StringFixed(2)))
	}
	for _, pid := range unionKeys(recorded.TopProducts, expected.TopProducts) {
		if recorded.TopProducts[pid] != expected.TopProducts[pid] {
			r.Drift = append(r.Drift, fmt.Sprintf("topProducts[%s]: recorded %d, expected %d",
				pid, recorded.TopProducts[pid], expected.TopProducts[pid]))
		}
	}
	r.Consistent = len(r.Drift) == 0
	return r, nil
}

// MonitorStats 运行指标
func (s *AdminService) MonitorStats(ctx context.Context, callerID string) (map[string]interface{}, error) {
	if err := s.authorize(callerID); err != nil {
		return nil, err
	}
	return s.d.Monitor.GetStats(), nil
}

func unionKeys(a, b map[string]int64) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var keys []string
	for _, m := range []map[string]int64{a, b} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
