package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和业务指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	PersistErrors  int64
	NotifyErrors   int64
	CheckoutErrors int64

	// 业务统计
	CartUpdates      int64
	OrdersCreated    int64
	PaymentsSuccess  int64
	PaymentsRejected int64
	Broadcasts       int64

	// 时间统计
	LastPersistError time.Time
	LastNotifyError  time.Time
	LastPaymentTime  time.Time
}

// NewMonitor 创建监控实例
func NewMonitor() *Monitor {
	return &Monitor{}
}

// RecordPersistError 记录持久化错误
func (m *Monitor) RecordPersistError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistErrors++
	m.LastPersistError = time.Now()
}

// RecordNotifyError 记录通知发送错误
func (m *Monitor) RecordNotifyError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyErrors++
	m.LastNotifyError = time.Now()
}

// RecordCartUpdate 记录购物车修改
func (m *Monitor) RecordCartUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CartUpdates++
}

// RecordOrderCreated 记录创建订单
func (m *Monitor) RecordOrderCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersCreated++
}

// RecordPayment 记录支付成功
func (m *Monitor) RecordPayment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentsSuccess++
	m.LastPaymentTime = time.Now()
}

// RecordPaymentRejected 记录支付因库存不足等原因失败
func (m *Monitor) RecordPaymentRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentsRejected++
	m.CheckoutErrors++
}

// RecordCheckoutError 记录下单错误
func (m *Monitor) RecordCheckoutError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutErrors++
}

// RecordBroadcast 记录一次广播
func (m *Monitor) RecordBroadcast() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Broadcasts++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	total := m.PaymentsSuccess + m.PaymentsRejected
	if total > 0 {
		successRate = float64(m.PaymentsSuccess) / float64(total) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"persist":  m.PersistErrors,
			"notify":   m.NotifyErrors,
			"checkout": m.CheckoutErrors,
		},
		"performance": map[string]interface{}{
			"cart_updates":         m.CartUpdates,
			"orders_created":       m.OrdersCreated,
			"payments_success":     m.PaymentsSuccess,
			"payments_rejected":    m.PaymentsRejected,
			"payment_success_rate": successRate,
			"broadcasts":           m.Broadcasts,
		},
		"last_events": map[string]interface{}{
			"persist_error": m.LastPersistError,
			"notify_error":  m.LastNotifyError,
			"last_payment":  m.LastPaymentTime,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistErrors = 0
	m.NotifyErrors = 0
	m.CheckoutErrors = 0
	m.CartUpdates = 0
	m.OrdersCreated = 0
	m.PaymentsSuccess = 0
	m.PaymentsRejected = 0
	m.Broadcasts = 0
}
