package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Deliverer 把消息送达最终接收方（会话传输层）
type Deliverer interface {
	Deliver(ctx context.Context, msg *Message) error
}

type logDeliverer struct {
	log *zap.Logger
}

// NewLogDeliverer 只写日志的投递器
func NewLogDeliverer(log *zap.Logger) Deliverer {
	return &logDeliverer{log: log}
}

func (d *logDeliverer) Deliver(_ context.Context, msg *Message) error {
	d.log.Info("deliver notification",
		zap.String("recipient", msg.Recipient),
		zap.String("user_id", msg.UserID),
		zap.Time("sent_at", msg.SentAt),
		zap.String("text", msg.Text))
	return nil
}

// Worker 消费通知队列并投递
type Worker struct {
	conn     *amqp.Connection
	queue    string
	deliver  Deliverer
	log      *zap.Logger
	prefetch int
}

// NewWorker 创建通知消费者
func NewWorker(conn *amqp.Connection, queue string, d Deliverer, log *zap.Logger) *Worker {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{conn: conn, queue: queue, deliver: d, log: log, prefetch: 16}
}

// Run 手动确认模式消费，ctx 取消或通道关闭时返回
func (w *Worker) Run(ctx context.Context) error {
	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(w.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err = ch.Qos(w.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := ch.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	w.log.Info("notify worker started", zap.String("queue", w.queue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.UserID == "" {
		w.log.Warn("invalid notification, dropped", zap.ByteString("body", d.Body), zap.Error(err))
		// 消息格式错误，拒绝并丢弃
		_ = d.Nack(false, false)
		return
	}
	if err := w.deliver.Deliver(ctx, &msg); err != nil {
		w.log.Warn("deliver notification failed, requeue", zap.String("user_id", msg.UserID), zap.Error(err))
		// 拒绝消息并重新入队（已重投过的不再入队）
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}
