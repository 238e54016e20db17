package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultQueue 通知队列名
const DefaultQueue = "shop_notifications"

type amqpNotifier struct {
	conn    *amqp.Connection
	queue   string
	adminID string
	log     *zap.Logger
	now     func() time.Time
}

// NewAMQPNotifier 把通知写入 RabbitMQ 持久化队列，由传输层消费投递
func NewAMQPNotifier(conn *amqp.Connection, queue, adminID string, log *zap.Logger) (Notifier, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = zap.NewNop()
	}
	n := &amqpNotifier{
		conn:    conn,
		queue:   queue,
		adminID: adminID,
		log:     log.Named("notify"),
		now:     time.Now,
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()
	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return n, nil
}

func (n *amqpNotifier) NotifyUser(ctx context.Context, userID, text string) error {
	return n.publish(ctx, newMessage(RecipientUser, userID, text, n.now()))
}

func (n *amqpNotifier) NotifyAdmin(ctx context.Context, text string) error {
	if n.adminID == "" {
		n.log.Debug("admin id not configured, drop admin notification", zap.String("text", text))
		return nil
	}
	return n.publish(ctx, newMessage(RecipientAdmin, n.adminID, text, n.now()))
}

func (n *amqpNotifier) publish(ctx context.Context, msg *Message) error {
	body, err := encodeMessage(msg)
	if err != nil {
		return err
	}

	ch, err := n.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.PublishWithContext(
		ctx,
		"",
		n.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.SentAt,
			Body:         body,
		},
	)
}

func newMessage(recipient, userID, text string, at time.Time) *Message {
	return &Message{Recipient: recipient, UserID: userID, Text: text, SentAt: at.UTC()}
}

func encodeMessage(msg *Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return body, nil
}
