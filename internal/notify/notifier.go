package notify

import (
	"context"
	"time"
)

// Notifier 通知网关：把文本消息投递给用户或管理员
type Notifier interface {
	NotifyUser(ctx context.Context, userID, text string) error
	NotifyAdmin(ctx context.Context, text string) error
}

const (
	RecipientUser  = "user"
	RecipientAdmin = "admin"
)

// Message 投递给传输层的消息体
type Message struct {
	Recipient string    `json:"recipient"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sent_at"`
}
