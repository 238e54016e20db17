package notify

import (
	"context"

	"go.uber.org/zap"
)

type logNotifier struct {
	log     *zap.Logger
	adminID string
}

// NewLogNotifier 只写日志的通知器，用于本地运行与无传输层部署
func NewLogNotifier(log *zap.Logger, adminID string) Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &logNotifier{log: log.Named("notify"), adminID: adminID}
}

func (n *logNotifier) NotifyUser(ctx context.Context, userID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info("notify user", zap.String("user_id", userID), zap.String("text", text))
	return nil
}

func (n *logNotifier) NotifyAdmin(ctx context.Context, text string) error {
	if n.adminID == "" {
		n.log.Debug("admin id not configured, drop admin notification", zap.String("text", text))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info("notify admin", zap.String("user_id", n.adminID), zap.String("text", text))
	return nil
}
