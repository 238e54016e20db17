package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// SupportService 把用户的自由文本留言转发给管理员
type SupportService struct {
	d     Deps
	users *UserService
}

func NewSupportService(d Deps, users *UserService) *SupportService {
	return &SupportService{d: d.withDefaults(), users: users}
}

// Forward 转发留言，返回给用户的回执文案。转发失败只记录日志。
func (s *SupportService) Forward(ctx context.Context, userID, displayName, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	u, err := s.users.Resolve(ctx, userID)
	if err != nil {
		return "", err
	}
	userID = u.ID
	if err := s.d.Notifier.NotifyAdmin(ctx, s.d.Messages.SupportForward(userID, displayName, text)); err != nil {
		s.d.Monitor.RecordNotifyError()
		s.d.Logger.Warn("forward support message failed", zap.String("user_id", userID), zap.Error(err))
	}
	return s.d.Messages.SupportAck(), nil
}
