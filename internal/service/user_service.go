package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/example/shopbot/internal/datamodels/snapshot"
	"github.com/example/shopbot/internal/datamodels/user"
)

type UserService struct {
	d Deps
}

func NewUserService(d Deps) *UserService {
	return &UserService{d: d.withDefaults()}
}

// CanonicalUserID 外部调用方 ID 的规范形式，锁、订单归属与存储都以它为键
func CanonicalUserID(userID string) string {
	return strings.TrimSpace(userID)
}

// Resolve 返回用户，首次出现时创建并计入用户总数
func (s *UserService) Resolve(ctx context.Context, userID string) (*user.User, error) {
	userID = CanonicalUserID(userID)
	if userID == "" {
		return nil, ErrInvalidUser
	}
	u, created := s.d.Stores.Users.GetOrCreate(userID, s.d.Clock.Now())
	if created {
		s.d.Stores.Stats.RecordUser()
		s.d.Store.MarkDirty(snapshot.Users, snapshot.Stats)
		s.d.Logger.Info("new user", zap.String("user_id", userID))
	}
	return u, nil
}
