package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/shopbot/internal/datamodels/snapshot"
)

type snapshotRepo struct {
	db *gorm.DB
}

// NewSnapshotRepository 创建 MySQL 快照仓储，每个 store 一行
func NewSnapshotRepository(db *gorm.DB) snapshot.Gateway {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) Load(ctx context.Context, name string) ([]byte, error) {
	var s snapshot.Snapshot
	if err := loadQuery(r.db.WithContext(ctx), name, &s).Error; err != nil {
		return nil, translateErr(err)
	}
	return s.Payload, nil
}

// Save 整行覆盖（INSERT ... ON DUPLICATE KEY UPDATE）
func (r *snapshotRepo) Save(ctx context.Context, name string, payload []byte) error {
	s := snapshot.Snapshot{
		Name:      name,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}
	return upsert(r.db.WithContext(ctx), &s).Error
}

func loadQuery(tx *gorm.DB, name string, dst *snapshot.Snapshot) *gorm.DB {
	return tx.Where("name = ?", name).First(dst)
}

func upsert(tx *gorm.DB, s *snapshot.Snapshot) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(s)
}

// translateErr 把 GORM 的未找到映射为网关约定的 snapshot.ErrNotFound
func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return snapshot.ErrNotFound
	}
	return err
}
