package mysql

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/shopbot/internal/config"
	"github.com/example/shopbot/internal/datamodels/snapshot"
)

// dryRunDB 只生成 SQL，不连接数据库
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "shopbot:shopbot123@tcp(127.0.0.1:3306)/shopbot?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestUpsertSQL(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return upsert(tx, &snapshot.Snapshot{Name: snapshot.Orders, Payload: []byte(`{}`), UpdatedAt: time.Now()})
	})

	assert.Contains(t, sql, "INSERT INTO `snapshots`")
	assert.Contains(t, sql, "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, sql, "`payload`=VALUES(`payload`)")
	assert.Contains(t, sql, "`updated_at`=VALUES(`updated_at`)")
	assert.NotContains(t, sql, "`name`=VALUES(`name`)")
}

func TestLoadSQL(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return loadQuery(tx, snapshot.Users, &snapshot.Snapshot{})
	})

	assert.Contains(t, sql, "FROM `snapshots`")
	assert.Contains(t, sql, "name = 'users'")
	assert.Contains(t, sql, "LIMIT 1")
}

func TestTranslateErr(t *testing.T) {
	assert.ErrorIs(t, translateErr(gorm.ErrRecordNotFound), snapshot.ErrNotFound)
	assert.ErrorIs(t, translateErr(fmt.Errorf("query: %w", gorm.ErrRecordNotFound)), snapshot.ErrNotFound)

	other := errors.New("connection refused")
	assert.Equal(t, other, translateErr(other))
}

// 设置 SHOP_TEST_MYSQL_DSN 时对真实库跑一遍读写
func TestSnapshotRepoMySQL(t *testing.T) {
	dsn := os.Getenv("SHOP_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("SHOP_TEST_MYSQL_DSN not set")
	}
	db, err := Open(&config.MySQLConfig{DSN: dsn})
	require.NoError(t, err)

	name := fmt.Sprintf("test_%d", time.Now().UnixNano())
	t.Cleanup(func() { db.Where("name = ?", name).Delete(&snapshot.Snapshot{}) })

	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	_, err = repo.Load(ctx, name)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	require.NoError(t, repo.Save(ctx, name, []byte(`{"a":1}`)))
	require.NoError(t, repo.Save(ctx, name, []byte(`{"a":2}`)))

	data, err := repo.Load(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	var n int64
	require.NoError(t, db.Model(&snapshot.Snapshot{}).Where("name = ?", name).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
