// Package bootstrap 组装进程启动所需的 store、持久化网关与通知网关。
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/example/shopbot/internal/config"
	"github.com/example/shopbot/internal/datamodels/snapshot"
	"github.com/example/shopbot/internal/infra/mq"
	redisinfra "github.com/example/shopbot/internal/infra/redis"
	"github.com/example/shopbot/internal/notify"
	"github.com/example/shopbot/internal/persist"
	"github.com/example/shopbot/internal/repository/file"
	"github.com/example/shopbot/internal/repository/memory"
	"github.com/example/shopbot/internal/repository/mysql"
	redisrepo "github.com/example/shopbot/internal/repository/redis"
	"github.com/example/shopbot/internal/service"
)

const (
	BackendFile     = "file"
	BackendMySQL    = "mysql"
	BackendRedis    = "redis"
	BackendLog      = "log"
	BackendRabbitMQ = "rabbitmq"
)

// Stores 进程内的全部内存 store
type Stores struct {
	Catalog *memory.CatalogRepo
	Users   *memory.UserRepo
	Orders  *memory.OrderRepo
	Stats   *memory.StatsRepo
}

// NewStores 创建空 store
func NewStores() *Stores {
	return &Stores{
		Catalog: memory.NewCatalogRepository(),
		Users:   memory.NewUserRepository(),
		Orders:  memory.NewOrderRepository(),
		Stats:   memory.NewStatsRepository(),
	}
}

// Snapshotters 按持久化名称返回各 store 的序列化器，顺序与 snapshot.Names 一致
func (s *Stores) Snapshotters() map[string]persist.Snapshotter {
	return map[string]persist.Snapshotter{
		snapshot.Products:   s.Catalog.ProductSnapshotter(),
		snapshot.Categories: s.Catalog.CategorySnapshotter(),
		snapshot.Users:      s.Users,
		snapshot.Orders:     s.Orders,
		snapshot.Stats:      s.Stats,
	}
}

// Register 把全部 store 注册到写回器
func (s *Stores) Register(p *persist.Persister) {
	all := s.Snapshotters()
	for _, name := range snapshot.Names {
		p.Register(name, all[name])
	}
}

// Service 服务层视图
func (s *Stores) Service() service.Stores {
	return service.Stores{
		Catalog: s.Catalog,
		Users:   s.Users,
		Orders:  s.Orders,
		Stats:   s.Stats,
	}
}

// OpenGateway 按后端名称创建持久化网关，返回的 closer 释放底层连接
func OpenGateway(cfg *config.Config, backend string) (snapshot.Gateway, func(), error) {
	switch backend {
	case "", BackendFile:
		gw, err := file.NewSnapshotRepository(cfg.Store.Dir)
		return gw, func() {}, err

	case BackendMySQL:
		db, err := mysql.Open(&cfg.MySQL)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return mysql.NewSnapshotRepository(db), closer, nil

	case BackendRedis:
		client, err := redisinfra.New(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redisrepo.NewSnapshotRepository(client), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", backend)
}

// OpenNotifier 按配置创建通知网关
func OpenNotifier(cfg *config.Config, log *zap.Logger) (notify.Notifier, func(), error) {
	switch cfg.Notify.Backend {
	case "", BackendLog:
		return notify.NewLogNotifier(log, cfg.Shop.AdminID), func() {}, nil

	case BackendRabbitMQ:
		conn, err := mq.New(&cfg.RabbitMQ)
		if err != nil {
			return nil, nil, err
		}
		n, err := notify.NewAMQPNotifier(conn, cfg.RabbitMQ.Queue, cfg.Shop.AdminID, log)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return n, func() { _ = conn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
}
