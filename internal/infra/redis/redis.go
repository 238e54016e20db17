package redis

import (
	"fmt"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/shopbot/internal/config"
)

// New 创建 Redis 连接池
func New(cfg *config.RedisConfig) (radix.Client, error) {
	size := cfg.PoolSize
	if size <= 0 {
		size = 10
	}
	pool, err := radix.NewPool("tcp", cfg.Addr, size)
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return pool, nil
}
