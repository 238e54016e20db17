package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 SHOP_SHOP_ADMIN_ID / SHOP_STORE_BACKEND
const EnvPrefix = "SHOP"

// Load 从 dir 目录下的 config.yaml（可选）与环境变量加载配置，未配置项使用 DefaultConfig
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容原部署使用的环境变量名
	_ = v.BindEnv("shop.admin_id", EnvPrefix+"_SHOP_ADMIN_ID", "ADMIN_ID")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("admin_server.host", d.AdminServer.Host)
	v.SetDefault("admin_server.port", d.AdminServer.Port)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("mysql.dsn", d.MySQL.DSN)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("rabbitmq.url", d.RabbitMQ.URL)
	v.SetDefault("rabbitmq.queue", d.RabbitMQ.Queue)
	v.SetDefault("notify.backend", d.Notify.Backend)

	v.SetDefault("persist.checkpoint_interval", d.Persist.CheckpointInterval)
	v.SetDefault("persist.max_retries", d.Persist.MaxRetries)
	v.SetDefault("persist.retry_backoff", d.Persist.RetryBackoff)

	v.SetDefault("shop.admin_id", d.Shop.AdminID)
	v.SetDefault("shop.low_stock_threshold", d.Shop.LowStockThreshold)
	v.SetDefault("shop.currency", d.Shop.Currency)
	v.SetDefault("shop.top_n", d.Shop.TopN)
	v.SetDefault("shop.history_limit", d.Shop.HistoryLimit)

	v.SetDefault("rate_limit.capacity", d.RateLimit.Capacity)
	v.SetDefault("rate_limit.refill_per_second", d.RateLimit.RefillPerSecond)
	v.SetDefault("broadcast.per_second", d.Broadcast.PerSecond)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}
