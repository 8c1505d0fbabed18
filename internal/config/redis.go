package config

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// RedisConfig addresses the Redis server backing the response cache
// and the rate limiter.  Addr wins over Host/Port when both are set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

func setRedisDefaults(v *viper.Viper) {
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TLS", false)
}

func redisFromViper(v *viper.Viper) RedisConfig {
	addr := v.GetString("REDIS_ADDR")
	if host, port := v.GetString("REDIS_HOST"), v.GetString("REDIS_PORT"); addr == "" && host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	return RedisConfig{
		Addr:     addr,
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TLS:      v.GetBool("REDIS_TLS"),
	}
}

// NewRedisClient connects to Redis and pings it with a short timeout.
// It returns nil when the server is unreachable; callers then run
// without caching and rate limiting.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", cfg.Addr).Warn("redis unavailable, cache and rate limit disabled")
		_ = client.Close()
		return nil
	}
	return client
}
