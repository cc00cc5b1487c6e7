package common

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/go-redis/redis/v8"

	"github.com/songquanpeng/model-compare/common/config"
	"github.com/songquanpeng/model-compare/common/logger"
)

// NewRedisClient connects to REDIS_CONN_STRING and verifies the connection with a ping.
// A comma separated address list together with REDIS_MASTER_NAME selects the universal client.
func NewRedisClient(ctx context.Context) (redis.UniversalClient, error) {
	if config.RedisConnString == "" {
		return nil, errors.New("REDIS_CONN_STRING not set")
	}

	var rdb redis.UniversalClient
	if config.RedisMasterName == "" {
		opt, err := redis.ParseURL(config.RedisConnString)
		if err != nil {
			return nil, errors.Wrap(err, "parse Redis connection string")
		}
		rdb = redis.NewClient(opt)
		logger.Logger.Info("Redis is enabled")
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:      strings.Split(config.RedisConnString, ","),
			Password:   config.RedisPassword,
			MasterName: config.RedisMasterName,
		})
		logger.Logger.Info("Redis cluster mode enabled")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "Redis ping test failed")
	}

	return rdb, nil
}
