package model

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/model-compare/common"
	"github.com/songquanpeng/model-compare/common/config"
	"github.com/songquanpeng/model-compare/common/logger"
)

const (
	BackendSQL    = "sql"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ResolveBackend picks the workspace backend. An explicit choice wins,
// otherwise Redis is used when a connection string is configured.
func ResolveBackend(explicit, redisConnString string) (string, error) {
	switch explicit {
	case BackendSQL, BackendRedis, BackendMemory:
		return explicit, nil
	case "":
		if redisConnString != "" {
			return BackendRedis, nil
		}
		return BackendSQL, nil
	default:
		return "", errors.Errorf("unknown store backend %q", explicit)
	}
}

// OpenStore connects the workspace store selected by the configuration.
func OpenStore(ctx context.Context) (Store, error) {
	backend, err := ResolveBackend(config.StoreBackend, config.RedisConnString)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendRedis:
		rdb, err := common.NewRedisClient(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		logger.Logger.Info("workspace stored in redis")
		return NewRedisStore(rdb), nil
	case BackendMemory:
		logger.Logger.Warn("workspace stored in memory, changes are lost on restart")
		return NewMemoryStore(), nil
	default:
		db, dialect, err := OpenDB(config.SQLDSN)
		if err != nil {
			return nil, errors.Wrap(err, "open database")
		}
		store, err := NewSQLStore(db, dialect)
		if err != nil {
			_ = closeDB(db)
			return nil, err
		}
		logger.Logger.Info("workspace stored in database", zap.String("dialect", string(dialect)))
		return store, nil
	}
}
