package config

import (
	"strings"
	"time"

	"github.com/songquanpeng/model-compare/common/env"
)

var (
	// SystemName is reported by the status endpoint and the terminal harness banner.
	SystemName = env.String("SYSTEM_NAME", "Model Compare")

	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// SQLDSN selects the SQL backend: empty means SQLite, postgres:// means PostgreSQL, anything else MySQL.
	SQLDSN = strings.TrimSpace(env.String("SQL_DSN", ""))
	// SQLitePath is the database file used when SQL_DSN is empty.
	SQLitePath = env.String("SQLITE_PATH", "model-compare.db")
	// SQLiteBusyTimeout is passed to SQLite as _busy_timeout (milliseconds).
	SQLiteBusyTimeout = env.Int("SQLITE_BUSY_TIMEOUT", 3000)

	// RedisConnString enables the Redis workspace backend when set.
	RedisConnString = strings.TrimSpace(env.String("REDIS_CONN_STRING", ""))
	// RedisMasterName switches the Redis client to sentinel/cluster mode.
	RedisMasterName = strings.TrimSpace(env.String("REDIS_MASTER_NAME", ""))
	// RedisPassword is used together with RedisMasterName.
	RedisPassword = env.String("REDIS_PASSWORD", "")

	// StoreBackend forces a workspace backend: sql, redis or memory. Empty derives it from REDIS_CONN_STRING.
	StoreBackend = strings.ToLower(strings.TrimSpace(env.String("STORE_BACKEND", "")))

	// ModelsCacheTTL bounds how long a fetched models list is reused before hitting the provider again.
	ModelsCacheTTL = time.Duration(env.Int("MODELS_CACHE_TTL", 600)) * time.Second

	// RunTimeout bounds a single slot's stream (seconds). Zero keeps streams open until completion or abort.
	RunTimeout = time.Duration(env.Int("RUN_TIMEOUT", 0)) * time.Second
	// ModelsFetchTimeout bounds the one-shot models-list request (seconds).
	ModelsFetchTimeout = time.Duration(env.Int("MODELS_FETCH_TIMEOUT", 30)) * time.Second
	// HTTPProxyURL routes outbound provider traffic through a proxy when set.
	HTTPProxyURL = strings.TrimSpace(env.String("HTTP_PROXY_URL", ""))

	// DefaultSlotCount is the number of empty slots seeded into a fresh workspace.
	DefaultSlotCount = env.Int("DEFAULT_SLOT_COUNT", 3)

	// FrontendDir serves a prebuilt UI from disk when set.
	FrontendDir = strings.TrimSpace(env.String("FRONTEND_DIR", ""))

	// EnablePrometheusMetrics exposes /metrics and records run metrics.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)

	// ShutdownTimeoutSec bounds how long shutdown waits for in-flight batches to drain.
	ShutdownTimeoutSec = env.Int("SHUTDOWN_TIMEOUT", 30)

	// CORSAllowOrigins lists origins allowed to call the API. Empty allows all.
	CORSAllowOrigins = env.String("CORS_ALLOW_ORIGINS", "")
)
