package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/songquanpeng/model-compare/common"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := store.Get(ctx, KeyProviders)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, KeyProviders, []byte(`[{"id":"a"}]`)))
	require.NoError(t, store.Set(ctx, KeyProviders, []byte(`[]`)))
	require.NoError(t, store.Set(ctx, KeyModelSlots, []byte(`[{"id":"s"}]`)))

	value, found, err := store.Get(ctx, KeyProviders)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[]`, string(value))

	value, found, err = store.Get(ctx, KeyModelSlots)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[{"id":"s"}]`, string(value))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)

	// callers cannot alias stored bytes
	buf := []byte(`"x"`)
	require.NoError(t, store.Set(context.Background(), "k", buf))
	buf[1] = 'y'
	got, _, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, `"x"`, string(got))

	require.NoError(t, store.Close())
}

func TestSQLStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.db")
	db, err := openSQLite(path)
	require.NoError(t, err)

	store, err := NewSQLStore(db, DialectSQLite)
	require.NoError(t, err)
	exerciseStore(t, store)
	require.NoError(t, store.Close())

	// values survive reopening the database
	db, err = openSQLite(path)
	require.NoError(t, err)
	store, err = NewSQLStore(db, DialectSQLite)
	require.NoError(t, err)
	defer store.Close()

	value, found, err := store.Get(context.Background(), KeyModelSlots)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[{"id":"s"}]`, string(value))
}

func setupMySQLMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return &SQLStore{db: gdb, dialect: DialectMySQL}, mock
}

func TestSQLStoreErrors(t *testing.T) {
	t.Run("select failure", func(t *testing.T) {
		store, mock := setupMySQLMockStore(t)
		mock.ExpectQuery("SELECT \\* FROM `workspace_values`").
			WillReturnError(errors.New("connection reset"))

		_, found, err := store.Get(context.Background(), KeyProviders)
		require.ErrorContains(t, err, "connection reset")
		require.False(t, found)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		store, mock := setupMySQLMockStore(t)
		mock.ExpectQuery("SELECT \\* FROM `workspace_values`").
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

		_, found, err := store.Get(context.Background(), KeyProviders)
		require.NoError(t, err)
		require.False(t, found)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert failure", func(t *testing.T) {
		store, mock := setupMySQLMockStore(t)
		mock.ExpectExec("INSERT INTO `workspace_values`").
			WillReturnError(errors.New("read-only"))

		err := store.Set(context.Background(), KeyProviders, []byte(`[]`))
		require.ErrorContains(t, err, "read-only")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert", func(t *testing.T) {
		store, mock := setupMySQLMockStore(t)
		mock.ExpectExec("INSERT INTO `workspace_values` .* ON DUPLICATE KEY UPDATE").
			WithArgs(KeyProviders, `[]`, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Set(context.Background(), KeyProviders, []byte(`[]`)))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisStore(t *testing.T) {
	if os.Getenv("REDIS_CONN_STRING") == "" {
		t.Skip("REDIS_CONN_STRING not set")
	}

	client, err := common.NewRedisClient(context.Background())
	require.NoError(t, err)

	store := NewRedisStore(client)
	store.prefix = "model-compare-test:" + t.Name() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		for _, key := range []string{KeyProviders, KeyModelSlots} {
			client.Del(ctx, store.prefix+key)
		}
		_ = store.Close()
	})

	exerciseStore(t, store)
}

func TestResolveBackend(t *testing.T) {
	cases := []struct {
		explicit, redis, expect string
	}{
		{"", "", BackendSQL},
		{"", "redis://localhost:6379", BackendRedis},
		{BackendMemory, "redis://localhost:6379", BackendMemory},
		{BackendSQL, "redis://localhost:6379", BackendSQL},
	}
	for _, tc := range cases {
		got, err := ResolveBackend(tc.explicit, tc.redis)
		require.NoError(t, err)
		require.Equal(t, tc.expect, got)
	}

	_, err := ResolveBackend("etcd", "")
	require.Error(t, err)
}
