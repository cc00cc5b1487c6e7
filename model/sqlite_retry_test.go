package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunWithSQLiteBusyRetry(t *testing.T) {
	t.Run("eventual success", func(t *testing.T) {
		attempts := 0
		err := runWithSQLiteBusyRetry(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, attempts)
	})

	t.Run("non busy error", func(t *testing.T) {
		attempts := 0
		err := runWithSQLiteBusyRetry(context.Background(), func() error {
			attempts++
			return errors.New("no such table")
		})
		require.Error(t, err)
		require.Equal(t, 1, attempts)
	})

	t.Run("gives up", func(t *testing.T) {
		attempts := 0
		err := runWithSQLiteBusyRetry(context.Background(), func() error {
			attempts++
			return errors.New("database is busy")
		})
		require.ErrorContains(t, err, "remained busy")
		require.Equal(t, sqliteBusyRetryAttempts+1, attempts)
	})

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(sqliteBusyRetryBaseDelay / 2)
			cancel()
		}()

		err := runWithSQLiteBusyRetry(ctx, func() error {
			return errors.New("database is locked")
		})
		require.ErrorContains(t, err, "context canceled")
	})
}

func TestShouldRetrySQLiteBusy(t *testing.T) {
	require.True(t, shouldRetrySQLiteBusy(errors.New("database is locked")))
	require.True(t, shouldRetrySQLiteBusy(errors.New("Database Table Is Locked")))
	require.False(t, shouldRetrySQLiteBusy(errors.New("constraint failed")))
	require.False(t, shouldRetrySQLiteBusy(nil))
}
