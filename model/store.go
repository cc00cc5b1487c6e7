package model

import (
	"context"
	"encoding/json"

	"github.com/Laisky/errors/v2"
)

// Store keeps whole values under stable string keys. Set replaces the
// previous value entirely and Get returns the last written one.
type Store interface {
	// Get returns found=false when the key was never written.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// getJSON decodes the value under key into out. It reports whether the key
// existed.
func getJSON(ctx context.Context, store Store, key string, out any) (bool, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return false, errors.Wrapf(err, "read %s", key)
	}
	if !found {
		return false, nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func setJSON(ctx context.Context, store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	if err = store.Set(ctx, key, raw); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	return nil
}
