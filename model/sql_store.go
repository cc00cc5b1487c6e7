package model

import (
	"context"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/songquanpeng/model-compare/common/helper"
)

// KeyValue is one row of the workspace table.
type KeyValue struct {
	Key       string `json:"key" gorm:"primaryKey;size:191"`
	Value     string `json:"value" gorm:"type:text"`
	UpdatedAt int64  `json:"updated_at" gorm:"type:bigint"`
}

func (KeyValue) TableName() string {
	return "workspace_values"
}

// SQLStore persists values in a single key/value table.
type SQLStore struct {
	db      *gorm.DB
	dialect Dialect
}

// NewSQLStore migrates the table and wraps db.
func NewSQLStore(db *gorm.DB, dialect Dialect) (*SQLStore, error) {
	if err := db.AutoMigrate(&KeyValue{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate KeyValue")
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row KeyValue
	err := s.retry(ctx, func() error {
		return s.db.WithContext(ctx).
			Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
			Take(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "select %s", key)
	}
	return []byte(row.Value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	row := KeyValue{Key: key, Value: string(value), UpdatedAt: helper.GetTimestamp()}
	err := s.retry(ctx, func() error {
		return s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&row).Error
	})
	if err != nil {
		return errors.Wrapf(err, "upsert %s", key)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return closeDB(s.db)
}

func (s *SQLStore) retry(ctx context.Context, op func() error) error {
	if s.dialect != DialectSQLite {
		return op()
	}
	return runWithSQLiteBusyRetry(ctx, op)
}
