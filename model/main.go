package model

import (
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/songquanpeng/model-compare/common/config"
	"github.com/songquanpeng/model-compare/common/logger"
)

// Dialect names the SQL backend picked from SQL_DSN.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// OpenDB opens the database selected by dsn: empty means SQLite at
// SQLITE_PATH, postgres:// means PostgreSQL, anything else MySQL.
func OpenDB(dsn string) (*gorm.DB, Dialect, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"):
		db, err := openPostgreSQL(dsn)
		return db, DialectPostgres, err
	case dsn != "":
		db, err := openMySQL(dsn)
		return db, DialectMySQL, err
	default:
		db, err := openSQLite(config.SQLitePath)
		return db, DialectSQLite, err
	}
}

func openPostgreSQL(dsn string) (*gorm.DB, error) {
	logger.Logger.Info("using PostgreSQL as workspace database")
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open PostgreSQL")
	}
	return db, nil
}

func openMySQL(dsn string) (*gorm.DB, error) {
	logger.Logger.Info("using MySQL as workspace database")
	normalized, err := normalizeMySQLDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "normalize MySQL DSN")
	}

	db, err := gorm.Open(mysql.Open(normalized), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open MySQL")
	}
	return db, nil
}

func openSQLite(path string) (*gorm.DB, error) {
	logger.Logger.Info("SQL_DSN not set, using SQLite as workspace database")
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", path, config.SQLiteBusyTimeout)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open SQLite")
	}
	return db, nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(sqlDB.Close())
}
