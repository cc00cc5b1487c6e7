package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gosqlmysql "github.com/go-sql-driver/mysql"
)

// normalizeMySQLDSN accepts both driver DSNs and mysql:// URLs and returns a
// driver DSN with parseTime enabled. The location defaults to UTC.
func normalizeMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(strings.ToLower(dsn), "mysql://") {
		converted, err := mysqlURLToDSN(dsn)
		if err != nil {
			return "", err
		}
		dsn = converted
	}

	cfg, err := gosqlmysql.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse MySQL DSN")
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}

func mysqlURLToDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrap(err, "parse mysql:// DSN")
	}
	if u.Host == "" {
		return "", errors.New("mysql DSN missing host")
	}

	cfg := gosqlmysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	dsn := cfg.FormatDSN()
	if u.RawQuery != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + u.RawQuery
	}
	return dsn, nil
}
