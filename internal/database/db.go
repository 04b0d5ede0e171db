package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"

	"github.com/iliyamo/venue-booking/internal/config"
)

// Supported driver names, as registered with database/sql.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// Open connects to the configured store, applies the pool limits and
// verifies the connection within DBConnectTimeout.
func Open(cfg config.Config) (*sqlx.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	timeout := cfg.DBConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

func open(cfg config.Config) (*sqlx.DB, error) {
	switch cfg.DBDriver {
	case DriverMySQL:
		return sqlx.Open(DriverMySQL, MySQLDSN(cfg))
	case DriverPostgres:
		connCfg, err := pgx.ParseConfig(PostgresDSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		return sqlx.NewDb(stdlib.OpenDB(*connCfg), DriverPostgres), nil
	case DriverSQLite:
		return sqlx.Open(DriverSQLite, SQLiteDSN(cfg.DBPath))
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

// MySQLDSN builds the go-sql-driver DSN. parseTime maps DATETIME to
// time.Time and loc=UTC keeps stored times consistent. clientFoundRows makes
// an UPDATE that changes nothing still report the matched row.
func MySQLDSN(cfg config.Config) string {
	m := mysql.NewConfig()
	m.User = cfg.DBUser
	m.Passwd = cfg.DBPass
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	m.DBName = cfg.DBName
	m.ParseTime = true
	m.ClientFoundRows = true
	m.Loc = time.UTC
	m.Timeout = cfg.DBConnectTimeout
	m.Params = map[string]string{"charset": "utf8mb4"}
	return m.FormatDSN()
}

// PostgresDSN builds a postgres:// URL understood by pgx.
func PostgresDSN(cfg config.Config) string {
	q := url.Values{}
	q.Set("sslmode", "disable")
	if cfg.DBConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprint(int(cfg.DBConnectTimeout.Seconds())))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPass),
		Host:     net.JoinHostPort(cfg.DBHost, cfg.DBPort),
		Path:     "/" + cfg.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// SQLiteDSN enables foreign keys and a busy timeout so concurrent writers
// wait instead of failing with SQLITE_BUSY.
func SQLiteDSN(path string) string {
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}
