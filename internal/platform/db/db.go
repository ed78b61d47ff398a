package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"skima/internal/platform/config"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
)

// DB is a database/sql handle that knows which placeholder style its
// driver expects. Queries are written with "?" and rebound for Postgres.
type DB struct {
	*sql.DB
	Dialect Dialect
}

func Connect(ctx context.Context, cfg config.Config) (*DB, error) {
	dialect, dsn, err := ParseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		// one writer at a time; avoids SQLITE_BUSY under concurrent requests
		conn.SetMaxOpenConns(1)
		// an in-memory database lives only as long as its connection
		if !IsMemoryDSN(dsn) {
			conn.SetConnMaxLifetime(time.Hour)
		}
	} else {
		conn.SetConnMaxLifetime(time.Hour)
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return &DB{DB: conn, Dialect: dialect}, nil
}

// ParseURL maps a database_url to a driver and DSN. postgres:// URLs go to
// pgx; everything else is treated as a SQLite file.
func ParseURL(raw string) (Dialect, string, error) {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return "", "", fmt.Errorf("database url is empty")
	case strings.HasPrefix(value, "postgres://"), strings.HasPrefix(value, "postgresql://"):
		return DialectPostgres, value, nil
	case value == ":memory:":
		value = "file::memory:"
	case strings.HasPrefix(value, "sqlite://"):
		value = "file:" + strings.TrimPrefix(value, "sqlite://")
	case !strings.HasPrefix(value, "file:"):
		value = "file:" + value
	}
	if !strings.Contains(value, "_foreign_keys") {
		sep := "?"
		if strings.Contains(value, "?") {
			sep = "&"
		}
		value += sep + "_foreign_keys=on&_busy_timeout=5000"
	}
	return DialectSQLite, value, nil
}

// IsMemoryDSN reports whether a SQLite DSN names an in-memory database.
func IsMemoryDSN(dsn string) bool {
	path, query := sqlitePath(dsn)
	return path == "" || strings.HasPrefix(path, ":memory:") || strings.Contains(query, "mode=memory")
}

func sqlitePath(dsn string) (string, string) {
	path := strings.TrimPrefix(dsn, "file:")
	query := ""
	if idx := strings.Index(path, "?"); idx >= 0 {
		path, query = path[:idx], path[idx+1:]
	}
	return path, query
}

func ensureDir(dsn string) error {
	if IsMemoryDSN(dsn) {
		return nil
	}
	path, _ := sqlitePath(dsn)
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Rebind rewrites "?" placeholders to "$n" for Postgres.
func (d *DB) Rebind(query string) string {
	return Rebind(d.Dialect, query)
}

func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

type Tx struct {
	*sql.Tx
	Dialect Dialect
}

func (t *Tx) Rebind(query string) string {
	return Rebind(t.Dialect, query)
}

func (d *DB) Begin(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := d.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, Dialect: d.Dialect}, nil
}

// ReadOnly runs fn inside a read-only transaction that is always released.
func (d *DB) ReadOnly(ctx context.Context, fn func(*Tx) error) error {
	opts := &sql.TxOptions{ReadOnly: d.Dialect == DialectPostgres}
	tx, err := d.Begin(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	return fn(tx)
}

// InTx runs fn inside a transaction, committing when fn returns nil.
func (d *DB) InTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := d.Begin(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
