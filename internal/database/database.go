// Package database centralises sqlx connection helpers and schema
// migrations.  The driver is go-sql-driver/mysql, which also works with
// MariaDB.
//
// Public entry points:
//
//	Open(ctx, opts)       – build the DSN, open the pool, Ping with retries.
//	Migrate(ctx, db, fsys) – apply goose migrations from an embedded FS.
//
// Open pings the database before returning so callers can fail fast during
// bootstrap.  Callers should Close() the returned *sqlx.DB when no longer
// needed.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Options tunes one pool.  Zero values pick conservative defaults.
type Options struct {
	DSN      string
	Password string // injected into DSN when non-empty
	MaxOpen  int
	MaxIdle  int
	Lifetime time.Duration
	Attempts int // Ping attempts before giving up
}

func (o *Options) defaults() {
	if o.MaxOpen == 0 {
		o.MaxOpen = 15
	}
	if o.MaxIdle == 0 {
		o.MaxIdle = 5
	}
	if o.Lifetime == 0 {
		o.Lifetime = 30 * time.Minute
	}
	if o.Attempts == 0 {
		o.Attempts = 5
	}
}

// Open returns a pinged *sqlx.DB.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	opts.defaults()

	dsn, err := BuildDSN(opts.DSN, opts.Password)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(opts.MaxOpen)
	db.SetMaxIdleConns(opts.MaxIdle)
	db.SetConnMaxLifetime(opts.Lifetime)

	wait := 500 * time.Millisecond
	for i := 1; ; i++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if i >= opts.Attempts || ctx.Err() != nil {
			break
		}
		zap.S().Warnw("database ping failed, retrying", "attempt", i, "in", wait, "err", err)
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		wait *= 2
	}
	_ = db.Close()
	return nil, fmt.Errorf("database ping: %w", err)
}

// BuildDSN parses dsn, injects password, and enables the flags the
// repositories rely on: parseTime for DATETIME columns, and clientFoundRows
// so an UPDATE that changes nothing still reports its matched row.
func BuildDSN(dsn, password string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	if password != "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}
