package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shareit/internal/backoff"
	"shareit/internal/config"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DB struct {
	db     *gorm.DB
	logger *zerolog.Logger
}

type txKey struct{}

// Open connects with retries and migrates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	policy := backoff.RetryPolicy{
		MaxRetries:   cfg.Connect.MaxRetries,
		InitialDelay: cfg.Connect.InitialDelay,
		MaxDelay:     cfg.Connect.MaxDelay,
	}

	var gdb *gorm.DB
	err := policy.Retry(ctx, func(ctx context.Context) error {
		conn, err := connect(cfg)
		if err != nil {
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}
		gdb = conn
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("database connect failed")
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db := &DB{db: gdb, logger: logger}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.IsPostgres() {
		logger.Info().Msg("database ready (postgres)")
	} else {
		logger.Info().Str("path", cfg.Path).Msg("database ready (sqlite)")
	}
	return db, nil
}

func connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	if cfg.IsPostgres() {
		db, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, err
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		return db, nil
	}

	if dir := filepath.Dir(cfg.Path); dir != "." && cfg.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path+"?_busy_timeout=5000"), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection keeps transactions serialized.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates every table.
func (d *DB) Migrate(ctx context.Context) error {
	err := d.db.WithContext(ctx).AutoMigrate(
		&userModel{},
		&itemModel{},
		&bookingModel{},
		&requestModel{},
		&commentModel{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// WithinTx runs fn in a transaction. Calls made with the context fn receives
// join that transaction; nested calls reuse it.
func (d *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (d *DB) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func paginate(q *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}
