// Package database opens the blog's PostgreSQL connection and keeps its schema current.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lena210296/ProjectBlog/internal/config"
	"github.com/lena210296/ProjectBlog/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// Pool limits applied to every connection opened by Connect.
const (
	maxOpenConns    = 20
	maxIdleConns    = 4
	connMaxLifetime = 10 * time.Minute
)

// GormLogger routes GORM's query log into slog so SQL records carry the
// request id of the handler that issued them.
type GormLogger struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

// NewGormLogger returns a logger that reports queries at or above level.
func NewGormLogger(l *slog.Logger, level logger.LogLevel) *GormLogger {
	return &GormLogger{log: l, level: level, slow: slowQuery}
}

func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Info, slog.LevelInfo, msg, args)
}

func (g *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Warn, slog.LevelWarn, msg, args)
}

func (g *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Error, slog.LevelError, msg, args)
}

func (g *GormLogger) printf(ctx context.Context, min logger.LogLevel, lvl slog.Level, msg string, args []any) {
	if g.level < min {
		return
	}
	g.log.Log(ctx, lvl, fmt.Sprintf(msg, args...))
}

// Trace reports failed and slow statements; every statement is reported at Info.
// A missing row is an expected outcome of lookups and is never reported.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	took := time.Since(begin)

	var (
		lvl slog.Level
		msg string
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		lvl, msg = slog.LevelError, "sql statement failed"
	case g.slow > 0 && took > g.slow && g.level >= logger.Warn:
		lvl, msg = slog.LevelWarn, "sql statement slow"
	case g.level >= logger.Info:
		lvl, msg = slog.LevelInfo, "sql statement"
	default:
		return
	}

	stmt, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", stmt),
		slog.Int64("rows", rows),
		slog.Duration("took", took),
	}
	if lvl == slog.LevelError {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	g.log.LogAttrs(ctx, lvl, msg, attrs...)
}

// DSN renders cfg as a libpq keyword/value connection string.
func DSN(cfg *config.Config) string {
	mode := cfg.DBSSLMode
	if mode == "" {
		mode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, mode)
}

// redactedTarget names the database for logs without leaking the password.
func redactedTarget(cfg *config.Config) string {
	u := url.URL{Scheme: "postgres", User: url.User(cfg.DBUser), Host: cfg.DBHost + ":" + cfg.DBPort, Path: cfg.DBName}
	return u.String()
}

// Connect opens the blog database. Outside production the schema is
// migrated on startup; production deployments run migrations separately.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:         NewGormLogger(middleware.Logger, logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", redactedTarget(cfg), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	middleware.Logger.Info("database connected", "target", redactedTarget(cfg))

	if cfg.IsProduction() {
		return db, nil
	}
	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	middleware.Logger.Info("database schema migrated", "models", len(PersistentModels()))
	return db, nil
}

// Migrate creates or alters the tables for every blog model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("migrate blog schema: %w", err)
	}
	return nil
}
