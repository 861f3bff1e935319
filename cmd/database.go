package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/library-management/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const driverName = "pgx"

// initDB opens the shared connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driverName, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// openGorm layers gorm over the pool from initDB so both share connections.
func openGorm(db *sqlx.DB, lg *slog.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger: gormLogger.New(slogWriter{lg}, gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// slogWriter routes gorm's printf-style output to slog.
type slogWriter struct {
	lg *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.lg.Warn(fmt.Sprintf(format, args...), "component", "gorm")
}
