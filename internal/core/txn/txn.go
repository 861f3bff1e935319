package txn

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

type ctxKey struct{}

// Manager runs units of work inside a single gorm transaction.
type Manager struct {
	db       *gorm.DB
	snapshot *sql.TxOptions
}

type Option func(*Manager)

// WithSnapshotIsolation makes Snapshot open read-only repeatable-read
// transactions. Drivers without isolation support should not use it.
func WithSnapshotIsolation() Option {
	return func(m *Manager) {
		m.snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
}

func NewManager(db *gorm.DB, opts ...Option) *Manager {
	m := &Manager{db: db}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do runs fn inside a transaction carried by the context passed to fn.
// A transaction already present in ctx is reused, so nested calls join the
// outer unit of work and commit or roll back with it.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, nil, fn)
}

// Snapshot runs read-only fn against one consistent view of the store. Inside
// an existing transaction it reads through that transaction instead.
func (m *Manager) Snapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, m.snapshot, fn)
}

func (m *Manager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	var tx *gorm.DB
	if opts != nil {
		tx = m.db.WithContext(ctx).Begin(opts)
	} else {
		tx = m.db.WithContext(ctx).Begin()
	}
	if tx.Error != nil {
		return fmt.Errorf("txn: begin: %w", tx.Error)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(With(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("txn: commit: %w", err)
	}
	committed = true
	return nil
}

// With attaches tx to ctx.
func With(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, ctxKey{}, tx)
}

func From(ctx context.Context) (*gorm.DB, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(ctxKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// DB returns the transaction carried by ctx, falling back to base.
func DB(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := From(ctx); ok {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

// Detach returns a context that no longer carries a transaction, so writes
// made with it commit on their own.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, (*gorm.DB)(nil))
}
