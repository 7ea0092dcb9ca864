package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type txKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// executor resolves the statement executor for the current context: the
// enclosing transaction when one is open, the pool otherwise. Repositories
// route every statement through this so any method transparently joins a
// UnitOfWork transaction.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok && tx != nil {
		return tx
	}
	return db
}

// UnitOfWork runs a check-then-write sequence inside a single serializable
// database transaction. Conflict checks and the insert they guard must share
// one transaction; the database exclusion constraints remain the backstop
// when two instances race anyway.
type UnitOfWork struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUnitOfWork constructs a UnitOfWork over the shared pool.
func NewUnitOfWork(db *sqlx.DB, logger *zap.Logger) *UnitOfWork {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitOfWork{db: db, logger: logger}
}

// Serializable executes fn inside a serializable transaction. Repository
// calls made with the context passed to fn join the transaction. A
// serialization failure is retried once before being returned.
func (u *UnitOfWork) Serializable(ctx context.Context, fn func(ctx context.Context) error) error {
	const attempts = 2
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = u.run(ctx, fn)
		if err == nil || !IsSerializationFailure(err) {
			return err
		}
		u.logger.Warn("serializable transaction retry",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return err
}

func (u *UnitOfWork) run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := u.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin serializable tx: %w", err)
	}

	if err := fn(withTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit serializable tx: %w", err)
	}
	return nil
}
