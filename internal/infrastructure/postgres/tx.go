package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/domain/txn"
)

// Querier is the subset of pgx shared by pgxpool.Pool and pgx.Tx.
// Repositories go through it so the same code runs pooled or tx-scoped.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// querierFrom returns the transaction carried by ctx, or fallback.
func querierFrom(ctx context.Context, fallback Querier) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return fallback
}

// TxManager implements txn.Manager over a pgx pool. The opened transaction
// and the post-outcome hook queue ride the context handed to fn, so
// repositories join the transaction without new plumbing.
type TxManager struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewTxManager(pool *pgxpool.Pool, logger *logrus.Logger) *TxManager {
	return &TxManager{pool: pool, logger: logger}
}

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx, hooks := txn.WithHooks(context.WithValue(ctx, txKey{}, tx))

	// Rollback is a no-op once the tx committed. The deferred pair keeps a
	// panic inside fn from leaking the pooled connection and still fires the
	// rollback hooks so staged files get cleaned up.
	defer func() {
		_ = tx.Rollback(ctx)
		hooks.ResolveRollback()
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && m.logger != nil {
			m.logger.WithError(rbErr).Warn("tx rollback failed")
		}
		hooks.ResolveRollback()
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		hooks.ResolveRollback()
		return err
	}
	hooks.ResolveCommit()
	return nil
}

var _ txn.Manager = (*TxManager)(nil)
