package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuslabs/softreq/pkg/constants"
	"github.com/campuslabs/softreq/pkg/repo"
)

var (
	ErrNoTx   = errors.New("no transaction found in context")
	ErrNoPool = errors.New("no database pool found in context")
)

// TxBeginner opens transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

func WithTx(ctx context.Context, tx repo.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

// UseTx returns the transaction stored in the context, falling back to the pool.
func UseTx(ctx context.Context) (repo.Tx, error) {
	tx := ctx.Value(constants.TxKey)
	if tx == nil {
		return UsePool(ctx)
	}
	return tx.(repo.Tx), nil
}

func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, constants.PoolKey, pool)
}

// WithTxBeginner stores b as the source of transactions for InTx.
func WithTxBeginner(ctx context.Context, b TxBeginner) context.Context {
	return context.WithValue(ctx, constants.PoolKey, b)
}

func UsePool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, ok := ctx.Value(constants.PoolKey).(*pgxpool.Pool)
	if !ok || pool == nil {
		return nil, ErrNoPool
	}
	return pool, nil
}

func useTxBeginner(ctx context.Context) (TxBeginner, bool) {
	switch b := ctx.Value(constants.PoolKey).(type) {
	case *pgxpool.Pool:
		return b, b != nil
	case TxBeginner:
		return b, b != nil
	}
	return nil, false
}

// InTx runs fn in a new transaction and returns the commit error, if any.
// Without a pool in ctx (in-memory store) fn runs as is.
func InTx(ctx context.Context, fn func(context.Context) error) error {
	beginner, ok := useTxBeginner(ctx)
	if !ok {
		return fn(ctx)
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(WithTx(ctx, tx)); err != nil {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
