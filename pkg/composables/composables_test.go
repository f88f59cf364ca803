package composables

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslabs/softreq/pkg/authz"
)

func TestUsePrincipal(t *testing.T) {
	_, err := UsePrincipal(context.Background())
	require.ErrorIs(t, err, ErrNoPrincipal)

	ctx := WithPrincipal(context.Background(), authz.NewPrincipal("", "instructor"))
	_, err = UsePrincipal(ctx)
	require.ErrorIs(t, err, ErrNoPrincipal)

	want := authz.NewPrincipal("ana@uni.edu", "instructor")
	got, err := UsePrincipal(WithPrincipal(context.Background(), want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUseTx_FallsBackToPool(t *testing.T) {
	_, err := UseTx(context.Background())
	require.ErrorIs(t, err, ErrNoPool)
}

type fakeTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return tx.commitErr
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeBeginner struct{ tx *fakeTx }

func (b fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	return b.tx, nil
}

func TestInTx_WithoutPoolRunsDirectly(t *testing.T) {
	ran := false
	err := InTx(context.Background(), func(ctx context.Context) error {
		ran = true
		_, err := UseTx(ctx)
		assert.ErrorIs(t, err, ErrNoPool)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestInTx_CommitErrorIsReturned(t *testing.T) {
	commitErr := errors.New("serialization failure")
	tx := &fakeTx{commitErr: commitErr}
	ctx := WithTxBeginner(context.Background(), fakeBeginner{tx: tx})

	err := InTx(ctx, func(txCtx context.Context) error {
		got, err := UseTx(txCtx)
		require.NoError(t, err)
		assert.Same(t, tx, got)
		return nil
	})
	require.ErrorIs(t, err, commitErr)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	ctx := WithTxBeginner(context.Background(), fakeBeginner{tx: tx})
	boom := errors.New("boom")

	err := InTx(ctx, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestUseLogger_Fallback(t *testing.T) {
	assert.NotNil(t, UseLogger(context.Background()))

	entry := logrus.New().WithField("request-id", "abc")
	assert.Same(t, entry, UseLogger(WithLogger(context.Background(), entry)))
}

func TestUseRequestID(t *testing.T) {
	_, ok := UseRequestID(context.Background())
	assert.False(t, ok)

	id, ok := UseRequestID(WithParams(context.Background(), &Params{RequestID: "rid"}))
	assert.True(t, ok)
	assert.Equal(t, "rid", id)
}
