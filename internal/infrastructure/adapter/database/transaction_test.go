package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUnitOfWorkIsRetryable(t *testing.T) {
	u := NewUnitOfWork(nil, logger.NewNoopLogger(), "", DefaultRetryConfig())

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"concurrent update", fmt.Errorf("%w: deadlock", errs.ErrConcurrentUpdate), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"connection lost on begin", &beginError{err: errors.New("dial tcp: connection refused")}, true},
		{"connection lost mid transaction", errors.New("write: broken pipe"), false},
		{"duplicate key", &pgconn.PgError{Code: "23505"}, false},
		{"domain error", errs.ErrInsufficientFunds, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.isRetryable(tt.err))
		})
	}
}

func TestBeginErrorWrapsDatabaseConnection(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&beginError{err: cause})

	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	assert.ErrorIs(t, err, cause)
}

func TestAfterCommitOutsideTransactionRunsImmediately(t *testing.T) {
	u := NewUnitOfWork(nil, logger.NewNoopLogger(), "", DefaultRetryConfig())

	ran := false
	u.AfterCommit(context.Background(), func() { ran = true })
	assert.True(t, ran)
}

func TestAfterCommitInsideTransactionIsDeferred(t *testing.T) {
	u := NewUnitOfWork(nil, logger.NewNoopLogger(), "", DefaultRetryConfig())
	state := &txState{}
	ctx := context.WithValue(context.Background(), txKey, state)

	ran := false
	u.AfterCommit(ctx, func() { ran = true })

	assert.False(t, ran)
	assert.Len(t, state.afterCommit, 1)
}

func TestNewUnitOfWorkNormalizesIsolationLevel(t *testing.T) {
	assert.Equal(t, "READ COMMITTED", NewUnitOfWork(nil, logger.NewNoopLogger(), "", DefaultRetryConfig()).isolationLevel)
	assert.Equal(t, "SERIALIZABLE", NewUnitOfWork(nil, logger.NewNoopLogger(), "serializable", DefaultRetryConfig()).isolationLevel)
}
