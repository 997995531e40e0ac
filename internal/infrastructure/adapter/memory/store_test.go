package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/logger"
	timeadapter "github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUoW() (*UnitOfWork, *timeadapter.ManualTimeProvider) {
	clock := timeadapter.NewManualTimeProvider(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewUnitOfWork(NewStore(), logger.NewNoopLogger()), clock
}

func seedWallet(t *testing.T, uow *UnitOfWork, clock *timeadapter.ManualTimeProvider, email, balance string) *entity.Wallet {
	t.Helper()
	ctx := context.Background()

	user, err := entity.NewUser(email, entity.RoleBorrower, clock)
	require.NoError(t, err)
	require.NoError(t, uow.GetUserRepository(ctx).Create(ctx, user))

	wallet, err := entity.NewWallet(user.ID, decimal.RequireFromString(balance), clock)
	require.NoError(t, err)
	require.NoError(t, uow.GetWalletRepository(ctx).Create(ctx, wallet))
	return wallet
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	uow, clock := newTestUoW()
	ctx := context.Background()
	a := seedWallet(t, uow, clock, "a@example.com", "100.00")
	b := seedWallet(t, uow, clock, "b@example.com", "0.00")

	t.Run("Writes become visible on commit", func(t *testing.T) {
		err := uow.Execute(ctx, func(txCtx context.Context) error {
			repo := uow.GetWalletRepository(txCtx)
			from, err := repo.GetByIDForUpdate(txCtx, a.ID)
			require.NoError(t, err)
			to, err := repo.GetByIDForUpdate(txCtx, b.ID)
			require.NoError(t, err)
			require.NoError(t, entity.ApplyTransfer(from, to, decimal.RequireFromString("40"), clock.Now()))
			require.NoError(t, repo.UpdateBalance(txCtx, from))
			require.NoError(t, repo.UpdateBalance(txCtx, to))

			// own writes are visible inside, not outside
			inside, _ := repo.GetByID(txCtx, a.ID)
			outside, _ := uow.GetWalletRepository(ctx).GetByID(ctx, a.ID)
			assert.Equal(t, "60.00", inside.FormattedBalance())
			assert.Equal(t, "100.00", outside.FormattedBalance())
			return nil
		})
		require.NoError(t, err)

		after, err := uow.GetWalletRepository(ctx).GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "60.00", after.FormattedBalance())
	})

	t.Run("Error discards every write", func(t *testing.T) {
		boom := errors.New("boom")
		err := uow.Execute(ctx, func(txCtx context.Context) error {
			repo := uow.GetWalletRepository(txCtx)
			w, err := repo.GetByIDForUpdate(txCtx, b.ID)
			require.NoError(t, err)
			to, _ := repo.GetByIDForUpdate(txCtx, a.ID)
			require.NoError(t, entity.ApplyTransfer(w, to, decimal.RequireFromString("40"), clock.Now()))
			require.NoError(t, repo.UpdateBalance(txCtx, w))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		after, _ := uow.GetWalletRepository(ctx).GetByID(ctx, b.ID)
		assert.Equal(t, "40.00", after.FormattedBalance())
	})

	t.Run("Panic rolls back and propagates", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = uow.Execute(ctx, func(txCtx context.Context) error {
				repo := uow.GetWalletRepository(txCtx)
				w, _ := repo.GetByIDForUpdate(txCtx, a.ID)
				to, _ := repo.GetByIDForUpdate(txCtx, b.ID)
				_ = entity.ApplyTransfer(w, to, decimal.RequireFromString("1"), clock.Now())
				_ = repo.UpdateBalance(txCtx, w)
				panic("mid-transfer")
			})
		})

		after, _ := uow.GetWalletRepository(ctx).GetByID(ctx, a.ID)
		assert.Equal(t, "60.00", after.FormattedBalance())

		// the panicking unit of work released its locks
		lockCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		require.NoError(t, uow.Execute(lockCtx, func(txCtx context.Context) error {
			_, err := uow.GetWalletRepository(txCtx).GetByIDForUpdate(txCtx, a.ID)
			return err
		}))
	})
}

func TestUnitOfWork_NestedExecuteJoins(t *testing.T) {
	uow, clock := newTestUoW()
	ctx := context.Background()
	w := seedWallet(t, uow, clock, "nested@example.com", "10.00")

	var outerTx, innerTx *tx
	err := uow.Execute(ctx, func(txCtx context.Context) error {
		outerTx, _ = txFromContext(txCtx)
		return uow.Execute(txCtx, func(inner context.Context) error {
			innerTx, _ = txFromContext(inner)
			_, err := uow.GetWalletRepository(inner).GetByIDForUpdate(inner, w.ID)
			return err
		})
	})
	require.NoError(t, err)
	assert.Same(t, outerTx, innerTx)
}

func TestUnitOfWork_AfterCommit(t *testing.T) {
	uow, _ := newTestUoW()
	ctx := context.Background()

	t.Run("Runs after commit", func(t *testing.T) {
		ran := false
		err := uow.Execute(ctx, func(txCtx context.Context) error {
			uow.AfterCommit(txCtx, func() { ran = true })
			assert.False(t, ran)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("Dropped on rollback", func(t *testing.T) {
		ran := false
		_ = uow.Execute(ctx, func(txCtx context.Context) error {
			uow.AfterCommit(txCtx, func() { ran = true })
			return errors.New("rollback")
		})
		assert.False(t, ran)
	})

	t.Run("Immediate outside a unit of work", func(t *testing.T) {
		ran := false
		uow.AfterCommit(ctx, func() { ran = true })
		assert.True(t, ran)
	})
}

func TestRowLock_BlocksUntilCommit(t *testing.T) {
	uow, clock := newTestUoW()
	ctx := context.Background()
	w := seedWallet(t, uow, clock, "lock@example.com", "10.00")

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- uow.Execute(ctx, func(txCtx context.Context) error {
			if _, err := uow.GetWalletRepository(txCtx).GetByIDForUpdate(txCtx, w.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	t.Run("Waiter gives up when its context ends", func(t *testing.T) {
		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		err := uow.Execute(waitCtx, func(txCtx context.Context) error {
			_, err := uow.GetWalletRepository(txCtx).GetByIDForUpdate(txCtx, w.ID)
			return err
		})
		assert.ErrorIs(t, err, errs.ErrConcurrentUpdate)
	})

	t.Run("Waiter proceeds once the holder commits", func(t *testing.T) {
		acquired := make(chan struct{})
		go func() {
			_ = uow.Execute(ctx, func(txCtx context.Context) error {
				_, err := uow.GetWalletRepository(txCtx).GetByIDForUpdate(txCtx, w.ID)
				close(acquired)
				return err
			})
		}()

		select {
		case <-acquired:
			t.Fatal("lock acquired while held by another unit of work")
		case <-time.After(20 * time.Millisecond):
		}

		close(release)
		require.NoError(t, <-done)
		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("waiter never acquired the lock")
		}
	})
}

func TestLockManager_Reentrant(t *testing.T) {
	m := newLockManager()
	key := rowKey{tableLoans, 1}
	ctx := context.Background()

	require.NoError(t, m.acquire(ctx, key, 1))
	require.NoError(t, m.acquire(ctx, key, 1))
	assert.True(t, m.holds(key, 1))

	m.releaseAll(1)
	assert.False(t, m.holds(key, 1))
	require.NoError(t, m.acquire(ctx, key, 2))
	assert.True(t, m.holds(key, 2))
}

func TestRepositories_Constraints(t *testing.T) {
	uow, clock := newTestUoW()
	ctx := context.Background()

	t.Run("Duplicate email", func(t *testing.T) {
		u1, _ := entity.NewUser("dup@example.com", entity.RoleLender, clock)
		u2, _ := entity.NewUser("DUP@example.com", entity.RoleBorrower, clock)
		require.NoError(t, uow.GetUserRepository(ctx).Create(ctx, u1))
		err := uow.GetUserRepository(ctx).Create(ctx, u2)
		assert.ErrorIs(t, err, errs.ErrDuplicateUser)
		assert.Zero(t, u2.ID)
	})

	t.Run("Duplicate email across concurrent units of work fails at commit", func(t *testing.T) {
		first := make(chan struct{})
		errCh := make(chan error, 1)
		go func() {
			errCh <- uow.Execute(ctx, func(txCtx context.Context) error {
				u, _ := entity.NewUser("race@example.com", entity.RoleBorrower, clock)
				if err := uow.GetUserRepository(txCtx).Create(txCtx, u); err != nil {
					return err
				}
				<-first
				return nil
			})
		}()

		err := uow.Execute(ctx, func(txCtx context.Context) error {
			u, _ := entity.NewUser("race@example.com", entity.RoleBorrower, clock)
			return uow.GetUserRepository(txCtx).Create(txCtx, u)
		})
		require.NoError(t, err)
		close(first)
		assert.ErrorIs(t, <-errCh, errs.ErrDuplicateUser)
	})

	t.Run("Single pending adjustment per loan", func(t *testing.T) {
		borrower, _ := entity.NewUser("borrower@example.com", entity.RoleBorrower, clock)
		require.NoError(t, uow.GetUserRepository(ctx).Create(ctx, borrower))
		loan, err := entity.NewLoan(borrower.ID, decimal.RequireFromString("100"), decimal.RequireFromString("5"), clock)
		require.NoError(t, err)
		require.NoError(t, uow.GetLoanRepository(ctx).Create(ctx, loan))

		amount := decimal.RequireFromString("90")
		first, err := entity.NewLoanAdjustment(loan.ID, 99, &amount, nil, clock)
		require.NoError(t, err)
		second, err := entity.NewLoanAdjustment(loan.ID, 99, &amount, nil, clock)
		require.NoError(t, err)

		repo := uow.GetLoanAdjustmentRepository(ctx)
		require.NoError(t, repo.Create(ctx, first))
		assert.ErrorIs(t, repo.Create(ctx, second), errs.ErrPendingAdjustmentExists)

		pending, err := repo.FindPendingByLoan(ctx, loan.ID)
		require.NoError(t, err)
		require.NotNil(t, pending)
		assert.Equal(t, first.ID, pending.ID)

		require.NoError(t, first.Resolve(entity.AdjustmentStatusRejected, clock.Now()))
		require.NoError(t, repo.Update(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
	})

	t.Run("Negative balance is rejected", func(t *testing.T) {
		w := entity.RestoreWallet(0, 12345, decimal.RequireFromString("-1"), clock.Now(), clock.Now())
		err := uow.GetWalletRepository(ctx).Create(ctx, w)
		assert.ErrorIs(t, err, errs.ErrConstraintViolation)
	})

	t.Run("Stored rows are copies", func(t *testing.T) {
		w := seedWallet(t, uow, clock, "copy@example.com", "5.00")
		loaded, err := uow.GetWalletRepository(ctx).GetByID(ctx, w.ID)
		require.NoError(t, err)
		other := seedWallet(t, uow, clock, "copy2@example.com", "0.00")
		require.NoError(t, entity.ApplyTransfer(loaded, other, decimal.RequireFromString("5"), clock.Now()))

		again, _ := uow.GetWalletRepository(ctx).GetByID(ctx, w.ID)
		assert.Equal(t, "5.00", again.FormattedBalance())
	})
}

func TestTransactionRepository_Listing(t *testing.T) {
	uow, clock := newTestUoW()
	ctx := context.Background()
	a := seedWallet(t, uow, clock, "la@example.com", "10.00")
	b := seedWallet(t, uow, clock, "lb@example.com", "10.00")
	repo := uow.GetTransactionRepository(ctx)

	for i, cid := range []string{"c1", "c2", "c3"} {
		debit, credit := entity.NewTransferEntries(a, b, decimal.NewFromInt(int64(i+1)), "test", cid, clock.Now())
		require.NoError(t, repo.Create(ctx, debit))
		require.NoError(t, repo.Create(ctx, credit))
	}

	rows, err := repo.ListByWallet(ctx, a.ID, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c3", rows[0].CorrelationID)
	assert.Equal(t, "c2", rows[1].CorrelationID)

	pair, err := repo.ListByCorrelationID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, pair, 2)
	assert.Equal(t, entity.TransactionTypeDebit, pair[0].Type)
	assert.Equal(t, entity.TransactionTypeCredit, pair[1].Type)
}
