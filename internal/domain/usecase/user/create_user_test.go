package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/loan-ledger/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/loan-ledger/mocks/port/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userMocks struct {
	uow     *persistencemocks.MockUnitOfWork
	users   *persistencemocks.MockUserRepository
	wallets *persistencemocks.MockWalletRepository
	clock   *coremocks.MockTimeProvider
	logger  *coremocks.MockLogger
}

func newUserMocks(t *testing.T) *userMocks {
	m := &userMocks{
		uow:     persistencemocks.NewMockUnitOfWork(t),
		users:   persistencemocks.NewMockUserRepository(t),
		wallets: persistencemocks.NewMockWalletRepository(t),
		clock:   coremocks.NewMockTimeProvider(t),
		logger:  coremocks.NewMockLogger(t),
	}
	m.clock.EXPECT().Now().Return(time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)).Maybe()
	m.uow.EXPECT().Execute(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).Maybe()
	m.uow.EXPECT().GetUserRepository(mock.Anything).Return(m.users).Maybe()
	m.uow.EXPECT().GetWalletRepository(mock.Anything).Return(m.wallets).Maybe()
	return m
}

func (m *userMocks) useCase() *UserUseCase {
	return NewUserUseCase(m.uow, DefaultWalletPolicy(), m.clock, m.logger)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name            string
		role            entity.Role
		expectedBalance string
	}{
		{"Borrower gets the borrower balance", entity.RoleBorrower, "1000000.00"},
		{"Lender gets the lender balance", entity.RoleLender, "10000.00"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newUserMocks(t)
			m.users.EXPECT().GetByEmail(mock.Anything, "new@example.com").Return(nil, errs.ErrUserNotFound).Once()
			m.users.EXPECT().Create(mock.Anything, mock.AnythingOfType("*entity.User")).
				RunAndReturn(func(_ context.Context, user *entity.User) error {
					user.ID = 42
					return nil
				}).Once()
			m.wallets.EXPECT().Create(mock.Anything, mock.MatchedBy(func(w *entity.Wallet) bool {
				return w.UserID == 42 && w.FormattedBalance() == tc.expectedBalance
			})).RunAndReturn(func(_ context.Context, w *entity.Wallet) error {
				w.ID = 7
				return nil
			}).Once()
			m.logger.EXPECT().Info("User created", mock.Anything).Once()

			res, err := m.useCase().CreateUser(ctx, "New@Example.com", tc.role)

			require.NoError(t, err)
			assert.Equal(t, uint64(42), res.User.ID)
			assert.Equal(t, "new@example.com", res.User.Email)
			assert.Equal(t, tc.role, res.User.Role)
			assert.Equal(t, uint64(7), res.Wallet.ID)
			assert.Equal(t, tc.expectedBalance, res.Wallet.FormattedBalance())
		})
	}

	t.Run("Invalid email never opens a unit of work", func(t *testing.T) {
		uow := persistencemocks.NewMockUnitOfWork(t)
		clock := coremocks.NewMockTimeProvider(t)
		uc := NewUserUseCase(uow, DefaultWalletPolicy(), clock, coremocks.NewMockLogger(t))

		res, err := uc.CreateUser(ctx, "not-an-email", entity.RoleBorrower)
		assert.ErrorIs(t, err, errs.ErrInvalidEmail)
		assert.Nil(t, res)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		m := newUserMocks(t)
		m.users.EXPECT().GetByEmail(mock.Anything, "taken@example.com").Return(&entity.User{ID: 1}, nil).Once()
		m.logger.EXPECT().Warn("User already exists", mock.Anything).Once()

		res, err := m.useCase().CreateUser(ctx, "taken@example.com", entity.RoleLender)
		assert.ErrorIs(t, err, errs.ErrDuplicateUser)
		assert.Nil(t, res)
	})

	t.Run("Lookup failure", func(t *testing.T) {
		m := newUserMocks(t)
		databaseError := errors.New("database connection error")
		m.users.EXPECT().GetByEmail(mock.Anything, mock.Anything).Return(nil, databaseError).Once()
		m.logger.EXPECT().Error("Failed to create user", mock.Anything).Once()

		_, err := m.useCase().CreateUser(ctx, "x@example.com", entity.RoleBorrower)
		assert.Equal(t, databaseError, err)
	})

	t.Run("Wallet failure is returned", func(t *testing.T) {
		m := newUserMocks(t)
		m.users.EXPECT().GetByEmail(mock.Anything, mock.Anything).Return(nil, errs.ErrUserNotFound).Once()
		m.users.EXPECT().Create(mock.Anything, mock.Anything).
			RunAndReturn(func(_ context.Context, user *entity.User) error {
				user.ID = 5
				return nil
			}).Once()
		m.wallets.EXPECT().Create(mock.Anything, mock.Anything).Return(errs.ErrConstraintViolation).Once()
		m.logger.EXPECT().Error("Failed to create user", mock.Anything).Once()

		_, err := m.useCase().CreateUser(ctx, "x@example.com", entity.RoleBorrower)
		assert.ErrorIs(t, err, errs.ErrConstraintViolation)
	})
}

func TestCreateDefaultUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates missing users and skips existing ones", func(t *testing.T) {
		m := newUserMocks(t)
		m.users.EXPECT().GetByEmail(mock.Anything, "admin1@example.com").Return(&entity.User{ID: 1}, nil).Once()
		for _, email := range []string{"admin2@example.com", "user1@example.com", "user2@example.com"} {
			m.users.EXPECT().GetByEmail(mock.Anything, email).Return(nil, errs.ErrUserNotFound).Once()
		}

		var nextID uint64 = 10
		m.users.EXPECT().Create(mock.Anything, mock.Anything).
			RunAndReturn(func(_ context.Context, user *entity.User) error {
				nextID++
				user.ID = nextID
				return nil
			}).Times(3)
		m.wallets.EXPECT().Create(mock.Anything, mock.Anything).Return(nil).Times(3)
		m.logger.EXPECT().Warn(mock.Anything, mock.Anything).Maybe()
		m.logger.EXPECT().Info(mock.Anything, mock.Anything).Maybe()

		require.NoError(t, m.useCase().CreateDefaultUsers(ctx))
	})

	t.Run("Stops on unexpected errors", func(t *testing.T) {
		m := newUserMocks(t)
		m.users.EXPECT().GetByEmail(mock.Anything, "admin1@example.com").Return(nil, errors.New("db down")).Once()
		m.logger.EXPECT().Error(mock.Anything, mock.Anything).Once()

		assert.EqualError(t, m.useCase().CreateDefaultUsers(ctx), "db down")
	})
}

func TestGetUser(t *testing.T) {
	m := newUserMocks(t)
	m.users.EXPECT().GetByID(mock.Anything, uint64(3)).Return(&entity.User{ID: 3, Role: entity.RoleLender}, nil).Once()
	m.users.EXPECT().GetByID(mock.Anything, uint64(4)).Return(nil, errs.ErrUserNotFound).Once()

	user, err := m.useCase().GetUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleLender, user.Role)

	_, err = m.useCase().GetUser(context.Background(), 4)
	assert.True(t, errs.IsNotFoundError(err))
}

func TestWalletPolicy(t *testing.T) {
	policy := WalletPolicy{
		BorrowerInitialBalance: decimal.NewFromInt(5),
		LenderInitialBalance:   decimal.NewFromInt(9),
	}
	assert.True(t, policy.InitialBalance(entity.RoleBorrower).Equal(decimal.NewFromInt(5)))
	assert.True(t, policy.InitialBalance(entity.RoleLender).Equal(decimal.NewFromInt(9)))
}
