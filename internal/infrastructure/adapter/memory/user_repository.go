package memory

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
)

// UserRepository is the in-memory persistence.UserRepository
type UserRepository struct {
	store *Store
	tx    *tx
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id uint64) (*entity.User, error) {
	user, ok := load(r.store, r.tx, r.store.users, id)
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users := scan(r.store, r.tx, r.store.users, func(u *entity.User) bool {
		return u.Email == email
	})
	if len(users) == 0 {
		return nil, errs.ErrUserNotFound
	}
	return users[0], nil
}

// Create stores a new user and assigns its ID
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return errs.ErrDuplicateUser
	}

	id := nextID(r.store, r.store.users)
	email := user.Email
	check := func() error {
		taken := false
		committedRows(r.store.users, func(otherID uint64, other *entity.User) bool {
			taken = otherID != id && other.Email == email
			return !taken
		})
		if taken {
			return errs.ErrDuplicateUser
		}
		return nil
	}

	user.ID = id
	if err := save(ctx, r.store, r.tx, r.store.users, id, user, check); err != nil {
		user.ID = 0
		return err
	}
	return nil
}
