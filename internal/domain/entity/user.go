package entity

import (
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
)

// Role determines what a user may do with loans and the wallet it starts with
type Role string

// Roles
const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
)

// ParseRole parses a role name; "admin" is accepted as the lender role
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleBorrower), "user":
		return RoleBorrower, nil
	case string(RoleLender), "admin":
		return RoleLender, nil
	default:
		return "", errs.NewValidationError("role", raw, "expected borrower or lender", errs.ErrInvalidRole)
	}
}

// IsLender reports whether the role can fund loans
func (r Role) IsLender() bool {
	return r == RoleLender
}

// User represents an identity that owns exactly one wallet
type User struct {
	ID        uint64
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a new user; the ID is assigned when the user is stored
func NewUser(email string, role Role, timeProvider coreport.TimeProvider) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.NewValidationError("email", email, "a valid email address is required", errs.ErrInvalidEmail)
	}
	if role != RoleBorrower && role != RoleLender {
		return nil, errs.NewValidationError("role", string(role), "expected borrower or lender", errs.ErrInvalidRole)
	}

	now := timeProvider.Now()
	return &User{
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
