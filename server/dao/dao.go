// Package dao provides data access objects for use in the RPAL eval server.
package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories backing the eval server.
type Store interface {
	Users() UserRepository
	History() HistoryRepository
	Close() error
}

// Role is the permission level of a User account.
type Role int

const (
	Normal Role = iota
	Admin
)

func (r Role) String() string {
	switch r {
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Normal, fmt.Errorf("must be one of 'normal' or 'admin'")
	}
}

// User is an operator account for the eval server's admin-only endpoints.
type User struct {
	ID             uuid.UUID // PK, NOT NULL
	Username       string    // UNIQUE, NOT NULL
	Password       string    // bcrypt hash, NOT NULL
	Role           Role      // NOT NULL
	Created        time.Time // NOT NULL
	LastLoginTime  time.Time
	LastLogoutTime time.Time // NOT NULL DEFAULT NOW()
}

// UserRepository stores operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}

// EvalRecord is one logged invocation of the /v1/eval endpoint.
type EvalRecord struct {
	ID        uuid.UUID // PK, NOT NULL
	RequestID uuid.UUID // NOT NULL, the ID surfaced in the response header
	UserID    uuid.UUID // zero UUID if the request was anonymous
	Source    string    // NOT NULL
	Result    string    // NOT NULL, empty if evaluation errored
	Err       string    // empty on success
	Created   time.Time // NOT NULL
}

// HistoryRepository stores a log of eval requests for admin review.
type HistoryRepository interface {
	Create(ctx context.Context, rec EvalRecord) (EvalRecord, error)
	GetAll(ctx context.Context, notBefore, notAfter *time.Time) ([]EvalRecord, error)
	Close() error
}
