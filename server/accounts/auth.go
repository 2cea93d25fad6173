package accounts

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/dekarrin/rpal/server/serr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Login verifies username/password against the stored account and, on
// success, stamps its login time before returning it. The /v1/login
// endpoint calls it before issuing a bearer token; the other authenticated
// endpoints check that token through server/middle and server/token instead.
//
// The returned error matches serr.ErrBadCredentials for an unknown username
// or a wrong password, or serr.ErrDB for an unexpected persistence problem.
func (svc Service) Login(ctx context.Context, username, password string) (dao.User, error) {
	user, err := svc.DB.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	if err := checkPassword(user.Password, password); err != nil {
		return dao.User{}, err
	}

	return svc.stamp(ctx, user, func(u *dao.User) { u.LastLoginTime = time.Now() }, "cannot update user login time")
}

// Logout stamps the account named by who as having logged out. Every
// bearer token minted before that stamp fails server/token.Validate from
// that point on, since the JWT signing key is salted with it.
func (svc Service) Logout(ctx context.Context, who uuid.UUID) (dao.User, error) {
	user, err := svc.DB.Users().GetByID(ctx, who)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrNotFound
		}
		return dao.User{}, serr.WrapDB("could not retrieve user", err)
	}

	return svc.stamp(ctx, user, func(u *dao.User) { u.LastLogoutTime = time.Now() }, "could not update user")
}

// stamp applies set to a copy of user and persists the result, wrapping any
// persistence failure in serr.WrapDB with failMsg.
func (svc Service) stamp(ctx context.Context, user dao.User, set func(*dao.User), failMsg string) (dao.User, error) {
	set(&user)

	updated, err := svc.DB.Users().Update(ctx, user.ID, user)
	if err != nil {
		return dao.User{}, serr.WrapDB(failMsg, err)
	}
	return updated, nil
}

// checkPassword compares a plaintext password against an account's stored,
// base64-encoded bcrypt hash.
func checkPassword(storedHash, password string) error {
	bcryptHash, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil {
		return serr.WrapDB("stored password hash is not valid base64", err)
	}

	if err := bcrypt.CompareHashAndPassword(bcryptHash, []byte(password)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return serr.ErrBadCredentials
		}
		return serr.WrapDB("", err)
	}

	return nil
}
