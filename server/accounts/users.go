package accounts

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/dekarrin/rpal/server/serr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GetAllUsers returns all operator accounts currently in persistence.
func (svc Service) GetAllUsers(ctx context.Context) ([]dao.User, error) {
	users, err := svc.DB.Users().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return users, nil
}

// GetUser returns the account with the given ID.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no user
// with that ID exists, serr.ErrDB for an unexpected persistence problem, or
// serr.ErrBadArgument if id is not a valid UUID.
func (svc Service) GetUser(ctx context.Context, id string) (dao.User, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.User{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	user, err := svc.DB.Users().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrNotFound
		}
		return dao.User{}, serr.WrapDB("could not get user", err)
	}

	return user, nil
}

// CreateUser creates a new operator account with the given username and
// password, and returns it as it exists after creation.
//
// The returned error, if non-nil, will match serr.ErrAlreadyExists if a user
// with that username already exists, serr.ErrDB for an unexpected
// persistence problem, or serr.ErrBadArgument if an argument is invalid.
func (svc Service) CreateUser(ctx context.Context, username, password string, role dao.Role) (dao.User, error) {
	if username == "" {
		return dao.User{}, serr.New("username cannot be blank", serr.ErrBadArgument)
	}
	if password == "" {
		return dao.User{}, serr.New("password cannot be blank", serr.ErrBadArgument)
	}

	_, err := svc.DB.Users().GetByUsername(ctx, username)
	if err == nil {
		return dao.User{}, serr.New("a user with that username already exists", serr.ErrAlreadyExists)
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.WrapDB("", err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return dao.User{}, serr.New("password is too long", err, serr.ErrBadArgument)
		}
		return dao.User{}, serr.New("password could not be encrypted", err)
	}

	newUser := dao.User{
		Username: username,
		Password: base64.StdEncoding.EncodeToString(passHash),
		Role:     role,
	}

	user, err := svc.DB.Users().Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.User{}, serr.ErrAlreadyExists
		}
		return dao.User{}, serr.WrapDB("could not create user", err)
	}

	return user, nil
}
