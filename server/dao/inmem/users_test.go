package inmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rpal/server/dao"
)

func Test_UsersRepository_Create(t *testing.T) {
	repo := NewUsersRepository()

	created, err := repo.Create(context.Background(), dao.User{Username: "alice", Password: "hash"})
	if !assert.NoError(t, err) {
		return
	}
	assert.NotEqual(t, created.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "alice", created.Username)
	assert.False(t, created.Created.IsZero())
}

func Test_UsersRepository_Create_duplicateUsername(t *testing.T) {
	repo := NewUsersRepository()

	_, err := repo.Create(context.Background(), dao.User{Username: "alice", Password: "hash"})
	if !assert.NoError(t, err) {
		return
	}

	_, err = repo.Create(context.Background(), dao.User{Username: "alice", Password: "otherhash"})
	assert.ErrorIs(t, err, dao.ErrConstraintViolation)
}

func Test_UsersRepository_GetByUsername(t *testing.T) {
	repo := NewUsersRepository()
	created, err := repo.Create(context.Background(), dao.User{Username: "bob", Password: "hash"})
	if !assert.NoError(t, err) {
		return
	}

	fetched, err := repo.GetByUsername(context.Background(), "bob")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, created.ID, fetched.ID)

	_, err = repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_UsersRepository_Update_renamesIndex(t *testing.T) {
	repo := NewUsersRepository()
	created, err := repo.Create(context.Background(), dao.User{Username: "carol", Password: "hash"})
	if !assert.NoError(t, err) {
		return
	}

	created.Username = "caroline"
	updated, err := repo.Update(context.Background(), created.ID, created)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "caroline", updated.Username)

	_, err = repo.GetByUsername(context.Background(), "carol")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	fetched, err := repo.GetByUsername(context.Background(), "caroline")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, created.ID, fetched.ID)
}

func Test_UsersRepository_Delete(t *testing.T) {
	repo := NewUsersRepository()
	created, err := repo.Create(context.Background(), dao.User{Username: "dave", Password: "hash"})
	if !assert.NoError(t, err) {
		return
	}

	_, err = repo.Delete(context.Background(), created.ID)
	if !assert.NoError(t, err) {
		return
	}

	_, err = repo.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	_, err = repo.GetByUsername(context.Background(), "dave")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_UsersRepository_GetAll_sortedByID(t *testing.T) {
	repo := NewUsersRepository()
	_, err := repo.Create(context.Background(), dao.User{Username: "eve", Password: "hash"})
	if !assert.NoError(t, err) {
		return
	}
	_, err = repo.Create(context.Background(), dao.User{Username: "frank", Password: "hash"})
	if !assert.NoError(t, err) {
		return
	}

	all, err := repo.GetAll(context.Background())
	if !assert.NoError(t, err) {
		return
	}
	if !assert.Len(t, all, 2) {
		return
	}
	assert.True(t, all[0].ID.String() < all[1].ID.String())
}
